package embed

const (
	DefaultRevealTitle = "Reveal spoiler"

	// SpoilerStateAttr carries the reveal state of a spoiler for the host.
	SpoilerStateAttr = "data-spoiler-state"
	StateMasked      = "masked"
	StateRevealed    = "revealed"

	spoilerMaskStyle = "background-color: #14171A; color: #14171A;"
	sarcasmStyle     = "font-family: monospace;"
)

// Transformer produces the decorated body of an embed.
type Transformer struct {
	san         *Sanitizer
	revealTitle string
}

// NewTransformer uses san for the sanitize step. An empty revealTitle falls
// back to DefaultRevealTitle.
func NewTransformer(san *Sanitizer, revealTitle string) *Transformer {
	if san == nil {
		san = NewSanitizer(nil)
	}
	if revealTitle == "" {
		revealTitle = DefaultRevealTitle
	}
	return &Transformer{san: san, revealTitle: revealTitle}
}

func (t *Transformer) Sanitizer() *Sanitizer {
	return t.san
}

// Transform sanitizes src once, decorates spoiler and sarcasm elements and
// returns the inner markup of the cleaned tree. Sanitizer errors are
// returned as they are.
func (t *Transformer) Transform(src Source) (string, error) {
	res, err := t.TransformResult(src)
	if err != nil {
		return "", err
	}
	return res.Fragment.InnerHTML()
}

// TransformResult is Transform without the final serialization.
func (t *Transformer) TransformResult(src Source) (*Result, error) {
	res, err := t.san.Sanitize(src)
	if err != nil {
		return nil, err
	}
	t.Decorate(res)
	return res, nil
}

// Decorate rewrites every spoiler of res, then every sarcasm element, each
// group in the order the sanitizer collected them.
func (t *Transformer) Decorate(res *Result) {
	frag := res.Fragment
	for _, id := range res.Spoilers {
		if n := frag.Lookup(id); n != nil {
			t.maskSpoiler(frag, n)
		}
	}
	for _, id := range res.Sarcasms {
		if n := frag.Lookup(id); n != nil {
			n.SetAttr("style", sarcasmStyle)
		}
	}
}

func (t *Transformer) maskSpoiler(frag *Fragment, n *Node) {
	if isVoid(n.Tag) {
		return
	}

	inner := frag.NewElement("span", Attr{Key: "aria-hidden", Val: "true"})
	inner.Children = n.Children
	n.Children = []*Node{inner}

	n.SetAttr("role", "button")
	n.SetAttr("style", spoilerMaskStyle)
	n.SetAttr("title", t.revealTitle)
	n.SetAttr(SpoilerStateAttr, StateMasked)
}

// SpoilerState reports the reveal state of n, or "" when n is no decorated
// spoiler.
func SpoilerState(n *Node) string {
	v, _ := n.Attr(SpoilerStateAttr)
	return v
}

// RevealSpoiler moves a masked spoiler to the revealed state: the mask, the
// button role and the title go away. It reports false for nodes that are
// not masked; a revealed spoiler stays revealed.
func RevealSpoiler(n *Node) bool {
	if SpoilerState(n) != StateMasked {
		return false
	}
	n.RemoveAttr("style")
	n.RemoveAttr("role")
	n.RemoveAttr("title")
	n.SetAttr(SpoilerStateAttr, StateRevealed)
	return true
}
