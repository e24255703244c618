// Package embed turns persisted comment bodies into shareable embed code.
//
// The pipeline has three steps. A Sanitizer parses untrusted markup, keeps
// only what its allow-list permits and reports which elements carry spoiler
// or sarcasm markers. A Transformer decorates those elements and serializes
// the tree. ComposeEmbedCode wraps the result and the comment metadata into
// a standalone snippet. Every call works on its own tree; nothing is shared
// between calls.
package embed

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMaxBytes bounds the size of markup a Sanitizer accepts.
const DefaultMaxBytes = 256 << 10

type TagClass int

const (
	Other TagClass = iota
	Spoiler
	Sarcasm
)

func (c TagClass) String() string {
	switch c {
	case Spoiler:
		return "spoiler"
	case Sarcasm:
		return "sarcasm"
	}
	return "other"
}

// Source is the input of a sanitization: markup text or a parsed node.
type Source interface {
	nodes(maxBytes int) ([]*html.Node, error)
}

// Markup is raw HTML text, parsed as the content of a <body>.
type Markup string

func (m Markup) nodes(maxBytes int) ([]*html.Node, error) {
	s := string(m)
	if maxBytes > 0 && len(s) > maxBytes {
		return nil, &ParseError{Err: ErrTooLarge}
	}
	if !utf8.ValidString(s) {
		return nil, &ParseError{Err: ErrInvalidUTF8}
	}
	if strings.IndexByte(s, 0) >= 0 {
		return nil, &ParseError{Err: ErrNulByte}
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return nodes, nil
}

type nodeSource struct {
	n *html.Node
}

// NodeSource wraps an already parsed node. The node is treated as a
// container: its children are the content. A document node contributes the
// children of its <body>. The node is only read, never modified.
func NodeSource(n *html.Node) Source {
	return nodeSource{n: n}
}

func (ns nodeSource) nodes(int) ([]*html.Node, error) {
	n := ns.n
	if n == nil {
		return nil, &ParseError{Err: ErrNilNode}
	}
	if n.Type == html.ErrorNode {
		return nil, &ParseError{Err: ErrErrorNode}
	}
	if n.Type == html.DocumentNode {
		if body := findBody(n); body != nil {
			n = body
		}
	}

	var nodes []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ErrorNode {
			return nil, &ParseError{Err: ErrErrorNode}
		}
		nodes = append(nodes, c)
	}
	return nodes, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

// Result is the output of Sanitize. Spoilers and Sarcasms hold ids of
// elements of Fragment in document order; every id resolves with
// Fragment.Lookup.
type Result struct {
	Fragment *Fragment
	Spoilers []NodeID
	Sarcasms []NodeID

	// Stripped counts removed elements and attributes.
	Stripped int
}

// Sanitizer applies an allow-list to comment markup. It holds no mutable
// state and can be shared between goroutines.
type Sanitizer struct {
	policy *policy

	// MaxBytes limits Markup sources; zero or less disables the limit.
	MaxBytes int
}

// NewSanitizer compiles al. A nil allow-list selects DefaultAllowList.
func NewSanitizer(al *AllowList) *Sanitizer {
	if al == nil {
		al = DefaultAllowList()
	}
	return &Sanitizer{policy: compile(al), MaxBytes: DefaultMaxBytes}
}

// Sanitize builds a cleaned Fragment from src and collects the spoiler and
// sarcasm elements that survived.
func (san *Sanitizer) Sanitize(src Source) (*Result, error) {
	in, err := src.nodes(san.MaxBytes)
	if err != nil {
		return nil, err
	}

	first := san.walk(in)

	// Unwrapping can nest elements the parser never nests, such as an <a>
	// inside an <a> once a table between them is gone. The cleaned tree is
	// rendered and walked again so the result parses back to itself.
	markup, err := first.Fragment.InnerHTML()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	again, err := Markup(markup).nodes(0)
	if err != nil {
		return nil, err
	}

	res := san.walk(again)
	res.Stripped = first.Stripped
	return res, nil
}

func (san *Sanitizer) walk(in []*html.Node) *Result {
	ids, next := numberNodes(in)
	res := &Result{Fragment: newFragment(next)}
	w := &walker{policy: san.policy, ids: ids, res: res}
	w.appendAll(res.Fragment.Root, in)
	return res
}

// numberNodes assigns ids to the source nodes in document order, starting
// right after the root.
func numberNodes(nodes []*html.Node) (map[*html.Node]NodeID, NodeID) {
	ids := make(map[*html.Node]NodeID)
	next := RootID + 1

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		ids[n] = next
		next++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return ids, next
}

type walker struct {
	policy *policy
	ids    map[*html.Node]NodeID
	res    *Result
}

func (w *walker) appendAll(parent *Node, nodes []*html.Node) {
	for _, n := range nodes {
		w.append(parent, n)
	}
}

func (w *walker) appendChildren(parent *Node, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.append(parent, c)
	}
}

func (w *walker) append(parent *Node, n *html.Node) {
	frag := w.res.Fragment

	switch n.Type {
	case html.TextNode:
		frag.adopt(parent, &Node{ID: w.ids[n], Type: TextNode, Text: n.Data})
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if n.Namespace != "" || w.policy.drop[tag] {
			w.res.Stripped++
			return
		}
		class := w.classify(n)
		if !w.policy.allowsTag(tag) {
			w.res.Stripped++
			if class == Other || n.FirstChild == nil || !w.policy.allowsTag("span") {
				// unwrap, the children get their own checks
				w.appendChildren(parent, n)
				return
			}
			// a marked element keeps its marker on a span
			tag = "span"
		}

		el := &Node{ID: w.ids[n], Type: ElementNode, Tag: tag}
		el.Attrs = w.filterAttrs(tag, n.Attr)
		frag.adopt(parent, el)

		switch class {
		case Spoiler:
			w.res.Spoilers = append(w.res.Spoilers, el.ID)
		case Sarcasm:
			w.res.Sarcasms = append(w.res.Sarcasms, el.ID)
		}

		w.appendChildren(el, n)
	default:
		// comments, doctypes
	}
}

func (w *walker) filterAttrs(tag string, attrs []html.Attribute) []Attr {
	var out []Attr
	seen := make(map[string]bool, len(attrs))

	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if a.Namespace != "" || seen[key] || !(w.policy.allowsAttr(tag, key) || isMarkerAttr(key)) {
			w.res.Stripped++
			continue
		}

		val := a.Val
		switch {
		case key == "class":
			val = w.markerClasses(val)
			if val == "" {
				w.res.Stripped++
				continue
			}
		case w.policy.urlAttrs[key]:
			if !w.safeURL(val) {
				w.res.Stripped++
				continue
			}
			val = strings.TrimSpace(val)
		}

		seen[key] = true
		out = append(out, Attr{Key: key, Val: val})
	}

	for _, fa := range w.policy.forced[tag] {
		if seen[fa.key] {
			for i := range out {
				if out[i].Key == fa.key {
					out[i].Val = fa.val
				}
			}
			continue
		}
		seen[fa.key] = true
		out = append(out, Attr{Key: fa.key, Val: fa.val})
	}
	return out
}

// markerClasses keeps the recognized marker tokens of a class value.
func (w *walker) markerClasses(val string) string {
	var kept []string
	for _, tok := range strings.Fields(val) {
		if w.policy.isMarker(strings.ToLower(tok)) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

func (w *walker) safeURL(val string) bool {
	u, err := url.Parse(strings.TrimSpace(val))
	if err != nil || u.Scheme == "" {
		return false
	}
	return w.policy.urlSchemes[strings.ToLower(u.Scheme)]
}

// classify looks at the source node, before any attribute was dropped.
func (w *walker) classify(n *html.Node) TagClass {
	class := Other
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "data-spoiler":
			return Spoiler
		case "data-sarcasm":
			class = Sarcasm
		case "class":
			for _, tok := range strings.Fields(strings.ToLower(a.Val)) {
				if w.policy.spoiler[tok] {
					return Spoiler
				}
				if w.policy.sarcasm[tok] {
					class = Sarcasm
				}
			}
		}
	}
	return class
}
