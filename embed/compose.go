package embed

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const (
	embedClass  = "coral-comment-embed"
	embedStyle  = "background-color: #f4f7f7; padding: 8px;"
	authorStyle = "margin-bottom: 8px;"
)

// Metadata describes the comment an embed is built for. AuthorName and
// ReactionLabel may be empty.
type Metadata struct {
	CommentID     string
	AuthorName    string
	AllowReplies  bool
	ReactionLabel string
}

// ComposeEmbedCode wraps an already transformed body into the standalone
// embed snippet. Metadata values are escaped; body is inserted as is.
func ComposeEmbedCode(body string, meta Metadata) string {
	var b strings.Builder

	b.WriteString(`<div class="` + embedClass + `" style="` + embedStyle + `"`)
	b.WriteString(` data-commentID="` + html.EscapeString(meta.CommentID) + `"`)
	b.WriteString(` data-allowReplies="` + strconv.FormatBool(meta.AllowReplies) + `"`)
	b.WriteString(` data-reactionLabel="` + html.EscapeString(meta.ReactionLabel) + `">`)

	b.WriteString(`<div style="` + authorStyle + `">`)
	b.WriteString(html.EscapeString(meta.AuthorName))
	b.WriteString(`</div>`)

	b.WriteString(`<div>`)
	b.WriteString(body)
	b.WriteString(`</div></div>`)

	return b.String()
}

// Comment is the per-comment data the embed needs.
type Comment struct {
	ID         string
	AuthorName string
	Body       string
}

// Settings is the site-level data the embed needs. A nil AllowReplies
// means replies are allowed.
type Settings struct {
	AllowReplies  *bool
	ReactionLabel string
}

func (s Settings) allowReplies() bool {
	if s.AllowReplies == nil {
		return true
	}
	return *s.AllowReplies
}

// Build produces the embed code of c. Comments without body text get
// ErrEmptyBody and never reach the transformer or the composer.
func Build(t *Transformer, c Comment, s Settings) (string, error) {
	if strings.TrimSpace(c.Body) == "" {
		return "", ErrEmptyBody
	}

	body, err := t.Transform(Markup(c.Body))
	if err != nil {
		return "", err
	}

	return ComposeEmbedCode(body, Metadata{
		CommentID:     c.ID,
		AuthorName:    c.AuthorName,
		AllowReplies:  s.allowReplies(),
		ReactionLabel: s.ReactionLabel,
	}), nil
}
