package utils

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	bodyPolicy     *bluemonday.Policy
	bodyPolicyOnce sync.Once
)

// markerClass matches class values made only of the spoiler and sarcasm
// markers the rich text editor writes.
var markerClass = regexp.MustCompile(`^(\s*(coral-rte-spoiler|coral-rte-sarcasm|spoiler|sarcasm)\s*)+$`)

func getBodyPolicy() *bluemonday.Policy {
	bodyPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()

		p.AllowStandardURLs()
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)

		p.AllowElements(
			"p", "br", "div", "span",
			"b", "strong", "i", "em", "u", "s", "strike", "del", "mark", "sub", "sup",
			"blockquote", "pre", "code",
			"ul", "ol", "li",
		)
		// markers are recognized on every element the embed keeps
		p.AllowAttrs("class").Matching(markerClass).Globally()
		p.AllowAttrs("data-spoiler", "data-sarcasm").Globally()

		bodyPolicy = p
	})
	return bodyPolicy
}

// SanitizeHTML cleans a comment body written by the rich text editor
// before it is stored. Scripts, handlers and unsafe URLs go away; the
// spoiler and sarcasm markers the embed pipeline relies on stay.
func SanitizeHTML(html string) string {
	if html == "" {
		return ""
	}
	return getBodyPolicy().Sanitize(html)
}
