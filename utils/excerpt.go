package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// CommentExcerptLength is the preview length used for comment bodies in
// moderation lists and notifications
const CommentExcerptLength = 120

var (
	blockTags  = regexp.MustCompile(`<(\/)?(p|br|div|blockquote|li|ol|ul|pre)[^>]*>`)
	allTags    = regexp.MustCompile(`<[^>]+>`)
	multiSpace = regexp.MustCompile(`\s+`)
	entities   = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&quot;", `"`, "&#39;", "'", "&nbsp;", " ")
)

// MakeExcerpt generates a plain text excerpt from HTML content.
// It strips tags and cuts the text to limit runes.
func MakeExcerpt(html string, limit int) string {
	if html == "" {
		return ""
	}

	// Replace block-level tags with spaces to preserve word boundaries
	text := blockTags.ReplaceAllString(html, " ")
	text = allTags.ReplaceAllString(text, "")
	text = entities.Replace(text)
	text = strings.TrimSpace(multiSpace.ReplaceAllString(text, " "))

	if utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		return strings.TrimSpace(string(runes[:limit])) + "..."
	}
	return text
}
