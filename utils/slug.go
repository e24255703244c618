package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// GenerateSlug generates a URL-friendly slug from a story title
func GenerateSlug(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// UniqueSlug appends -2, -3, ... to base until taken reports false.
// An empty base becomes "story".
func UniqueSlug(base string, taken func(string) bool) string {
	if base == "" {
		base = "story"
	}
	slug := base
	for i := 2; taken(slug); i++ {
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return slug
}
