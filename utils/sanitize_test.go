package utils

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestSanitizeHTMLKeepsMarkers(t *testing.T) {
	in := `<p>Hi <span class="coral-rte-spoiler">hidden</span> and <span class="sarcasm">sure</span></p>`
	out := SanitizeHTML(in)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find("span.coral-rte-spoiler").Text() != "hidden" {
		t.Errorf("spoiler marker lost: %s", out)
	}
	if doc.Find("span.sarcasm").Text() != "sure" {
		t.Errorf("sarcasm marker lost: %s", out)
	}
}

func TestSanitizeHTMLKeepsMarkersOnAnyElement(t *testing.T) {
	in := `<p class="spoiler">a</p><blockquote class="coral-rte-sarcasm">b</blockquote>` +
		`<ul><li data-spoiler>c</li></ul><strong data-sarcasm>d</strong>`
	out := SanitizeHTML(in)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		sel  string
		want string
	}{
		{"p.spoiler", "a"},
		{"blockquote.coral-rte-sarcasm", "b"},
		{"li[data-spoiler]", "c"},
		{"strong[data-sarcasm]", "d"},
	}
	for _, tt := range tests {
		if got := doc.Find(tt.sel).Text(); got != tt.want {
			t.Errorf("%s = %q, want %q in %s", tt.sel, got, tt.want, out)
		}
	}
}

func TestSanitizeHTMLStripsUnsafe(t *testing.T) {
	tests := []struct {
		in     string
		banned []string
		kept   string
	}{
		{`<script>alert(1)</script>hi`, []string{"<script", "alert"}, "hi"},
		{`<p onclick="x()">p</p>`, []string{"onclick"}, "<p>p</p>"},
		{`<a href="javascript:alert(1)">x</a>`, []string{"javascript"}, "x"},
		{`<span class="big spoiler-ish">x</span>`, []string{"big"}, "x"},
		{`<img src="https://example.com/x.png">ok`, []string{"<img"}, "ok"},
		{`<span style="color:red">s</span>`, []string{"style"}, "s"},
	}

	for _, tt := range tests {
		out := SanitizeHTML(tt.in)
		for _, b := range tt.banned {
			if strings.Contains(out, b) {
				t.Errorf("SanitizeHTML(%q) = %q, contains %q", tt.in, out, b)
			}
		}
		if !strings.Contains(out, tt.kept) {
			t.Errorf("SanitizeHTML(%q) = %q, lost %q", tt.in, out, tt.kept)
		}
	}
}

func TestSanitizeHTMLLinks(t *testing.T) {
	out := SanitizeHTML(`<a href="https://example.com/page">link</a>`)
	for _, want := range []string{`href="https://example.com/page"`, `target="_blank"`, "nofollow"} {
		if !strings.Contains(out, want) {
			t.Errorf("SanitizeHTML link = %q, missing %q", out, want)
		}
	}
}

func TestSanitizeHTMLEmpty(t *testing.T) {
	if got := SanitizeHTML(""); got != "" {
		t.Errorf("SanitizeHTML(\"\") = %q", got)
	}
}
