package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  Page
	}{
		{"", Page{Page: 1, Limit: DefaultPageLimit}},
		{"?page=3&limit=20", Page{Page: 3, Limit: 20}},
		{"?page=0&limit=0", Page{Page: 1, Limit: DefaultPageLimit}},
		{"?page=-2&limit=500", Page{Page: 1, Limit: DefaultPageLimit}},
		{"?page=x&limit=y", Page{Page: 1, Limit: DefaultPageLimit}},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/reports"+tt.query, nil)
		if got := ParsePage(r); got != tt.want {
			t.Errorf("ParsePage(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestPageOffsetAndMeta(t *testing.T) {
	p := Page{Page: 3, Limit: 20}
	if p.Offset() != 40 {
		t.Errorf("Offset = %d, want 40", p.Offset())
	}

	m := p.Meta(45)
	if m.TotalPages != 3 || m.Total != 45 || m.Page != 3 || m.Limit != 20 {
		t.Errorf("Meta(45) = %+v", m)
	}
	if m := p.Meta(0); m.TotalPages != 0 {
		t.Errorf("Meta(0).TotalPages = %d, want 0", m.TotalPages)
	}
}
