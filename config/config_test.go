package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coral-embed-be/embed"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("CORAL_TEST_KEY", "value")
	if got := GetEnv("CORAL_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("GetEnv = %q, want value", got)
	}

	t.Setenv("CORAL_TEST_KEY", "")
	if got := GetEnv("CORAL_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("GetEnv on empty = %q, want fallback", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func transformOrFail(t *testing.T, tr *embed.Transformer, in string) string {
	t.Helper()
	out, err := tr.Transform(embed.Markup(in))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestLoadTransformerDefaults(t *testing.T) {
	t.Setenv("EMBED_ALLOWLIST", "")
	t.Setenv("EMBED_MAX_BYTES", "")
	t.Setenv("EMBED_REVEAL_TITLE", "")

	out := transformOrFail(t, LoadTransformer(), `<span class="spoiler">x</span>`)
	if !strings.Contains(out, `title="`+embed.DefaultRevealTitle+`"`) {
		t.Errorf("expected default reveal title: %s", out)
	}
}

func TestLoadTransformerFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allow.toml")
	err := os.WriteFile(path, []byte(`
global_attrs = ["class"]
spoiler_classes = ["hush"]

[tags]
span = []
`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("EMBED_ALLOWLIST", path)
	t.Setenv("EMBED_MAX_BYTES", "64")
	t.Setenv("EMBED_REVEAL_TITLE", "Tap to show")

	tr := LoadTransformer()
	out := transformOrFail(t, tr, `<p><span class="hush">x</span></p>`)
	if !strings.Contains(out, `title="Tap to show"`) || strings.Contains(out, "<p>") {
		t.Errorf("custom allow-list or title not applied: %s", out)
	}
	if tr.Sanitizer().MaxBytes != 64 {
		t.Errorf("MaxBytes = %d, want 64", tr.Sanitizer().MaxBytes)
	}
}

func TestLoadTransformerFallsBackOnBadAllowList(t *testing.T) {
	t.Setenv("EMBED_ALLOWLIST", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("EMBED_MAX_BYTES", "not-a-number")

	tr := LoadTransformer()
	if got := transformOrFail(t, tr, "<p>ok</p>"); got != "<p>ok</p>" {
		t.Errorf("built-in allow-list not used: %s", got)
	}
	if tr.Sanitizer().MaxBytes != embed.DefaultMaxBytes {
		t.Errorf("MaxBytes = %d, want default", tr.Sanitizer().MaxBytes)
	}
}
