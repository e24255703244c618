package config

import (
	"log/slog"
	"strconv"
	"sync"

	"coral-embed-be/embed"
)

var (
	transformer     *embed.Transformer
	transformerOnce sync.Once
)

// LoadTransformer builds the embed transformer from EMBED_ALLOWLIST,
// EMBED_MAX_BYTES and EMBED_REVEAL_TITLE. A missing or broken allow-list
// file falls back to the built-in one.
func LoadTransformer() *embed.Transformer {
	var al *embed.AllowList
	if path := GetEnv("EMBED_ALLOWLIST", ""); path != "" {
		loaded, err := embed.LoadAllowList(path)
		if err != nil {
			slog.Error("allow-list not loaded, using built-in", "path", path, "err", err)
		} else {
			al = loaded
		}
	}

	san := embed.NewSanitizer(al)
	if v := GetEnv("EMBED_MAX_BYTES", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			san.MaxBytes = n
		} else {
			slog.Warn("ignoring bad EMBED_MAX_BYTES", "value", v)
		}
	}

	return embed.NewTransformer(san, GetEnv("EMBED_REVEAL_TITLE", embed.DefaultRevealTitle))
}

// GetTransformer returns the process-wide transformer, built on first use.
func GetTransformer() *embed.Transformer {
	transformerOnce.Do(func() {
		transformer = LoadTransformer()
	})
	return transformer
}
