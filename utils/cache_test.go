package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCacheWithoutRedis(t *testing.T) {
	ctx := context.Background()

	var v string
	if err := CacheGet(ctx, "k", &v); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("CacheGet error = %v, want ErrCacheUnavailable", err)
	}
	if err := CacheSet(ctx, "k", "v", time.Minute); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("CacheSet error = %v, want ErrCacheUnavailable", err)
	}
	if err := CacheDelete(ctx, "k"); err != nil {
		t.Errorf("CacheDelete error = %v, want nil", err)
	}
	if err := CacheDeletePattern(ctx, "k:*"); err != nil {
		t.Errorf("CacheDeletePattern error = %v, want nil", err)
	}
}

func TestBuildCacheKey(t *testing.T) {
	if got := BuildCacheKey("reports", "list", "open", "page", 2); got != "reports:list:open:page:2" {
		t.Errorf("BuildCacheKey = %q", got)
	}
}

func TestEmbedCacheKeyChangesWithVersions(t *testing.T) {
	t1 := time.Unix(100, 0)
	t2 := time.Unix(200, 0)

	a := EmbedCacheKey("c1", t1, t1)
	if a != EmbedCacheKey("c1", t1, t1) {
		t.Error("same inputs gave different keys")
	}
	if a == EmbedCacheKey("c1", t2, t1) {
		t.Error("comment update did not change the key")
	}
	if a == EmbedCacheKey("c1", t1, t2) {
		t.Error("settings update did not change the key")
	}
	if a == EmbedCacheKey("c2", t1, t1) {
		t.Error("different comments share a key")
	}
}
