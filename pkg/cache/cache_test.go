package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("unexpected hit before Set")
	}

	// Round trip
	want := []byte{0x89, 'P', 'N', 'G', 0x00}
	if err := c.Set(ctx, "key", want, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get = %v, want %v", got, want)
	}

	// Delete removes the entry
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("unexpected hit after Delete")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Already-expired entry reads as a miss.
	if err := c.Set(ctx, "key", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired entry should be a miss")
	}

	// Zero TTL means no expiration.
	if err := c.Set(ctx, "forever", []byte("fresh"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero-TTL entry should not expire")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestArtifactKey(t *testing.T) {
	keyer := NewDefaultKeyer()
	opts := KeyOpts{
		Levels:    5,
		BaseSize:  5,
		TileColor: "#3b82f6",
		Pattern:   "marble",
		BaseType:  "square",
	}

	k1 := keyer.ArtifactKey("png", opts)
	k2 := keyer.ArtifactKey("png", opts)
	if k1 != k2 {
		t.Error("identical options should produce identical keys")
	}

	// Every field must affect the key.
	variants := []KeyOpts{}
	for _, mutate := range []func(*KeyOpts){
		func(o *KeyOpts) { o.Levels = 6 },
		func(o *KeyOpts) { o.BaseSize = 6 },
		func(o *KeyOpts) { o.TileColor = "#000000" },
		func(o *KeyOpts) { o.Pattern = "neon" },
		func(o *KeyOpts) { o.BaseType = "triangular" },
		func(o *KeyOpts) { o.Dark = true },
		func(o *KeyOpts) { o.Seed = 42 },
	} {
		v := opts
		mutate(&v)
		variants = append(variants, v)
	}
	seen := map[string]bool{k1: true}
	for i, v := range variants {
		k := keyer.ArtifactKey("png", v)
		if seen[k] {
			t.Errorf("variant %d did not change the key", i)
		}
		seen[k] = true
	}

	// Format is part of the key.
	if keyer.ArtifactKey("thumb", opts) == k1 {
		t.Error("format should affect the key")
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := KeyOpts{Levels: 5, BaseSize: 5}
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:abc:")

	got := scoped.ArtifactKey("png", opts)
	want := "user:abc:" + inner.ArtifactKey("png", opts)
	if got != want {
		t.Errorf("scoped key = %q, want %q", got, want)
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if fallback.ArtifactKey("png", opts) != "p:"+inner.ArtifactKey("png", opts) {
		t.Error("nil inner should use the default keyer")
	}
}
