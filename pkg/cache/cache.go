// Package cache provides artifact caching for rendered images.
//
// Rendering is cheap but not free, and the same parameter set is often
// requested repeatedly (regenerate clicks, history re-display, API
// clients). The cache stores encoded artifacts keyed by a content hash of
// the full parameter set, so identical requests are served without
// re-rasterizing.
//
// Three backends are provided:
//   - FileCache: XDG cache directory, used by the CLI
//   - RedisCache: shared cache for server deployments
//   - NullCache: disables caching
package cache

import (
	"context"
	"time"
)

// TTL constants for cached artifacts.
const (
	// TTLArtifact is how long rendered images stay cached. Renders are
	// deterministic for a given key, so the TTL only bounds disk usage.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// KeyOpts identifies one rendered artifact. Every field that affects the
// output bytes must appear here, or stale images will be served.
type KeyOpts struct {
	Levels    int    `json:"levels"`
	BaseSize  int    `json:"base_size"`
	TileColor string `json:"tile_color"`
	Pattern   string `json:"pattern"`
	BaseType  string `json:"base_type"`
	Dark      bool   `json:"dark"`
	Seed      int64  `json:"seed"`
}

// Keyer generates cache keys for rendered artifacts.
type Keyer interface {
	// ArtifactKey returns the key for an encoded artifact in the given
	// format ("png", "thumb").
	ArtifactKey(format string, opts KeyOpts) string
}

// DefaultKeyer generates render-prefixed SHA-256 keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(format string, opts KeyOpts) string {
	return hashKey("render:"+format, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g.
// separating per-user caches on a shared redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(format string, opts KeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(format, opts)
}
