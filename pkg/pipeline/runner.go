package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/ziggurat-io/ziggurat/pkg/cache"
	"github.com/ziggurat-io/ziggurat/pkg/errors"
	"github.com/ziggurat-io/ziggurat/pkg/observability"
	"github.com/ziggurat-io/ziggurat/pkg/pyramid"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TileCount  int
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// Execute runs the complete render → derive pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}
	result.Stats.TileCount = pyramid.TileCount(opts.Params)

	// Try to serve every requested format from the cache. Unseeded stone
	// renders are intentionally different on every run, so they never
	// touch the cache.
	if !opts.Refresh && opts.Deterministic() {
		if artifacts, ok := r.fromCache(ctx, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			observability.Cache().OnCacheHit(ctx, "render")
			r.Logger.Debug("served render from cache", "formats", opts.Formats)
			return result, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	observability.Render().OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, err := r.render(ctx, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Render().OnRenderComplete(ctx, opts.Formats, result.Stats.TileCount, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	if opts.Deterministic() {
		for format, data := range artifacts {
			key := r.Keyer.ArtifactKey(format, opts.KeyOpts())
			if r.Cache.Set(ctx, key, data, cache.TTLArtifact) == nil {
				observability.Cache().OnCacheSet(ctx, "render", len(data))
			}
		}
	}

	r.Logger.Info("rendered pyramid",
		"tiles", result.Stats.TileCount,
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// fromCache attempts to load all requested formats from the cache.
func (r *Runner) fromCache(ctx context.Context, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(format, opts.KeyOpts())
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}

// render produces the full-size PNG and derives any secondary formats.
func (r *Runner) render(ctx context.Context, opts Options) (map[string][]byte, error) {
	var renderOpts []pyramid.Option
	if opts.Seed != 0 {
		renderOpts = append(renderOpts, pyramid.WithRand(rand.New(rand.NewSource(opts.Seed))))
	}

	full, err := pyramid.Render(opts.Params, opts.Dark, renderOpts...)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatPNG:
			artifacts[format] = full
		case FormatThumb:
			thumb, err := makeThumb(full)
			if err != nil {
				return nil, err
			}
			artifacts[format] = thumb
		}
	}
	return artifacts, nil
}

// makeThumb downsamples the full-size PNG to a ThumbSize-wide thumbnail.
func makeThumb(full []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(full))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode render for thumbnail")
	}
	small := imaging.Resize(img, ThumbSize, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, small, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode thumbnail")
	}
	return buf.Bytes(), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
