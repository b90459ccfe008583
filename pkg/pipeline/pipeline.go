// Package pipeline provides the core generation pipeline for Ziggurat.
//
// This package implements the validate → render → encode pipeline shared
// by the CLI and the HTTP API. Centralizing it keeps caching behavior and
// defaults consistent across all entry points.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Render: Rasterize the pyramid from its parameter set (PNG)
//  2. Derive: Produce secondary artifacts (currently a thumbnail)
//
// Rendered artifacts are cached by a content hash of the parameter set,
// except for unseeded stone renders, which are intentionally
// non-deterministic and bypass the cache entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Params: pyramid.Parameters{Levels: 5, BaseSize: 9, TileColor: "#3b82f6"},
//	    Formats: []string{pipeline.FormatPNG},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/ziggurat-io/ziggurat/pkg/cache"
	"github.com/ziggurat-io/ziggurat/pkg/errors"
	"github.com/ziggurat-io/ziggurat/pkg/pyramid"
)

// Format constants for output artifacts.
const (
	FormatPNG   = "png"
	FormatThumb = "thumb"
)

// ThumbSize is the thumbnail edge length in pixels.
const ThumbSize = 256

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatPNG:   true,
	FormatThumb: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: png, thumb)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for the generation pipeline.
// The struct supports JSON serialization for API requests.
type Options struct {
	// Params is the structural/aesthetic parameter set. Zero-valued
	// fields are filled with defaults before validation.
	Params pyramid.Parameters `json:"params"`

	// Dark selects the dark background gradient.
	Dark bool `json:"dark,omitempty"`

	// Seed pins the stone-pattern noise for reproducible renders.
	// Zero means fresh entropy per invocation.
	Seed int64 `json:"seed,omitempty"`

	// Formats lists the artifacts to produce (default: png).
	Formats []string `json:"formats,omitempty"`

	// Refresh forces re-rendering even on a cache hit.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	o.Params = o.Params.WithDefaults()
	if err := o.Params.Validate(); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Deterministic reports whether two runs with these options produce
// identical bytes. Only the stone pattern without an explicit seed is
// non-deterministic; such runs bypass the cache.
func (o *Options) Deterministic() bool {
	return o.Params.Pattern != pyramid.PatternStone || o.Seed != 0
}

// KeyOpts returns the cache key options identifying this render.
func (o *Options) KeyOpts() cache.KeyOpts {
	return cache.KeyOpts{
		Levels:    o.Params.Levels,
		BaseSize:  o.Params.BaseSize,
		TileColor: o.Params.TileColor,
		Pattern:   string(o.Params.Pattern),
		BaseType:  string(o.Params.BaseType),
		Dark:      o.Dark,
		Seed:      o.Seed,
	}
}
