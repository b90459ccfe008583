package pyramid

import (
	"strings"

	"github.com/ziggurat-io/ziggurat/pkg/errors"
)

// Parameter domain limits.
const (
	MinLevels   = 2  // minimum pyramid height in steps
	MaxLevels   = 15 // maximum pyramid height in steps
	MinBaseSize = 3  // minimum footprint edge length in tiles
	MaxBaseSize = 20 // maximum footprint edge length in tiles
)

// Defaults applied by WithDefaults for zero-valued fields.
const (
	DefaultLevels    = 5
	DefaultBaseSize  = 9
	DefaultTileColor = "#3b82f6"
)

// Pattern selects the per-tile color treatment.
// Only PatternNeon and PatternStone alter the base color; every other
// pattern renders in the flat tile color.
type Pattern string

// Supported tile patterns.
const (
	PatternMarble    Pattern = "marble"
	PatternStone     Pattern = "stone" // rough stone: random per-tile color noise
	PatternNeon      Pattern = "neon"  // red channel brightens with height
	PatternSandstone Pattern = "sandstone"
	PatternObsidian  Pattern = "obsidian"
)

// Patterns lists all supported patterns in display order.
func Patterns() []Pattern {
	return []Pattern{PatternMarble, PatternStone, PatternNeon, PatternSandstone, PatternObsidian}
}

// ParsePattern converts a string to a Pattern, case-insensitively.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Patterns() {
		if p == known {
			return p, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidPattern,
		"invalid pattern: %q (must be one of: marble, stone, neon, sandstone, obsidian)", s)
}

// BaseType determines the footprint mask applied to every layer.
type BaseType string

// Supported base types.
const (
	// BaseSquare draws the full size×size footprint per layer.
	BaseSquare BaseType = "square"

	// BaseTriangular keeps only tiles with x ≤ y, producing a triangular
	// footprint per layer.
	BaseTriangular BaseType = "triangular"
)

// ParseBaseType converts a string to a BaseType, case-insensitively.
func ParseBaseType(s string) (BaseType, error) {
	switch BaseType(strings.ToLower(strings.TrimSpace(s))) {
	case BaseSquare:
		return BaseSquare, nil
	case BaseTriangular:
		return BaseTriangular, nil
	}
	return "", errors.New(errors.ErrCodeInvalidBaseType,
		"invalid base type: %q (must be 'square' or 'triangular')", s)
}

// Parameters is the structural and aesthetic input to the renderer.
// The struct supports JSON serialization for API requests and BSON for
// history persistence.
type Parameters struct {
	// Levels is the pyramid height in steps, in [MinLevels, MaxLevels].
	Levels int `json:"levels" bson:"levels"`

	// BaseSize is the footprint edge length in tile units, in
	// [MinBaseSize, MaxBaseSize].
	BaseSize int `json:"base_size" bson:"base_size"`

	// TileColor is the base tile color as a hex string ("#RRGGBB").
	TileColor string `json:"tile_color" bson:"tile_color"`

	// Pattern is the tile material tag.
	Pattern Pattern `json:"pattern" bson:"pattern"`

	// BaseType selects the footprint mask (square or triangular).
	BaseType BaseType `json:"base_type" bson:"base_type"`
}

// Validate checks every field against its domain.
// It returns a structured error with an INVALID_* code on the first
// violation found.
func (p Parameters) Validate() error {
	if p.Levels < MinLevels || p.Levels > MaxLevels {
		return errors.New(errors.ErrCodeInvalidLevels,
			"levels must be between %d and %d, got %d", MinLevels, MaxLevels, p.Levels)
	}
	if p.BaseSize < MinBaseSize || p.BaseSize > MaxBaseSize {
		return errors.New(errors.ErrCodeInvalidBaseSize,
			"base size must be between %d and %d, got %d", MinBaseSize, MaxBaseSize, p.BaseSize)
	}
	if _, err := ParseHex(p.TileColor); err != nil {
		return err
	}
	if _, err := ParsePattern(string(p.Pattern)); err != nil {
		return err
	}
	if _, err := ParseBaseType(string(p.BaseType)); err != nil {
		return err
	}
	return nil
}

// WithDefaults returns a copy of p with zero-valued fields replaced by
// sensible defaults. Validation still applies afterwards.
func (p Parameters) WithDefaults() Parameters {
	if p.Levels == 0 {
		p.Levels = DefaultLevels
	}
	if p.BaseSize == 0 {
		p.BaseSize = DefaultBaseSize
	}
	if p.TileColor == "" {
		p.TileColor = DefaultTileColor
	}
	if p.Pattern == "" {
		p.Pattern = PatternMarble
	}
	if p.BaseType == "" {
		p.BaseType = BaseSquare
	}
	return p
}
