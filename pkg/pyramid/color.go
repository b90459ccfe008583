package pyramid

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"

	"github.com/ziggurat-io/ziggurat/pkg/errors"
)

// RGB is a color triple of 8-bit channels.
// It implements color.Color so it can be handed to the rasterizer directly.
type RGB struct {
	R, G, B uint8
}

// hexColorRegex matches "#RRGGBB" hex color strings.
var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseHex decodes a "#RRGGBB" hex string into an RGB triple.
func ParseHex(s string) (RGB, error) {
	if !hexColorRegex.MatchString(s) {
		return RGB{}, errors.New(errors.ErrCodeInvalidColor,
			"invalid tile color: %q (must be '#RRGGBB')", s)
	}
	var c RGB
	// The regex guarantees the scan succeeds.
	fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	return c, nil
}

// Hex returns the "#rrggbb" representation.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA implements color.Color (fully opaque).
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Shade brightens (positive percent) or darkens (negative percent) the
// color. Each channel becomes clamp(0, 255, floor(c * (1 + percent/100))),
// applied independently to R, G, and B.
func (c RGB) Shade(percent float64) RGB {
	factor := 1 + percent/100
	return RGB{
		R: clampChannel(math.Floor(float64(c.R) * factor)),
		G: clampChannel(math.Floor(float64(c.G) * factor)),
		B: clampChannel(math.Floor(float64(c.B) * factor)),
	}
}

// Jitter adds an independent random offset in [-amount, amount] to each
// channel, clamped to the 8-bit range. The source color is not mutated.
func (c RGB) Jitter(rng *rand.Rand, amount int) RGB {
	span := amount*2 + 1
	return RGB{
		R: clampChannel(float64(int(c.R) + rng.Intn(span) - amount)),
		G: clampChannel(float64(int(c.G) + rng.Intn(span) - amount)),
		B: clampChannel(float64(int(c.B) + rng.Intn(span) - amount)),
	}
}

// clampChannel clamps v to [0, 255] and converts to uint8.
func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
