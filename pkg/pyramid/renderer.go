package pyramid

import (
	"math"
	"math/rand"
	"time"

	"github.com/ziggurat-io/ziggurat/pkg/errors"
)

// CanvasSize is the fixed edge length of the square output raster in
// logical pixels.
const CanvasSize = 1024

const (
	// maxScale caps the isometric scale so small bases don't produce
	// oversized tiles.
	maxScale = 60

	// layerStep is the vertical step between stacked layers as a fraction
	// of the tile height. The compression below 1.0 makes stacked layers
	// read as a continuous pyramid instead of floating cubes.
	layerStep = 0.85

	// stoneJitter bounds the per-channel color noise of PatternStone.
	stoneJitter = 10

	// neonRisePerLevel is the red-channel boost PatternNeon gains per layer.
	neonRisePerLevel = 10
)

// Background gradient palettes, two stops each, selected by theme.
var (
	darkTop     = RGB{R: 0x0f, G: 0x17, B: 0x2a} // dark navy
	darkBottom  = RGB{R: 0x33, G: 0x41, B: 0x55} // slate
	lightTop    = RGB{R: 0xf8, G: 0xfa, B: 0xfc} // near white
	lightBottom = RGB{R: 0xcb, G: 0xd5, B: 0xe1} // light slate
)

// Option configures a render call.
type Option func(*renderer)

// WithRand injects the random source used for PatternStone noise.
// Injecting a seeded source makes stone renders reproducible; by default
// every invocation uses fresh entropy and yields a different image.
func WithRand(rng *rand.Rand) Option {
	return func(r *renderer) { r.rng = rng }
}

// WithSurfaceFactory replaces the default software rasterizer, e.g. with
// a recording surface in tests or a GPU-backed canvas.
func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(r *renderer) { r.newSurface = f }
}

type renderer struct {
	newSurface SurfaceFactory
	rng        *rand.Rand
}

// Render synthesizes the pyramid described by params onto a fresh
// CanvasSize×CanvasSize surface and returns it PNG-encoded. The dark flag
// selects the background gradient palette.
//
// Render either returns image bytes or an error; a SURFACE_UNAVAILABLE
// code means the drawing surface could not be allocated and callers should
// treat the result as "no image". Each call owns a private surface, so
// concurrent calls do not interfere.
func Render(params Parameters, dark bool, opts ...Option) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	r := renderer{newSurface: NewRasterSurface}
	for _, opt := range opts {
		opt(&r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	surface, err := r.newSurface(CanvasSize, CanvasSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSurfaceUnavailable, err, "drawing surface unavailable")
	}

	if dark {
		surface.FillVerticalGradient(darkTop, darkBottom)
	} else {
		surface.FillVerticalGradient(lightTop, lightBottom)
	}

	base, err := ParseHex(params.TileColor)
	if err != nil {
		return nil, err
	}

	geo := newGeometry(params.BaseSize)
	forEachTile(params, func(x, y, z int) {
		tile := base
		switch params.Pattern {
		case PatternNeon:
			tile.R = clampChannel(float64(int(tile.R) + neonRisePerLevel*z))
		case PatternStone:
			tile = tile.Jitter(r.rng, stoneJitter)
		}
		drawCube(surface, geo, geo.project(x, y, z), tile)
	})

	data, err := surface.EncodePNG()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return data, nil
}

// TileCount returns the number of tiles Render would draw for params,
// without rendering anything.
func TileCount(params Parameters) int {
	n := 0
	forEachTile(params, func(x, y, z int) { n++ })
	return n
}

// layerSize returns the footprint edge length at layer z. The structure
// tapers by two tiles per layer, floored at a single tile: once the raw
// subtraction goes non-positive, layers plateau at size 1 instead of
// tapering to nothing. Legacy behavior, kept as observed.
func layerSize(baseSize, z int) int {
	return max(1, baseSize-z*2)
}

// forEachTile invokes fn for every tile of the structure in paint order:
// z from the base upward, then x outer, y inner. The order is fixed; it is
// what guarantees correct occlusion under the painter's algorithm.
//
// Grid coordinates passed to fn already include the centering offset that
// keeps shrinking layers aligned over the full footprint.
func forEachTile(params Parameters, fn func(x, y, z int)) {
	for z := 0; z < params.Levels; z++ {
		current := layerSize(params.BaseSize, z)
		// Hard stop for degenerate layers. The floor in layerSize keeps
		// current at 1 within the valid parameter domain, so valid bases
		// plateau instead of stopping early.
		if current <= 0 && z > 0 {
			break
		}
		offset := (params.BaseSize - current) / 2
		for x := 0; x < current; x++ {
			for y := 0; y < current; y++ {
				if params.BaseType == BaseTriangular && x > y {
					continue
				}
				fn(x+offset, y+offset, z)
			}
		}
	}
}

// geometry holds the projection constants derived from the base size.
type geometry struct {
	tileW   float64 // projected tile width
	tileH   float64 // projected tile height
	centerX float64 // horizontal projection origin
	centerY float64 // vertical projection origin
}

// newGeometry derives the isometric scale so the whole structure fits the
// canvas. The origin sits at the horizontal canvas center and is offset
// downward by half the base footprint's projected height.
func newGeometry(baseSize int) geometry {
	scale := math.Min(float64(CanvasSize)/(float64(baseSize)*4), maxScale)
	tileW := 2 * scale
	tileH := scale
	return geometry{
		tileW:   tileW,
		tileH:   tileH,
		centerX: float64(CanvasSize) / 2,
		centerY: float64(CanvasSize)/2 + float64(baseSize)*tileH/2,
	}
}

// project maps grid coordinates to the canvas position of a tile's origin.
func (g geometry) project(x, y, z int) Point {
	return Point{
		X: float64(x-y)*g.tileW*0.5 + g.centerX,
		Y: float64(x+y)*g.tileH*0.5 - float64(z)*g.tileH*layerStep + g.centerY,
	}
}

// Per-face brightness relative to the tile color. The top face catches
// the most light, the right face the least.
const (
	shadeTop   = 20
	shadeRight = -15
	shadeLeft  = -5

	// strokeShade darkens each face color for its 1px outline.
	strokeShade = -30
)

// drawCube draws the three visible faces of an isometric cube whose
// silhouette spans from at.Y down at the bottom vertex to at.Y - 2*tileH
// at the apex of the top diamond. Faces are drawn back to front: left,
// right, then top.
func drawCube(s Surface, g geometry, at Point, c RGB) {
	x, y := at.X, at.Y
	halfW := g.tileW / 2
	h := g.tileH

	left := []Point{
		{x, y - h},
		{x - halfW, y - 1.5*h},
		{x - halfW, y - 0.5*h},
		{x, y},
	}
	right := []Point{
		{x, y - h},
		{x + halfW, y - 1.5*h},
		{x + halfW, y - 0.5*h},
		{x, y},
	}
	top := []Point{
		{x, y - 2*h},
		{x + halfW, y - 1.5*h},
		{x, y - h},
		{x - halfW, y - 1.5*h},
	}

	leftColor := c.Shade(shadeLeft)
	rightColor := c.Shade(shadeRight)
	topColor := c.Shade(shadeTop)

	s.FillPolygon(left, leftColor, leftColor.Shade(strokeShade))
	s.FillPolygon(right, rightColor, rightColor.Shade(strokeShade))
	s.FillPolygon(top, topColor, topColor.Shade(strokeShade))
}
