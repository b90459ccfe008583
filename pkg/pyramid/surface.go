package pyramid

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
)

// Point is a 2D canvas coordinate in pixels.
type Point struct {
	X, Y float64
}

// Surface is the immediate-mode drawing capability the renderer targets.
// Implementations own a private canvas for the duration of one render and
// serialize it once at the end.
type Surface interface {
	// FillVerticalGradient fills the whole canvas with a two-stop linear
	// gradient from top to bottom.
	FillVerticalGradient(top, bottom RGB)

	// FillPolygon fills the polygon described by pts and strokes its
	// outline with a 1px line in the stroke color.
	FillPolygon(pts []Point, fill, stroke RGB)

	// EncodePNG serializes the canvas as a PNG byte buffer.
	EncodePNG() ([]byte, error)
}

// SurfaceFactory allocates a Surface of the given pixel dimensions.
// A factory that cannot provide a drawing context returns an error, which
// the renderer reports as SURFACE_UNAVAILABLE.
type SurfaceFactory func(width, height int) (Surface, error)

// rasterSurface draws into an in-memory RGBA image via fogleman/gg.
type rasterSurface struct {
	dc     *gg.Context
	width  int
	height int
}

// NewRasterSurface is the default SurfaceFactory. It allocates a software
// rasterizer backed by an in-memory RGBA image.
func NewRasterSurface(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface dimensions %dx%d", width, height)
	}
	return &rasterSurface{
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
	}, nil
}

func (s *rasterSurface) FillVerticalGradient(top, bottom RGB) {
	grad := gg.NewLinearGradient(0, 0, 0, float64(s.height))
	grad.AddColorStop(0, top)
	grad.AddColorStop(1, bottom)
	s.dc.SetFillStyle(grad)
	s.dc.DrawRectangle(0, 0, float64(s.width), float64(s.height))
	s.dc.Fill()
}

func (s *rasterSurface) FillPolygon(pts []Point, fill, stroke RGB) {
	if len(pts) == 0 {
		return
	}
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	s.dc.ClosePath()
	s.dc.SetColor(fill)
	s.dc.FillPreserve()
	s.dc.SetColor(stroke)
	s.dc.SetLineWidth(1)
	s.dc.Stroke()
}

func (s *rasterSurface) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Ensure rasterSurface implements Surface.
var _ Surface = (*rasterSurface)(nil)
