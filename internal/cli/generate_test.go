package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ziggurat-io/ziggurat/pkg/errors"
	"github.com/ziggurat-io/ziggurat/pkg/pipeline"
	"github.com/ziggurat-io/ziggurat/pkg/pyramid"
)

func defaultGenerateOpts() generateOpts {
	return generateOpts{
		levels:   pyramid.DefaultLevels,
		baseSize: pyramid.DefaultBaseSize,
		color:    pyramid.DefaultTileColor,
		pattern:  string(pyramid.PatternMarble),
		baseType: string(pyramid.BaseSquare),
	}
}

func TestParseParams(t *testing.T) {
	opts := defaultGenerateOpts()
	params, err := opts.parseParams()
	if err != nil {
		t.Fatalf("parseParams() error: %v", err)
	}
	if params.Levels != pyramid.DefaultLevels || params.Pattern != pyramid.PatternMarble {
		t.Errorf("unexpected params: %+v", params)
	}

	// Mixed-case flag values are accepted.
	opts = defaultGenerateOpts()
	opts.pattern = "Neon"
	opts.baseType = "TRIANGULAR"
	params, err = opts.parseParams()
	if err != nil {
		t.Fatalf("parseParams() error: %v", err)
	}
	if params.Pattern != pyramid.PatternNeon || params.BaseType != pyramid.BaseTriangular {
		t.Errorf("case-insensitive parse failed: %+v", params)
	}
}

func TestParseParamsRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*generateOpts)
		code   errors.Code
	}{
		{"bad pattern", func(o *generateOpts) { o.pattern = "plaid" }, errors.ErrCodeInvalidPattern},
		{"bad base type", func(o *generateOpts) { o.baseType = "round" }, errors.ErrCodeInvalidBaseType},
		{"levels too high", func(o *generateOpts) { o.levels = 99 }, errors.ErrCodeInvalidLevels},
		{"bad color", func(o *generateOpts) { o.color = "blue" }, errors.ErrCodeInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultGenerateOpts()
			tt.mutate(&opts)
			if _, err := opts.parseParams(); !errors.Is(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); !reflect.DeepEqual(got, []string{pipeline.FormatPNG}) {
		t.Errorf("parseFormats(\"\") = %v", got)
	}
	if got := parseFormats("png,thumb"); !reflect.DeepEqual(got, []string{"png", "thumb"}) {
		t.Errorf("parseFormats(\"png,thumb\") = %v", got)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "tower.png")

	paths, err := writeArtifacts(out, map[string][]byte{
		pipeline.FormatPNG:   []byte("full"),
		pipeline.FormatThumb: []byte("small"),
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 entries", paths)
	}

	data, err := os.ReadFile(out)
	if err != nil || string(data) != "full" {
		t.Errorf("full png not written: %v", err)
	}
	data, err = os.ReadFile(filepath.Join(dir, "tower_thumb.png"))
	if err != nil || string(data) != "small" {
		t.Errorf("thumbnail not written: %v", err)
	}
}

func TestWriteArtifactsThumbOnly(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "only.png")

	paths, err := writeArtifacts(out, map[string][]byte{
		pipeline.FormatThumb: []byte("small"),
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	if len(paths) != 1 || paths[0] != out {
		t.Errorf("thumb-only render should use the requested path, got %v", paths)
	}
}
