package pyramid

import (
	"math/rand"
	"testing"

	"github.com/ziggurat-io/ziggurat/pkg/errors"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#3b82f6", RGB{0x3b, 0x82, 0xf6}, false},
		{"#000000", RGB{0, 0, 0}, false},
		{"#FFFFFF", RGB{255, 255, 255}, false},
		{"3b82f6", RGB{}, true},  // missing hash
		{"#3b82f", RGB{}, true},  // too short
		{"#3b82f6a", RGB{}, true}, // too long
		{"#zzzzzz", RGB{}, true},  // not hex
		{"", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHex(%q) should fail", tt.in)
				}
				if !errors.Is(err, errors.ErrCodeInvalidColor) {
					t.Errorf("error code = %q, want INVALID_COLOR", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGB{0x3b, 0x82, 0xf6}
	if got := c.Hex(); got != "#3b82f6" {
		t.Errorf("Hex() = %q, want %q", got, "#3b82f6")
	}
}

func TestShade(t *testing.T) {
	tests := []struct {
		name    string
		in      RGB
		percent float64
		want    RGB
	}{
		// c' = clamp(0, 255, floor(c * (1 + p/100)))
		{"brighten 20%", RGB{100, 100, 100}, 20, RGB{120, 120, 120}},
		{"darken 15%", RGB{100, 100, 100}, -15, RGB{85, 85, 85}},
		{"darken 5%", RGB{200, 100, 50}, -5, RGB{190, 95, 47}},
		{"floor applied", RGB{99, 99, 99}, -15, RGB{84, 84, 84}}, // 99*0.85 = 84.15
		{"clamp high", RGB{255, 255, 255}, 20, RGB{255, 255, 255}},
		{"clamp low", RGB{0, 0, 0}, -15, RGB{0, 0, 0}},
		{"no change", RGB{42, 0, 255}, 0, RGB{42, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Shade(tt.percent); got != tt.want {
				t.Errorf("Shade(%v) = %+v, want %+v", tt.percent, got, tt.want)
			}
		})
	}
}

func TestShadeDoesNotMutate(t *testing.T) {
	c := RGB{100, 150, 200}
	_ = c.Shade(20)
	if c != (RGB{100, 150, 200}) {
		t.Error("Shade must not mutate the source color")
	}
}

func TestJitterBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := RGB{128, 128, 128}

	for i := 0; i < 1000; i++ {
		j := base.Jitter(rng, 10)
		for name, pair := range map[string][2]uint8{
			"R": {base.R, j.R},
			"G": {base.G, j.G},
			"B": {base.B, j.B},
		} {
			diff := int(pair[1]) - int(pair[0])
			if diff < -10 || diff > 10 {
				t.Fatalf("channel %s jittered by %d, want within ±10", name, diff)
			}
		}
	}
}

func TestJitterClamps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		lo := RGB{0, 0, 0}.Jitter(rng, 10)
		hi := RGB{255, 255, 255}.Jitter(rng, 10)
		_ = lo
		if hi.R < 245 || hi.G < 245 || hi.B < 245 {
			t.Fatalf("jitter at 255 dropped below 245: %+v", hi)
		}
	}
}

func TestRGBAOpaque(t *testing.T) {
	_, _, _, a := RGB{1, 2, 3}.RGBA()
	if a != 0xffff {
		t.Errorf("alpha = %#x, want 0xffff", a)
	}
	r, _, _, _ := RGB{255, 0, 0}.RGBA()
	if r != 0xffff {
		t.Errorf("red = %#x, want 0xffff", r)
	}
}
