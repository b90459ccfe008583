// Package pyramid implements the procedural isometric pyramid renderer.
//
// The renderer is a pure function of its parameters: given structural and
// aesthetic settings it synthesizes a 1024×1024 PNG depicting a stepped
// pyramid built from cuboid tiles, using closed-form isometric projection
// and painter's-algorithm draw ordering. No network, no shared state.
//
// # Usage
//
//	params := pyramid.Parameters{
//	    Levels:    5,
//	    BaseSize:  5,
//	    TileColor: "#3b82f6",
//	    Pattern:   pyramid.PatternMarble,
//	    BaseType:  pyramid.BaseSquare,
//	}
//	png, err := pyramid.Render(params, false)
//
// Rendering is deterministic for every pattern except PatternStone, which
// adds per-tile color noise. Tests can pin the noise by injecting a seeded
// random source with WithRand.
//
// Drawing goes through the Surface interface so the algorithm is not tied
// to a particular rasterizer; the default implementation draws into an
// in-memory RGBA image via fogleman/gg.
package pyramid
