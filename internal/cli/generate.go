package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziggurat-io/ziggurat/pkg/history"
	"github.com/ziggurat-io/ziggurat/pkg/pipeline"
	"github.com/ziggurat-io/ziggurat/pkg/pyramid"
)

// defaultOutput is the output path used when --output is not given.
const defaultOutput = "pyramid.png"

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	levels   int    // pyramid height in steps
	baseSize int    // footprint edge length in tiles
	color    string // base tile color (#RRGGBB)
	pattern  string // tile material: marble, stone, neon, sandstone, obsidian
	baseType string // footprint mask: square or triangular
	dark     bool   // dark background gradient
	seed     int64  // pin stone-pattern noise for reproducible output
	output   string // output file path
	formats  string // comma-separated artifact formats: png, thumb
	noCache  bool   // disable the artifact cache
	refresh  bool   // re-render even on a cache hit
	save     bool   // record the render in local history
}

// generateCommand creates the generate command for rendering pyramids.
//
// Default settings:
//   - levels: 5, base size: 9
//   - color: #3b82f6, pattern: marble, base: square
//   - light theme, png output only
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{
		levels:   pyramid.DefaultLevels,
		baseSize: pyramid.DefaultBaseSize,
		color:    pyramid.DefaultTileColor,
		pattern:  string(pyramid.PatternMarble),
		baseType: string(pyramid.BaseSquare),
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a pyramid image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runGenerate(ctx, &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.levels, "levels", "l", opts.levels, "pyramid height in steps (2-15)")
	cmd.Flags().IntVarP(&opts.baseSize, "base-size", "b", opts.baseSize, "footprint edge length in tiles (3-20)")
	cmd.Flags().StringVar(&opts.color, "color", opts.color, "base tile color (#RRGGBB)")
	cmd.Flags().StringVarP(&opts.pattern, "pattern", "p", opts.pattern, "tile pattern: marble (default), stone, neon, sandstone, obsidian")
	cmd.Flags().StringVar(&opts.baseType, "base", opts.baseType, "base type: square (default), triangular")
	cmd.Flags().BoolVar(&opts.dark, "dark", false, "use the dark background gradient")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed for the stone pattern (0 = fresh noise)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file path (default pyramid.png)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "artifact format(s): png (default), thumb (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if a cached artifact exists")
	cmd.Flags().BoolVar(&opts.save, "save", false, "record the render in local history")

	return cmd
}

// parseParams converts flag values into a validated parameter set.
func (o *generateOpts) parseParams() (pyramid.Parameters, error) {
	pattern, err := pyramid.ParsePattern(o.pattern)
	if err != nil {
		return pyramid.Parameters{}, err
	}
	baseType, err := pyramid.ParseBaseType(o.baseType)
	if err != nil {
		return pyramid.Parameters{}, err
	}

	params := pyramid.Parameters{
		Levels:    o.levels,
		BaseSize:  o.baseSize,
		TileColor: o.color,
		Pattern:   pattern,
		BaseType:  baseType,
	}
	return params, params.Validate()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	return strings.Split(s, ",")
}

func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	params, err := opts.parseParams()
	if err != nil {
		return err
	}
	logger.Debugf("Rendering %d levels on a %d-tile %s base", params.Levels, params.BaseSize, params.BaseType)
	formats := parseFormats(opts.formats)
	if opts.save && !contains(formats, pipeline.FormatThumb) {
		formats = append(formats, pipeline.FormatThumb)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipelineOpts := pipeline.Options{
		Params:  params,
		Dark:    opts.dark,
		Seed:    opts.seed,
		Formats: formats,
		Refresh: opts.refresh,
		Logger:  c.Logger,
	}

	spinner := newSpinnerWithContext(ctx, "Rendering pyramid...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipelineOpts)
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(opts.output, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d-level pyramid", params.Levels)
	for _, path := range paths {
		printFile(path)
	}
	printStats(result.Stats.TileCount, len(result.Artifacts[pipeline.FormatPNG]), result.CacheInfo.RenderHit)

	if opts.save {
		if err := c.saveRecord(ctx, params, opts, result); err != nil {
			return err
		}
	} else {
		printNewline()
		printNextStep("Keep this render", "ziggurat generate --save")
	}
	return nil
}

// saveRecord persists the render in the local file-backed history.
func (c *CLI) saveRecord(ctx context.Context, params pyramid.Parameters, opts *generateOpts, result *pipeline.Result) error {
	store, err := history.NewFileStore("")
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	rec := history.NewRecord(params, opts.dark, opts.seed,
		result.Artifacts[pipeline.FormatPNG],
		result.Artifacts[pipeline.FormatThumb])
	if err := store.Save(ctx, rec); err != nil {
		return err
	}

	printDetail("Saved to history as %s", rec.ID)
	printNewline()
	printNextStep("Inspect it later", "ziggurat history show "+rec.ID)
	return nil
}

// writeArtifacts writes each artifact next to the requested output path.
// The thumbnail gets a "_thumb" suffix when both formats are produced.
func writeArtifacts(output string, artifacts map[string][]byte) ([]string, error) {
	if output == "" {
		output = defaultOutput
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))

	var paths []string
	for _, format := range []string{pipeline.FormatPNG, pipeline.FormatThumb} {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := output
		if format == pipeline.FormatThumb {
			path = base + "_thumb.png"
			if _, full := artifacts[pipeline.FormatPNG]; !full {
				path = output
			}
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
