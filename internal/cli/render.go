package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/internal/config"
	"github.com/matzehuels/famtree/pkg/httputil"
	"github.com/matzehuels/famtree/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output      string
	formats     string
	root        int
	selected    int
	width       float64
	height      float64
	margin      float64
	inset       float64
	showZeroAge bool
	pngScale    float64
	noCache     bool
	refresh     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [file|url|-]",
		Short: "Render a family tree to SVG and other formats",
		Long: `Render a family tree to one or more files.

The tree is drawn from the member given by --root, which must be the loaded
root (ID 0) or one of its children. Member IDs follow document order; list
them with 'famtree roots'.

Formats:
  svg       native viewer frame (default)
  json      positioned layout
  graph     flat node/edge form of the whole tree
  dot       Graphviz source
  nodelink  Graphviz-rendered SVG
  png, pdf  converted from the SVG frame (needs rsvg-convert)

Rendered files are cached; --refresh re-renders and --no-cache skips the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, flags)
		},
	}

	flags.register(cmd)

	return cmd
}

// register binds the flags to cmd. Defaults mirror config.Default so the
// help text shows real values.
func (f *renderFlags) register(cmd *cobra.Command) {
	def := config.Default()
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s), comma-separated: "+strings.Join(pipeline.FormatNames(), ", "))
	fs.IntVar(&f.root, "root", 0, "ID of the member to draw from")
	fs.IntVar(&f.selected, "select", -1, "ID of a member to highlight")
	fs.Float64Var(&f.width, "width", def.Canvas.Width, "canvas width")
	fs.Float64Var(&f.height, "height", def.Canvas.Height, "canvas height")
	fs.Float64Var(&f.margin, "margin", def.Canvas.Margin, "space reserved around the tree")
	fs.Float64Var(&f.inset, "inset", def.Canvas.Inset, "offset applied to every coordinate")
	fs.BoolVar(&f.showZeroAge, "show-zero-age", false, "show an age of 0 instead of hiding it")
	fs.Float64Var(&f.pngScale, "png-scale", pipeline.DefaultPNGScale, "scale factor for png output")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "re-render even when cached")
}

// options merges the config file with explicitly set flags.
func (f *renderFlags) options(cmd *cobra.Command, cfg *config.Config) (pipeline.Options, error) {
	set := cmd.Flags().Changed
	opts := pipeline.Options{
		RootID:       f.root,
		Width:        cfg.Canvas.Width,
		Height:       cfg.Canvas.Height,
		Margin:       cfg.Canvas.Margin,
		Inset:        cfg.Canvas.Inset,
		Formats:      cfg.Render.Formats,
		ShowZeroAge:  cfg.Render.ShowZeroAge,
		DefaultImage: cfg.Render.DefaultImage,
		PNGScale:     cfg.Render.PNGScale,
		Refresh:      f.refresh,
	}
	if set("format") {
		opts.Formats = pipeline.ParseFormats(f.formats)
	}
	if set("width") {
		opts.Width = f.width
	}
	if set("height") {
		opts.Height = f.height
	}
	if set("margin") {
		opts.Margin = f.margin
	}
	if set("inset") {
		opts.Inset = f.inset
	}
	if set("show-zero-age") {
		opts.ShowZeroAge = f.showZeroAge
	}
	if set("png-scale") {
		opts.PNGScale = f.pngScale
	}
	if f.selected >= 0 {
		id := f.selected
		opts.Selected = &id
	}
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

// runRender loads the tree, renders every requested format and writes one
// file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags renderFlags) error {
	prog := newProgress(c.Logger)
	raw, err := readDocument(ctx, input, flags.noCache)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	opts.Document = raw

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var sp *spinner
	if needsSpinner(opts.Formats) {
		sp = newSpinner(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
		sp.Start()
	}
	result, err := runner.Execute(ctx, opts)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s from %s", strings.Join(opts.Formats, ", "), result.Root.Name))

	paths := outputPaths(flags.output, input, opts.Formats)
	for _, format := range opts.Formats {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}

	printSuccess("Rendered %s", result.Root.Name)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.Nodes, result.Stats.Edges, result.CacheInfo.RenderHit)
	return nil
}

// needsSpinner reports whether any format shells out or runs Graphviz.
func needsSpinner(formats []string) bool {
	for _, f := range formats {
		switch f {
		case pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatNodelink:
			return true
		}
	}
	return false
}

// outputPaths maps each format to its file. A single format writes to
// output as given; several formats share a base path and differ by
// extension. Without output the base comes from the input name.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + extension(f)
	}
	return paths
}

// extension keeps formats that share a file type apart.
func extension(format string) string {
	switch format {
	case pipeline.FormatNodelink:
		return "nodelink.svg"
	case pipeline.FormatJSON:
		return "layout.json"
	case pipeline.FormatGraph:
		return "graph.json"
	}
	return format
}

// basePath derives the base output path. An output with a known format
// extension has it stripped; without output the input name is used.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	name := input
	switch {
	case input == "-":
		return appName
	case httputil.IsURL(input):
		u, _ := url.Parse(input)
		name = path.Base(u.Path)
		if name == "/" || name == "." {
			return appName
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
