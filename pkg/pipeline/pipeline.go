// Package pipeline runs the load → layout → render pipeline for famtree.
//
// The CLI and the HTTP viewer's export endpoint both go through [Runner], so
// root validation, rendering and caching behave the same everywhere.
//
// # Stages
//
//  1. Load: parse the JSON document into a [family.Tree]
//  2. Layout: position the subtree under the requested root
//  3. Render: produce one artifact per requested format
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Document: raw,
//	    RootID:   1,
//	    Formats:  []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
//
// [family.Tree]: github.com/matzehuels/famtree/pkg/family.Tree
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/famtree/pkg/cache"
	"github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/layout"
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"      // native viewer frame
	FormatJSON     = "json"     // serialized layout
	FormatGraph    = "graph"    // flat node-link tree
	FormatDOT      = "dot"      // Graphviz source
	FormatNodelink = "nodelink" // Graphviz-rendered SVG
	FormatPNG      = "png"      // native frame as PNG (rsvg-convert)
	FormatPDF      = "pdf"      // native frame as PDF (rsvg-convert)
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatGraph:    true,
	FormatDOT:      true,
	FormatNodelink: true,
	FormatPNG:      true,
	FormatPDF:      true,
}

// FormatNames returns the supported formats sorted by name.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ContentType returns the MIME type of an artifact format.
func ContentType(format string) string {
	switch format {
	case FormatSVG, FormatNodelink:
		return "image/svg+xml"
	case FormatJSON, FormatGraph:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// DefaultFrameTTL is how long rendered artifacts stay cached.
const DefaultFrameTTL = 7 * 24 * time.Hour

// DefaultPNGScale renders PNGs at 2x for high-DPI screens.
const DefaultPNGScale = 2.0

// Options configures one pipeline run.
type Options struct {
	// Document is the raw JSON tree. Ignored by Runner.RenderTree.
	Document []byte `json:"-"`

	// RootID selects the displayed root; it must be a root option.
	RootID int `json:"root"`

	// Selected highlights a member in the svg formats.
	Selected *int `json:"selected,omitempty"`

	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Margin float64 `json:"margin,omitempty"`
	Inset  float64 `json:"inset,omitempty"`

	Formats      []string `json:"formats,omitempty"`
	ShowZeroAge  bool     `json:"show_zero_age,omitempty"`
	DefaultImage string   `json:"default_image,omitempty"`
	PNGScale     float64  `json:"png_scale,omitempty"`

	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Tree      *family.Tree
	Root      *family.Member
	Layout    layout.Result
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Members    int
	Nodes      int
	Edges      int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // every artifact came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
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

// ParseFormats splits a comma-separated list, trimming blanks and
// dropping duplicates. An empty string yields [svg].
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{FormatSVG}
	}
	return out
}

// SetLayoutDefaults fills unset canvas fields from layout.DefaultCanvas.
func (o *Options) SetLayoutDefaults() {
	def := layout.DefaultCanvas()
	if o.Width == 0 {
		o.Width = def.Width
	}
	if o.Height == 0 {
		o.Height = def.Height
	}
	if o.Margin == 0 {
		o.Margin = def.Margin
	}
	if o.Inset == 0 {
		o.Inset = def.Inset
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// SetRenderDefaults fills unset render fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.DefaultImage == "" {
		o.DefaultImage = family.DefaultImage
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateForRender applies defaults and checks canvas and formats.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := o.Canvas().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid canvas")
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults checks the options for a full run. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Document) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Canvas returns the layout canvas described by the options.
func (o *Options) Canvas() layout.Canvas {
	return layout.Canvas{Width: o.Width, Height: o.Height, Margin: o.Margin, Inset: o.Inset}
}

// FrameKeyOpts returns the cache key options for one format.
func (o *Options) FrameKeyOpts(format string) cache.FrameKeyOpts {
	k := cache.FrameKeyOpts{
		RootID:       o.RootID,
		Width:        o.Width,
		Height:       o.Height,
		Margin:       o.Margin,
		Inset:        o.Inset,
		Format:       format,
		ShowZeroAge:  o.ShowZeroAge,
		DefaultImage: o.DefaultImage,
	}
	switch format {
	case FormatSVG, FormatNodelink, FormatDOT, FormatPNG, FormatPDF:
		k.Selected = o.Selected
	}
	if format == FormatPNG {
		k.Scale = o.PNGScale
	}
	return k
}
