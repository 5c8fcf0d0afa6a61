package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/graph"
	"github.com/matzehuels/famtree/pkg/layout"
	"github.com/matzehuels/famtree/pkg/observability"
	"github.com/matzehuels/famtree/pkg/render"
	"github.com/matzehuels/famtree/pkg/render/nodelink"
	"github.com/matzehuels/famtree/pkg/render/svg"
)

// Render produces every requested format for a layout. The tree is only
// needed by the graph format and may be nil otherwise.
func Render(ctx context.Context, tree *family.Tree, res layout.Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, tree, res, format, opts)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, errors.Wrap(codeOf(err), err, "render %s", format)
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, nil
}

// RenderFormat produces a single format.
func RenderFormat(ctx context.Context, tree *family.Tree, res layout.Result, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return svg.Render(res, svgOptions(opts)...), nil
	case FormatPNG:
		return render.ToPNG(ctx, svg.Render(res, svgOptions(opts)...), opts.PNGScale)
	case FormatPDF:
		return render.ToPDF(ctx, svg.Render(res, svgOptions(opts)...))
	case FormatJSON:
		l := graph.FromResult(res)
		l.Selected = opts.Selected
		return graph.MarshalLayout(l)
	case FormatGraph:
		if tree == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "graph format needs the tree")
		}
		return graph.MarshalGraph(tree)
	case FormatDOT:
		return []byte(nodelink.ToDOT(res, dotOptions(opts))), nil
	case FormatNodelink:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(res, dotOptions(opts)))
	}
	return nil, ValidateFormat(format)
}

func svgOptions(opts Options) []svg.Option {
	out := []svg.Option{
		svg.WithShowZeroAge(opts.ShowZeroAge),
		svg.WithDefaultImage(opts.DefaultImage),
	}
	if opts.Selected != nil {
		out = append(out, svg.WithSelected(*opts.Selected))
	}
	return out
}

func dotOptions(opts Options) nodelink.Options {
	return nodelink.Options{ShowZeroAge: opts.ShowZeroAge, Selected: opts.Selected}
}

// codeOf keeps the code of a structured error and defaults to INTERNAL_ERROR.
func codeOf(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}
