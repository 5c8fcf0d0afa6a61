package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/layout"
	"github.com/matzehuels/famtree/pkg/render/svg"
)

// Options configures DOT generation.
type Options struct {
	// ShowZeroAge displays "Age: 0" instead of hiding it.
	ShowZeroAge bool
	// Selected highlights the member with this ID when non-nil.
	Selected *int
}

// ToDOT converts a layout result to Graphviz DOT source.
func ToDOT(res layout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"sans-serif\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#999999\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range res.Nodes {
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(n), strings.Join(fmtAttrs(n, opts), ", "))
	}

	if len(res.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range res.Edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", nodeID(e.Source), nodeID(e.Target))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(n *layout.Node) string {
	return "m" + strconv.Itoa(n.Member.ID)
}

func fmtLabel(n *layout.Node, showZeroAge bool) string {
	lines := svg.DetailLines(n, showZeroAge)
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *layout.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.ShowZeroAge))}
	if n.Depth == 0 {
		attrs = append(attrs, "penwidth=2")
	}
	if opts.Selected != nil && *opts.Selected == n.Member.ID {
		attrs = append(attrs, "fillcolor=\"#e9f5f3\"", "color=\"#2a9d8f\"")
	}
	return attrs
}

// RenderSVG lays out DOT source with Graphviz and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in user units so the output scales like the native frame.
func normalizeViewBox(out []byte) []byte {
	match := viewBoxRe.FindSubmatch(out)
	if match == nil {
		return out
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return out
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(out, []byte(tag))
}
