// Package nodelink renders family subtrees through Graphviz.
//
// [ToDOT] turns a layout result into DOT source: one rounded box per member
// labelled with the same lines as the SVG frame (name, relation, age) and one
// edge per parent/child link. [RenderSVG] lays the DOT out with the embedded
// Graphviz engine from [github.com/goccy/go-graphviz] and returns SVG.
//
//	res := layout.Compute(root, layout.DefaultCanvas())
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	out, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT output is also useful on its own for processing with external
// Graphviz tools.
package nodelink
