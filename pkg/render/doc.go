// Package render turns laid-out family trees into pictures.
//
// The [svg] subpackage draws the interactive node-link frame shown by the
// viewers; [nodelink] produces a Graphviz rendering of the same subtree.
// [ToPDF] and [ToPNG] convert any SVG produced by either into raster or
// print formats using the external rsvg-convert tool.
//
// [svg]: github.com/matzehuels/famtree/pkg/render/svg
// [nodelink]: github.com/matzehuels/famtree/pkg/render/nodelink
package render
