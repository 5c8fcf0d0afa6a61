package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/layout"
)

const (
	avatarRadius  = 30.0
	detailsOffset = 80.0
	clipID        = "clip"
)

const nodeCSS = `
    .link { stroke: #999; stroke-width: 1.5; }
    .node a { cursor: pointer; }
    .node .ring { fill: none; stroke: #2a9d8f; stroke-width: 4; }
    .details .name { font-size: 12px; fill: #000; }
    .details .relation, .details .age { font-size: 10px; fill: gray; }`

// SelectHandler maps a member to the link followed when its node is clicked.
type SelectHandler interface {
	SelectURL(m *family.Member) string
}

// SelectFunc adapts a function to SelectHandler.
type SelectFunc func(m *family.Member) string

// SelectURL calls f(m).
func (f SelectFunc) SelectURL(m *family.Member) string { return f(m) }

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	handler      SelectHandler
	selected     int
	hasSelected  bool
	defaultImage string
	showZeroAge  bool
}

// WithSelectHandler makes every node clickable.
func WithSelectHandler(h SelectHandler) Option { return func(r *renderer) { r.handler = h } }

// WithSelected highlights the member with the given ID.
func WithSelected(id int) Option {
	return func(r *renderer) { r.selected, r.hasSelected = id, true }
}

// WithDefaultImage overrides the avatar used for members without an image.
func WithDefaultImage(url string) Option { return func(r *renderer) { r.defaultImage = url } }

// WithShowZeroAge displays "Age: 0" instead of treating zero as absent.
func WithShowZeroAge(show bool) Option { return func(r *renderer) { r.showZeroAge = show } }

func newRenderer(opts ...Option) renderer {
	r := renderer{defaultImage: family.DefaultImage}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Render writes res as an SVG document.
func Render(res layout.Result, opts ...Option) []byte {
	r := newRenderer(opts...)
	c := res.Canvas

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		c.Width, c.Height, c.Width, c.Height)
	fmt.Fprintf(&buf, "  <defs>\n    <clipPath id=%q><circle cx=\"0\" cy=\"0\" r=\"%.0f\"/></clipPath>\n  </defs>\n", clipID, avatarRadius)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeCSS)

	for _, e := range res.Edges {
		renderEdge(&buf, e)
	}
	for _, n := range res.Nodes {
		r.renderNode(&buf, n)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEdge(buf *bytes.Buffer, e layout.Edge) {
	fmt.Fprintf(buf, `  <line class="link" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
		e.Source.X, e.Source.Y, e.Target.X, e.Target.Y)
}

func (r *renderer) renderNode(buf *bytes.Buffer, n *layout.Node) {
	m := n.Member
	fmt.Fprintf(buf, `  <g class="node" data-member="%d" transform="translate(%.2f,%.2f)">`+"\n", m.ID, n.X, n.Y)

	wrapLink(buf, r.selectURL(m), func() {
		href := escapeXML(m.AvatarURL(r.defaultImage))
		fmt.Fprintf(buf, `    <image href="%s" xlink:href="%s" x="%.0f" y="%.0f" width="%.0f" height="%.0f" clip-path="url(#%s)"/>`+"\n",
			href, href, -avatarRadius, -avatarRadius, 2*avatarRadius, 2*avatarRadius, clipID)
		if r.hasSelected && r.selected == m.ID {
			fmt.Fprintf(buf, `    <circle class="ring" cx="0" cy="0" r="%.0f"/>`+"\n", avatarRadius)
		}
		r.renderDetails(buf, n)
	})

	buf.WriteString("  </g>\n")
}

func (r *renderer) renderDetails(buf *bytes.Buffer, n *layout.Node) {
	fmt.Fprintf(buf, `    <g class="details" transform="translate(%.0f, 0)">`+"\n", detailsOffset)
	for _, l := range DetailLines(n, r.showZeroAge) {
		fmt.Fprintf(buf, `      <text class="%s" dy="%d">%s</text>`+"\n", l.Class, l.DY, escapeXML(l.Text))
	}
	buf.WriteString("    </g>\n")
}

func (r *renderer) selectURL(m *family.Member) string {
	if r.handler == nil {
		return ""
	}
	return r.handler.SelectURL(m)
}

// Line is one line of a node's details block.
type Line struct {
	Class string
	DY    int
	Text  string
}

// DetailLines returns the text shown next to a node. The name is always
// present; the relation is omitted for the displayed root and the age when
// it is absent or zero (unless showZeroAge).
func DetailLines(n *layout.Node, showZeroAge bool) []Line {
	m := n.Member
	lines := []Line{{Class: "name", DY: 0, Text: m.Name}}
	if n.Depth > 0 {
		lines = append(lines, Line{Class: "relation", DY: 15, Text: "Relation: " + m.Relationship})
	}
	if m.HasAge(showZeroAge) {
		lines = append(lines, Line{Class: "age", DY: 30, Text: "Age: " + m.AgeText()})
	}
	return lines
}

func wrapLink(buf *bytes.Buffer, url string, fn func()) {
	if url != "" {
		fmt.Fprintf(buf, `    <a href="%s">`+"\n", escapeXML(url))
	}
	fn()
	if url != "" {
		buf.WriteString("    </a>\n")
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
