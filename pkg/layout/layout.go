package layout

import (
	"fmt"

	"github.com/matzehuels/famtree/pkg/family"
)

// Default canvas dimensions in logical units.
const (
	DefaultWidth  = 1200.0
	DefaultHeight = 800.0
	DefaultMargin = 200.0
	DefaultInset  = 100.0
)

// Canvas describes the drawing area. The tree is laid out inside a
// (Width-Margin) x (Height-Margin) rectangle whose origin is shifted by Inset.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
	Inset  float64 `json:"inset"`
}

// DefaultCanvas returns the 1200x800 canvas with a 200 unit margin and a 100
// unit inset.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Margin: DefaultMargin,
		Inset:  DefaultInset,
	}
}

// Validate checks that the drawable rectangle is not empty.
func (c Canvas) Validate() error {
	if c.Width <= c.Margin || c.Height <= c.Margin {
		return fmt.Errorf("canvas %.0fx%.0f leaves no room inside margin %.0f", c.Width, c.Height, c.Margin)
	}
	if c.Margin < 0 || c.Inset < 0 {
		return fmt.Errorf("margin and inset must not be negative")
	}
	return nil
}

// Node is a member with its computed position.
type Node struct {
	Member   *family.Member
	X, Y     float64
	Depth    int   // distance from the displayed root
	Parent   *Node // nil for the displayed root
	Children []*Node
}

// Edge connects a parent to one of its children.
type Edge struct {
	Source *Node
	Target *Node
}

// Result is the output of one layout pass.
type Result struct {
	Canvas Canvas
	Root   *Node
	Nodes  []*Node // breadth first, root first
	Edges  []Edge  // breadth first by target
}

// Node returns the positioned node for a member ID.
func (r Result) Node(id int) (*Node, bool) {
	for _, n := range r.Nodes {
		if n.Member.ID == id {
			return n, true
		}
	}
	return nil, false
}

// MaxDepth returns the depth of the deepest node.
func (r Result) MaxDepth() int {
	d := 0
	for _, n := range r.Nodes {
		d = max(d, n.Depth)
	}
	return d
}

// Compute lays out the subtree rooted at root on canvas c.
// A nil root yields an empty result.
func Compute(root *family.Member, c Canvas) Result {
	res := Result{Canvas: c}
	if root == nil {
		return res
	}

	res.Root = hierarchy(root)
	res.Nodes = breadthFirst(res.Root)
	for _, n := range res.Nodes[1:] {
		res.Edges = append(res.Edges, Edge{Source: n.Parent, Target: n})
	}

	tidy(res.Root)
	fit(res.Root, res.Nodes, c)
	return res
}

// hierarchy mirrors the member subtree as positioned nodes.
func hierarchy(m *family.Member) *Node {
	root := &Node{Member: m}
	var build func(n *Node)
	build = func(n *Node) {
		for _, c := range n.Member.Children {
			child := &Node{Member: c, Depth: n.Depth + 1, Parent: n}
			n.Children = append(n.Children, child)
			build(child)
		}
	}
	build(root)
	return root
}

func breadthFirst(root *Node) []*Node {
	out := []*Node{root}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].Children...)
	}
	return out
}

// fit scales the unit-separated coordinates into the drawable rectangle and
// applies the inset.
func fit(root *Node, nodes []*Node, c Canvas) {
	dx, dy := c.Width-c.Margin, c.Height-c.Margin

	left, right, bottom := root, root, root
	eachBefore(root, func(n *Node) {
		if n.X < left.X {
			left = n
		}
		if n.X > right.X {
			right = n
		}
		if n.Depth > bottom.Depth {
			bottom = n
		}
	})

	s := 1.0
	if left != right {
		s = separation(left, right) / 2
	}
	tx := s - left.X
	kx := dx / (right.X + s + tx)
	ky := dy / float64(max(bottom.Depth, 1))

	for _, n := range nodes {
		n.X = (n.X+tx)*kx + c.Inset
		n.Y = float64(n.Depth)*ky + c.Inset
	}
}

// separation is the minimum horizontal distance between two neighbours.
func separation(a, b *Node) float64 {
	if a.Parent == b.Parent {
		return 1
	}
	return 2
}

func eachBefore(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		eachBefore(c, fn)
	}
}
