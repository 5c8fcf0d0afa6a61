package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/famtree/pkg/layout"
)

// Layout is the serialized form of one drawn subtree.
//
//	Tree ("tree"):         Nodes with x/y/depth/parent, Edges
//	Nodelink ("nodelink"): DOT source, plus Nodes and Edges without positions
type Layout struct {
	VizType string `json:"viz_type"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin,omitempty"`
	Inset  float64 `json:"inset,omitempty"`

	Root     int  `json:"root"`
	Selected *int `json:"selected,omitempty"`

	Nodes []Node `json:"nodes,omitempty"`
	Edges []Edge `json:"edges,omitempty"`

	DOT string `json:"dot,omitempty"`
}

// IsTree reports whether l holds positioned nodes.
func (l *Layout) IsTree() bool { return l.VizType == VizTypeTree }

// IsNodelink reports whether l holds DOT source.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// FromResult serializes a layout result. Nodes keep the result's breadth
// first order. The parent of the displayed root is omitted.
func FromResult(res layout.Result) Layout {
	l := Layout{
		VizType: VizTypeTree,
		Width:   res.Canvas.Width,
		Height:  res.Canvas.Height,
		Margin:  res.Canvas.Margin,
		Inset:   res.Canvas.Inset,
	}
	if res.Root != nil {
		l.Root = res.Root.Member.ID
	}
	for _, n := range res.Nodes {
		node := nodeFromMember(n.Member)
		node.X, node.Y, node.Depth = n.X, n.Y, n.Depth
		if n.Parent == nil {
			node.Parent = nil
		}
		l.Nodes = append(l.Nodes, node)
	}
	for _, e := range res.Edges {
		l.Edges = append(l.Edges, Edge{From: e.Source.Member.ID, To: e.Target.Member.ID})
	}
	return l
}

// Validate checks internal consistency: the root and every edge endpoint
// must be a listed node, and nodelink layouts need DOT source.
func (l Layout) Validate() error {
	switch l.VizType {
	case VizTypeTree, VizTypeNodelink:
	default:
		return fmt.Errorf("unknown viz_type %q", l.VizType)
	}
	if l.IsNodelink() && l.DOT == "" {
		return fmt.Errorf("nodelink layout must contain DOT string")
	}
	if l.IsTree() && len(l.Nodes) == 0 {
		return fmt.Errorf("tree layout must contain nodes")
	}
	if len(l.Nodes) == 0 {
		return nil
	}

	ids := make(map[int]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = true
	}
	if !ids[l.Root] {
		return fmt.Errorf("root %d is not a node", l.Root)
	}
	for _, e := range l.Edges {
		if !ids[e.From] || !ids[e.To] {
			return fmt.Errorf("edge %d->%d references an unknown node", e.From, e.To)
		}
	}
	return nil
}

// MarshalLayout serializes a Layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes and validates a Layout. A missing viz_type means
// "tree".
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.VizType == "" {
		l.VizType = VizTypeTree
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
