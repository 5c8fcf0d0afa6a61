package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/famtree/pkg/family"
)

// Graph is the flat node-link form of a family tree.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// FromTree flattens t. Nodes are in member ID (pre-order) order; edges are
// in child order.
func FromTree(t *family.Tree) Graph {
	members := t.Members()
	g := Graph{Nodes: make([]Node, len(members))}
	for i, m := range members {
		g.Nodes[i] = nodeFromMember(m)
		g.Nodes[i].Parent = nil
		if m.Parent != nil {
			g.Edges = append(g.Edges, Edge{From: m.Parent.ID, To: m.ID})
		}
	}
	return g
}

// ToTree rebuilds a tree from g. The graph must have exactly one member
// without a parent, every other member exactly one parent, and no cycles.
func ToTree(g Graph) (*family.Tree, error) {
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}

	docs := make(map[int]*document, len(g.Nodes))
	order := make([]int, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := docs[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %d", n.ID)
		}
		docs[n.ID] = &document{Name: n.Name, Image: n.Image, Relationship: n.Relationship, Age: n.Age}
		order = append(order, n.ID)
	}

	hasParent := make(map[int]bool, len(g.Edges))
	for _, e := range g.Edges {
		parent, ok := docs[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %d->%d: unknown parent", e.From, e.To)
		}
		child, ok := docs[e.To]
		if !ok {
			return nil, fmt.Errorf("edge %d->%d: unknown child", e.From, e.To)
		}
		if hasParent[e.To] {
			return nil, fmt.Errorf("node %d has more than one parent", e.To)
		}
		hasParent[e.To] = true
		parent.Children = append(parent.Children, child)
	}

	var roots []int
	for _, id := range order {
		if !hasParent[id] {
			roots = append(roots, id)
		}
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("graph has %d roots, want 1", len(roots))
	}

	root := docs[roots[0]]
	if n := root.count(); n != len(g.Nodes) {
		return nil, fmt.Errorf("graph has a cycle: %d of %d nodes reachable", n, len(g.Nodes))
	}

	raw, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return family.Load(raw)
}

// document mirrors the nested input format.
type document struct {
	Name         string      `json:"name"`
	Image        string      `json:"image,omitempty"`
	Relationship string      `json:"relationship,omitempty"`
	Age          *float64    `json:"age,omitempty"`
	Children     []*document `json:"children,omitempty"`
}

func (d *document) count() int {
	n := 1
	for _, c := range d.Children {
		n += c.count()
	}
	return n
}

// MarshalGraph flattens t to indented JSON.
func MarshalGraph(t *family.Tree) ([]byte, error) {
	return json.MarshalIndent(FromTree(t), "", "  ")
}

// WriteGraph writes t as a Graph to w.
func WriteGraph(t *family.Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromTree(t)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a Graph from r and rebuilds the tree.
func ReadGraph(r io.Reader) (*family.Tree, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToTree(g)
}

// ReadGraphFile reads a Graph JSON file.
func ReadGraphFile(path string) (*family.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
