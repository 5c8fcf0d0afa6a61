package graph

import (
	"github.com/matzehuels/famtree/pkg/family"
)

// Visualization types.
const (
	VizTypeTree     = "tree"
	VizTypeNodelink = "nodelink"
)

// Node is one member in either wire format. Position fields are only set
// inside a Layout.
type Node struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Relationship string   `json:"relationship,omitempty"`
	Age          *float64 `json:"age,omitempty"`
	Image        string   `json:"image,omitempty"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Depth  int     `json:"depth,omitempty"`
	Parent *int    `json:"parent,omitempty"`
}

// Edge links a parent to a child by member ID.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func nodeFromMember(m *family.Member) Node {
	n := Node{
		ID:           m.ID,
		Name:         m.Name,
		Relationship: m.Relationship,
		Image:        m.Image,
	}
	if m.Age != nil {
		age := *m.Age
		n.Age = &age
	}
	if m.Parent != nil {
		id := m.Parent.ID
		n.Parent = &id
	}
	return n
}
