// Package graph provides the JSON wire formats for family trees and their
// layouts.
//
// # Core Types
//
//   - [Graph]: flat node-link form of a whole tree (members plus
//     parent/child edges), convenient for tools that do not want nesting
//   - [Layout]: a positioned subtree as drawn by the viewer, or its
//     Graphviz DOT source
//   - [Node], [Edge]: shared structural types
//
// # Graph Serialization
//
//	{
//	  "nodes": [{"id": 0, "name": "Alice"}, {"id": 1, "name": "Bob", "relationship": "son"}],
//	  "edges": [{"from": 0, "to": 1}]
//	}
//
// [FromTree] and [ToTree] convert between a loaded [family.Tree] and a Graph.
// Converting back produces the same members in the same order, so the
// round trip keeps member IDs.
//
// # Layout Serialization
//
// Layouts are discriminated by VizType:
//
//	l, _ := graph.UnmarshalLayout(data)
//	if l.IsTree() {
//	    // l.Nodes carry x/y/depth
//	} else {
//	    // l.DOT holds Graphviz source
//	}
//
// [family.Tree]: github.com/matzehuels/famtree/pkg/family.Tree
package graph
