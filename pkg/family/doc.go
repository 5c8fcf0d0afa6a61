// Package family loads genealogical trees and exposes them for display.
//
// A tree document is a single JSON object describing the root member; every
// member may list its children recursively:
//
//	{
//	  "name": "Alice",
//	  "image": "/images/alice.jpg",
//	  "children": [
//	    {"name": "Bob", "relationship": "son", "age": 10, "children": []}
//	  ]
//	}
//
// Only "name" is required. "children" may be omitted or null, "age" may be a
// number, a numeric string or null.
//
// # Identity
//
// Names are display labels and need not be unique. [Load] assigns every
// member a stable [Member.ID] in pre-order (the root is 0), which is what
// root selection and node clicks refer to. Because IDs are pre-order, the
// subtree of a member occupies a contiguous ID range and [Member.Contains]
// is constant time.
//
// # Root options
//
// [Tree.RootOptions] lists the members that may be displayed as the top of
// the diagram: the loaded root followed by its direct children. The list is
// fixed for the lifetime of a [Tree].
package family
