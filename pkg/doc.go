// Package pkg holds the famtree libraries.
//
// # Overview
//
// famtree loads a family tree from JSON and draws the subtree under a chosen
// root as a node-link diagram. The packages are layered:
//
//  1. [family] - tree model: members, stable IDs, root options
//  2. [layout] - tidy-tree positions inside a fixed canvas
//  3. [render/svg], [render/nodelink] - SVG frames and Graphviz output
//  4. [viewer] - root switching and member selection over a drawing surface
//  5. [pipeline] - load → layout → render with caching, shared by CLI and server
//
// Supporting packages: [cache] (file and Redis artifact caches), [graph]
// (JSON forms of a layout), [session] (in-memory viewer sessions),
// [httputil] (fetching documents by URL), [observability] (event hooks) and
// [errors] (coded errors).
//
// # Data Flow
//
//	JSON document
//	     ↓
//	[family] Load → Tree (IDs in pre-order)
//	     ↓
//	[layout] Compute(root option) → positioned nodes and edges
//	     ↓
//	[render/svg] Draw → frame on a Surface
//
// # Quick Start
//
//	st := viewer.New(viewer.Options{})
//	if err := st.Load(raw); err != nil {
//	    // PARSE_ERROR; st is unchanged
//	}
//	_ = st.SetActiveRoot(1) // first child of the loaded root
//	frame := st.Frame()
//
// [family]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/family
// [layout]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/layout
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/render/svg
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/render/nodelink
// [viewer]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/viewer
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/cache
// [graph]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/graph
// [session]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/session
// [httputil]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/famtree/pkg/errors
package pkg
