package layout_test

import (
	"fmt"

	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/layout"
)

func ExampleCompute() {
	tree, _ := family.Load([]byte(`{"name":"p","children":[{"name":"a"},{"name":"b"}]}`))

	res := layout.Compute(tree.Root(), layout.DefaultCanvas())
	for _, n := range res.Nodes {
		fmt.Printf("%s depth=%d (%.0f, %.0f)\n", n.Member.Name, n.Depth, n.X, n.Y)
	}
	// Output:
	// p depth=0 (600, 100)
	// a depth=1 (350, 700)
	// b depth=1 (850, 700)
}
