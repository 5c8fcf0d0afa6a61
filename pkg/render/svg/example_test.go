package svg_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/layout"
	"github.com/matzehuels/famtree/pkg/render/svg"
)

func ExampleRender() {
	tree, _ := family.Load([]byte(`{"name":"A","children":[{"name":"B","relationship":"child","age":10}]}`))
	b, _ := tree.Member(1)

	res := layout.Compute(b, layout.DefaultCanvas())
	out := string(svg.Render(res))

	fmt.Println(strings.Count(out, `<g class="node"`), strings.Contains(out, "Age: 10"), strings.Contains(out, "Relation"))
	// Output: 1 true false
}
