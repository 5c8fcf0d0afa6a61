package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/famtree/pkg/family"
)

const eps = 1e-9

func load(t *testing.T, doc string) *family.Tree {
	t.Helper()
	tree, err := family.Load([]byte(doc))
	if err != nil {
		t.Fatalf("family.Load() error: %v", err)
	}
	return tree
}

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

const wideDoc = `{"name":"r","children":[
	{"name":"a","children":[{"name":"a1"},{"name":"a2"},{"name":"a3"}]},
	{"name":"b"},
	{"name":"c","children":[{"name":"c1","children":[{"name":"c11"},{"name":"c12"}]}]},
	{"name":"d","children":[{"name":"d1"}]}
]}`

func TestCompute_SingleNode(t *testing.T) {
	tree := load(t, `{"name":"solo"}`)
	res := Compute(tree.Root(), DefaultCanvas())

	if len(res.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(res.Nodes))
	}
	if len(res.Edges) != 0 {
		t.Errorf("len(Edges) = %d, want 0", len(res.Edges))
	}
	n := res.Nodes[0]
	if !approx(n.X, 600) || !approx(n.Y, 100) {
		t.Errorf("single node at (%v, %v), want (600, 100)", n.X, n.Y)
	}
}

func TestCompute_TwoChildren(t *testing.T) {
	tree := load(t, `{"name":"p","children":[{"name":"a"},{"name":"b"}]}`)
	res := Compute(tree.Root(), DefaultCanvas())

	want := map[string][2]float64{
		"p": {600, 100},
		"a": {350, 700},
		"b": {850, 700},
	}
	for _, n := range res.Nodes {
		w := want[n.Member.Name]
		if !approx(n.X, w[0]) || !approx(n.Y, w[1]) {
			t.Errorf("%s at (%v, %v), want (%v, %v)", n.Member.Name, n.X, n.Y, w[0], w[1])
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	tree := load(t, wideDoc)
	c := DefaultCanvas()

	first := Compute(tree.Root(), c)
	second := Compute(tree.Root(), c)

	if len(first.Nodes) != len(second.Nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(first.Nodes), len(second.Nodes))
	}
	for i := range first.Nodes {
		a, b := first.Nodes[i], second.Nodes[i]
		if a.Member != b.Member || a.X != b.X || a.Y != b.Y || a.Depth != b.Depth {
			t.Errorf("node %d differs: %+v vs %+v", i, *a, *b)
		}
	}
}

func TestCompute_EdgesStepOneLevel(t *testing.T) {
	tree := load(t, wideDoc)
	res := Compute(tree.Root(), DefaultCanvas())

	if got, want := len(res.Edges), tree.Len()-1; got != want {
		t.Fatalf("len(Edges) = %d, want %d", got, want)
	}
	prevDepth := 0
	for _, e := range res.Edges {
		if e.Source.Depth != e.Target.Depth-1 {
			t.Errorf("edge %s->%s depths %d->%d", e.Source.Member.Name, e.Target.Member.Name, e.Source.Depth, e.Target.Depth)
		}
		if e.Target.Parent != e.Source {
			t.Errorf("edge %s->%s source is not the parent", e.Source.Member.Name, e.Target.Member.Name)
		}
		if e.Target.Depth < prevDepth {
			t.Errorf("edges not breadth first at %s", e.Target.Member.Name)
		}
		prevDepth = e.Target.Depth
	}
}

func TestCompute_WithinCanvas(t *testing.T) {
	tree := load(t, wideDoc)
	c := DefaultCanvas()
	res := Compute(tree.Root(), c)

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, n := range res.Nodes {
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		if n.Y < c.Inset-eps || n.Y > c.Height-c.Margin+c.Inset+eps {
			t.Errorf("%s Y=%v outside [%v, %v]", n.Member.Name, n.Y, c.Inset, c.Height-c.Margin+c.Inset)
		}
	}
	if minX < c.Inset-eps || maxX > c.Width-c.Margin+c.Inset+eps {
		t.Errorf("X range [%v, %v] outside drawable area", minX, maxX)
	}

	deepest := 0.0
	for _, n := range res.Nodes {
		deepest = math.Max(deepest, n.Y)
	}
	if !approx(deepest, c.Height-c.Margin+c.Inset) {
		t.Errorf("deepest level at Y=%v, want %v", deepest, c.Height-c.Margin+c.Inset)
	}
}

func TestCompute_ParentsCentred(t *testing.T) {
	tree := load(t, wideDoc)
	res := Compute(tree.Root(), DefaultCanvas())

	for _, n := range res.Nodes {
		if len(n.Children) == 0 {
			continue
		}
		first, last := n.Children[0], n.Children[len(n.Children)-1]
		if mid := (first.X + last.X) / 2; !approx(n.X, mid) {
			t.Errorf("%s X=%v, want centred at %v", n.Member.Name, n.X, mid)
		}
	}
}

func TestCompute_NoOverlapWithinLevel(t *testing.T) {
	tree := load(t, wideDoc)
	res := Compute(tree.Root(), DefaultCanvas())

	byDepth := map[int][]*Node{}
	for _, n := range res.Nodes {
		byDepth[n.Depth] = append(byDepth[n.Depth], n)
	}
	for d, level := range byDepth {
		for i := 1; i < len(level); i++ {
			if level[i].X <= level[i-1].X {
				t.Errorf("depth %d: %s (%v) not right of %s (%v)", d,
					level[i].Member.Name, level[i].X, level[i-1].Member.Name, level[i-1].X)
			}
		}
	}
}

func TestCompute_Subtree(t *testing.T) {
	tree := load(t, `{"name":"A","children":[{"name":"B","relationship":"child","age":10,"children":[]}]}`)
	b := tree.RootOptions()[1]

	res := Compute(b, DefaultCanvas())
	if len(res.Nodes) != 1 || len(res.Edges) != 0 {
		t.Fatalf("got %d nodes, %d edges, want 1, 0", len(res.Nodes), len(res.Edges))
	}
	if res.Root.Depth != 0 || res.Root.Parent != nil {
		t.Errorf("displayed root depth = %d, parent = %v; want 0, nil", res.Root.Depth, res.Root.Parent)
	}
	if res.Root.Member != b {
		t.Error("displayed root should wrap B")
	}
}

func TestCompute_Nil(t *testing.T) {
	res := Compute(nil, DefaultCanvas())
	if res.Root != nil || len(res.Nodes) != 0 {
		t.Errorf("Compute(nil) = %+v, want empty", res)
	}
}

func TestResult_Node(t *testing.T) {
	tree := load(t, wideDoc)
	res := Compute(tree.Root(), DefaultCanvas())

	n, ok := res.Node(2)
	if !ok || n.Member.Name != "a1" {
		t.Errorf("Node(2) = %v, %v; want a1", n, ok)
	}
	if _, ok := res.Node(99); ok {
		t.Error("Node(99) should not be found")
	}
	if got := res.MaxDepth(); got != 3 {
		t.Errorf("MaxDepth() = %d, want 3", got)
	}
}

func TestCanvas_Validate(t *testing.T) {
	tests := []struct {
		name    string
		canvas  Canvas
		wantErr bool
	}{
		{"default", DefaultCanvas(), false},
		{"tight", Canvas{Width: 201, Height: 201, Margin: 200, Inset: 100}, false},
		{"too narrow", Canvas{Width: 200, Height: 800, Margin: 200}, true},
		{"too short", Canvas{Width: 1200, Height: 100, Margin: 200}, true},
		{"negative inset", Canvas{Width: 1200, Height: 800, Margin: 200, Inset: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.canvas.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
