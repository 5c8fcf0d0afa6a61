package svg

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/layout"
)

const scenarioDoc = `{"name":"A","children":[{"name":"B","relationship":"child","age":10,"children":[]}]}`

func compute(t *testing.T, doc string, rootID int) layout.Result {
	t.Helper()
	tree, err := family.Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	m, ok := tree.Member(rootID)
	if !ok {
		t.Fatalf("Member(%d) not found", rootID)
	}
	return layout.Compute(m, layout.DefaultCanvas())
}

func TestRender_FullTree(t *testing.T) {
	out := string(Render(compute(t, scenarioDoc, 0)))

	checks := []struct {
		substr string
		count  int
	}{
		{`<svg xmlns="http://www.w3.org/2000/svg"`, 1},
		{`viewBox="0 0 1200 800"`, 1},
		{`<clipPath id="clip"><circle cx="0" cy="0" r="30"/></clipPath>`, 1},
		{`<line class="link"`, 1},
		{`<g class="node"`, 2},
		{`clip-path="url(#clip)"`, 2},
		{`<g class="details" transform="translate(80, 0)">`, 2},
		{`>Relation: child</text>`, 1},
		{`>Age: 10</text>`, 1},
		{`href="/images/default.jpg"`, 2},
	}
	for _, c := range checks {
		if got := strings.Count(out, c.substr); got != c.count {
			t.Errorf("count(%q) = %d, want %d", c.substr, got, c.count)
		}
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document not closed")
	}
}

func TestRender_SelectedRootB(t *testing.T) {
	out := string(Render(compute(t, scenarioDoc, 1)))

	if got := strings.Count(out, `<g class="node"`); got != 1 {
		t.Errorf("node groups = %d, want 1", got)
	}
	if strings.Contains(out, `<line`) {
		t.Error("single-node frame should have no edges")
	}
	if !strings.Contains(out, `class="name" dy="0">B</text>`) {
		t.Error("missing name line for B")
	}
	if strings.Contains(out, "Relation:") {
		t.Error("relation line should be suppressed for the displayed root")
	}
	if !strings.Contains(out, `class="age" dy="30">Age: 10</text>`) {
		t.Error("missing age line")
	}
	if !strings.Contains(out, `transform="translate(600.00,100.00)"`) {
		t.Error("single node should be centred at (600,100)")
	}
}

func TestRender_Empty(t *testing.T) {
	out := string(Render(layout.Compute(nil, layout.DefaultCanvas())))
	if strings.Contains(out, `<g class="node"`) || strings.Contains(out, "<line") {
		t.Error("empty layout should draw no nodes or edges")
	}
	if !strings.Contains(out, `width="1200" height="800"`) {
		t.Error("empty frame should keep canvas size")
	}
}

func TestRender_ZeroAge(t *testing.T) {
	doc := `{"name":"A","children":[{"name":"Baby","age":0}]}`
	res := compute(t, doc, 0)

	tests := []struct {
		name string
		opts []Option
		want bool
	}{
		{"default suppresses zero", nil, false},
		{"show zero", []Option{WithShowZeroAge(true)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(Render(res, tt.opts...))
			if got := strings.Contains(out, "Age: 0"); got != tt.want {
				t.Errorf("contains Age: 0 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRender_EmptyRelationship(t *testing.T) {
	doc := `{"name":"A","children":[{"name":"B"}]}`
	out := string(Render(compute(t, doc, 0)))
	if !strings.Contains(out, `class="relation" dy="15">Relation: </text>`) {
		t.Error("child without relationship should still show an empty relation line")
	}
}

func TestRender_Escaping(t *testing.T) {
	doc := `{"name":"<Tom & \"Jerry\">","image":"https://example.com/a.png?x=1&y=2"}`
	out := string(Render(compute(t, doc, 0)))

	if strings.Contains(out, "<Tom") {
		t.Error("name not escaped")
	}
	if !strings.Contains(out, "&lt;Tom &amp; &#34;Jerry&#34;&gt;") {
		t.Errorf("escaped name missing in %s", out)
	}
	if !strings.Contains(out, `href="https://example.com/a.png?x=1&amp;y=2"`) {
		t.Error("image URL not escaped")
	}
}

func TestRender_SelectHandler(t *testing.T) {
	res := compute(t, scenarioDoc, 0)
	var seen []string
	h := SelectFunc(func(m *family.Member) string {
		seen = append(seen, m.Name)
		return fmt.Sprintf("/select/%d", m.ID)
	})

	out := string(Render(res, WithSelectHandler(h)))

	if len(seen) != 2 || seen[0] != "A" || seen[1] != "B" {
		t.Errorf("handler called for %v, want [A B]", seen)
	}
	for _, want := range []string{`<a href="/select/0">`, `<a href="/select/1">`, `data-member="0"`, `data-member="1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if got := strings.Count(out, "</a>"); got != 2 {
		t.Errorf("closing links = %d, want 2", got)
	}
}

func TestRender_NoHandlerNoLinks(t *testing.T) {
	out := string(Render(compute(t, scenarioDoc, 0)))
	if strings.Contains(out, "<a ") {
		t.Error("links rendered without a select handler")
	}
}

func TestRender_Selected(t *testing.T) {
	res := compute(t, scenarioDoc, 0)

	if out := string(Render(res)); strings.Contains(out, `class="ring"`) {
		t.Error("ring drawn without selection")
	}
	out := string(Render(res, WithSelected(1)))
	if got := strings.Count(out, `class="ring"`); got != 1 {
		t.Errorf("rings = %d, want 1", got)
	}
	// the ring belongs to B's group
	b := strings.Index(out, `data-member="1"`)
	ring := strings.Index(out, `class="ring"`)
	if b < 0 || ring < b {
		t.Error("ring should follow B's node group")
	}
}

func TestRender_DefaultImageOverride(t *testing.T) {
	out := string(Render(compute(t, scenarioDoc, 1), WithDefaultImage("/static/me.png")))
	if !strings.Contains(out, `href="/static/me.png"`) {
		t.Error("default image override not applied")
	}
}

func TestRender_Images(t *testing.T) {
	doc := `{"name":"A","image":"images/a.jpg","children":[{"name":"B","image":"javascript:alert(1)"}]}`
	out := string(Render(compute(t, doc, 0)))
	if !strings.Contains(out, `href="images/a.jpg"`) {
		t.Error("relative image not used")
	}
	if strings.Contains(out, "javascript:") {
		t.Error("script URI reached the frame")
	}
	if !strings.Contains(out, `href="/images/default.jpg"`) {
		t.Error("script URI not replaced by the default avatar")
	}
}

func TestDetailLines(t *testing.T) {
	res := compute(t, scenarioDoc, 0)
	root, _ := res.Node(0)
	child, _ := res.Node(1)

	if got := DetailLines(root, false); len(got) != 1 || got[0].Text != "A" {
		t.Errorf("DetailLines(root) = %v, want [A]", got)
	}
	got := DetailLines(child, false)
	want := []Line{
		{Class: "name", DY: 0, Text: "B"},
		{Class: "relation", DY: 15, Text: "Relation: child"},
		{Class: "age", DY: 30, Text: "Age: 10"},
	}
	if len(got) != len(want) {
		t.Fatalf("DetailLines(child) len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DetailLines(child)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSurface_Draw(t *testing.T) {
	s := NewSurface()
	if s.Bytes() != nil || s.Frames() != 0 {
		t.Fatal("new surface should be empty")
	}

	Draw(s, compute(t, scenarioDoc, 0))
	first := s.Bytes()
	if strings.Count(string(first), `<g class="node"`) != 2 {
		t.Error("first frame should hold two nodes")
	}

	Draw(s, compute(t, scenarioDoc, 1))
	second := string(s.Bytes())
	if strings.Count(second, `<g class="node"`) != 1 {
		t.Error("redraw should replace, not append")
	}
	if s.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", s.Frames())
	}

	first[0] = 'X'
	if s.Bytes()[0] == 'X' {
		t.Error("Bytes() should return a copy")
	}

	s.Clear()
	if s.Bytes() != nil {
		t.Error("Clear() should drop the frame")
	}
}
