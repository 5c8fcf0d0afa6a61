package family

import (
	"strings"
	"testing"

	"github.com/matzehuels/famtree/pkg/errors"
)

const scenarioDoc = `{"name":"A","children":[{"name":"B","relationship":"child","age":10,"children":[]}]}`

func TestLoad_Scenario(t *testing.T) {
	tree, err := Load([]byte(scenarioDoc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	opts := tree.RootOptions()
	if len(opts) != 2 {
		t.Fatalf("RootOptions() len = %d, want 2", len(opts))
	}
	if opts[0].Name != "A" || opts[1].Name != "B" {
		t.Errorf("RootOptions() = [%s %s], want [A B]", opts[0].Name, opts[1].Name)
	}
	if opts[0].ID != 0 || opts[1].ID != 1 {
		t.Errorf("RootOptions() ids = [%d %d], want [0 1]", opts[0].ID, opts[1].ID)
	}

	b := opts[1]
	if b.Relationship != "child" {
		t.Errorf("Relationship = %q, want %q", b.Relationship, "child")
	}
	if b.Age == nil || *b.Age != 10 {
		t.Errorf("Age = %v, want 10", b.Age)
	}
	if b.Parent != opts[0] {
		t.Error("B.Parent should be A")
	}
}

func TestLoad_RootOptionsLength(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"leaf root", `{"name":"solo"}`, 1},
		{"null children", `{"name":"solo","children":null}`, 1},
		{"empty children", `{"name":"solo","children":[]}`, 1},
		{"three children", `{"name":"p","children":[{"name":"a"},{"name":"b"},{"name":"c"}]}`, 4},
		{"grandchildren not offered", `{"name":"p","children":[{"name":"a","children":[{"name":"x"},{"name":"y"}]}]}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Load([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got := len(tree.RootOptions()); got != tt.want {
				t.Errorf("len(RootOptions()) = %d, want %d", got, tt.want)
			}
			if got := 1 + len(tree.Root().Children); got != tt.want {
				t.Errorf("1 + children = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"plain text", "not json"},
		{"empty", ""},
		{"whitespace", "   \n"},
		{"null", "null"},
		{"array", `[{"name":"A"}]`},
		{"string", `"A"`},
		{"missing name", `{"children":[]}`},
		{"numeric name", `{"name":42}`},
		{"child missing name", `{"name":"A","children":[{"age":3}]}`},
		{"null child", `{"name":"A","children":[null]}`},
		{"bad age", `{"name":"A","age":"old"}`},
		{"boolean age", `{"name":"A","age":true}`},
		{"object relationship", `{"name":"A","relationship":{"kind":"son"}}`},
		{"truncated", `{"name":"A","children":[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Load([]byte(tt.doc))
			if err == nil {
				t.Fatalf("Load(%q) = %v, want error", tt.doc, tree)
			}
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("Load(%q) code = %v, want %v", tt.doc, errors.GetCode(err), errors.ErrCodeParse)
			}
		})
	}
}

func TestLoad_ErrorPath(t *testing.T) {
	_, err := Load([]byte(`{"name":"A","children":[{"name":"B"},{"name":"C","children":[{}]}]}`))
	if err == nil {
		t.Fatal("Load() should fail")
	}
	if !strings.Contains(err.Error(), "root.children[1].children[0]") {
		t.Errorf("error %q should name the offending member", err)
	}
}

func TestLoad_LenientFields(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(*Member) bool
	}{
		{"relative image", `{"name":"A","image":"images/alice.jpg"}`, func(m *Member) bool { return m.Image == "images/alice.jpg" }},
		{"bare image file", `{"name":"A","image":"alice.png"}`, func(m *Member) bool { return m.Image == "alice.png" }},
		{"script image kept as data", `{"name":"A","image":"javascript:alert(1)"}`, func(m *Member) bool { return m.Image == "javascript:alert(1)" }},
		{"null image", `{"name":"A","image":null}`, func(m *Member) bool { return m.Image == "" }},
		{"empty name", `{"name":""}`, func(m *Member) bool { return m.Name == "" }},
		{"numeric relationship", `{"name":"A","relationship":1}`, func(m *Member) bool { return m.Relationship == "1" }},
		{"boolean relationship", `{"name":"A","relationship":true}`, func(m *Member) bool { return m.Relationship == "true" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Load([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Load(%s) error: %v", tt.doc, err)
			}
			if !tt.check(tree.Root()) {
				t.Errorf("Load(%s) root = %+v", tt.doc, tree.Root())
			}
		})
	}
}

func TestLoad_ErrorCodeOnce(t *testing.T) {
	_, err := Load([]byte(`{"name":"A","children":[{"age":3}]}`))
	if err == nil {
		t.Fatal("Load() should fail")
	}
	if n := strings.Count(err.Error(), string(errors.ErrCodeParse)); n != 1 {
		t.Errorf("Load() error = %q, want code once", err)
	}
	if msg := errors.UserMessage(err); strings.Contains(msg, string(errors.ErrCodeParse)) {
		t.Errorf("UserMessage() = %q, want no code", msg)
	}
}

func TestLoad_Age(t *testing.T) {
	tests := []struct {
		doc  string
		want *float64
	}{
		{`{"name":"A"}`, nil},
		{`{"name":"A","age":null}`, nil},
		{`{"name":"A","age":""}`, nil},
		{`{"name":"A","age":7}`, ptr(7)},
		{`{"name":"A","age":2.5}`, ptr(2.5)},
		{`{"name":"A","age":"42"}`, ptr(42)},
		{`{"name":"A","age":0}`, ptr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			tree, err := Load([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			got := tree.Root().Age
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Age = %v, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("Age = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestLoad_PreorderIDs(t *testing.T) {
	doc := `{"name":"r","children":[
		{"name":"a","children":[{"name":"a1"},{"name":"a2"}]},
		{"name":"b","children":[{"name":"b1"}]}
	]}`
	tree, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := []string{"r", "a", "a1", "a2", "b", "b1"}
	if tree.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", tree.Len(), len(want))
	}
	for id, name := range want {
		m, ok := tree.Member(id)
		if !ok || m.Name != name {
			t.Errorf("Member(%d) = %v, want %s", id, m, name)
		}
	}

	a, _ := tree.Member(1)
	if a.Size() != 3 {
		t.Errorf("a.Size() = %d, want 3", a.Size())
	}
	a2, _ := tree.Member(3)
	b1, _ := tree.Member(5)
	if !a.Contains(a2) {
		t.Error("a should contain a2")
	}
	if a.Contains(b1) {
		t.Error("a should not contain b1")
	}
	if !tree.Root().Contains(b1) {
		t.Error("root should contain b1")
	}
	if b1.Depth() != 2 {
		t.Errorf("b1.Depth() = %d, want 2", b1.Depth())
	}
	if _, ok := tree.Member(99); ok {
		t.Error("Member(99) should not exist")
	}
}

func TestLoad_DuplicateNames(t *testing.T) {
	tree, err := Load([]byte(`{"name":"p","children":[{"name":"Sam"},{"name":"Sam"}]}`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	opts := tree.RootOptions()
	if opts[1].ID == opts[2].ID {
		t.Errorf("siblings sharing a name got the same id %d", opts[1].ID)
	}
	if !tree.IsRootOption(2) || tree.IsRootOption(3) {
		t.Error("IsRootOption() mismatch")
	}
}

func TestLoad_Hash(t *testing.T) {
	t1, _ := Load([]byte(scenarioDoc))
	t2, _ := Load([]byte("  " + scenarioDoc + "\n"))
	t3, _ := Load([]byte(`{"name":"Z"}`))

	if t1.Hash() != t2.Hash() {
		t.Error("Hash() should ignore surrounding whitespace")
	}
	if t1.Hash() == t3.Hash() {
		t.Error("different documents should hash differently")
	}
	if len(t1.Hash()) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(t1.Hash()))
	}
}

func TestLoadReader_TooLarge(t *testing.T) {
	big := `{"name":"A","image":"/` + strings.Repeat("x", MaxDocumentSize) + `"}`
	_, err := LoadReader(strings.NewReader(big))
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("LoadReader() error = %v, want PARSE_ERROR", err)
	}
}

func ptr(v float64) *float64 { return &v }
