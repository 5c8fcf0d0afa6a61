package viewer

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/famtree/pkg/errors"
)

const scenarioDoc = `{"name":"A","children":[{"name":"B","relationship":"child","age":10,"children":[]}]}`

const familyDoc = `{"name":"Grandma","children":[
	{"name":"Mum","relationship":"daughter","children":[{"name":"Kid","relationship":"grandson","age":4}]},
	{"name":"Uncle","relationship":"son","age":40}
]}`

func loaded(t *testing.T, doc string) *State {
	t.Helper()
	s := New(Options{})
	if err := s.Load([]byte(doc)); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return s
}

func TestState_Empty(t *testing.T) {
	s := New(Options{})

	if s.Loaded() || s.Tree() != nil || s.ActiveRoot() != nil || s.Selected() != nil {
		t.Error("new state should be Empty")
	}
	if s.RootOptions() != nil {
		t.Error("RootOptions() should be nil when Empty")
	}
	if s.Frame() != nil || s.Frames() != 0 {
		t.Error("nothing should be drawn when Empty")
	}
	if err := s.SetActiveRoot(0); !errors.Is(err, errors.ErrCodeSelection) {
		t.Errorf("SetActiveRoot() error = %v, want SELECTION_ERROR", err)
	}
	if err := s.OnNodeClicked(0); !errors.Is(err, errors.ErrCodeSelection) {
		t.Errorf("OnNodeClicked() error = %v, want SELECTION_ERROR", err)
	}
}

func TestState_Scenario(t *testing.T) {
	s := loaded(t, scenarioDoc)

	opts := s.RootOptions()
	if len(opts) != 2 || opts[0].Name != "A" || opts[1].Name != "B" {
		t.Fatalf("RootOptions() = %v, want [A B]", opts)
	}
	if s.ActiveRoot().Name != "A" {
		t.Errorf("ActiveRoot() = %s, want A", s.ActiveRoot().Name)
	}
	if got := len(s.Layout().Nodes); got != 2 {
		t.Errorf("nodes = %d, want 2", got)
	}

	if err := s.SetActiveRoot(1); err != nil {
		t.Fatalf("SetActiveRoot(1) error: %v", err)
	}
	res := s.Layout()
	if len(res.Nodes) != 1 || len(res.Edges) != 0 {
		t.Errorf("layout = %d nodes %d edges, want 1 and 0", len(res.Nodes), len(res.Edges))
	}
	frame := string(s.Frame())
	if strings.Count(frame, `<g class="node"`) != 1 {
		t.Error("frame should contain exactly one node")
	}
	if strings.Contains(frame, "Relation:") {
		t.Error("relation should be suppressed at the displayed root")
	}
	if !strings.Contains(frame, "Age: 10") {
		t.Error("frame should show Age: 10")
	}
}

func TestState_RedrawOnlyOnRootChange(t *testing.T) {
	s := loaded(t, familyDoc)
	if s.Frames() != 1 {
		t.Fatalf("Frames() after load = %d, want 1", s.Frames())
	}

	steps := []struct {
		name   string
		root   int
		frames int
	}{
		{"same root", 0, 1},
		{"switch to Mum", 1, 2},
		{"Mum again", 1, 2},
		{"switch to Uncle", 3, 3},
		{"back to Grandma", 0, 4},
	}
	for _, st := range steps {
		if err := s.SetActiveRoot(st.root); err != nil {
			t.Fatalf("%s: SetActiveRoot(%d) error: %v", st.name, st.root, err)
		}
		if got := s.Frames(); got != st.frames {
			t.Errorf("%s: Frames() = %d, want %d", st.name, got, st.frames)
		}
	}
}

func TestState_RejectsNonOption(t *testing.T) {
	s := loaded(t, familyDoc)
	if err := s.SetActiveRoot(1); err != nil {
		t.Fatal(err)
	}
	before := s.Frames()

	// 2 is Kid: a grandchild, never offered
	for _, id := range []int{2, -1, 99} {
		err := s.SetActiveRoot(id)
		if !errors.Is(err, errors.ErrCodeSelection) {
			t.Errorf("SetActiveRoot(%d) error = %v, want SELECTION_ERROR", id, err)
		}
	}
	if s.ActiveRoot().Name != "Mum" {
		t.Errorf("ActiveRoot() = %s, want Mum", s.ActiveRoot().Name)
	}
	if s.Frames() != before {
		t.Error("rejected switch should not redraw")
	}
}

func TestState_OnNodeClicked(t *testing.T) {
	s := loaded(t, familyDoc)
	frames := s.Frames()

	if err := s.OnNodeClicked(2); err != nil {
		t.Fatalf("OnNodeClicked(2) error: %v", err)
	}
	if sel := s.Selected(); sel == nil || sel.Name != "Kid" {
		t.Errorf("Selected() = %v, want Kid", sel)
	}
	if s.Frames() != frames {
		t.Error("clicking should not redraw")
	}
	if err := s.OnNodeClicked(42); !errors.Is(err, errors.ErrCodeSelection) {
		t.Errorf("OnNodeClicked(42) error = %v, want SELECTION_ERROR", err)
	}
	if s.Selected().Name != "Kid" {
		t.Error("failed click should keep the selection")
	}

	s.ClearSelection()
	if s.Selected() != nil {
		t.Error("ClearSelection() should drop the selection")
	}
}

func TestState_ClickOutsideDisplayedSubtree(t *testing.T) {
	s := loaded(t, familyDoc)
	if err := s.SetActiveRoot(3); err != nil {
		t.Fatal(err)
	}
	if err := s.OnNodeClicked(2); !errors.Is(err, errors.ErrCodeSelection) {
		t.Errorf("OnNodeClicked(hidden) error = %v, want SELECTION_ERROR", err)
	}
}

func TestState_SelectionAcrossRootSwitch(t *testing.T) {
	tests := []struct {
		name    string
		sel int
		root    int
		keep    bool
	}{
		{"kept inside subtree", 2, 1, true},
		{"kept when selecting the new root", 1, 1, true},
		{"cleared outside subtree", 2, 3, false},
		{"root selection cleared by child root", 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loaded(t, familyDoc)
			if err := s.OnNodeClicked(tt.sel); err != nil {
				t.Fatal(err)
			}
			if err := s.SetActiveRoot(tt.root); err != nil {
				t.Fatal(err)
			}
			if got := s.Selected() != nil; got != tt.keep {
				t.Errorf("selection kept = %v, want %v", got, tt.keep)
			}
		})
	}
}

func TestState_FrameCarriesNoSelection(t *testing.T) {
	s := loaded(t, familyDoc)
	steps := []struct {
		name string
		do   func() error
	}{
		{"click Kid", func() error { return s.OnNodeClicked(2) }},
		{"switch to Mum", func() error { return s.SetActiveRoot(1) }},
		{"click Mum", func() error { return s.OnNodeClicked(1) }},
	}
	for _, st := range steps {
		if err := st.do(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if strings.Contains(string(s.Frame()), `class="ring"`) {
			t.Errorf("%s: frame highlights a member", st.name)
		}
	}
	if sel := s.Selected(); sel == nil || sel.Name != "Mum" {
		t.Errorf("Selected() = %v, want Mum", sel)
	}
	if s.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", s.Frames())
	}
}

func TestState_MalformedLoadKeepsState(t *testing.T) {
	s := loaded(t, familyDoc)
	if err := s.SetActiveRoot(1); err != nil {
		t.Fatal(err)
	}
	if err := s.OnNodeClicked(2); err != nil {
		t.Fatal(err)
	}
	tree, frame, frames := s.Tree(), string(s.Frame()), s.Frames()

	for _, doc := range []string{"not json", `{"children":[]}`, `{"name":"x","children":[{"age":1}]}`, ""} {
		err := s.Load([]byte(doc))
		if !errors.Is(err, errors.ErrCodeParse) {
			t.Errorf("Load(%q) error = %v, want PARSE_ERROR", doc, err)
		}
	}

	if s.Tree() != tree || s.ActiveRoot().Name != "Mum" || s.Selected().Name != "Kid" {
		t.Error("failed load changed the state")
	}
	if string(s.Frame()) != frame || s.Frames() != frames {
		t.Error("failed load redrew the frame")
	}
}

func TestState_MalformedLoadWhenEmpty(t *testing.T) {
	s := New(Options{})
	if err := s.Load([]byte("{")); !errors.Is(err, errors.ErrCodeParse) {
		t.Fatalf("Load() error = %v, want PARSE_ERROR", err)
	}
	if s.Loaded() {
		t.Error("failed load should stay Empty")
	}
}

func TestState_ReloadResets(t *testing.T) {
	s := loaded(t, familyDoc)
	if err := s.SetActiveRoot(1); err != nil {
		t.Fatal(err)
	}
	if err := s.OnNodeClicked(2); err != nil {
		t.Fatal(err)
	}

	if err := s.Load([]byte(scenarioDoc)); err != nil {
		t.Fatal(err)
	}
	if s.ActiveRoot().Name != "A" {
		t.Errorf("ActiveRoot() = %s, want A", s.ActiveRoot().Name)
	}
	if s.Selected() != nil {
		t.Error("reload should clear the selection")
	}
}

func TestState_Upload(t *testing.T) {
	s := New(Options{})
	if err := s.Upload(context.Background(), strings.NewReader(scenarioDoc)); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if s.ActiveRoot().Name != "A" {
		t.Error("upload should load the tree")
	}

	err := s.Upload(context.Background(), strings.NewReader("[1,2]"))
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("Upload(malformed) error = %v, want PARSE_ERROR", err)
	}
	if s.ActiveRoot().Name != "A" {
		t.Error("malformed upload changed the tree")
	}
}

func TestState_UploadCancelled(t *testing.T) {
	s := loaded(t, scenarioDoc)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Upload(ctx, pr); err == nil {
		t.Error("Upload() with cancelled context should fail")
	}
	if s.ActiveRoot().Name != "A" {
		t.Error("cancelled upload changed the tree")
	}
}

func TestState_UploadLastCompletedWins(t *testing.T) {
	s := New(Options{})

	slowR, slowW := io.Pipe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.Upload(context.Background(), slowR); err != nil {
			t.Errorf("slow Upload() error: %v", err)
		}
	}()

	if err := s.Upload(context.Background(), strings.NewReader(`{"name":"fast"}`)); err != nil {
		t.Fatalf("fast Upload() error: %v", err)
	}
	if s.ActiveRoot().Name != "fast" {
		t.Fatal("fast upload should be applied on completion")
	}

	_, _ = io.WriteString(slowW, `{"name":"slow"}`)
	slowW.Close()
	wg.Wait()

	if s.ActiveRoot().Name != "slow" {
		t.Errorf("ActiveRoot() = %s, want slow (last completed)", s.ActiveRoot().Name)
	}
}

func TestState_ShowZeroAge(t *testing.T) {
	doc := `{"name":"A","children":[{"name":"Baby","age":0}]}`
	for _, show := range []bool{false, true} {
		s := New(Options{ShowZeroAge: show})
		if err := s.Load([]byte(doc)); err != nil {
			t.Fatal(err)
		}
		if got := strings.Contains(string(s.Frame()), "Age: 0"); got != show {
			t.Errorf("ShowZeroAge=%v: contains Age: 0 = %v", show, got)
		}
	}
}

func TestState_Snapshot(t *testing.T) {
	s := loaded(t, scenarioDoc)
	if err := s.OnNodeClicked(1); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.ActiveRoot.Name != "A" || snap.Selected.Name != "B" || len(snap.RootOptions) != 2 {
		t.Errorf("Snapshot() = %+v", snap)
	}
	if len(snap.Frame) == 0 || len(snap.Layout.Nodes) != 2 {
		t.Error("Snapshot() should carry frame and layout")
	}
}
