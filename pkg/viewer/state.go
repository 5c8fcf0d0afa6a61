package viewer

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/layout"
	"github.com/matzehuels/famtree/pkg/observability"
	"github.com/matzehuels/famtree/pkg/render/svg"
)

// Options configures a State.
type Options struct {
	Canvas        layout.Canvas
	ShowZeroAge   bool
	DefaultImage  string
	SelectHandler svg.SelectHandler
	Logger        *log.Logger
}

func (o *Options) setDefaults() {
	if o.Canvas == (layout.Canvas{}) {
		o.Canvas = layout.DefaultCanvas()
	}
	if o.DefaultImage == "" {
		o.DefaultImage = family.DefaultImage
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// State is the controller behind one viewer.
type State struct {
	mu   sync.Mutex
	opts Options

	tree     *family.Tree
	active   *family.Member
	selected *family.Member

	result  layout.Result
	surface *svg.Surface
}

// New returns an Empty state.
func New(opts Options) *State {
	opts.setDefaults()
	return &State{opts: opts, surface: svg.NewSurface()}
}

// Load parses raw and, on success, replaces the tree, resets the active root
// to the loaded root, clears the selection and redraws. On failure the state
// is unchanged and the returned error has code PARSE_ERROR.
func (s *State) Load(raw []byte) error {
	return s.load(context.Background(), raw)
}

func (s *State) load(ctx context.Context, raw []byte) error {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, len(raw))

	tree, err := family.Load(raw)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, 0, time.Since(start), err)
		s.opts.Logger.Warn("tree rejected", "error", errors.UserMessage(err))
		return err
	}
	observability.Pipeline().OnLoadComplete(ctx, tree.Len(), time.Since(start), nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree = tree
	s.active = tree.Root()
	s.selected = nil
	s.redraw(ctx)
	s.opts.Logger.Info("tree loaded", "root", tree.Root().Name, "members", tree.Len())
	return nil
}

// Upload reads a document from r and loads it. Reading happens outside the
// state lock, so concurrent uploads overlap and are applied in the order
// they finish. Cancelling ctx abandons the read.
func (s *State) Upload(ctx context.Context, r io.Reader) error {
	raw, err := readAll(ctx, io.LimitReader(r, family.MaxDocumentSize+1))
	if err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "read upload")
	}
	if len(raw) > family.MaxDocumentSize {
		return errors.New(errors.ErrCodeParse, "document exceeds %d bytes", family.MaxDocumentSize)
	}
	return s.load(ctx, raw)
}

func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.data, res.err
	}
}

// SetActiveRoot switches the displayed subtree to the member with the given
// ID. Only root options are accepted; anything else returns a
// SELECTION_ERROR and leaves the state untouched. Selecting the current root
// is a no-op.
func (s *State) SetActiveRoot(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree == nil {
		return errors.New(errors.ErrCodeSelection, "no tree loaded")
	}
	if !s.tree.IsRootOption(id) {
		return errors.New(errors.ErrCodeSelection, "member %d is not a root option", id)
	}
	m, _ := s.tree.Member(id)
	if m == s.active {
		return nil
	}

	s.active = m
	if s.selected != nil && !m.Contains(s.selected) {
		s.selected = nil
	}
	s.redraw(context.Background())
	s.opts.Logger.Debug("root switched", "root", m.Name, "id", id)
	return nil
}

// OnNodeClicked selects the member with the given ID. The member must be
// inside the displayed subtree. Frames never carry the selection, so the
// current frame stays valid; exports render the highlight on demand.
func (s *State) OnNodeClicked(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree == nil {
		return errors.New(errors.ErrCodeSelection, "no tree loaded")
	}
	m, ok := s.tree.Member(id)
	if !ok || !s.active.Contains(m) {
		return errors.New(errors.ErrCodeSelection, "member %d is not displayed", id)
	}
	s.selected = m
	s.opts.Logger.Debug("member selected", "name", m.Name, "id", id)
	return nil
}

// ClearSelection drops the current selection.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// redraw recomputes the layout for the active root and draws a fresh frame.
// Callers hold s.mu.
func (s *State) redraw(ctx context.Context) {
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, s.active.ID, s.active.Size())
	s.result = layout.Compute(s.active, s.opts.Canvas)
	observability.Pipeline().OnLayoutComplete(ctx, s.active.ID, time.Since(start))

	formats := []string{"svg"}
	start = time.Now()
	observability.Pipeline().OnRenderStart(ctx, formats)
	svg.Draw(s.surface, s.result, s.renderOptions()...)
	observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), nil)
}

func (s *State) renderOptions() []svg.Option {
	opts := []svg.Option{
		svg.WithShowZeroAge(s.opts.ShowZeroAge),
		svg.WithDefaultImage(s.opts.DefaultImage),
	}
	if s.opts.SelectHandler != nil {
		opts = append(opts, svg.WithSelectHandler(s.opts.SelectHandler))
	}
	return opts
}

// Loaded reports whether a tree has been loaded.
func (s *State) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree != nil
}

// Tree returns the loaded tree, or nil when Empty.
func (s *State) Tree() *family.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// ActiveRoot returns the displayed root, or nil when Empty.
func (s *State) ActiveRoot() *family.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Selected returns the selected member, or nil.
func (s *State) Selected() *family.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// RootOptions returns the members offered as display roots.
func (s *State) RootOptions() []*family.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return nil
	}
	return s.tree.RootOptions()
}

// Frame returns the current SVG frame, or nil when Empty.
func (s *State) Frame() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Bytes()
}

// Frames returns how many frames have been drawn.
func (s *State) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Frames()
}

// Layout returns the layout of the current frame.
func (s *State) Layout() layout.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Canvas returns the canvas frames are drawn on.
func (s *State) Canvas() layout.Canvas { return s.opts.Canvas }

// Snapshot is a consistent copy of the view state.
type Snapshot struct {
	Tree        *family.Tree
	ActiveRoot  *family.Member
	Selected    *family.Member
	RootOptions []*family.Member
	Layout      layout.Result
	Frame       []byte
	Frames      int
}

// Snapshot returns the view state captured under one lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Tree:       s.tree,
		ActiveRoot: s.active,
		Selected:   s.selected,
		Layout:     s.result,
		Frame:      s.surface.Bytes(),
		Frames:     s.surface.Frames(),
	}
	if s.tree != nil {
		snap.RootOptions = s.tree.RootOptions()
	}
	return snap
}
