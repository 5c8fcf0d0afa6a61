package svg

import "github.com/matzehuels/famtree/pkg/layout"

// Surface holds the frame currently on screen.
// It is not safe for concurrent use; owners serialise access.
type Surface struct {
	frame  []byte
	frames int
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Clear removes the current frame.
func (s *Surface) Clear() {
	s.frame = nil
}

// Bytes returns a copy of the current frame, or nil when cleared.
func (s *Surface) Bytes() []byte {
	if s.frame == nil {
		return nil
	}
	return append([]byte(nil), s.frame...)
}

// Frames returns how many frames have been drawn.
func (s *Surface) Frames() int { return s.frames }

// Draw clears s and draws res onto it.
func Draw(s *Surface, res layout.Result, opts ...Option) {
	s.Clear()
	s.frame = Render(res, opts...)
	s.frames++
}
