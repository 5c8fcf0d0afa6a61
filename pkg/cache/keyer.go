package cache

// FrameKeyOpts identifies how a frame was produced.
type FrameKeyOpts struct {
	RootID       int     `json:"root"`
	Width        float64 `json:"w"`
	Height       float64 `json:"h"`
	Margin       float64 `json:"m"`
	Inset        float64 `json:"i"`
	Format       string  `json:"f"`
	ShowZeroAge  bool    `json:"z,omitempty"`
	DefaultImage string  `json:"img,omitempty"`
	Scale        float64 `json:"s,omitempty"` // raster formats only
	Selected     *int    `json:"sel,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// FrameKey addresses one rendered artifact of the tree with the given
	// content hash.
	FrameKey(treeHash string, opts FrameKeyOpts) string
}

// DefaultKeyer is the unscoped Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FrameKey implements Keyer.
func (DefaultKeyer) FrameKey(treeHash string, opts FrameKeyOpts) string {
	return hashKey("frame", treeHash, opts)
}
