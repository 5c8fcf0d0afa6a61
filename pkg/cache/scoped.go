package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving processes that
// share a backend (for example one Redis for several viewers) separate
// namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FrameKey implements Keyer.
func (k *ScopedKeyer) FrameKey(treeHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(treeHash, opts)
}
