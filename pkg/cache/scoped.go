package cache

// ScopedKeyer wraps a Keyer with a prefix so several tools can share one
// backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ci:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CoverKey generates a prefixed cover key.
func (k *ScopedKeyer) CoverKey(graphHash string, opts CoverKeyOpts) string {
	return k.prefix + k.inner.CoverKey(graphHash, opts)
}
