package store

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// backend keep separate namespaces.
//
// Example usage:
//
//	// Per-project keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:library:")
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

// DocumentKey generates a prefixed document key.
func (k *ScopedKeyer) DocumentKey(uri string, opts DocumentKeyOpts) string {
	return k.prefix + k.inner.DocumentKey(uri, opts)
}

// ContentKey generates a prefixed content key.
func (k *ScopedKeyer) ContentKey(data []byte) string {
	return k.prefix + k.inner.ContentKey(data)
}
