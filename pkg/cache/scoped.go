package cache

// ScopedKeyer wraps a Keyer with a prefix so separate consumers can share
// one cache backend without key collisions. The serve command namespaces
// its entries away from batch CLI runs; a per-user prefix isolates tenants.
//
// Example usage:
//
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// CatalogKey generates a prefixed key for a catalog fetch.
func (k *ScopedKeyer) CatalogKey(collection string, opts CatalogKeyOpts) string {
	return k.prefix + k.inner.CatalogKey(collection, opts)
}

// PageKey generates a prefixed key for a rendered page.
func (k *ScopedKeyer) PageKey(viewHash string, opts PageKeyOpts) string {
	return k.prefix + k.inner.PageKey(viewHash, opts)
}

// ArtifactKey generates a prefixed key for an export artifact.
func (k *ScopedKeyer) ArtifactKey(pagesHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(pagesHash, opts)
}
