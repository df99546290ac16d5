package namespace

import "iter"

// Resolver answers prefix and URI lookups from the bindings its table held
// right after the reload check made at construction. Later reloads of the
// table are not visible to an existing Resolver.
type Resolver struct {
	snap *Bindings
}

// NewResolver reloads t if its file changed and captures the result.
func NewResolver(t *Table) *Resolver {
	t.ReloadIfNeeded()
	return &Resolver{snap: t.Snapshot()}
}

// NewResolver is a shorthand for NewResolver(t).
func (t *Table) NewResolver() *Resolver { return NewResolver(t) }

func (r *Resolver) NamespaceURI(prefix string) (string, bool) {
	return r.snap.NamespaceURI(prefix)
}

// Prefix returns the first prefix bound to uri. With duplicate URIs in the
// file the earliest line wins.
func (r *Resolver) Prefix(uri string) (string, bool) {
	return r.snap.Prefix(uri)
}

// Prefixes yields only the prefixes bound to uri. The sequence can be
// ranged over any number of times.
func (r *Resolver) Prefixes(uri string) iter.Seq[string] {
	return r.snap.Prefixes(uri)
}

func (r *Resolver) All() iter.Seq2[string, string] { return r.snap.All() }

func (r *Resolver) Len() int { return r.snap.Len() }
