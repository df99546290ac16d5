package namespace

import (
	"io"
	"iter"
	"os"
	"time"

	"github.com/magiconair/properties"
)

// Bindings is an immutable prefix to URI mapping in file order.
type Bindings struct {
	prefixes []string
	uris     map[string]string
}

var emptyBindings = &Bindings{uris: map[string]string{}}

// NewBindings builds bindings from prefix/URI pairs given as alternating
// arguments. Later duplicates of a prefix replace earlier ones but keep the
// first position.
func NewBindings(pairs ...string) *Bindings {
	b := &Bindings{uris: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		b.add(pairs[i], pairs[i+1])
	}
	return b
}

func (b *Bindings) add(prefix, uri string) {
	if _, ok := b.uris[prefix]; !ok {
		b.prefixes = append(b.prefixes, prefix)
	}
	b.uris[prefix] = uri
}

func (b *Bindings) Len() int { return len(b.prefixes) }

func (b *Bindings) NamespaceURI(prefix string) (string, bool) {
	uri, ok := b.uris[prefix]
	return uri, ok
}

// Prefix returns the first prefix in file order bound to uri.
func (b *Bindings) Prefix(uri string) (string, bool) {
	for _, p := range b.prefixes {
		if b.uris[p] == uri {
			return p, true
		}
	}
	return "", false
}

// Prefixes yields every prefix bound to uri, in file order.
func (b *Bindings) Prefixes(uri string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range b.prefixes {
			if b.uris[p] != uri {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// All yields every prefix/URI pair in file order.
func (b *Bindings) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, p := range b.prefixes {
			if !yield(p, b.uris[p]) {
				return
			}
		}
	}
}

// loadIfNewer loads the UTF-8 properties file at path when its modification
// time is after since. The time is taken from the open file, so it always
// describes the content read. It returns nil bindings when the file is not
// newer. ${...} references are kept literally since URIs are never templated.
func loadIfNewer(path string, since time.Time) (*Bindings, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, time.Time{}, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, &IOError{Op: "stat", Path: path, Err: err}
	}
	mtime := fi.ModTime()
	if !mtime.After(since) {
		return nil, mtime, nil
	}

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, mtime, &IOError{Op: "read", Path: path, Err: err}
	}
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(buf)
	if err != nil {
		return nil, mtime, &IOError{Op: "load", Path: path, Err: err}
	}

	keys := p.Keys()
	b := &Bindings{
		prefixes: make([]string, 0, len(keys)),
		uris:     make(map[string]string, len(keys)),
	}
	for _, k := range keys {
		v, _ := p.Get(k)
		b.add(k, v)
	}
	return b, mtime, nil
}
