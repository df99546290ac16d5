package eval

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/aqilarik/xpcache/internal/engine"
)

// Compiler is the part of an engine the table drives on a miss.
type Compiler interface {
	Compile(text string) (engine.Expression, error)
	Reset()
}

// Table caches compiled expressions for the lifetime of one cache.
// Entries are never removed.
type Table struct {
	// mu serializes every call into the compiler.
	mu      sync.Mutex
	entries sync.Map // string -> *Entry
	size    atomic.Int64
	flight  singleflight.Group
}

func NewTable() *Table {
	return &Table{}
}

// Locked runs fn while holding the compile lock.
func (t *Table) Locked(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
}

// Compile compiles text without caching it.
func (t *Table) Compile(c Compiler, text string) (engine.Expression, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return c.Compile(text)
}

// Lookup returns the entry for text if it was compiled before.
func (t *Table) Lookup(text string) (*Entry, bool) {
	v, ok := t.entries.Load(text)
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// Outcome tells how GetOrCompile obtained its result.
type Outcome uint8

const (
	// Hit: the entry was already cached.
	Hit Outcome = iota
	// Compiled: this call ran the compiler.
	Compiled
	// Shared: this call waited for a compilation run by another caller.
	Shared
)

// GetOrCompile returns the entry for text, compiling it on first use.
// Concurrent misses for the same text share one compilation; failed
// compilations are not stored.
func (t *Table) GetOrCompile(c Compiler, text string) (*Entry, Outcome, error) {
	if e, ok := t.Lookup(text); ok {
		return e, Hit, nil
	}

	outcome := Shared
	v, err, _ := t.flight.Do(text, func() (interface{}, error) {
		t.mu.Lock()
		defer t.mu.Unlock()

		if e, ok := t.Lookup(text); ok {
			return e, nil
		}
		outcome = Compiled
		c.Reset()
		x, err := c.Compile(text)
		if err != nil {
			return nil, err
		}
		actual, loaded := t.entries.LoadOrStore(text, &Entry{expr: x})
		if !loaded {
			t.size.Add(1)
		}
		return actual, nil
	})
	if err != nil {
		return nil, outcome, err
	}
	return v.(*Entry), outcome, nil
}

// Len is the number of cached entries.
func (t *Table) Len() int { return int(t.size.Load()) }
