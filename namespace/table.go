// Package namespace resolves namespace prefixes from a properties file that
// is reloaded when it changes on disk.
//
// A Table owns the file path, the last observed modification time (the
// checkpoint) and the bindings loaded from the file. Bindings and checkpoint
// are published together through one atomic pointer and written only while
// holding the table lock, so readers never see bindings of one file version
// paired with the checkpoint of another.
//
// Every Resolver construction asks its Table to reload if the file is newer
// than the checkpoint and then keeps the bindings current at that moment.
// A Resolver's answers never change during its lifetime.
package namespace

import (
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFileName is the conventional namespace file, looked up in the
// working directory unless WithDefaultPath says otherwise.
const DefaultFileName = "namespace.properties"

type tableState struct {
	path       string
	checkpoint time.Time
	bindings   *Bindings
}

type Table struct {
	// mu serializes reloads and path changes.
	mu          sync.Mutex
	state       atomic.Pointer[tableState]
	defaultPath string
	logger      *slog.Logger
}

// NewTable creates a table reading from the default path. Nothing is read
// until the first reload check.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		defaultPath: DefaultFileName,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(t)
	}
	t.state.Store(&tableState{path: t.defaultPath, bindings: emptyBindings})
	return t
}

var defaultTable = sync.OnceValue(func() *Table { return NewTable() })

// Default returns the process-wide table, created on first use.
func Default() *Table { return defaultTable() }

// Path is the file the next reload reads.
func (t *Table) Path() string { return t.state.Load().path }

// Checkpoint is the modification time of the file version currently loaded.
// It is the zero time until a load succeeds.
func (t *Table) Checkpoint() time.Time { return t.state.Load().checkpoint }

// Snapshot returns the current bindings. Bindings are immutable.
func (t *Table) Snapshot() *Bindings { return t.state.Load().bindings }

// ReloadIfNeeded reloads the bindings when the file's modification time is
// strictly after the checkpoint, and reports whether it did. Failures are
// logged and leave the last good bindings in place.
func (t *Table) ReloadIfNeeded() bool {
	st := t.state.Load()
	fi, err := os.Stat(st.path)
	if err != nil {
		t.failed(&IOError{Op: "stat", Path: st.path, Err: err})
		return false
	}
	if !fi.ModTime().After(st.checkpoint) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reloadLocked()
}

// reloadLocked re-checks under the lock: another caller may have loaded the
// same version, or changed the path, since the unlocked check.
func (t *Table) reloadLocked() bool {
	st := t.state.Load()
	b, mtime, err := loadIfNewer(st.path, st.checkpoint)
	if err != nil {
		t.failed(err)
		return false
	}
	if b == nil {
		return false
	}

	t.state.Store(&tableState{path: st.path, checkpoint: mtime, bindings: b})
	reloads.WithLabelValues("ok").Inc()
	t.logger.Info("namespace table reloaded",
		slog.String("path", st.path),
		slog.Int("prefixes", b.Len()),
		slog.Time("modified", mtime))
	return true
}

// SetOverridePath redirects future reloads to path. It is ignored unless
// path names an existing regular file. The checkpoint is cleared so the next
// check loads the new file whatever its modification time; the current
// bindings are served until then.
func (t *Table) SetOverridePath(path string) {
	if path == "" {
		return
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return
	}
	t.setPath(path)
}

// ResetToDefaultPath points the table back at its default path.
func (t *Table) ResetToDefaultPath() { t.setPath(t.defaultPath) }

func (t *Table) setPath(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.state.Load()
	if st.path == path {
		return
	}
	t.state.Store(&tableState{path: path, bindings: st.bindings})
	t.logger.Debug("namespace table path changed",
		slog.String("from", st.path),
		slog.String("to", path))
}

func (t *Table) failed(err error) {
	reloads.WithLabelValues("error").Inc()
	t.logger.Warn("namespace table reload failed", slog.String("error", err.Error()))
}
