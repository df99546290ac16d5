package namespace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	table, path := newTestTable(t, "a=http://x\n")
	require.True(t, table.ReloadIfNeeded())

	w, err := NewWatcher(table, &WatcherOptions{Debounce: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeVersion(t, path, "a=http://y\n", 2)

	require.Eventually(t, func() bool {
		uri, _ := table.Snapshot().NamespaceURI("a")
		return uri == "http://y"
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, table.Checkpoint().Equal(base.Add(2*time.Second)))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	table, _ := newTestTable(t, "a=http://x\n")

	w, err := NewWatcher(table, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatcher_StartMissingDir(t *testing.T) {
	table := NewTable(WithDefaultPath(t.TempDir() + "/gone/namespace.properties"))

	w, err := NewWatcher(table, nil)
	require.NoError(t, err)
	defer w.Stop()

	err = w.Start(context.Background())
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "watch", ioErr.Op)
}
