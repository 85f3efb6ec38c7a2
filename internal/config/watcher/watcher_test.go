package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestOperationMapping(t *testing.T) {
	op, ok := operation(fsnotify.Write)
	assert.True(t, ok)
	assert.Equal(t, OpWrite, op)
	op, _ = operation(fsnotify.Create | fsnotify.Write)
	assert.Equal(t, OpCreate, op)
	_, ok = operation(fsnotify.Chmod)
	assert.False(t, ok)
}

func TestDebouncedWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagedit.toml")
	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w := New(WithDebounce(50 * time.Millisecond))
	require.NoError(t, w.Watch(path))
	var rec recorder
	w.OnChange(rec.handle)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	assert.True(t, w.IsRunning())
	assert.ErrorIs(t, w.Start(), ErrRunning)

	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	events := rec.snapshot()
	require.Len(t, events, 1, "a burst is delivered once")
	assert.Equal(t, path, events[0].Path)
	assert.Equal(t, OpWrite, events[0].Op)
}

func TestCreateAfterStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.yaml")
	w := New(WithDebounce(0))
	require.NoError(t, w.Watch(path))
	var rec recorder
	w.OnChange(rec.handle)
	w.OnChange(func(Event) { panic("handler bug") })
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(path, []byte("x: 1\n"), 0o644))
	require.Eventually(t, func() bool {
		for _, ev := range rec.snapshot() {
			if ev.Op == OpCreate {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStop(t *testing.T) {
	w := New()
	assert.NoError(t, w.Stop(), "stopping an idle watcher")
	require.NoError(t, w.Watch("x.toml"))
	assert.Len(t, w.WatchedFiles(), 1)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}
