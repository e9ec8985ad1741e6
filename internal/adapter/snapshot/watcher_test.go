package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cmdref/internal/domain"
	"cmdref/internal/logging"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"commands": {}}`), 0o644))

	loads := make(chan int, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(snap *domain.IndexSnapshot, fp string) error {
		loads <- len(snap.Commands)
		return nil
	}, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	select {
	case n := <-loads:
		assert.Equal(t, 2, n)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_SkipsUnchangedFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	calls := 0
	w, err := NewWatcher(path, time.Millisecond, func(*domain.IndexSnapshot, string) error {
		calls++
		return nil
	}, logging.Discard())
	require.NoError(t, err)

	w.Seed(Fingerprint([]byte(sampleJSON)))
	require.NoError(t, w.reload())
	assert.Zero(t, calls)

	require.NoError(t, os.WriteFile(path, []byte(`{"commands": {}}`), 0o644))
	require.NoError(t, w.reload())
	require.NoError(t, w.reload())
	assert.Equal(t, 1, calls)
}

func TestWatcher_RejectedSnapshotIsRetried(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	calls := 0
	w, err := NewWatcher(path, time.Millisecond, func(*domain.IndexSnapshot, string) error {
		calls++
		return domain.ErrInvalidSnapshot
	}, logging.Discard())
	require.NoError(t, err)

	assert.ErrorIs(t, w.reload(), domain.ErrInvalidSnapshot)
	assert.ErrorIs(t, w.reload(), domain.ErrInvalidSnapshot)
	assert.Equal(t, 2, calls)
}
