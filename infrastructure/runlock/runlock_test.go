package runlock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autopost.lock")

	first := NewFileLock(path)
	require.NoError(t, first.Lock(0))

	second := NewFileLock(path)
	assert.ErrorIs(t, second.Lock(0), ErrLocked)

	require.NoError(t, first.Unlock())
	_, err := os.Stat(path)
	assert.NoError(t, err, "lock file is kept after unlock")

	require.NoError(t, second.Lock(0))
	assert.ErrorIs(t, first.Lock(0), ErrLocked)
	require.NoError(t, second.Unlock())
}

func TestFileLock_WaiterSharesFileWithNextRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autopost.lock")

	holder := NewFileLock(path)
	require.NoError(t, holder.Lock(0))

	acquired := make(chan error, 1)
	waiter := NewFileLock(path)
	go func() { acquired <- waiter.Lock(2 * time.Second) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, holder.Unlock())
	require.NoError(t, <-acquired)
	defer waiter.Unlock()

	// a run starting now opens the same file and must see the waiter's lock
	assert.ErrorIs(t, NewFileLock(path).Lock(0), ErrLocked)
}

func TestFileLock_UnlockWithoutLock(t *testing.T) {
	assert.NoError(t, NewFileLock(filepath.Join(t.TempDir(), "x.lock")).Unlock())
}
