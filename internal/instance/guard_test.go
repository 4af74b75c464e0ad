package instance

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func uniqueName(t *testing.T) string {
	t.Helper()

	return fmt.Sprintf("HourlyChimeTest_%d_%d", os.Getpid(), time.Now().UnixNano())
}

// TestAcquire_SingleWinner races several guards on one name; exactly one wins.
func TestAcquire_SingleWinner(t *testing.T) {
	t.Parallel()

	var (
		name = uniqueName(t)
		dir  = t.TempDir()

		wins   atomic.Int32
		losses atomic.Int32
		wg     sync.WaitGroup
		start  = make(chan struct{})
	)

	const contenders = 8

	errs := make(chan error, contenders)

	for range contenders {
		wg.Add(1)

		go func() {
			defer wg.Done()

			<-start

			ok, err := NewGuard(name, WithDir(dir)).Acquire()
			if err != nil {
				errs <- err

				return
			}

			if ok {
				wins.Add(1)
			} else {
				losses.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, int32(1), wins.Load())
	require.Equal(t, int32(contenders-1), losses.Load())
}

// TestAcquire_Idempotent keeps reporting success for the guard that holds the lock.
func TestAcquire_Idempotent(t *testing.T) {
	t.Parallel()

	g := NewGuard(uniqueName(t), WithDir(t.TempDir()))

	ok, err := g.Acquire()
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = g.Acquire()
	require.NoError(t, err)
	require.True(t, ok)
}

// TestAcquire_DistinctNames does not couple unrelated locks.
func TestAcquire_DistinctNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	ok, err := NewGuard(uniqueName(t)+"_a", WithDir(dir)).Acquire()
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = NewGuard(uniqueName(t)+"_b", WithDir(dir)).Acquire()
	require.NoError(t, err)
	require.True(t, ok)
}

// TestHolders_ExcludesSelf never reports the current process.
func TestHolders_ExcludesSelf(t *testing.T) {
	t.Parallel()

	holders, err := Holders()
	require.NoError(t, err)

	for _, p := range holders {
		require.NotEqual(t, os.Getpid(), p.PID)
	}
}

// TestSanitize replaces separators that are invalid in mutex and file names.
func TestSanitize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a_b_c_d", sanitize(`a\b/c:d`))
	require.Equal(t, "HourlyChimeInstanceLock", sanitize("  "))
}
