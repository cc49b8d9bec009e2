package lock_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotkeeper/config"
	"slotkeeper/infras/lock"
	"slotkeeper/infras/metrics"
	"slotkeeper/shared/failure"
)

func TestMemoryAcquireRelease(t *testing.T) {
	locker := lock.NewMemory()
	ctx := context.Background()

	lease, ok, err := locker.Acquire(ctx, "a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "a", 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must time out while held")

	other, ok, err := locker.Acquire(ctx, "b", 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok, "different names do not contend")
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))

	again, ok, err := locker.Acquire(ctx, "a", 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, again.Release(ctx))
}

func TestMemoryDoubleReleaseIsHarmless(t *testing.T) {
	locker := lock.NewMemory()
	ctx := context.Background()

	lease, ok, err := locker.Acquire(ctx, "a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx))

	first, ok, _ := locker.Acquire(ctx, "a", 10*time.Millisecond)
	require.True(t, ok)

	_, ok, _ = locker.Acquire(ctx, "a", 10*time.Millisecond)
	assert.False(t, ok)
	require.NoError(t, first.Release(ctx))
}

func TestMemoryAcquireHonoursContext(t *testing.T) {
	locker := lock.NewMemory()

	held, ok, err := locker.Acquire(context.Background(), "a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	defer held.Release(context.Background()) //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err = locker.Acquire(ctx, "a", time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoMutualExclusion(t *testing.T) {
	locker := lock.NewMemory()

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := lock.Do(context.Background(), locker, lock.ResourceKey("r1"), 5*time.Second, func(context.Context) error {
				n := inside.Add(1)
				if n > maxSeen.Load() {
					maxSeen.Store(n)
				}

				time.Sleep(time.Millisecond)
				inside.Add(-1)

				return nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestDoTimeoutIsBusy(t *testing.T) {
	locker := lock.NewMemory()
	ctx := context.Background()

	held, ok, err := locker.Acquire(ctx, lock.ResourceKey("r1"), time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	defer held.Release(ctx) //nolint:errcheck

	called := false
	err = lock.Do(ctx, locker, lock.ResourceKey("r1"), 10*time.Millisecond, func(context.Context) error {
		called = true

		return nil
	})

	require.Error(t, err)
	assert.False(t, called, "work must never run unlocked")
	assert.True(t, failure.IsKind(err, failure.KindBusy))
	assert.True(t, failure.IsRetryable(err))
}

func TestDoReleasesOnErrorAndPanic(t *testing.T) {
	locker := lock.NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")

	err := lock.Do(ctx, locker, "k", time.Second, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_ = lock.Do(ctx, locker, "k", time.Second, func(context.Context) error { panic("bad") })
	})

	lease, ok, err := locker.Acquire(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok, "lock must be free after error and panic")
	require.NoError(t, lease.Release(ctx))
}

func TestDoReleasesWhenContextCancelledInside(t *testing.T) {
	locker := lock.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	err := lock.Do(ctx, locker, "k", time.Second, func(context.Context) error {
		cancel()

		return nil
	})
	require.NoError(t, err)

	lease, ok, err := locker.Acquire(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, lease.Release(context.Background()))
}

func TestInstrumentRecordsTimeouts(t *testing.T) {
	m := metrics.New(&config.Config{})
	locker := lock.Instrument(lock.NewMemory(), lock.DriverMemory, m)
	ctx := context.Background()

	held, ok, err := locker.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "k", 5*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, held.Release(ctx))

	assert.InDelta(t, 1, testutil.ToFloat64(m.LockTimeouts.WithLabelValues(lock.DriverMemory)), 0)
}

func TestResourceKey(t *testing.T) {
	assert.Equal(t, "booking:resource:abc", lock.ResourceKey("abc"))
}
