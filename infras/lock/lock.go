// Package lock provides named mutual exclusion shared by every process that
// talks to the same store. A Locker never blocks past its timeout: Acquire
// reports false and the caller surfaces a retryable busy failure.
package lock

//go:generate go run go.uber.org/mock/mockgen -source=./lock.go -destination=./mocks/lock_mock.go -package=mocks

import (
	"context"
	"fmt"
	"slotkeeper/config"
	"slotkeeper/infras/metrics"
	"slotkeeper/infras/postgres"
	"slotkeeper/shared/failure"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"

	keyPrefix = "slotkeeper:lock:"
)

// Locker acquires named locks. ok is false when timeout elapsed first;
// err is reserved for store failures and context cancellation.
type Locker interface {
	Acquire(ctx context.Context, name string, timeout time.Duration) (lease Lease, ok bool, err error)
}

// Lease is a held lock. Release must be called exactly once.
type Lease interface {
	Release(ctx context.Context) error
}

// ResourceKey is the lock name guarding every booking on a resource.
func ResourceKey(resourceID string) string {
	return "booking:resource:" + resourceID
}

// New builds the configured driver wrapped with wait-time instrumentation.
func New(cfg *config.Config, db *postgres.Connection, redis *goRedis.Client, m *metrics.Metrics) Locker {
	var (
		locker Locker
		driver = cfg.Lock.Driver
	)

	switch driver {
	case DriverRedis:
		locker = NewRedis(redis, cfg.LockRedisTTL(), cfg.LockPollInterval())
	case DriverMemory:
		log.Warn().Msg("In-process lock driver selected; mutual exclusion only holds within this process")

		locker = NewMemory()
	default:
		driver = DriverPostgres
		locker = NewPostgres(db.Write, cfg.LockPollInterval())
	}

	log.Info().Str("driver", driver).Msg("Lock coordinator initialized")

	return Instrument(locker, driver, m)
}

// Do runs fn while holding name. The lease is released on every exit path,
// including panics and a cancelled ctx.
func Do(ctx context.Context, locker Locker, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	lease, ok, err := locker.Acquire(ctx, name, timeout)
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	if !ok {
		return failure.Busy("resource is busy, please retry") //nolint:wrapcheck
	}

	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			log.Error().Err(err).Str("lock", name).Msg("failed to release lock")
		}
	}()

	return fn(ctx)
}

type instrumented struct {
	next    Locker
	driver  string
	metrics *metrics.Metrics
}

// Instrument records wait time and timeouts for every acquisition.
func Instrument(next Locker, driver string, m *metrics.Metrics) Locker {
	return &instrumented{next: next, driver: driver, metrics: m}
}

func (i *instrumented) Acquire(ctx context.Context, name string, timeout time.Duration) (Lease, bool, error) {
	started := time.Now()

	lease, ok, err := i.next.Acquire(ctx, name, timeout)
	wait := time.Since(started)

	if i.metrics != nil {
		i.metrics.LockWait.WithLabelValues(i.driver, fmt.Sprint(ok)).Observe(wait.Seconds())

		if !ok && err == nil {
			i.metrics.LockTimeouts.WithLabelValues(i.driver).Inc()
		}
	}

	switch {
	case err != nil:
		log.Error().Err(err).Str("lock", name).Dur("lockWait", wait).Msg("lock acquisition failed")
	case !ok:
		log.Warn().Str("lock", name).Dur("lockWait", wait).Dur("timeout", timeout).Msg("lock acquisition timed out")
	default:
		log.Debug().Str("lock", name).Dur("lockWait", wait).Msg("lock acquired")
	}

	return lease, ok, err //nolint:wrapcheck
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	case <-timer.C:
		return nil
	}
}
