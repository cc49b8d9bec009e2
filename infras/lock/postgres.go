package lock

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	queryTryAdvisoryLock = "SELECT pg_try_advisory_lock(hashtext($1))"
	queryAdvisoryUnlock  = "SELECT pg_advisory_unlock(hashtext($1))"
)

type postgresLocker struct {
	db   *sqlx.DB
	poll time.Duration
}

// NewPostgres returns a Locker built on session-level advisory locks. A held
// lease pins one pooled connection until Release. Waiting does not: every
// poll borrows a connection and hands it back when the lock is taken elsewhere.
func NewPostgres(db *sqlx.DB, poll time.Duration) Locker {
	return &postgresLocker{db: db, poll: poll}
}

func (l *postgresLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (Lease, bool, error) {
	deadline := time.Now().Add(timeout)
	key := keyPrefix + name

	for {
		lease, err := l.tryAcquire(ctx, key)
		if err != nil {
			return nil, false, err
		}

		if lease != nil {
			return lease, true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false, nil
		}

		if err := sleep(ctx, min(l.poll, remaining)); err != nil {
			return nil, false, err
		}
	}
}

// tryAcquire makes one attempt. The connection is kept only when it now holds
// the lock.
func (l *postgresLocker) tryAcquire(ctx context.Context, key string) (*postgresLease, error) {
	conn, err := l.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lock connection: %w", err)
	}

	var acquired bool
	if err := conn.GetContext(ctx, &acquired, queryTryAdvisoryLock, key); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to try advisory lock: %w", err)
	}

	if !acquired {
		_ = conn.Close()

		return nil, nil
	}

	return &postgresLease{conn: conn, key: key}, nil
}

type postgresLease struct {
	conn *sqlx.Conn
	key  string
}

func (l *postgresLease) Release(ctx context.Context) error {
	var released bool

	err := l.conn.GetContext(ctx, &released, queryAdvisoryUnlock, l.key)
	if err != nil || !released {
		// The session may still hold the lock; never hand it back to the pool.
		_ = l.conn.Raw(func(any) error { return driver.ErrBadConn })
	}

	_ = l.conn.Close()

	if err != nil {
		return fmt.Errorf("failed to release advisory lock: %w", err)
	}

	if !released {
		return fmt.Errorf("advisory lock %s was not held", l.key)
	}

	return nil
}
