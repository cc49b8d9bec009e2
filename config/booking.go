package config

import "time"

const (
	defaultHoldTimeoutMinutes    = 10
	defaultHoldTimeoutCapMinutes = 120
	defaultLockTimeoutMs         = 2000
	defaultLockPollIntervalMs    = 25
	defaultLockRedisTTLMs        = 30000
	defaultSweeperBatchSize      = 100
	defaultSweeperMaxBatches     = 10
	defaultSweeperInterval       = 60
)

// HoldTimeout returns the configured hold duration, capped at HoldTimeoutCapMinutes.
func (c *Config) HoldTimeout() time.Duration {
	minutes := c.Booking.HoldTimeoutMinutes
	if minutes <= 0 {
		minutes = defaultHoldTimeoutMinutes
	}

	capMinutes := c.Booking.HoldTimeoutCapMinutes
	if capMinutes <= 0 {
		capMinutes = defaultHoldTimeoutCapMinutes
	}

	return time.Duration(min(minutes, capMinutes)) * time.Minute
}

func (c *Config) LockTimeout() time.Duration {
	if c.Booking.LockTimeoutMs <= 0 {
		return defaultLockTimeoutMs * time.Millisecond
	}

	return time.Duration(c.Booking.LockTimeoutMs) * time.Millisecond
}

func (c *Config) LockPollInterval() time.Duration {
	if c.Lock.PollIntervalMs <= 0 {
		return defaultLockPollIntervalMs * time.Millisecond
	}

	return time.Duration(c.Lock.PollIntervalMs) * time.Millisecond
}

func (c *Config) LockRedisTTL() time.Duration {
	if c.Lock.RedisTTLMs <= 0 {
		return defaultLockRedisTTLMs * time.Millisecond
	}

	return time.Duration(c.Lock.RedisTTLMs) * time.Millisecond
}

func (c *Config) SweeperBatchSize() int {
	if c.Sweeper.BatchSize <= 0 {
		return defaultSweeperBatchSize
	}

	return c.Sweeper.BatchSize
}

func (c *Config) SweeperMaxBatches() int {
	if c.Sweeper.MaxBatches <= 0 {
		return defaultSweeperMaxBatches
	}

	return c.Sweeper.MaxBatches
}

func (c *Config) SweeperInterval() time.Duration {
	if c.Sweeper.IntervalSeconds <= 0 {
		return defaultSweeperInterval * time.Second
	}

	return time.Duration(c.Sweeper.IntervalSeconds) * time.Second
}
