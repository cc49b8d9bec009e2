package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"slotkeeper/config"
)

func TestHoldTimeout(t *testing.T) {
	tests := []struct {
		name     string
		minutes  int
		cap      int
		expected time.Duration
	}{
		{name: "default", expected: 10 * time.Minute},
		{name: "configured", minutes: 15, expected: 15 * time.Minute},
		{name: "capped by default cap", minutes: 600, expected: 120 * time.Minute},
		{name: "capped by configured cap", minutes: 45, cap: 30, expected: 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Booking.HoldTimeoutMinutes = tt.minutes
			cfg.Booking.HoldTimeoutCapMinutes = tt.cap

			assert.Equal(t, tt.expected, cfg.HoldTimeout())
		})
	}
}

func TestLockDefaults(t *testing.T) {
	cfg := &config.Config{}

	assert.Equal(t, 2*time.Second, cfg.LockTimeout())
	assert.Equal(t, 25*time.Millisecond, cfg.LockPollInterval())
	assert.Equal(t, 30*time.Second, cfg.LockRedisTTL())

	cfg.Booking.LockTimeoutMs = 500
	assert.Equal(t, 500*time.Millisecond, cfg.LockTimeout())
}

func TestSweeperDefaults(t *testing.T) {
	cfg := &config.Config{}

	assert.Equal(t, 100, cfg.SweeperBatchSize())
	assert.Equal(t, 10, cfg.SweeperMaxBatches())
	assert.Equal(t, time.Minute, cfg.SweeperInterval())
}
