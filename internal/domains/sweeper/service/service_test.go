package service_test

import (
	"context"
	"errors"
	"fmt"
	"slotkeeper/config"
	"slotkeeper/infras/metrics"
	otelMocks "slotkeeper/infras/otel/mocks"
	bookingMocks "slotkeeper/internal/domains/booking/mocks"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/sweeper/service"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/failure"
	gModel "slotkeeper/shared/model"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func hold(i int) model.Booking {
	return model.Booking{
		ID:       fmt.Sprintf("hold-%02d", i),
		Status:   model.StatusPendingHold,
		Metadata: gModel.Metadata{CreatedAt: now.Add(-time.Hour).Add(time.Duration(i) * time.Second)},
	}
}

func newSweeper(t *testing.T, cfg *config.Config) (service.Sweeper, *bookingMocks.MockBooking, *bookingMocks.MockBookingService, *metrics.Metrics) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := bookingMocks.NewMockBooking(ctrl)
	booking := bookingMocks.NewMockBookingService(ctrl)
	m := metrics.New(cfg)

	svc := service.New(repo, booking, cfg, m, otelMocks.NewOtel(), func() time.Time { return now })

	return svc, repo, booking, m
}

func TestSweepPagesWithCursor(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sweeper.BatchSize = 2
	cfg.Booking.HoldTimeoutMinutes = 10

	svc, repo, booking, m := newSweeper(t, cfg)
	cutoff := now.Add(-10 * time.Minute)

	first := []model.Booking{hold(1), hold(2)}
	second := []model.Booking{hold(3)}

	gomock.InOrder(
		repo.EXPECT().ListExpirable(gomock.Any(), cutoff, model.Cursor{}, 2).Return(first, nil),
		repo.EXPECT().ListExpirable(gomock.Any(), cutoff, model.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}, 2).Return(second, nil),
	)

	booking.EXPECT().Expire(gomock.Any(), "hold-01", cutoff).
		DoAndReturn(func(ctx context.Context, _ string, _ time.Time) (bool, error) {
			system, _ := ctx.Value(constant.ContextKeySystem).(bool)
			assert.True(t, system)

			return true, nil
		})
	booking.EXPECT().Expire(gomock.Any(), "hold-02", cutoff).Return(false, failure.Busy("resource busy"))
	booking.EXPECT().Expire(gomock.Any(), "hold-03", cutoff).Return(false, nil)

	res, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.Result{Batches: 2, Visited: 3, Expired: 1, Skipped: 1, Busy: 1}, res)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SweepResults.WithLabelValues("busy")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SweepResults.WithLabelValues("expired")), 0)
}

func TestSweepStopsAtMaxBatches(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sweeper.BatchSize = 1
	cfg.Sweeper.MaxBatches = 2

	svc, repo, booking, _ := newSweeper(t, cfg)

	repo.EXPECT().ListExpirable(gomock.Any(), gomock.Any(), gomock.Any(), 1).Return([]model.Booking{hold(1)}, nil)
	repo.EXPECT().ListExpirable(gomock.Any(), gomock.Any(), gomock.Any(), 1).Return([]model.Booking{hold(2)}, nil)
	booking.EXPECT().Expire(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	res, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Batches)
	assert.Equal(t, 2, res.Expired)
}

func TestSweepCountsFailuresAndContinues(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sweeper.BatchSize = 10

	svc, repo, booking, _ := newSweeper(t, cfg)

	repo.EXPECT().ListExpirable(gomock.Any(), gomock.Any(), gomock.Any(), 10).Return([]model.Booking{hold(1), hold(2)}, nil)
	booking.EXPECT().Expire(gomock.Any(), "hold-01", gomock.Any()).Return(false, errors.New("connection reset"))
	booking.EXPECT().Expire(gomock.Any(), "hold-02", gomock.Any()).Return(true, nil)

	res, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Expired)
}

func TestSweepListFailure(t *testing.T) {
	svc, repo, _, _ := newSweeper(t, &config.Config{})

	repo.EXPECT().ListExpirable(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := svc.Sweep(context.Background())

	assert.ErrorContains(t, err, "db down")
}

func TestRunStopsWithContext(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sweeper.IntervalSeconds = 3600

	svc, repo, _, _ := newSweeper(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())

	repo.EXPECT().ListExpirable(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time, model.Cursor, int) ([]model.Booking, error) {
			cancel()

			return []model.Booking{}, nil
		})

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
