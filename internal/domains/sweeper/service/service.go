package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"slotkeeper/config"
	"slotkeeper/infras/metrics"
	"slotkeeper/infras/otel"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/booking/repository"
	bookingService "slotkeeper/internal/domains/booking/service"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/failure"
	"slotkeeper/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	resultExpired = "expired"
	resultSkipped = "skipped"
	resultBusy    = "busy"
	resultFailed  = "failed"
)

// Result summarises one sweep pass.
type Result struct {
	Batches int `json:"batches"`
	Visited int `json:"visited"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Busy    int `json:"busy"`
	Failed  int `json:"failed"`
}

type Sweeper interface {
	// Sweep expires lapsed holds in bounded batches. Rows whose resource is
	// locked are left for the next pass.
	Sweep(ctx context.Context) (Result, error)
	// Run sweeps on every interval tick until ctx is done.
	Run(ctx context.Context) error
}

type serviceImpl struct {
	repo    repository.Booking
	booking bookingService.Booking
	cfg     *config.Config
	metrics *metrics.Metrics
	otel    otel.Otel
	now     timezone.Clock
}

func New(
	repo repository.Booking,
	booking bookingService.Booking,
	cfg *config.Config,
	metrics *metrics.Metrics,
	otel otel.Otel,
	now timezone.Clock,
) Sweeper {
	return &serviceImpl{
		repo:    repo,
		booking: booking,
		cfg:     cfg,
		metrics: metrics,
		otel:    otel,
		now:     now,
	}
}

func (s *serviceImpl) Sweep(ctx context.Context) (res Result, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".Sweep")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ctx = context.WithValue(ctx, constant.ContextKeySystem, true)

	cutoff := s.now().Add(-s.cfg.HoldTimeout())
	size := s.cfg.SweeperBatchSize()

	var cursor model.Cursor

	for res.Batches < s.cfg.SweeperMaxBatches() {
		if err = ctx.Err(); err != nil {
			return res, fmt.Errorf("sweep interrupted: %w", err)
		}

		rows, err := s.repo.ListExpirable(ctx, cutoff, cursor, size)
		if err != nil {
			log.Error().Err(err).Msg("failed to list expirable bookings")

			return res, fmt.Errorf("failed to list expirable bookings: %w", err)
		}

		res.Batches++

		for _, row := range rows {
			res.Visited++
			s.expire(ctx, row.ID, cutoff, &res)
		}

		if len(rows) < size {
			break
		}

		last := rows[len(rows)-1]
		cursor = model.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	scope.SetAttributes(map[string]any{
		"sweep.visited": res.Visited,
		"sweep.expired": res.Expired,
		"sweep.busy":    res.Busy,
	})

	log.Info().
		Time("cutoff", cutoff).
		Int("batches", res.Batches).
		Int("visited", res.Visited).
		Int("expired", res.Expired).
		Int("skipped", res.Skipped).
		Int("busy", res.Busy).
		Int("failed", res.Failed).
		Msg("hold sweep finished")

	return res, nil
}

func (s *serviceImpl) expire(ctx context.Context, id string, cutoff time.Time, res *Result) {
	expired, err := s.booking.Expire(ctx, id, cutoff)

	switch {
	case failure.IsKind(err, failure.KindBusy):
		res.Busy++
		s.metrics.Sweep(resultBusy)

		log.Debug().Str("bookingID", id).Msg("resource busy, hold left for the next sweep")
	case err != nil:
		res.Failed++
		s.metrics.Sweep(resultFailed)

		log.Error().Err(err).Str("bookingID", id).Msg("failed to expire hold")
	case expired:
		res.Expired++
		s.metrics.Sweep(resultExpired)
	default:
		res.Skipped++
		s.metrics.Sweep(resultSkipped)
	}
}

func (s *serviceImpl) Run(ctx context.Context) error {
	interval := s.cfg.SweeperInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Dur("holdTimeout", s.cfg.HoldTimeout()).Msg("hold sweeper started")

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("hold sweep failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("hold sweeper stopped")

			return nil
		case <-ticker.C:
		}
	}
}
