package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"slotkeeper/config"
	"slotkeeper/infras/otel"
	bookingModel "slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/refund/model"
	"slotkeeper/internal/domains/refund/repository"
	"slotkeeper/shared/cache"
	"slotkeeper/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	cacheRules    = "refund:rules"
	cacheGlobalID = "global"
)

type Refund interface {
	// Rules resolves the policy for a resource: its own rules, then the global
	// rules, then the policy file, then DefaultRules.
	Rules(ctx context.Context, resourceID string) ([]model.Rule, error)
	Quote(ctx context.Context, booking bookingModel.Booking, now time.Time) (model.Quote, error)
}

type serviceImpl struct {
	repo      repository.Rule
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	fileRules []model.Rule
}

func New(repo repository.Rule, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Refund {
	s := &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}

	if path := cfg.Refund.PolicyFile; path != constant.Empty {
		rules, err := LoadPolicyFile(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to load refund policy file, using built-in defaults")
		} else {
			log.Info().Str("path", path).Int("rules", len(rules)).Msg("Refund policy file loaded")

			s.fileRules = rules
		}
	}

	return s
}

func (s *serviceImpl) Rules(ctx context.Context, resourceID string) (res []model.Rule, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".refund.Rules")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := cache.BuildKey(cacheRules, resourceID)
	if resourceID == constant.Empty {
		key = cache.BuildKey(cacheRules, cacheGlobalID)
	}

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, s.resolve(resourceID)) //nolint:wrapcheck
}

func (s *serviceImpl) resolve(resourceID string) func(ctx context.Context) ([]model.Rule, error) {
	return func(ctx context.Context) ([]model.Rule, error) {
		if resourceID != constant.Empty {
			rules, err := s.repo.ListByResource(ctx, resourceID)
			if err != nil {
				return nil, fmt.Errorf("failed to list resource refund rules: %w", err)
			}

			if len(rules) > 0 {
				return model.Sorted(rules), nil
			}
		}

		rules, err := s.repo.ListByResource(ctx, constant.Empty)
		if err != nil {
			return nil, fmt.Errorf("failed to list global refund rules: %w", err)
		}

		if len(rules) > 0 {
			return model.Sorted(rules), nil
		}

		if len(s.fileRules) > 0 {
			return s.fileRules, nil
		}

		return model.DefaultRules(), nil
	}
}

func (s *serviceImpl) Quote(ctx context.Context, booking bookingModel.Booking, now time.Time) (res model.Quote, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".refund.Quote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	rules, err := s.Rules(ctx, booking.ResourceID)
	if err != nil {
		log.Error().Err(err).Str("resourceID", booking.ResourceID).Msg("failed to resolve refund rules")

		return res, err
	}

	res = CalculateRefundAmount(booking.Price, booking, rules, now)

	scope.SetAttributes(map[string]any{
		"refund.allowed":     res.Allowed,
		"refund.fee_percent": res.FeePercent.String(),
	})

	return res, nil
}
