package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Catalog=MockCatalogService

import (
	"context"
	"fmt"
	"slotkeeper/config"
	"slotkeeper/infras/otel"
	"slotkeeper/internal/domains/catalog/model"
	"slotkeeper/internal/domains/catalog/repository"
	"slotkeeper/shared/cache"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetService = "catalog:service"
	cacheGetOwner   = "catalog:owner"
)

type Catalog interface {
	// Lookup returns an active service. Unknown or inactive services are NotFound.
	Lookup(ctx context.Context, id string) (model.Service, error)
	// Owner returns the user owning resourceID, NotFound when the catalog has
	// no service on it.
	Owner(ctx context.Context, resourceID string) (string, error)
}

type serviceImpl struct {
	repo  repository.Catalog
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Catalog, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Catalog {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Lookup(ctx context.Context, id string) (res model.Service, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".catalog.Lookup")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = cache.Remember(ctx, s.cache, cache.BuildKey(cacheGetService, id), s.cfg.Cache.TTL, func(ctx context.Context) (model.Service, error) {
		svc, found, err := s.repo.GetService(ctx, id)
		if err != nil {
			return svc, fmt.Errorf("failed to get catalog service: %w", err)
		}

		if !found {
			return svc, failure.NotFound("service not found") // nolint:wrapcheck
		}

		return svc, nil
	})
	if err != nil {
		log.Error().Err(err).Str("serviceID", id).Msg("failed to look up catalog service")

		return res, err //nolint:wrapcheck
	}

	if !res.Active {
		return res, failure.NotFound("service not found") // nolint:wrapcheck
	}

	return res, nil
}

func (s *serviceImpl) Owner(ctx context.Context, resourceID string) (res string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".catalog.Owner")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cache.BuildKey(cacheGetOwner, resourceID), s.cfg.Cache.TTL, func(ctx context.Context) (string, error) {
		owner, found, err := s.repo.ResourceOwner(ctx, resourceID)
		if err != nil {
			return owner, fmt.Errorf("failed to get resource owner: %w", err)
		}

		if !found {
			return owner, failure.NotFound("resource not found") // nolint:wrapcheck
		}

		return owner, nil
	}) //nolint:wrapcheck
}
