package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Settings=MockSettingsService

import (
	"context"
	"fmt"
	"slices"
	"slotkeeper/config"
	"slotkeeper/infras/otel"
	catalogService "slotkeeper/internal/domains/catalog/service"
	"slotkeeper/internal/domains/settings/hours"
	"slotkeeper/internal/domains/settings/model"
	"slotkeeper/internal/domains/settings/model/dto"
	"slotkeeper/internal/domains/settings/repository"
	"slotkeeper/shared/cache"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/failure"
	"slotkeeper/shared/timezone"

	"github.com/rs/zerolog/log"
)

const cacheGetSettings = "settings:get"

type Settings interface {
	Get(ctx context.Context, resourceID string) (dto.SettingsResponse, error)
	// Update normalizes and saves the resource settings. Only the resource
	// owner may call it. Dropped ranges and misplaced breaks come back as
	// warnings.
	Update(ctx context.Context, resourceID string, req dto.UpdateSettingsRequest) (dto.SettingsResponse, error)
}

type serviceImpl struct {
	repo    repository.Settings
	catalog catalogService.Catalog
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
	now     timezone.Clock
}

func New(
	repo repository.Settings,
	catalog catalogService.Catalog,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	now timezone.Clock,
) Settings {
	return &serviceImpl{
		repo:    repo,
		catalog: catalog,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
		now:     now,
	}
}

func (s *serviceImpl) Get(ctx context.Context, resourceID string) (res dto.SettingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".settings.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	settings, err := cache.Remember(ctx, s.cache, cache.BuildKey(cacheGetSettings, resourceID), s.cfg.Cache.TTL, func(ctx context.Context) (model.Settings, error) {
		settings, found, err := s.repo.Get(ctx, resourceID)
		if err != nil {
			return settings, fmt.Errorf("failed to get settings: %w", err)
		}

		if !found {
			return settings, failure.NotFound("settings not found") // nolint:wrapcheck
		}

		return settings, nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.FromModel(settings)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, resourceID string, req dto.UpdateSettingsRequest) (res dto.SettingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".settings.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	owner, err := s.catalog.Owner(ctx, resourceID)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if owner != user {
		return res, failure.Forbidden("only the resource owner may change settings") // nolint:wrapcheck
	}

	business, err := hours.NormalizeWeek(req.Hours)
	if err != nil {
		return res, failure.BadRequest(fmt.Errorf("hours: %w", err)) // nolint:wrapcheck
	}

	breaks, err := hours.NormalizeWeek(req.Breaks)
	if err != nil {
		return res, failure.BadRequest(fmt.Errorf("breaks: %w", err)) // nolint:wrapcheck
	}

	warnings := rangeWarnings("hours", business.Errors)
	warnings = append(warnings, rangeWarnings("breaks", breaks.Errors)...)
	warnings = append(warnings, coverageWarnings(breaks.Week.UncoveredByDay(business.Week))...)

	daysOff := slices.Clone(req.DaysOff)
	slices.Sort(daysOff)
	daysOff = slices.Compact(daysOff)

	settings := model.Settings{
		ResourceID: resourceID,
		OwnerID:    owner,
		Document: model.Document{
			Hours:        business.Week.Wire(),
			Breaks:       breaks.Week.Wire(),
			SlotInterval: req.SlotInterval,
			BufferBefore: req.BufferBefore,
			BufferAfter:  req.BufferAfter,
			DaysOff:      daysOff,
		},
	}

	existing, found, err := s.repo.Get(ctx, resourceID)
	if err != nil {
		log.Error().Err(err).Str("resourceID", resourceID).Msg("failed to get settings")

		return res, fmt.Errorf("failed to get settings: %w", err)
	}

	if found {
		settings.Metadata = existing.Metadata
	}

	settings.Touch(s.now())

	if err = s.repo.Upsert(ctx, settings); err != nil {
		log.Error().Err(err).Str("resourceID", resourceID).Msg("failed to save settings")

		return res, fmt.Errorf("failed to save settings: %w", err)
	}

	if len(warnings) > 0 {
		log.Info().Str("resourceID", resourceID).Strs("warnings", warnings).Msg("settings saved with warnings")
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, cache.BuildKey(cacheGetSettings, resourceID)); err != nil {
			log.Error().Err(err).Str("resourceID", resourceID).Msg("failed to delete settings from cache")
		}
	}()

	res.FromModel(settings)
	res.Warnings = warnings

	return res, nil
}

func rangeWarnings(field string, errs map[string][]hours.RangeError) []string {
	var res []string

	for _, day := range hours.Weekdays {
		for _, e := range errs[day] {
			res = append(res, fmt.Sprintf("%s.%s: %s, dropped", field, day, e.Error()))
		}
	}

	return res
}

func coverageWarnings(outside map[string][]hours.Range) []string {
	var res []string

	for _, day := range hours.Weekdays {
		for _, r := range outside[day] {
			res = append(res, fmt.Sprintf("breaks.%s: %s is outside business hours", day, r))
		}
	}

	return res
}
