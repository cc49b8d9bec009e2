//go:build wireinject
// +build wireinject

package di

import (
	"slotkeeper/config"
	"slotkeeper/infras/jwt"
	"slotkeeper/infras/kafka"
	"slotkeeper/infras/lock"
	"slotkeeper/infras/metrics"
	"slotkeeper/infras/otel"
	"slotkeeper/infras/postgres"
	"slotkeeper/infras/redis"
	"slotkeeper/internal/consumers/payment"
	"slotkeeper/permissions"
	"slotkeeper/shared/cache"
	"slotkeeper/shared/timezone"
	"slotkeeper/transport/http"
	"slotkeeper/transport/http/middleware"
	"slotkeeper/transport/http/router"

	bookingRepository "slotkeeper/internal/domains/booking/repository"
	bookingService "slotkeeper/internal/domains/booking/service"
	catalogRepository "slotkeeper/internal/domains/catalog/repository"
	catalogService "slotkeeper/internal/domains/catalog/service"
	refundRepository "slotkeeper/internal/domains/refund/repository"
	refundService "slotkeeper/internal/domains/refund/service"
	settingsRepository "slotkeeper/internal/domains/settings/repository"
	settingsService "slotkeeper/internal/domains/settings/service"
	sweeperService "slotkeeper/internal/domains/sweeper/service"
	bookingHandler "slotkeeper/internal/handlers/booking"
	settingsHandler "slotkeeper/internal/handlers/settings"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	metrics.New,
	lock.New,
	timezone.SystemClock,
	provideDispatcher,
	provideClosers,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var catalogDomain = wire.NewSet(
	catalogRepository.New,
	catalogService.New,
)

var refundDomain = wire.NewSet(
	refundRepository.New,
	refundService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var settingsDomain = wire.NewSet(
	settingsRepository.New,
	settingsService.New,
)

var domains = wire.NewSet(
	catalogDomain,
	refundDomain,
	bookingDomain,
	settingsDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	settingsHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() *Worker {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		domains,
		sweeperService.New,
		payment.New,
		wire.Struct(new(Worker), "*"),
	)

	return &Worker{}
}
