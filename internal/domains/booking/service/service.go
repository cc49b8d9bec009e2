package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"fmt"
	"slotkeeper/config"
	"slotkeeper/infras/lock"
	"slotkeeper/infras/metrics"
	"slotkeeper/infras/otel"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/booking/model/dto"
	"slotkeeper/internal/domains/booking/repository"
	catalogService "slotkeeper/internal/domains/catalog/service"
	"slotkeeper/internal/domains/event"
	refundService "slotkeeper/internal/domains/refund/service"
	"slotkeeper/shared/cache"
	"slotkeeper/shared/constant"
	gDto "slotkeeper/shared/dto"
	"slotkeeper/shared/failure"
	"slotkeeper/shared/money"
	"slotkeeper/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking = "booking:get"

	msgTimeUnavailable = "time no longer available"
	msgBookingNotFound = "booking not found"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	List(ctx context.Context, params gDto.QueryParams, req dto.ListBookingsRequest) (dto.GetBookingsResponse, error)
	Confirm(ctx context.Context, id string, req dto.ConfirmBookingRequest) (dto.ConfirmBookingResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	Reschedule(ctx context.Context, id string, req dto.RescheduleBookingRequest) (dto.BookingResponse, error)
	ResolveConflict(ctx context.Context, id string, req dto.ResolveConflictRequest) (dto.BookingResponse, error)
	OverridePrice(ctx context.Context, id string, req dto.OverridePriceRequest) (dto.BookingResponse, error)
	RefundQuote(ctx context.Context, id string) (dto.RefundQuoteResponse, error)
	// Expire moves a lapsed hold to expired. It reports false, without error,
	// when the booking no longer qualifies.
	Expire(ctx context.Context, id string, cutoff time.Time) (bool, error)
}

type serviceImpl struct {
	repo       repository.Booking
	catalog    catalogService.Catalog
	refund     refundService.Refund
	locker     lock.Locker
	dispatcher event.Dispatcher
	metrics    *metrics.Metrics
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
	now        timezone.Clock

	blocking           []model.Status
	confirmAllowedFrom []model.Status
	cancelAllowedFrom  []model.Status
}

func New(
	repo repository.Booking,
	catalog catalogService.Catalog,
	refund refundService.Refund,
	locker lock.Locker,
	dispatcher event.Dispatcher,
	metrics *metrics.Metrics,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	now timezone.Clock,
) Booking {
	s := &serviceImpl{
		repo:               repo,
		catalog:            catalog,
		refund:             refund,
		locker:             locker,
		dispatcher:         dispatcher,
		metrics:            metrics,
		cfg:                cfg,
		cache:              cache,
		otel:               otel,
		now:                now,
		blocking:           statusesOrDefault(cfg.Booking.BlockingStatuses, model.DefaultBlockingStatuses),
		confirmAllowedFrom: statusesOrDefault(cfg.Booking.ConfirmAllowedFrom, model.DefaultConfirmAllowedFrom),
		cancelAllowedFrom:  statusesOrDefault(cfg.Booking.CancelAllowedFrom, model.DefaultCancelAllowedFrom),
	}

	log.Info().
		Interface("blocking", s.blocking).
		Interface("confirmAllowedFrom", s.confirmAllowedFrom).
		Interface("cancelAllowedFrom", s.cancelAllowedFrom).
		Msg("Booking lifecycle configured")

	return s
}

func statusesOrDefault(names []string, fallback []model.Status) []model.Status {
	if parsed := model.ParseStatuses(names); len(parsed) > 0 {
		return parsed
	}

	return fallback
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	if err = req.Validate(); err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	svc, err := s.catalog.Lookup(ctx, req.ServiceID)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if svc.ResourceID != req.ResourceID {
		return res, failure.BadRequestFromString("service does not belong to resource") // nolint:wrapcheck
	}

	start, end, _ := req.Interval()
	if end.IsZero() {
		if svc.DurationMinutes <= 0 {
			return res, failure.BadRequestFromString("end is required for services without a duration") // nolint:wrapcheck
		}

		end = start.Add(svc.Duration())
	}

	booking := model.Booking{
		ID:                uuid.NewString(),
		ResourceID:        req.ResourceID,
		ResourceOwnerID:   svc.ResourceOwnerID,
		CustomerID:        user,
		ServiceID:         svc.ID,
		StartAt:           start,
		EndAt:             end,
		Timezone:          req.Timezone,
		Price:             svc.Price,
		Currency:          svc.Currency,
		Status:            model.StatusPendingHold,
		TransactionStatus: model.TransactionNone,
	}

	if booking.Timezone == constant.Empty {
		booking.Timezone = timezone.GetLocation().String()
	}

	// Only the resource owner may quote a price other than the catalog one.
	if req.Price != nil && user == svc.ResourceOwnerID {
		booking.Price = *req.Price

		if req.Currency != constant.Empty {
			booking.Currency = req.Currency
		}
	}

	if booking.Currency == constant.Empty {
		booking.Currency = constant.DefaultCurrency
	}

	booking.Price = money.Round(booking.Price, booking.Currency)

	err = lock.Do(ctx, s.locker, lock.ResourceKey(booking.ResourceID), s.cfg.LockTimeout(), func(ctx context.Context) error {
		overlapping, err := s.repo.FindOverlapping(ctx, booking.ResourceID, booking.StartAt, booking.EndAt, s.blocking, constant.Empty)
		if err != nil {
			return fmt.Errorf("failed to check overlapping bookings: %w", err)
		}

		if len(overlapping) > 0 {
			log.Info().
				Str("resourceID", booking.ResourceID).
				Str("competingBookingID", overlapping[0].ID).
				Msg("create rejected, interval already booked")

			return failure.AlreadyBooked(msgTimeUnavailable) // nolint:wrapcheck
		}

		booking.Touch(s.now())

		if err := s.repo.Insert(ctx, booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	})
	if err != nil {
		s.metrics.Transition("create", string(failure.GetKind(err)))
		log.Error().Err(err).Str("resourceID", booking.ResourceID).Msg("failed to create booking")

		return res, err //nolint:wrapcheck
	}

	s.metrics.Transition("create", "created")
	s.publish(ctx, event.KindCreated, booking, constant.Empty)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := cache.Remember(ctx, s.cache, cache.BuildKey(cacheGetBooking, id), s.cfg.Cache.TTL, func(ctx context.Context) (model.Booking, error) {
		booking, found, err := s.repo.Get(ctx, id)
		if err != nil {
			return booking, fmt.Errorf("failed to get booking: %w", err)
		}

		if !found {
			return booking, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
		}

		return booking, nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = authorize(ctx, booking, accessParticipant); err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) List(ctx context.Context, params gDto.QueryParams, req dto.ListBookingsRequest) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	filter, err := req.ToFilter(user)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.List(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}

// authorize admits internal callers, the resource owner, and, unless
// ownerOnly, the customer.
// access is the least privileged caller an operation admits. The system
// actor passes every level.
type access int

const (
	accessParticipant access = iota
	accessOwner
	accessSystem
)

func authorize(ctx context.Context, booking model.Booking, need access) error {
	if system, _ := ctx.Value(constant.ContextKeySystem).(bool); system {
		return nil
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	switch {
	case user == constant.Empty:
		return failure.Unauthorized("authentication required") // nolint:wrapcheck
	case !booking.Owned(user):
		// Strangers learn nothing about the booking's existence.
		return failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	case need == accessSystem:
		return failure.Forbidden("bookings are confirmed by the payment system") // nolint:wrapcheck
	case user == booking.ResourceOwnerID, need == accessParticipant:
		return nil
	default:
		return failure.Forbidden("only the resource owner may do this") // nolint:wrapcheck
	}
}

func (s *serviceImpl) publish(ctx context.Context, kind event.Kind, booking model.Booking, reason string) {
	e := event.New(kind, s.now())
	e.BookingID = booking.ID
	e.ResourceID = booking.ResourceID
	e.ResourceOwnerID = booking.ResourceOwnerID
	e.CustomerID = booking.CustomerID
	e.Status = string(booking.Status)
	e.Start = booking.StartAt
	e.End = booking.EndAt
	e.Timezone = booking.Timezone
	e.Reason = reason
	e.Currency = booking.Currency

	if booking.ConflictWithID != nil {
		e.ConflictWithID = *booking.ConflictWithID
	}

	if booking.RefundAmount.Valid {
		e.RefundAmount = money.Format(booking.RefundAmount.Decimal, booking.Currency)
	}

	s.dispatcher.Publish(ctx, e)
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, cache.BuildKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Str("bookingID", id).Msg("failed to delete booking from cache")
		}
	}()
}
