package service

import (
	"context"
	"fmt"
	"slotkeeper/infras/lock"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/booking/model/dto"
	"slotkeeper/internal/domains/event"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/failure"
	"slotkeeper/shared/money"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const msgHoldExpired = "booking hold has expired"

var reschedulable = []model.Status{model.StatusPendingHold, model.StatusConfirmed}

var priceAdjustable = []model.Status{model.StatusPendingHold, model.StatusConfirmed, model.StatusConflict}

// load reads the primary so a booking created a moment ago is visible, then
// checks the caller may act on it.
func (s *serviceImpl) load(ctx context.Context, id string, need access) (model.Booking, error) {
	booking, err := s.latest(ctx, id)
	if err != nil {
		return booking, err
	}

	if err := authorize(ctx, booking, need); err != nil {
		return booking, err
	}

	return booking, nil
}

func (s *serviceImpl) latest(ctx context.Context, id string) (model.Booking, error) {
	booking, found, err := s.repo.GetLatest(ctx, id)
	if err != nil {
		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if !found {
		return booking, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) withResourceLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	return lock.Do(ctx, s.locker, lock.ResourceKey(resourceID), s.cfg.LockTimeout(), fn) //nolint:wrapcheck
}

func (s *serviceImpl) failed(operation, bookingID string, err error) {
	s.metrics.Transition(operation, string(failure.GetKind(err)))

	if failure.GetKind(err) == failure.KindInternal {
		log.Error().Err(err).Str("bookingID", bookingID).Str("operation", operation).Msg("booking transition failed")

		return
	}

	log.Debug().Err(err).Str("bookingID", bookingID).Str("operation", operation).Msg("booking transition rejected")
}

func (s *serviceImpl) save(ctx context.Context, booking *model.Booking) error {
	booking.Touch(s.now())

	if err := s.repo.Update(ctx, *booking); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	return nil
}

func (s *serviceImpl) Confirm(ctx context.Context, id string, req dto.ConfirmBookingRequest) (res dto.ConfirmBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.load(ctx, id, accessSystem)
	if err != nil {
		s.failed("confirm", id, err)

		return res, err
	}

	err = s.withResourceLock(ctx, current.ResourceID, func(ctx context.Context) error {
		booking, err := s.latest(ctx, id)
		if err != nil {
			return err
		}

		if booking.Status == model.StatusConfirmed {
			res.Outcome = dto.OutcomeAlreadyConfirmed
			current = booking

			return nil
		}

		if booking.Status == model.StatusExpired {
			return failure.Expired(msgHoldExpired) // nolint:wrapcheck
		}

		if !booking.Status.In(s.confirmAllowedFrom) {
			return failure.InvalidState(string(booking.Status)) // nolint:wrapcheck
		}

		winners, err := s.repo.FindOverlapping(ctx, booking.ResourceID, booking.StartAt, booking.EndAt,
			[]model.Status{model.StatusConfirmed}, booking.ID)
		if err != nil {
			return fmt.Errorf("failed to check confirmed bookings: %w", err)
		}

		if req.TransactionRef != constant.Empty {
			ref := req.TransactionRef
			booking.ExternalTransactionRef = &ref
		}

		if len(winners) > 0 {
			winner := winners[0].ID

			log.Warn().
				Str("bookingID", booking.ID).
				Str("resourceID", booking.ResourceID).
				Str("competingBookingID", winner).
				Msg("late confirmation collides with a confirmed booking")

			booking.Status = model.StatusConflict
			booking.ConflictWithID = &winner
			res.Outcome = dto.OutcomeConflict
		} else {
			booking.Status = model.StatusConfirmed
			res.Outcome = dto.OutcomeConfirmed
		}

		booking.TransactionStatus = model.TransactionCompleted

		if err := s.save(ctx, &booking); err != nil {
			return err
		}

		current = booking

		return nil
	})
	if err != nil {
		s.failed("confirm", id, err)

		return res, err //nolint:wrapcheck
	}

	s.metrics.Transition("confirm", string(res.Outcome))

	switch res.Outcome {
	case dto.OutcomeConfirmed:
		s.publish(ctx, event.KindConfirmed, current, constant.Empty)
		s.invalidate(ctx, id)
	case dto.OutcomeConflict:
		s.publish(ctx, event.KindConflict, current, constant.Empty)
		s.invalidate(ctx, id)
	case dto.OutcomeAlreadyConfirmed:
	}

	res.Booking.FromModel(current)

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.terminate(ctx, "cancel", id, model.Status(req.Target), req.Reason, false)
}

func (s *serviceImpl) ResolveConflict(ctx context.Context, id string, req dto.ResolveConflictRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ResolveConflict")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.terminate(ctx, "resolve", id, model.Status(req.Target), req.Reason, true)
}

// terminate moves a booking to cancelled or refunded. Cancel works from the
// configured allowed-from set; conflict resolution only from conflict.
func (s *serviceImpl) terminate(
	ctx context.Context,
	operation, id string,
	target model.Status,
	reason string,
	resolving bool,
) (res dto.BookingResponse, err error) {
	if target != model.StatusCancelled && target != model.StatusRefunded {
		return res, failure.BadRequestFromString("target must be cancelled or refunded") // nolint:wrapcheck
	}

	need := accessParticipant
	if resolving {
		need = accessOwner
	}

	current, err := s.load(ctx, id, need)
	if err != nil {
		s.failed(operation, id, err)

		return res, err
	}

	allowedFrom := s.cancelAllowedFrom
	if resolving {
		allowedFrom = []model.Status{model.StatusConflict}
	}

	changed := false

	err = s.withResourceLock(ctx, current.ResourceID, func(ctx context.Context) error {
		booking, err := s.latest(ctx, id)
		if err != nil {
			return err
		}

		if booking.Status == target {
			current = booking

			return nil
		}

		if booking.Status == model.StatusExpired {
			return failure.Expired(msgHoldExpired) // nolint:wrapcheck
		}

		if !booking.Status.In(allowedFrom) {
			return failure.InvalidState(string(booking.Status)) // nolint:wrapcheck
		}

		if target == model.StatusRefunded {
			quote, err := s.refund.Quote(ctx, booking, s.now())
			if err != nil {
				return fmt.Errorf("failed to quote refund: %w", err)
			}

			if !quote.Allowed {
				return failure.RefundNotAllowed(quote.Reason) // nolint:wrapcheck
			}

			booking.RefundAmount = decimal.NewNullDecimal(quote.Amount)
			booking.RefundFee = decimal.NewNullDecimal(quote.Fee)
		}

		if reason != constant.Empty {
			booking.CancelReason = &reason
		}

		booking.Status = target

		if err := s.save(ctx, &booking); err != nil {
			return err
		}

		current = booking
		changed = true

		return nil
	})
	if err != nil {
		s.failed(operation, id, err)

		return res, err //nolint:wrapcheck
	}

	if changed {
		s.metrics.Transition(operation, string(target))

		kind := event.KindCancelled
		if target == model.StatusRefunded {
			kind = event.KindRefunded
		}

		s.publish(ctx, kind, current, reason)
		s.invalidate(ctx, id)
	} else {
		s.metrics.Transition(operation, "unchanged")
	}

	res.FromModel(current)

	return res, nil
}

func (s *serviceImpl) Reschedule(ctx context.Context, id string, req dto.RescheduleBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reschedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, end, err := req.Interval()
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	current, err := s.load(ctx, id, accessParticipant)
	if err != nil {
		s.failed("reschedule", id, err)

		return res, err
	}

	err = s.withResourceLock(ctx, current.ResourceID, func(ctx context.Context) error {
		booking, err := s.latest(ctx, id)
		if err != nil {
			return err
		}

		if booking.Status == model.StatusExpired {
			return failure.Expired(msgHoldExpired) // nolint:wrapcheck
		}

		if !booking.Status.In(reschedulable) {
			return failure.InvalidState(string(booking.Status)) // nolint:wrapcheck
		}

		overlapping, err := s.repo.FindOverlapping(ctx, booking.ResourceID, start, end, s.blocking, booking.ID)
		if err != nil {
			return fmt.Errorf("failed to check overlapping bookings: %w", err)
		}

		if len(overlapping) > 0 {
			log.Info().
				Str("bookingID", booking.ID).
				Str("resourceID", booking.ResourceID).
				Str("competingBookingID", overlapping[0].ID).
				Msg("reschedule rejected, interval already booked")

			return failure.Conflict(msgTimeUnavailable) // nolint:wrapcheck
		}

		booking.StartAt = start
		booking.EndAt = end

		if req.Timezone != constant.Empty {
			booking.Timezone = req.Timezone
		}

		if err := s.save(ctx, &booking); err != nil {
			return err
		}

		current = booking

		return nil
	})
	if err != nil {
		s.failed("reschedule", id, err)

		return res, err //nolint:wrapcheck
	}

	s.metrics.Transition("reschedule", "rescheduled")
	s.publish(ctx, event.KindRescheduled, current, constant.Empty)
	s.invalidate(ctx, id)

	res.FromModel(current)

	return res, nil
}

func (s *serviceImpl) OverridePrice(ctx context.Context, id string, req dto.OverridePriceRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".OverridePrice")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(); err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	current, err := s.load(ctx, id, accessOwner)
	if err != nil {
		s.failed("override_price", id, err)

		return res, err
	}

	err = s.withResourceLock(ctx, current.ResourceID, func(ctx context.Context) error {
		booking, err := s.latest(ctx, id)
		if err != nil {
			return err
		}

		if !booking.Status.In(priceAdjustable) {
			return failure.InvalidState(string(booking.Status)) // nolint:wrapcheck
		}

		if req.Currency != constant.Empty {
			booking.Currency = req.Currency
		}

		log.Info().
			Str("bookingID", booking.ID).
			Str("from", money.Format(booking.Price, booking.Currency)).
			Str("to", money.Format(req.Price, booking.Currency)).
			Str("reason", req.Reason).
			Msg("booking price overridden")

		booking.Price = money.Round(req.Price, booking.Currency)

		if err := s.save(ctx, &booking); err != nil {
			return err
		}

		current = booking

		return nil
	})
	if err != nil {
		s.failed("override_price", id, err)

		return res, err //nolint:wrapcheck
	}

	s.metrics.Transition("override_price", "overridden")
	s.invalidate(ctx, id)

	res.FromModel(current)

	return res, nil
}

func (s *serviceImpl) RefundQuote(ctx context.Context, id string) (res dto.RefundQuoteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefundQuote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.load(ctx, id, accessParticipant)
	if err != nil {
		return res, err
	}

	quote, err := s.refund.Quote(ctx, booking, s.now())
	if err != nil {
		log.Error().Err(err).Str("bookingID", id).Msg("failed to quote refund")

		return res, fmt.Errorf("failed to quote refund: %w", err)
	}

	res = dto.RefundQuoteResponse{
		Allowed:         quote.Allowed,
		Reason:          quote.Reason,
		FeePercent:      quote.FeePercent.String(),
		HoursUntilStart: quote.HoursUntilStart,
		Total:           money.Format(quote.Total, quote.Currency),
		Amount:          money.Format(quote.Amount, quote.Currency),
		Fee:             money.Format(quote.Fee, quote.Currency),
		Currency:        quote.Currency,
	}

	return res, nil
}

func (s *serviceImpl) Expire(ctx context.Context, id string, cutoff time.Time) (expired bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Expire")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, found, err := s.repo.GetLatest(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to get booking: %w", err)
	}

	if !found {
		return false, nil
	}

	err = s.withResourceLock(ctx, current.ResourceID, func(ctx context.Context) error {
		booking, found, err := s.repo.GetLatest(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if !found || !expirable(booking, cutoff) {
			return nil
		}

		booking.Status = model.StatusExpired

		if err := s.save(ctx, &booking); err != nil {
			return err
		}

		current = booking
		expired = true

		return nil
	})
	if err != nil {
		s.failed("expire", id, err)

		return false, err //nolint:wrapcheck
	}

	if !expired {
		return false, nil
	}

	s.metrics.Transition("expire", "expired")
	s.publish(ctx, event.KindExpired, current, constant.Empty)
	s.invalidate(ctx, id)

	return true, nil
}

func expirable(booking model.Booking, cutoff time.Time) bool {
	return booking.Status == model.StatusPendingHold &&
		booking.TransactionStatus != model.TransactionCompleted &&
		booking.CreatedAt.Before(cutoff)
}
