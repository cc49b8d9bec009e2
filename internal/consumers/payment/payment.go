// Package payment applies payment outcomes published by the checkout system
// to the booking lifecycle.
package payment

import (
	"context"
	"fmt"
	"slotkeeper/config"
	"slotkeeper/infras/kafka"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/booking/model/dto"
	bookingService "slotkeeper/internal/domains/booking/service"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/failure"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	TypeCompleted = "payment.completed"
	TypeFailed    = "payment.failed"
	TypeCancelled = "payment.cancelled"

	maxAttempts = 3
	retryDelay  = 200 * time.Millisecond
)

type Event struct {
	Type           string `json:"type"`
	BookingID      string `json:"booking_id"`
	TransactionRef string `json:"transaction_ref"`
	Reason         string `json:"reason"`
}

type Consumer struct {
	booking bookingService.Booking
	client  kafka.Client
	cfg     *config.Config
	delay   time.Duration
}

func New(booking bookingService.Booking, client kafka.Client, cfg *config.Config) *Consumer {
	return &Consumer{
		booking: booking,
		client:  client,
		cfg:     cfg,
		delay:   retryDelay,
	}
}

// WithRetryDelay overrides the pause between busy retries.
func (c *Consumer) WithRetryDelay(d time.Duration) *Consumer {
	c.delay = d

	return c
}

// Run consumes the payment topic until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	topic := c.cfg.Kafka.Topics.PaymentEvents

	log.Info().Str("topic", topic).Msg("payment consumer started")

	return c.client.Consume(ctx, c.cfg.Kafka.ConsumerGroup, topic, c.Handle) //nolint:wrapcheck
}

// Handle applies one payment event. Business rejections are logged and
// acknowledged; only infrastructure failures are returned.
func (c *Consumer) Handle(ctx context.Context, msg kafkaGo.Message) error {
	evt, err := kafka.Decode[Event](msg)
	if err != nil {
		log.Error().Err(err).Str("key", string(msg.Key)).Msg("dropping undecodable payment event")

		return nil
	}

	if evt.BookingID == constant.Empty {
		log.Warn().Str("type", evt.Type).Msg("dropping payment event without booking id")

		return nil
	}

	ctx = context.WithValue(ctx, constant.ContextKeySystem, true)

	err = c.retry(ctx, func() error {
		return c.apply(ctx, evt)
	})

	switch {
	case err == nil:
		return nil
	case failure.GetKind(err) == failure.KindInternal:
		return fmt.Errorf("failed to apply %s for booking %s: %w", evt.Type, evt.BookingID, err)
	case failure.IsKind(err, failure.KindExpired) && evt.Type == TypeCompleted:
		log.Warn().
			Str("bookingID", evt.BookingID).
			Str("transactionRef", evt.TransactionRef).
			Msg("payment completed after the hold expired, manual refund required")
	default:
		log.Warn().Err(err).Str("bookingID", evt.BookingID).Str("type", evt.Type).Msg("payment event rejected")
	}

	return nil
}

func (c *Consumer) apply(ctx context.Context, evt Event) error {
	switch evt.Type {
	case TypeCompleted:
		res, err := c.booking.Confirm(ctx, evt.BookingID, dto.ConfirmBookingRequest{TransactionRef: evt.TransactionRef})
		if err != nil {
			return err //nolint:wrapcheck
		}

		log.Info().Str("bookingID", evt.BookingID).Str("outcome", string(res.Outcome)).Msg("payment confirmed booking")

		return nil
	case TypeFailed, TypeCancelled:
		reason := evt.Reason
		if reason == constant.Empty {
			reason = evt.Type
		}

		_, err := c.booking.Cancel(ctx, evt.BookingID, dto.CancelBookingRequest{
			Target: string(model.StatusCancelled),
			Reason: reason,
		})

		return err //nolint:wrapcheck
	default:
		log.Debug().Str("type", evt.Type).Msg("ignoring payment event type")

		return nil
	}
}

func (c *Consumer) retry(ctx context.Context, fn func() error) error {
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if !failure.IsRetryable(err) || attempt == maxAttempts {
			return err
		}

		log.Debug().Int("attempt", attempt).Msg("resource busy, retrying payment event")

		select {
		case <-ctx.Done():
			return fmt.Errorf("payment retry interrupted: %w", ctx.Err())
		case <-time.After(c.delay * time.Duration(attempt)):
		}
	}

	return err
}
