package event

import (
	"context"
	"slices"
	"slotkeeper/infras/otel"
	"slotkeeper/shared/constant"
	"sync"

	"github.com/rs/zerolog/log"
)

type Subscriber interface {
	Handle(ctx context.Context, event Event) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, event Event) error

func (f SubscriberFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

type Dispatcher interface {
	// Subscribe registers s for kinds, or for every kind when none are given.
	Subscribe(s Subscriber, kinds ...Kind)
	// Publish delivers to every matching subscriber in registration order.
	// Subscriber failures are logged and never reach the publisher.
	Publish(ctx context.Context, events ...Event)
}

type subscription struct {
	subscriber Subscriber
	kinds      []Kind
}

func (s subscription) matches(kind Kind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, kind)
}

type dispatcherImpl struct {
	mu            sync.RWMutex
	subscriptions []subscription
	otel          otel.Otel
}

func NewDispatcher(otel otel.Otel) Dispatcher {
	return &dispatcherImpl{otel: otel}
}

func (d *dispatcherImpl) Subscribe(s Subscriber, kinds ...Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subscriptions = append(d.subscriptions, subscription{subscriber: s, kinds: kinds})
}

func (d *dispatcherImpl) Publish(ctx context.Context, events ...Event) {
	d.mu.RLock()
	subscriptions := slices.Clone(d.subscriptions)
	d.mu.RUnlock()

	for _, e := range events {
		d.deliver(ctx, subscriptions, e)
	}
}

func (d *dispatcherImpl) deliver(ctx context.Context, subscriptions []subscription, e Event) {
	ctx, scope := d.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()

	scope.SetAttributes(map[string]any{
		"event.kind":       string(e.Kind),
		"event.booking_id": e.BookingID,
	})

	for _, sub := range subscriptions {
		if !sub.matches(e.Kind) {
			continue
		}

		if err := sub.subscriber.Handle(ctx, e); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("kind", string(e.Kind)).Str("bookingID", e.BookingID).Msg("event subscriber failed")
		}
	}
}

// LogSubscriber records every event at debug level.
func LogSubscriber() Subscriber {
	return SubscriberFunc(func(_ context.Context, e Event) error {
		log.Debug().
			Str("kind", string(e.Kind)).
			Str("bookingID", e.BookingID).
			Str("resourceID", e.ResourceID).
			Str("status", e.Status).
			Str("competingBookingID", e.ConflictWithID).
			Msg("booking event")

		return nil
	})
}
