package service_test

import (
	"context"
	"errors"
	"slices"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/event"
	"slotkeeper/shared/cache"
	"slotkeeper/shared/constant"
	gDto "slotkeeper/shared/dto"
	"strings"
	"sync"
	"time"
)

// memoryRepo is a thread-safe stand-in for the Postgres booking store.
type memoryRepo struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
	updates  int
}

func newMemoryRepo(seed ...model.Booking) *memoryRepo {
	r := &memoryRepo{bookings: map[string]model.Booking{}}
	for _, b := range seed {
		r.bookings[b.ID] = b
	}

	return r
}

func (r *memoryRepo) row(id string) model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bookings[id]
}

func (r *memoryRepo) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.updates
}

func (r *memoryRepo) Insert(_ context.Context, booking model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.ID]; ok {
		return errors.New("duplicate id")
	}

	r.bookings[booking.ID] = booking

	return nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (model.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]

	return b, ok, nil
}

func (r *memoryRepo) GetLatest(ctx context.Context, id string) (model.Booking, bool, error) {
	return r.Get(ctx, id)
}

func (r *memoryRepo) matching(filter model.Filter) []model.Booking {
	res := []model.Booking{}

	for _, b := range r.bookings {
		if filter.Participant != constant.Empty && !b.Owned(filter.Participant) {
			continue
		}

		if filter.ResourceID != constant.Empty && b.ResourceID != filter.ResourceID {
			continue
		}

		if len(filter.Statuses) > 0 && !b.Status.In(filter.Statuses) {
			continue
		}

		res = append(res, b)
	}

	slices.SortFunc(res, func(a, b model.Booking) int { return a.StartAt.Compare(b.StartAt) })

	return res
}

func (r *memoryRepo) List(_ context.Context, _ gDto.QueryParams, filter model.Filter) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.matching(filter), nil
}

func (r *memoryRepo) Count(_ context.Context, filter model.Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.matching(filter)), nil
}

func (r *memoryRepo) FindOverlapping(
	_ context.Context,
	resourceID string,
	start, end time.Time,
	statuses []model.Status,
	excludeID string,
) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := []model.Booking{}

	for _, b := range r.bookings {
		if b.ResourceID != resourceID || b.ID == excludeID || !b.Status.In(statuses) {
			continue
		}

		if b.Overlaps(start, end) {
			res = append(res, b)
		}
	}

	return res, nil
}

func (r *memoryRepo) Update(_ context.Context, booking model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.ID]; !ok {
		return errors.New("no rows affected")
	}

	r.bookings[booking.ID] = booking
	r.updates++

	return nil
}

func (r *memoryRepo) ListExpirable(_ context.Context, cutoff time.Time, after model.Cursor, limit int) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := []model.Booking{}

	for _, b := range r.bookings {
		if b.Status == model.StatusPendingHold && b.TransactionStatus != model.TransactionCompleted && b.CreatedAt.Before(cutoff) {
			res = append(res, b)
		}
	}

	slices.SortFunc(res, func(a, b model.Booking) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	res = slices.DeleteFunc(res, func(b model.Booking) bool {
		if after.IsZero() {
			return false
		}

		c := b.CreatedAt.Compare(after.CreatedAt)

		return c < 0 || (c == 0 && b.ID <= after.ID)
	})

	return res[:min(limit, len(res))], nil
}

// missCache never holds anything, so every read falls through to the store.
type missCache struct{}

func (missCache) Save(context.Context, string, any, int) error { return nil }
func (missCache) Get(context.Context, string, any) error       { return cache.Nil }
func (missCache) Delete(context.Context, string) error         { return nil }
func (missCache) Clear(context.Context, string) error          { return nil }

type eventRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *eventRecorder) Handle(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)

	return nil
}

func (r *eventRecorder) kinds() []event.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]event.Kind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}

	return kinds
}
