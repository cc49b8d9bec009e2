package service_test

import (
	"context"
	"fmt"
	"slotkeeper/config"
	"slotkeeper/infras/lock"
	"slotkeeper/infras/metrics"
	otelMocks "slotkeeper/infras/otel/mocks"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/booking/model/dto"
	"slotkeeper/internal/domains/booking/service"
	catalogMocks "slotkeeper/internal/domains/catalog/mocks"
	catalogModel "slotkeeper/internal/domains/catalog/model"
	"slotkeeper/internal/domains/event"
	refundMocks "slotkeeper/internal/domains/refund/mocks"
	refundModel "slotkeeper/internal/domains/refund/model"
	refundService "slotkeeper/internal/domains/refund/service"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/failure"
	gModel "slotkeeper/shared/model"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	resourceID = "resource-1"
	ownerID    = "owner-1"
	customerID = "customer-1"
	serviceID  = "service-1"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc    service.Booking
	repo   *memoryRepo
	events *eventRecorder
	refund *refundMocks.MockRefund
}

func haircut() catalogModel.Service {
	return catalogModel.Service{
		ID:              serviceID,
		ResourceID:      resourceID,
		ResourceOwnerID: ownerID,
		Name:            "Haircut",
		Price:           decimal.NewFromInt(100),
		Currency:        "USD",
		DurationMinutes: 60,
		Active:          true,
	}
}

func setup(t *testing.T, seed ...model.Booking) fixture {
	t.Helper()

	return setupWithService(t, haircut(), seed...)
}

func setupWithService(t *testing.T, offered catalogModel.Service, seed ...model.Booking) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	catalog := catalogMocks.NewMockCatalogService(ctrl)
	catalog.EXPECT().Lookup(gomock.Any(), serviceID).Return(offered, nil).AnyTimes()

	refund := refundMocks.NewMockRefund(ctrl)
	refund.EXPECT().Quote(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b model.Booking, at time.Time) (refundModel.Quote, error) {
			return refundService.CalculateRefundAmount(b.Price, b, refundModel.DefaultRules(), at), nil
		}).AnyTimes()

	repo := newMemoryRepo(seed...)
	events := &eventRecorder{}

	dispatcher := event.NewDispatcher(otelMocks.NewOtel())
	dispatcher.Subscribe(events)

	svc := service.New(
		repo,
		catalog,
		refund,
		lock.NewMemory(),
		dispatcher,
		metrics.New(&config.Config{}),
		&config.Config{},
		missCache{},
		otelMocks.NewOtel(),
		func() time.Time { return now },
	)

	return fixture{svc: svc, repo: repo, events: events, refund: refund}
}

func asUser(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func asSystem() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeySystem, true)
}

func booking(id string, status model.Status, start time.Time, minutes int) model.Booking {
	return model.Booking{
		ID:                id,
		ResourceID:        resourceID,
		ResourceOwnerID:   ownerID,
		CustomerID:        customerID,
		ServiceID:         serviceID,
		StartAt:           start,
		EndAt:             start.Add(time.Duration(minutes) * time.Minute),
		Timezone:          "UTC",
		Price:             decimal.NewFromInt(100),
		Currency:          "USD",
		Status:            status,
		TransactionStatus: model.TransactionNone,
		Metadata: gModel.Metadata{
			CreatedAt: now.Add(-time.Minute),
			UpdatedAt: now.Add(-time.Minute),
		},
	}
}

func TestCreateDefaultsFromCatalog(t *testing.T) {
	f := setup(t)

	res, err := f.svc.Create(asUser(customerID), dto.CreateBookingRequest{
		ResourceID: resourceID,
		ServiceID:  serviceID,
		Start:      "2026-03-12T10:00:00Z",
		Timezone:   "UTC",
	})

	require.NoError(t, err)
	assert.Equal(t, string(model.StatusPendingHold), res.Status)
	assert.Equal(t, "2026-03-12T11:00:00Z", res.End)
	assert.Equal(t, "100.00", res.Price)
	assert.Equal(t, ownerID, res.ResourceOwnerID)
	assert.Equal(t, []event.Kind{event.KindCreated}, f.events.kinds())

	stored := f.repo.row(res.ID)
	assert.Equal(t, now, stored.CreatedAt)
}

func TestCreatePriceComesFromCatalogForCustomers(t *testing.T) {
	offered := haircut()
	offered.Currency = "EUR"

	f := setupWithService(t, offered)

	free := decimal.Zero

	res, err := f.svc.Create(asUser(customerID), dto.CreateBookingRequest{
		ResourceID: resourceID,
		ServiceID:  serviceID,
		Start:      "2026-03-12T10:00:00Z",
		Price:      &free,
		Currency:   "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, "100.00", res.Price)
	assert.Equal(t, "EUR", res.Currency)
	assert.True(t, decimal.NewFromInt(100).Equal(f.repo.row(res.ID).Price))
}

func TestCreateOwnerPriceKeepsCatalogCurrency(t *testing.T) {
	offered := haircut()
	offered.Currency = "EUR"

	f := setupWithService(t, offered)

	discounted := decimal.NewFromInt(80)

	res, err := f.svc.Create(asUser(ownerID), dto.CreateBookingRequest{
		ResourceID: resourceID,
		ServiceID:  serviceID,
		Start:      "2026-03-12T10:00:00Z",
		Price:      &discounted,
	})

	require.NoError(t, err)
	assert.Equal(t, "80.00", res.Price)
	assert.Equal(t, "EUR", res.Currency)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.CreateBookingRequest
	}{
		{
			name: "start after end",
			req:  dto.CreateBookingRequest{ResourceID: resourceID, ServiceID: serviceID, Start: "2026-03-12T10:00:00Z", End: "2026-03-12T09:00:00Z"},
		},
		{
			name: "equal start and end",
			req:  dto.CreateBookingRequest{ResourceID: resourceID, ServiceID: serviceID, Start: "2026-03-12T10:00:00Z", End: "2026-03-12T10:00:00Z"},
		},
		{
			name: "malformed start",
			req:  dto.CreateBookingRequest{ResourceID: resourceID, ServiceID: serviceID, Start: "tomorrow"},
		},
		{
			name: "unknown timezone",
			req:  dto.CreateBookingRequest{ResourceID: resourceID, ServiceID: serviceID, Start: "2026-03-12T10:00:00Z", Timezone: "Mars/Olympus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			_, err := f.svc.Create(asUser(customerID), tt.req)

			assert.True(t, failure.IsKind(err, failure.KindValidation), "got %v", err)
			assert.Empty(t, f.events.kinds())
		})
	}
}

func TestCreateRejectsServiceOfAnotherResource(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(asUser(customerID), dto.CreateBookingRequest{
		ResourceID: "resource-2",
		ServiceID:  serviceID,
		Start:      "2026-03-12T10:00:00Z",
	})

	assert.True(t, failure.IsKind(err, failure.KindValidation))
}

func TestCreateOverlapBoundaries(t *testing.T) {
	existing := booking("existing", model.StatusConfirmed, time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), 60)

	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "touching after", start: "2026-03-12T11:00:00Z", end: "2026-03-12T12:00:00Z"},
		{name: "touching before", start: "2026-03-12T09:00:00Z", end: "2026-03-12T10:00:00Z"},
		{name: "inside", start: "2026-03-12T10:15:00Z", end: "2026-03-12T10:45:00Z", wantErr: true},
		{name: "straddling start", start: "2026-03-12T09:30:00Z", end: "2026-03-12T10:30:00Z", wantErr: true},
		{name: "covering", start: "2026-03-12T09:00:00Z", end: "2026-03-12T12:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, existing)

			_, err := f.svc.Create(asUser(customerID), dto.CreateBookingRequest{
				ResourceID: resourceID,
				ServiceID:  serviceID,
				Start:      tt.start,
				End:        tt.end,
			})

			if tt.wantErr {
				assert.True(t, failure.IsKind(err, failure.KindAlreadyBooked), "got %v", err)
				assert.Equal(t, "time no longer available", err.Error())

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestCreateIgnoresNonBlockingBookings(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t,
		booking("cancelled", model.StatusCancelled, start, 60),
		booking("expired", model.StatusExpired, start, 60),
		booking("conflict", model.StatusConflict, start, 60),
	)

	_, err := f.svc.Create(asUser(customerID), dto.CreateBookingRequest{
		ResourceID: resourceID,
		ServiceID:  serviceID,
		Start:      "2026-03-12T10:00:00Z",
	})

	assert.NoError(t, err)
}

func TestConcurrentCreatesAdmitExactlyOne(t *testing.T) {
	f := setup(t)

	const callers = 10

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		booked  int
	)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := f.svc.Create(asUser(fmt.Sprintf("customer-%d", i)), dto.CreateBookingRequest{
				ResourceID: resourceID,
				ServiceID:  serviceID,
				Start:      "2026-03-12T10:00:00Z",
			})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				created++
			case failure.IsKind(err, failure.KindAlreadyBooked):
				booked++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, callers-1, booked)
}

func TestConfirm(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t, booking("hold", model.StatusPendingHold, start, 60))

	res, err := f.svc.Confirm(asSystem(), "hold", dto.ConfirmBookingRequest{TransactionRef: "tx-1"})

	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeConfirmed, res.Outcome)

	stored := f.repo.row("hold")
	assert.Equal(t, model.StatusConfirmed, stored.Status)
	assert.Equal(t, model.TransactionCompleted, stored.TransactionStatus)
	require.NotNil(t, stored.ExternalTransactionRef)
	assert.Equal(t, "tx-1", *stored.ExternalTransactionRef)
	assert.Equal(t, now, stored.UpdatedAt)
	assert.Equal(t, []event.Kind{event.KindConfirmed}, f.events.kinds())
}

func TestConfirmIsSystemOnly(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)

	for _, caller := range []string{customerID, ownerID} {
		t.Run(caller, func(t *testing.T) {
			f := setup(t, booking("hold", model.StatusPendingHold, start, 60))

			_, err := f.svc.Confirm(asUser(caller), "hold", dto.ConfirmBookingRequest{TransactionRef: "made-up"})

			assert.True(t, failure.IsKind(err, failure.KindForbidden), "got %v", err)

			stored := f.repo.row("hold")
			assert.Equal(t, model.StatusPendingHold, stored.Status)
			assert.Equal(t, model.TransactionNone, stored.TransactionStatus)
			assert.Nil(t, stored.ExternalTransactionRef)
			assert.Zero(t, f.repo.updateCount())
			assert.Empty(t, f.events.kinds())
		})
	}

	t.Run("strangers see nothing", func(t *testing.T) {
		f := setup(t, booking("hold", model.StatusPendingHold, start, 60))

		_, err := f.svc.Confirm(asUser("someone-else"), "hold", dto.ConfirmBookingRequest{})

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})
}

func TestConfirmIsIdempotent(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	confirmed := booking("done", model.StatusConfirmed, start, 60)
	f := setup(t, confirmed)

	res, err := f.svc.Confirm(asSystem(), "done", dto.ConfirmBookingRequest{})

	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeAlreadyConfirmed, res.Outcome)
	assert.Equal(t, confirmed.UpdatedAt, f.repo.row("done").UpdatedAt)
	assert.Zero(t, f.repo.updateCount())
	assert.Empty(t, f.events.kinds())
}

func TestConfirmRejectedStates(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		status    model.Status
		wantKind  failure.Kind
		wantState string
	}{
		{status: model.StatusExpired, wantKind: failure.KindExpired, wantState: "expired"},
		{status: model.StatusCancelled, wantKind: failure.KindInvalidState, wantState: "cancelled"},
		{status: model.StatusConflict, wantKind: failure.KindInvalidState, wantState: "conflict"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := setup(t, booking("b", tt.status, start, 60))

			_, err := f.svc.Confirm(asSystem(), "b", dto.ConfirmBookingRequest{})

			var fail *failure.Failure
			require.ErrorAs(t, err, &fail)
			assert.Equal(t, tt.wantKind, fail.Kind)
			assert.Equal(t, tt.wantState, fail.State)
			assert.Equal(t, tt.status, f.repo.row("b").Status)
		})
	}
}

func TestConfirmLateCollisionBecomesConflict(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t,
		booking("winner", model.StatusConfirmed, start, 60),
		booking("late", model.StatusPendingHold, start.Add(30*time.Minute), 60),
	)

	res, err := f.svc.Confirm(asSystem(), "late", dto.ConfirmBookingRequest{TransactionRef: "tx-late"})

	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeConflict, res.Outcome)
	assert.Equal(t, "winner", res.Booking.ConflictWithID)

	stored := f.repo.row("late")
	assert.Equal(t, model.StatusConflict, stored.Status)
	require.NotNil(t, stored.ConflictWithID)
	assert.Equal(t, "winner", *stored.ConflictWithID)
	assert.Equal(t, model.StatusConfirmed, f.repo.row("winner").Status)
	assert.Equal(t, []event.Kind{event.KindConflict}, f.events.kinds())
}

func TestConcurrentOverlappingConfirms(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t,
		booking("a", model.StatusPendingHold, start, 60),
		booking("b", model.StatusPendingHold, start.Add(30*time.Minute), 60),
	)

	var wg sync.WaitGroup

	outcomes := make([]dto.ConfirmOutcome, 2)

	for i, id := range []string{"a", "b"} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := f.svc.Confirm(asSystem(), id, dto.ConfirmBookingRequest{})
			assert.NoError(t, err)

			outcomes[i] = res.Outcome
		}()
	}

	wg.Wait()

	assert.ElementsMatch(t, []dto.ConfirmOutcome{dto.OutcomeConfirmed, dto.OutcomeConflict}, outcomes)

	a, b := f.repo.row("a"), f.repo.row("b")
	assert.ElementsMatch(t, []model.Status{model.StatusConfirmed, model.StatusConflict}, []model.Status{a.Status, b.Status})

	loser, winner := a, b
	if a.Status == model.StatusConfirmed {
		loser, winner = b, a
	}

	require.NotNil(t, loser.ConflictWithID)
	assert.Equal(t, winner.ID, *loser.ConflictWithID)
}

func TestCancel(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t, booking("b", model.StatusPendingHold, start, 60))

	res, err := f.svc.Cancel(asUser(customerID), "b", dto.CancelBookingRequest{Target: "cancelled", Reason: "changed plans"})

	require.NoError(t, err)
	assert.Equal(t, string(model.StatusCancelled), res.Status)
	assert.Equal(t, "changed plans", res.CancelReason)
	assert.Equal(t, []event.Kind{event.KindCancelled}, f.events.kinds())

	_, err = f.svc.Cancel(asUser(customerID), "b", dto.CancelBookingRequest{Target: "cancelled"})

	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.updateCount())
	assert.Len(t, f.events.kinds(), 1)
}

func TestCancelNeverOverridesExpired(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t, booking("b", model.StatusExpired, start, 60))

	_, err := f.svc.Cancel(asUser(customerID), "b", dto.CancelBookingRequest{Target: "cancelled"})

	assert.True(t, failure.IsKind(err, failure.KindExpired))
	assert.Equal(t, model.StatusExpired, f.repo.row("b").Status)
}

func TestCancelConflictRequiresResolution(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t, booking("b", model.StatusConflict, start, 60))

	_, err := f.svc.Cancel(asUser(customerID), "b", dto.CancelBookingRequest{Target: "cancelled"})

	assert.True(t, failure.IsKind(err, failure.KindInvalidState))
}

func TestCancelRefunded(t *testing.T) {
	tests := []struct {
		name       string
		startIn    time.Duration
		wantAmount string
		wantFee    string
		wantKind   failure.Kind
	}{
		{name: "full refund", startIn: 72 * time.Hour, wantAmount: "100.00", wantFee: "0.00"},
		{name: "partial refund", startIn: 30 * time.Hour, wantAmount: "75.00", wantFee: "25.00"},
		{name: "window closed", startIn: -time.Hour, wantKind: failure.KindRefundNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, booking("b", model.StatusConfirmed, now.Add(tt.startIn), 60))

			res, err := f.svc.Cancel(asUser(customerID), "b", dto.CancelBookingRequest{Target: "refunded"})

			if tt.wantKind != "" {
				assert.True(t, failure.IsKind(err, tt.wantKind), "got %v", err)
				assert.Equal(t, model.StatusConfirmed, f.repo.row("b").Status)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, string(model.StatusRefunded), res.Status)
			assert.Equal(t, tt.wantAmount, res.RefundAmount)
			assert.Equal(t, tt.wantFee, res.RefundFee)
			assert.Equal(t, []event.Kind{event.KindRefunded}, f.events.kinds())
		})
	}
}

func TestResolveConflictIsOwnerOnly(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t, booking("b", model.StatusConflict, start, 60))

	_, err := f.svc.ResolveConflict(asUser(customerID), "b", dto.ResolveConflictRequest{Target: "cancelled"})
	assert.True(t, failure.IsKind(err, failure.KindForbidden))

	res, err := f.svc.ResolveConflict(asUser(ownerID), "b", dto.ResolveConflictRequest{Target: "cancelled", Reason: "double booked"})
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusCancelled), res.Status)
}

func TestResolveConflictOnlyFromConflict(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t, booking("b", model.StatusConfirmed, start, 60))

	_, err := f.svc.ResolveConflict(asUser(ownerID), "b", dto.ResolveConflictRequest{Target: "cancelled"})

	assert.True(t, failure.IsKind(err, failure.KindInvalidState))
}

func TestReschedule(t *testing.T) {
	first := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	blocker := booking("blocker", model.StatusConfirmed, first, 60)
	moving := booking("moving", model.StatusConfirmed, first.Add(2*time.Hour), 60)

	t.Run("overlap leaves the booking untouched", func(t *testing.T) {
		f := setup(t, blocker, moving)

		_, err := f.svc.Reschedule(asUser(customerID), "moving", dto.RescheduleBookingRequest{
			Start: "2026-03-12T10:30:00Z",
			End:   "2026-03-12T11:30:00Z",
		})

		assert.True(t, failure.IsKind(err, failure.KindConflict), "got %v", err)
		assert.Equal(t, moving, f.repo.row("moving"))
		assert.Empty(t, f.events.kinds())
	})

	t.Run("overlapping its own interval", func(t *testing.T) {
		f := setup(t, blocker, moving)

		res, err := f.svc.Reschedule(asUser(customerID), "moving", dto.RescheduleBookingRequest{
			Start:    "2026-03-12T12:30:00Z",
			End:      "2026-03-12T13:30:00Z",
			Timezone: "Europe/Berlin",
		})

		require.NoError(t, err)
		assert.Equal(t, string(model.StatusConfirmed), res.Status)
		assert.Equal(t, "Europe/Berlin", res.Timezone)
		assert.Equal(t, first.Add(150*time.Minute), f.repo.row("moving").StartAt)
		assert.Equal(t, []event.Kind{event.KindRescheduled}, f.events.kinds())
	})

	t.Run("terminal booking", func(t *testing.T) {
		f := setup(t, booking("gone", model.StatusCancelled, first, 60))

		_, err := f.svc.Reschedule(asUser(customerID), "gone", dto.RescheduleBookingRequest{
			Start: "2026-03-13T10:00:00Z",
			End:   "2026-03-13T11:00:00Z",
		})

		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
	})
}

func TestExpire(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	cutoff := now.Add(-10 * time.Minute)

	aged := func(id string, age time.Duration, tx model.TransactionStatus) model.Booking {
		b := booking(id, model.StatusPendingHold, start, 60)
		b.CreatedAt = now.Add(-age)
		b.TransactionStatus = tx

		return b
	}

	tests := []struct {
		name    string
		booking model.Booking
		want    bool
	}{
		{name: "lapsed hold", booking: aged("old", 11*time.Minute, model.TransactionNone), want: true},
		{name: "fresh hold", booking: aged("fresh", 9*time.Minute, model.TransactionNone)},
		{name: "paid hold", booking: aged("paid", 11*time.Minute, model.TransactionCompleted)},
		{name: "failed payment", booking: aged("failed", 11*time.Minute, model.TransactionFailed), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.booking)

			expired, err := f.svc.Expire(asSystem(), tt.booking.ID, cutoff)

			require.NoError(t, err)
			assert.Equal(t, tt.want, expired)

			if tt.want {
				assert.Equal(t, model.StatusExpired, f.repo.row(tt.booking.ID).Status)
				assert.Equal(t, []event.Kind{event.KindExpired}, f.events.kinds())

				return
			}

			assert.Equal(t, model.StatusPendingHold, f.repo.row(tt.booking.ID).Status)
			assert.Empty(t, f.events.kinds())
		})
	}
}

func TestExpireUnknownBooking(t *testing.T) {
	f := setup(t)

	expired, err := f.svc.Expire(asSystem(), "missing", now)

	require.NoError(t, err)
	assert.False(t, expired)
}

func TestOverridePrice(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t, booking("b", model.StatusConfirmed, start, 60))

	_, err := f.svc.OverridePrice(asUser(customerID), "b", dto.OverridePriceRequest{Price: decimal.NewFromInt(10)})
	assert.True(t, failure.IsKind(err, failure.KindForbidden))

	res, err := f.svc.OverridePrice(asUser(ownerID), "b", dto.OverridePriceRequest{Price: decimal.RequireFromString("79.999")})
	require.NoError(t, err)
	assert.Equal(t, "80.00", res.Price)
}

func TestGetHidesBookingsFromStrangers(t *testing.T) {
	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	f := setup(t, booking("b", model.StatusConfirmed, start, 60))

	_, err := f.svc.Get(asUser("someone-else"), "b")
	assert.True(t, failure.IsKind(err, failure.KindNotFound))

	res, err := f.svc.Get(asUser(ownerID), "b")
	require.NoError(t, err)
	assert.Equal(t, "b", res.ID)

	_, err = f.svc.Get(context.Background(), "b")
	assert.True(t, failure.IsKind(err, failure.KindUnauthorized))
}

func TestRefundQuote(t *testing.T) {
	f := setup(t, booking("b", model.StatusConfirmed, now.Add(13*time.Hour), 60))

	res, err := f.svc.RefundQuote(asUser(customerID), "b")

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, "50.00", res.Amount)
	assert.Equal(t, "50.00", res.Fee)
	assert.InDelta(t, 13, res.HoursUntilStart, 0.001)
}
