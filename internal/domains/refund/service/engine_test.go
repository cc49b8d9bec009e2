package service_test

import (
	bookingModel "slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/refund/model"
	"slotkeeper/internal/domains/refund/service"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func bookingStartingIn(d time.Duration, status bookingModel.Status) bookingModel.Booking {
	return bookingModel.Booking{
		ID:         "b-1",
		ResourceID: "res-1",
		StartAt:    now.Add(d),
		EndAt:      now.Add(d + time.Hour),
		Timezone:   "Asia/Tokyo",
		Price:      decimal.RequireFromString("100.00"),
		Currency:   "USD",
		Status:     status,
	}
}

func TestCalculateRefundAmount(t *testing.T) {
	rules := model.DefaultRules()
	total := decimal.RequireFromString("100.00")

	tests := []struct {
		name        string
		until       time.Duration
		status      bookingModel.Status
		wantAllowed bool
		wantAmount  string
		wantFee     string
		wantReason  string
	}{
		{
			name:        "50 hours ahead is a full refund",
			until:       50 * time.Hour,
			status:      bookingModel.StatusConfirmed,
			wantAllowed: true,
			wantAmount:  "100",
			wantFee:     "0",
			wantReason:  "Full refund",
		},
		{
			name:        "exactly 48 hours still full",
			until:       48 * time.Hour,
			status:      bookingModel.StatusConfirmed,
			wantAllowed: true,
			wantAmount:  "100",
			wantFee:     "0",
		},
		{
			name:        "30 hours ahead keeps a quarter",
			until:       30 * time.Hour,
			status:      bookingModel.StatusPendingHold,
			wantAllowed: true,
			wantAmount:  "75",
			wantFee:     "25",
		},
		{
			name:        "13 hours ahead keeps half",
			until:       13 * time.Hour,
			status:      bookingModel.StatusConflict,
			wantAllowed: true,
			wantAmount:  "50",
			wantFee:     "50",
		},
		{
			name:        "10 hours ahead refunds nothing",
			until:       10 * time.Hour,
			status:      bookingModel.StatusConfirmed,
			wantAllowed: true,
			wantAmount:  "0",
			wantFee:     "100",
			wantReason:  "No refund",
		},
		{
			name:       "start already passed closes the window",
			until:      -time.Hour,
			status:     bookingModel.StatusConfirmed,
			wantAmount: "0",
			wantFee:    "100",
			wantReason: model.ReasonWindowClosed,
		},
		{
			name:       "cancelled booking is not refundable",
			until:      72 * time.Hour,
			status:     bookingModel.StatusCancelled,
			wantAmount: "0",
			wantFee:    "100",
			wantReason: model.ReasonNoBooking,
		},
		{
			name:       "expired booking is not refundable",
			until:      72 * time.Hour,
			status:     bookingModel.StatusExpired,
			wantAmount: "0",
			wantFee:    "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := service.CalculateRefundAmount(total, bookingStartingIn(tt.until, tt.status), rules, now)

			assert.Equal(t, tt.wantAllowed, quote.Allowed)
			assert.True(t, quote.Amount.Equal(decimal.RequireFromString(tt.wantAmount)), "amount %s", quote.Amount)
			assert.True(t, quote.Fee.Equal(decimal.RequireFromString(tt.wantFee)), "fee %s", quote.Fee)
			assert.True(t, quote.Amount.Add(quote.Fee).Equal(total))

			if tt.wantReason != "" {
				assert.Contains(t, quote.Reason, tt.wantReason)
			}
		})
	}
}

func TestIsRefundableWalksRulesInDescendingOrder(t *testing.T) {
	unordered := []model.Rule{
		{HoursBefore: 0, FeePercent: decimal.NewFromInt(100), Reason: "none"},
		{HoursBefore: 48, FeePercent: decimal.Zero, Reason: "full"},
		{HoursBefore: 24, FeePercent: decimal.NewFromInt(25), Reason: "most"},
	}

	got := service.IsRefundable(bookingStartingIn(30*time.Hour, bookingModel.StatusConfirmed), unordered, now)

	assert.True(t, got.Allowed)
	assert.Equal(t, "most", got.Reason)
	assert.InDelta(t, 30, got.HoursUntilStart, 0.001)
}

func TestIsRefundableBelowSmallestThreshold(t *testing.T) {
	rules := []model.Rule{
		{HoursBefore: 24, FeePercent: decimal.NewFromInt(10), Reason: "late"},
	}

	got := service.IsRefundable(bookingStartingIn(5*time.Hour, bookingModel.StatusConfirmed), rules, now)

	assert.False(t, got.Allowed)
	assert.Equal(t, model.ReasonWindowClosed, got.Reason)
}

func TestCalculateRefundAmountRoundsToCurrency(t *testing.T) {
	rules := []model.Rule{{HoursBefore: 0, FeePercent: decimal.RequireFromString("33.333"), Reason: "partial"}}

	usd := bookingStartingIn(time.Hour, bookingModel.StatusConfirmed)
	quote := service.CalculateRefundAmount(decimal.RequireFromString("10.00"), usd, rules, now)
	assert.Equal(t, "3.33", quote.Fee.StringFixed(2))
	assert.Equal(t, "6.67", quote.Amount.StringFixed(2))

	jpy := usd
	jpy.Currency = "JPY"
	quote = service.CalculateRefundAmount(decimal.NewFromInt(1000), jpy, rules, now)
	assert.True(t, quote.Fee.Equal(decimal.NewFromInt(333)))
	assert.True(t, quote.Amount.Equal(decimal.NewFromInt(667)))
}
