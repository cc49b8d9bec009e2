package service

import (
	"fmt"
	bookingModel "slotkeeper/internal/domains/booking/model"
	"slotkeeper/internal/domains/refund/model"
	"slotkeeper/shared/money"
	"slotkeeper/shared/timezone"
	"time"

	"github.com/shopspring/decimal"
)

var refundableStatuses = []bookingModel.Status{
	bookingModel.StatusPendingHold,
	bookingModel.StatusConfirmed,
	bookingModel.StatusConflict,
}

// IsRefundable applies the first rule, by descending HoursBefore, whose
// threshold the remaining time still meets.
func IsRefundable(booking bookingModel.Booking, rules []model.Rule, now time.Time) model.Eligibility {
	if !booking.Status.In(refundableStatuses) {
		return model.Eligibility{
			Reason:     fmt.Sprintf("%s (status %s)", model.ReasonNoBooking, booking.Status),
			FeePercent: decimal.NewFromInt(100),
		}
	}

	start := timezone.In(booking.StartAt, booking.Timezone)
	hours := start.Sub(now.In(start.Location())).Hours()

	for _, rule := range model.Sorted(rules) {
		if hours >= float64(rule.HoursBefore) {
			return model.Eligibility{
				Allowed:         true,
				Reason:          rule.Reason,
				FeePercent:      rule.FeePercent,
				HoursUntilStart: hours,
			}
		}
	}

	return model.Eligibility{
		Reason:          model.ReasonWindowClosed,
		FeePercent:      decimal.NewFromInt(100),
		HoursUntilStart: hours,
	}
}

// CalculateRefundAmount splits total into refund and fee at currency precision.
// A disallowed refund returns nothing and keeps the whole total as fee.
func CalculateRefundAmount(total decimal.Decimal, booking bookingModel.Booking, rules []model.Rule, now time.Time) model.Quote {
	eligibility := IsRefundable(booking, rules, now)
	total = money.Round(total, booking.Currency)

	quote := model.Quote{
		Total:       total,
		Currency:    booking.Currency,
		Eligibility: eligibility,
	}

	if !eligibility.Allowed {
		quote.Amount = decimal.Zero
		quote.Fee = total

		return quote
	}

	quote.Fee = money.Round(money.Percent(total, eligibility.FeePercent), booking.Currency)
	quote.Amount = total.Sub(quote.Fee)

	return quote
}
