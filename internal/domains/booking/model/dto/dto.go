package dto

import (
	"errors"
	"fmt"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/shared"
	"slotkeeper/shared/constant"
	gDto "slotkeeper/shared/dto"
	"slotkeeper/shared/money"
	"slotkeeper/shared/timezone"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errStartAfterEnd = errors.New("start must be before end")
	errNegativePrice = errors.New("price must not be negative")
)

type CreateBookingRequest struct {
	ResourceID string           `json:"resource_id" validate:"required,max=64"`
	ServiceID  string           `json:"service_id"  validate:"required,max=64"`
	Start      string           `json:"start"       validate:"required"`
	End        string           `json:"end"         validate:"omitempty"`
	Timezone   string           `json:"timezone"    validate:"omitempty,max=64,timezone"`
	Price      *decimal.Decimal `json:"price"       validate:"omitempty"`
	Currency   string           `json:"currency"    validate:"omitempty,iso4217"`
}

// Interval parses the requested start and optional end. A zero end means the
// catalog duration decides it.
func (c *CreateBookingRequest) Interval() (start, end time.Time, err error) {
	start, err = parseInstant(c.Start)
	if err != nil {
		return start, end, fmt.Errorf("invalid start: %w", err)
	}

	if c.End == constant.Empty {
		return start, end, nil
	}

	end, err = parseInstant(c.End)
	if err != nil {
		return start, end, fmt.Errorf("invalid end: %w", err)
	}

	if !start.Before(end) {
		return start, end, errStartAfterEnd
	}

	return start, end, nil
}

func (c *CreateBookingRequest) Validate() error {
	if _, _, err := c.Interval(); err != nil {
		return err
	}

	if c.Timezone != constant.Empty && !timezone.Valid(c.Timezone) {
		return fmt.Errorf("unknown timezone %q", c.Timezone)
	}

	if c.Price != nil && c.Price.IsNegative() {
		return errNegativePrice
	}

	return nil
}

type ConfirmBookingRequest struct {
	TransactionRef string `json:"transaction_ref" validate:"omitempty,max=128"`
}

type CancelBookingRequest struct {
	Target string `json:"target" validate:"required,oneof=cancelled refunded"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type ResolveConflictRequest struct {
	Target string `json:"target" validate:"required,oneof=cancelled refunded"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type RescheduleBookingRequest struct {
	Start    string `json:"start"    validate:"required"`
	End      string `json:"end"      validate:"required"`
	Timezone string `json:"timezone" validate:"omitempty,max=64,timezone"`
}

func (r *RescheduleBookingRequest) Interval() (start, end time.Time, err error) {
	start, err = parseInstant(r.Start)
	if err != nil {
		return start, end, fmt.Errorf("invalid start: %w", err)
	}

	end, err = parseInstant(r.End)
	if err != nil {
		return start, end, fmt.Errorf("invalid end: %w", err)
	}

	if !start.Before(end) {
		return start, end, errStartAfterEnd
	}

	if r.Timezone != constant.Empty && !timezone.Valid(r.Timezone) {
		return start, end, fmt.Errorf("unknown timezone %q", r.Timezone)
	}

	return start, end, nil
}

type OverridePriceRequest struct {
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency" validate:"omitempty,iso4217"`
	Reason   string          `json:"reason"   validate:"omitempty,max=500"`
}

func (o *OverridePriceRequest) Validate() error {
	if o.Price.IsNegative() {
		return errNegativePrice
	}

	return nil
}

type ListBookingsRequest struct {
	ResourceID string   `json:"resource_id"`
	Statuses   []string `json:"status"      validate:"dive,oneof=pending_hold confirmed conflict cancelled refunded expired"`
	From       string   `json:"from"`
	To         string   `json:"to"`
}

// ToFilter scopes the listing to bookings the caller participates in.
func (l *ListBookingsRequest) ToFilter(userID string) (model.Filter, error) {
	filter := model.Filter{
		ResourceID:  l.ResourceID,
		Participant: userID,
		Statuses:    model.ParseStatuses(l.Statuses),
	}

	if l.From != constant.Empty {
		from, err := parseInstant(l.From)
		if err != nil {
			return filter, fmt.Errorf("invalid from: %w", err)
		}

		filter.From = &from
	}

	if l.To != constant.Empty {
		to, err := parseInstant(l.To)
		if err != nil {
			return filter, fmt.Errorf("invalid to: %w", err)
		}

		filter.To = &to
	}

	return filter, nil
}

type BookingResponse struct {
	ID                     string `json:"id"`
	ResourceID             string `json:"resource_id"`
	ResourceOwnerID        string `json:"resource_owner_id"`
	CustomerID             string `json:"customer_id"`
	ServiceID              string `json:"service_id"`
	Start                  string `json:"start"`
	End                    string `json:"end"`
	Timezone               string `json:"timezone"`
	Price                  string `json:"price"`
	Currency               string `json:"currency"`
	Status                 string `json:"status"`
	TransactionStatus      string `json:"transaction_status"`
	ExternalTransactionRef string `json:"external_transaction_ref,omitempty"`
	ConflictWithID         string `json:"conflict_with_id,omitempty"`
	CancelReason           string `json:"cancel_reason,omitempty"`
	RefundAmount           string `json:"refund_amount,omitempty"`
	RefundFee              string `json:"refund_fee,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.ResourceID = model.ResourceID
	r.ResourceOwnerID = model.ResourceOwnerID
	r.CustomerID = model.CustomerID
	r.ServiceID = model.ServiceID
	r.Start = timezone.In(model.StartAt, model.Timezone).Format(constant.DateFormat)
	r.End = timezone.In(model.EndAt, model.Timezone).Format(constant.DateFormat)
	r.Timezone = model.Timezone
	r.Price = money.Format(model.Price, model.Currency)
	r.Currency = model.Currency
	r.Status = string(model.Status)
	r.TransactionStatus = string(model.TransactionStatus)
	r.ExternalTransactionRef = deref(model.ExternalTransactionRef)
	r.ConflictWithID = deref(model.ConflictWithID)
	r.CancelReason = deref(model.CancelReason)

	if model.RefundAmount.Valid {
		r.RefundAmount = money.Format(model.RefundAmount.Decimal, model.Currency)
	}

	if model.RefundFee.Valid {
		r.RefundFee = money.Format(model.RefundFee.Decimal, model.Currency)
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type ConfirmOutcome string

const (
	OutcomeConfirmed        ConfirmOutcome = "confirmed"
	OutcomeAlreadyConfirmed ConfirmOutcome = "already_confirmed"
	OutcomeConflict         ConfirmOutcome = "conflict"
)

type ConfirmBookingResponse struct {
	Outcome ConfirmOutcome  `json:"outcome"`
	Booking BookingResponse `json:"booking"`
}

type RefundQuoteResponse struct {
	Allowed         bool    `json:"allowed"`
	Reason          string  `json:"reason"`
	FeePercent      string  `json:"fee_percent"`
	HoursUntilStart float64 `json:"hours_until_start"`
	Total           string  `json:"total"`
	Amount          string  `json:"amount"`
	Fee             string  `json:"fee"`
	Currency        string  `json:"currency"`
}

func parseInstant(value string) (time.Time, error) {
	t, err := time.Parse(constant.DateFormat, value)
	if err != nil {
		return t, fmt.Errorf("expected RFC3339 timestamp: %w", err)
	}

	return t.UTC(), nil
}

func deref(s *string) string {
	if s == nil {
		return constant.Empty
	}

	return *s
}
