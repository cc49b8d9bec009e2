package model

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "refund_rules"
	EntityName = "refund_rule"

	FieldID          = "id"
	FieldResourceID  = "resource_id"
	FieldHoursBefore = "hours_before"
	FieldFeePercent  = "fee_percent"
	FieldReason      = "reason"
)

const (
	ReasonWindowClosed = "Refund window closed"
	ReasonNoBooking    = "Refund not available for this booking"
)

// Rule charges FeePercent when cancelling at least HoursBefore hours ahead of start.
type Rule struct {
	HoursBefore int             `db:"hours_before" json:"hours_before" toml:"hours_before"`
	FeePercent  decimal.Decimal `db:"fee_percent"  json:"fee_percent"  toml:"-"`
	Reason      string          `db:"reason"       json:"reason"       toml:"reason"`
}

func (r Rule) Valid() bool {
	return r.HoursBefore >= 0 &&
		!r.FeePercent.IsNegative() &&
		r.FeePercent.LessThanOrEqual(decimal.NewFromInt(100))
}

// Sorted returns a copy ordered by descending HoursBefore.
func Sorted(rules []Rule) []Rule {
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		return cmp.Compare(b.HoursBefore, a.HoursBefore)
	})

	return sorted
}

// DefaultRules is the policy used when no rule set is configured anywhere.
func DefaultRules() []Rule {
	return []Rule{
		{HoursBefore: 48, FeePercent: decimal.Zero, Reason: "Full refund"},
		{HoursBefore: 24, FeePercent: decimal.NewFromInt(25), Reason: "75% refund"},
		{HoursBefore: 12, FeePercent: decimal.NewFromInt(50), Reason: "50% refund"},
		{HoursBefore: 0, FeePercent: decimal.NewFromInt(100), Reason: "No refund within 12 hours of start"},
	}
}

type Eligibility struct {
	Allowed         bool            `json:"allowed"`
	Reason          string          `json:"reason"`
	FeePercent      decimal.Decimal `json:"fee_percent"`
	HoursUntilStart float64         `json:"hours_until_start"`
}

type Quote struct {
	Total    decimal.Decimal `json:"total"`
	Amount   decimal.Decimal `json:"amount"`
	Fee      decimal.Decimal `json:"fee"`
	Currency string          `json:"currency"`
	Eligibility
}
