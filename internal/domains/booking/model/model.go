package model

import (
	"slices"
	"slotkeeper/shared/model"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                     = "id"
	FieldResourceID             = "resource_id"
	FieldResourceOwnerID        = "resource_owner_id"
	FieldCustomerID             = "customer_id"
	FieldServiceID              = "service_id"
	FieldStartAt                = "start_at"
	FieldEndAt                  = "end_at"
	FieldTimezone               = "timezone"
	FieldPrice                  = "price"
	FieldCurrency               = "currency"
	FieldStatus                 = "status"
	FieldTransactionStatus      = "transaction_status"
	FieldExternalTransactionRef = "external_transaction_ref"
	FieldConflictWithID         = "conflict_with_id"
	FieldCancelReason           = "cancel_reason"
	FieldRefundAmount           = "refund_amount"
	FieldRefundFee              = "refund_fee"
	FieldCreatedAt              = "created_at"
	FieldUpdatedAt              = "updated_at"
)

// Columns lists every persisted column in insert order.
var Columns = []string{
	FieldID,
	FieldResourceID,
	FieldResourceOwnerID,
	FieldCustomerID,
	FieldServiceID,
	FieldStartAt,
	FieldEndAt,
	FieldTimezone,
	FieldPrice,
	FieldCurrency,
	FieldStatus,
	FieldTransactionStatus,
	FieldExternalTransactionRef,
	FieldConflictWithID,
	FieldCancelReason,
	FieldRefundAmount,
	FieldRefundFee,
	FieldCreatedAt,
	FieldUpdatedAt,
}

type Status string

const (
	StatusPendingHold Status = "pending_hold"
	StatusConfirmed   Status = "confirmed"
	StatusConflict    Status = "conflict"
	StatusCancelled   Status = "cancelled"
	StatusRefunded    Status = "refunded"
	StatusExpired     Status = "expired"
)

var AllStatuses = []Status{
	StatusPendingHold,
	StatusConfirmed,
	StatusConflict,
	StatusCancelled,
	StatusRefunded,
	StatusExpired,
}

func (s Status) Valid() bool {
	return slices.Contains(AllStatuses, s)
}

// In reports whether s is one of set.
func (s Status) In(set []Status) bool {
	return slices.Contains(set, s)
}

// ParseStatuses converts configured names, skipping unknown ones.
func ParseStatuses(names []string) []Status {
	res := make([]Status, 0, len(names))

	for _, name := range names {
		if st := Status(name); st.Valid() && !st.In(res) {
			res = append(res, st)
		}
	}

	return res
}

var (
	DefaultBlockingStatuses   = []Status{StatusPendingHold, StatusConfirmed}
	DefaultConfirmAllowedFrom = []Status{StatusPendingHold}
	DefaultCancelAllowedFrom  = []Status{StatusPendingHold, StatusConfirmed}
)

type TransactionStatus string

const (
	TransactionNone      TransactionStatus = "none"
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

type Booking struct {
	ID                     string              `db:"id"`
	ResourceID             string              `db:"resource_id"`
	ResourceOwnerID        string              `db:"resource_owner_id"`
	CustomerID             string              `db:"customer_id"`
	ServiceID              string              `db:"service_id"`
	StartAt                time.Time           `db:"start_at"`
	EndAt                  time.Time           `db:"end_at"`
	Timezone               string              `db:"timezone"`
	Price                  decimal.Decimal     `db:"price"`
	Currency               string              `db:"currency"`
	Status                 Status              `db:"status"`
	TransactionStatus      TransactionStatus   `db:"transaction_status"`
	ExternalTransactionRef *string             `db:"external_transaction_ref"`
	ConflictWithID         *string             `db:"conflict_with_id"`
	CancelReason           *string             `db:"cancel_reason"`
	RefundAmount           decimal.NullDecimal `db:"refund_amount"`
	RefundFee              decimal.NullDecimal `db:"refund_fee"`
	model.Metadata
}

// Overlaps applies the half-open interval rule [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartAt.Before(end) && b.EndAt.After(start)
}

// Owned reports whether userID is the customer or the resource owner.
func (b *Booking) Owned(userID string) bool {
	return userID != "" && (userID == b.CustomerID || userID == b.ResourceOwnerID)
}

// Filter narrows List and Count. Zero values are ignored.
type Filter struct {
	ResourceID      string
	CustomerID      string
	ResourceOwnerID string
	// Participant matches bookings where the user is customer or owner.
	Participant string
	Statuses    []Status
	From        *time.Time
	To          *time.Time
}

// Cursor is the keyset position for sweeping; zero means from the beginning.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == ""
}
