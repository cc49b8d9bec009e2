package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "catalog_services"
	EntityName = "catalog_service"

	FieldID              = "id"
	FieldResourceID      = "resource_id"
	FieldResourceOwnerID = "resource_owner_id"
	FieldName            = "name"
	FieldPrice           = "price"
	FieldCurrency        = "currency"
	FieldDurationMinutes = "duration_minutes"
	FieldActive          = "active"
)

var Columns = []string{
	FieldID,
	FieldResourceID,
	FieldResourceOwnerID,
	FieldName,
	FieldPrice,
	FieldCurrency,
	FieldDurationMinutes,
	FieldActive,
}

// Service is a bookable offering on a resource. The table is owned by the
// catalog system; this module only reads it.
type Service struct {
	ID              string          `db:"id"                json:"id"`
	ResourceID      string          `db:"resource_id"       json:"resource_id"`
	ResourceOwnerID string          `db:"resource_owner_id" json:"resource_owner_id"`
	Name            string          `db:"name"              json:"name"`
	Price           decimal.Decimal `db:"price"             json:"price"`
	Currency        string          `db:"currency"          json:"currency"`
	DurationMinutes int             `db:"duration_minutes"  json:"duration_minutes"`
	Active          bool            `db:"active"            json:"active"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
