package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slotkeeper/shared/model"
)

const (
	TableName  = "resource_settings"
	EntityName = "resource_settings"

	FieldResourceID = "resource_id"
	FieldOwnerID    = "owner_id"
	FieldDocument   = "document"
	FieldCreatedAt  = "created_at"
	FieldUpdatedAt  = "updated_at"
)

var Columns = []string{
	FieldResourceID,
	FieldOwnerID,
	FieldDocument,
	FieldCreatedAt,
	FieldUpdatedAt,
}

// Document is the settings wire format, stored as JSONB. Hours and breaks are
// always normalized before they are saved.
type Document struct {
	Hours        map[string][][2]string `json:"hours"`
	Breaks       map[string][][2]string `json:"breaks"`
	SlotInterval int                    `json:"slot_interval"`
	BufferBefore int                    `json:"buffer_before"`
	BufferAfter  int                    `json:"buffer_after"`
	DaysOff      []string               `json:"days_off"`
}

func (d Document) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings document: %w", err)
	}

	return b, nil
}

func (d *Document) Scan(src any) error {
	var raw []byte

	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*d = Document{}

		return nil
	default:
		return fmt.Errorf("unsupported settings document type %T", src)
	}

	if err := json.Unmarshal(raw, d); err != nil {
		return fmt.Errorf("failed to unmarshal settings document: %w", err)
	}

	return nil
}

type Settings struct {
	ResourceID string   `db:"resource_id"`
	OwnerID    string   `db:"owner_id"`
	Document   Document `db:"document"`
	model.Metadata
}
