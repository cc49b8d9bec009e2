package model

import "time"

type Metadata struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Touch sets UpdatedAt, and CreatedAt when it has never been set.
func (m *Metadata) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}

	m.UpdatedAt = now
}
