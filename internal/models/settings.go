package models

import "time"

// Settings is the single-row application settings record. IsResultOut gates
// whether candidates can see their round outcomes.
type Settings struct {
	ID          string    `db:"id" json:"id"`
	IsResultOut bool      `db:"is_result_out" json:"isResultOut"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateSettingsRequest patches settings fields.
type UpdateSettingsRequest struct {
	IsResultOut *bool `json:"isResultOut"`
}
