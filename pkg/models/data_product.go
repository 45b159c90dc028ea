package models

import (
	"time"

	"github.com/google/uuid"
)

// DataProduct is an owner-scoped imagery selection over a date range.
// Its InputPath is the input reference for analysis-script jobs.
type DataProduct struct {
	ID          uuid.UUID  `db:"id"          json:"id"`
	OwnerID     uuid.UUID  `db:"owner_id"    json:"owner_id"`
	Name        string     `db:"name"        json:"name"`
	Description string     `db:"description" json:"description,omitempty"`
	CropType    string     `db:"crop_type"   json:"crop_type,omitempty"`
	Satellite   string     `db:"satellite"   json:"satellite,omitempty"`
	FromDate    *time.Time `db:"from_date"   json:"from_date,omitempty"`
	ToDate      *time.Time `db:"to_date"     json:"to_date,omitempty"`
	InputPath   string     `db:"input_path"  json:"input_path,omitempty"`
	IsActive    bool       `db:"is_active"   json:"is_active"`
	CreatedAt   time.Time  `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"  json:"updated_at"`
}
