package models

import (
	"time"

	"github.com/google/uuid"
)

// Crop is a reference catalog entry describing a cultivable crop.
type Crop struct {
	ID                uuid.UUID `db:"id"                 json:"id"`
	Name              string    `db:"name"               json:"name"`
	Description       string    `db:"description"        json:"description,omitempty"`
	GrowthPeriod      int       `db:"growth_period"      json:"growth_period"`
	WaterRequirements string    `db:"water_requirements" json:"water_requirements,omitempty"`
	CreatedAt         time.Time `db:"created_at"         json:"created_at"`
}

// Satellite is a reference catalog entry for an imagery source.
type Satellite struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Resolution  float64   `db:"resolution"  json:"resolution"`
	IsPremium   bool      `db:"is_premium"  json:"is_premium"`
	Active      bool      `db:"active"      json:"active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}

// Calibration links a crop to a satellite with tuned coefficients.
type Calibration struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	CropID      uuid.UUID `db:"crop_id"      json:"crop_id"`
	SatelliteID uuid.UUID `db:"satellite_id" json:"satellite_id"`
	Coefficient float64   `db:"coefficient"  json:"coefficient"`
	Confidence  float64   `db:"confidence"   json:"confidence"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}
