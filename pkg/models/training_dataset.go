package models

import (
	"time"

	"github.com/google/uuid"
)

// TrainingDataset is an owner-scoped dataset row referenced by
// model-training jobs. Validated to exist at launch time only.
type TrainingDataset struct {
	ID              uuid.UUID `db:"id"               json:"id"`
	OwnerID         uuid.UUID `db:"owner_id"         json:"owner_id"`
	Name            string    `db:"name"             json:"name"`
	DataPath        string    `db:"data_path"        json:"data_path,omitempty"`
	DataType        string    `db:"data_type"        json:"data_type"`
	ValidationSplit float64   `db:"validation_split" json:"validation_split"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"       json:"updated_at"`
}
