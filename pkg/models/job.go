package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

const (
	JobKindTraining = "model-training"
	JobKindAnalysis = "analysis-script"
)

// Job tracks one unit of background work. The API returns a job id on
// POST /api/v1/jobs; the client polls GET /api/v1/jobs/{id} until status
// is completed or failed.
//
// OwnerID and Parameters are fixed at creation. Status moves forward only:
// pending -> running -> completed/failed. Once terminal, exactly one of
// Result and ErrorMessage is populated.
type Job struct {
	ID           uuid.UUID      `db:"id"            json:"id"`
	OwnerID      uuid.UUID      `db:"owner_id"      json:"owner_id"`
	Kind         string         `db:"kind"          json:"kind"`
	InputRef     uuid.UUID      `db:"input_ref"     json:"input_ref"`
	Parameters   map[string]any `db:"parameters"    json:"parameters"`
	Status       string         `db:"status"        json:"status"`
	Result       map[string]any `db:"result"        json:"result,omitempty"`
	ErrorMessage *string        `db:"error_message" json:"error_message,omitempty"`
	StartedAt    *time.Time     `db:"started_at"    json:"started_at,omitempty"`
	CompletedAt  *time.Time     `db:"completed_at"  json:"completed_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"    json:"updated_at"`
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
