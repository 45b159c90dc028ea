package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/agrexhq/agrex/internal/config"
	"github.com/agrexhq/agrex/internal/store"
	"github.com/agrexhq/agrex/pkg/models"
)

const (
	baseSuccessProbability    = 0.9
	loweredSuccessProbability = 0.7
	learningRateThreshold     = 0.1
)

// TrainingExecutor runs model-training jobs. The training itself is
// simulated: it sleeps for a random duration within the configured bounds
// and produces an accuracy/error-rate pair, failing with a probability
// that rises for aggressive learning rates.
type TrainingExecutor struct {
	store store.Store
	cfg   config.TrainingConfig
}

// NewTrainingExecutor creates a TrainingExecutor.
func NewTrainingExecutor(st store.Store, cfg config.TrainingConfig) *TrainingExecutor {
	return &TrainingExecutor{store: st, cfg: cfg}
}

func (e *TrainingExecutor) Kind() string {
	return models.JobKindTraining
}

// Validate checks training parameters at launch time.
func (e *TrainingExecutor) Validate(params map[string]any) error {
	modelType, ok := params["model_type"].(string)
	if !ok || modelType == "" {
		return fmt.Errorf("%w: model_type is required", ErrValidation)
	}
	if raw, ok := params["learning_rate"]; ok {
		if _, ok := numericParam(raw); !ok {
			return fmt.Errorf("%w: learning_rate must be a number", ErrValidation)
		}
	}
	return nil
}

// Execute trains (simulates) synchronously and returns the metrics.
// The dataset is re-read here; a missing row means the input was deleted
// after launch and the job is abandoned by the caller.
func (e *TrainingExecutor) Execute(ctx context.Context, job *models.Job) (map[string]any, error) {
	ds, err := e.store.GetTrainingDataset(ctx, job.InputRef)
	if err != nil {
		return nil, err
	}

	modelType, _ := job.Parameters["model_type"].(string)
	slog.Info("training started",
		"job_id", job.ID,
		"model_type", modelType,
		"data_type", ds.DataType,
	)

	duration := e.cfg.MinDuration
	if span := e.cfg.MaxDuration - e.cfg.MinDuration; span > 0 {
		duration += rand.N(span)
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	accuracy, ok := Simulate(job.Parameters)
	if !ok {
		return nil, fmt.Errorf("training did not converge for model type %q", modelType)
	}

	return map[string]any{
		"accuracy":   accuracy,
		"error_rate": 1.0 - accuracy,
		"model_type": modelType,
		"data_type":  ds.DataType,
	}, nil
}

// Simulate rolls one training outcome. On success it returns an accuracy
// in [0.7, 0.95).
func Simulate(params map[string]any) (float64, bool) {
	if rand.Float64() >= SuccessProbability(params) {
		return 0, false
	}
	return 0.7 + rand.Float64()*0.25, true
}

// SuccessProbability returns the chance a simulated run succeeds.
// Learning rates above the threshold destabilize training and lower it.
func SuccessProbability(params map[string]any) float64 {
	if lr, ok := numericParam(params["learning_rate"]); ok && lr > learningRateThreshold {
		return loweredSuccessProbability
	}
	return baseSuccessProbability
}

// numericParam coerces a decoded JSON parameter value to float64.
func numericParam(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
