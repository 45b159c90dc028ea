package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrexhq/agrex/internal/cache"
	"github.com/agrexhq/agrex/internal/store"
	"github.com/agrexhq/agrex/pkg/models"
	"github.com/google/uuid"
)

const statusCacheTTL = 30 * time.Minute

// Executor performs one kind of background work. Execute runs off the
// request path and returns the result payload on success. A
// store.ErrNotFound from Execute means the job's input vanished after
// launch; the runner logs and leaves the row as-is in that case.
type Executor interface {
	Kind() string
	Validate(params map[string]any) error
	Execute(ctx context.Context, job *models.Job) (map[string]any, error)
}

// LaunchParams describes a job submission.
type LaunchParams struct {
	Kind       string
	OwnerID    uuid.UUID
	InputRef   uuid.UUID
	Parameters map[string]any
}

// UpdatePatch carries the owner-editable job fields. Status changes go
// through the same forward-only transition rules the executors use.
type UpdatePatch struct {
	Status       *string
	Result       map[string]any
	ErrorMessage *string
}

// Service is the job lifecycle front door: it validates and persists
// launches, hands execution to the pool, and serves status reads.
type Service struct {
	store     store.Store
	cache     cache.Cache
	pool      *Pool
	executors map[string]Executor
}

// NewService creates a Service dispatching to the given executors.
func NewService(st store.Store, ca cache.Cache, pool *Pool, executors ...Executor) *Service {
	byKind := make(map[string]Executor, len(executors))
	for _, e := range executors {
		byKind[e.Kind()] = e
	}
	return &Service{store: st, cache: ca, pool: pool, executors: byKind}
}

// Launch validates the submission, persists a pending job, and schedules
// execution. It returns as soon as the row is durably created; the
// outcome of the work is only ever observable through Status. Identical
// submissions create independent jobs — there is no deduplication.
func (s *Service) Launch(ctx context.Context, p LaunchParams) (*models.Job, error) {
	exec, ok := s.executors[p.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, p.Kind)
	}
	if err := exec.Validate(p.Parameters); err != nil {
		return nil, err
	}

	owner, err := s.inputOwner(ctx, p.Kind, p.InputRef)
	if err != nil {
		return nil, err
	}
	if owner != p.OwnerID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:         uuid.New(),
		OwnerID:    p.OwnerID,
		Kind:       p.Kind,
		InputRef:   p.InputRef,
		Parameters: p.Parameters,
		Status:     models.JobStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if job.Parameters == nil {
		job.Parameters = map[string]any{}
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	_ = s.cache.SetJobStatus(ctx, job.ID, models.JobStatusPending, statusCacheTTL)

	s.pool.Submit("job "+job.ID.String(), func() {
		s.run(job.ID, exec)
	})

	return job, nil
}

// Status returns the current view of a job. Reads are open to any
// authenticated caller and are safe to poll concurrently with execution.
func (s *Service) Status(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	return s.store.GetJob(ctx, jobID)
}

// CachedStatus returns the job's status string from the cache when
// present, falling back to the record store.
func (s *Service) CachedStatus(ctx context.Context, jobID uuid.UUID) (string, error) {
	if status, ok, err := s.cache.GetJobStatus(ctx, jobID); err == nil && ok {
		return status, nil
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}

// List returns the caller's jobs, newest first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Job, int, error) {
	return s.store.ListJobs(ctx, ownerID, limit, offset)
}

// Update applies an owner-guarded patch to a job's status and result
// fields. Transitions remain forward-only.
func (s *Service) Update(ctx context.Context, jobID, callerID uuid.UUID, patch UpdatePatch) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := assertOwner(job.OwnerID, callerID); err != nil {
		return nil, err
	}

	if patch.Status != nil {
		var opts []store.JobUpdateOption
		if patch.Result != nil {
			opts = append(opts, store.WithResult(patch.Result))
		}
		if patch.ErrorMessage != nil {
			opts = append(opts, store.WithErrorMessage(*patch.ErrorMessage))
		}
		if err := s.store.UpdateJobStatus(ctx, jobID, *patch.Status, opts...); err != nil {
			return nil, err
		}
		_ = s.cache.SetJobStatus(ctx, jobID, *patch.Status, statusCacheTTL)
	}

	return s.store.GetJob(ctx, jobID)
}

// Delete removes a job, owner-guarded. In-flight work for the job is not
// interrupted; its executor will find the row gone and stop silently.
func (s *Service) Delete(ctx context.Context, jobID, callerID uuid.UUID) error {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := assertOwner(job.OwnerID, callerID); err != nil {
		return err
	}
	if err := s.store.DeleteJob(ctx, jobID); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cache.JobStatusKey(jobID))
	return nil
}

// assertOwner is the single authorization check applied before launch,
// update, and delete. Status reads are intentionally not guarded.
func assertOwner(ownerID, callerID uuid.UUID) error {
	if ownerID != callerID {
		return ErrForbidden
	}
	return nil
}

// inputOwner resolves the owner of a job's input reference.
func (s *Service) inputOwner(ctx context.Context, kind string, inputRef uuid.UUID) (uuid.UUID, error) {
	switch kind {
	case models.JobKindTraining:
		ds, err := s.store.GetTrainingDataset(ctx, inputRef)
		if err != nil {
			return uuid.Nil, err
		}
		return ds.OwnerID, nil
	case models.JobKindAnalysis:
		dp, err := s.store.GetDataProduct(ctx, inputRef)
		if err != nil {
			return uuid.Nil, err
		}
		return dp.OwnerID, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
}

// run drives one job through pending -> running -> completed/failed.
// It executes on a pool worker, never on the request path. A job whose
// row or input disappeared mid-flight is logged and left unadvanced.
func (s *Service) run(jobID uuid.UUID, exec Executor) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic executing job", "job_id", jobID, "error", r)
			// Second attempt so a fault after the running transition
			// still ends in a terminal state rather than a stuck row.
			s.markFailed(ctx, jobID, fmt.Sprintf("panic: %v", r))
		}
	}()

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		slog.Warn("job row gone before execution", "job_id", jobID, "error", err)
		return
	}

	if err := s.store.UpdateJobStatus(ctx, jobID, models.JobStatusRunning); err != nil {
		slog.Warn("could not mark job running", "job_id", jobID, "error", err)
		return
	}
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusRunning, statusCacheTTL)

	result, err := exec.Execute(ctx, job)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("job input gone during execution", "job_id", jobID, "kind", job.Kind)
			return
		}
		slog.Error("job failed", "job_id", jobID, "kind", job.Kind, "error", err)
		s.markFailed(ctx, jobID, err.Error())
		return
	}

	if err := s.store.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted, store.WithResult(result)); err != nil {
		slog.Error("could not mark job completed", "job_id", jobID, "error", err)
		return
	}
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusCompleted, statusCacheTTL)
	slog.Info("job completed", "job_id", jobID, "kind", job.Kind)
}

func (s *Service) markFailed(ctx context.Context, jobID uuid.UUID, msg string) {
	if err := s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed, store.WithErrorMessage(msg)); err != nil {
		slog.Error("could not mark job failed", "job_id", jobID, "error", err)
		return
	}
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, statusCacheTTL)
}
