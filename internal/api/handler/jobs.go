package handler

import (
	"context"
	"encoding/json"
	"net/http"

	mw "github.com/agrexhq/agrex/internal/api/middleware"
	"github.com/agrexhq/agrex/internal/api/response"
	"github.com/agrexhq/agrex/internal/jobs"
	"github.com/agrexhq/agrex/pkg/models"
	"github.com/google/uuid"
)

// JobService defines the interface the job handlers depend on.
type JobService interface {
	Launch(ctx context.Context, p jobs.LaunchParams) (*models.Job, error)
	Status(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	CachedStatus(ctx context.Context, jobID uuid.UUID) (string, error)
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Job, int, error)
	Update(ctx context.Context, jobID, callerID uuid.UUID, patch jobs.UpdatePatch) (*models.Job, error)
	Delete(ctx context.Context, jobID, callerID uuid.UUID) error
}

// NewLaunchJobHandler returns the handler for POST /api/v1/jobs.
// The job id comes back immediately; progress is observed by polling.
func NewLaunchJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}

		var req struct {
			Kind       string         `json:"kind"`
			InputRef   uuid.UUID      `json:"input_ref"`
			Parameters map[string]any `json:"parameters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Kind == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "kind is required", nil)
			return
		}
		if req.InputRef == uuid.Nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "input_ref is required", nil)
			return
		}

		job, err := svc.Launch(r.Context(), jobs.LaunchParams{
			Kind:       req.Kind,
			OwnerID:    ownerID,
			InputRef:   req.InputRef,
			Parameters: req.Parameters,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Accepted(w, job)
	}
}

// NewGetJobHandler returns the handler for GET /api/v1/jobs/{jobID}.
// Status reads are open to any authenticated caller.
func NewGetJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlUUID(w, r, "jobID")
		if !ok {
			return
		}
		job, err := svc.Status(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewListJobsHandler lists the caller's jobs.
func NewListJobsHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		limit, offset := pagination(r)
		list, total, err := svc.List(r.Context(), ownerID, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Collection(w, list, collectionMeta(limit, offset, total))
	}
}

// NewUpdateJobHandler returns the handler for PUT /api/v1/jobs/{jobID}.
// Only status and result fields are patchable, owner-guarded.
func NewUpdateJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		id, ok := urlUUID(w, r, "jobID")
		if !ok {
			return
		}

		var req struct {
			Status       *string        `json:"status"`
			Result       map[string]any `json:"result"`
			ErrorMessage *string        `json:"error_message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		job, err := svc.Update(r.Context(), id, callerID, jobs.UpdatePatch{
			Status:       req.Status,
			Result:       req.Result,
			ErrorMessage: req.ErrorMessage,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewDeleteJobHandler returns the handler for DELETE /api/v1/jobs/{jobID}.
func NewDeleteJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		id, ok := urlUUID(w, r, "jobID")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id, callerID); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
