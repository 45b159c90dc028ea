// Package handler contains the HTTP handlers for the AgReX API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agrexhq/agrex/internal/api/response"
	"github.com/agrexhq/agrex/internal/jobs"
	"github.com/agrexhq/agrex/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// writeServiceError maps domain errors onto the API error envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, jobs.ErrForbidden):
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Not authorized for this resource", nil)
	case errors.Is(err, jobs.ErrValidation):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, store.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, store.ErrDuplicateKey):
		response.Error(w, http.StatusConflict, "DUPLICATE", "Resource already exists", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

// urlUUID parses a path parameter as a UUID, writing a 400 on failure.
func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", param+" must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit/offset query parameters with defaults.
func pagination(r *http.Request) (limit, offset int) {
	limit = 100
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// collectionMeta derives the pagination envelope from the window and the
// store-reported total.
func collectionMeta(limit, offset, total int) response.PaginationMeta {
	return response.PaginationMeta{
		Page:    offset/limit + 1,
		Limit:   limit,
		Total:   total,
		HasNext: offset+limit < total,
	}
}
