package handler

import (
	"encoding/json"
	"net/http"
	"time"

	mw "github.com/agrexhq/agrex/internal/api/middleware"
	"github.com/agrexhq/agrex/internal/api/response"
	"github.com/agrexhq/agrex/internal/store"
	"github.com/agrexhq/agrex/pkg/models"
	"github.com/google/uuid"
)

// NewCreateTrainingDatasetHandler returns the handler for
// POST /api/v1/training-datasets.
func NewCreateTrainingDatasetHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}

		var req struct {
			Name            string   `json:"name"`
			DataPath        string   `json:"data_path"`
			DataType        string   `json:"data_type"`
			ValidationSplit *float64 `json:"validation_split"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Name == "" || req.DataType == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name and data_type are required", nil)
			return
		}

		split := 0.2
		if req.ValidationSplit != nil {
			split = *req.ValidationSplit
			if split < 0 || split >= 1 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "validation_split must be in [0, 1)", nil)
				return
			}
		}

		now := time.Now().UTC()
		ds := &models.TrainingDataset{
			ID:              uuid.New(),
			OwnerID:         ownerID,
			Name:            req.Name,
			DataPath:        req.DataPath,
			DataType:        req.DataType,
			ValidationSplit: split,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.CreateTrainingDataset(r.Context(), ds); err != nil {
			writeServiceError(w, err)
			return
		}
		response.Created(w, ds)
	}
}

// NewListTrainingDatasetsHandler lists the caller's datasets.
func NewListTrainingDatasetsHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		limit, offset := pagination(r)
		dss, total, err := s.ListTrainingDatasets(r.Context(), ownerID, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Collection(w, dss, collectionMeta(limit, offset, total))
	}
}

func NewGetTrainingDatasetHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlUUID(w, r, "datasetID")
		if !ok {
			return
		}
		ds, err := s.GetTrainingDataset(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, ds)
	}
}
