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

const dateLayout = "2006-01-02"

// NewCreateDataProductHandler returns the handler for POST /api/v1/data-products.
func NewCreateDataProductHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}

		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			CropType    string `json:"crop_type"`
			Satellite   string `json:"satellite"`
			FromDate    string `json:"from_date"`
			ToDate      string `json:"to_date"`
			InputPath   string `json:"input_path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		var fromDate, toDate *time.Time
		if req.FromDate != "" {
			t, err := time.Parse(dateLayout, req.FromDate)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "from_date must be YYYY-MM-DD", nil)
				return
			}
			fromDate = &t
		}
		if req.ToDate != "" {
			t, err := time.Parse(dateLayout, req.ToDate)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "to_date must be YYYY-MM-DD", nil)
				return
			}
			toDate = &t
		}

		now := time.Now().UTC()
		dp := &models.DataProduct{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			Name:        req.Name,
			Description: req.Description,
			CropType:    req.CropType,
			Satellite:   req.Satellite,
			FromDate:    fromDate,
			ToDate:      toDate,
			InputPath:   req.InputPath,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.CreateDataProduct(r.Context(), dp); err != nil {
			writeServiceError(w, err)
			return
		}
		response.Created(w, dp)
	}
}

// NewListDataProductsHandler lists the caller's data products.
func NewListDataProductsHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		limit, offset := pagination(r)
		dps, total, err := s.ListDataProducts(r.Context(), ownerID, limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Collection(w, dps, collectionMeta(limit, offset, total))
	}
}

func NewGetDataProductHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlUUID(w, r, "dataProductID")
		if !ok {
			return
		}
		dp, err := s.GetDataProduct(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, dp)
	}
}

// NewUpdateDataProductHandler applies an owner-guarded patch.
func NewUpdateDataProductHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		id, ok := urlUUID(w, r, "dataProductID")
		if !ok {
			return
		}

		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
			IsActive    *bool   `json:"is_active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		dp, err := s.GetDataProduct(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if dp.OwnerID != callerID {
			response.Error(w, http.StatusForbidden, "FORBIDDEN", "Not authorized to modify this data product", nil)
			return
		}

		if req.Name != nil {
			dp.Name = *req.Name
		}
		if req.Description != nil {
			dp.Description = *req.Description
		}
		if req.IsActive != nil {
			dp.IsActive = *req.IsActive
		}
		if err := s.UpdateDataProduct(r.Context(), dp); err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, dp)
	}
}

// NewDeleteDataProductHandler deletes an owner-guarded data product.
func NewDeleteDataProductHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		id, ok := urlUUID(w, r, "dataProductID")
		if !ok {
			return
		}

		dp, err := s.GetDataProduct(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if dp.OwnerID != callerID {
			response.Error(w, http.StatusForbidden, "FORBIDDEN", "Not authorized to delete this data product", nil)
			return
		}
		if err := s.DeleteDataProduct(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
