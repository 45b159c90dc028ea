package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/agrexhq/agrex/internal/api/response"
	"github.com/agrexhq/agrex/internal/store"
	"github.com/agrexhq/agrex/pkg/models"
	"github.com/google/uuid"
)

// Catalog entities (crops, satellites, calibrations) are shared reference
// data: any authenticated user may create and read them.

func NewCreateCropHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name              string `json:"name"`
			Description       string `json:"description"`
			GrowthPeriod      int    `json:"growth_period"`
			WaterRequirements string `json:"water_requirements"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		crop := &models.Crop{
			ID:                uuid.New(),
			Name:              req.Name,
			Description:       req.Description,
			GrowthPeriod:      req.GrowthPeriod,
			WaterRequirements: req.WaterRequirements,
			CreatedAt:         time.Now().UTC(),
		}
		if err := s.CreateCrop(r.Context(), crop); err != nil {
			writeServiceError(w, err)
			return
		}
		response.Created(w, crop)
	}
}

func NewListCropsHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)
		crops, total, err := s.ListCrops(r.Context(), limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Collection(w, crops, collectionMeta(limit, offset, total))
	}
}

func NewGetCropHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlUUID(w, r, "cropID")
		if !ok {
			return
		}
		crop, err := s.GetCrop(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, crop)
	}
}

func NewCreateSatelliteHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string  `json:"name"`
			Description string  `json:"description"`
			Resolution  float64 `json:"resolution"`
			IsPremium   bool    `json:"is_premium"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		sat := &models.Satellite{
			ID:          uuid.New(),
			Name:        req.Name,
			Description: req.Description,
			Resolution:  req.Resolution,
			IsPremium:   req.IsPremium,
			Active:      true,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.CreateSatellite(r.Context(), sat); err != nil {
			writeServiceError(w, err)
			return
		}
		response.Created(w, sat)
	}
}

func NewListSatellitesHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)
		sats, total, err := s.ListSatellites(r.Context(), limit, offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Collection(w, sats, collectionMeta(limit, offset, total))
	}
}

func NewGetSatelliteHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlUUID(w, r, "satelliteID")
		if !ok {
			return
		}
		sat, err := s.GetSatellite(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, sat)
	}
}

// NewCreateCalibrationHandler validates both foreign keys before insert,
// returning 404 when either the crop or the satellite does not exist.
func NewCreateCalibrationHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CropID      uuid.UUID `json:"crop_id"`
			SatelliteID uuid.UUID `json:"satellite_id"`
			Coefficient float64   `json:"coefficient"`
			Confidence  float64   `json:"confidence"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if _, err := s.GetCrop(r.Context(), req.CropID); err != nil {
			writeServiceError(w, err)
			return
		}
		if _, err := s.GetSatellite(r.Context(), req.SatelliteID); err != nil {
			writeServiceError(w, err)
			return
		}

		cal := &models.Calibration{
			ID:          uuid.New(),
			CropID:      req.CropID,
			SatelliteID: req.SatelliteID,
			Coefficient: req.Coefficient,
			Confidence:  req.Confidence,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.CreateCalibration(r.Context(), cal); err != nil {
			writeServiceError(w, err)
			return
		}
		response.Created(w, cal)
	}
}

func NewListCalibrationsHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)
		filter := store.CalibrationFilter{Limit: limit, Offset: offset}
		if v := r.URL.Query().Get("crop_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "crop_id must be a valid UUID", nil)
				return
			}
			filter.CropID = id
		}
		if v := r.URL.Query().Get("satellite_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "satellite_id must be a valid UUID", nil)
				return
			}
			filter.SatelliteID = id
		}

		cals, total, err := s.ListCalibrations(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Collection(w, cals, collectionMeta(limit, offset, total))
	}
}
