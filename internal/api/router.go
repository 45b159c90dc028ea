package api

import (
	"net/http"

	mw "github.com/agrexhq/agrex/internal/api/middleware"
	"github.com/agrexhq/agrex/internal/api/response"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	RegisterUserHandler http.HandlerFunc
	GetUserHandler      http.HandlerFunc
	UpdateUserHandler   http.HandlerFunc
	DeleteUserHandler   http.HandlerFunc

	CreateCropHandler        http.HandlerFunc
	ListCropsHandler         http.HandlerFunc
	GetCropHandler           http.HandlerFunc
	CreateSatelliteHandler   http.HandlerFunc
	ListSatellitesHandler    http.HandlerFunc
	GetSatelliteHandler      http.HandlerFunc
	CreateCalibrationHandler http.HandlerFunc
	ListCalibrationsHandler  http.HandlerFunc

	CreateDataProductHandler http.HandlerFunc
	ListDataProductsHandler  http.HandlerFunc
	GetDataProductHandler    http.HandlerFunc
	UpdateDataProductHandler http.HandlerFunc
	DeleteDataProductHandler http.HandlerFunc

	CreateDatasetHandler http.HandlerFunc
	ListDatasetsHandler  http.HandlerFunc
	GetDatasetHandler    http.HandlerFunc

	LaunchJobHandler http.HandlerFunc
	ListJobsHandler  http.HandlerFunc
	GetJobHandler    http.HandlerFunc
	UpdateJobHandler http.HandlerFunc
	DeleteJobHandler http.HandlerFunc
	WatchJobHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Post("/api/v1/users", orNotImplemented(deps.RegisterUserHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/users/{userID}", orNotImplemented(deps.GetUserHandler))
		r.Put("/api/v1/users/{userID}", orNotImplemented(deps.UpdateUserHandler))
		r.Delete("/api/v1/users/{userID}", orNotImplemented(deps.DeleteUserHandler))

		r.Post("/api/v1/crops", orNotImplemented(deps.CreateCropHandler))
		r.Get("/api/v1/crops", orNotImplemented(deps.ListCropsHandler))
		r.Get("/api/v1/crops/{cropID}", orNotImplemented(deps.GetCropHandler))

		r.Post("/api/v1/satellites", orNotImplemented(deps.CreateSatelliteHandler))
		r.Get("/api/v1/satellites", orNotImplemented(deps.ListSatellitesHandler))
		r.Get("/api/v1/satellites/{satelliteID}", orNotImplemented(deps.GetSatelliteHandler))

		r.Post("/api/v1/calibrations", orNotImplemented(deps.CreateCalibrationHandler))
		r.Get("/api/v1/calibrations", orNotImplemented(deps.ListCalibrationsHandler))

		r.Post("/api/v1/data-products", orNotImplemented(deps.CreateDataProductHandler))
		r.Get("/api/v1/data-products", orNotImplemented(deps.ListDataProductsHandler))
		r.Get("/api/v1/data-products/{dataProductID}", orNotImplemented(deps.GetDataProductHandler))
		r.Put("/api/v1/data-products/{dataProductID}", orNotImplemented(deps.UpdateDataProductHandler))
		r.Delete("/api/v1/data-products/{dataProductID}", orNotImplemented(deps.DeleteDataProductHandler))

		r.Post("/api/v1/training-datasets", orNotImplemented(deps.CreateDatasetHandler))
		r.Get("/api/v1/training-datasets", orNotImplemented(deps.ListDatasetsHandler))
		r.Get("/api/v1/training-datasets/{datasetID}", orNotImplemented(deps.GetDatasetHandler))

		r.Post("/api/v1/jobs", orNotImplemented(deps.LaunchJobHandler))
		r.Get("/api/v1/jobs", orNotImplemented(deps.ListJobsHandler))
		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))
		r.Put("/api/v1/jobs/{jobID}", orNotImplemented(deps.UpdateJobHandler))
		r.Delete("/api/v1/jobs/{jobID}", orNotImplemented(deps.DeleteJobHandler))
		r.Get("/api/v1/jobs/{jobID}/watch", orNotImplemented(deps.WatchJobHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
