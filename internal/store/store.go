package store

import (
	"context"
	"errors"

	"github.com/agrexhq/agrex/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrInvalidTransition = errors.New("invalid job status transition")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error

	CreateCrop(ctx context.Context, crop *models.Crop) error
	GetCrop(ctx context.Context, id uuid.UUID) (*models.Crop, error)
	ListCrops(ctx context.Context, limit, offset int) ([]*models.Crop, int, error)

	CreateSatellite(ctx context.Context, sat *models.Satellite) error
	GetSatellite(ctx context.Context, id uuid.UUID) (*models.Satellite, error)
	ListSatellites(ctx context.Context, limit, offset int) ([]*models.Satellite, int, error)

	CreateCalibration(ctx context.Context, cal *models.Calibration) error
	ListCalibrations(ctx context.Context, filter CalibrationFilter) ([]*models.Calibration, int, error)

	CreateDataProduct(ctx context.Context, dp *models.DataProduct) error
	GetDataProduct(ctx context.Context, id uuid.UUID) (*models.DataProduct, error)
	ListDataProducts(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.DataProduct, int, error)
	UpdateDataProduct(ctx context.Context, dp *models.DataProduct) error
	DeleteDataProduct(ctx context.Context, id uuid.UUID) error

	CreateTrainingDataset(ctx context.Context, ds *models.TrainingDataset) error
	GetTrainingDataset(ctx context.Context, id uuid.UUID) (*models.TrainingDataset, error)
	ListTrainingDatasets(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.TrainingDataset, int, error)

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Job, int, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

type CalibrationFilter struct {
	CropID      uuid.UUID
	SatelliteID uuid.UUID
	Limit       int
	Offset      int
}

type jobUpdateParams struct {
	ErrorMessage *string
	Result       map[string]any
}

type JobUpdateOption func(*jobUpdateParams)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.ErrorMessage = &msg
	}
}

func WithResult(result map[string]any) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Result = result
	}
}
