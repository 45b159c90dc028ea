package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrexhq/agrex/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, is_active, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, is_active, created_at, updated_at
		 FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $2, first_name = $3, last_name = $4, is_active = $5, updated_at = $6
		 WHERE id = $1`,
		user.ID, user.Email, user.FirstName, user.LastName, user.IsActive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, key_hash, key_prefix, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

// --- Crops ---

func (s *PostgresStore) CreateCrop(ctx context.Context, crop *models.Crop) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO crops (id, name, description, growth_period, water_requirements, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		crop.ID, crop.Name, crop.Description, crop.GrowthPeriod, crop.WaterRequirements, crop.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create crop: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCrop(ctx context.Context, id uuid.UUID) (*models.Crop, error) {
	var c models.Crop
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, growth_period, water_requirements, created_at
		 FROM crops WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.GrowthPeriod, &c.WaterRequirements, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get crop: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListCrops(ctx context.Context, limit, offset int) ([]*models.Crop, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM crops`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count crops: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, growth_period, water_requirements, created_at
		 FROM crops ORDER BY name LIMIT $1 OFFSET $2`, normalizeLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list crops: %w", err)
	}
	defer rows.Close()

	var crops []*models.Crop
	for rows.Next() {
		var c models.Crop
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.GrowthPeriod,
			&c.WaterRequirements, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan crop: %w", err)
		}
		crops = append(crops, &c)
	}
	return crops, total, rows.Err()
}

// --- Satellites ---

func (s *PostgresStore) CreateSatellite(ctx context.Context, sat *models.Satellite) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO satellites (id, name, description, resolution, is_premium, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sat.ID, sat.Name, sat.Description, sat.Resolution, sat.IsPremium, sat.Active, sat.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create satellite: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSatellite(ctx context.Context, id uuid.UUID) (*models.Satellite, error) {
	var sat models.Satellite
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, resolution, is_premium, active, created_at
		 FROM satellites WHERE id = $1`, id,
	).Scan(&sat.ID, &sat.Name, &sat.Description, &sat.Resolution, &sat.IsPremium, &sat.Active, &sat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get satellite: %w", err)
	}
	return &sat, nil
}

func (s *PostgresStore) ListSatellites(ctx context.Context, limit, offset int) ([]*models.Satellite, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM satellites`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count satellites: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, resolution, is_premium, active, created_at
		 FROM satellites ORDER BY name LIMIT $1 OFFSET $2`, normalizeLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list satellites: %w", err)
	}
	defer rows.Close()

	var sats []*models.Satellite
	for rows.Next() {
		var sat models.Satellite
		if err := rows.Scan(&sat.ID, &sat.Name, &sat.Description, &sat.Resolution,
			&sat.IsPremium, &sat.Active, &sat.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan satellite: %w", err)
		}
		sats = append(sats, &sat)
	}
	return sats, total, rows.Err()
}

// --- Calibrations ---

func (s *PostgresStore) CreateCalibration(ctx context.Context, cal *models.Calibration) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO calibrations (id, crop_id, satellite_id, coefficient, confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		cal.ID, cal.CropID, cal.SatelliteID, cal.Coefficient, cal.Confidence, cal.CreatedAt)
	if err != nil {
		return fmt.Errorf("create calibration: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCalibrations(ctx context.Context, filter CalibrationFilter) ([]*models.Calibration, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.CropID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("crop_id = $%d", argIdx))
		args = append(args, filter.CropID)
		argIdx++
	}
	if filter.SatelliteID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("satellite_id = $%d", argIdx))
		args = append(args, filter.SatelliteID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM calibrations WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calibrations: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, crop_id, satellite_id, coefficient, confidence, created_at
		 FROM calibrations WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, normalizeLimit(filter.Limit), filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list calibrations: %w", err)
	}
	defer rows.Close()

	var cals []*models.Calibration
	for rows.Next() {
		var c models.Calibration
		if err := rows.Scan(&c.ID, &c.CropID, &c.SatelliteID, &c.Coefficient,
			&c.Confidence, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan calibration: %w", err)
		}
		cals = append(cals, &c)
	}
	return cals, total, rows.Err()
}

// --- Data Products ---

func (s *PostgresStore) CreateDataProduct(ctx context.Context, dp *models.DataProduct) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO data_products (id, owner_id, name, description, crop_type, satellite, from_date, to_date, input_path, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		dp.ID, dp.OwnerID, dp.Name, dp.Description, dp.CropType, dp.Satellite,
		dp.FromDate, dp.ToDate, dp.InputPath, dp.IsActive, dp.CreatedAt, dp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create data product: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDataProduct(ctx context.Context, id uuid.UUID) (*models.DataProduct, error) {
	var dp models.DataProduct
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, description, crop_type, satellite, from_date, to_date, input_path, is_active, created_at, updated_at
		 FROM data_products WHERE id = $1`, id,
	).Scan(&dp.ID, &dp.OwnerID, &dp.Name, &dp.Description, &dp.CropType, &dp.Satellite,
		&dp.FromDate, &dp.ToDate, &dp.InputPath, &dp.IsActive, &dp.CreatedAt, &dp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get data product: %w", err)
	}
	return &dp, nil
}

func (s *PostgresStore) ListDataProducts(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.DataProduct, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM data_products WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count data products: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, description, crop_type, satellite, from_date, to_date, input_path, is_active, created_at, updated_at
		 FROM data_products WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list data products: %w", err)
	}
	defer rows.Close()

	var dps []*models.DataProduct
	for rows.Next() {
		var dp models.DataProduct
		if err := rows.Scan(&dp.ID, &dp.OwnerID, &dp.Name, &dp.Description, &dp.CropType,
			&dp.Satellite, &dp.FromDate, &dp.ToDate, &dp.InputPath, &dp.IsActive,
			&dp.CreatedAt, &dp.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan data product: %w", err)
		}
		dps = append(dps, &dp)
	}
	return dps, total, rows.Err()
}

func (s *PostgresStore) UpdateDataProduct(ctx context.Context, dp *models.DataProduct) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE data_products SET name = $2, description = $3, is_active = $4, updated_at = $5
		 WHERE id = $1`,
		dp.ID, dp.Name, dp.Description, dp.IsActive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update data product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteDataProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM data_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete data product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Training Datasets ---

func (s *PostgresStore) CreateTrainingDataset(ctx context.Context, ds *models.TrainingDataset) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO training_datasets (id, owner_id, name, data_path, data_type, validation_split, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ds.ID, ds.OwnerID, ds.Name, ds.DataPath, ds.DataType, ds.ValidationSplit,
		ds.CreatedAt, ds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create training dataset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTrainingDataset(ctx context.Context, id uuid.UUID) (*models.TrainingDataset, error) {
	var ds models.TrainingDataset
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, data_path, data_type, validation_split, created_at, updated_at
		 FROM training_datasets WHERE id = $1`, id,
	).Scan(&ds.ID, &ds.OwnerID, &ds.Name, &ds.DataPath, &ds.DataType,
		&ds.ValidationSplit, &ds.CreatedAt, &ds.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get training dataset: %w", err)
	}
	return &ds, nil
}

func (s *PostgresStore) ListTrainingDatasets(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.TrainingDataset, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM training_datasets WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count training datasets: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, data_path, data_type, validation_split, created_at, updated_at
		 FROM training_datasets WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list training datasets: %w", err)
	}
	defer rows.Close()

	var dss []*models.TrainingDataset
	for rows.Next() {
		var ds models.TrainingDataset
		if err := rows.Scan(&ds.ID, &ds.OwnerID, &ds.Name, &ds.DataPath, &ds.DataType,
			&ds.ValidationSplit, &ds.CreatedAt, &ds.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan training dataset: %w", err)
		}
		dss = append(dss, &ds)
	}
	return dss, total, rows.Err()
}

// --- Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, owner_id, kind, input_ref, parameters, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.OwnerID, job.Kind, job.InputRef, job.Parameters, job.Status,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, kind, input_ref, parameters, status, result, error_message, started_at, completed_at, created_at, updated_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.OwnerID, &j.Kind, &j.InputRef, &j.Parameters, &j.Status,
		&j.Result, &j.ErrorMessage, &j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Job, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, kind, input_ref, parameters, status, result, error_message, started_at, completed_at, created_at, updated_at
		 FROM jobs WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.OwnerID, &j.Kind, &j.InputRef, &j.Parameters,
			&j.Status, &j.Result, &j.ErrorMessage, &j.StartedAt, &j.CompletedAt,
			&j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, total, rows.Err()
}

var validTransitions = map[string][]string{
	models.JobStatusPending: {models.JobStatusRunning},
	models.JobStatusRunning: {models.JobStatusCompleted, models.JobStatusFailed},
}

// UpdateJobStatus advances a job through its lifecycle. Transitions are
// forward-only; result may accompany only a completed status and an error
// message only a failed status.
func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := &jobUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}

	if params.Result != nil && status != models.JobStatusCompleted {
		return fmt.Errorf("%w: result requires completed status, got %s", ErrInvalidTransition, status)
	}
	if params.ErrorMessage != nil && status != models.JobStatusFailed {
		return fmt.Errorf("%w: error message requires failed status, got %s", ErrInvalidTransition, status)
	}

	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	allowed := validTransitions[currentStatus]
	valid := false
	for _, a := range allowed {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE jobs SET status = $2, updated_at = $3`
	args := []any{id, status, now}
	argIdx := 4

	if status == models.JobStatusRunning {
		query += fmt.Sprintf(", started_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if params.Result != nil {
		query += fmt.Sprintf(", result = $%d", argIdx)
		args = append(args, params.Result)
		argIdx++
	}
	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}

	query += " WHERE id = $1"

	_, err = s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 500 {
		return 500
	}
	return limit
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
