package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agrexhq/agrex/internal/cache"
	"github.com/agrexhq/agrex/internal/store"
	"github.com/agrexhq/agrex/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	datasets map[uuid.UUID]*models.TrainingDataset
	products map[uuid.UUID]*models.DataProduct
	jobs     map[uuid.UUID]*models.Job

	statusUpdates []statusUpdate
	createJobErr  error
}

type statusUpdate struct {
	ID     uuid.UUID
	Status string
}

var mockTransitions = map[string][]string{
	models.JobStatusPending: {models.JobStatusRunning},
	models.JobStatusRunning: {models.JobStatusCompleted, models.JobStatusFailed},
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[uuid.UUID]*models.User),
		datasets: make(map[uuid.UUID]*models.TrainingDataset),
		products: make(map[uuid.UUID]*models.DataProduct),
		jobs:     make(map[uuid.UUID]*models.Job),
	}
}

func (s *mockStore) Ping(_ context.Context) error { return nil }

func (s *mockStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}
func (s *mockStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}
func (s *mockStore) GetUserByUsername(_ context.Context, _ string) (*models.User, error) {
	return nil, store.ErrNotFound
}
func (s *mockStore) UpdateUser(_ context.Context, _ *models.User) error { return nil }
func (s *mockStore) DeleteUser(_ context.Context, _ uuid.UUID) error    { return nil }

func (s *mockStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error { return nil }
func (s *mockStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *mockStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }

func (s *mockStore) CreateCrop(_ context.Context, _ *models.Crop) error { return nil }
func (s *mockStore) GetCrop(_ context.Context, _ uuid.UUID) (*models.Crop, error) {
	return nil, store.ErrNotFound
}
func (s *mockStore) ListCrops(_ context.Context, _, _ int) ([]*models.Crop, int, error) {
	return nil, 0, nil
}
func (s *mockStore) CreateSatellite(_ context.Context, _ *models.Satellite) error { return nil }
func (s *mockStore) GetSatellite(_ context.Context, _ uuid.UUID) (*models.Satellite, error) {
	return nil, store.ErrNotFound
}
func (s *mockStore) ListSatellites(_ context.Context, _, _ int) ([]*models.Satellite, int, error) {
	return nil, 0, nil
}
func (s *mockStore) CreateCalibration(_ context.Context, _ *models.Calibration) error { return nil }
func (s *mockStore) ListCalibrations(_ context.Context, _ store.CalibrationFilter) ([]*models.Calibration, int, error) {
	return nil, 0, nil
}

func (s *mockStore) CreateDataProduct(_ context.Context, dp *models.DataProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[dp.ID] = dp
	return nil
}
func (s *mockStore) GetDataProduct(_ context.Context, id uuid.UUID) (*models.DataProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dp, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return dp, nil
}
func (s *mockStore) ListDataProducts(_ context.Context, _ uuid.UUID, _, _ int) ([]*models.DataProduct, int, error) {
	return nil, 0, nil
}
func (s *mockStore) UpdateDataProduct(_ context.Context, _ *models.DataProduct) error { return nil }
func (s *mockStore) DeleteDataProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	return nil
}

func (s *mockStore) CreateTrainingDataset(_ context.Context, ds *models.TrainingDataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[ds.ID] = ds
	return nil
}
func (s *mockStore) GetTrainingDataset(_ context.Context, id uuid.UUID) (*models.TrainingDataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return ds, nil
}
func (s *mockStore) ListTrainingDatasets(_ context.Context, _ uuid.UUID, _, _ int) ([]*models.TrainingDataset, int, error) {
	return nil, 0, nil
}

func (s *mockStore) CreateJob(_ context.Context, job *models.Job) error {
	if s.createJobErr != nil {
		return s.createJobErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}
func (s *mockStore) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *job
	return &cp, nil
}
func (s *mockStore) ListJobs(_ context.Context, ownerID uuid.UUID, _, _ int) ([]*models.Job, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Job
	for _, j := range s.jobs {
		if j.OwnerID == ownerID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}
func (s *mockStore) UpdateJobStatus(_ context.Context, id uuid.UUID, status string, _ ...store.JobUpdateOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	allowed := false
	for _, a := range mockTransitions[job.Status] {
		if a == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return store.ErrInvalidTransition
	}
	job.Status = status
	s.statusUpdates = append(s.statusUpdates, statusUpdate{ID: id, Status: status})
	return nil
}
func (s *mockStore) DeleteJob(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *mockStore) removeDataset(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.datasets, id)
}

func (s *mockStore) updatesFor(id uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, u := range s.statusUpdates {
		if u.ID == id {
			out = append(out, u.Status)
		}
	}
	return out
}

type mockCache struct {
	mu       sync.Mutex
	statuses map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{statuses: make(map[string]string)}
}

func (c *mockCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *mockCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.statuses, key)
	return nil
}
func (c *mockCache) Ping(_ context.Context) error { return nil }
func (c *mockCache) Close() error                 { return nil }
func (c *mockCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, nil
}
func (c *mockCache) SetJobStatus(_ context.Context, jobID uuid.UUID, status string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[cache.JobStatusKey(jobID)] = status
	return nil
}
func (c *mockCache) GetJobStatus(_ context.Context, jobID uuid.UUID) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.statuses[cache.JobStatusKey(jobID)]
	return s, ok, nil
}

// stubExecutor lets tests control validation and execution outcomes.
type stubExecutor struct {
	kind     string
	validate func(map[string]any) error
	execute  func(ctx context.Context, job *models.Job) (map[string]any, error)
}

func (e *stubExecutor) Kind() string { return e.kind }
func (e *stubExecutor) Validate(params map[string]any) error {
	if e.validate != nil {
		return e.validate(params)
	}
	return nil
}
func (e *stubExecutor) Execute(ctx context.Context, job *models.Job) (map[string]any, error) {
	if e.execute != nil {
		return e.execute(ctx, job)
	}
	return map[string]any{"ok": true}, nil
}

// fixture wires a service with one training-kind stub executor and a
// dataset owned by a fresh user.
func fixture(t *testing.T, exec *stubExecutor) (*Service, *mockStore, *mockCache, *models.User, *models.TrainingDataset) {
	t.Helper()
	ms := newMockStore()
	mc := newMockCache()
	ctx := context.Background()

	owner := &models.User{ID: uuid.New(), Username: "owner"}
	require.NoError(t, ms.CreateUser(ctx, owner))

	ds := &models.TrainingDataset{ID: uuid.New(), OwnerID: owner.ID, Name: "ds", DataType: "ndvi"}
	require.NoError(t, ms.CreateTrainingDataset(ctx, ds))

	if exec.kind == "" {
		exec.kind = models.JobKindTraining
	}
	svc := NewService(ms, mc, NewPool(4), exec)
	return svc, ms, mc, owner, ds
}

// --- Launch ---

func TestLaunch_ReturnsPendingImmediately(t *testing.T) {
	release := make(chan struct{})
	exec := &stubExecutor{
		execute: func(_ context.Context, _ *models.Job) (map[string]any, error) {
			<-release
			return map[string]any{"done": true}, nil
		},
	}
	svc, ms, _, owner, ds := fixture(t, exec)
	ctx := context.Background()

	start := time.Now()
	job, err := svc.Launch(ctx, LaunchParams{
		Kind:       models.JobKindTraining,
		OwnerID:    owner.ID,
		InputRef:   ds.ID,
		Parameters: map[string]any{"model_type": "rf"},
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second, "launch must not wait for execution")
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.NotEqual(t, uuid.Nil, job.ID)

	close(release)
	svc.pool.Drain()

	got, err := svc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, []string{models.JobStatusRunning, models.JobStatusCompleted}, ms.updatesFor(job.ID))
}

func TestLaunch_NoDeduplication(t *testing.T) {
	svc, _, _, owner, ds := fixture(t, &stubExecutor{})
	ctx := context.Background()

	p := LaunchParams{
		Kind:       models.JobKindTraining,
		OwnerID:    owner.ID,
		InputRef:   ds.ID,
		Parameters: map[string]any{"model_type": "rf"},
	}
	first, err := svc.Launch(ctx, p)
	require.NoError(t, err)
	second, err := svc.Launch(ctx, p)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "identical submissions create independent jobs")
	svc.pool.Drain()

	list, total, err := svc.List(ctx, owner.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, total)
}

func TestLaunch_UnknownKind(t *testing.T) {
	svc, _, _, owner, ds := fixture(t, &stubExecutor{})

	_, err := svc.Launch(context.Background(), LaunchParams{
		Kind:     "image-stitching",
		OwnerID:  owner.ID,
		InputRef: ds.ID,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLaunch_ValidationFailure(t *testing.T) {
	exec := &stubExecutor{
		validate: func(_ map[string]any) error {
			return ErrValidation
		},
	}
	svc, ms, _, owner, ds := fixture(t, exec)

	_, err := svc.Launch(context.Background(), LaunchParams{
		Kind:     models.JobKindTraining,
		OwnerID:  owner.ID,
		InputRef: ds.ID,
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, ms.jobs, "no job row on validation failure")
}

func TestLaunch_ForbiddenForNonOwner(t *testing.T) {
	svc, _, _, _, ds := fixture(t, &stubExecutor{})

	_, err := svc.Launch(context.Background(), LaunchParams{
		Kind:     models.JobKindTraining,
		OwnerID:  uuid.New(),
		InputRef: ds.ID,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLaunch_InputNotFound(t *testing.T) {
	svc, _, _, owner, _ := fixture(t, &stubExecutor{})

	_, err := svc.Launch(context.Background(), LaunchParams{
		Kind:     models.JobKindTraining,
		OwnerID:  owner.ID,
		InputRef: uuid.New(),
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Execution outcomes ---

func TestRun_ExecutorErrorMarksFailed(t *testing.T) {
	exec := &stubExecutor{
		execute: func(_ context.Context, _ *models.Job) (map[string]any, error) {
			return nil, errors.New("convergence failure")
		},
	}
	svc, ms, _, owner, ds := fixture(t, exec)
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	got, err := svc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Equal(t, []string{models.JobStatusRunning, models.JobStatusFailed}, ms.updatesFor(job.ID))
}

func TestRun_PanicMarksFailed(t *testing.T) {
	exec := &stubExecutor{
		execute: func(_ context.Context, _ *models.Job) (map[string]any, error) {
			panic("executor bug")
		},
	}
	svc, _, _, owner, ds := fixture(t, exec)
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	got, err := svc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
}

func TestRun_InputGoneLeavesJobRunning(t *testing.T) {
	var ms *mockStore
	var ds *models.TrainingDataset
	exec := &stubExecutor{
		execute: func(_ context.Context, _ *models.Job) (map[string]any, error) {
			// The dataset vanished between launch and execution.
			ms.removeDataset(ds.ID)
			return nil, store.ErrNotFound
		},
	}
	svc, st, _, owner, dataset := fixture(t, exec)
	ms, ds = st, dataset
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	// The row is left unadvanced, not forced to failed.
	got, err := svc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, got.Status)
}

func TestRun_RowDeletedMidFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	exec := &stubExecutor{
		execute: func(_ context.Context, _ *models.Job) (map[string]any, error) {
			close(started)
			<-release
			return map[string]any{"ok": true}, nil
		},
	}
	svc, ms, _, owner, ds := fixture(t, exec)
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)

	<-started
	require.NoError(t, svc.Delete(ctx, job.ID, owner.ID))
	close(release)
	svc.pool.Drain()

	// The completed write finds the row gone; nothing is recreated.
	_, err = svc.Status(ctx, job.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, ms.jobs)
}

// --- Status / CachedStatus ---

func TestStatus_OpenToAnyCaller(t *testing.T) {
	svc, _, _, owner, ds := fixture(t, &stubExecutor{})
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	// Status has no caller argument at all; any authenticated user may poll.
	got, err := svc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestCachedStatus_PrefersCache(t *testing.T) {
	svc, _, mc, owner, ds := fixture(t, &stubExecutor{})
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	// Poison the cache to prove the fast path wins.
	require.NoError(t, mc.SetJobStatus(ctx, job.ID, "cached-value", time.Minute))

	status, err := svc.CachedStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached-value", status)
}

func TestCachedStatus_FallsBackToStore(t *testing.T) {
	svc, _, mc, owner, ds := fixture(t, &stubExecutor{})
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	require.NoError(t, mc.Delete(ctx, cache.JobStatusKey(job.ID)))

	status, err := svc.CachedStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, status)
}

func TestCachedStatus_NotFound(t *testing.T) {
	svc, _, _, _, _ := fixture(t, &stubExecutor{})

	_, err := svc.CachedStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Update / Delete guards ---

func TestUpdate_ForbiddenForNonOwner(t *testing.T) {
	svc, _, _, owner, ds := fixture(t, &stubExecutor{})
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	status := models.JobStatusFailed
	_, err = svc.Update(ctx, job.ID, uuid.New(), UpdatePatch{Status: &status})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdate_RejectsBackwardTransition(t *testing.T) {
	svc, _, _, owner, ds := fixture(t, &stubExecutor{})
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	// Job is completed; no transition leaves a terminal state.
	status := models.JobStatusPending
	_, err = svc.Update(ctx, job.ID, owner.ID, UpdatePatch{Status: &status})
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestDelete_ForbiddenForNonOwner(t *testing.T) {
	svc, _, _, owner, ds := fixture(t, &stubExecutor{})
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	err = svc.Delete(ctx, job.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Status(ctx, job.ID)
	assert.NoError(t, err, "job must survive a forbidden delete")
}

func TestDelete_RemovesCacheEntry(t *testing.T) {
	svc, _, mc, owner, ds := fixture(t, &stubExecutor{})
	ctx := context.Background()

	job, err := svc.Launch(ctx, LaunchParams{
		Kind: models.JobKindTraining, OwnerID: owner.ID, InputRef: ds.ID,
	})
	require.NoError(t, err)
	svc.pool.Drain()

	require.NoError(t, svc.Delete(ctx, job.ID, owner.ID))

	_, found, err := mc.GetJobStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, found)
}
