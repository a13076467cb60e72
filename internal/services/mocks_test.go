package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
)

// passthroughTx runs fn directly and counts how often it was asked to.
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

// fakeIDs hands out per-entity sequences following the policy registry.
type fakeIDs struct {
	mu  sync.Mutex
	seq map[string]int64
	err error
}

func newFakeIDs() *fakeIDs {
	return &fakeIDs{seq: map[string]int64{}}
}

func (f *fakeIDs) Next(_ context.Context, db tenancy.Database, entity models.EntityType) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	policy := models.IDPolicies[entity]
	if policy.Scheme == models.IDUUID {
		return uuid.NewString(), nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s/%s", db.Schema(), entity)
	f.seq[key]++
	return policy.Format(f.seq[key]), nil
}

type MockBedRepository struct {
	mock.Mock
}

func (m *MockBedRepository) Create(ctx context.Context, db tenancy.Database, bed *models.Bed) error {
	return m.Called(ctx, db, bed).Error(0)
}

func (m *MockBedRepository) GetByID(ctx context.Context, db tenancy.Database, id string) (*models.Bed, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bed), args.Error(1)
}

func (m *MockBedRepository) GetForUpdate(ctx context.Context, db tenancy.Database, id string) (*models.Bed, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bed), args.Error(1)
}

func (m *MockBedRepository) Update(ctx context.Context, db tenancy.Database, bed *models.Bed) error {
	return m.Called(ctx, db, bed).Error(0)
}

func (m *MockBedRepository) List(ctx context.Context, db tenancy.Database) ([]*models.Bed, error) {
	args := m.Called(ctx, db)
	return args.Get(0).([]*models.Bed), args.Error(1)
}

func (m *MockBedRepository) ListByStatus(ctx context.Context, db tenancy.Database, status models.BedStatus) ([]*models.Bed, error) {
	args := m.Called(ctx, db, status)
	return args.Get(0).([]*models.Bed), args.Error(1)
}

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, db tenancy.Database, p *models.Patient) error {
	return m.Called(ctx, db, p).Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Patient, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetForUpdate(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Patient, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetByUHID(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error) {
	args := m.Called(ctx, db, uhid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetByUHIDForUpdate(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error) {
	args := m.Called(ctx, db, uhid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) Update(ctx context.Context, db tenancy.Database, p *models.Patient) error {
	return m.Called(ctx, db, p).Error(0)
}

func (m *MockPatientRepository) List(ctx context.Context, db tenancy.Database) ([]*models.Patient, error) {
	args := m.Called(ctx, db)
	return args.Get(0).([]*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) ListByStatus(ctx context.Context, db tenancy.Database, status models.PatientStatus) ([]*models.Patient, error) {
	args := m.Called(ctx, db, status)
	return args.Get(0).([]*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) AddAdmission(ctx context.Context, db tenancy.Database, a *models.Admission) error {
	return m.Called(ctx, db, a).Error(0)
}

func (m *MockPatientRepository) ListAdmissions(ctx context.Context, db tenancy.Database, patientID uuid.UUID) ([]*models.Admission, error) {
	args := m.Called(ctx, db, patientID)
	return args.Get(0).([]*models.Admission), args.Error(1)
}

type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) Create(ctx context.Context, db tenancy.Database, c *models.Claim) error {
	return m.Called(ctx, db, c).Error(0)
}

func (m *MockClaimRepository) GetByID(ctx context.Context, db tenancy.Database, id string) (*models.Claim, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *MockClaimRepository) Update(ctx context.Context, db tenancy.Database, c *models.Claim) error {
	return m.Called(ctx, db, c).Error(0)
}

func (m *MockClaimRepository) List(ctx context.Context, db tenancy.Database) ([]*models.Claim, error) {
	args := m.Called(ctx, db)
	return args.Get(0).([]*models.Claim), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, db tenancy.Database, d *models.Document) error {
	return m.Called(ctx, db, d).Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Document, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, db tenancy.Database, d *models.Document) error {
	return m.Called(ctx, db, d).Error(0)
}

func (m *MockDocumentRepository) List(ctx context.Context, db tenancy.Database) ([]*models.Document, error) {
	args := m.Called(ctx, db)
	return args.Get(0).([]*models.Document), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, db tenancy.Database, a *models.Activity) error {
	return m.Called(ctx, db, a).Error(0)
}

func (m *MockActivityRepository) ListRecent(ctx context.Context, db tenancy.Database, limit int) ([]*models.Activity, error) {
	args := m.Called(ctx, db, limit)
	return args.Get(0).([]*models.Activity), args.Error(1)
}

type MockHospitalRepository struct {
	mock.Mock
}

func (m *MockHospitalRepository) Create(ctx context.Context, h *models.Hospital) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockHospitalRepository) GetByCode(ctx context.Context, code string) (*models.Hospital, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hospital), args.Error(1)
}

func (m *MockHospitalRepository) Update(ctx context.Context, h *models.Hospital) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockHospitalRepository) SetActive(ctx context.Context, code string, active bool) error {
	return m.Called(ctx, code, active).Error(0)
}

func (m *MockHospitalRepository) List(ctx context.Context) ([]*models.Hospital, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Hospital), args.Error(1)
}

func (m *MockHospitalRepository) ListActive(ctx context.Context) ([]*models.Hospital, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Hospital), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, hospitalCode string) ([]*models.User, error) {
	args := m.Called(ctx, hospitalCode)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) TenantStats(ctx context.Context, db tenancy.Database) (*models.TenantStats, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantStats), args.Error(1)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, reader, size, contentType).Error(0)
}

func (m *MockObjectStorage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStorage) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockObjectStorage) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetHospital(ctx context.Context, code string) (*models.Hospital, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hospital), args.Error(1)
}

func (m *MockCacheService) SetHospital(ctx context.Context, h *models.Hospital, ttl time.Duration) error {
	return m.Called(ctx, h, ttl).Error(0)
}

func (m *MockCacheService) DeleteHospital(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockCacheService) GetAggregateStats(ctx context.Context) (*models.AggregateStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AggregateStats), args.Error(1)
}

func (m *MockCacheService) SetAggregateStats(ctx context.Context, s *models.AggregateStats, ttl time.Duration) error {
	return m.Called(ctx, s, ttl).Error(0)
}

func (m *MockCacheService) RevokeSession(ctx context.Context, id string, ttl time.Duration) error {
	return m.Called(ctx, id, ttl).Error(0)
}

func (m *MockCacheService) IsSessionRevoked(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) RevokeUserSessions(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	return m.Called(ctx, userID, at, ttl).Error(0)
}

func (m *MockCacheService) UserSessionsRevokedAt(ctx context.Context, userID string) (time.Time, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) Provision(ctx context.Context, d tenancy.Database) error {
	return m.Called(ctx, d).Error(0)
}

func mustTenant(code string) tenancy.Database {
	d, err := tenancy.ForTenant(code)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string {
	return &s
}
