package jobs

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"hospitalhub/internal/models"
	"hospitalhub/internal/services"
	"hospitalhub/internal/tenancy"
)

type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
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

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, db tenancy.Database, action, entityType, referenceID, description, actor string) error {
	return m.Called(ctx, db, action, entityType, referenceID, description, actor).Error(0)
}

func (m *MockActivityService) Create(ctx context.Context, db tenancy.Database, input services.CreateActivityInput, actor string) (*models.Activity, error) {
	args := m.Called(ctx, db, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *MockActivityService) ListRecent(ctx context.Context, db tenancy.Database) ([]*models.Activity, error) {
	args := m.Called(ctx, db)
	return args.Get(0).([]*models.Activity), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) TenantStats(ctx context.Context, db tenancy.Database) (*models.TenantStats, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantStats), args.Error(1)
}

func (m *MockStatsService) Aggregate(ctx context.Context) (*models.AggregateStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AggregateStats), args.Error(1)
}

func (m *MockStatsService) RefreshAggregate(ctx context.Context) (*models.AggregateStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AggregateStats), args.Error(1)
}
