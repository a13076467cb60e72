package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"hospitalhub/internal/common"
	"hospitalhub/internal/middleware"
	"hospitalhub/internal/models"
	"hospitalhub/internal/services"
	"hospitalhub/internal/tenancy"
)

var (
	acmeUser   = common.Identity{UserID: "7", Role: models.RoleBasicUser, HospitalCode: "acme", SessionID: "s-7"}
	acmeAdmin  = common.Identity{UserID: "2", Role: models.RoleHospitalAdmin, HospitalCode: "acme", SessionID: "s-2"}
	superAdmin = common.Identity{UserID: "1", Role: models.RoleSuperAdmin, SessionID: "s-1"}
)

type fakeHospitals map[string]*models.Hospital

func (f fakeHospitals) Get(_ context.Context, code string) (*models.Hospital, error) {
	if h, ok := f[code]; ok {
		return h, nil
	}
	return nil, common.NotFound("hospital")
}

func newRBAC() *middleware.RBACMiddleware {
	return middleware.NewRBACMiddleware(fakeHospitals{"acme": {Code: "acme", IsActive: true}})
}

func acmeDB() tenancy.Database {
	db, err := tenancy.ForTenant("acme")
	if err != nil {
		panic(err)
	}
	return db
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// serve runs handler behind Require(capability) for identity and renders any
// returned error the way the server does.
func serve(req *http.Request, identity *common.Identity, capability models.Capability, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	e.HTTPErrorHandler = common.NewHTTPErrorHandler(zerolog.Nop())
	if identity != nil {
		req = req.WithContext(common.WithIdentity(req.Context(), *identity))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := newRBAC().Require(capability)(handler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

type MockBedService struct {
	mock.Mock
}

func (m *MockBedService) List(ctx context.Context, db tenancy.Database) ([]*models.Bed, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bed), args.Error(1)
}

func (m *MockBedService) Create(ctx context.Context, db tenancy.Database, input services.CreateBedInput) (*models.Bed, error) {
	args := m.Called(ctx, db, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bed), args.Error(1)
}

func (m *MockBedService) Update(ctx context.Context, db tenancy.Database, input services.UpdateBedInput) (*models.Bed, error) {
	args := m.Called(ctx, db, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bed), args.Error(1)
}

type MockPatientService struct {
	mock.Mock
}

func (m *MockPatientService) List(ctx context.Context, db tenancy.Database) ([]*models.Patient, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Patient), args.Error(1)
}

func (m *MockPatientService) SearchByUHID(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error) {
	args := m.Called(ctx, db, uhid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientService) Create(ctx context.Context, db tenancy.Database, input services.CreatePatientInput, actor string) (*models.Patient, error) {
	args := m.Called(ctx, db, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientService) Update(ctx context.Context, db tenancy.Database, input services.UpdatePatientInput) (*models.Patient, error) {
	args := m.Called(ctx, db, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientService) AssignBed(ctx context.Context, db tenancy.Database, bedID, patientID, actor string) (*models.Patient, *models.Bed, error) {
	args := m.Called(ctx, db, bedID, patientID, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Patient), args.Get(1).(*models.Bed), args.Error(2)
}

func (m *MockPatientService) Discharge(ctx context.Context, db tenancy.Database, patientID string, notes *string, actor string) (*models.Patient, error) {
	args := m.Called(ctx, db, patientID, notes, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientService) Readmit(ctx context.Context, db tenancy.Database, input services.ReadmitInput, actor string) (*models.Patient, error) {
	args := m.Called(ctx, db, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

type MockClaimService struct {
	mock.Mock
}

func (m *MockClaimService) List(ctx context.Context, db tenancy.Database) ([]*models.Claim, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Claim), args.Error(1)
}

func (m *MockClaimService) Create(ctx context.Context, db tenancy.Database, input services.CreateClaimInput, actor string) (*models.Claim, error) {
	args := m.Called(ctx, db, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *MockClaimService) Update(ctx context.Context, db tenancy.Database, input services.UpdateClaimInput) (*models.Claim, error) {
	args := m.Called(ctx, db, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context, db tenancy.Database) ([]*models.Document, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

func (m *MockDocumentService) Upload(ctx context.Context, db tenancy.Database, input services.UploadDocumentInput, actor string) (*models.Document, error) {
	args := m.Called(ctx, db, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, db tenancy.Database, input services.UpdateDocumentInput) (*models.Document, error) {
	args := m.Called(ctx, db, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, db tenancy.Database, id string) (string, error) {
	args := m.Called(ctx, db, id)
	return args.String(0), args.Error(1)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Activity), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, actor common.Identity) ([]*models.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, actor common.Identity, input services.CreateUserInput) (*models.User, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actor common.Identity, input services.UpdateUserInput) (*models.User, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ChangeRole(ctx context.Context, actor common.Identity, id, role string) (*models.User, error) {
	args := m.Called(ctx, actor, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Deactivate(ctx context.Context, actor common.Identity, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockUserService) CreateAccount(ctx context.Context, account services.NewAccount) (*models.User, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

type MockHospitalService struct {
	mock.Mock
}

func (m *MockHospitalService) List(ctx context.Context, actor common.Identity) ([]*models.Hospital, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Hospital), args.Error(1)
}

func (m *MockHospitalService) Get(ctx context.Context, code string) (*models.Hospital, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hospital), args.Error(1)
}

func (m *MockHospitalService) Create(ctx context.Context, input services.CreateHospitalInput) (*models.Hospital, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hospital), args.Error(1)
}

func (m *MockHospitalService) Update(ctx context.Context, actor common.Identity, input services.UpdateHospitalInput) (*models.Hospital, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hospital), args.Error(1)
}

func (m *MockHospitalService) Deactivate(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockHospitalService) Register(ctx context.Context, input services.RegisterInput) (*models.Hospital, *models.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Hospital), args.Get(1).(*models.User), args.Error(2)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Login(ctx context.Context, email, password string) (*services.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockSessionService) Issue(user *models.User) (string, *services.SessionClaims, error) {
	args := m.Called(user)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*services.SessionClaims), args.Error(2)
}

func (m *MockSessionService) Keyfunc(token *jwt.Token) (interface{}, error) {
	args := m.Called(token)
	return args.Get(0), args.Error(1)
}

func (m *MockSessionService) Revoke(ctx context.Context, identity common.Identity) error {
	return m.Called(ctx, identity).Error(0)
}

func (m *MockSessionService) IsRevoked(ctx context.Context, identity common.Identity) bool {
	return m.Called(ctx, identity).Bool(0)
}

func (m *MockSessionService) Close() {
	m.Called()
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
