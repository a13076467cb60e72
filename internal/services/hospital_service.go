package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hospitalhub/internal/caching"
	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
)

const hospitalCacheTTL = 10 * time.Minute

// SchemaProvisioner creates the tables of a hospital's database.
type SchemaProvisioner interface {
	Provision(ctx context.Context, d tenancy.Database) error
}

type CreateHospitalInput struct {
	Name    string
	Address *string
	Phone   *string
	Email   *string
}

type UpdateHospitalInput struct {
	Code    string
	Name    *string
	Address *string
	Phone   *string
	Email   *string
}

// RegisterInput creates a hospital together with its first administrator.
type RegisterInput struct {
	Hospital      CreateHospitalInput
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type HospitalService interface {
	List(ctx context.Context, actor common.Identity) ([]*models.Hospital, error)
	Get(ctx context.Context, code string) (*models.Hospital, error)
	Create(ctx context.Context, input CreateHospitalInput) (*models.Hospital, error)
	Update(ctx context.Context, actor common.Identity, input UpdateHospitalInput) (*models.Hospital, error)
	Deactivate(ctx context.Context, code string) error
	Register(ctx context.Context, input RegisterInput) (*models.Hospital, *models.User, error)
}

type hospitalService struct {
	hospitalRepo repositories.HospitalRepository
	users        UserService
	provisioner  SchemaProvisioner
	cache        caching.CacheService
	tx           Transactor
	logger       zerolog.Logger
}

func NewHospitalService(
	hospitalRepo repositories.HospitalRepository,
	users UserService,
	provisioner SchemaProvisioner,
	cache caching.CacheService,
	tx Transactor,
	logger zerolog.Logger,
) HospitalService {
	return &hospitalService{
		hospitalRepo: hospitalRepo,
		users:        users,
		provisioner:  provisioner,
		cache:        cache,
		tx:           tx,
		logger:       logger,
	}
}

func validateHospitalContact(address, phone, email *string) error {
	if err := common.ValidateOptionalString(address, "address", 500); err != nil {
		return err
	}
	if err := common.ValidateOptionalString(phone, "phone", 50); err != nil {
		return err
	}
	if email != nil && strings.TrimSpace(*email) != "" {
		if err := common.ValidateEmail(*email, "email"); err != nil {
			return err
		}
	}
	return nil
}

func (s *hospitalService) List(ctx context.Context, actor common.Identity) ([]*models.Hospital, error) {
	if actor.Role == models.RoleSuperAdmin {
		return s.hospitalRepo.List(ctx)
	}
	if !actor.HasTenant() {
		return []*models.Hospital{}, nil
	}
	hospital, err := s.Get(ctx, actor.HospitalCode)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return []*models.Hospital{}, nil
		}
		return nil, err
	}
	return []*models.Hospital{hospital}, nil
}

// Get reads through the cache. Cache failures are logged and ignored.
func (s *hospitalService) Get(ctx context.Context, code string) (*models.Hospital, error) {
	cached, err := s.cache.GetHospital(ctx, code)
	if err != nil {
		s.logger.Warn().Err(err).Str("hospital", code).Msg("hospital cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	hospital, err := s.hospitalRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetHospital(ctx, hospital, hospitalCacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("hospital", code).Msg("hospital cache write failed")
	}
	return hospital, nil
}

func (s *hospitalService) invalidate(ctx context.Context, code string) {
	if err := s.cache.DeleteHospital(ctx, code); err != nil {
		s.logger.Warn().Err(err).Str("hospital", code).Msg("hospital cache invalidation failed")
	}
}

func (s *hospitalService) Create(ctx context.Context, input CreateHospitalInput) (*models.Hospital, error) {
	var hospital *models.Hospital
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		hospital, err = s.create(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return hospital, nil
}

// create inserts the hospital row and provisions its schema. It must run
// inside a transaction so a failed provision leaves no hospital behind.
func (s *hospitalService) create(ctx context.Context, input CreateHospitalInput) (*models.Hospital, error) {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return nil, err
	}
	if err := validateHospitalContact(input.Address, input.Phone, input.Email); err != nil {
		return nil, err
	}
	code := tenancy.Slugify(input.Name)
	if code == "" {
		return nil, common.Validation("name", "must contain letters or digits")
	}
	db, err := tenancy.ForTenant(code)
	if err != nil {
		return nil, common.Validation("name", "does not produce a valid hospital code")
	}

	hospital := &models.Hospital{
		ID:       uuid.New(),
		Code:     code,
		Name:     strings.TrimSpace(input.Name),
		Address:  common.StringPtr(common.SafeString(input.Address)),
		Phone:    common.StringPtr(common.SafeString(input.Phone)),
		Email:    common.StringPtr(common.SafeString(input.Email)),
		IsActive: true,
	}
	if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.Conflict(fmt.Sprintf("a hospital with code %q already exists", code))
		}
		return nil, err
	}
	if err := s.provisioner.Provision(ctx, db); err != nil {
		return nil, fmt.Errorf("provision hospital %s: %w", code, err)
	}

	s.logger.Info().Str("hospital", code).Str("schema", db.Schema()).Msg("hospital created")
	return hospital, nil
}

func (s *hospitalService) Update(ctx context.Context, actor common.Identity, input UpdateHospitalInput) (*models.Hospital, error) {
	if err := common.ValidateRequiredString(input.Code, "code"); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(input.Code)
	if actor.Role != models.RoleSuperAdmin && actor.HospitalCode != code {
		return nil, common.NotFound("hospital")
	}
	if input.Name != nil {
		if err := common.ValidateRequiredString(*input.Name, "name"); err != nil {
			return nil, err
		}
	}
	if err := validateHospitalContact(input.Address, input.Phone, input.Email); err != nil {
		return nil, err
	}

	hospital, err := s.hospitalRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		hospital.Name = strings.TrimSpace(*input.Name)
	}
	overwrite(&hospital.Address, input.Address)
	overwrite(&hospital.Phone, input.Phone)
	overwrite(&hospital.Email, input.Email)

	if err := s.hospitalRepo.Update(ctx, hospital); err != nil {
		return nil, err
	}
	s.invalidate(ctx, code)
	return hospital, nil
}

func (s *hospitalService) Deactivate(ctx context.Context, code string) error {
	if err := common.ValidateRequiredString(code, "code"); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if err := s.hospitalRepo.SetActive(ctx, code, false); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	s.logger.Info().Str("hospital", code).Msg("hospital deactivated")
	return nil
}

func (s *hospitalService) Register(ctx context.Context, input RegisterInput) (*models.Hospital, *models.User, error) {
	if err := common.ValidateRequiredString(input.AdminName, "adminName"); err != nil {
		return nil, nil, err
	}
	if err := common.ValidateEmail(input.AdminEmail, "adminEmail"); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(input.AdminPassword); err != nil {
		return nil, nil, err
	}

	var hospital *models.Hospital
	var admin *models.User
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		hospital, err = s.create(ctx, input.Hospital)
		if err != nil {
			return err
		}
		code := hospital.Code
		admin, err = s.users.CreateAccount(ctx, NewAccount{
			Name:         input.AdminName,
			Email:        input.AdminEmail,
			Password:     input.AdminPassword,
			Role:         models.RoleHospitalAdmin,
			HospitalCode: &code,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return hospital, admin, nil
}
