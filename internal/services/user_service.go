package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"hospitalhub/internal/caching"
	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
)

const minPasswordLength = 8

// NewAccount is an already authorized account creation.
type NewAccount struct {
	Name         string
	Email        string
	Password     string
	Role         models.Role
	HospitalCode *string
}

type CreateUserInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	HospitalCode *string
}

type UpdateUserInput struct {
	ID       string
	Name     *string
	Email    *string
	Password *string
}

// UserService manages accounts in the main database. Every method taking an
// actor applies the role scoping rules: SuperAdmin sees everyone, a
// HospitalAdmin only the accounts of its own hospital.
type UserService interface {
	List(ctx context.Context, actor common.Identity) ([]*models.User, error)
	Create(ctx context.Context, actor common.Identity, input CreateUserInput) (*models.User, error)
	Update(ctx context.Context, actor common.Identity, input UpdateUserInput) (*models.User, error)
	ChangeRole(ctx context.Context, actor common.Identity, id, role string) (*models.User, error)
	Deactivate(ctx context.Context, actor common.Identity, id string) error

	CreateAccount(ctx context.Context, account NewAccount) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	EnsureSuperAdmin(ctx context.Context, email, password string) error
}

type userService struct {
	userRepo repositories.UserRepository
	ids      IDGenerator
	cache    caching.CacheService
	logger   zerolog.Logger
	cost     int
	now      func() time.Time
}

func NewUserService(userRepo repositories.UserRepository, ids IDGenerator, cache caching.CacheService, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		ids:      ids,
		cache:    cache,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

var errInvalidCredentials = fmt.Errorf("invalid email or password: %w", common.ErrUnauthenticated)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return common.Validation("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > 72 {
		return common.Validation("password", "cannot exceed 72 characters")
	}
	return nil
}

// revokeSessions ends every session issued to userID so far. The account
// change has already been stored, so a cache failure is only logged.
func (s *userService) revokeSessions(ctx context.Context, userID, reason string) {
	if err := s.cache.RevokeUserSessions(ctx, userID, s.now().UTC(), MaxSessionTTL); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("reason", reason).Msg("failed to revoke user sessions")
		return
	}
	s.logger.Info().Str("user_id", userID).Str("reason", reason).Msg("user sessions revoked")
}

// inScope hides accounts outside the actor's hospital as not found.
func inScope(actor common.Identity, target *models.User) error {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleHospitalAdmin:
		if target.Role != models.RoleSuperAdmin && target.HospitalCode != nil && *target.HospitalCode == actor.HospitalCode {
			return nil
		}
		return common.NotFound("user")
	default:
		return common.Forbidden("user management requires an administrator")
	}
}

func (s *userService) List(ctx context.Context, actor common.Identity) ([]*models.User, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return s.userRepo.List(ctx, "")
	case models.RoleHospitalAdmin:
		if !actor.HasTenant() {
			return nil, common.Forbidden("no hospital bound to this session")
		}
		return s.userRepo.List(ctx, actor.HospitalCode)
	default:
		return nil, common.Forbidden("user management requires an administrator")
	}
}

func (s *userService) Create(ctx context.Context, actor common.Identity, input CreateUserInput) (*models.User, error) {
	role, err := models.ParseRole(strings.TrimSpace(input.Role))
	if err != nil {
		return nil, common.Validation("role", "must be SuperAdmin, HospitalAdmin or BasicUser")
	}
	if !actor.Role.CanAssign(role) {
		return nil, common.Forbidden(fmt.Sprintf("%s cannot create %s accounts", actor.Role, role))
	}

	account := NewAccount{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     role,
	}
	switch {
	case role == models.RoleSuperAdmin:
		account.HospitalCode = nil
	case actor.Role == models.RoleHospitalAdmin:
		code := actor.HospitalCode
		account.HospitalCode = &code
	default:
		account.HospitalCode = common.StringPtr(common.SafeString(input.HospitalCode))
		if account.HospitalCode == nil {
			return nil, common.Validation("hospitalCode", "is required for hospital accounts")
		}
		if err := tenancy.ValidateCode(*account.HospitalCode); err != nil {
			return nil, common.Validation("hospitalCode", "is not a valid hospital code")
		}
	}
	return s.CreateAccount(ctx, account)
}

func (s *userService) CreateAccount(ctx context.Context, account NewAccount) (*models.User, error) {
	if err := common.ValidateRequiredString(account.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateEmail(account.Email, "email"); err != nil {
		return nil, err
	}
	if err := validatePassword(account.Password); err != nil {
		return nil, err
	}
	if !account.Role.Valid() {
		return nil, common.Validation("role", "is not a valid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.ids.Next(ctx, tenancy.Main(), models.EntityUser)
	if err != nil {
		return nil, fmt.Errorf("assign user id: %w", err)
	}

	user := &models.User{
		ID:           id,
		Email:        normalizeEmail(account.Email),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(account.Name),
		Role:         account.Role,
		HospitalCode: account.HospitalCode,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.Conflict("a user with this email already exists")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor common.Identity, input UpdateUserInput) (*models.User, error) {
	if err := common.ValidateRequiredString(input.ID, "id"); err != nil {
		return nil, err
	}
	if input.Name != nil {
		if err := common.ValidateRequiredString(*input.Name, "name"); err != nil {
			return nil, err
		}
	}
	if input.Email != nil {
		if err := common.ValidateEmail(*input.Email, "email"); err != nil {
			return nil, err
		}
	}
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.GetByID(ctx, strings.TrimSpace(input.ID))
	if err != nil {
		return nil, err
	}
	if err := inScope(actor, user); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.Conflict("a user with this email already exists")
		}
		return nil, err
	}
	if input.Password != nil {
		s.revokeSessions(ctx, user.ID, "password changed")
	}
	return user, nil
}

func (s *userService) ChangeRole(ctx context.Context, actor common.Identity, id, role string) (*models.User, error) {
	if err := common.ValidateRequiredString(id, "id"); err != nil {
		return nil, err
	}
	newRole, err := models.ParseRole(strings.TrimSpace(role))
	if err != nil {
		return nil, common.Validation("role", "must be SuperAdmin, HospitalAdmin or BasicUser")
	}
	if !actor.Role.CanAssign(newRole) {
		return nil, common.Forbidden(fmt.Sprintf("%s cannot grant %s", actor.Role, newRole))
	}

	user, err := s.userRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if err := inScope(actor, user); err != nil {
		return nil, err
	}
	if user.ID == actor.UserID {
		return nil, common.Forbidden("cannot change your own role")
	}
	// SuperAdmin accounts carry no hospital, so the binding decides the direction.
	if (newRole == models.RoleSuperAdmin) != (user.HospitalCode == nil) {
		return nil, common.Validation("role", "SuperAdmin and hospital accounts cannot be converted into one another")
	}

	if err := s.userRepo.UpdateRole(ctx, user.ID, newRole); err != nil {
		return nil, err
	}
	user.Role = newRole
	s.revokeSessions(ctx, user.ID, "role changed")
	return user, nil
}

func (s *userService) Deactivate(ctx context.Context, actor common.Identity, id string) error {
	if err := common.ValidateRequiredString(id, "id"); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if err := inScope(actor, user); err != nil {
		return err
	}
	if user.ID == actor.UserID {
		return common.Forbidden("cannot deactivate your own account")
	}
	if err := s.userRepo.SetActive(ctx, user.ID, false); err != nil {
		return err
	}
	s.revokeSessions(ctx, user.ID, "deactivated")
	return nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", common.ErrUnauthenticated)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// EnsureSuperAdmin creates the bootstrap SuperAdmin unless the email is taken.
func (s *userService) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	_, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	user, err := s.CreateAccount(ctx, NewAccount{
		Name:     "Super Admin",
		Email:    email,
		Password: password,
		Role:     models.RoleSuperAdmin,
	})
	if err != nil {
		return fmt.Errorf("bootstrap superadmin: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("superadmin account created")
	return nil
}
