package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/middleware"
	"hospitalhub/internal/services"
)

// UserHandlers handles user-related HTTP requests. Scoping by role and
// hospital happens in the user service.
type UserHandlers struct {
	users services.UserService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(users services.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

// CreateUserRequest represents the user creation request payload
type CreateUserRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         string  `json:"role"`
	HospitalCode *string `json:"hospitalCode"`
}

// UpdateUserRequest carries profile changes. Role and activation have
// their own endpoints.
type UpdateUserRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type ChangeRoleRequest struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type DeactivateUserRequest struct {
	ID string `json:"id" query:"id"`
}

// ListUsers handles GET /api/users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	users, err := h.users.List(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /api/users
func (h *UserHandlers) CreateUser(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}

	var req CreateUserRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), identity, services.CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		HospitalCode: common.StringPtr(common.SafeString(req.HospitalCode)),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PUT /api/users
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.ID, "id"); err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), identity, services.UpdateUserInput{
		ID:       req.ID,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ChangeUserRole handles PATCH /api/users
func (h *UserHandlers) ChangeUserRole(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}

	var req ChangeRoleRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.ID, "id"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.Role, "role"); err != nil {
		return err
	}

	user, err := h.users.ChangeRole(c.Request().Context(), identity, req.ID, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeactivateUser handles DELETE /api/users. Accounts are never removed, only
// marked inactive.
func (h *UserHandlers) DeactivateUser(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}

	var req DeactivateUserRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.ID, "id"); err != nil {
		return err
	}

	if err := h.users.Deactivate(c.Request().Context(), identity, req.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":       req.ID,
		"isActive": false,
	})
}
