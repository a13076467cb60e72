package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/middleware"
	"hospitalhub/internal/models"
	"hospitalhub/internal/services"
)

// AuthHandlers handles registration and the session lifecycle.
type AuthHandlers struct {
	sessions     services.SessionService
	hospitals    services.HospitalService
	secureCookie bool
}

// NewAuthHandlers creates auth handlers. secureCookie marks the session
// cookie Secure and should be set in production.
func NewAuthHandlers(sessions services.SessionService, hospitals services.HospitalService, secureCookie bool) *AuthHandlers {
	return &AuthHandlers{
		sessions:     sessions,
		hospitals:    hospitals,
		secureCookie: secureCookie,
	}
}

// RegisterRequest creates a hospital and its first administrator.
type RegisterRequest struct {
	HospitalName  string  `json:"hospitalName"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	AdminName     string  `json:"adminName"`
	AdminEmail    string  `json:"adminEmail"`
	AdminPassword string  `json:"adminPassword"`
}

type RegisterResponse struct {
	Hospital *models.Hospital `json:"hospital"`
	User     *models.User     `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse also returns the token for clients that send bearer headers
// instead of cookies.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type SessionResponse struct {
	UserID       string      `json:"userId"`
	Email        string      `json:"email,omitempty"`
	Role         models.Role `json:"role"`
	HospitalCode string      `json:"hospitalCode,omitempty"`
	ExpiresAt    time.Time   `json:"expiresAt"`
}

// Register handles POST /api/auth/register
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	hospital, admin, err := h.hospitals.Register(c.Request().Context(), services.RegisterInput{
		Hospital: services.CreateHospitalInput{
			Name:    req.HospitalName,
			Address: req.Address,
			Phone:   req.Phone,
			Email:   req.Email,
		},
		AdminName:     req.AdminName,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, RegisterResponse{Hospital: hospital, User: admin})
}

// Login handles POST /api/auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.Password, "password"); err != nil {
		return err
	}

	session, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(session.Token, 0))
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandlers) Logout(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Revoke(c.Request().Context(), identity); err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie("", -1))
	return c.NoContent(http.StatusNoContent)
}

// Session handles GET /api/auth/session
func (h *AuthHandlers) Session(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SessionResponse{
		UserID:       identity.UserID,
		Email:        identity.Email,
		Role:         identity.Role,
		HospitalCode: identity.HospitalCode,
		ExpiresAt:    identity.ExpiresAt,
	})
}

// sessionCookie builds the session cookie. A zero maxAge leaves it a
// browser-session cookie; a negative one deletes it.
func (h *AuthHandlers) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
