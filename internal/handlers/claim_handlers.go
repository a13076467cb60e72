package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/services"
)

// ClaimHandlers serves /api/claims.
type ClaimHandlers struct {
	claims services.ClaimService
}

func NewClaimHandlers(claims services.ClaimService) *ClaimHandlers {
	return &ClaimHandlers{claims: claims}
}

type CreateClaimRequest struct {
	PatientID         string  `json:"patientId"`
	InsuranceProvider string  `json:"insuranceProvider"`
	PolicyNumber      *string `json:"policyNumber"`
	Amount            float64 `json:"amount"`
	Notes             *string `json:"notes"`
}

type UpdateClaimRequest struct {
	ID                string   `json:"id"`
	InsuranceProvider *string  `json:"insuranceProvider"`
	PolicyNumber      *string  `json:"policyNumber"`
	Amount            *float64 `json:"amount"`
	Status            *string  `json:"status"`
	Notes             *string  `json:"notes"`
}

// ListClaims handles GET /api/claims
func (h *ClaimHandlers) ListClaims(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}
	claims, err := h.claims.List(c.Request().Context(), db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, claims)
}

// CreateClaim handles POST /api/claims
func (h *ClaimHandlers) CreateClaim(c echo.Context) error {
	db, identity, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req CreateClaimRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	claim, err := h.claims.Create(c.Request().Context(), db, services.CreateClaimInput{
		PatientID:         req.PatientID,
		InsuranceProvider: req.InsuranceProvider,
		PolicyNumber:      req.PolicyNumber,
		Amount:            req.Amount,
		Notes:             req.Notes,
	}, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, claim)
}

// UpdateClaim handles PUT /api/claims
func (h *ClaimHandlers) UpdateClaim(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req UpdateClaimRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.ID, "id"); err != nil {
		return err
	}

	claim, err := h.claims.Update(c.Request().Context(), db, services.UpdateClaimInput{
		ID:                req.ID,
		InsuranceProvider: req.InsuranceProvider,
		PolicyNumber:      req.PolicyNumber,
		Amount:            req.Amount,
		Status:            req.Status,
		Notes:             req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, claim)
}
