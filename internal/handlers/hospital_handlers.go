package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/middleware"
	"hospitalhub/internal/services"
)

// HospitalHandlers serves /api/hospitals from the main database.
type HospitalHandlers struct {
	hospitals services.HospitalService
}

func NewHospitalHandlers(hospitals services.HospitalService) *HospitalHandlers {
	return &HospitalHandlers{hospitals: hospitals}
}

type CreateHospitalRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

type UpdateHospitalRequest struct {
	Code    string  `json:"code"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

type DeactivateHospitalRequest struct {
	Code string `json:"code" query:"code"`
}

// ListHospitals handles GET /api/hospitals. SuperAdmin sees every hospital,
// everyone else only their own.
func (h *HospitalHandlers) ListHospitals(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	hospitals, err := h.hospitals.List(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hospitals)
}

// CreateHospital handles POST /api/hospitals
func (h *HospitalHandlers) CreateHospital(c echo.Context) error {
	var req CreateHospitalRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	hospital, err := h.hospitals.Create(c.Request().Context(), services.CreateHospitalInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, hospital)
}

// UpdateHospital handles PUT /api/hospitals
func (h *HospitalHandlers) UpdateHospital(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}

	var req UpdateHospitalRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.Code, "code"); err != nil {
		return err
	}

	hospital, err := h.hospitals.Update(c.Request().Context(), identity, services.UpdateHospitalInput{
		Code:    req.Code,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hospital)
}

// DeactivateHospital handles DELETE /api/hospitals
func (h *HospitalHandlers) DeactivateHospital(c echo.Context) error {
	var req DeactivateHospitalRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.Code, "code"); err != nil {
		return err
	}

	if err := h.hospitals.Deactivate(c.Request().Context(), req.Code); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":     req.Code,
		"isActive": false,
	})
}
