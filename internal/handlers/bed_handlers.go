package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/services"
)

// BedHandlers serves /api/beds.
type BedHandlers struct {
	beds     services.BedService
	patients services.PatientService
}

func NewBedHandlers(beds services.BedService, patients services.PatientService) *BedHandlers {
	return &BedHandlers{
		beds:     beds,
		patients: patients,
	}
}

type CreateBedRequest struct {
	BedNumber string  `json:"bedNumber"`
	Ward      string  `json:"ward"`
	BedType   *string `json:"bedType"`
	Status    *string `json:"status"`
}

type UpdateBedRequest struct {
	ID        string  `json:"id"`
	BedNumber *string `json:"bedNumber"`
	Ward      *string `json:"ward"`
	BedType   *string `json:"bedType"`
	Status    *string `json:"status"`
}

type AssignBedRequest struct {
	BedID     string `json:"bedId"`
	PatientID string `json:"patientId"`
}

type AssignBedResponse struct {
	Bed     *models.Bed     `json:"bed"`
	Patient *models.Patient `json:"patient"`
}

func bedStatus(s *string) *models.BedStatus {
	if s == nil {
		return nil
	}
	status := models.BedStatus(*s)
	return &status
}

// ListBeds handles GET /api/beds
func (h *BedHandlers) ListBeds(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}
	beds, err := h.beds.List(c.Request().Context(), db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, beds)
}

// CreateBed handles POST /api/beds
func (h *BedHandlers) CreateBed(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req CreateBedRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	bed, err := h.beds.Create(c.Request().Context(), db, services.CreateBedInput{
		BedNumber: req.BedNumber,
		Ward:      req.Ward,
		BedType:   req.BedType,
		Status:    bedStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bed)
}

// UpdateBed handles PUT /api/beds
func (h *BedHandlers) UpdateBed(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req UpdateBedRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.ID, "id"); err != nil {
		return err
	}

	bed, err := h.beds.Update(c.Request().Context(), db, services.UpdateBedInput{
		ID:        req.ID,
		BedNumber: req.BedNumber,
		Ward:      req.Ward,
		BedType:   req.BedType,
		Status:    bedStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bed)
}

// AssignBed handles POST /api/beds/assign
func (h *BedHandlers) AssignBed(c echo.Context) error {
	db, identity, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req AssignBedRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.BedID, "bedId"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.PatientID, "patientId"); err != nil {
		return err
	}

	patient, bed, err := h.patients.AssignBed(c.Request().Context(), db, req.BedID, req.PatientID, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AssignBedResponse{Bed: bed, Patient: patient})
}
