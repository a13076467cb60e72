package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/services"
)

// PatientHandlers serves /api/patients, including the admission lifecycle.
type PatientHandlers struct {
	patients services.PatientService
}

func NewPatientHandlers(patients services.PatientService) *PatientHandlers {
	return &PatientHandlers{patients: patients}
}

// PatientFields are the demographic and clinical fields shared by create and update.
type PatientFields struct {
	Age              *int    `json:"age"`
	Gender           *string `json:"gender"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	BloodGroup       *string `json:"bloodGroup"`
	EmergencyContact *string `json:"emergencyContact"`
	Diagnosis        *string `json:"diagnosis"`
	Doctor           *string `json:"doctor"`
}

func (f PatientFields) details() services.PatientDetails {
	return services.PatientDetails{
		Age:              f.Age,
		Gender:           f.Gender,
		Phone:            f.Phone,
		Address:          f.Address,
		BloodGroup:       f.BloodGroup,
		EmergencyContact: f.EmergencyContact,
		Diagnosis:        f.Diagnosis,
		Doctor:           f.Doctor,
	}
}

type CreatePatientRequest struct {
	Name string `json:"name"`
	PatientFields
	BedID *string `json:"bedId"`
}

type UpdatePatientRequest struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
	PatientFields
}

type DischargeRequest struct {
	PatientID string  `json:"patientId"`
	Notes     *string `json:"notes"`
}

type ReadmitRequest struct {
	UHID      string  `json:"uhid"`
	Diagnosis *string `json:"diagnosis"`
	Doctor    *string `json:"doctor"`
	BedID     *string `json:"bedId"`
}

// ListPatients handles GET /api/patients
func (h *PatientHandlers) ListPatients(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}
	patients, err := h.patients.List(c.Request().Context(), db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patients)
}

// SearchPatient handles GET /api/patients/search?uhid=
func (h *PatientHandlers) SearchPatient(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}
	uhid := c.QueryParam("uhid")
	if err := common.ValidateRequiredString(uhid, "uhid"); err != nil {
		return err
	}

	patient, err := h.patients.SearchByUHID(c.Request().Context(), db, uhid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patient)
}

// CreatePatient handles POST /api/patients
func (h *PatientHandlers) CreatePatient(c echo.Context) error {
	db, identity, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req CreatePatientRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	patient, err := h.patients.Create(c.Request().Context(), db, services.CreatePatientInput{
		Name:           req.Name,
		PatientDetails: req.details(),
		BedID:          common.StringPtr(common.SafeString(req.BedID)),
	}, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, patient)
}

// UpdatePatient handles PUT /api/patients. Status is driven only by the
// admission endpoints.
func (h *PatientHandlers) UpdatePatient(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req UpdatePatientRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.ID, "id"); err != nil {
		return err
	}

	patient, err := h.patients.Update(c.Request().Context(), db, services.UpdatePatientInput{
		ID:             req.ID,
		Name:           req.Name,
		PatientDetails: req.details(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patient)
}

// DischargePatient handles POST /api/patients/discharge
func (h *PatientHandlers) DischargePatient(c echo.Context) error {
	db, identity, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req DischargeRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.PatientID, "patientId"); err != nil {
		return err
	}

	patient, err := h.patients.Discharge(c.Request().Context(), db, req.PatientID, req.Notes, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patient)
}

// ReadmitPatient handles POST /api/patients/readmit
func (h *PatientHandlers) ReadmitPatient(c echo.Context) error {
	db, identity, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req ReadmitRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.UHID, "uhid"); err != nil {
		return err
	}

	patient, err := h.patients.Readmit(c.Request().Context(), db, services.ReadmitInput{
		UHID:      req.UHID,
		Diagnosis: req.Diagnosis,
		Doctor:    req.Doctor,
		BedID:     common.StringPtr(common.SafeString(req.BedID)),
	}, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patient)
}
