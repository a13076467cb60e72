package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
)

type PatientDetails struct {
	Age              *int
	Gender           *string
	Phone            *string
	Address          *string
	BloodGroup       *string
	EmergencyContact *string
	Diagnosis        *string
	Doctor           *string
}

type CreatePatientInput struct {
	Name string
	PatientDetails
	// BedID admits the patient immediately when set.
	BedID *string
}

type UpdatePatientInput struct {
	ID   string
	Name *string
	PatientDetails
}

type ReadmitInput struct {
	UHID      string
	Diagnosis *string
	Doctor    *string
	BedID     *string
}

// PatientService owns every operation that touches a patient and a bed
// together. Each of those runs in one transaction with both rows locked,
// patient first.
type PatientService interface {
	List(ctx context.Context, db tenancy.Database) ([]*models.Patient, error)
	SearchByUHID(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error)
	Create(ctx context.Context, db tenancy.Database, input CreatePatientInput, actor string) (*models.Patient, error)
	Update(ctx context.Context, db tenancy.Database, input UpdatePatientInput) (*models.Patient, error)

	AssignBed(ctx context.Context, db tenancy.Database, bedID, patientID, actor string) (*models.Patient, *models.Bed, error)
	Discharge(ctx context.Context, db tenancy.Database, patientID string, notes *string, actor string) (*models.Patient, error)
	Readmit(ctx context.Context, db tenancy.Database, input ReadmitInput, actor string) (*models.Patient, error)
}

type patientService struct {
	patientRepo repositories.PatientRepository
	bedRepo     repositories.BedRepository
	activities  ActivityService
	ids         IDGenerator
	tx          Transactor
	now         func() time.Time
}

func NewPatientService(
	patientRepo repositories.PatientRepository,
	bedRepo repositories.BedRepository,
	activities ActivityService,
	ids IDGenerator,
	tx Transactor,
) PatientService {
	return &patientService{
		patientRepo: patientRepo,
		bedRepo:     bedRepo,
		activities:  activities,
		ids:         ids,
		tx:          tx,
		now:         time.Now,
	}
}

func parsePatientID(id string) (uuid.UUID, error) {
	if strings.TrimSpace(id) == "" {
		return uuid.Nil, common.Validation("patientId", "is required")
	}
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, common.Validation("patientId", "must be a valid patient id")
	}
	return parsed, nil
}

func validatePatientDetails(d *PatientDetails) error {
	if d.Age != nil && (*d.Age < 0 || *d.Age > 150) {
		return common.Validation("age", "must be between 0 and 150")
	}
	fields := []struct {
		value *string
		name  string
	}{
		{d.Gender, "gender"},
		{d.Phone, "phone"},
		{d.Address, "address"},
		{d.BloodGroup, "bloodGroup"},
		{d.EmergencyContact, "emergencyContact"},
		{d.Diagnosis, "diagnosis"},
		{d.Doctor, "doctor"},
	}
	for _, f := range fields {
		if err := common.ValidateOptionalString(f.value, f.name, 500); err != nil {
			return err
		}
	}
	return nil
}

func (s *patientService) List(ctx context.Context, db tenancy.Database) ([]*models.Patient, error) {
	return s.patientRepo.List(ctx, db)
}

func (s *patientService) SearchByUHID(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error) {
	if err := common.ValidateRequiredString(uhid, "uhid"); err != nil {
		return nil, err
	}
	patient, err := s.patientRepo.GetByUHID(ctx, db, strings.ToUpper(strings.TrimSpace(uhid)))
	if err != nil {
		return nil, err
	}
	patient.History, err = s.patientRepo.ListAdmissions(ctx, db, patient.ID)
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *patientService) Create(ctx context.Context, db tenancy.Database, input CreatePatientInput, actor string) (*models.Patient, error) {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return nil, err
	}
	if err := validatePatientDetails(&input.PatientDetails); err != nil {
		return nil, err
	}
	bedID := common.StringPtr(common.SafeString(input.BedID))

	patient := &models.Patient{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(input.Name),
		Age:              input.Age,
		Gender:           input.Gender,
		Phone:            input.Phone,
		Address:          input.Address,
		BloodGroup:       input.BloodGroup,
		EmergencyContact: input.EmergencyContact,
		Diagnosis:        input.Diagnosis,
		Doctor:           input.Doctor,
		Status:           models.PatientWaiting,
		HospitalCode:     db.HospitalCode(),
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		uhid, err := s.ids.Next(ctx, db, models.EntityPatientUHID)
		if err != nil {
			return fmt.Errorf("assign uhid: %w", err)
		}
		patient.UHID = uhid

		var bed *models.Bed
		if bedID != nil {
			if bed, err = s.occupyBed(ctx, db, *bedID, patient); err != nil {
				return err
			}
		}

		if err := s.patientRepo.Create(ctx, db, patient); err != nil {
			return err
		}
		if bed == nil {
			return nil
		}
		if err := s.bedRepo.Update(ctx, db, bed); err != nil {
			return err
		}
		return s.activities.Record(ctx, db, models.ActionPatientAdmitted, string(models.EntityPatient), patient.ID.String(),
			fmt.Sprintf("%s (%s) admitted to bed %s", patient.Name, patient.UHID, bed.BedNumber), actor)
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *patientService) Update(ctx context.Context, db tenancy.Database, input UpdatePatientInput) (*models.Patient, error) {
	id, err := parsePatientID(input.ID)
	if err != nil {
		return nil, common.Validation("id", "must be a valid patient id")
	}
	if input.Name != nil {
		if err := common.ValidateRequiredString(*input.Name, "name"); err != nil {
			return nil, err
		}
	}
	if err := validatePatientDetails(&input.PatientDetails); err != nil {
		return nil, err
	}

	var patient *models.Patient
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		patient, err = s.patientRepo.GetForUpdate(ctx, db, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			patient.Name = strings.TrimSpace(*input.Name)
		}
		d := input.PatientDetails
		if d.Age != nil {
			patient.Age = d.Age
		}
		overwrite(&patient.Gender, d.Gender)
		overwrite(&patient.Phone, d.Phone)
		overwrite(&patient.Address, d.Address)
		overwrite(&patient.BloodGroup, d.BloodGroup)
		overwrite(&patient.EmergencyContact, d.EmergencyContact)
		overwrite(&patient.Diagnosis, d.Diagnosis)
		overwrite(&patient.Doctor, d.Doctor)

		return s.patientRepo.Update(ctx, db, patient)
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// overwrite applies a supplied optional field; an empty string clears it.
func overwrite(dst **string, src *string) {
	if src != nil {
		*dst = common.StringPtr(*src)
	}
}

// occupyBed locks bedID and points it at patient. The patient is moved to
// Admitted in memory; the caller persists both rows.
func (s *patientService) occupyBed(ctx context.Context, db tenancy.Database, bedID string, patient *models.Patient) (*models.Bed, error) {
	bed, err := s.bedRepo.GetForUpdate(ctx, db, bedID)
	if err != nil {
		return nil, err
	}
	if bed.Status != models.BedAvailable {
		return nil, common.InvalidTransition(fmt.Sprintf("bed %s is %s", bed.BedNumber, bed.Status))
	}

	patientID := patient.ID.String()
	bed.Status = models.BedOccupied
	bed.PatientID = &patientID

	now := s.now().UTC()
	patient.Status = models.PatientAdmitted
	patient.AssignedBed = &bed.ID
	if patient.AdmissionDate == nil {
		patient.AdmissionDate = &now
	}
	return bed, nil
}

func (s *patientService) AssignBed(ctx context.Context, db tenancy.Database, bedID, patientID, actor string) (*models.Patient, *models.Bed, error) {
	if err := common.ValidateRequiredString(bedID, "bedId"); err != nil {
		return nil, nil, err
	}
	id, err := parsePatientID(patientID)
	if err != nil {
		return nil, nil, err
	}

	var patient *models.Patient
	var bed *models.Bed
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		patient, err = s.patientRepo.GetForUpdate(ctx, db, id)
		if err != nil {
			return err
		}
		if patient.Status != models.PatientWaiting {
			return common.InvalidTransition(fmt.Sprintf("patient %s is %s, only waiting patients can be assigned a bed", patient.UHID, patient.Status))
		}

		if bed, err = s.occupyBed(ctx, db, strings.TrimSpace(bedID), patient); err != nil {
			return err
		}
		if err := s.patientRepo.Update(ctx, db, patient); err != nil {
			return err
		}
		if err := s.bedRepo.Update(ctx, db, bed); err != nil {
			return err
		}
		return s.activities.Record(ctx, db, models.ActionBedAssigned, string(models.EntityBed), bed.ID,
			fmt.Sprintf("bed %s assigned to %s (%s)", bed.BedNumber, patient.Name, patient.UHID), actor)
	})
	if err != nil {
		return nil, nil, err
	}
	return patient, bed, nil
}

func (s *patientService) Discharge(ctx context.Context, db tenancy.Database, patientID string, notes *string, actor string) (*models.Patient, error) {
	id, err := parsePatientID(patientID)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(notes, "notes", 2000); err != nil {
		return nil, err
	}

	var patient *models.Patient
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		patient, err = s.patientRepo.GetForUpdate(ctx, db, id)
		if err != nil {
			return err
		}
		if !patient.Status.CanTransition(models.PatientDischarged) {
			return common.InvalidTransition(fmt.Sprintf("patient %s is %s and cannot be discharged", patient.UHID, patient.Status))
		}

		if patient.AssignedBed != nil {
			bed, err := s.bedRepo.GetForUpdate(ctx, db, *patient.AssignedBed)
			if err != nil {
				return err
			}
			// A bed that points elsewhere is left for the reconciler.
			if bed.PatientID != nil && *bed.PatientID == patient.ID.String() {
				bed.Status = models.BedAvailable
				bed.PatientID = nil
				if err := s.bedRepo.Update(ctx, db, bed); err != nil {
					return err
				}
			}
		}

		now := s.now().UTC()
		patient.Status = models.PatientDischarged
		patient.DischargeDate = &now
		patient.DischargeNotes = common.StringPtr(common.SafeString(notes))
		patient.LastBed = patient.AssignedBed
		patient.AssignedBed = nil
		if err := s.patientRepo.Update(ctx, db, patient); err != nil {
			return err
		}
		return s.activities.Record(ctx, db, models.ActionPatientDischarged, string(models.EntityPatient), patient.ID.String(),
			fmt.Sprintf("%s (%s) discharged", patient.Name, patient.UHID), actor)
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *patientService) Readmit(ctx context.Context, db tenancy.Database, input ReadmitInput, actor string) (*models.Patient, error) {
	if err := common.ValidateRequiredString(input.UHID, "uhid"); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(input.Diagnosis, "diagnosis", 500); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(input.Doctor, "doctor", 500); err != nil {
		return nil, err
	}
	uhid := strings.ToUpper(strings.TrimSpace(input.UHID))
	bedID := common.StringPtr(common.SafeString(input.BedID))

	var patient *models.Patient
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		patient, err = s.patientRepo.GetByUHIDForUpdate(ctx, db, uhid)
		if err != nil {
			return err
		}
		if patient.Status != models.PatientDischarged {
			return common.InvalidTransition(fmt.Sprintf("patient %s is %s, only discharged patients can be re-admitted", patient.UHID, patient.Status))
		}

		if err := s.patientRepo.AddAdmission(ctx, db, patient.CurrentAdmission()); err != nil {
			return err
		}

		// The new admission is dated when a bed is occupied.
		patient.Status = models.PatientWaiting
		patient.AdmissionDate = nil
		patient.DischargeDate = nil
		patient.DischargeNotes = nil
		patient.AssignedBed = nil
		patient.LastBed = nil
		patient.Diagnosis = input.Diagnosis
		if input.Doctor != nil {
			patient.Doctor = input.Doctor
		}

		var bed *models.Bed
		if bedID != nil {
			if bed, err = s.occupyBed(ctx, db, *bedID, patient); err != nil {
				return err
			}
			if err := s.bedRepo.Update(ctx, db, bed); err != nil {
				return err
			}
		}
		if err := s.patientRepo.Update(ctx, db, patient); err != nil {
			return err
		}

		patient.History, err = s.patientRepo.ListAdmissions(ctx, db, patient.ID)
		if err != nil {
			return err
		}
		return s.activities.Record(ctx, db, models.ActionPatientReadmitted, string(models.EntityPatient), patient.ID.String(),
			fmt.Sprintf("%s (%s) re-admitted", patient.Name, patient.UHID), actor)
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}
