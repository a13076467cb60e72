package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/services"
	"hospitalhub/internal/tenancy"
)

const reconcilerActor = "system:reconciler"

// ReconcileResult counts the repairs made in one hospital.
type ReconcileResult struct {
	HospitalCode     string
	BedsReleased     int
	PatientsRequeued int
	Failures         int
}

// Reconciler repairs bed and patient rows whose references disagree. An occupied bed
// whose patient does not point back is released; an admitted patient whose
// bed does not point back goes back to Waiting.
type Reconciler struct {
	hospitals  repositories.HospitalRepository
	beds       repositories.BedRepository
	patients   repositories.PatientRepository
	activities services.ActivityService
	tx         services.Transactor
	logger     zerolog.Logger
}

func NewReconciler(
	hospitals repositories.HospitalRepository,
	beds repositories.BedRepository,
	patients repositories.PatientRepository,
	activities services.ActivityService,
	tx services.Transactor,
	logger zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		hospitals:  hospitals,
		beds:       beds,
		patients:   patients,
		activities: activities,
		tx:         tx,
		logger:     logger.With().Str("component", "reconciler").Logger(),
	}
}

// Run reconciles every active hospital. A failing hospital does not stop
// the others; all failures are returned together.
func (r *Reconciler) Run(ctx context.Context) error {
	hospitals, err := r.hospitals.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list hospitals: %w", err)
	}

	var errs []error
	for _, h := range hospitals {
		db, err := tenancy.ForTenant(h.Code)
		if err != nil {
			errs = append(errs, fmt.Errorf("hospital %s: %w", h.Code, err))
			continue
		}
		result, err := r.ReconcileTenant(ctx, db)
		if err != nil {
			errs = append(errs, fmt.Errorf("hospital %s: %w", h.Code, err))
			continue
		}
		if result.BedsReleased > 0 || result.PatientsRequeued > 0 || result.Failures > 0 {
			r.logger.Warn().
				Str("hospital", result.HospitalCode).
				Int("beds_released", result.BedsReleased).
				Int("patients_requeued", result.PatientsRequeued).
				Int("failures", result.Failures).
				Msg("bed and patient references repaired")
		}
	}
	return errors.Join(errs...)
}

// ReconcileTenant repairs one hospital database.
func (r *Reconciler) ReconcileTenant(ctx context.Context, db tenancy.Database) (ReconcileResult, error) {
	result := ReconcileResult{HospitalCode: db.HospitalCode()}

	occupied, err := r.beds.ListByStatus(ctx, db, models.BedOccupied)
	if err != nil {
		return result, fmt.Errorf("list occupied beds: %w", err)
	}
	for _, bed := range occupied {
		released, err := r.reconcileBed(ctx, db, bed)
		if err != nil {
			result.Failures++
			r.logger.Error().Err(err).Str("hospital", db.HospitalCode()).Str("bed", bed.ID).Msg("bed reconciliation failed")
			continue
		}
		if released {
			result.BedsReleased++
		}
	}

	admitted, err := r.patients.ListByStatus(ctx, db, models.PatientAdmitted)
	if err != nil {
		return result, fmt.Errorf("list admitted patients: %w", err)
	}
	for _, patient := range admitted {
		requeued, err := r.reconcilePatient(ctx, db, patient.ID)
		if err != nil {
			result.Failures++
			r.logger.Error().Err(err).Str("hospital", db.HospitalCode()).Str("patient", patient.ID.String()).Msg("patient reconciliation failed")
			continue
		}
		if requeued {
			result.PatientsRequeued++
		}
	}
	return result, nil
}

// reconcileBed locks the referenced patient before the bed, the same order
// the admission paths use.
func (r *Reconciler) reconcileBed(ctx context.Context, db tenancy.Database, snapshot *models.Bed) (bool, error) {
	released := false
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		var patient *models.Patient
		if snapshot.PatientID != nil {
			if id, err := uuid.Parse(*snapshot.PatientID); err == nil {
				p, err := r.patients.GetForUpdate(ctx, db, id)
				if err != nil && !errors.Is(err, common.ErrNotFound) {
					return err
				}
				patient = p
			}
		}

		bed, err := r.beds.GetForUpdate(ctx, db, snapshot.ID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			return err
		}
		if bed.Status != models.BedOccupied {
			return nil
		}
		if patient != nil && bed.PatientID != nil && *bed.PatientID == patient.ID.String() &&
			patient.Status == models.PatientAdmitted && common.SafeString(patient.AssignedBed) == bed.ID {
			return nil
		}

		bed.Status = models.BedAvailable
		bed.PatientID = nil
		if err := r.beds.Update(ctx, db, bed); err != nil {
			return err
		}
		released = true
		return r.activities.Record(ctx, db, models.ActionBedReconciled, "bed", bed.ID,
			fmt.Sprintf("Bed %s released: its patient does not reference it", bed.BedNumber), reconcilerActor)
	})
	return released, err
}

func (r *Reconciler) reconcilePatient(ctx context.Context, db tenancy.Database, id uuid.UUID) (bool, error) {
	requeued := false
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		patient, err := r.patients.GetForUpdate(ctx, db, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			return err
		}
		if patient.Status != models.PatientAdmitted {
			return nil
		}

		if patient.AssignedBed != nil {
			bed, err := r.beds.GetForUpdate(ctx, db, *patient.AssignedBed)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if bed != nil && bed.Status == models.BedOccupied && common.SafeString(bed.PatientID) == patient.ID.String() {
				return nil
			}
		}

		previous := common.SafeString(patient.AssignedBed)
		patient.Status = models.PatientWaiting
		patient.AssignedBed = nil
		if err := r.patients.Update(ctx, db, patient); err != nil {
			return err
		}
		requeued = true
		return r.activities.Record(ctx, db, models.ActionBedReconciled, "patient", patient.ID.String(),
			fmt.Sprintf("Patient %s returned to Waiting: bed %q does not reference them", patient.UHID, previous), reconcilerActor)
	})
	return requeued, err
}
