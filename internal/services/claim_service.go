package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
)

const maxClaimAmount = 1e9

type CreateClaimInput struct {
	PatientID         string
	InsuranceProvider string
	PolicyNumber      *string
	Amount            float64
	Notes             *string
}

type UpdateClaimInput struct {
	ID                string
	InsuranceProvider *string
	PolicyNumber      *string
	Amount            *float64
	Status            *string
	Notes             *string
}

type ClaimService interface {
	List(ctx context.Context, db tenancy.Database) ([]*models.Claim, error)
	Create(ctx context.Context, db tenancy.Database, input CreateClaimInput, actor string) (*models.Claim, error)
	Update(ctx context.Context, db tenancy.Database, input UpdateClaimInput) (*models.Claim, error)
}

type claimService struct {
	claimRepo   repositories.ClaimRepository
	patientRepo repositories.PatientRepository
	activities  ActivityService
	ids         IDGenerator
	tx          Transactor
}

func NewClaimService(
	claimRepo repositories.ClaimRepository,
	patientRepo repositories.PatientRepository,
	activities ActivityService,
	ids IDGenerator,
	tx Transactor,
) ClaimService {
	return &claimService{
		claimRepo:   claimRepo,
		patientRepo: patientRepo,
		activities:  activities,
		ids:         ids,
		tx:          tx,
	}
}

func (s *claimService) List(ctx context.Context, db tenancy.Database) ([]*models.Claim, error) {
	return s.claimRepo.List(ctx, db)
}

func (s *claimService) Create(ctx context.Context, db tenancy.Database, input CreateClaimInput, actor string) (*models.Claim, error) {
	patientID, err := parsePatientID(input.PatientID)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(input.InsuranceProvider, "insuranceProvider"); err != nil {
		return nil, err
	}
	if err := common.ValidatePositiveFloat(input.Amount, "amount", maxClaimAmount); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(input.PolicyNumber, "policyNumber", 100); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(input.Notes, "notes", 2000); err != nil {
		return nil, err
	}

	var claim *models.Claim
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		patient, err := s.patientRepo.GetByID(ctx, db, patientID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.Validation("patientId", "does not reference a patient of this hospital")
			}
			return err
		}

		id, err := s.ids.Next(ctx, db, models.EntityClaim)
		if err != nil {
			return fmt.Errorf("assign claim id: %w", err)
		}

		claim = &models.Claim{
			ID:                id,
			PatientID:         patient.ID.String(),
			PatientName:       common.StringPtr(patient.Name),
			InsuranceProvider: strings.TrimSpace(input.InsuranceProvider),
			PolicyNumber:      common.StringPtr(common.SafeString(input.PolicyNumber)),
			Amount:            input.Amount,
			Status:            models.ClaimStatusPending,
			Notes:             common.StringPtr(common.SafeString(input.Notes)),
			HospitalCode:      db.HospitalCode(),
		}
		if err := s.claimRepo.Create(ctx, db, claim); err != nil {
			return err
		}
		return s.activities.Record(ctx, db, models.ActionClaimCreated, string(models.EntityClaim), claim.ID,
			fmt.Sprintf("claim %s filed for %s with %s", claim.ID, patient.Name, claim.InsuranceProvider), actor)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

func (s *claimService) Update(ctx context.Context, db tenancy.Database, input UpdateClaimInput) (*models.Claim, error) {
	if err := common.ValidateRequiredString(input.ID, "id"); err != nil {
		return nil, err
	}
	if input.InsuranceProvider != nil {
		if err := common.ValidateRequiredString(*input.InsuranceProvider, "insuranceProvider"); err != nil {
			return nil, err
		}
	}
	if input.Amount != nil {
		if err := common.ValidatePositiveFloat(*input.Amount, "amount", maxClaimAmount); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if err := common.ValidateRequiredString(*input.Status, "status"); err != nil {
			return nil, err
		}
		if err := common.ValidateOptionalString(input.Status, "status", 50); err != nil {
			return nil, err
		}
	}
	if err := common.ValidateOptionalString(input.PolicyNumber, "policyNumber", 100); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(input.Notes, "notes", 2000); err != nil {
		return nil, err
	}

	claim, err := s.claimRepo.GetByID(ctx, db, strings.TrimSpace(input.ID))
	if err != nil {
		return nil, err
	}
	if input.InsuranceProvider != nil {
		claim.InsuranceProvider = strings.TrimSpace(*input.InsuranceProvider)
	}
	if input.Amount != nil {
		claim.Amount = *input.Amount
	}
	if input.Status != nil {
		claim.Status = *input.Status
	}
	overwrite(&claim.PolicyNumber, input.PolicyNumber)
	overwrite(&claim.Notes, input.Notes)

	if err := s.claimRepo.Update(ctx, db, claim); err != nil {
		return nil, err
	}
	return claim, nil
}
