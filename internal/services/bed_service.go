package services

import (
	"context"
	"fmt"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
)

type CreateBedInput struct {
	BedNumber string
	Ward      string
	BedType   *string
	Status    *models.BedStatus
}

// UpdateBedInput carries the fields to overwrite; nil fields are left alone.
type UpdateBedInput struct {
	ID        string
	BedNumber *string
	Ward      *string
	BedType   *string
	Status    *models.BedStatus
}

type BedService interface {
	List(ctx context.Context, db tenancy.Database) ([]*models.Bed, error)
	Create(ctx context.Context, db tenancy.Database, input CreateBedInput) (*models.Bed, error)
	Update(ctx context.Context, db tenancy.Database, input UpdateBedInput) (*models.Bed, error)
}

type bedService struct {
	bedRepo repositories.BedRepository
	ids     IDGenerator
	tx      Transactor
}

func NewBedService(bedRepo repositories.BedRepository, ids IDGenerator, tx Transactor) BedService {
	return &bedService{bedRepo: bedRepo, ids: ids, tx: tx}
}

func (s *bedService) List(ctx context.Context, db tenancy.Database) ([]*models.Bed, error) {
	return s.bedRepo.List(ctx, db)
}

func (s *bedService) Create(ctx context.Context, db tenancy.Database, input CreateBedInput) (*models.Bed, error) {
	if err := common.ValidateRequiredString(input.BedNumber, "bedNumber"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(input.Ward, "ward"); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(input.BedType, "bedType", 100); err != nil {
		return nil, err
	}

	status := models.BedAvailable
	if input.Status != nil {
		if *input.Status != models.BedAvailable && *input.Status != models.BedMaintenance {
			return nil, common.Validation("status", "must be available or maintenance")
		}
		status = *input.Status
	}

	id, err := s.ids.Next(ctx, db, models.EntityBed)
	if err != nil {
		return nil, fmt.Errorf("assign bed id: %w", err)
	}

	bed := &models.Bed{
		ID:           id,
		BedNumber:    *common.StringPtr(input.BedNumber),
		Ward:         *common.StringPtr(input.Ward),
		BedType:      input.BedType,
		Status:       status,
		HospitalCode: db.HospitalCode(),
	}
	if err := s.bedRepo.Create(ctx, db, bed); err != nil {
		return nil, err
	}
	return bed, nil
}

func (s *bedService) Update(ctx context.Context, db tenancy.Database, input UpdateBedInput) (*models.Bed, error) {
	if err := common.ValidateRequiredString(input.ID, "id"); err != nil {
		return nil, err
	}
	if input.BedNumber != nil {
		if err := common.ValidateRequiredString(*input.BedNumber, "bedNumber"); err != nil {
			return nil, err
		}
	}
	if input.Ward != nil {
		if err := common.ValidateRequiredString(*input.Ward, "ward"); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, common.Validation("status", "must be available, occupied or maintenance")
	}

	var bed *models.Bed
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		bed, err = s.bedRepo.GetForUpdate(ctx, db, input.ID)
		if err != nil {
			return err
		}

		if input.Status != nil && *input.Status != bed.Status {
			// Occupancy only changes through assignment and discharge.
			if *input.Status == models.BedOccupied || bed.Status == models.BedOccupied {
				return common.InvalidTransition(fmt.Sprintf("bed %s cannot move from %s to %s directly", bed.ID, bed.Status, *input.Status))
			}
			if !bed.Status.CanTransition(*input.Status) {
				return common.InvalidTransition(fmt.Sprintf("bed %s cannot move from %s to %s", bed.ID, bed.Status, *input.Status))
			}
			bed.Status = *input.Status
		}
		if input.BedNumber != nil {
			bed.BedNumber = *common.StringPtr(*input.BedNumber)
		}
		if input.Ward != nil {
			bed.Ward = *common.StringPtr(*input.Ward)
		}
		if input.BedType != nil {
			bed.BedType = common.StringPtr(*input.BedType)
		}

		return s.bedRepo.Update(ctx, db, bed)
	})
	if err != nil {
		return nil, err
	}
	return bed, nil
}
