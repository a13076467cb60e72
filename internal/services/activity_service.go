package services

import (
	"context"
	"strings"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
)

// CreateActivityInput is a client-submitted feed entry.
type CreateActivityInput struct {
	Action      string
	Description *string
	EntityType  *string
	ReferenceID *string
}

type ActivityService interface {
	// Record logs an entry on behalf of another service. Called with a
	// transactional context it commits or rolls back with the caller.
	Record(ctx context.Context, db tenancy.Database, action, entityType, referenceID, description, actor string) error

	Create(ctx context.Context, db tenancy.Database, input CreateActivityInput, actor string) (*models.Activity, error)
	ListRecent(ctx context.Context, db tenancy.Database) ([]*models.Activity, error)
}

type activityService struct {
	activityRepo repositories.ActivityRepository
}

func NewActivityService(activityRepo repositories.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

func (s *activityService) Record(ctx context.Context, db tenancy.Database, action, entityType, referenceID, description, actor string) error {
	activity := &models.Activity{
		Action:       action,
		Description:  common.StringPtr(description),
		EntityType:   common.StringPtr(entityType),
		ReferenceID:  common.StringPtr(referenceID),
		PerformedBy:  common.StringPtr(actor),
		HospitalCode: db.HospitalCode(),
	}
	return s.activityRepo.Create(ctx, db, activity)
}

func (s *activityService) Create(ctx context.Context, db tenancy.Database, input CreateActivityInput, actor string) (*models.Activity, error) {
	if err := common.ValidateRequiredString(input.Action, "action"); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(input.Description, "description", 1000); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		Action:       strings.TrimSpace(input.Action),
		Description:  input.Description,
		EntityType:   input.EntityType,
		ReferenceID:  input.ReferenceID,
		PerformedBy:  common.StringPtr(actor),
		HospitalCode: db.HospitalCode(),
	}
	if err := s.activityRepo.Create(ctx, db, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *activityService) ListRecent(ctx context.Context, db tenancy.Database) ([]*models.Activity, error) {
	return s.activityRepo.ListRecent(ctx, db, models.ActivityListLimit)
}
