package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

type ActivityRepository interface {
	// Create appends an entry to the tenant's activity feed
	Create(ctx context.Context, db tenancy.Database, activity *models.Activity) error

	// ListRecent returns at most limit entries, newest first
	ListRecent(ctx context.Context, db tenancy.Database, limit int) ([]*models.Activity, error)
}

type activityRepo struct {
	db database.Querier
}

func NewActivityRepo(db database.Querier) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, db tenancy.Database, a *models.Activity) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, action, description, entity_type, reference_id, performed_by, hospital_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`, db.Table("activities"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		a.ID, a.Action, a.Description, a.EntityType, a.ReferenceID, a.PerformedBy, a.HospitalCode,
	).Scan(&a.CreatedAt)
	return common.TranslateStorageError(err, "activity")
}

func (r *activityRepo) ListRecent(ctx context.Context, db tenancy.Database, limit int) ([]*models.Activity, error) {
	if limit <= 0 || limit > models.ActivityListLimit {
		limit = models.ActivityListLimit
	}

	query := fmt.Sprintf(`
		SELECT id, action, description, entity_type, reference_id, performed_by, hospital_code, created_at
		FROM %s
		ORDER BY created_at DESC
		LIMIT $1
	`, db.Table("activities"))
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []*models.Activity{}
	for rows.Next() {
		a := &models.Activity{}
		if err := rows.Scan(&a.ID, &a.Action, &a.Description, &a.EntityType, &a.ReferenceID, &a.PerformedBy, &a.HospitalCode, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
