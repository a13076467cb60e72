package repositories

import (
	"context"
	"fmt"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

type BedRepository interface {
	Create(ctx context.Context, db tenancy.Database, bed *models.Bed) error
	GetByID(ctx context.Context, db tenancy.Database, id string) (*models.Bed, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, db tenancy.Database, id string) (*models.Bed, error)
	Update(ctx context.Context, db tenancy.Database, bed *models.Bed) error
	List(ctx context.Context, db tenancy.Database) ([]*models.Bed, error)
	ListByStatus(ctx context.Context, db tenancy.Database, status models.BedStatus) ([]*models.Bed, error)
}

type bedRepo struct {
	db database.Querier
}

func NewBedRepo(db database.Querier) BedRepository {
	return &bedRepo{db: db}
}

const bedColumns = `id, bed_number, ward, bed_type, status, patient_id, hospital_code, created_at, updated_at`

func scanBed(row rowScanner) (*models.Bed, error) {
	b := &models.Bed{}
	err := row.Scan(&b.ID, &b.BedNumber, &b.Ward, &b.BedType, &b.Status, &b.PatientID, &b.HospitalCode, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bedRepo) Create(ctx context.Context, db tenancy.Database, bed *models.Bed) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, bed_number, ward, bed_type, status, patient_id, hospital_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`, db.Table("beds"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		bed.ID, bed.BedNumber, bed.Ward, bed.BedType, bed.Status, bed.PatientID, bed.HospitalCode,
	).Scan(&bed.CreatedAt, &bed.UpdatedAt)
	return common.TranslateStorageError(err, "bed")
}

func (r *bedRepo) GetByID(ctx context.Context, db tenancy.Database, id string) (*models.Bed, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, bedColumns, db.Table("beds"))
	b, err := scanBed(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, common.TranslateStorageError(err, "bed")
	}
	return b, nil
}

func (r *bedRepo) GetForUpdate(ctx context.Context, db tenancy.Database, id string) (*models.Bed, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, bedColumns, db.Table("beds"))
	b, err := scanBed(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, common.TranslateStorageError(err, "bed")
	}
	return b, nil
}

func (r *bedRepo) Update(ctx context.Context, db tenancy.Database, bed *models.Bed) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET bed_number = $1, ward = $2, bed_type = $3, status = $4, patient_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, db.Table("beds"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		bed.BedNumber, bed.Ward, bed.BedType, bed.Status, bed.PatientID, bed.ID,
	).Scan(&bed.UpdatedAt)
	return common.TranslateStorageError(err, "bed")
}

func (r *bedRepo) List(ctx context.Context, db tenancy.Database) ([]*models.Bed, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY ward, bed_number`, bedColumns, db.Table("beds"))
	return r.list(ctx, query)
}

func (r *bedRepo) ListByStatus(ctx context.Context, db tenancy.Database, status models.BedStatus) ([]*models.Bed, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE status = $1 ORDER BY ward, bed_number`, bedColumns, db.Table("beds"))
	return r.list(ctx, query, status)
}

func (r *bedRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Bed, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	beds := []*models.Bed{}
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, err
		}
		beds = append(beds, b)
	}
	return beds, rows.Err()
}
