package repositories

import (
	"context"
	"fmt"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

type HospitalRepository interface {
	Create(ctx context.Context, hospital *models.Hospital) error
	GetByCode(ctx context.Context, code string) (*models.Hospital, error)
	Update(ctx context.Context, hospital *models.Hospital) error
	SetActive(ctx context.Context, code string, active bool) error
	List(ctx context.Context) ([]*models.Hospital, error)
	ListActive(ctx context.Context) ([]*models.Hospital, error)
}

type hospitalRepo struct {
	db    database.Querier
	table string
}

func NewHospitalRepo(db database.Querier) HospitalRepository {
	return &hospitalRepo{db: db, table: tenancy.Main().Table("hospitals")}
}

const hospitalColumns = `id, code, name, address, phone, email, is_active, created_at, updated_at`

func scanHospital(row rowScanner) (*models.Hospital, error) {
	h := &models.Hospital{}
	err := row.Scan(&h.ID, &h.Code, &h.Name, &h.Address, &h.Phone, &h.Email, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *hospitalRepo) Create(ctx context.Context, hospital *models.Hospital) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, code, name, address, phone, email, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`, r.table)
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		hospital.ID, hospital.Code, hospital.Name, hospital.Address, hospital.Phone, hospital.Email, hospital.IsActive,
	).Scan(&hospital.CreatedAt, &hospital.UpdatedAt)
	return common.TranslateStorageError(err, "hospital")
}

func (r *hospitalRepo) GetByCode(ctx context.Context, code string) (*models.Hospital, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE code = $1`, hospitalColumns, r.table)
	h, err := scanHospital(database.Conn(ctx, r.db).QueryRow(ctx, query, code))
	if err != nil {
		return nil, common.TranslateStorageError(err, "hospital")
	}
	return h, nil
}

func (r *hospitalRepo) Update(ctx context.Context, hospital *models.Hospital) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, address = $2, phone = $3, email = $4, is_active = $5, updated_at = NOW()
		WHERE code = $6
		RETURNING updated_at
	`, r.table)
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		hospital.Name, hospital.Address, hospital.Phone, hospital.Email, hospital.IsActive, hospital.Code,
	).Scan(&hospital.UpdatedAt)
	return common.TranslateStorageError(err, "hospital")
}

func (r *hospitalRepo) SetActive(ctx context.Context, code string, active bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_active = $1, updated_at = NOW() WHERE code = $2`, r.table)
	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, active, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("hospital")
	}
	return nil
}

func (r *hospitalRepo) List(ctx context.Context) ([]*models.Hospital, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY name`, hospitalColumns, r.table)
	return r.list(ctx, query)
}

func (r *hospitalRepo) ListActive(ctx context.Context) ([]*models.Hospital, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE is_active ORDER BY name`, hospitalColumns, r.table)
	return r.list(ctx, query)
}

func (r *hospitalRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Hospital, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hospitals := []*models.Hospital{}
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}
