package repositories

import (
	"context"
	"fmt"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

type ClaimRepository interface {
	Create(ctx context.Context, db tenancy.Database, claim *models.Claim) error
	GetByID(ctx context.Context, db tenancy.Database, id string) (*models.Claim, error)
	Update(ctx context.Context, db tenancy.Database, claim *models.Claim) error
	List(ctx context.Context, db tenancy.Database) ([]*models.Claim, error)
}

type claimRepo struct {
	db database.Querier
}

func NewClaimRepo(db database.Querier) ClaimRepository {
	return &claimRepo{db: db}
}

const claimColumns = `id, patient_id, patient_name, insurance_provider, policy_number, amount, status, notes, hospital_code, created_at, updated_at`

func scanClaim(row rowScanner) (*models.Claim, error) {
	c := &models.Claim{}
	err := row.Scan(&c.ID, &c.PatientID, &c.PatientName, &c.InsuranceProvider, &c.PolicyNumber, &c.Amount, &c.Status, &c.Notes, &c.HospitalCode, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *claimRepo) Create(ctx context.Context, db tenancy.Database, c *models.Claim) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, patient_id, patient_name, insurance_provider, policy_number, amount, status, notes, hospital_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`, db.Table("claims"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		c.ID, c.PatientID, c.PatientName, c.InsuranceProvider, c.PolicyNumber, c.Amount, c.Status, c.Notes, c.HospitalCode,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return common.TranslateStorageError(err, "claim")
}

func (r *claimRepo) GetByID(ctx context.Context, db tenancy.Database, id string) (*models.Claim, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, claimColumns, db.Table("claims"))
	c, err := scanClaim(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, common.TranslateStorageError(err, "claim")
	}
	return c, nil
}

func (r *claimRepo) Update(ctx context.Context, db tenancy.Database, c *models.Claim) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET patient_name = $1, insurance_provider = $2, policy_number = $3, amount = $4, status = $5, notes = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`, db.Table("claims"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		c.PatientName, c.InsuranceProvider, c.PolicyNumber, c.Amount, c.Status, c.Notes, c.ID,
	).Scan(&c.UpdatedAt)
	return common.TranslateStorageError(err, "claim")
}

func (r *claimRepo) List(ctx context.Context, db tenancy.Database) ([]*models.Claim, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, claimColumns, db.Table("claims"))
	rows, err := database.Conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := []*models.Claim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
