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

type DocumentRepository interface {
	Create(ctx context.Context, db tenancy.Database, doc *models.Document) error
	GetByID(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Document, error)
	Update(ctx context.Context, db tenancy.Database, doc *models.Document) error
	List(ctx context.Context, db tenancy.Database) ([]*models.Document, error)
}

type documentRepo struct {
	db database.Querier
}

func NewDocumentRepo(db database.Querier) DocumentRepository {
	return &documentRepo{db: db}
}

const documentColumns = `id, title, category, patient_id, file_name, content_type, size, object_key, uploaded_by, hospital_code, created_at, updated_at`

func scanDocument(row rowScanner) (*models.Document, error) {
	d := &models.Document{}
	err := row.Scan(&d.ID, &d.Title, &d.Category, &d.PatientID, &d.FileName, &d.ContentType, &d.Size, &d.ObjectKey, &d.UploadedBy, &d.HospitalCode, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *documentRepo) Create(ctx context.Context, db tenancy.Database, d *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, category, patient_id, file_name, content_type, size, object_key, uploaded_by, hospital_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`, db.Table("documents"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		d.ID, d.Title, d.Category, d.PatientID, d.FileName, d.ContentType, d.Size, d.ObjectKey, d.UploadedBy, d.HospitalCode,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	return common.TranslateStorageError(err, "document")
}

func (r *documentRepo) GetByID(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, db.Table("documents"))
	d, err := scanDocument(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, common.TranslateStorageError(err, "document")
	}
	return d, nil
}

func (r *documentRepo) Update(ctx context.Context, db tenancy.Database, d *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, category = $2, patient_id = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`, db.Table("documents"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, d.Title, d.Category, d.PatientID, d.ID).Scan(&d.UpdatedAt)
	return common.TranslateStorageError(err, "document")
}

func (r *documentRepo) List(ctx context.Context, db tenancy.Database) ([]*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, documentColumns, db.Table("documents"))
	rows, err := database.Conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
