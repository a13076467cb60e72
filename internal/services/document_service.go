package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/repositories"
	"hospitalhub/internal/tenancy"
)

const (
	MaxDocumentSize     = 25 << 20
	documentURLValidity = 15 * time.Minute
)

type UploadDocumentInput struct {
	Title       string
	Category    *string
	PatientID   *string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UpdateDocumentInput struct {
	ID        string
	Title     *string
	Category  *string
	PatientID *string
}

type DocumentService interface {
	List(ctx context.Context, db tenancy.Database) ([]*models.Document, error)
	Upload(ctx context.Context, db tenancy.Database, input UploadDocumentInput, actor string) (*models.Document, error)
	Update(ctx context.Context, db tenancy.Database, input UpdateDocumentInput) (*models.Document, error)
	DownloadURL(ctx context.Context, db tenancy.Database, id string) (string, error)
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	patientRepo  repositories.PatientRepository
	activities   ActivityService
	storage      ObjectStorage
	tx           Transactor
	logger       zerolog.Logger
}

func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	patientRepo repositories.PatientRepository,
	activities ActivityService,
	storage ObjectStorage,
	tx Transactor,
	logger zerolog.Logger,
) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		patientRepo:  patientRepo,
		activities:   activities,
		storage:      storage,
		tx:           tx,
		logger:       logger,
	}
}

// DocumentObjectKey places every object under its hospital's prefix.
func DocumentObjectKey(hospitalCode string, id uuid.UUID) string {
	return path.Join(hospitalCode, id.String())
}

func parseDocumentID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, common.Validation("id", "must be a valid document id")
	}
	return parsed, nil
}

// checkPatientRef verifies an optional patient reference inside db.
func (s *documentService) checkPatientRef(ctx context.Context, db tenancy.Database, patientID *string) error {
	if patientID == nil || strings.TrimSpace(*patientID) == "" {
		return nil
	}
	id, err := parsePatientID(*patientID)
	if err != nil {
		return err
	}
	if _, err := s.patientRepo.GetByID(ctx, db, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.Validation("patientId", "does not reference a patient of this hospital")
		}
		return err
	}
	return nil
}

func (s *documentService) List(ctx context.Context, db tenancy.Database) ([]*models.Document, error) {
	return s.documentRepo.List(ctx, db)
}

func (s *documentService) Upload(ctx context.Context, db tenancy.Database, input UploadDocumentInput, actor string) (*models.Document, error) {
	if err := common.ValidateRequiredString(input.Title, "title"); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(input.Category, "category", 100); err != nil {
		return nil, err
	}
	if input.Body == nil || input.Size <= 0 {
		return nil, common.Validation("file", "is required")
	}
	if input.Size > MaxDocumentSize {
		return nil, common.Validation("file", fmt.Sprintf("cannot exceed %d bytes", MaxDocumentSize))
	}
	if err := s.checkPatientRef(ctx, db, input.PatientID); err != nil {
		return nil, err
	}

	id := uuid.New()
	doc := &models.Document{
		ID:           id,
		Title:        strings.TrimSpace(input.Title),
		Category:     common.StringPtr(common.SafeString(input.Category)),
		PatientID:    common.StringPtr(common.SafeString(input.PatientID)),
		FileName:     path.Base(strings.TrimSpace(input.FileName)),
		ContentType:  input.ContentType,
		Size:         input.Size,
		ObjectKey:    DocumentObjectKey(db.HospitalCode(), id),
		UploadedBy:   common.StringPtr(actor),
		HospitalCode: db.HospitalCode(),
	}

	if err := s.storage.Upload(ctx, doc.ObjectKey, input.Body, doc.Size, doc.ContentType); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.documentRepo.Create(ctx, db, doc); err != nil {
			return err
		}
		return s.activities.Record(ctx, db, models.ActionDocumentUploaded, string(models.EntityDocument), doc.ID.String(),
			fmt.Sprintf("document %q uploaded", doc.Title), actor)
	})
	if err != nil {
		// The request may already be cancelled; the orphan still has to go.
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), doc.ObjectKey); delErr != nil {
			s.logger.Error().Err(delErr).Str("key", doc.ObjectKey).Msg("failed to remove orphaned document object")
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, db tenancy.Database, input UpdateDocumentInput) (*models.Document, error) {
	id, err := parseDocumentID(input.ID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		if err := common.ValidateRequiredString(*input.Title, "title"); err != nil {
			return nil, err
		}
	}
	if err := common.ValidateOptionalString(input.Category, "category", 100); err != nil {
		return nil, err
	}
	if err := s.checkPatientRef(ctx, db, input.PatientID); err != nil {
		return nil, err
	}

	doc, err := s.documentRepo.GetByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		doc.Title = strings.TrimSpace(*input.Title)
	}
	overwrite(&doc.Category, input.Category)
	overwrite(&doc.PatientID, input.PatientID)

	if err := s.documentRepo.Update(ctx, db, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) DownloadURL(ctx context.Context, db tenancy.Database, id string) (string, error) {
	docID, err := parseDocumentID(id)
	if err != nil {
		return "", err
	}
	doc, err := s.documentRepo.GetByID(ctx, db, docID)
	if err != nil {
		return "", err
	}
	return s.storage.PresignedURL(ctx, doc.ObjectKey, documentURLValidity)
}
