package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/services"
)

// DocumentHandlers serves /api/documents. File bodies go to object storage,
// metadata to the tenant database.
type DocumentHandlers struct {
	documents services.DocumentService
}

func NewDocumentHandlers(documents services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{documents: documents}
}

type UpdateDocumentRequest struct {
	ID        string  `json:"id"`
	Title     *string `json:"title"`
	Category  *string `json:"category"`
	PatientID *string `json:"patientId"`
}

// ListDocuments handles GET /api/documents
func (h *DocumentHandlers) ListDocuments(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}
	documents, err := h.documents.List(c.Request().Context(), db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, documents)
}

// UploadDocument handles POST /api/documents as multipart/form-data with a
// "file" part and "title", "category", "patientId" fields.
func (h *DocumentHandlers) UploadDocument(c echo.Context) error {
	db, identity, err := tenantScope(c)
	if err != nil {
		return err
	}

	title := c.FormValue("title")
	if err := common.ValidateRequiredString(title, "title"); err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return common.Validation("file", "is required")
	}
	if file.Size > services.MaxDocumentSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File exceeds the maximum document size")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer src.Close()

	contentType := file.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType, err = sniffContentType(src)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
		}
	}

	doc, err := h.documents.Upload(c.Request().Context(), db, services.UploadDocumentInput{
		Title:       title,
		Category:    common.StringPtr(c.FormValue("category")),
		PatientID:   common.StringPtr(c.FormValue("patientId")),
		FileName:    file.Filename,
		ContentType: contentType,
		Size:        file.Size,
		Body:        src,
	}, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

// sniffContentType detects the type from the first 512 bytes and rewinds.
func sniffContentType(src io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buffer[:n]), nil
}

// UpdateDocument handles PUT /api/documents. Only metadata can change.
func (h *DocumentHandlers) UpdateDocument(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req UpdateDocumentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.ID, "id"); err != nil {
		return err
	}

	doc, err := h.documents.Update(c.Request().Context(), db, services.UpdateDocumentInput{
		ID:        req.ID,
		Title:     req.Title,
		Category:  req.Category,
		PatientID: req.PatientID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// DownloadDocument handles GET /api/documents/:id/download by redirecting
// to a short-lived presigned URL.
func (h *DocumentHandlers) DownloadDocument(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}

	url, err := h.documents.DownloadURL(c.Request().Context(), db, c.Param("id"))
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, url)
}
