package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Category     *string   `json:"category,omitempty" db:"category"`
	PatientID    *string   `json:"patientId,omitempty" db:"patient_id"`
	FileName     string    `json:"fileName" db:"file_name"`
	ContentType  string    `json:"contentType" db:"content_type"`
	Size         int64     `json:"size" db:"size"`
	ObjectKey    string    `json:"-" db:"object_key"`
	UploadedBy   *string   `json:"uploadedBy,omitempty" db:"uploaded_by"`
	HospitalCode string    `json:"hospitalCode" db:"hospital_code"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
