package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityListLimit bounds the activity feed.
const ActivityListLimit = 50

// Activity is an entry in a hospital's activity feed. ReferenceID optionally
// points at the entity the entry is about.
type Activity struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Action       string    `json:"action" db:"action"`
	Description  *string   `json:"description,omitempty" db:"description"`
	EntityType   *string   `json:"entityType,omitempty" db:"entity_type"`
	ReferenceID  *string   `json:"referenceId,omitempty" db:"reference_id"`
	PerformedBy  *string   `json:"performedBy,omitempty" db:"performed_by"`
	HospitalCode string    `json:"hospitalCode" db:"hospital_code"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Activity actions recorded by the services themselves.
const (
	ActionPatientAdmitted   = "patient.admitted"
	ActionPatientDischarged = "patient.discharged"
	ActionPatientReadmitted = "patient.readmitted"
	ActionBedAssigned       = "bed.assigned"
	ActionClaimCreated      = "claim.created"
	ActionDocumentUploaded  = "document.uploaded"
	ActionBedReconciled     = "bed.reconciled"
)
