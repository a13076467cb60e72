package models

import "time"

type BedStatus string

const (
	BedAvailable   BedStatus = "available"
	BedOccupied    BedStatus = "occupied"
	BedMaintenance BedStatus = "maintenance"
)

func (s BedStatus) Valid() bool {
	return s == BedAvailable || s == BedOccupied || s == BedMaintenance
}

// CanTransition reports whether a bed may move from s to next.
// Maintenance is only reachable from, and only returns to, available.
func (s BedStatus) CanTransition(next BedStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case BedAvailable:
		return next == BedOccupied || next == BedMaintenance
	case BedOccupied, BedMaintenance:
		return next == BedAvailable
	}
	return false
}

type Bed struct {
	ID           string    `json:"id" db:"id"`
	BedNumber    string    `json:"bedNumber" db:"bed_number"`
	Ward         string    `json:"ward" db:"ward"`
	BedType      *string   `json:"bedType,omitempty" db:"bed_type"`
	Status       BedStatus `json:"status" db:"status"`
	PatientID    *string   `json:"patientId" db:"patient_id"`
	HospitalCode string    `json:"hospitalCode" db:"hospital_code"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
