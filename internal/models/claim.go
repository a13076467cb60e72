package models

import "time"

const ClaimStatusPending = "pending"

// Claim stores an insurance claim as submitted; no adjudication rules apply.
type Claim struct {
	ID                string    `json:"id" db:"id"`
	PatientID         string    `json:"patientId" db:"patient_id"`
	PatientName       *string   `json:"patientName,omitempty" db:"patient_name"`
	InsuranceProvider string    `json:"insuranceProvider" db:"insurance_provider"`
	PolicyNumber      *string   `json:"policyNumber,omitempty" db:"policy_number"`
	Amount            float64   `json:"amount" db:"amount"`
	Status            string    `json:"status" db:"status"`
	Notes             *string   `json:"notes,omitempty" db:"notes"`
	HospitalCode      string    `json:"hospitalCode" db:"hospital_code"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}
