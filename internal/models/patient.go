package models

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientWaiting    PatientStatus = "Waiting"
	PatientAdmitted   PatientStatus = "Admitted"
	PatientDischarged PatientStatus = "Discharged"
)

// CanTransition encodes Waiting -> Admitted -> Discharged -> (Admitted | Waiting).
// A discharged patient re-admitted without a bed waits for one.
func (s PatientStatus) CanTransition(next PatientStatus) bool {
	switch s {
	case PatientWaiting:
		return next == PatientAdmitted
	case PatientAdmitted:
		return next == PatientDischarged
	case PatientDischarged:
		return next == PatientAdmitted || next == PatientWaiting
	}
	return false
}

type Patient struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	UHID             string        `json:"uhid" db:"uhid"`
	Name             string        `json:"name" db:"name"`
	Age              *int          `json:"age,omitempty" db:"age"`
	Gender           *string       `json:"gender,omitempty" db:"gender"`
	Phone            *string       `json:"phone,omitempty" db:"phone"`
	Address          *string       `json:"address,omitempty" db:"address"`
	BloodGroup       *string       `json:"bloodGroup,omitempty" db:"blood_group"`
	EmergencyContact *string       `json:"emergencyContact,omitempty" db:"emergency_contact"`
	Status           PatientStatus `json:"status" db:"status"`
	AssignedBed      *string       `json:"assignedBed" db:"assigned_bed"`
	// LastBed is the bed of the latest admission, kept through discharge.
	LastBed          *string       `json:"lastBed,omitempty" db:"last_bed"`
	Diagnosis        *string       `json:"diagnosis,omitempty" db:"diagnosis"`
	Doctor           *string       `json:"doctor,omitempty" db:"doctor"`
	AdmissionDate    *time.Time    `json:"admissionDate,omitempty" db:"admission_date"`
	DischargeDate    *time.Time    `json:"dischargeDate,omitempty" db:"discharge_date"`
	DischargeNotes   *string       `json:"dischargeNotes,omitempty" db:"discharge_notes"`
	HospitalCode     string        `json:"hospitalCode" db:"hospital_code"`
	History          []*Admission  `json:"admissionHistory,omitempty"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// Admission is a closed admission kept in a patient's history.
type Admission struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	PatientID      uuid.UUID  `json:"patientId" db:"patient_id"`
	AdmissionDate  *time.Time `json:"admissionDate,omitempty" db:"admission_date"`
	DischargeDate  *time.Time `json:"dischargeDate,omitempty" db:"discharge_date"`
	Diagnosis      *string    `json:"diagnosis,omitempty" db:"diagnosis"`
	Doctor         *string    `json:"doctor,omitempty" db:"doctor"`
	BedID          *string    `json:"bedId,omitempty" db:"bed_id"`
	DischargeNotes *string    `json:"dischargeNotes,omitempty" db:"discharge_notes"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

func (p *Patient) admissionBed() *string {
	if p.AssignedBed != nil {
		return p.AssignedBed
	}
	return p.LastBed
}

// CurrentAdmission snapshots the admission fields held on the patient row.
// The bed falls back to LastBed once the patient has been discharged.
func (p *Patient) CurrentAdmission() *Admission {
	return &Admission{
		ID:             uuid.New(),
		PatientID:      p.ID,
		AdmissionDate:  p.AdmissionDate,
		DischargeDate:  p.DischargeDate,
		Diagnosis:      p.Diagnosis,
		Doctor:         p.Doctor,
		BedID:          p.admissionBed(),
		DischargeNotes: p.DischargeNotes,
	}
}
