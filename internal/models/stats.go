package models

import "time"

// TenantStats is the dashboard summary of one hospital.
type TenantStats struct {
	HospitalCode       string  `json:"hospitalCode"`
	TotalBeds          int     `json:"totalBeds"`
	AvailableBeds      int     `json:"availableBeds"`
	OccupiedBeds       int     `json:"occupiedBeds"`
	MaintenanceBeds    int     `json:"maintenanceBeds"`
	TotalPatients      int     `json:"totalPatients"`
	WaitingPatients    int     `json:"waitingPatients"`
	AdmittedPatients   int     `json:"admittedPatients"`
	DischargedPatients int     `json:"dischargedPatients"`
	TotalClaims        int     `json:"totalClaims"`
	PendingClaims      int     `json:"pendingClaims"`
	ClaimAmount        float64 `json:"claimAmount"`
}

// Add accumulates o into s.
func (s *TenantStats) Add(o TenantStats) {
	s.TotalBeds += o.TotalBeds
	s.AvailableBeds += o.AvailableBeds
	s.OccupiedBeds += o.OccupiedBeds
	s.MaintenanceBeds += o.MaintenanceBeds
	s.TotalPatients += o.TotalPatients
	s.WaitingPatients += o.WaitingPatients
	s.AdmittedPatients += o.AdmittedPatients
	s.DischargedPatients += o.DischargedPatients
	s.TotalClaims += o.TotalClaims
	s.PendingClaims += o.PendingClaims
	s.ClaimAmount += o.ClaimAmount
}

// AggregateStats is the cross-tenant view available to SuperAdmin.
type AggregateStats struct {
	TotalHospitals  int            `json:"totalHospitals"`
	ActiveHospitals int            `json:"activeHospitals"`
	TotalUsers      int            `json:"totalUsers"`
	Totals          TenantStats    `json:"totals"`
	PerHospital     []*TenantStats `json:"perHospital"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}
