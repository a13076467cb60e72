package models

import "fmt"

// EntityType keys both the counter rows and the identifier policy registry.
type EntityType string

const (
	EntityHospital    EntityType = "hospitals"
	EntityUser        EntityType = "users"
	EntityBed         EntityType = "beds"
	EntityPatient     EntityType = "patients"
	EntityPatientUHID EntityType = "patient_uhid"
	EntityAdmission   EntityType = "admissions"
	EntityClaim       EntityType = "claims"
	EntityDocument    EntityType = "documents"
	EntityActivity    EntityType = "activities"
)

type IDScheme int

const (
	// IDUUID identifiers are generated by the application as random UUIDs.
	IDUUID IDScheme = iota
	// IDSequence identifiers come from the per-schema counter table.
	IDSequence
)

// IDPolicy describes how identifiers for one entity type are assigned.
type IDPolicy struct {
	Scheme IDScheme
	Prefix string
	// Width zero-pads the number when greater than zero.
	Width int
}

// IDPolicies is the single registry of identifier schemes.
var IDPolicies = map[EntityType]IDPolicy{
	EntityHospital:    {Scheme: IDUUID},
	EntityUser:        {Scheme: IDSequence},
	EntityBed:         {Scheme: IDSequence, Prefix: "b"},
	EntityPatient:     {Scheme: IDUUID},
	EntityPatientUHID: {Scheme: IDSequence, Prefix: "P", Width: 6},
	EntityAdmission:   {Scheme: IDUUID},
	EntityClaim:       {Scheme: IDSequence, Prefix: "c"},
	EntityDocument:    {Scheme: IDUUID},
	EntityActivity:    {Scheme: IDUUID},
}

// Format renders the n-th identifier under this policy.
func (p IDPolicy) Format(n int64) string {
	if p.Width > 0 {
		return fmt.Sprintf("%s%0*d", p.Prefix, p.Width, n)
	}
	return fmt.Sprintf("%s%d", p.Prefix, n)
}
