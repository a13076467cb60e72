package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
)

type ReconcilerTestSuite struct {
	suite.Suite
	hospitals  *MockHospitalRepository
	beds       *MockBedRepository
	patients   *MockPatientRepository
	activities *MockActivityService
	tx         *passthroughTx
	reconciler *Reconciler
	context    context.Context
	acme       tenancy.Database
}

func (suite *ReconcilerTestSuite) SetupTest() {
	suite.hospitals = &MockHospitalRepository{}
	suite.beds = &MockBedRepository{}
	suite.patients = &MockPatientRepository{}
	suite.activities = &MockActivityService{}
	suite.tx = &passthroughTx{}
	suite.reconciler = NewReconciler(suite.hospitals, suite.beds, suite.patients, suite.activities, suite.tx, zerolog.Nop())
	suite.context = context.Background()

	db, err := tenancy.ForTenant("acme")
	suite.Require().NoError(err)
	suite.acme = db
}

func (suite *ReconcilerTestSuite) TearDownTest() {
	suite.hospitals.AssertExpectations(suite.T())
	suite.beds.AssertExpectations(suite.T())
	suite.patients.AssertExpectations(suite.T())
	suite.activities.AssertExpectations(suite.T())
}

func occupiedBed(id string, patientID *string) *models.Bed {
	return &models.Bed{ID: id, BedNumber: "A-" + id, Ward: "General", Status: models.BedOccupied, PatientID: patientID}
}

func admittedPatient(bedID *string) *models.Patient {
	return &models.Patient{ID: uuid.New(), UHID: "UHID-0001", Name: "Asha", Status: models.PatientAdmitted, AssignedBed: bedID}
}

func (suite *ReconcilerTestSuite) expectNoAdmitted() {
	suite.patients.On("ListByStatus", suite.context, suite.acme, models.PatientAdmitted).Return([]*models.Patient{}, nil).Once()
}

func (suite *ReconcilerTestSuite) expectNoOccupied() {
	suite.beds.On("ListByStatus", suite.context, suite.acme, models.BedOccupied).Return([]*models.Bed{}, nil).Once()
}

func (suite *ReconcilerTestSuite) TestConsistentPairIsLeftAlone() {
	patient := admittedPatient(common.StringPtr("B1"))
	bed := occupiedBed("B1", common.StringPtr(patient.ID.String()))

	suite.beds.On("ListByStatus", suite.context, suite.acme, models.BedOccupied).Return([]*models.Bed{bed}, nil).Once()
	suite.patients.On("ListByStatus", suite.context, suite.acme, models.PatientAdmitted).Return([]*models.Patient{patient}, nil).Once()
	suite.patients.On("GetForUpdate", suite.context, suite.acme, patient.ID).Return(patient, nil).Twice()
	suite.beds.On("GetForUpdate", suite.context, suite.acme, "B1").Return(bed, nil).Twice()

	result, err := suite.reconciler.ReconcileTenant(suite.context, suite.acme)

	suite.Require().NoError(err)
	suite.Equal(ReconcileResult{HospitalCode: "acme"}, result)
	suite.beds.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything, mock.Anything)
	suite.patients.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconcilerTestSuite) TestReleasesBedWhosePatientIsGone() {
	missing := uuid.New()
	bed := occupiedBed("B2", common.StringPtr(missing.String()))

	suite.beds.On("ListByStatus", suite.context, suite.acme, models.BedOccupied).Return([]*models.Bed{bed}, nil).Once()
	suite.patients.On("GetForUpdate", suite.context, suite.acme, missing).Return(nil, common.ErrNotFound).Once()
	suite.beds.On("GetForUpdate", suite.context, suite.acme, "B2").Return(bed, nil).Once()
	suite.beds.On("Update", suite.context, suite.acme, mock.MatchedBy(func(b *models.Bed) bool {
		return b.ID == "B2" && b.Status == models.BedAvailable && b.PatientID == nil
	})).Return(nil).Once()
	suite.activities.On("Record", suite.context, suite.acme, models.ActionBedReconciled, "bed", "B2", mock.Anything, reconcilerActor).Return(nil).Once()
	suite.expectNoAdmitted()

	result, err := suite.reconciler.ReconcileTenant(suite.context, suite.acme)

	suite.Require().NoError(err)
	suite.Equal(1, result.BedsReleased)
	suite.Zero(result.PatientsRequeued)
}

func (suite *ReconcilerTestSuite) TestReleasesBedWithMalformedPatientReference() {
	bed := occupiedBed("B3", common.StringPtr("not-a-uuid"))

	suite.beds.On("ListByStatus", suite.context, suite.acme, models.BedOccupied).Return([]*models.Bed{bed}, nil).Once()
	suite.beds.On("GetForUpdate", suite.context, suite.acme, "B3").Return(bed, nil).Once()
	suite.beds.On("Update", suite.context, suite.acme, mock.AnythingOfType("*models.Bed")).Return(nil).Once()
	suite.activities.On("Record", suite.context, suite.acme, models.ActionBedReconciled, "bed", "B3", mock.Anything, reconcilerActor).Return(nil).Once()
	suite.expectNoAdmitted()

	result, err := suite.reconciler.ReconcileTenant(suite.context, suite.acme)

	suite.Require().NoError(err)
	suite.Equal(1, result.BedsReleased)
	suite.patients.AssertNotCalled(suite.T(), "GetForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconcilerTestSuite) TestReleasesBedWhenPatientPointsElsewhere() {
	patient := admittedPatient(common.StringPtr("B9"))
	bed := occupiedBed("B4", common.StringPtr(patient.ID.String()))

	suite.beds.On("ListByStatus", suite.context, suite.acme, models.BedOccupied).Return([]*models.Bed{bed}, nil).Once()
	suite.patients.On("GetForUpdate", suite.context, suite.acme, patient.ID).Return(patient, nil).Once()
	suite.beds.On("GetForUpdate", suite.context, suite.acme, "B4").Return(bed, nil).Once()
	suite.beds.On("Update", suite.context, suite.acme, mock.AnythingOfType("*models.Bed")).Return(nil).Once()
	suite.activities.On("Record", suite.context, suite.acme, models.ActionBedReconciled, "bed", "B4", mock.Anything, reconcilerActor).Return(nil).Once()
	suite.expectNoAdmitted()

	result, err := suite.reconciler.ReconcileTenant(suite.context, suite.acme)

	suite.Require().NoError(err)
	suite.Equal(1, result.BedsReleased)
}

func (suite *ReconcilerTestSuite) TestRequeuesPatientWhoseBedIsGone() {
	patient := admittedPatient(common.StringPtr("B5"))

	suite.expectNoOccupied()
	suite.patients.On("ListByStatus", suite.context, suite.acme, models.PatientAdmitted).Return([]*models.Patient{patient}, nil).Once()
	suite.patients.On("GetForUpdate", suite.context, suite.acme, patient.ID).Return(patient, nil).Once()
	suite.beds.On("GetForUpdate", suite.context, suite.acme, "B5").Return(nil, common.ErrNotFound).Once()
	suite.patients.On("Update", suite.context, suite.acme, mock.MatchedBy(func(p *models.Patient) bool {
		return p.Status == models.PatientWaiting && p.AssignedBed == nil
	})).Return(nil).Once()
	suite.activities.On("Record", suite.context, suite.acme, models.ActionBedReconciled, "patient", patient.ID.String(), mock.Anything, reconcilerActor).Return(nil).Once()

	result, err := suite.reconciler.ReconcileTenant(suite.context, suite.acme)

	suite.Require().NoError(err)
	suite.Equal(1, result.PatientsRequeued)
	suite.Zero(result.BedsReleased)
}

func (suite *ReconcilerTestSuite) TestRequeuesAdmittedPatientWithoutBed() {
	patient := admittedPatient(nil)

	suite.expectNoOccupied()
	suite.patients.On("ListByStatus", suite.context, suite.acme, models.PatientAdmitted).Return([]*models.Patient{patient}, nil).Once()
	suite.patients.On("GetForUpdate", suite.context, suite.acme, patient.ID).Return(patient, nil).Once()
	suite.patients.On("Update", suite.context, suite.acme, mock.AnythingOfType("*models.Patient")).Return(nil).Once()
	suite.activities.On("Record", suite.context, suite.acme, models.ActionBedReconciled, "patient", patient.ID.String(), mock.Anything, reconcilerActor).Return(nil).Once()

	result, err := suite.reconciler.ReconcileTenant(suite.context, suite.acme)

	suite.Require().NoError(err)
	suite.Equal(1, result.PatientsRequeued)
	suite.beds.AssertNotCalled(suite.T(), "GetForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconcilerTestSuite) TestEntityFailureIsCountedAndProcessingContinues() {
	first := occupiedBed("B6", common.StringPtr("bad"))
	second := occupiedBed("B7", common.StringPtr("bad"))

	suite.beds.On("ListByStatus", suite.context, suite.acme, models.BedOccupied).Return([]*models.Bed{first, second}, nil).Once()
	suite.beds.On("GetForUpdate", suite.context, suite.acme, "B6").Return(nil, errors.New("lock timeout")).Once()
	suite.beds.On("GetForUpdate", suite.context, suite.acme, "B7").Return(second, nil).Once()
	suite.beds.On("Update", suite.context, suite.acme, second).Return(nil).Once()
	suite.activities.On("Record", suite.context, suite.acme, models.ActionBedReconciled, "bed", "B7", mock.Anything, reconcilerActor).Return(nil).Once()
	suite.expectNoAdmitted()

	result, err := suite.reconciler.ReconcileTenant(suite.context, suite.acme)

	suite.Require().NoError(err)
	suite.Equal(1, result.Failures)
	suite.Equal(1, result.BedsReleased)
	suite.Equal(2, suite.tx.calls)
}

func (suite *ReconcilerTestSuite) TestListFailureAbortsTenant() {
	suite.beds.On("ListByStatus", suite.context, suite.acme, models.BedOccupied).Return([]*models.Bed(nil), errors.New("connection refused")).Once()

	_, err := suite.reconciler.ReconcileTenant(suite.context, suite.acme)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "list occupied beds")
}

func TestReconcilerTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}

func TestReconciler_RunCoversEveryActiveHospital(t *testing.T) {
	hospitals := &MockHospitalRepository{}
	beds := &MockBedRepository{}
	patients := &MockPatientRepository{}
	ctx := context.Background()

	acme, err := tenancy.ForTenant("acme")
	require.NoError(t, err)
	city, err := tenancy.ForTenant("city")
	require.NoError(t, err)

	hospitals.On("ListActive", ctx).Return([]*models.Hospital{{Code: "acme"}, {Code: "city"}}, nil)
	beds.On("ListByStatus", ctx, acme, models.BedOccupied).Return([]*models.Bed(nil), errors.New("schema missing"))
	beds.On("ListByStatus", ctx, city, models.BedOccupied).Return([]*models.Bed{}, nil)
	patients.On("ListByStatus", ctx, city, models.PatientAdmitted).Return([]*models.Patient{}, nil)

	reconciler := NewReconciler(hospitals, beds, patients, &MockActivityService{}, &passthroughTx{}, zerolog.Nop())
	err = reconciler.Run(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "hospital acme")
	assert.NotContains(t, err.Error(), "hospital city")
	beds.AssertExpectations(t)
	patients.AssertExpectations(t)
}
