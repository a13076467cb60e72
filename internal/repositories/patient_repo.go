package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

type PatientRepository interface {
	Create(ctx context.Context, db tenancy.Database, patient *models.Patient) error
	GetByID(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Patient, error)
	GetForUpdate(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Patient, error)
	GetByUHID(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error)
	GetByUHIDForUpdate(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error)
	Update(ctx context.Context, db tenancy.Database, patient *models.Patient) error
	List(ctx context.Context, db tenancy.Database) ([]*models.Patient, error)
	ListByStatus(ctx context.Context, db tenancy.Database, status models.PatientStatus) ([]*models.Patient, error)

	AddAdmission(ctx context.Context, db tenancy.Database, admission *models.Admission) error
	ListAdmissions(ctx context.Context, db tenancy.Database, patientID uuid.UUID) ([]*models.Admission, error)
}

type patientRepo struct {
	db database.Querier
}

func NewPatientRepo(db database.Querier) PatientRepository {
	return &patientRepo{db: db}
}

const patientColumns = `id, uhid, name, age, gender, phone, address, blood_group, emergency_contact, status,
	assigned_bed, last_bed, diagnosis, doctor, admission_date, discharge_date, discharge_notes, hospital_code, created_at, updated_at`

func scanPatient(row rowScanner) (*models.Patient, error) {
	p := &models.Patient{}
	err := row.Scan(
		&p.ID, &p.UHID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Address, &p.BloodGroup, &p.EmergencyContact, &p.Status,
		&p.AssignedBed, &p.LastBed, &p.Diagnosis, &p.Doctor, &p.AdmissionDate, &p.DischargeDate, &p.DischargeNotes, &p.HospitalCode,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *patientRepo) Create(ctx context.Context, db tenancy.Database, p *models.Patient) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, uhid, name, age, gender, phone, address, blood_group, emergency_contact, status,
			assigned_bed, last_bed, diagnosis, doctor, admission_date, discharge_date, discharge_notes, hospital_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
		RETURNING created_at, updated_at
	`, db.Table("patients"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		p.ID, p.UHID, p.Name, p.Age, p.Gender, p.Phone, p.Address, p.BloodGroup, p.EmergencyContact, p.Status,
		p.AssignedBed, p.LastBed, p.Diagnosis, p.Doctor, p.AdmissionDate, p.DischargeDate, p.DischargeNotes, p.HospitalCode,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return common.TranslateStorageError(err, "patient")
}

func (r *patientRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.Patient, error) {
	p, err := scanPatient(database.Conn(ctx, r.db).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, common.TranslateStorageError(err, "patient")
	}
	return p, nil
}

func (r *patientRepo) GetByID(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, patientColumns, db.Table("patients"))
	return r.getOne(ctx, query, id)
}

func (r *patientRepo) GetForUpdate(ctx context.Context, db tenancy.Database, id uuid.UUID) (*models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, patientColumns, db.Table("patients"))
	return r.getOne(ctx, query, id)
}

func (r *patientRepo) GetByUHID(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE uhid = $1`, patientColumns, db.Table("patients"))
	return r.getOne(ctx, query, uhid)
}

func (r *patientRepo) GetByUHIDForUpdate(ctx context.Context, db tenancy.Database, uhid string) (*models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE uhid = $1 FOR UPDATE`, patientColumns, db.Table("patients"))
	return r.getOne(ctx, query, uhid)
}

func (r *patientRepo) Update(ctx context.Context, db tenancy.Database, p *models.Patient) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, age = $2, gender = $3, phone = $4, address = $5, blood_group = $6, emergency_contact = $7,
			status = $8, assigned_bed = $9, diagnosis = $10, doctor = $11, admission_date = $12, discharge_date = $13,
			discharge_notes = $14, last_bed = $15, updated_at = NOW()
		WHERE id = $16
		RETURNING updated_at
	`, db.Table("patients"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		p.Name, p.Age, p.Gender, p.Phone, p.Address, p.BloodGroup, p.EmergencyContact,
		p.Status, p.AssignedBed, p.Diagnosis, p.Doctor, p.AdmissionDate, p.DischargeDate,
		p.DischargeNotes, p.LastBed, p.ID,
	).Scan(&p.UpdatedAt)
	return common.TranslateStorageError(err, "patient")
}

func (r *patientRepo) List(ctx context.Context, db tenancy.Database) ([]*models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, patientColumns, db.Table("patients"))
	return r.list(ctx, query)
}

func (r *patientRepo) ListByStatus(ctx context.Context, db tenancy.Database, status models.PatientStatus) ([]*models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE status = $1 ORDER BY created_at DESC`, patientColumns, db.Table("patients"))
	return r.list(ctx, query, status)
}

func (r *patientRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Patient, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []*models.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *patientRepo) AddAdmission(ctx context.Context, db tenancy.Database, a *models.Admission) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, patient_id, admission_date, discharge_date, diagnosis, doctor, bed_id, discharge_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`, db.Table("patient_admissions"))
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		a.ID, a.PatientID, a.AdmissionDate, a.DischargeDate, a.Diagnosis, a.Doctor, a.BedID, a.DischargeNotes,
	).Scan(&a.CreatedAt)
	return common.TranslateStorageError(err, "admission")
}

func (r *patientRepo) ListAdmissions(ctx context.Context, db tenancy.Database, patientID uuid.UUID) ([]*models.Admission, error) {
	query := fmt.Sprintf(`
		SELECT id, patient_id, admission_date, discharge_date, diagnosis, doctor, bed_id, discharge_notes, created_at
		FROM %s
		WHERE patient_id = $1
		ORDER BY created_at
	`, db.Table("patient_admissions"))
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []*models.Admission{}
	for rows.Next() {
		a := &models.Admission{}
		if err := rows.Scan(&a.ID, &a.PatientID, &a.AdmissionDate, &a.DischargeDate, &a.Diagnosis, &a.Doctor, &a.BedID, &a.DischargeNotes, &a.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, a)
	}
	return history, rows.Err()
}
