package repositories

import (
	"context"
	"fmt"

	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

type StatsRepository interface {
	TenantStats(ctx context.Context, db tenancy.Database) (*models.TenantStats, error)
}

type statsRepo struct {
	db database.Querier
}

func NewStatsRepo(db database.Querier) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) TenantStats(ctx context.Context, db tenancy.Database) (*models.TenantStats, error) {
	beds, patients, claims := db.Table("beds"), db.Table("patients"), db.Table("claims")
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %[1]s),
			(SELECT COUNT(*) FROM %[1]s WHERE status = 'available'),
			(SELECT COUNT(*) FROM %[1]s WHERE status = 'occupied'),
			(SELECT COUNT(*) FROM %[1]s WHERE status = 'maintenance'),
			(SELECT COUNT(*) FROM %[2]s),
			(SELECT COUNT(*) FROM %[2]s WHERE status = 'Waiting'),
			(SELECT COUNT(*) FROM %[2]s WHERE status = 'Admitted'),
			(SELECT COUNT(*) FROM %[2]s WHERE status = 'Discharged'),
			(SELECT COUNT(*) FROM %[3]s),
			(SELECT COUNT(*) FROM %[3]s WHERE status = 'pending'),
			(SELECT COALESCE(SUM(amount), 0) FROM %[3]s)
	`, beds, patients, claims)

	s := &models.TenantStats{HospitalCode: db.HospitalCode()}
	err := database.Conn(ctx, r.db).QueryRow(ctx, query).Scan(
		&s.TotalBeds, &s.AvailableBeds, &s.OccupiedBeds, &s.MaintenanceBeds,
		&s.TotalPatients, &s.WaitingPatients, &s.AdmittedPatients, &s.DischargedPatients,
		&s.TotalClaims, &s.PendingClaims, &s.ClaimAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("stats for %s: %w", db, err)
	}
	return s, nil
}
