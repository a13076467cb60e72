package repositories

import (
	"context"
	"fmt"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
	"hospitalhub/pkg/database"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	// List returns every user when hospitalCode is empty, otherwise the
	// users bound to that hospital.
	List(ctx context.Context, hospitalCode string) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

type userRepo struct {
	db    database.Querier
	table string
}

func NewUserRepo(db database.Querier) UserRepository {
	return &userRepo{db: db, table: tenancy.Main().Table("users")}
}

const userColumns = `id, email, password_hash, name, role, hospital_code, is_active, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.HospitalCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, password_hash, name, role, hospital_code, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`, r.table)
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.HospitalCode, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return common.TranslateStorageError(err, "user")
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.table)
	u, err := scanUser(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, common.TranslateStorageError(err, "user")
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(email) = lower($1)`, userColumns, r.table)
	u, err := scanUser(database.Conn(ctx, r.db).QueryRow(ctx, query, email))
	if err != nil {
		return nil, common.TranslateStorageError(err, "user")
	}
	return u, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET email = $1, password_hash = $2, name = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`, r.table)
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, user.Email, user.PasswordHash, user.Name, user.ID).Scan(&user.UpdatedAt)
	return common.TranslateStorageError(err, "user")
}

func (r *userRepo) UpdateRole(ctx context.Context, id string, role models.Role) error {
	query := fmt.Sprintf(`UPDATE %s SET role = $1, updated_at = NOW() WHERE id = $2`, r.table)
	return r.execOne(ctx, query, role, id)
}

func (r *userRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_active = $1, updated_at = NOW() WHERE id = $2`, r.table)
	return r.execOne(ctx, query, active, id)
}

func (r *userRepo) execOne(ctx context.Context, query string, args ...interface{}) error {
	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("user")
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, hospitalCode string) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at`, userColumns, r.table)
	args := []interface{}{}
	if hospitalCode != "" {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE hospital_code = $1 ORDER BY created_at`, userColumns, r.table)
		args = append(args, hospitalCode)
	}

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)
	err := database.Conn(ctx, r.db).QueryRow(ctx, query).Scan(&n)
	return n, err
}
