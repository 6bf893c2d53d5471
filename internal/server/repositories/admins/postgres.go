package admins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
)

const selectAdmin = `SELECT id, email, mobile, password, COALESCE(first_name, ''), COALESCE(last_name, ''),
		is_active, is_verified, is_superuser, birth_date, COALESCE(gender, ''),
		created, last_login, last_visit
	FROM admin_users`

type PostgresRepository struct {
	db      dbx.DBTX
	timeout time.Duration
}

func NewPostgresRepository(db dbx.DBTX, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{db: db, timeout: timeout}
}

func (r *PostgresRepository) FindByLogin(ctx context.Context, mobile string) (*models.AdminUser, error) {
	return r.findOne(ctx, selectAdmin+`
	WHERE mobile = $1`, mobile)
}

func (r *PostgresRepository) FindActiveByLogin(ctx context.Context, mobile string) (*models.AdminUser, error) {
	return r.findOne(ctx, selectAdmin+`
	WHERE mobile = $1 AND is_active`, mobile)
}

func (r *PostgresRepository) SetPassword(ctx context.Context, mobile string, passwordHash string) error {
	return r.update(ctx, "password", mobile, passwordHash)
}

func (r *PostgresRepository) SetActive(ctx context.Context, mobile string, active bool) error {
	return r.update(ctx, "is_active", mobile, active)
}

func (r *PostgresRepository) SetVerified(ctx context.Context, mobile string, verified bool) error {
	return r.update(ctx, "is_verified", mobile, verified)
}

func (r *PostgresRepository) SetSuperuser(ctx context.Context, mobile string, superuser bool) error {
	return r.update(ctx, "is_superuser", mobile, superuser)
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, mobile string, at time.Time) error {
	return r.update(ctx, "last_login", mobile, at)
}

func (r *PostgresRepository) TouchLastVisit(ctx context.Context, mobile string, at time.Time) error {
	return r.update(ctx, "last_visit", mobile, at)
}

// update sets one column; column is always a constant from this file.
func (r *PostgresRepository) update(ctx context.Context, column, mobile string, value any) error {
	ctx, cancel := dbx.QueryContext(ctx, r.timeout)
	defer cancel()

	query := fmt.Sprintf(`UPDATE admin_users SET %s = $2 WHERE mobile = $1`, column)
	return dbx.ExecOne(ctx, r.db, query, mobile, value)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.AdminUser, error) {
	ctx, cancel := dbx.QueryContext(ctx, r.timeout)
	defer cancel()

	a := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID,
		&a.Email,
		&a.Mobile,
		&a.Password,
		&a.FirstName,
		&a.LastName,
		&a.IsActive,
		&a.IsVerified,
		&a.IsSuperuser,
		&a.BirthDate,
		&a.Gender,
		&a.CreatedAt,
		&a.LastLogin,
		&a.LastVisit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}
