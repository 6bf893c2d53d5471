package users

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

const selectUser = `SELECT id, client_id, COALESCE(first_name, ''), COALESCE(last_name, ''),
		COALESCE(patronymic, ''), birth_date, COALESCE(gender, ''), COALESCE(email, ''),
		phone_number, COALESCE(login_phone_number, ''), COALESCE(password, ''),
		is_verified, is_active, pref_notification_contact_id, medical_card_number, created
	FROM users`

type PostgresRepository struct {
	db      dbx.DBTX
	timeout time.Duration
}

// NewPostgresRepository binds the repository to db. Each call is bounded by
// timeout when it is positive.
func NewPostgresRepository(db dbx.DBTX, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{db: db, timeout: timeout}
}

func (r *PostgresRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.findOne(ctx, selectUser+`
	WHERE login_phone_number = $1`, login)
}

func (r *PostgresRepository) FindActiveByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.findOne(ctx, selectUser+`
	WHERE login_phone_number = $1 AND is_active`, login)
}

func (r *PostgresRepository) SetLogin(ctx context.Context, id int64, login string) error {
	ctx, cancel := dbx.QueryContext(ctx, r.timeout)
	defer cancel()

	return dbx.ExecOne(ctx, r.db, `UPDATE users SET login_phone_number = $2 WHERE id = $1`, id, login)
}

func (r *PostgresRepository) SetPassword(ctx context.Context, login string, passwordHash string) error {
	ctx, cancel := dbx.QueryContext(ctx, r.timeout)
	defer cancel()

	return dbx.ExecOne(ctx, r.db, `UPDATE users SET password = $2 WHERE login_phone_number = $1`, login, passwordHash)
}

func (r *PostgresRepository) SetActive(ctx context.Context, login string, active bool) error {
	ctx, cancel := dbx.QueryContext(ctx, r.timeout)
	defer cancel()

	return dbx.ExecOne(ctx, r.db, `UPDATE users SET is_active = $2 WHERE login_phone_number = $1`, login, active)
}

func (r *PostgresRepository) SetVerified(ctx context.Context, login string, verified bool) error {
	ctx, cancel := dbx.QueryContext(ctx, r.timeout)
	defer cancel()

	return dbx.ExecOne(ctx, r.db, `UPDATE users SET is_verified = $2 WHERE login_phone_number = $1`, login, verified)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	ctx, cancel := dbx.QueryContext(ctx, r.timeout)
	defer cancel()

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.ClientID,
		&u.FirstName,
		&u.LastName,
		&u.Patronymic,
		&u.BirthDate,
		&u.Gender,
		&u.Email,
		&u.PhoneNumber,
		&u.LoginPhoneNumber,
		&u.Password,
		&u.IsVerified,
		&u.IsActive,
		&u.PrefNotificationContactID,
		&u.MedicalCardNumber,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}
