// Package users provides storage for patient-side accounts, keyed by
// login_phone_number.
package users

import (
	"context"

	"github.com/dmitrijs2005/clinicauth/internal/server/models"
)

// Repository is the user storage used by the resolver and account service.
// Lookups that match nothing return common.ErrorNotFound.
type Repository interface {
	// FindByLogin ignores is_active.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	// FindActiveByLogin only matches accounts with is_active set.
	FindActiveByLogin(ctx context.Context, login string) (*models.User, error)

	SetLogin(ctx context.Context, id int64, login string) error
	SetPassword(ctx context.Context, login string, passwordHash string) error
	SetActive(ctx context.Context, login string, active bool) error
	SetVerified(ctx context.Context, login string, verified bool) error
}
