// Package admins provides storage for back-office accounts, keyed by mobile.
package admins

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/server/models"
)

// Repository is the admin-user storage. Lookups that match nothing return
// common.ErrorNotFound.
type Repository interface {
	// FindByLogin ignores is_active.
	FindByLogin(ctx context.Context, mobile string) (*models.AdminUser, error)
	// FindActiveByLogin only matches accounts with is_active set.
	FindActiveByLogin(ctx context.Context, mobile string) (*models.AdminUser, error)

	SetPassword(ctx context.Context, mobile string, passwordHash string) error
	SetActive(ctx context.Context, mobile string, active bool) error
	SetVerified(ctx context.Context, mobile string, verified bool) error
	SetSuperuser(ctx context.Context, mobile string, superuser bool) error
	TouchLastLogin(ctx context.Context, mobile string, at time.Time) error
	TouchLastVisit(ctx context.Context, mobile string, at time.Time) error
}
