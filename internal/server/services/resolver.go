// Package services contains the server-side business logic: resolving a
// bearer token or login into an account, and the account lifecycle
// operations that issue tokens and change credentials.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/server/auth"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/repomanager"
)

// TokenDecoder turns a raw token into its subject; false means the token is
// unusable.
type TokenDecoder interface {
	Decode(token string) (auth.Subject, bool)
}

// PrincipalResolver authenticates requests for both account kinds.
//
// The ByToken methods return common.ErrorUnauthorized when the token does
// not decode (also matching common.ErrInvalidToken) or the embedded password
// differs from the stored one, and common.ErrorNotFound when no account has
// the embedded login. Storage failures match common.ErrorStorage.
//
// Token lookups do not filter on is_active; login lookups do.
type PrincipalResolver struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenDecoder
}

func NewPrincipalResolver(db *sql.DB, m repomanager.RepositoryManager, tokens TokenDecoder) *PrincipalResolver {
	return &PrincipalResolver{db: db, repomanager: m, tokens: tokens}
}

func (r *PrincipalResolver) ResolveUserByToken(ctx context.Context, token string) (*models.User, error) {
	repo := r.repomanager.Users(r.db)
	return resolveByToken(ctx, r.tokens, token, repo.FindByLogin, func(u *models.User) string { return u.Password })
}

// ResolveUserByLogin returns the active user with login, or false when there
// is none.
func (r *PrincipalResolver) ResolveUserByLogin(ctx context.Context, login string) (*models.User, bool, error) {
	return resolveByLogin(ctx, login, r.repomanager.Users(r.db).FindActiveByLogin)
}

func (r *PrincipalResolver) ResolveAdminByToken(ctx context.Context, token string) (*models.AdminUser, error) {
	repo := r.repomanager.Admins(r.db)
	return resolveByToken(ctx, r.tokens, token, repo.FindByLogin, func(a *models.AdminUser) string { return a.Password })
}

// ResolveAdminByLogin returns the active admin user with mobile, or false
// when there is none.
func (r *PrincipalResolver) ResolveAdminByLogin(ctx context.Context, mobile string) (*models.AdminUser, bool, error) {
	return resolveByLogin(ctx, mobile, r.repomanager.Admins(r.db).FindActiveByLogin)
}

func resolveByToken[T any](
	ctx context.Context,
	tokens TokenDecoder,
	token string,
	find func(context.Context, string) (*T, error),
	password func(*T) string,
) (*T, error) {
	sub, ok := tokens.Decode(token)
	if !ok {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}

	account, err := find(ctx, sub.Login)
	if err != nil {
		return nil, storageError(err)
	}

	if !samePassword(sub.Password, password(account)) {
		return nil, common.ErrorUnauthorized
	}

	return account, nil
}

func resolveByLogin[T any](ctx context.Context, login string, find func(context.Context, string) (*T, error)) (*T, bool, error) {
	account, err := find(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, storageError(err)
	}
	return account, true, nil
}

// samePassword is plain equality of the two values, compared in constant
// time. An unset stored password never matches.
func samePassword(embedded, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(embedded), []byte(stored)) == 1
}
