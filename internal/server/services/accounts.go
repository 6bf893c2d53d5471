package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/cryptox"
	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/repomanager"
)

// randomPasswordBytes gives a 10-character hex password.
const randomPasswordBytes = 5

// TokenEncoder issues a token for a login and password value.
type TokenEncoder interface {
	Encode(login, password string) (string, error)
}

// AccountService covers the account lifecycle around the resolver: logging
// in (issuing a token), setting passwords and toggling account flags.
//
// Issued tokens embed the stored password hash, which is what
// PrincipalResolver compares against. Changing a password therefore
// invalidates every token issued before the change.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.Hasher
	tokens      TokenEncoder
	now         func() time.Time
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, h cryptox.Hasher, tokens TokenEncoder) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      h,
		tokens:      tokens,
		now:         time.Now,
	}
}

// LoginUser checks password against the active user with login and returns
// a token. Unknown, inactive and wrong-password cases all give
// common.ErrorUnauthorized.
func (s *AccountService) LoginUser(ctx context.Context, login, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).FindActiveByLogin(ctx, login)
	if err != nil {
		return "", loginError(err)
	}
	return s.issue(login, password, user.Password)
}

// LoginAdmin is LoginUser for admin users and also records last_login.
func (s *AccountService) LoginAdmin(ctx context.Context, mobile, password string) (string, error) {
	repo := s.repomanager.Admins(s.db)

	admin, err := repo.FindActiveByLogin(ctx, mobile)
	if err != nil {
		return "", loginError(err)
	}

	token, err := s.issue(mobile, password, admin.Password)
	if err != nil {
		return "", err
	}

	if err := repo.TouchLastLogin(ctx, mobile, s.now()); err != nil {
		return "", storageError(err)
	}
	return token, nil
}

func (s *AccountService) SetUserPassword(ctx context.Context, login, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return wrapUpdate(s.repomanager.Users(s.db).SetPassword(ctx, login, hash))
}

// SetUserRandomPassword stores a fresh random password and returns it in
// plain text so it can be handed to the user.
func (s *AccountService) SetUserRandomPassword(ctx context.Context, login string) (string, error) {
	password, err := common.MakeRandHexString(randomPasswordBytes)
	if err != nil {
		return "", common.ErrorInternal
	}
	if err := s.SetUserPassword(ctx, login, password); err != nil {
		return "", err
	}
	return password, nil
}

// AssignUserCredentials sets the login and password of user id in one
// transaction. A login held by another user gives common.ErrorLoginTaken.
func (s *AccountService) AssignUserCredentials(ctx context.Context, id int64, login, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		existing, err := repo.FindByLogin(ctx, login)
		switch {
		case err == nil && existing.ID != id:
			return common.ErrorLoginTaken
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return storageError(err)
		}

		if err := repo.SetLogin(ctx, id, login); err != nil {
			return wrapUpdate(err)
		}
		return wrapUpdate(repo.SetPassword(ctx, login, hash))
	})
}

func (s *AccountService) SetUserActive(ctx context.Context, login string, active bool) error {
	return wrapUpdate(s.repomanager.Users(s.db).SetActive(ctx, login, active))
}

func (s *AccountService) SetUserVerified(ctx context.Context, login string, verified bool) error {
	return wrapUpdate(s.repomanager.Users(s.db).SetVerified(ctx, login, verified))
}

func (s *AccountService) SetAdminPassword(ctx context.Context, mobile, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return wrapUpdate(s.repomanager.Admins(s.db).SetPassword(ctx, mobile, hash))
}

func (s *AccountService) SetAdminActive(ctx context.Context, mobile string, active bool) error {
	return wrapUpdate(s.repomanager.Admins(s.db).SetActive(ctx, mobile, active))
}

func (s *AccountService) SetAdminVerified(ctx context.Context, mobile string, verified bool) error {
	return wrapUpdate(s.repomanager.Admins(s.db).SetVerified(ctx, mobile, verified))
}

func (s *AccountService) SetAdminSuperuser(ctx context.Context, mobile string, superuser bool) error {
	return wrapUpdate(s.repomanager.Admins(s.db).SetSuperuser(ctx, mobile, superuser))
}

// TouchAdminVisit records the current time as the admin's last visit.
func (s *AccountService) TouchAdminVisit(ctx context.Context, mobile string) error {
	return wrapUpdate(s.repomanager.Admins(s.db).TouchLastVisit(ctx, mobile, s.now()))
}

// --- helpers below ---

func (s *AccountService) issue(login, password, storedHash string) (string, error) {
	if storedHash == "" || !s.hasher.Verify(password, storedHash) {
		return "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Encode(login, storedHash)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

func loginError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorUnauthorized
	}
	return storageError(err)
}

func wrapUpdate(err error) error {
	if err == nil {
		return nil
	}
	return storageError(err)
}
