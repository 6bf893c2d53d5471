package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/auth"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/admins"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/users"
)

type fakeUsersRepo struct {
	byLogin map[string]*models.User
	findErr error
	setErr  error

	findCalls       int
	findActiveCalls int
	passwords       map[string]string
	logins          map[int64]string
	active          map[string]bool
	verified        map[string]bool
}

func newFakeUsers(us ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{
		byLogin:   map[string]*models.User{},
		passwords: map[string]string{},
		logins:    map[int64]string{},
		active:    map[string]bool{},
		verified:  map[string]bool{},
	}
	for _, u := range us {
		f.byLogin[u.LoginPhoneNumber] = u
	}
	return f
}

func (f *fakeUsersRepo) FindByLogin(_ context.Context, login string) (*models.User, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) FindActiveByLogin(_ context.Context, login string) (*models.User, error) {
	f.findActiveCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byLogin[login]
	if !ok || !u.IsActive {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) SetLogin(_ context.Context, id int64, login string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.logins[id] = login
	return nil
}

func (f *fakeUsersRepo) SetPassword(_ context.Context, login, hash string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.passwords[login] = hash
	return nil
}

func (f *fakeUsersRepo) SetActive(_ context.Context, login string, v bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.active[login] = v
	return nil
}

func (f *fakeUsersRepo) SetVerified(_ context.Context, login string, v bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.verified[login] = v
	return nil
}

type fakeAdminsRepo struct {
	byLogin  map[string]*models.AdminUser
	findErr  error
	setErr   error
	touchErr error

	findCalls       int
	findActiveCalls int
	passwords       map[string]string
	flags           map[string]bool
	lastLogin       map[string]time.Time
	lastVisit       map[string]time.Time
}

func newFakeAdmins(as ...*models.AdminUser) *fakeAdminsRepo {
	f := &fakeAdminsRepo{
		byLogin:   map[string]*models.AdminUser{},
		passwords: map[string]string{},
		flags:     map[string]bool{},
		lastLogin: map[string]time.Time{},
		lastVisit: map[string]time.Time{},
	}
	for _, a := range as {
		f.byLogin[a.Mobile] = a
	}
	return f
}

func (f *fakeAdminsRepo) FindByLogin(_ context.Context, mobile string) (*models.AdminUser, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	a, ok := f.byLogin[mobile]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAdminsRepo) FindActiveByLogin(_ context.Context, mobile string) (*models.AdminUser, error) {
	f.findActiveCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	a, ok := f.byLogin[mobile]
	if !ok || !a.IsActive {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAdminsRepo) SetPassword(_ context.Context, mobile, hash string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.passwords[mobile] = hash
	return nil
}

func (f *fakeAdminsRepo) setFlag(key string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.flags[key] = true
	return nil
}

func (f *fakeAdminsRepo) SetActive(_ context.Context, mobile string, v bool) error {
	if !v {
		return f.setFlag(mobile + ":inactive")
	}
	return f.setFlag(mobile + ":active")
}

func (f *fakeAdminsRepo) SetVerified(_ context.Context, mobile string, v bool) error {
	if !v {
		return f.setFlag(mobile + ":unverified")
	}
	return f.setFlag(mobile + ":verified")
}

func (f *fakeAdminsRepo) SetSuperuser(_ context.Context, mobile string, v bool) error {
	if !v {
		return f.setFlag(mobile + ":regular")
	}
	return f.setFlag(mobile + ":superuser")
}

func (f *fakeAdminsRepo) TouchLastLogin(_ context.Context, mobile string, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.lastLogin[mobile] = at
	return nil
}

func (f *fakeAdminsRepo) TouchLastVisit(_ context.Context, mobile string, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.lastVisit[mobile] = at
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	a *fakeAdminsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Admins(dbx.DBTX) admins.Repository           { return m.a }

// stubCodec decodes tokens of the form "login|password" and encodes the same
// way, so service tests do not depend on JWT details.
type stubCodec struct {
	encodeErr error
}

func (stubCodec) Decode(token string) (auth.Subject, bool) {
	for i := 0; i < len(token); i++ {
		if token[i] == '|' {
			return auth.Subject{Login: token[:i], Password: token[i+1:]}, true
		}
	}
	return auth.Subject{}, false
}

func (c stubCodec) Encode(login, password string) (string, error) {
	if c.encodeErr != nil {
		return "", c.encodeErr
	}
	return login + "|" + password, nil
}

// plainHasher "hashes" by prefixing, which keeps assertions readable.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) {
	if p == "" {
		return "", common.ErrorEmptyPassword
	}
	return "h:" + p, nil
}

func (plainHasher) Verify(p, hash string) bool { return "h:"+p == hash }
