// Package cryptox provides the password hashing capability used when an
// account's password is set or checked at login.
package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords. Implementations are stateless and
// safe for concurrent use.
type Hasher interface {
	// Hash returns an opaque encoded hash of password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash is a
	// mismatch.
	Verify(password, hash string) bool
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, which must lie within
// [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", common.ErrorEmptyPassword
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
