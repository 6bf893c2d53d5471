// Package auth implements the bearer token format: an HS256 JWT whose "sub"
// claim carries the account login and the password value captured when the
// token was issued. Tokens carry no expiry.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Subject is the decoded payload of a valid token.
type Subject struct {
	Login    string
	Password string
}

// subjectClaim uses pointers so a missing key can be told apart from an
// empty value.
type subjectClaim struct {
	Login    *string `json:"login"`
	Password *string `json:"password"`
}

// Claims is the JWT body: {"iat": ..., "sub": {"login": ..., "password": ...}}.
// Encode never sets exp; it is read only so a foreign token carrying one is
// still held to it.
type Claims struct {
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
	Subject   *subjectClaim    `json:"sub,omitempty"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// GetSubject is empty: "sub" is an object here, not the registered string claim.
func (c Claims) GetSubject() (string, error) { return "", nil }

// TokenCodec signs and verifies tokens with a process-wide secret. It holds
// no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

// ErrEmptySecret is returned by NewTokenCodec for a zero-length key.
var ErrEmptySecret = errors.New("token secret is empty")

func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &TokenCodec{
		secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:    time.Now,
	}, nil
}

// Encode issues a token for login and password. password is embedded as-is.
func (c *TokenCodec) Encode(login, password string) (string, error) {
	claims := Claims{
		IssuedAt: jwt.NewNumericDate(c.now()),
		Subject:  &subjectClaim{Login: &login, Password: &password},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return s, nil
}

// Decode verifies token and returns its subject. Any failure (bad signature,
// foreign algorithm, malformed input, missing sub/login/password) yields
// false; callers treat that as unauthenticated.
func (c *TokenCodec) Decode(token string) (Subject, bool) {
	claims := &Claims{}

	parsed, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Subject{}, false
	}

	sub := claims.Subject
	if sub == nil || sub.Login == nil || sub.Password == nil {
		return Subject{}, false
	}

	return Subject{Login: *sub.Login, Password: *sub.Password}, true
}
