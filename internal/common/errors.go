// Package common defines shared constants and sentinel errors used across
// the token codec, resolver, repositories and the transport boundary.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Storage failures (connectivity, driver errors). Never an auth outcome.
	ErrorStorage = errors.New("storage error")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorEmptyPassword = errors.New("password cannot be empty")
	ErrorLoginTaken    = errors.New("login already taken")

	// Auth errors (bad signature, malformed token, missing claims).
	ErrInvalidToken = errors.New("invalid token")
)
