package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User is a patient-side account. LoginPhoneNumber is the login identifier.
//
// Nullable text columns are read as empty strings. PrefNotificationContactID
// references another user by id; the referenced user is never embedded.
type User struct {
	ID                        int64
	ClientID                  *int64
	FirstName                 string
	LastName                  string
	Patronymic                string
	BirthDate                 *time.Time
	Gender                    string
	Email                     string
	PhoneNumber               string
	LoginPhoneNumber          string
	Password                  string
	IsVerified                bool
	IsActive                  bool
	PrefNotificationContactID *int64
	MedicalCardNumber         *int64
	CreatedAt                 time.Time
}

// FullName returns "Last First Patronymic" with each present part
// capitalized.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.LastName, u.FirstName, u.Patronymic} {
		if p != "" {
			parts = append(parts, capitalize(p))
		}
	}
	return strings.Join(parts, " ")
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
