package models

import "time"

// AdminUser is a back-office account. Mobile is the login identifier.
type AdminUser struct {
	ID          int64
	Email       string
	Mobile      string
	Password    string
	FirstName   string
	LastName    string
	IsActive    bool
	IsVerified  bool
	IsSuperuser bool
	BirthDate   *time.Time
	Gender      string
	CreatedAt   time.Time
	LastLogin   *time.Time
	LastVisit   *time.Time
}
