package domain

import "time"

// User is the identity anchor for the service. UID references the
// external identity provider account; Email is stored normalized
// (trimmed, lowercased) and is globally unique, as is UID.
type User struct {
	ID                  string
	UID                 string
	Email               string
	Disabled            bool
	DeletionRequestedAt *time.Time
	CreatedAt           time.Time
	LastLoginAt         time.Time
}
