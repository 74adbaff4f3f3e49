// Package models defines the server-side data model for accounts,
// administrators, one-time codes and persisted settings.
package models

import "time"

// Auth providers recorded on a user row.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is an ordinary account. PasswordHash is empty for federated-only
// accounts; GoogleSub is nil until the account is linked to a Google identity.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AuthProvider string
	GoogleSub    *string
	IsVerified   bool
	CreatedAt    time.Time
}

// PublicUser is the profile shape returned to API callers.
type PublicUser struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// Public maps a User to its API representation.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}
