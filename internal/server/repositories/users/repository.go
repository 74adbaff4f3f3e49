// Package users declares the repository contract for account rows.
package users

import (
	"context"

	"pennywise/internal/server/models"
)

// Repository defines persistence operations for ordinary accounts.
// Implementations must return common.ErrorNotFound for missing rows and
// common.ErrorConflict when the unique email constraint is violated.
type Repository interface {
	// Create inserts a new account. The caller fills ID, Name, Email,
	// PasswordHash, AuthProvider and GoogleSub; the store owns CreatedAt.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks up an account by its canonicalized email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks up an account by id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// LinkGoogleSub attaches a federated subject id to an existing account
	// and switches its provider tag to google.
	LinkGoogleSub(ctx context.Context, id string, sub string) (*models.User, error)

	// SetVerified flips the verified flag.
	SetVerified(ctx context.Context, id string, verified bool) error

	// SetPassword replaces the stored password hash and marks the account
	// verified (a successful reset proves email ownership).
	SetPassword(ctx context.Context, id string, passwordHash string) error

	// Delete removes the account and reports how many rows were affected.
	Delete(ctx context.Context, id string) (int64, error)
}
