// Package admins declares the repository contract for administrator rows.
// Administrators live in a namespace disjoint from ordinary accounts.
package admins

import (
	"context"

	"pennywise/internal/server/models"
)

// Repository defines persistence operations for administrators.
type Repository interface {
	// Count returns the size of the administrator set. The bootstrap check
	// depends on it.
	Count(ctx context.Context) (int64, error)

	// Create inserts a new administrator.
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)

	// GetByEmail looks up an administrator by email.
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)

	// GetByID looks up an administrator by id.
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}
