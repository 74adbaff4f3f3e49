// Package otpcodes declares the repository contract for one-time code rows.
//
// Rows are append-only: consumed or expired codes are never deleted, they
// simply stop satisfying the usable predicate.
package otpcodes

import (
	"context"
	"time"

	"pennywise/internal/server/models"
)

// Repository defines persistence operations for one-time codes.
type Repository interface {
	// Create inserts a new code row.
	Create(ctx context.Context, code *models.OTPCode) error

	// LastUnconsumedCreatedAt returns the creation time of the newest
	// unconsumed code for (userID, purpose), or common.ErrorNotFound if no
	// such row exists. The issuance cooldown is measured against it.
	LastUnconsumedCreatedAt(ctx context.Context, userID string, purpose string) (time.Time, error)

	// FindUsable returns the newest row matching (userID, code, purpose) that
	// is unconsumed and unexpired, or common.ErrorNotFound.
	FindUsable(ctx context.Context, userID string, code string, purpose string) (*models.OTPCode, error)

	// MarkConsumed sets used_at on the row only if it is still unconsumed and
	// reports whether this caller claimed it. Concurrent consumers of the same
	// code must observe at most one true result.
	MarkConsumed(ctx context.Context, id string) (bool, error)
}
