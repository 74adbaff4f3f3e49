// Package settings declares the repository contract for persisted
// key/value settings. The auth core reads google_client_id and the smtp_*
// keys from here.
package settings

import "context"

// Repository defines read/write access to app_settings.
type Repository interface {
	// Get returns the value for key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Upsert inserts or replaces the value for key, recording which
	// administrator changed it.
	Upsert(ctx context.Context, key, value, adminID string) error
}
