package models

import "time"

// Setting is a persisted key/value pair from app_settings. The auth core
// reads google_client_id and the smtp_* keys from here.
type Setting struct {
	Key       string
	Value     string
	UpdatedBy *string
	UpdatedAt time.Time
}
