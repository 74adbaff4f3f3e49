package models

import "time"

// One-time code purposes. A verify code cannot satisfy a reset check and
// vice versa.
const (
	OTPPurposeVerify = "verify"
	OTPPurposeReset  = "reset"
)

// OTPCode is a single one-time code row. Rows are never deleted; a code is
// usable only while UsedAt is nil and the current time is before ExpiresAt.
type OTPCode struct {
	ID        string
	UserID    string
	Code      string
	Purpose   string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
