// Package common contains shared constants and sentinel errors used across
// Pennywise components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorBadRequest   = errors.New("bad request")

	// OTP issuance cooldown. Usually wrapped in a CooldownError that carries
	// the remaining wait.
	ErrorTooManyRequests = errors.New("too many requests")
)

// CooldownError reports how many whole seconds remain before another
// one-time code may be requested. It matches ErrorTooManyRequests
// under errors.Is.
type CooldownError struct {
	WaitSeconds int64
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %ds before requesting another code", e.WaitSeconds)
}

func (e *CooldownError) Unwrap() error {
	return ErrorTooManyRequests
}
