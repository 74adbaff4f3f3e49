package mail

import (
	"context"
	"errors"
)

// FallbackMailer tries the primary mailer and falls back when the primary
// reports it is not configured. Lets a deployment run without SMTP settings
// and still surface codes through the log mailer.
type FallbackMailer struct {
	primary  Mailer
	fallback Mailer
}

func NewFallbackMailer(primary, fallback Mailer) *FallbackMailer {
	return &FallbackMailer{primary: primary, fallback: fallback}
}

func (m *FallbackMailer) Send(ctx context.Context, to, subject, body string) error {
	err := m.primary.Send(ctx, to, subject, body)
	if errors.Is(err, ErrNotConfigured) {
		return m.fallback.Send(ctx, to, subject, body)
	}
	return err
}
