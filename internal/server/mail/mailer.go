// Package mail delivers outbound email. Delivery failure is non-fatal to
// callers by policy: the OTP issuance path logs a failed send and reports
// success anyway.
package mail

import (
	"context"
	"fmt"
)

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SendOTP formats and sends the one-time code email.
func SendOTP(ctx context.Context, m Mailer, to, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf("Your OTP code is: %s\nThis code expires in 10 minutes.", code)
	return m.Send(ctx, to, subject, body)
}
