package mail

import (
	"context"

	"pennywise/internal/logging"
)

// LogMailer logs the email instead of sending it. Development fallback for
// when SMTP is unconfigured; it logs recipient addresses and full contents,
// so it is not meant for production.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mail")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info(ctx, "send email", "to", to, "subject", subject, "body", body)
	return nil
}
