package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"pennywise/internal/common"
	"pennywise/internal/server/repositories/settings"
)

// SMTPMailer sends mail through the relay described by the persisted
// smtp_* settings. Settings are read per send so an administrator can
// reconfigure delivery without a restart.
//
// Required keys: smtp_host, smtp_port, smtp_from.
// Optional keys: smtp_username, smtp_password (plain auth when both set).
type SMTPMailer struct {
	settings settings.Repository
}

func NewSMTPMailer(settings settings.Repository) *SMTPMailer {
	return &SMTPMailer{settings: settings}
}

var ErrNotConfigured = errors.New("smtp not configured")

func (m *SMTPMailer) getRequired(ctx context.Context, key string) (string, error) {
	value, err := m.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", ErrNotConfigured
		}
		return "", err
	}
	return value, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	host, err := m.getRequired(ctx, "smtp_host")
	if err != nil {
		return err
	}
	port, err := m.getRequired(ctx, "smtp_port")
	if err != nil {
		return err
	}
	from, err := m.getRequired(ctx, "smtp_from")
	if err != nil {
		return err
	}

	username, _ := m.settings.Get(ctx, "smtp_username")
	password, _ := m.settings.Get(ctx, "smtp_password")

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from, to, subject, body)

	// smtp.SendMail upgrades to STARTTLS when the relay offers it.
	if err := smtp.SendMail(host+":"+port, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return nil
}
