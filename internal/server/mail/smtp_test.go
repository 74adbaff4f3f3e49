package mail

import (
	"context"
	"errors"
	"testing"

	"pennywise/internal/common"
)

type mapSettings struct {
	values map[string]string
}

func (s *mapSettings) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", common.ErrorNotFound
}

func (s *mapSettings) Upsert(_ context.Context, key, value, _ string) error {
	s.values[key] = value
	return nil
}

func TestSMTPMailer_NotConfigured(t *testing.T) {
	cases := map[string]map[string]string{
		"nothing set":  {},
		"missing port": {"smtp_host": "mail.example.com", "smtp_from": "noreply@example.com"},
		"missing from": {"smtp_host": "mail.example.com", "smtp_port": "587"},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			m := NewSMTPMailer(&mapSettings{values: values})
			err := m.Send(context.Background(), "a@x.com", "s", "b")
			if !errors.Is(err, ErrNotConfigured) {
				t.Fatalf("expected ErrNotConfigured, got %v", err)
			}
		})
	}
}
