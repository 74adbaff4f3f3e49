package mail

import (
	"context"
	"sync"
)

// Message is a captured email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// MemoryMailer records messages instead of sending them. Test helper.
type MemoryMailer struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

func (m *MemoryMailer) Send(_ context.Context, to, subject, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{To: to, Subject: subject, Body: body})
	return nil
}

// Messages returns a copy of the captured messages.
func (m *MemoryMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
