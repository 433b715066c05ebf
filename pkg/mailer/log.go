package mailer

import (
	"context"
	"log"
	"sync"
)

// LogMailer writes messages to the process log and keeps them for inspection.
// Used in development and tests.
type LogMailer struct {
	mu   sync.Mutex
	sent []Message
}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	log.Printf("[Mailer] to=%s subject=%q", msg.To, msg.Subject)
	return nil
}

// Sent returns a copy of every message sent so far
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
