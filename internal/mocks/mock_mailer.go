package mocks

import (
	"context"
	"sync"

	"github.com/you/authsvc/domain"
)

// SentEmail records a single Send call.
type SentEmail struct {
	To       string
	Template domain.EmailTemplate
	Data     map[string]string
}

// MockMailer implements domain.Mailer interface for testing. It records every
// send so tests can assert on outbound email side effects.
type MockMailer struct {
	SendFunc func(ctx context.Context, to string, template domain.EmailTemplate, data map[string]string) error

	mu   sync.Mutex
	Sent []SentEmail
}

// NewMockMailer creates a new MockMailer with default behaviors
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send delivers a templated email
func (m *MockMailer) Send(ctx context.Context, to string, template domain.EmailTemplate, data map[string]string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentEmail{To: to, Template: template, Data: data})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, template, data)
	}
	// Default behavior: success
	return nil
}

// LastSent returns the most recent recorded send, or nil if none.
func (m *MockMailer) LastSent() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}

// Compile-time interface compliance verification
var _ domain.Mailer = (*MockMailer)(nil)
