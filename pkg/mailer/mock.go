package mailer

import (
	"context"
	"errors"
	"sync"
)

// MockClient implementa Client para pruebas y para entornos sin API key.
type MockClient struct {
	mu    sync.Mutex
	Sent  []Message

	// FailNext fuerza un error en el siguiente envío y se resetea solo.
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Sent: make([]Message, 0),
	}
}

func (m *MockClient) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return errors.New("mock mail failure")
	}

	m.Sent = append(m.Sent, msg)
	return nil
}

// Messages devuelve una copia de los correos registrados.
func (m *MockClient) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.Sent))
	copy(out, m.Sent)
	return out
}
