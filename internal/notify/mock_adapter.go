package notify

import (
	"context"
	"sync"
)

// MockAdapter implements Adapter for testing. It records sent alerts.
type MockAdapter struct {
	mu      sync.Mutex
	name    string
	sent    []Alert
	sendErr error
	closed  bool
	notify  chan struct{}
}

// NewMockAdapter creates a MockAdapter reporting the given name.
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{name: name, notify: make(chan struct{}, 100)}
}

// Name returns the configured name.
func (m *MockAdapter) Name() string { return m.name }

// Send records the alert, or returns the configured error.
func (m *MockAdapter) Send(ctx context.Context, alert Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, alert)
	select {
	case m.notify <- struct{}{}:
	default:
	}
	return nil
}

// Close marks the adapter closed.
func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// --- Test helpers ---

// SetSendError makes every subsequent Send fail with err.
func (m *MockAdapter) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// Sent returns a copy of all delivered alerts.
func (m *MockAdapter) Sent() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, len(m.sent))
	copy(out, m.sent)
	return out
}

// Closed reports whether Close was called.
func (m *MockAdapter) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Delivered returns a channel that receives one value per successful Send.
func (m *MockAdapter) Delivered() <-chan struct{} { return m.notify }
