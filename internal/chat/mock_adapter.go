package chat

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockAdapter implements Adapter for testing. It records sent messages and
// allows simulating inbound events via SimulateText, SimulateAction, and
// SimulateCommand.
type MockAdapter struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	inbound   chan InboundEvent
	sent      []OutboundMessage
	sendErr   error
}

// NewMockAdapter creates a MockAdapter with a buffered inbound channel.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		inbound: make(chan InboundEvent, 100),
	}
}

// Connect marks the adapter as connected.
func (m *MockAdapter) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock adapter: already closed")
	}
	m.connected = true
	return nil
}

// Listen returns the inbound event channel. Must be called after Connect.
func (m *MockAdapter) Listen(ctx context.Context) (<-chan InboundEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil, fmt.Errorf("mock adapter: not connected")
	}
	return m.inbound, nil
}

// Send records the outbound message.
func (m *MockAdapter) Send(ctx context.Context, msg OutboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return fmt.Errorf("mock adapter: not connected")
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Close shuts down the mock adapter and closes the inbound channel.
func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.connected = false
	close(m.inbound)
	return nil
}

// FailSends makes subsequent Send calls return err (nil restores success).
func (m *MockAdapter) FailSends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// Sent returns a copy of all recorded outbound messages.
func (m *MockAdapter) Sent() []OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OutboundMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentTo returns recorded messages addressed to the given channel.
func (m *MockAdapter) SentTo(channel string) []OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []OutboundMessage
	for _, msg := range m.sent {
		if msg.Channel == channel {
			out = append(out, msg)
		}
	}
	return out
}

// Reset discards all recorded outbound messages.
func (m *MockAdapter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

// SimulateText delivers a free-text inbound event.
func (m *MockAdapter) SimulateText(channel, userName, text string) {
	m.inbound <- InboundEvent{
		Platform:  "mock",
		Kind:      KindText,
		Channel:   channel,
		UserName:  userName,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// SimulateAction delivers a button-press inbound event.
func (m *MockAdapter) SimulateAction(channel, userName, tag string) {
	m.inbound <- InboundEvent{
		Platform:  "mock",
		Kind:      KindAction,
		Channel:   channel,
		UserName:  userName,
		Action:    tag,
		Timestamp: time.Now(),
	}
}

// SimulateCommand delivers a command inbound event.
func (m *MockAdapter) SimulateCommand(channel, userName, command string) {
	m.inbound <- InboundEvent{
		Platform:  "mock",
		Kind:      KindCommand,
		Channel:   channel,
		UserName:  userName,
		Command:   command,
		Timestamp: time.Now(),
	}
}
