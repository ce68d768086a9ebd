package mocks

import (
	"sync"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/pubsub"
)

// MockNATSPubSub stands in for the NATS upstream in tests and records every
// event published through it
type MockNATSPubSub struct {
	*pubsub.PubSub

	mu        sync.Mutex
	published []pubsub.Event
}

// NewMockNATSPubSub creates a mock NATS pub/sub using the in-memory implementation
func NewMockNATSPubSub() *MockNATSPubSub {
	logger.Debug("Using MOCK NATS/JetStream (in-memory pub/sub)")

	return &MockNATSPubSub{
		PubSub: pubsub.New(),
	}
}

// Publish records the event and fans it out locally
func (m *MockNATSPubSub) Publish(event pubsub.Event) {
	m.mu.Lock()
	m.published = append(m.published, event)
	m.mu.Unlock()
	m.PubSub.Publish(event)
}

// Published returns a copy of every event published so far
func (m *MockNATSPubSub) Published() []pubsub.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pubsub.Event(nil), m.published...)
}

// Types returns the type of every published event in order
func (m *MockNATSPubSub) Types() []string {
	events := m.Published()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

// Close is a no-op for mock
func (m *MockNATSPubSub) Close() {}
