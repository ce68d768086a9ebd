package pubsub

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
)

const (
	DefaultSubject    = "league.events"
	DefaultStreamName = "LEAGUE_EVENTS"
)

// jetStreamBus publishes events on per-league subjects below a root subject
// and delivers everything it receives on the stream to local subscribers
type jetStreamBus struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	sub     *nats.Subscription

	mu          sync.RWMutex
	subscribers []chan Event
}

type streamOptions struct {
	name    string
	storage nats.StorageType
	maxAge  time.Duration
}

func newJetStreamBus(nc *nats.Conn, subject string, opts streamOptions) (*jetStreamBus, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if opts.name == "" {
		opts.name = DefaultStreamName
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(opts.name); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     opts.name,
			Subjects: []string{subject + ".>"},
			Storage:  opts.storage,
			MaxAge:   opts.maxAge,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
		logger.Info("JetStream stream created", "stream", opts.name, "subject", subject+".>")
	}

	b := &jetStreamBus{
		nc:          nc,
		js:          js,
		subject:     subject,
		subscribers: make([]chan Event, 0),
	}

	b.sub, err = js.Subscribe(subject+".>", b.handleMsg, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return b, nil
}

// subjectFor places each league on its own subject so consumers can filter
func (b *jetStreamBus) subjectFor(e Event) string {
	if e.LeagueID == "" {
		return b.subject + ".global"
	}
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, e.LeagueID)
	return b.subject + "." + token
}

func (b *jetStreamBus) handleMsg(msg *nats.Msg) {
	event, err := DecodeEvent(msg.Data)
	if err != nil {
		logger.Error("Failed to decode event from JetStream", "error", err, "subject", msg.Subject)
		// a malformed message will never decode; do not redeliver it
		msg.Term()
		return
	}

	b.mu.RLock()
	subs := make([]chan Event, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			logger.Warn("NATS: Skipping slow subscriber", "event_type", event.Type)
		}
	}
	msg.Ack()
}

// Publish publishes an event to JetStream
func (b *jetStreamBus) Publish(event Event) {
	data, err := EncodeEvent(event)
	if err != nil {
		logger.Error("Failed to encode event", "error", err, "event_type", event.Type)
		return
	}

	subject := b.subjectFor(event)
	if _, err := b.js.Publish(subject, data); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", subject, "event_type", event.Type)
		return
	}
	logger.Debug("Published event to NATS", "event_type", event.Type, "subject", subject)
}

// Subscribe creates a subscription channel for events
func (b *jetStreamBus) Subscribe() chan Event {
	ch := make(chan Event, 100)

	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscription channel
func (b *jetStreamBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SubscriberCount returns the number of active local subscribers
func (b *jetStreamBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Connected reports whether the NATS connection is up
func (b *jetStreamBus) Connected() bool {
	return b.nc != nil && b.nc.IsConnected()
}

func (b *jetStreamBus) close() {
	if b.sub != nil {
		b.sub.Unsubscribe()
	}

	b.mu.Lock()
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
	b.mu.Unlock()

	if b.nc != nil {
		b.nc.Close()
	}
}

// NATSPubSub implements pub/sub using an external NATS JetStream server
type NATSPubSub struct {
	*jetStreamBus
}

// NewNATSPubSub connects to NATS and ensures the league event stream exists
func NewNATSPubSub(natsURL, subject, streamName string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("blt-leagues"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	bus, err := newJetStreamBus(nc, subject, streamOptions{
		name:    streamName,
		storage: nats.FileStorage,
		maxAge:  30 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, err
	}
	return &NATSPubSub{jetStreamBus: bus}, nil
}

// Close closes the NATS connection and every local subscription
func (p *NATSPubSub) Close() {
	p.close()
}
