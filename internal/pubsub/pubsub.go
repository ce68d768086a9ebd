package pubsub

import (
	"sync"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
)

// League event types
const (
	EventLeagueCreate      = "league:create"
	EventLeagueJoin        = "league:join"
	EventLeagueUpdate      = "league:update"
	EventDraftStart        = "draft:start"
	EventDraftPick         = "draft:pick"
	EventDraftComplete     = "draft:complete"
	EventScheduleGenerated = "schedule:generated"
)

// Event represents a pubsub event about one league
type Event struct {
	Type     string                 `json:"type"`
	LeagueID string                 `json:"leagueId,omitempty"`
	Version  int64                  `json:"version,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// Upstream is an interface for upstream publishers (e.g., NATS)
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

type subscriber struct {
	ch       chan Event
	leagueID string // empty receives every league
}

// PubSub fans events out to in-process subscribers
type PubSub struct {
	mu          sync.RWMutex
	subscribers []subscriber
	upstream    Upstream // Optional upstream publisher (e.g., NATS)
}

// New creates a new PubSub instance
func New() *PubSub {
	return &PubSub{
		subscribers: []subscriber{},
	}
}

// NewWithUpstream creates a PubSub that bridges to an upstream publisher.
// Publish goes to the upstream, which broadcasts to every instance; events
// coming back from the upstream are delivered to local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{
		subscribers: []subscriber{},
		upstream:    upstream,
	}

	go func() {
		ch := upstream.Subscribe()
		logger.Debug("PubSub: Subscribed to upstream, waiting for events")
		for event := range ch {
			ps.publishLocal(event)
		}
		logger.Debug("PubSub: Upstream channel closed")
	}()

	return ps
}

// Subscribe returns a channel receiving events for every league
func (ps *PubSub) Subscribe() chan Event {
	return ps.SubscribeLeague("")
}

// SubscribeLeague returns a channel receiving only the given league's events
func (ps *PubSub) SubscribeLeague(leagueID string) chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, 32)
	ps.subscribers = append(ps.subscribers, subscriber{ch: ch, leagueID: leagueID})
	logger.Debug("PubSub: New subscriber added", "leagueId", leagueID, "totalSubscribers", len(ps.subscribers))
	return ch
}

// Unsubscribe removes a subscriber and closes its channel
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub.ch == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			break
		}
	}
}

// SubscriberCount returns the number of local subscribers
func (ps *PubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers)
}

// Publish sends an event to the upstream when there is one, otherwise to
// local subscribers directly
func (ps *PubSub) Publish(event Event) {
	if ps.upstream != nil {
		logger.Debug("PubSub: Forwarding to upstream", "type", event.Type, "leagueId", event.LeagueID)
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

// publishLocal sends an event to local subscribers only. Full channels are skipped.
func (ps *PubSub) publishLocal(event Event) {
	// sends never block, so holding the read lock keeps Unsubscribe from
	// closing a channel mid-send
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, sub := range ps.subscribers {
		if sub.leagueID != "" && sub.leagueID != event.LeagueID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			logger.Warn("PubSub: Skipping slow subscriber", "type", event.Type, "leagueId", event.LeagueID)
		}
	}
}
