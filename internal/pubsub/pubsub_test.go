package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
)

func init() {
	logger.Init()
}

func receive(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func expectNothing(t *testing.T, ch chan Event) {
	t.Helper()
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	ps := New()

	ch1 := ps.Subscribe()
	ch2 := ps.SubscribeLeague("lg-1")
	ch3 := ps.Subscribe()
	if ps.SubscriberCount() != 3 {
		t.Fatalf("expected 3 subscribers, got %d", ps.SubscriberCount())
	}

	ps.Unsubscribe(ch2)
	if ps.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", ps.SubscriberCount())
	}
	if _, ok := <-ch2; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	ps.Publish(Event{Type: EventLeagueUpdate, LeagueID: "lg-1"})
	receive(t, ch1)
	receive(t, ch3)
}

func TestUnsubscribeUnknownChannelLeavesItOpen(t *testing.T) {
	ps := New()
	ch := make(chan Event, 1)
	ps.Unsubscribe(ch)

	select {
	case ch <- Event{Type: "still-open"}:
	default:
		t.Error("channel not managed by pubsub should stay open")
	}
}

func TestSubscribeLeagueFilters(t *testing.T) {
	ps := New()
	all := ps.Subscribe()
	mine := ps.SubscribeLeague("lg-1")

	ps.Publish(Event{Type: EventDraftPick, LeagueID: "lg-2", Version: 4})
	if got := receive(t, all); got.LeagueID != "lg-2" {
		t.Errorf("global subscriber got %+v", got)
	}
	expectNothing(t, mine)

	ps.Publish(Event{Type: EventDraftPick, LeagueID: "lg-1", Version: 7})
	if got := receive(t, mine); got.Version != 7 {
		t.Errorf("league subscriber got %+v", got)
	}
	receive(t, all)
}

func TestPublishDropsWhenChannelFull(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	for i := 0; i < 40; i++ {
		ps.Publish(Event{Type: EventDraftPick, LeagueID: "lg-1"})
	}

	count := 0
	for len(ch) > 0 {
		<-ch
		count++
	}
	if count != 32 {
		t.Errorf("expected 32 buffered events, got %d", count)
	}
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	ps := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := ps.SubscribeLeague("lg-1")
			time.Sleep(time.Millisecond)
			ps.Unsubscribe(ch)
		}()
		go func() {
			defer wg.Done()
			ps.Publish(Event{Type: EventLeagueUpdate, LeagueID: "lg-1"})
		}()
	}
	wg.Wait()

	if n := ps.SubscriberCount(); n != 0 {
		t.Errorf("expected 0 subscribers after all unsubscribe, got %d", n)
	}
}

// fakeUpstream stands in for NATS: it records publishes and echoes them back
type fakeUpstream struct {
	mu          sync.Mutex
	published   []Event
	subscribers []chan Event
}

func (f *fakeUpstream) Publish(event Event) {
	f.mu.Lock()
	f.published = append(f.published, event)
	subs := append([]chan Event(nil), f.subscribers...)
	f.mu.Unlock()

	for _, ch := range subs {
		ch <- event
	}
}

func (f *fakeUpstream) Subscribe() chan Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan Event, 100)
	f.subscribers = append(f.subscribers, ch)
	return ch
}

func (f *fakeUpstream) Unsubscribe(ch chan Event) {}

func (f *fakeUpstream) subscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers) > 0
}

func (f *fakeUpstream) publishedTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.published))
	for i, e := range f.published {
		out[i] = e.Type
	}
	return out
}

func waitSubscribed(t *testing.T, f *fakeUpstream) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !f.subscribed() {
		if time.Now().After(deadline) {
			t.Fatal("bridge never subscribed to upstream")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPublishGoesThroughUpstream(t *testing.T) {
	up := &fakeUpstream{}
	ps := NewWithUpstream(up)
	waitSubscribed(t, up)

	ch := ps.SubscribeLeague("lg-1")
	ps.Publish(Event{Type: EventDraftStart, LeagueID: "lg-1", Payload: map[string]interface{}{"rounds": 12}})

	got := receive(t, ch)
	if got.Type != EventDraftStart || got.Payload["rounds"] != 12 {
		t.Errorf("unexpected event %+v", got)
	}
	if types := up.publishedTypes(); len(types) != 1 || types[0] != EventDraftStart {
		t.Errorf("upstream should see exactly one publish, got %v", types)
	}
}

func TestUpstreamEventsReachLocalSubscribers(t *testing.T) {
	up := &fakeUpstream{}
	ps := NewWithUpstream(up)
	waitSubscribed(t, up)

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	// another instance publishing
	up.Publish(Event{Type: EventLeagueJoin, LeagueID: "lg-9"})

	for _, ch := range []chan Event{ch1, ch2} {
		if got := receive(t, ch); got.Type != EventLeagueJoin {
			t.Errorf("unexpected event %+v", got)
		}
	}
}

func TestCodecRoundTrip(t *testing.T) {
	in := Event{
		Type:     EventDraftPick,
		LeagueID: "lg-1",
		Version:  12,
		Payload: map[string]interface{}{
			"pick":     5,
			"teamId":   "morgan",
			"auto":     true,
			"player":   map[string]string{"id": "4046", "name": "Patrick Mahomes"},
			"order":    []string{"a", "b"},
			"optional": nil,
		},
	}

	data, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}

	if out.Type != in.Type || out.LeagueID != in.LeagueID || out.Version != 12 {
		t.Errorf("header mismatch: %+v", out)
	}
	if out.Payload["pick"] != 5.0 || out.Payload["teamId"] != "morgan" || out.Payload["auto"] != true {
		t.Errorf("scalar payload mismatch: %+v", out.Payload)
	}
	player, ok := out.Payload["player"].(map[string]interface{})
	if !ok || player["name"] != "Patrick Mahomes" {
		t.Errorf("nested payload mismatch: %+v", out.Payload["player"])
	}
	order, ok := out.Payload["order"].([]interface{})
	if !ok || len(order) != 2 || order[1] != "b" {
		t.Errorf("list payload mismatch: %+v", out.Payload["order"])
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x01, 0x02}); err == nil {
		t.Error("expected an error for bytes that are not a Struct")
	}
	empty, _ := EncodeEvent(Event{})
	if _, err := DecodeEvent(empty); err == nil {
		t.Error("expected an error for an event without a type")
	}
}
