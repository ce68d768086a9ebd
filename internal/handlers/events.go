package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
	"github.com/Billy-Davies-2/blt-leagues/internal/pubsub"
)

// keepaliveInterval is how often idle SSE streams get a comment line
var keepaliveInterval = 30 * time.Second

// EventsSSE provides Server-Sent Events for realtime updates. The optional
// league query parameter limits the stream to one league.
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var events chan pubsub.Event
	if leagueID := r.URL.Query().Get("league"); leagueID != "" {
		events = h.pubsub.SubscribeLeague(leagueID)
	} else {
		events = h.pubsub.Subscribe()
	}
	defer h.pubsub.Unsubscribe(events)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Warn("Failed to encode event", "type", event.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		}
	}
}

// leagueMessage is what the league WebSocket sends: the event that caused
// the update (empty for the initial snapshot) and the league after it
type leagueMessage struct {
	Type    string        `json:"type"`
	Event   string        `json:"event,omitempty"`
	Version int64         `json:"version"`
	League  models.League `json:"league"`
}

// LeagueSocket streams league snapshots over a WebSocket: one on connect and
// another after every event for the league. Client messages are ignored.
func (h *APIHandlers) LeagueSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, err := h.leagues.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	events := h.pubsub.SubscribeLeague(id)
	defer h.pubsub.Unsubscribe(events)

	// CloseRead discards client frames and cancels ctx once the peer goes away
	ctx := conn.CloseRead(r.Context())

	if err := writeSnapshot(ctx, conn, "", l); err != nil {
		return
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Version > 0 && event.Version <= l.Version {
				// already sent; several events can share one save
				continue
			}
			next, err := h.leagues.Get(ctx, id)
			if err != nil {
				logger.Warn("Failed to reload league for socket", "leagueId", id, "error", err)
				continue
			}
			l = next
			if err := writeSnapshot(ctx, conn, event.Type, l); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, eventType string, l models.League) error {
	payload, err := json.Marshal(leagueMessage{
		Type:    "snapshot",
		Event:   eventType,
		Version: l.Version,
		League:  l,
	})
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, payload)
}
