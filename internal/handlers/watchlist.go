package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

type watchlistRequest struct {
	PlayerID string `json:"playerId" validate:"required,max=64"`
}

type watchlistResponse struct {
	Players []models.Player `json:"players"`
}

// ListWatchlist returns the caller's watched players
func (h *APIHandlers) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	list, err := h.watchlist.List(r.Context(), who)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, watchlistResponse{Players: list})
}

// AddToWatchlist marks a player for the caller
func (h *APIHandlers) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req watchlistRequest
	if !h.decode(w, r, &req) {
		return
	}
	logger.Debug("Watching player", "actor", who, "player_id", req.PlayerID)
	list, err := h.watchlist.Add(r.Context(), who, req.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, watchlistResponse{Players: list})
}

// WatchlistStatus reports whether the caller watches a player
func (h *APIHandlers) WatchlistStatus(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	playerID := chi.URLParam(r, "playerId")
	watched, err := h.watchlist.Contains(r.Context(), who, playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playerId": playerID, "watchlisted": watched})
}

// RemoveFromWatchlist unmarks a player for the caller
func (h *APIHandlers) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	list, err := h.watchlist.Remove(r.Context(), who, chi.URLParam(r, "playerId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, watchlistResponse{Players: list})
}
