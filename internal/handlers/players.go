package handlers

import (
	"net/http"
	"strconv"

	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/players"
)

// ListPlayers returns the player pool filtered by position, team and name
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, players.Apply(h.players.All(), playerFilter(r)))
}

// AverageDraftPosition returns ADP for a scoring format, 100 players by default
func (h *APIHandlers) AverageDraftPosition(w http.ResponseWriter, r *http.Request) {
	if h.adp == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "draft analytics not configured"})
		return
	}

	q := r.URL.Query()
	format, err := engine.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit := 100
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	adp, err := h.adp.AverageDraftPosition(r.Context(), format, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adp)
}
