package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/leagues"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
	"github.com/Billy-Davies-2/blt-leagues/internal/players"
)

// LeagueSummary is a league as listed for one member
type LeagueSummary struct {
	models.League
	Mine         bool `json:"mine"`
	Discoverable bool `json:"discoverable"`
}

// ListLeagues returns every league flagged for the caller: mine when the
// caller is a member, discoverable when the caller could still join
func (h *APIHandlers) ListLeagues(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}

	all, err := h.leagues.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]LeagueSummary, 0, len(all))
	for _, l := range all {
		mine := engine.IsMember(l, who)
		out = append(out, LeagueSummary{
			League:       l,
			Mine:         mine,
			Discoverable: !mine && !engine.IsFull(l),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type createLeagueRequest struct {
	Name   string `json:"name" validate:"required,max=64"`
	Format string `json:"format" validate:"omitempty,max=16"`
	Size   int    `json:"size" validate:"gte=0,lte=64"`
}

// CreateLeague creates a league with the caller as commissioner
func (h *APIHandlers) CreateLeague(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req createLeagueRequest
	if !h.decode(w, r, &req) {
		return
	}

	l, err := h.leagues.Create(r.Context(), who, leagues.CreateParams{
		Name:   req.Name,
		Format: req.Format,
		Size:   req.Size,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

type joinLeagueRequest struct {
	Code string `json:"code" validate:"required,max=16"`
}

// JoinLeague adds the caller to the league with the given invite code
func (h *APIHandlers) JoinLeague(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req joinLeagueRequest
	if !h.decode(w, r, &req) {
		return
	}

	l, err := h.leagues.Join(r.Context(), who, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// GetLeague returns one league
func (h *APIHandlers) GetLeague(w http.ResponseWriter, r *http.Request) {
	l, err := h.leagues.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type settingsRequest struct {
	Rounds  int           `json:"rounds" validate:"gte=0"`
	Lineup  models.Lineup `json:"lineup" validate:"omitempty,max=8,dive,gte=0,lte=30"`
	Version int64         `json:"version" validate:"gte=0"`
}

// UpdateSettings changes rounds and lineup before the draft
func (h *APIHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req settingsRequest
	if !h.decode(w, r, &req) {
		return
	}

	l, err := h.leagues.UpdateSettings(r.Context(), chi.URLParam(r, "id"), who, req.Rounds, req.Lineup, req.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type versionRequest struct {
	Version int64 `json:"version" validate:"gte=0"`
}

// ShuffleOrder randomizes the draft order
func (h *APIHandlers) ShuffleOrder(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req versionRequest
	if !h.decode(w, r, &req) {
		return
	}

	l, err := h.leagues.ShuffleOrder(r.Context(), chi.URLParam(r, "id"), who, req.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// StartDraft opens the draft
func (h *APIHandlers) StartDraft(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req settingsRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	logger.Info("Starting draft", "leagueId", id, "actor", who)
	l, err := h.leagues.StartDraft(r.Context(), id, who, req.Rounds, req.Lineup, req.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type pickRequest struct {
	PlayerID string `json:"playerId" validate:"required,max=64"`
	Version  int64  `json:"version" validate:"gte=0"`
}

// SubmitPick drafts a player for the caller's team on the clock
func (h *APIHandlers) SubmitPick(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req pickRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	logger.Info("Drafting player", "leagueId", id, "actor", who, "player_id", req.PlayerID)
	l, err := h.leagues.SubmitPick(r.Context(), id, who, req.PlayerID, req.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// PickForMe makes a capacity-aware pick for the caller's team on the clock
func (h *APIHandlers) PickForMe(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req versionRequest
	if !h.decode(w, r, &req) {
		return
	}

	l, err := h.leagues.PickForMe(r.Context(), chi.URLParam(r, "id"), who, req.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type autoPickRequest struct {
	TeamID  string `json:"teamId" validate:"required,max=64"`
	Enabled bool   `json:"enabled"`
}

// SetAutoPick toggles auto-pick for one of the caller's teams
func (h *APIHandlers) SetAutoPick(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	var req autoPickRequest
	if !h.decode(w, r, &req) {
		return
	}

	l, err := h.leagues.SetAutoPick(r.Context(), chi.URLParam(r, "id"), who, req.TeamID, req.Enabled)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// playerFilter reads position, team, q, sort and limit query parameters
func playerFilter(r *http.Request) players.Filter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return players.Filter{
		Position: q.Get("position"),
		Team:     q.Get("team"),
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Limit:    limit,
	}
}

// DraftBoard returns the turn state, snake sequence and available players
func (h *APIHandlers) DraftBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leagues.Board(r.Context(), chi.URLParam(r, "id"), playerFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// TeamLineup returns a team's allocated lineup slots
func (h *APIHandlers) TeamLineup(w http.ResponseWriter, r *http.Request) {
	view, err := h.leagues.Lineup(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "teamId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// TeamSchedule returns one team's matchups in week order
func (h *APIHandlers) TeamSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := h.leagues.TeamSchedule(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "teamId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// Matchup returns one game with both rosters
func (h *APIHandlers) Matchup(w http.ResponseWriter, r *http.Request) {
	view, err := h.leagues.Matchup(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "matchupId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Schedule returns the league's matchups grouped by week
func (h *APIHandlers) Schedule(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.leagues.Schedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weeks": weeks})
}
