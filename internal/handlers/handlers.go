package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Billy-Davies-2/blt-leagues/internal/auth"
	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/leagues"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
	"github.com/Billy-Davies-2/blt-leagues/internal/pubsub"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// PlayerCatalog lists the full player pool
type PlayerCatalog interface {
	All() []models.Player
}

// ADPSource computes average draft position from recorded picks
type ADPSource interface {
	AverageDraftPosition(ctx context.Context, format models.Format, limit int) ([]models.ADP, error)
}

// APIHandlers contains all API handler methods
type APIHandlers struct {
	leagues   *leagues.Service
	watchlist *leagues.Watchlist
	players   PlayerCatalog
	adp       ADPSource
	pubsub    *pubsub.PubSub
	validate  *validator.Validate
}

// NewAPIHandlers creates a new API handlers instance. adp may be nil.
func NewAPIHandlers(svc *leagues.Service, watchlist *leagues.Watchlist, players PlayerCatalog, adp ADPSource, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		leagues:   svc,
		watchlist: watchlist,
		players:   players,
		adp:       adp,
		pubsub:    ps,
		validate:  validator.New(),
	}
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to write response", "error", err)
	}
}

// statusFor maps service and engine errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidPlayer),
		errors.Is(err, engine.ErrInvalidLineup),
		errors.Is(err, engine.ErrInvalidName),
		errors.Is(err, engine.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotMember),
		errors.Is(err, engine.ErrNotTeamOwner):
		return http.StatusForbidden
	case errors.Is(err, leagues.ErrNotFound),
		errors.Is(err, leagues.ErrTeamNotFound),
		errors.Is(err, leagues.ErrMatchupNotFound),
		errors.Is(err, leagues.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, leagues.ErrConflict),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrDraftAlreadyStarted),
		errors.Is(err, engine.ErrDraftNotActive),
		errors.Is(err, engine.ErrDraftComplete),
		errors.Is(err, engine.ErrDuplicatePlayer),
		errors.Is(err, leagues.ErrPlayerUnavailable),
		errors.Is(err, engine.ErrLeagueFull),
		errors.Is(err, engine.ErrAlreadyMember),
		errors.Is(err, engine.ErrNoAvailablePlayers):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNotEnoughTeams):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and reports false when the request is unusable.
func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to decode request", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}

	if err := h.validate.StructCtx(r.Context(), dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[jsonName(fe.Field())] = fe.Tag()
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: details})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	if field == "PlayerID" {
		return "playerId"
	}
	if field == "TeamID" {
		return "teamId"
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// actor is the league handle of the authenticated user
func actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	handle := auth.GetUser(r).Handle()
	if handle == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return "", false
	}
	return handle, true
}
