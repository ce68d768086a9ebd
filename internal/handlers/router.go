package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Billy-Davies-2/blt-leagues/internal/auth"
)

// NewRouter wires the API, streaming, auth and health routes
func NewRouter(api *APIHandlers, authProvider auth.AuthProvider, health *Health) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)

	r.Get("/auth/login", authProvider.LoginHandler)
	r.Get("/auth/callback", authProvider.CallbackHandler)
	r.Get("/auth/logout", authProvider.LogoutHandler)

	r.With(authProvider.Middleware).Get("/ws/leagues/{id}", api.LeagueSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.Details)

		// the SSE stream is long-lived and stays outside the request timeout
		r.With(authProvider.Middleware).Get("/events", api.EventsSSE)

		r.Group(func(r chi.Router) {
			r.Use(authProvider.Middleware)
			r.Use(middleware.Timeout(10 * time.Second))

			r.Get("/me", me)
			r.Route("/me/watchlist", func(r chi.Router) {
				r.Get("/", api.ListWatchlist)
				r.Post("/", api.AddToWatchlist)
				r.Get("/{playerId}", api.WatchlistStatus)
				r.Delete("/{playerId}", api.RemoveFromWatchlist)
			})

			r.Route("/leagues", func(r chi.Router) {
				r.Get("/", api.ListLeagues)
				r.Post("/", api.CreateLeague)
				r.Post("/join", api.JoinLeague)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", api.GetLeague)
					r.Put("/settings", api.UpdateSettings)
					r.Post("/order/shuffle", api.ShuffleOrder)
					r.Post("/draft/start", api.StartDraft)
					r.Post("/draft/pick", api.SubmitPick)
					r.Post("/draft/pick-for-me", api.PickForMe)
					r.Put("/draft/autopick", api.SetAutoPick)
					r.Get("/draft/board", api.DraftBoard)
					r.Get("/teams/{teamId}/lineup", api.TeamLineup)
					r.Get("/teams/{teamId}/schedule", api.TeamSchedule)
					r.Get("/schedule", api.Schedule)
					r.Get("/matchups/{matchupId}", api.Matchup)
				})
			})

			r.Get("/players", api.ListPlayers)
			r.Get("/players/adp", api.AverageDraftPosition)
		})
	})

	return r
}

func me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"handle":  user.Handle(),
		"isAdmin": auth.IsAdmin(user),
	})
}
