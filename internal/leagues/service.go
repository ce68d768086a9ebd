package leagues

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/blt-leagues/internal/dal"
	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
	"github.com/Billy-Davies-2/blt-leagues/internal/pubsub"
)

var (
	// ErrConflict is returned when the caller's league version is stale or
	// the league kept changing underneath every retry
	ErrConflict = errors.New("league has changed, reload and try again")
	// ErrNotFound is returned for unknown league ids and invite codes
	ErrNotFound = dal.ErrNotFound
	// ErrUnknownPlayer is returned when a pick names a player outside the pool
	ErrUnknownPlayer = errors.New("player is not in the player pool")
	// ErrPlayerUnavailable is returned when a pick names a player who is not
	// on an NFL roster
	ErrPlayerUnavailable = errors.New("player is not available to draft")
)

// Publisher receives league events
type Publisher interface {
	Publish(pubsub.Event)
}

// PlayerPool supplies draftable players
type PlayerPool interface {
	Available(l models.League) []models.Player
	Get(id string) (models.Player, bool)
}

// PickRecorder stores picks for draft analytics
type PickRecorder interface {
	RecordPicks(ctx context.Context, leagueID string, format models.Format, picks []models.Pick) error
}

// Service applies engine operations to stored leagues. Every change is
// load, reconcile, apply, reconcile, auto-pick, then a version checked save.
type Service struct {
	store    dal.LeagueDAL
	players  PlayerPool
	events   Publisher
	recorder PickRecorder

	rng        engine.Rand
	now        func() time.Time
	newID      func() string
	maxRetries int
}

// Option customizes a Service
type Option func(*Service)

// WithRand sets the randomness used for shuffles, invite codes and auto-picks
func WithRand(rng engine.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs sets the league id generator
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithRecorder records every pick for draft analytics
func WithRecorder(r PickRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// New creates a league service
func New(store dal.LeagueDAL, players PlayerPool, events Publisher, opts ...Option) *Service {
	s := &Service{
		store:      store,
		players:    players,
		events:     events,
		rng:        engine.CryptoRand,
		now:        time.Now,
		newID:      func() string { return "lg-" + uuid.NewString() },
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every league, reconciled
func (s *Service) List(ctx context.Context) ([]models.League, error) {
	stored, err := s.store.ListLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	out := make([]models.League, len(stored))
	for i, l := range stored {
		out[i] = engine.Reconcile(l, s.rng)
	}
	return out, nil
}

// Get loads one league, reconciled. Nothing is written.
func (s *Service) Get(ctx context.Context, id string) (models.League, error) {
	l, err := s.store.GetLeague(ctx, id)
	if err != nil {
		return models.League{}, err
	}
	return engine.Reconcile(*l, s.rng), nil
}

// CreateParams describes a new league
type CreateParams struct {
	Name   string
	Format string
	Size   int
}

// Create makes a league with the actor as commissioner
func (s *Service) Create(ctx context.Context, actor string, p CreateParams) (models.League, error) {
	existing, err := s.store.ListLeagues(ctx)
	if err != nil {
		return models.League{}, fmt.Errorf("failed to list leagues: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, l := range existing {
		taken[l.Code] = true
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		l, err := engine.NewLeague(engine.NewLeagueParams{
			ID:           s.newID(),
			Name:         p.Name,
			Commissioner: actor,
			Format:       models.Format(p.Format),
			Size:         p.Size,
		}, taken, s.now(), s.rng)
		if err != nil {
			return models.League{}, err
		}

		err = s.store.CreateLeague(ctx, &l)
		if errors.Is(err, dal.ErrDuplicate) {
			// another instance took the code in the meantime
			taken[l.Code] = true
			continue
		}
		if err != nil {
			return models.League{}, fmt.Errorf("failed to create league: %w", err)
		}

		logger.Info("League created", "leagueId", l.ID, "code", l.Code, "commissioner", actor)
		s.publish(pubsub.EventLeagueCreate, l, map[string]interface{}{
			"name": l.Name,
			"code": l.Code,
			"size": l.Size,
		})
		s.publishDerived(ctx, models.League{}, l)
		return l, nil
	}
	return models.League{}, ErrConflict
}

// Join adds the actor to the league with the given invite code
func (s *Service) Join(ctx context.Context, actor, code string) (models.League, error) {
	l, err := s.store.GetLeagueByCode(ctx, engine.NormalizeInviteCode(code))
	if err != nil {
		return models.League{}, err
	}
	return s.mutate(ctx, l.ID, 0, pubsub.EventLeagueJoin, func(cur models.League) (models.League, error) {
		return engine.JoinLeague(cur, actor)
	})
}

// UpdateSettings changes rounds and lineup before the draft starts
func (s *Service) UpdateSettings(ctx context.Context, id, actor string, rounds int, lineup models.Lineup, version int64) (models.League, error) {
	return s.mutate(ctx, id, version, pubsub.EventLeagueUpdate, func(cur models.League) (models.League, error) {
		return engine.UpdateSettings(cur, actor, rounds, lineup)
	})
}

// ShuffleOrder randomizes the draft order before the draft starts
func (s *Service) ShuffleOrder(ctx context.Context, id, actor string, version int64) (models.League, error) {
	return s.mutate(ctx, id, version, pubsub.EventLeagueUpdate, func(cur models.League) (models.League, error) {
		return engine.ShuffleDraftOrder(cur, actor, s.rng)
	})
}

// StartDraft starts the draft. Zero rounds and a nil lineup keep the current settings.
func (s *Service) StartDraft(ctx context.Context, id, actor string, rounds int, lineup models.Lineup, version int64) (models.League, error) {
	return s.mutate(ctx, id, version, pubsub.EventDraftStart, func(cur models.League) (models.League, error) {
		if rounds == 0 {
			rounds = cur.DraftSettings.Rounds
		}
		return engine.StartDraft(cur, actor, rounds, lineup, s.now(), s.rng)
	})
}

// SubmitPick drafts a player from the pool for the actor's team on the clock
func (s *Service) SubmitPick(ctx context.Context, id, actor, playerID string, version int64) (models.League, error) {
	if playerID == "" {
		return models.League{}, engine.ErrInvalidPlayer
	}
	player, ok := s.players.Get(playerID)
	if !ok {
		return models.League{}, ErrUnknownPlayer
	}
	return s.mutate(ctx, id, version, "", func(cur models.League) (models.League, error) {
		// drafted players fall through so the engine reports the duplicate
		if !engine.IsDrafted(cur, player.ID) && !containsPlayer(s.players.Available(cur), player.ID) {
			return cur, ErrPlayerUnavailable
		}
		return engine.SubmitPick(cur, actor, player)
	})
}

func containsPlayer(list []models.Player, id string) bool {
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}

// PickForMe makes a random capacity-aware pick for the actor's team on the clock
func (s *Service) PickForMe(ctx context.Context, id, actor string, version int64) (models.League, error) {
	return s.mutate(ctx, id, version, "", func(cur models.League) (models.League, error) {
		return engine.PickFor(cur, actor, s.players.Available(cur), s.rng)
	})
}

// SetAutoPick toggles auto-pick for a team the actor owns
func (s *Service) SetAutoPick(ctx context.Context, id, actor, teamID string, enabled bool) (models.League, error) {
	return s.mutate(ctx, id, 0, pubsub.EventLeagueUpdate, func(cur models.League) (models.League, error) {
		return engine.SetAutoPick(cur, actor, teamID, enabled)
	})
}

// mutate runs fn against the latest stored league and saves the result with
// a version check. A positive clientVersion pins the version the caller saw;
// otherwise a concurrent save is retried from a fresh load.
func (s *Service) mutate(ctx context.Context, id string, clientVersion int64, eventType string, fn func(models.League) (models.League, error)) (models.League, error) {
	log := logger.With("leagueId", id)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		stored, err := s.store.GetLeague(ctx, id)
		if err != nil {
			return models.League{}, err
		}
		if clientVersion > 0 && stored.Version != clientVersion {
			return *stored, ErrConflict
		}
		expected := stored.Version

		prev := engine.Reconcile(*stored, s.rng)
		next, err := fn(prev)
		if err != nil {
			return prev, err
		}
		next = engine.Reconcile(next, s.rng)

		next, auto, err := engine.RunAutoPicks(next, s.players.Available(next), s.rng)
		if err != nil {
			log.Warn("Auto-pick stopped", "error", err, "made", len(auto))
		}

		err = s.store.SaveLeague(ctx, &next, expected)
		if errors.Is(err, dal.ErrConflict) {
			if clientVersion > 0 {
				return prev, ErrConflict
			}
			log.Debug("Save conflicted, retrying", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return prev, fmt.Errorf("failed to save league: %w", err)
		}

		if eventType != "" {
			s.publish(eventType, next, nil)
		}
		s.publishDerived(ctx, prev, next)
		return next, nil
	}
	return models.League{}, ErrConflict
}

func (s *Service) publish(eventType string, l models.League, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(pubsub.Event{
		Type:     eventType,
		LeagueID: l.ID,
		Version:  l.Version,
		Payload:  payload,
	})
}

// publishDerived emits the events implied by the difference between two
// league states and records new picks
func (s *Service) publishDerived(ctx context.Context, prev, next models.League) {
	var newPicks []models.Pick
	if len(next.DraftPicks) > len(prev.DraftPicks) {
		newPicks = next.DraftPicks[len(prev.DraftPicks):]
	}

	for _, p := range newPicks {
		s.publish(pubsub.EventDraftPick, next, map[string]interface{}{
			"pick":       p.Pick,
			"round":      p.Round,
			"teamId":     p.TeamID,
			"playerId":   p.Player.ID,
			"playerName": p.Player.Name,
			"position":   p.Player.Position,
		})
	}
	if !prev.DraftState.Completed && next.DraftState.Completed {
		s.publish(pubsub.EventDraftComplete, next, map[string]interface{}{
			"picks": len(next.DraftPicks),
		})
	}
	if len(prev.Matchups) == 0 && len(next.Matchups) > 0 {
		weeks := 0
		for _, m := range next.Matchups {
			weeks = max(weeks, m.Week)
		}
		s.publish(pubsub.EventScheduleGenerated, next, map[string]interface{}{
			"weeks":    weeks,
			"matchups": len(next.Matchups),
		})
	}

	if s.recorder != nil && len(newPicks) > 0 {
		if err := s.recorder.RecordPicks(ctx, next.ID, next.Format, newPicks); err != nil {
			logger.Error("Failed to record picks", "leagueId", next.ID, "error", err)
		}
	}
}
