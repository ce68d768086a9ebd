package leagues

import (
	"context"
	"strings"

	"github.com/Billy-Davies-2/blt-leagues/internal/dal"
	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// Watchlist keeps the players each user has marked to keep an eye on
type Watchlist struct {
	store   dal.WatchlistDAL
	players PlayerPool
}

// NewWatchlist creates a watchlist over store. Players are resolved through
// the pool, so ids that leave the pool drop out of listings.
func NewWatchlist(store dal.WatchlistDAL, players PlayerPool) *Watchlist {
	return &Watchlist{store: store, players: players}
}

// handles compare case-insensitively everywhere else, so the key does too
func watchKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Add lists a player for the user and returns the updated watchlist
func (w *Watchlist) Add(ctx context.Context, username, playerID string) ([]models.Player, error) {
	key := watchKey(username)
	if key == "" {
		return nil, engine.ErrNotMember
	}
	if playerID == "" {
		return nil, engine.ErrInvalidPlayer
	}
	if _, ok := w.players.Get(playerID); !ok {
		return nil, ErrUnknownPlayer
	}
	if err := w.store.AddToWatchlist(ctx, key, playerID); err != nil {
		return nil, err
	}
	return w.List(ctx, username)
}

// Remove drops a player from the user's watchlist
func (w *Watchlist) Remove(ctx context.Context, username, playerID string) ([]models.Player, error) {
	key := watchKey(username)
	if key == "" {
		return nil, engine.ErrNotMember
	}
	if err := w.store.RemoveFromWatchlist(ctx, key, playerID); err != nil {
		return nil, err
	}
	return w.List(ctx, username)
}

// List returns the user's watched players in the order they were added
func (w *Watchlist) List(ctx context.Context, username string) ([]models.Player, error) {
	key := watchKey(username)
	if key == "" {
		return nil, engine.ErrNotMember
	}
	ids, err := w.store.Watchlist(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := w.players.Get(id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Contains reports whether the user is watching the player
func (w *Watchlist) Contains(ctx context.Context, username, playerID string) (bool, error) {
	key := watchKey(username)
	if key == "" {
		return false, engine.ErrNotMember
	}
	ids, err := w.store.Watchlist(ctx, key)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == playerID {
			return true, nil
		}
	}
	return false, nil
}
