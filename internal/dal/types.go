package dal

import (
	"context"
	"errors"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

var (
	// ErrNotFound is returned when no league matches the id or invite code
	ErrNotFound = errors.New("league not found")
	// ErrConflict is returned by SaveLeague when the stored version moved on
	ErrConflict = errors.New("league was modified concurrently")
	// ErrDuplicate is returned when a league id or invite code already exists
	ErrDuplicate = errors.New("league id or invite code already exists")
)

// LeagueDAL defines the interface for the league data access layer.
// Leagues are stored as whole documents guarded by an integer version.
type LeagueDAL interface {
	ListLeagues(ctx context.Context) ([]models.League, error)
	GetLeague(ctx context.Context, id string) (*models.League, error)
	GetLeagueByCode(ctx context.Context, code string) (*models.League, error)
	// CreateLeague stores a new league at version 1
	CreateLeague(ctx context.Context, league *models.League) error
	// SaveLeague replaces the league if its stored version equals
	// expectedVersion, and bumps league.Version on success
	SaveLeague(ctx context.Context, league *models.League, expectedVersion int64) error
	Ping(ctx context.Context) error
	Close() error
}

// WatchlistDAL stores the players each user is keeping an eye on. Usernames
// are stored as given; callers normalize them.
type WatchlistDAL interface {
	// AddToWatchlist is a no-op when the player is already listed
	AddToWatchlist(ctx context.Context, username, playerID string) error
	// RemoveFromWatchlist is a no-op when the player is not listed
	RemoveFromWatchlist(ctx context.Context, username, playerID string) error
	// Watchlist returns player ids in the order they were added
	Watchlist(ctx context.Context, username string) ([]string, error)
}

// Store is the full persistence surface of the service
type Store interface {
	LeagueDAL
	WatchlistDAL
}
