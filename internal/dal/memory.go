package dal

import (
	"context"
	"sync"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// MemoryDAL implements LeagueDAL using in-memory storage
type MemoryDAL struct {
	mu         sync.RWMutex
	order      []string
	leagues    map[string]models.League
	watchlists map[string][]string
}

// NewMemoryDAL creates a new in-memory data access layer seeded with the
// demo leagues
func NewMemoryDAL() *MemoryDAL {
	return NewMemoryDALWith(getDefaultLeagues()...)
}

// NewMemoryDALWith creates an in-memory store holding exactly the given leagues
func NewMemoryDALWith(leagues ...models.League) *MemoryDAL {
	m := &MemoryDAL{
		leagues:    make(map[string]models.League),
		watchlists: make(map[string][]string),
	}
	for _, l := range leagues {
		if l.Version == 0 {
			l.Version = 1
		}
		m.order = append(m.order, l.ID)
		m.leagues[l.ID] = l.Clone()
	}
	return m
}

func (m *MemoryDAL) ListLeagues(ctx context.Context) ([]models.League, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Copy so callers cannot mutate stored state
	out := make([]models.League, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.leagues[id].Clone())
	}
	return out, nil
}

func (m *MemoryDAL) GetLeague(ctx context.Context, id string) (*models.League, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.leagues[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := l.Clone()
	return &c, nil
}

func (m *MemoryDAL) GetLeagueByCode(ctx context.Context, code string) (*models.League, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		if l := m.leagues[id]; l.Code == code {
			c := l.Clone()
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryDAL) CreateLeague(ctx context.Context, league *models.League) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.leagues[league.ID]; exists {
		return ErrDuplicate
	}
	for _, l := range m.leagues {
		if l.Code == league.Code {
			return ErrDuplicate
		}
	}

	league.Version = 1
	m.order = append(m.order, league.ID)
	m.leagues[league.ID] = league.Clone()
	return nil
}

func (m *MemoryDAL) SaveLeague(ctx context.Context, league *models.League, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.leagues[league.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrConflict
	}

	league.Version = expectedVersion + 1
	m.leagues[league.ID] = league.Clone()
	return nil
}

func (m *MemoryDAL) AddToWatchlist(ctx context.Context, username, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.watchlists[username] {
		if id == playerID {
			return nil
		}
	}
	m.watchlists[username] = append(m.watchlists[username], playerID)
	return nil
}

func (m *MemoryDAL) RemoveFromWatchlist(ctx context.Context, username, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.watchlists[username]
	kept := make([]string, 0, len(list))
	for _, id := range list {
		if id != playerID {
			kept = append(kept, id)
		}
	}
	m.watchlists[username] = kept
	return nil
}

func (m *MemoryDAL) Watchlist(ctx context.Context, username string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string{}, m.watchlists[username]...), nil
}

func (m *MemoryDAL) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryDAL) Close() error {
	return nil
}
