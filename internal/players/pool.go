package players

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// Pool caches the players loaded from a Source
type Pool struct {
	source  Source
	refresh time.Duration

	mu       sync.RWMutex
	players  []models.Player
	byID     map[string]int
	loadedAt time.Time
}

// NewPool creates a pool that reloads from source every refresh interval
// once Start is called. A zero interval disables background refresh.
func NewPool(source Source, refresh time.Duration) *Pool {
	return &Pool{
		source:  source,
		refresh: refresh,
		byID:    make(map[string]int),
	}
}

// Refresh reloads the pool. On failure the previous players are kept.
func (p *Pool) Refresh(ctx context.Context) error {
	loaded, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load players from %s: %w", p.source.Name(), err)
	}

	byID := make(map[string]int, len(loaded))
	kept := make([]models.Player, 0, len(loaded))
	for _, pl := range loaded {
		if pl.ID == "" {
			continue
		}
		if _, dup := byID[pl.ID]; dup {
			continue
		}
		byID[pl.ID] = len(kept)
		kept = append(kept, pl)
	}

	p.mu.Lock()
	p.players = kept
	p.byID = byID
	p.loadedAt = time.Now()
	p.mu.Unlock()

	logger.Info("Player pool refreshed", "source", p.source.Name(), "players", len(kept))
	return nil
}

// Start refreshes the pool in the background until ctx is cancelled
func (p *Pool) Start(ctx context.Context) {
	if p.refresh <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(p.refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.Refresh(ctx); err != nil {
					logger.Error("Failed to refresh player pool", "error", err)
				}
			}
		}
	}()
}

// LoadedAt returns when the pool was last refreshed
func (p *Pool) LoadedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadedAt
}

// All returns a copy of every player in ranking order
func (p *Pool) All() []models.Player {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Player(nil), p.players...)
}

// Get looks a player up by id
func (p *Pool) Get(id string) (models.Player, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.byID[id]
	if !ok {
		return models.Player{}, false
	}
	return p.players[i], true
}

// Available returns the players on an NFL roster not yet drafted in the league
func (p *Pool) Available(l models.League) []models.Player {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.Player, 0, len(p.players))
	for _, pl := range p.players {
		if !onRoster(pl.Team) || engine.IsDrafted(l, pl.ID) {
			continue
		}
		out = append(out, pl)
	}
	return out
}

// Filter narrows a player list for display
type Filter struct {
	Position string
	Team     string
	Query    string
	Sort     string // name, name_desc, team, position; empty keeps ranking order
	Limit    int
}

// Apply filters and sorts players without modifying the input
func Apply(players []models.Player, f Filter) []models.Player {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Player, 0, len(players))
	for _, pl := range players {
		if f.Position != "" && !strings.EqualFold(f.Position, "ALL") && !strings.EqualFold(pl.Position, f.Position) {
			continue
		}
		if f.Team != "" && !strings.EqualFold(f.Team, "ALL") && !strings.EqualFold(pl.Team, f.Team) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(pl.Name), query) {
			continue
		}
		out = append(out, pl)
	}

	switch f.Sort {
	case "name":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case "name_desc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	case "team":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	case "position":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
