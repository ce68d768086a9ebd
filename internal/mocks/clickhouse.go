package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Billy-Davies-2/blt-leagues/internal/logger"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

type recordedPick struct {
	leagueID string
	format   models.Format
	pick     models.Pick
}

// MockClickHouseClient keeps draft analytics in memory for local development
type MockClickHouseClient struct {
	mu    sync.RWMutex
	picks map[string]recordedPick // keyed by league and pick number
}

// NewMockClickHouseClient creates a mock ClickHouse client
func NewMockClickHouseClient() *MockClickHouseClient {
	logger.Info("Using MOCK ClickHouse client for local development")
	return &MockClickHouseClient{picks: make(map[string]recordedPick)}
}

func pickKey(leagueID string, n int) string {
	return fmt.Sprintf("%s#%d", leagueID, n)
}

// RecordPicks stores picks, replacing any earlier record of the same pick number
func (m *MockClickHouseClient) RecordPicks(ctx context.Context, leagueID string, format models.Format, picks []models.Pick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range picks {
		m.picks[pickKey(leagueID, p.Pick)] = recordedPick{leagueID: leagueID, format: format, pick: p}
	}
	return nil
}

// AverageDraftPosition mirrors the ClickHouse query over the recorded picks
func (m *MockClickHouseClient) AverageDraftPosition(ctx context.Context, format models.Format, limit int) ([]models.ADP, error) {
	if limit <= 0 {
		limit = 200
	}

	type agg struct {
		adp     models.ADP
		sum     int
		n       int
		leagues map[string]bool
	}

	m.mu.RLock()
	byPlayer := make(map[string]*agg)
	for _, r := range m.picks {
		if format != "" && r.format != format {
			continue
		}
		p := r.pick
		a, ok := byPlayer[p.Player.ID]
		if !ok {
			a = &agg{
				adp:     models.ADP{PlayerID: p.Player.ID, Name: p.Player.Name, Position: p.Player.Position, Best: p.Pick, Worst: p.Pick},
				leagues: make(map[string]bool),
			}
			byPlayer[p.Player.ID] = a
		}
		a.sum += p.Pick
		a.n++
		a.leagues[r.leagueID] = true
		if p.Pick < a.adp.Best {
			a.adp.Best = p.Pick
		}
		if p.Pick > a.adp.Worst {
			a.adp.Worst = p.Pick
		}
	}
	m.mu.RUnlock()

	out := make([]models.ADP, 0, len(byPlayer))
	for _, a := range byPlayer {
		a.adp.Drafts = len(a.leagues)
		a.adp.Average = float64(a.sum) / float64(a.n)
		out = append(out, a.adp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average < out[j].Average
		}
		if out[i].Drafts != out[j].Drafts {
			return out[i].Drafts > out[j].Drafts
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ping always succeeds
func (m *MockClickHouseClient) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for mock client
func (m *MockClickHouseClient) Close() error {
	return nil
}
