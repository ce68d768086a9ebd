package players

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

const SleeperURL = "https://api.sleeper.app"

// SleeperSource loads players from the public Sleeper API
type SleeperSource struct {
	url        string
	httpClient *http.Client
}

func NewSleeperSource() *SleeperSource {
	return NewSleeperSourceWithURL(SleeperURL)
}

// NewSleeperSourceWithURL points the source at another host, e.g. a fake server in tests
func NewSleeperSourceWithURL(url string) *SleeperSource {
	return &SleeperSource{
		url: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: 1 * time.Minute,
		},
	}
}

func (s *SleeperSource) Name() string { return "sleeper" }

type sleeperPlayer struct {
	ID               string   `json:"player_id"`
	FullName         string   `json:"full_name"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Position         string   `json:"position"`
	FantasyPositions []string `json:"fantasy_positions"`
	Team             string   `json:"team"`
	ByeWeek          *int     `json:"bye_week"`
	InjuryStatus     string   `json:"injury_status"`
	Status           string   `json:"status"`
	SearchRank       *int     `json:"search_rank"`
}

// toPlayer returns false for players that cannot be drafted
func (p *sleeperPlayer) toPlayer() (models.Player, bool) {
	if p.ID == "" {
		return models.Player{}, false
	}

	pos := p.Position
	if pos == "" && len(p.FantasyPositions) > 0 {
		pos = p.FantasyPositions[0]
	}
	pos = strings.ToUpper(pos)
	if !allowedPositions[pos] {
		return models.Player{}, false
	}

	if !onRoster(p.Team) {
		return models.Player{}, false
	}

	name := p.FullName
	if name == "" {
		name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	if name == "" {
		return models.Player{}, false
	}

	status := p.InjuryStatus
	if status == "" {
		status = p.Status
	}
	if status == "" {
		status = "active"
	}

	player := models.Player{
		ID:       p.ID,
		Name:     name,
		Position: pos,
		Team:     p.Team,
		Status:   status,
	}
	if p.ByeWeek != nil {
		player.Bye = *p.ByeWeek
	}
	return player, true
}

func (p *sleeperPlayer) rank() int {
	if p.SearchRank == nil {
		return int(^uint(0) >> 1)
	}
	return *p.SearchRank
}

// Load fetches every NFL player and keeps the draftable ones, best search rank first
func (s *SleeperSource) Load(ctx context.Context) ([]models.Player, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/players/nfl", s.url), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating http request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var parsed map[string]sleeperPlayer
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error parsing response from sleeper: %w", err)
	}

	ranked := make([]sleeperPlayer, 0, len(parsed))
	for _, p := range parsed {
		ranked = append(ranked, p)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].rank() != ranked[j].rank() {
			return ranked[i].rank() < ranked[j].rank()
		}
		return ranked[i].ID < ranked[j].ID
	})

	result := make([]models.Player, 0, len(ranked))
	for i := range ranked {
		if player, ok := ranked[i].toPlayer(); ok {
			result = append(result, player)
		}
	}
	return result, nil
}
