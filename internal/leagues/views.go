package leagues

import (
	"context"
	"errors"
	"sort"

	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
	"github.com/Billy-Davies-2/blt-leagues/internal/players"
)

var (
	// ErrTeamNotFound is returned for a team id the league does not have
	ErrTeamNotFound = errors.New("team not found")
	// ErrMatchupNotFound is returned for a matchup id the schedule does not have
	ErrMatchupNotFound = errors.New("matchup not found")
)

// Board is the draft room view of a league
type Board struct {
	League    models.League   `json:"league"`
	Turn      engine.Turn     `json:"turn"`
	Snake     []string        `json:"snake"`
	Available []models.Player `json:"available"`
}

// Board returns the turn state, the full snake sequence and the undrafted
// players matching the filter
func (s *Service) Board(ctx context.Context, id string, f players.Filter) (Board, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return Board{}, err
	}
	return Board{
		League:    l,
		Turn:      engine.CurrentTurn(l),
		Snake:     engine.BuildSnakeOrder(l.DraftOrder, l.DraftSettings.Rounds),
		Available: players.Apply(s.players.Available(l), f),
	}, nil
}

// LineupView is a team's starting lineup projection
type LineupView struct {
	TeamID  string               `json:"teamId"`
	Slots   []models.Slot        `json:"slots"`
	Summary engine.LineupSummary `json:"summary"`
	Open    []string             `json:"open"`
	Bench   []models.Pick        `json:"bench"`
}

// Lineup allocates a team's picks to lineup slots
func (s *Service) Lineup(ctx context.Context, id, teamID string) (LineupView, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return LineupView{}, err
	}
	if _, ok := l.TeamByID(teamID); !ok {
		return LineupView{}, ErrTeamNotFound
	}
	return lineupFor(l, teamID), nil
}

func lineupFor(l models.League, teamID string) LineupView {
	picks := engine.TeamPicks(l, teamID)
	slots := engine.AllocateLineupSlots(l.DraftSettings.Lineup, picks)

	started := make(map[int]bool, len(slots))
	for _, slot := range slots {
		if slot.Pick != nil {
			started[slot.Pick.Pick] = true
		}
	}
	bench := []models.Pick{}
	for _, p := range picks {
		if !started[p.Pick] {
			bench = append(bench, p)
		}
	}

	open := engine.OpenPositions(l.DraftSettings.Lineup, picks)
	if open == nil {
		open = []string{}
	}

	return LineupView{
		TeamID:  teamID,
		Slots:   slots,
		Summary: engine.Summarize(slots),
		Open:    open,
		Bench:   bench,
	}
}

// Schedule returns the league's matchups grouped by week
func (s *Service) Schedule(ctx context.Context, id string) ([]engine.Week, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return engine.GroupByWeek(l.Teams, l.Matchups), nil
}

// TeamSchedule is one team's games in week order
type TeamSchedule struct {
	TeamID   string           `json:"teamId"`
	Matchups []models.Matchup `json:"matchups"`
	Byes     []int            `json:"byes"`
}

// TeamSchedule returns the matchups a team plays and the weeks it sits out
func (s *Service) TeamSchedule(ctx context.Context, id, teamID string) (TeamSchedule, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return TeamSchedule{}, err
	}
	if _, ok := l.TeamByID(teamID); !ok {
		return TeamSchedule{}, ErrTeamNotFound
	}

	out := TeamSchedule{TeamID: teamID, Matchups: []models.Matchup{}, Byes: []int{}}
	for _, m := range l.Matchups {
		if m.HomeID == teamID || m.AwayID == teamID {
			out.Matchups = append(out.Matchups, m)
		}
	}
	sort.SliceStable(out.Matchups, func(i, j int) bool {
		return out.Matchups[i].Week < out.Matchups[j].Week
	})
	for _, w := range engine.GroupByWeek(l.Teams, l.Matchups) {
		for _, idle := range w.Bye {
			if idle == teamID {
				out.Byes = append(out.Byes, w.Week)
			}
		}
	}
	return out, nil
}

// MatchupSide is one team in a matchup with its drafted roster
type MatchupSide struct {
	Team   models.Team             `json:"team"`
	Roster []models.PlayerSnapshot `json:"roster"`
	Lineup LineupView              `json:"lineup"`
}

// MatchupView is a single game with both rosters
type MatchupView struct {
	Matchup models.Matchup `json:"matchup"`
	Home    MatchupSide    `json:"home"`
	Away    MatchupSide    `json:"away"`
}

// Matchup returns one game of the schedule with both teams' rosters
func (s *Service) Matchup(ctx context.Context, id, matchupID string) (MatchupView, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return MatchupView{}, err
	}
	for _, m := range l.Matchups {
		if m.ID == matchupID {
			return MatchupView{
				Matchup: m,
				Home:    sideOf(l, m.HomeID),
				Away:    sideOf(l, m.AwayID),
			}, nil
		}
	}
	return MatchupView{}, ErrMatchupNotFound
}

func sideOf(l models.League, teamID string) MatchupSide {
	team, ok := l.TeamByID(teamID)
	if !ok {
		team = models.Team{ID: teamID}
	}
	roster := []models.PlayerSnapshot{}
	for _, p := range engine.TeamPicks(l, teamID) {
		roster = append(roster, p.Player)
	}
	return MatchupSide{Team: team, Roster: roster, Lineup: lineupFor(l, teamID)}
}
