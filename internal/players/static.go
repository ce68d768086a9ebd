package players

import (
	"context"
	"fmt"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// StaticSource serves a fixed player list for local development and tests
type StaticSource struct {
	players []models.Player
}

// NewStaticSource returns the built-in development player list
func NewStaticSource() *StaticSource {
	return &StaticSource{players: seedPlayers()}
}

// NewStaticSourceWith serves exactly the given players
func NewStaticSourceWith(players []models.Player) *StaticSource {
	return &StaticSource{players: append([]models.Player(nil), players...)}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Load(ctx context.Context) ([]models.Player, error) {
	return append([]models.Player(nil), s.players...), nil
}

var headliners = []models.Player{
	{ID: "4046", Name: "Patrick Mahomes", Position: "QB", Team: "KC", Bye: 10},
	{ID: "4984", Name: "Josh Allen", Position: "QB", Team: "BUF", Bye: 7},
	{ID: "6904", Name: "Jalen Hurts", Position: "QB", Team: "PHI", Bye: 9},
	{ID: "4881", Name: "Lamar Jackson", Position: "QB", Team: "BAL", Bye: 7},
	{ID: "6797", Name: "Justin Herbert", Position: "QB", Team: "LAC", Bye: 12},
	{ID: "7523", Name: "Trevor Lawrence", Position: "QB", Team: "JAX", Bye: 8},
	{ID: "9509", Name: "Bijan Robinson", Position: "RB", Team: "ATL", Bye: 5},
	{ID: "4034", Name: "Christian McCaffrey", Position: "RB", Team: "SF", Bye: 14},
	{ID: "8138", Name: "Breece Hall", Position: "RB", Team: "NYJ", Bye: 9},
	{ID: "6813", Name: "Jonathan Taylor", Position: "RB", Team: "IND", Bye: 11},
	{ID: "4866", Name: "Saquon Barkley", Position: "RB", Team: "PHI", Bye: 9},
	{ID: "9221", Name: "Jahmyr Gibbs", Position: "RB", Team: "DET", Bye: 8},
	{ID: "8150", Name: "Kenneth Walker III", Position: "RB", Team: "SEA", Bye: 8},
	{ID: "5850", Name: "Josh Jacobs", Position: "RB", Team: "GB", Bye: 5},
	{ID: "7543", Name: "Travis Etienne", Position: "RB", Team: "JAX", Bye: 8},
	{ID: "6786", Name: "CeeDee Lamb", Position: "WR", Team: "DAL", Bye: 10},
	{ID: "7564", Name: "Ja'Marr Chase", Position: "WR", Team: "CIN", Bye: 10},
	{ID: "6794", Name: "Justin Jefferson", Position: "WR", Team: "MIN", Bye: 6},
	{ID: "3321", Name: "Tyreek Hill", Position: "WR", Team: "MIA", Bye: 12},
	{ID: "8146", Name: "Garrett Wilson", Position: "WR", Team: "NYJ", Bye: 9},
	{ID: "7547", Name: "Amon-Ra St. Brown", Position: "WR", Team: "DET", Bye: 8},
	{ID: "6801", Name: "Tee Higgins", Position: "WR", Team: "CIN", Bye: 10},
	{ID: "9488", Name: "Puka Nacua", Position: "WR", Team: "LAR", Bye: 8},
	{ID: "5859", Name: "A.J. Brown", Position: "WR", Team: "PHI", Bye: 9},
	{ID: "7569", Name: "DeVonta Smith", Position: "WR", Team: "PHI", Bye: 9},
	{ID: "2374", Name: "Tyler Lockett", Position: "WR", Team: "SEA", Bye: 8},
	{ID: "5872", Name: "Deebo Samuel", Position: "WR", Team: "SF", Bye: 14},
	{ID: "8112", Name: "Drake London", Position: "WR", Team: "ATL", Bye: 5},
	{ID: "1466", Name: "Travis Kelce", Position: "TE", Team: "KC", Bye: 10},
	{ID: "8130", Name: "Trey McBride", Position: "TE", Team: "ARI", Bye: 8},
	{ID: "9480", Name: "Sam LaPorta", Position: "TE", Team: "DET", Bye: 8},
	{ID: "4217", Name: "George Kittle", Position: "TE", Team: "SF", Bye: 14},
	{ID: "5012", Name: "Mark Andrews", Position: "TE", Team: "BAL", Bye: 7},
	{ID: "11596", Name: "Ben Sinnott", Position: "TE", Team: "WAS", Bye: 12},
}

var nflTeams = []string{
	"ARI", "ATL", "BAL", "BUF", "CAR", "CHI", "CIN", "CLE",
	"DAL", "DEN", "DET", "GB", "HOU", "IND", "JAX", "KC",
	"LAC", "LAR", "LV", "MIA", "MIN", "NE", "NO", "NYG",
	"NYJ", "PHI", "PIT", "SEA", "SF", "TB", "TEN", "WAS",
}

var (
	depthFirst = []string{"Avery", "Blake", "Casey", "Drew", "Emerson", "Finley", "Grayson", "Harper", "Jordan", "Kendall", "Logan", "Micah", "Parker", "Quinn", "Reese", "Sawyer"}
	depthLast  = []string{"Adams", "Brooks", "Carter", "Dixon", "Ellis", "Foster", "Graves", "Hayes", "Irving", "Jennings", "Knox", "Lowe", "Mercer", "Nash", "Owens", "Pruitt", "Reyes", "Sutton", "Tate", "Vance"}

	// depth slots generated per NFL team behind the headliners
	depthChart = []string{"QB", "QB", "RB", "RB", "RB", "RB", "WR", "WR", "WR", "WR", "WR", "TE", "TE", "TE"}
)

// seedPlayers returns the headliners followed by generated depth players,
// enough to fill a maximum size league's draft
func seedPlayers() []models.Player {
	out := append([]models.Player(nil), headliners...)
	n := 0
	for slot, pos := range depthChart {
		for ti, team := range nflTeams {
			first := depthFirst[n%len(depthFirst)]
			last := depthLast[(n*7+ti)%len(depthLast)]
			out = append(out, models.Player{
				ID:       fmt.Sprintf("dev-%s-%s%d", team, pos, slot+1),
				Name:     first + " " + last,
				Position: pos,
				Team:     team,
				Bye:      5 + (ti % 10),
				Status:   "active",
			})
			n++
		}
	}
	for i := range out {
		if out[i].Status == "" {
			out[i].Status = "active"
		}
	}
	return out
}
