package engine

import (
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

const (
	DefaultRounds = 12
	MaxRounds     = 30
)

// DefaultLineup is the lineup a league starts with
func DefaultLineup() models.Lineup {
	return models.Lineup{"qb": 1, "rb": 2, "wr": 2, "te": 1, models.Flex: 1}
}

// RequiredRounds is the number of rounds needed to fill every lineup slot
func RequiredRounds(lineup models.Lineup) int {
	sum := 0
	for _, n := range lineup {
		if n > 0 {
			sum += n
		}
	}
	if sum < 1 {
		return 1
	}
	return sum
}

// ClampRounds bounds a requested round count to [RequiredRounds, MaxRounds].
// The lower bound wins when the lineup alone needs more than MaxRounds.
// A non-positive request means the required minimum.
func ClampRounds(requested int, lineup models.Lineup) int {
	required := RequiredRounds(lineup)
	if requested <= 0 {
		return required
	}
	return max(required, min(MaxRounds, requested))
}

// BuildSnakeOrder expands a draft order into the full pick sequence: odd
// rounds run forward, even rounds run in reverse.
func BuildSnakeOrder(order []string, rounds int) []string {
	if len(order) == 0 || rounds <= 0 {
		return []string{}
	}
	seq := make([]string, 0, rounds*len(order))
	for r := 1; r <= rounds; r++ {
		if r%2 == 1 {
			seq = append(seq, order...)
			continue
		}
		for i := len(order) - 1; i >= 0; i-- {
			seq = append(seq, order[i])
		}
	}
	return seq
}

// TotalPicks is rounds times the number of teams in the draft order
func TotalPicks(l models.League) int {
	return l.DraftSettings.Rounds * len(l.DraftOrder)
}

// RoundOf returns the 1-based round of a 1-based overall pick number
func RoundOf(pick, teams int) int {
	if teams <= 0 {
		return 0
	}
	return (pick-1)/teams + 1
}

// TeamOnClock returns the team due to make the next pick. It reports false
// when there is no draft order or every pick has been made.
func TeamOnClock(l models.League) (string, bool) {
	n := len(l.DraftOrder)
	idx := len(l.DraftPicks)
	if n == 0 || idx >= TotalPicks(l) {
		return "", false
	}
	round, pos := idx/n, idx%n
	if round%2 == 1 {
		pos = n - 1 - pos
	}
	return l.DraftOrder[pos], true
}

// IsMember reports whether handle belongs to a league member (case-insensitive)
func IsMember(l models.League, handle string) bool {
	if handle == "" {
		return false
	}
	for _, m := range l.Members {
		if sameHandle(m.Handle(), handle) {
			return true
		}
	}
	return false
}

// TeamsOwnedBy returns the ids of the teams a member controls
func TeamsOwnedBy(l models.League, handle string) []string {
	var ids []string
	if handle == "" {
		return ids
	}
	for _, t := range l.Teams {
		if t.Owner != "" && sameHandle(t.Owner, handle) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Controls reports whether handle owns the team with the given id
func Controls(l models.League, handle, teamID string) bool {
	for _, id := range TeamsOwnedBy(l, handle) {
		if id == teamID {
			return true
		}
	}
	return false
}

// IsDrafted reports whether a player id already appears in the league's picks
func IsDrafted(l models.League, playerID string) bool {
	for _, p := range l.DraftPicks {
		if p.Player.ID == playerID {
			return true
		}
	}
	return false
}

// Turn is a read-only projection of the draft clock
type Turn struct {
	Pick       int    `json:"pick"`
	Round      int    `json:"round"`
	TeamID     string `json:"teamId,omitempty"`
	TotalPicks int    `json:"totalPicks"`
	Started    bool   `json:"started"`
	Completed  bool   `json:"completed"`
}

// CurrentTurn derives the turn state from the league
func CurrentTurn(l models.League) Turn {
	next := len(l.DraftPicks) + 1
	t := Turn{
		Pick:       next,
		Round:      RoundOf(next, len(l.DraftOrder)),
		TotalPicks: TotalPicks(l),
		Started:    l.DraftState.Started,
		Completed:  l.DraftState.Completed,
	}
	if id, ok := TeamOnClock(l); ok {
		t.TeamID = id
	} else {
		t.Pick = len(l.DraftPicks)
		t.Round = RoundOf(t.Pick, len(l.DraftOrder))
	}
	return t
}
