package engine

import (
	"fmt"
	"strings"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// Hydrate fills in defaults for leagues saved before a field existed
func Hydrate(l models.League) models.League {
	next := l.Clone()
	if next.Members == nil {
		next.Members = []models.Member{}
	}
	if next.Teams == nil {
		next.Teams = []models.Team{}
	}
	if next.DraftOrder == nil {
		next.DraftOrder = []string{}
	}
	if next.DraftPicks == nil {
		next.DraftPicks = []models.Pick{}
	}
	if next.Matchups == nil {
		next.Matchups = []models.Matchup{}
	}
	if next.DraftSettings.Lineup == nil {
		next.DraftSettings.Lineup = DefaultLineup()
	}
	if next.DraftSettings.Rounds <= 0 {
		next.DraftSettings.Rounds = max(DefaultRounds, RequiredRounds(next.DraftSettings.Lineup))
	}
	return next
}

// DefaultTeamName is the name given to a team created for a member
func DefaultTeamName(owner string) string {
	return fmt.Sprintf("%s's Team", owner)
}

// SyncTeams creates a team for every member that does not own one yet.
// Teams whose owner has left are kept so past picks stay attributable.
func SyncTeams(members []models.Member, teams []models.Team) []models.Team {
	out := append([]models.Team{}, teams...)
	taken := make(map[string]bool, len(out))
	for _, t := range out {
		taken[t.ID] = true
	}
	for _, m := range members {
		handle := strings.TrimSpace(m.Handle())
		if handle == "" || hasTeam(out, handle) {
			continue
		}
		id := MakeTeamID(handle, taken)
		taken[id] = true
		out = append(out, models.Team{ID: id, Owner: handle, Name: DefaultTeamName(handle)})
	}
	return out
}

func hasTeam(teams []models.Team, owner string) bool {
	for _, t := range teams {
		if t.Owner != "" && sameHandle(t.Owner, owner) {
			return true
		}
	}
	return false
}

// RepairDraftOrder drops ids that no longer name a team and appends teams
// missing from the order. Existing relative order is preserved.
func RepairDraftOrder(order []string, teams []models.Team) []string {
	current := make(map[string]bool, len(teams))
	for _, t := range teams {
		current[t.ID] = true
	}
	out := make([]string, 0, len(teams))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if current[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, t := range teams {
		if !seen[t.ID] {
			out = append(out, t.ID)
			seen[t.ID] = true
		}
	}
	return out
}

// IsFull reports whether membership has reached the league size
func IsFull(l models.League) bool {
	return len(l.Members) >= l.Size
}

// FinalizeWhenFull generates the draft order and schedule once the league
// is full. An order that already covers every team and an existing
// schedule are left alone, as is the order of a draft in progress.
func FinalizeWhenFull(l models.League, rng Rand) models.League {
	if !IsFull(l) || len(l.Teams) < 2 {
		return l
	}
	next := l.Clone()
	// the snake is fixed once picks can be made
	reorder := !next.DraftState.Started
	if reorder && (len(next.DraftOrder) == 0 || len(next.DraftOrder) != len(next.Teams)) {
		next.DraftOrder = Shuffle(teamIDs(next.Teams), rng)
	}
	if len(next.Matchups) == 0 {
		next.Matchups = GenerateSchedule(next.Teams)
	}
	return next
}

// Reconcile brings teams, draft order and schedule in line with membership.
// Running it on its own output returns the same league.
func Reconcile(l models.League, rng Rand) models.League {
	next := Hydrate(l)
	next.Teams = SyncTeams(next.Members, next.Teams)
	if len(next.DraftOrder) > 0 && !next.DraftState.Started {
		next.DraftOrder = RepairDraftOrder(next.DraftOrder, next.Teams)
	}
	return FinalizeWhenFull(next, rng)
}
