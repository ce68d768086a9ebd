package engine

import (
	"strings"
	"time"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

func validLineup(lineup models.Lineup) error {
	for _, n := range lineup {
		if n < 0 {
			return ErrInvalidLineup
		}
	}
	return nil
}

func copyLineup(lineup models.Lineup) models.Lineup {
	out := make(models.Lineup, len(lineup))
	for k, v := range lineup {
		out[strings.ToLower(k)] = v
	}
	return out
}

func teamIDs(teams []models.Team) []string {
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}

// StartDraft freezes the draft settings and opens the draft. An existing
// draft order is kept; otherwise teams are shuffled into one. A nil lineup
// keeps the league's current lineup. Rounds below the lineup minimum are
// clamped up.
func StartDraft(l models.League, actor string, rounds int, lineup models.Lineup, now time.Time, rng Rand) (models.League, error) {
	if !IsMember(l, actor) {
		return l, ErrNotMember
	}
	if l.DraftState.Started {
		return l, ErrDraftAlreadyStarted
	}
	if len(l.Teams) < 2 {
		return l, ErrNotEnoughTeams
	}
	if lineup == nil {
		lineup = l.DraftSettings.Lineup
	}
	if lineup == nil {
		lineup = DefaultLineup()
	}
	if err := validLineup(lineup); err != nil {
		return l, err
	}

	next := l.Clone()
	if len(next.DraftOrder) > 0 {
		next.DraftOrder = RepairDraftOrder(next.DraftOrder, next.Teams)
	} else {
		next.DraftOrder = Shuffle(teamIDs(next.Teams), rng)
	}
	lineup = copyLineup(lineup)
	next.DraftSettings = models.DraftSettings{
		Rounds: ClampRounds(rounds, lineup),
		Lineup: lineup,
	}
	startedAt := now.UTC()
	next.DraftState = models.DraftState{Started: true, Completed: false, StartedAt: &startedAt}
	next.DraftPicks = []models.Pick{}
	return next, nil
}

// SubmitPick records a pick for the team on the clock. The actor must own
// that team.
func SubmitPick(l models.League, actor string, player models.Player) (models.League, error) {
	if strings.TrimSpace(player.ID) == "" {
		return l, ErrInvalidPlayer
	}
	teamID, err := checkClock(l)
	if err != nil {
		return l, err
	}
	if !IsMember(l, actor) {
		return l, ErrNotMember
	}
	if !Controls(l, actor, teamID) {
		return l, ErrNotYourTurn
	}
	if IsDrafted(l, player.ID) {
		return l, ErrDuplicatePlayer
	}
	return appendPick(l, teamID, player), nil
}

func checkClock(l models.League) (string, error) {
	if !l.DraftState.Started {
		return "", ErrDraftNotActive
	}
	if l.DraftState.Completed {
		return "", ErrDraftComplete
	}
	teamID, ok := TeamOnClock(l)
	if !ok {
		return "", ErrDraftComplete
	}
	return teamID, nil
}

func appendPick(l models.League, teamID string, player models.Player) models.League {
	next := l.Clone()
	n := len(next.DraftPicks) + 1
	next.DraftPicks = append(next.DraftPicks, models.Pick{
		Pick:   n,
		Round:  RoundOf(n, len(next.DraftOrder)),
		TeamID: teamID,
		Player: NormalizeSnapshot(player.Snapshot()),
	})
	if n >= TotalPicks(next) {
		next.DraftState.Completed = true
	}
	return next
}

// NormalizeSnapshot fills the display fields a pick must always carry
func NormalizeSnapshot(p models.PlayerSnapshot) models.PlayerSnapshot {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = "Player"
	}
	if strings.TrimSpace(p.Position) == "" {
		p.Position = "FLEX"
	}
	if strings.TrimSpace(p.Team) == "" {
		p.Team = "FA"
	}
	return p
}

// UpdateSettings changes the round count and lineup before the draft starts
func UpdateSettings(l models.League, actor string, rounds int, lineup models.Lineup) (models.League, error) {
	if !IsMember(l, actor) {
		return l, ErrNotMember
	}
	if l.DraftState.Started {
		return l, ErrDraftAlreadyStarted
	}
	if lineup == nil {
		lineup = l.DraftSettings.Lineup
	}
	if lineup == nil {
		lineup = DefaultLineup()
	}
	if err := validLineup(lineup); err != nil {
		return l, err
	}
	next := l.Clone()
	lineup = copyLineup(lineup)
	next.DraftSettings = models.DraftSettings{Rounds: ClampRounds(rounds, lineup), Lineup: lineup}
	return next, nil
}

// ShuffleDraftOrder replaces the draft order with a fresh random permutation
func ShuffleDraftOrder(l models.League, actor string, rng Rand) (models.League, error) {
	if !IsMember(l, actor) {
		return l, ErrNotMember
	}
	if l.DraftState.Started {
		return l, ErrDraftAlreadyStarted
	}
	if len(l.Teams) < 2 {
		return l, ErrNotEnoughTeams
	}
	next := l.Clone()
	next.DraftOrder = Shuffle(teamIDs(next.Teams), rng)
	return next, nil
}

// SetAutoPick turns auto-pick on or off for a team the actor owns
func SetAutoPick(l models.League, actor, teamID string, enabled bool) (models.League, error) {
	if !IsMember(l, actor) {
		return l, ErrNotMember
	}
	if !Controls(l, actor, teamID) {
		return l, ErrNotTeamOwner
	}
	next := l.Clone()
	if next.AutoPick == nil {
		next.AutoPick = make(map[string]bool)
	}
	if enabled {
		next.AutoPick[teamID] = true
	} else {
		delete(next.AutoPick, teamID)
	}
	return next, nil
}

// ChooseAutoPick selects uniformly among undrafted players whose position
// still has lineup capacity for the team, falling back to every undrafted
// player when no position is open.
func ChooseAutoPick(l models.League, teamID string, available []models.Player, rng Rand) (models.Player, bool) {
	rng = orDefault(rng)
	var pool []models.Player
	for _, p := range available {
		if p.ID == "" || IsDrafted(l, p.ID) {
			continue
		}
		pool = append(pool, p)
	}
	if len(pool) == 0 {
		return models.Player{}, false
	}

	picks := TeamPicks(l, teamID)
	var fits []models.Player
	for _, p := range pool {
		if HasCapacity(l.DraftSettings.Lineup, picks, p.Position) {
			fits = append(fits, p)
		}
	}
	if len(fits) > 0 {
		pool = fits
	}
	return pool[rng.Intn(len(pool))], true
}

// AutoPick makes one pick for the team on the clock when that team has
// auto-pick enabled. The bool reports whether a pick was made.
func AutoPick(l models.League, available []models.Player, rng Rand) (models.League, bool, error) {
	teamID, err := checkClock(l)
	if err != nil {
		return l, false, nil
	}
	if !l.AutoPick[teamID] {
		return l, false, nil
	}
	player, ok := ChooseAutoPick(l, teamID, available, rng)
	if !ok {
		return l, false, ErrNoAvailablePlayers
	}
	return appendPick(l, teamID, player), true, nil
}

// PickFor makes a random capacity-aware pick for the actor's team on the
// clock, as if the actor had chosen it.
func PickFor(l models.League, actor string, available []models.Player, rng Rand) (models.League, error) {
	teamID, err := checkClock(l)
	if err != nil {
		return l, err
	}
	if !IsMember(l, actor) {
		return l, ErrNotMember
	}
	if !Controls(l, actor, teamID) {
		return l, ErrNotYourTurn
	}
	player, ok := ChooseAutoPick(l, teamID, available, rng)
	if !ok {
		return l, ErrNoAvailablePlayers
	}
	return appendPick(l, teamID, player), nil
}

// RunAutoPicks keeps auto-picking while the team on the clock has auto-pick
// enabled and returns the picks that were made.
func RunAutoPicks(l models.League, available []models.Player, rng Rand) (models.League, []models.Pick, error) {
	var made []models.Pick
	for {
		next, ok, err := AutoPick(l, available, rng)
		if err != nil {
			return l, made, err
		}
		if !ok {
			return l, made, nil
		}
		l = next
		made = append(made, l.DraftPicks[len(l.DraftPicks)-1])
	}
}
