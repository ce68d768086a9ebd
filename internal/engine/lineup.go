package engine

import (
	"sort"
	"strings"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// FlexEligible lists the positions a flex slot accepts
var FlexEligible = []string{"rb", "wr", "te"}

var positionPriority = []string{"qb", "rb", "wr", "te"}

func isFlexEligible(position string) bool {
	position = strings.ToLower(position)
	for _, p := range FlexEligible {
		if p == position {
			return true
		}
	}
	return false
}

// singularKeys returns the non-flex lineup keys in allocation order: the
// fixed priority list first, then any other keys alphabetically.
func singularKeys(lineup models.Lineup) []string {
	present := make(map[string]bool, len(lineup))
	for k := range lineup {
		present[strings.ToLower(k)] = true
	}
	delete(present, models.Flex)

	var keys []string
	for _, k := range positionPriority {
		if present[k] {
			keys = append(keys, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func lineupCount(lineup models.Lineup, key string) int {
	for k, n := range lineup {
		if strings.EqualFold(k, key) && n > 0 {
			return n
		}
	}
	return 0
}

// TeamPicks returns a team's picks in pick order
func TeamPicks(l models.League, teamID string) []models.Pick {
	var picks []models.Pick
	for _, p := range l.DraftPicks {
		if p.TeamID == teamID {
			picks = append(picks, p)
		}
	}
	return picks
}

// AllocateLineupSlots binds picks to starting slots. Singular positions are
// filled first, each slot taking the earliest unused pick of exactly that
// position; flex slots then take the earliest unused rb, wr or te. Unbound
// picks are bench players and do not appear in the result.
func AllocateLineupSlots(lineup models.Lineup, picks []models.Pick) []models.Slot {
	used := make([]bool, len(picks))
	var slots []models.Slot

	take := func(match func(position string) bool) *models.Pick {
		for i := range picks {
			if used[i] || !match(picks[i].Player.Position) {
				continue
			}
			used[i] = true
			p := picks[i]
			return &p
		}
		return nil
	}

	for _, key := range singularKeys(lineup) {
		for i := 0; i < lineupCount(lineup, key); i++ {
			pick := take(func(position string) bool { return strings.EqualFold(position, key) })
			slots = append(slots, models.Slot{Key: strings.ToUpper(key), Pick: pick})
		}
	}
	for i := 0; i < lineupCount(lineup, models.Flex); i++ {
		slots = append(slots, models.Slot{Key: strings.ToUpper(models.Flex), Pick: take(isFlexEligible)})
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	return slots
}

// HasCapacity reports whether a team could start another player at position:
// either a dedicated slot for it is open or, for rb/wr/te, a flex slot is.
func HasCapacity(lineup models.Lineup, picks []models.Pick, position string) bool {
	position = strings.ToLower(strings.TrimSpace(position))
	if position == "" || position == models.Flex {
		return false
	}
	slots := AllocateLineupSlots(lineup, picks)
	key := strings.ToUpper(position)
	flexKey := strings.ToUpper(models.Flex)
	for _, s := range slots {
		if s.Filled() {
			continue
		}
		if s.Key == key {
			return true
		}
		if s.Key == flexKey && isFlexEligible(position) {
			return true
		}
	}
	return false
}

// OpenPositions lists the positions with remaining capacity in allocation order
func OpenPositions(lineup models.Lineup, picks []models.Pick) []string {
	var open []string
	seen := make(map[string]bool)
	candidates := append(singularKeys(lineup), FlexEligible...)
	for _, pos := range candidates {
		if seen[pos] {
			continue
		}
		seen[pos] = true
		if HasCapacity(lineup, picks, pos) {
			open = append(open, pos)
		}
	}
	return open
}

// LineupSummary counts filled and total starting slots
type LineupSummary struct {
	Filled int `json:"filled"`
	Total  int `json:"total"`
}

// Summarize counts filled slots
func Summarize(slots []models.Slot) LineupSummary {
	s := LineupSummary{Total: len(slots)}
	for _, slot := range slots {
		if slot.Filled() {
			s.Filled++
		}
	}
	return s
}
