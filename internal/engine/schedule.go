package engine

import (
	"fmt"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// Bye is the placeholder participant added when the team count is odd
const Bye = "BYE"

// GenerateSchedule builds a single round-robin schedule using the circle
// method. The first participant stays fixed and the rest rotate one place
// per week. Pairings against Bye are dropped, so with an odd team count every
// team sits out exactly one week. Fewer than two teams yields no matchups.
func GenerateSchedule(teams []models.Team) []models.Matchup {
	if len(teams) < 2 {
		return []models.Matchup{}
	}

	ids := make([]string, 0, len(teams)+1)
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	if len(ids)%2 != 0 {
		ids = append(ids, Bye)
	}

	total := len(ids)
	weeks := total - 1
	matchups := make([]models.Matchup, 0, weeks*total/2)

	for week := 1; week <= weeks; week++ {
		for i := 0; i < total/2; i++ {
			home, away := ids[i], ids[total-1-i]
			if home == Bye || away == Bye {
				continue
			}
			matchups = append(matchups, models.Matchup{
				ID:     MatchupID(week, i, home, away),
				Week:   week,
				HomeID: home,
				AwayID: away,
			})
		}
		ids = rotate(ids)
	}

	return matchups
}

// MatchupID is deterministic in week, pairing index and both team ids
func MatchupID(week, pair int, home, away string) string {
	return fmt.Sprintf("wk%d-%d-%s-%s", week, pair+1, home, away)
}

// rotate keeps ids[0] fixed and moves the last participant into slot 1
func rotate(ids []string) []string {
	n := len(ids)
	out := make([]string, 0, n)
	out = append(out, ids[0], ids[n-1])
	out = append(out, ids[1:n-1]...)
	return out
}

// Week groups a schedule's matchups by week number
type Week struct {
	Week     int              `json:"week"`
	Matchups []models.Matchup `json:"matchups"`
	Bye      []string         `json:"bye,omitempty"`
}

// GroupByWeek returns weeks in ascending order along with the teams idle
// in each week
func GroupByWeek(teams []models.Team, matchups []models.Matchup) []Week {
	maxWeek := 0
	for _, m := range matchups {
		if m.Week > maxWeek {
			maxWeek = m.Week
		}
	}

	weeks := make([]Week, maxWeek)
	for i := range weeks {
		weeks[i].Week = i + 1
	}
	for _, m := range matchups {
		if m.Week < 1 {
			continue
		}
		weeks[m.Week-1].Matchups = append(weeks[m.Week-1].Matchups, m)
	}

	for i := range weeks {
		playing := make(map[string]bool)
		for _, m := range weeks[i].Matchups {
			playing[m.HomeID] = true
			playing[m.AwayID] = true
		}
		for _, t := range teams {
			if !playing[t.ID] {
				weeks[i].Bye = append(weeks[i].Bye, t.ID)
			}
		}
	}
	return weeks
}
