package engine

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

var testNow = time.Date(2026, 9, 6, 17, 0, 0, 0, time.UTC)

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// leagueWith builds a league whose members are the given handles, one team each
func leagueWith(handles ...string) models.League {
	l := models.League{
		ID:   "lg-1",
		Name: "Sunday Slate",
		Size: len(handles),
	}
	for _, h := range handles {
		l.Members = append(l.Members, models.Member{Username: h, Label: h})
		l.Teams = append(l.Teams, models.Team{ID: h, Owner: h, Name: DefaultTeamName(h)})
	}
	return l
}

// startedLeague returns a league with a fixed draft order already running
func startedLeague(t *testing.T, rounds int, lineup models.Lineup, handles ...string) models.League {
	t.Helper()
	l := leagueWith(handles...)
	l.DraftOrder = append([]string(nil), handles...)
	l, err := StartDraft(l, handles[0], rounds, lineup, testNow, seeded(1))
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}
	return l
}

func players(n int, position string) []models.Player {
	out := make([]models.Player, n)
	for i := range out {
		out[i] = models.Player{
			ID:       fmt.Sprintf("%s-%d", position, i+1),
			Name:     fmt.Sprintf("%s Player %d", position, i+1),
			Position: position,
			Team:     "KC",
		}
	}
	return out
}

func pickOf(n int, teamID, playerID, position string) models.Pick {
	return models.Pick{
		Pick:   n,
		TeamID: teamID,
		Player: models.PlayerSnapshot{ID: playerID, Name: playerID, Position: position, Team: "KC"},
	}
}
