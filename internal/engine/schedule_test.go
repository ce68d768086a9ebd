package engine

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

func teamsN(n int) []models.Team {
	teams := make([]models.Team, n)
	for i := range teams {
		teams[i] = models.Team{ID: fmt.Sprintf("t%d", i+1)}
	}
	return teams
}

func TestGenerateScheduleProperties(t *testing.T) {
	for n := 2; n <= 16; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			teams := teamsN(n)
			matchups := GenerateSchedule(teams)

			wantWeeks := n - 1
			if n%2 == 1 {
				wantWeeks = n
			}

			faced := make(map[[2]string]int)
			perWeek := make(map[int]map[string]bool)
			ids := make(map[string]bool)
			for _, m := range matchups {
				if m.Week < 1 || m.Week > wantWeeks {
					t.Fatalf("matchup %s has week %d outside 1..%d", m.ID, m.Week, wantWeeks)
				}
				if ids[m.ID] {
					t.Fatalf("duplicate matchup id %s", m.ID)
				}
				ids[m.ID] = true

				if perWeek[m.Week] == nil {
					perWeek[m.Week] = make(map[string]bool)
				}
				for _, id := range []string{m.HomeID, m.AwayID} {
					if perWeek[m.Week][id] {
						t.Fatalf("team %s plays twice in week %d", id, m.Week)
					}
					perWeek[m.Week][id] = true
				}

				pair := [2]string{m.HomeID, m.AwayID}
				if pair[0] > pair[1] {
					pair[0], pair[1] = pair[1], pair[0]
				}
				faced[pair]++
			}

			if want := n * (n - 1) / 2; len(faced) != want {
				t.Errorf("expected %d distinct pairings, got %d", want, len(faced))
			}
			for pair, count := range faced {
				if count != 1 {
					t.Errorf("pair %v met %d times", pair, count)
				}
			}

			for _, team := range teams {
				byes := 0
				for week := 1; week <= wantWeeks; week++ {
					if !perWeek[week][team.ID] {
						byes++
					}
				}
				wantByes := 0
				if n%2 == 1 {
					wantByes = 1
				}
				if byes != wantByes {
					t.Errorf("team %s has %d bye weeks, want %d", team.ID, byes, wantByes)
				}
			}
		})
	}
}

func TestGenerateScheduleThreeTeams(t *testing.T) {
	teams := []models.Team{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	matchups := GenerateSchedule(teams)

	want := []models.Matchup{
		{ID: "wk1-2-b-c", Week: 1, HomeID: "b", AwayID: "c"},
		{ID: "wk2-1-a-c", Week: 2, HomeID: "a", AwayID: "c"},
		{ID: "wk3-1-a-b", Week: 3, HomeID: "a", AwayID: "b"},
	}
	if !reflect.DeepEqual(matchups, want) {
		t.Fatalf("unexpected schedule:\n got  %+v\n want %+v", matchups, want)
	}

	games := make(map[string]int)
	for _, m := range matchups {
		games[m.HomeID]++
		games[m.AwayID]++
	}
	for _, id := range []string{"a", "b", "c"} {
		if games[id] != 2 {
			t.Errorf("team %s plays %d games, want 2", id, games[id])
		}
	}

	weeks := GroupByWeek(teams, matchups)
	if len(weeks) != 3 {
		t.Fatalf("expected 3 weeks, got %d", len(weeks))
	}
	for _, w := range weeks {
		if len(w.Bye) != 1 {
			t.Errorf("week %d: expected one bye, got %v", w.Week, w.Bye)
		}
	}
}

func TestGenerateScheduleFourTeamsRotation(t *testing.T) {
	matchups := GenerateSchedule([]models.Team{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})
	want := []string{
		"wk1-1-a-d", "wk1-2-b-c",
		"wk2-1-a-c", "wk2-2-d-b",
		"wk3-1-a-b", "wk3-2-c-d",
	}
	if len(matchups) != len(want) {
		t.Fatalf("expected %d matchups, got %d", len(want), len(matchups))
	}
	for i, m := range matchups {
		if m.ID != want[i] {
			t.Errorf("matchup %d: got %s, want %s", i, m.ID, want[i])
		}
	}
}

func TestGenerateScheduleTooFewTeams(t *testing.T) {
	for _, teams := range [][]models.Team{nil, {{ID: "solo"}}} {
		got := GenerateSchedule(teams)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty schedule for %d teams, got %v", len(teams), got)
		}
	}
}

func TestGenerateScheduleDeterministic(t *testing.T) {
	teams := teamsN(8)
	if !reflect.DeepEqual(GenerateSchedule(teams), GenerateSchedule(teams)) {
		t.Error("schedule generation is not deterministic")
	}
}
