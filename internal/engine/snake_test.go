package engine

import (
	"reflect"
	"testing"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

func TestBuildSnakeOrderFourTeamsTwoRounds(t *testing.T) {
	got := BuildSnakeOrder([]string{"A", "B", "C", "D"}, 2)
	want := []string{"A", "B", "C", "D", "D", "C", "B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BuildSnakeOrder = %v, want %v", got, want)
	}
	if got[4] != "D" {
		t.Errorf("pick #5 should belong to D, got %s", got[4])
	}
}

func TestBuildSnakeOrderRounds(t *testing.T) {
	order := []string{"a", "b", "c", "d", "e"}
	for rounds := 1; rounds <= 7; rounds++ {
		seq := BuildSnakeOrder(order, rounds)
		if len(seq) != rounds*len(order) {
			t.Fatalf("rounds=%d: length %d, want %d", rounds, len(seq), rounds*len(order))
		}
		for r := 1; r <= rounds; r++ {
			slice := seq[(r-1)*len(order) : r*len(order)]
			for i := range order {
				want := order[i]
				if r%2 == 0 {
					want = order[len(order)-1-i]
				}
				if slice[i] != want {
					t.Errorf("rounds=%d round %d position %d: got %s, want %s", rounds, r, i, slice[i], want)
				}
			}
		}
	}
}

func TestBuildSnakeOrderEmpty(t *testing.T) {
	if got := BuildSnakeOrder(nil, 3); len(got) != 0 {
		t.Errorf("expected empty sequence, got %v", got)
	}
	if got := BuildSnakeOrder([]string{"a"}, 0); len(got) != 0 {
		t.Errorf("expected empty sequence, got %v", got)
	}
}

func TestTeamOnClockMatchesSnakeOrder(t *testing.T) {
	l := models.League{
		DraftOrder:    []string{"A", "B", "C"},
		DraftSettings: models.DraftSettings{Rounds: 4},
	}
	seq := BuildSnakeOrder(l.DraftOrder, 4)
	for i := range seq {
		got, ok := TeamOnClock(l)
		if !ok || got != seq[i] {
			t.Fatalf("pick %d: TeamOnClock = (%s, %v), want %s", i+1, got, ok, seq[i])
		}
		l.DraftPicks = append(l.DraftPicks, models.Pick{Pick: i + 1})
	}
	if _, ok := TeamOnClock(l); ok {
		t.Error("expected no team on the clock after the last pick")
	}
}

func TestRequiredRounds(t *testing.T) {
	tests := []struct {
		lineup models.Lineup
		want   int
	}{
		{DefaultLineup(), 7},
		{models.Lineup{"qb": 1, "rb": 1}, 2},
		{models.Lineup{}, 1},
		{nil, 1},
		{models.Lineup{"qb": 0, "k": 1}, 1},
	}
	for _, tt := range tests {
		if got := RequiredRounds(tt.lineup); got != tt.want {
			t.Errorf("RequiredRounds(%v) = %d, want %d", tt.lineup, got, tt.want)
		}
	}
}

func TestClampRounds(t *testing.T) {
	lineup := DefaultLineup()
	tests := []struct {
		requested int
		want      int
	}{
		{12, 12},
		{3, 7},
		{0, 7},
		{-1, 7},
		{31, 30},
		{30, 30},
	}
	for _, tt := range tests {
		if got := ClampRounds(tt.requested, lineup); got != tt.want {
			t.Errorf("ClampRounds(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}

	huge := models.Lineup{"rb": 40}
	if got := ClampRounds(10, huge); got != 40 {
		t.Errorf("lineup minimum should win over the round cap, got %d", got)
	}
}

func TestRoundOf(t *testing.T) {
	tests := []struct{ pick, teams, want int }{
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{12, 4, 3},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := RoundOf(tt.pick, tt.teams); got != tt.want {
			t.Errorf("RoundOf(%d, %d) = %d, want %d", tt.pick, tt.teams, got, tt.want)
		}
	}
}

func TestCurrentTurn(t *testing.T) {
	l := startedLeague(t, 2, models.Lineup{"qb": 1, "rb": 1}, "A", "B")
	turn := CurrentTurn(l)
	if turn.Pick != 1 || turn.Round != 1 || turn.TeamID != "A" || turn.TotalPicks != 4 {
		t.Errorf("unexpected turn %+v", turn)
	}

	l.DraftPicks = []models.Pick{{Pick: 1}, {Pick: 2}}
	turn = CurrentTurn(l)
	if turn.Pick != 3 || turn.Round != 2 || turn.TeamID != "B" {
		t.Errorf("unexpected turn after two picks %+v", turn)
	}

	l.DraftPicks = append(l.DraftPicks, models.Pick{Pick: 3}, models.Pick{Pick: 4})
	turn = CurrentTurn(l)
	if turn.TeamID != "" || turn.Pick != 4 {
		t.Errorf("expected no team on the clock, got %+v", turn)
	}
}

func TestIsMemberCaseInsensitive(t *testing.T) {
	l := leagueWith("Jessie Han")
	if !IsMember(l, "  jessie han ") {
		t.Error("expected case-insensitive member match")
	}
	if IsMember(l, "") {
		t.Error("empty handle must not match")
	}
	if !Controls(l, "JESSIE HAN", "Jessie Han") {
		t.Error("expected the member to control their team")
	}
}
