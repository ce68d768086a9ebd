package engine

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

func TestStartDraft(t *testing.T) {
	l := leagueWith("A", "B", "C", "D")
	l.DraftPicks = []models.Pick{{Pick: 1, TeamID: "A"}}

	next, err := StartDraft(l, "a", 3, DefaultLineup(), testNow, seeded(9))
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}

	if !next.DraftState.Started || next.DraftState.Completed {
		t.Errorf("unexpected draft state %+v", next.DraftState)
	}
	if next.DraftState.StartedAt == nil || !next.DraftState.StartedAt.Equal(testNow) {
		t.Errorf("startedAt = %v, want %v", next.DraftState.StartedAt, testNow)
	}
	if next.DraftSettings.Rounds != 7 {
		t.Errorf("rounds should clamp up to 7, got %d", next.DraftSettings.Rounds)
	}
	if len(next.DraftPicks) != 0 {
		t.Errorf("prior picks should be cleared, got %d", len(next.DraftPicks))
	}

	order := append([]string(nil), next.DraftOrder...)
	sort.Strings(order)
	if !reflect.DeepEqual(order, []string{"A", "B", "C", "D"}) {
		t.Errorf("draft order is not a permutation of teams: %v", next.DraftOrder)
	}

	if len(l.DraftPicks) != 1 || l.DraftState.Started {
		t.Error("input league was modified")
	}
}

func TestStartDraftKeepsExistingOrder(t *testing.T) {
	l := leagueWith("A", "B", "C")
	l.DraftOrder = []string{"C", "A", "B"}
	next, err := StartDraft(l, "B", 12, nil, testNow, seeded(1))
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}
	if !reflect.DeepEqual(next.DraftOrder, []string{"C", "A", "B"}) {
		t.Errorf("existing order should be kept, got %v", next.DraftOrder)
	}
	if !reflect.DeepEqual(next.DraftSettings.Lineup, DefaultLineup()) {
		t.Errorf("nil lineup should fall back to the default, got %v", next.DraftSettings.Lineup)
	}
}

func TestStartDraftRejections(t *testing.T) {
	started := startedLeague(t, 12, nil, "A", "B")

	tests := []struct {
		name   string
		league models.League
		actor  string
		lineup models.Lineup
		want   error
	}{
		{"not a member", leagueWith("A", "B"), "zed", nil, ErrNotMember},
		{"already started", started, "A", nil, ErrDraftAlreadyStarted},
		{"one team", leagueWith("A"), "A", nil, ErrNotEnoughTeams},
		{"negative slots", leagueWith("A", "B"), "A", models.Lineup{"qb": -1}, ErrInvalidLineup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StartDraft(tt.league, tt.actor, 12, tt.lineup, testNow, seeded(1))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !reflect.DeepEqual(got, tt.league) {
				t.Error("league should be returned unchanged")
			}
		})
	}
}

func TestSubmitPickFollowsSnake(t *testing.T) {
	lineup := models.Lineup{"qb": 1, "rb": 1}
	l := startedLeague(t, 2, lineup, "A", "B", "C", "D")
	seq := BuildSnakeOrder(l.DraftOrder, 2)
	pool := players(8, "RB")

	for i, teamID := range seq {
		next, err := SubmitPick(l, teamID, pool[i])
		if err != nil {
			t.Fatalf("pick %d by %s: %v", i+1, teamID, err)
		}
		p := next.DraftPicks[len(next.DraftPicks)-1]
		if p.Pick != i+1 || p.TeamID != teamID || p.Round != i/4+1 {
			t.Errorf("pick %d recorded as %+v", i+1, p)
		}
		l = next
	}

	if !l.DraftState.Completed {
		t.Fatal("draft should be complete after every pick")
	}
	if l.DraftPicks[4].TeamID != "D" {
		t.Errorf("pick #5 should belong to D, got %s", l.DraftPicks[4].TeamID)
	}

	extra := models.Player{ID: "late", Name: "Late Pick", Position: "WR"}
	after, err := SubmitPick(l, "A", extra)
	if !errors.Is(err, ErrDraftComplete) {
		t.Errorf("expected ErrDraftComplete, got %v", err)
	}
	if len(after.DraftPicks) != len(l.DraftPicks) {
		t.Error("no pick may be added after completion")
	}
}

func TestSubmitPickRejections(t *testing.T) {
	lineup := models.Lineup{"qb": 1, "rb": 1}
	started := startedLeague(t, 2, lineup, "A", "B")
	withPick, err := SubmitPick(started, "A", models.Player{ID: "p1", Position: "QB"})
	if err != nil {
		t.Fatalf("first pick: %v", err)
	}

	tests := []struct {
		name   string
		league models.League
		actor  string
		player models.Player
		want   error
	}{
		{"not started", leagueWith("A", "B"), "A", models.Player{ID: "p1"}, ErrDraftNotActive},
		{"not a member", started, "zed", models.Player{ID: "p1"}, ErrNotMember},
		{"out of turn", started, "B", models.Player{ID: "p1"}, ErrNotYourTurn},
		{"duplicate player", withPick, "B", models.Player{ID: "p1"}, ErrDuplicatePlayer},
		{"missing id", started, "A", models.Player{Name: "Nobody"}, ErrInvalidPlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SubmitPick(tt.league, tt.actor, tt.player)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !reflect.DeepEqual(got, tt.league) {
				t.Error("league should be returned unchanged")
			}
		})
	}
}

func TestSubmitPickNormalizesSnapshot(t *testing.T) {
	l := startedLeague(t, 1, models.Lineup{"qb": 1}, "A", "B")
	next, err := SubmitPick(l, "A", models.Player{ID: "x", Bye: 9, Status: "Active"})
	if err != nil {
		t.Fatalf("SubmitPick: %v", err)
	}
	want := models.PlayerSnapshot{ID: "x", Name: "Player", Position: "FLEX", Team: "FA"}
	if got := next.DraftPicks[0].Player; got != want {
		t.Errorf("snapshot = %+v, want %+v", got, want)
	}
}

func TestUpdateSettings(t *testing.T) {
	l := leagueWith("A", "B")
	next, err := UpdateSettings(l, "A", 2, models.Lineup{"QB": 2, "rb": 2})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if next.DraftSettings.Rounds != 4 {
		t.Errorf("rounds should clamp to 4, got %d", next.DraftSettings.Rounds)
	}
	if next.DraftSettings.Lineup["qb"] != 2 {
		t.Errorf("lineup keys should be lowercased, got %v", next.DraftSettings.Lineup)
	}

	started := startedLeague(t, 12, nil, "A", "B")
	if _, err := UpdateSettings(started, "A", 12, nil); !errors.Is(err, ErrDraftAlreadyStarted) {
		t.Errorf("expected ErrDraftAlreadyStarted, got %v", err)
	}
}

func TestShuffleDraftOrder(t *testing.T) {
	l := leagueWith("A", "B", "C", "D")
	next, err := ShuffleDraftOrder(l, "C", seeded(5))
	if err != nil {
		t.Fatalf("ShuffleDraftOrder: %v", err)
	}
	order := append([]string(nil), next.DraftOrder...)
	sort.Strings(order)
	if !reflect.DeepEqual(order, []string{"A", "B", "C", "D"}) {
		t.Errorf("order is not a permutation: %v", next.DraftOrder)
	}

	if _, err := ShuffleDraftOrder(leagueWith("A"), "A", nil); !errors.Is(err, ErrNotEnoughTeams) {
		t.Errorf("expected ErrNotEnoughTeams, got %v", err)
	}
	if _, err := ShuffleDraftOrder(l, "zed", nil); !errors.Is(err, ErrNotMember) {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
}

func TestSetAutoPick(t *testing.T) {
	l := leagueWith("A", "B")
	next, err := SetAutoPick(l, "a", "A", true)
	if err != nil {
		t.Fatalf("SetAutoPick: %v", err)
	}
	if !next.AutoPick["A"] {
		t.Error("auto-pick should be enabled for A")
	}
	if _, err := SetAutoPick(l, "A", "B", true); !errors.Is(err, ErrNotTeamOwner) {
		t.Errorf("expected ErrNotTeamOwner, got %v", err)
	}

	off, err := SetAutoPick(next, "A", "A", false)
	if err != nil {
		t.Fatalf("SetAutoPick off: %v", err)
	}
	if off.AutoPick["A"] {
		t.Error("auto-pick should be disabled")
	}
}

func TestChooseAutoPickPrefersOpenPositions(t *testing.T) {
	lineup := models.Lineup{"qb": 1, "rb": 1}
	l := startedLeague(t, 3, lineup, "A", "B")
	l.DraftPicks = []models.Pick{pickOf(1, "A", "qb-1", "QB"), pickOf(2, "B", "qb-2", "QB")}

	available := append(players(3, "QB"), players(2, "RB")...)
	for seed := int64(0); seed < 50; seed++ {
		p, ok := ChooseAutoPick(l, "B", available, seeded(seed))
		if !ok {
			t.Fatal("expected a player")
		}
		if p.Position != "RB" {
			t.Fatalf("seed %d: picked %s, only RB has capacity", seed, p.ID)
		}
	}
}

func TestChooseAutoPickFallsBackToAnyAvailable(t *testing.T) {
	lineup := models.Lineup{"qb": 1}
	l := startedLeague(t, 3, lineup, "A", "B")
	l.DraftPicks = []models.Pick{pickOf(1, "A", "qb-1", "QB")}

	available := []models.Player{{ID: "qb-1", Position: "QB"}, {ID: "k-1", Position: "K"}}
	p, ok := ChooseAutoPick(l, "A", available, seeded(1))
	if !ok || p.ID != "k-1" {
		t.Errorf("expected fallback to the only undrafted player, got %+v (%v)", p, ok)
	}

	if _, ok := ChooseAutoPick(l, "A", available[:1], seeded(1)); ok {
		t.Error("no undrafted players should yield no choice")
	}
}

func TestRunAutoPicks(t *testing.T) {
	lineup := models.Lineup{"qb": 1, "rb": 1}
	l := startedLeague(t, 2, lineup, "A", "B", "C")
	l.AutoPick = map[string]bool{"B": true, "C": true}
	pool := append(players(3, "QB"), players(3, "RB")...)

	// A is on the clock and not on auto-pick
	same, made, err := RunAutoPicks(l, pool, seeded(1))
	if err != nil || len(made) != 0 || !reflect.DeepEqual(same, l) {
		t.Fatalf("expected no auto picks while A is on the clock, got %d (%v)", len(made), err)
	}

	l, err = SubmitPick(l, "A", pool[0])
	if err != nil {
		t.Fatalf("SubmitPick: %v", err)
	}

	// B, C, C, B run automatically, then A is back on the clock
	l, made, err = RunAutoPicks(l, pool, seeded(1))
	if err != nil {
		t.Fatalf("RunAutoPicks: %v", err)
	}
	if len(made) != 4 {
		t.Fatalf("expected 4 auto picks, got %d", len(made))
	}
	wantTeams := []string{"B", "C", "C", "B"}
	for i, p := range made {
		if p.TeamID != wantTeams[i] {
			t.Errorf("auto pick %d went to %s, want %s", i, p.TeamID, wantTeams[i])
		}
	}
	if id, _ := TeamOnClock(l); id != "A" {
		t.Errorf("expected A on the clock, got %s", id)
	}

	seen := make(map[string]bool)
	for _, p := range l.DraftPicks {
		if seen[p.Player.ID] {
			t.Fatalf("player %s drafted twice", p.Player.ID)
		}
		seen[p.Player.ID] = true
	}
}

func TestRunAutoPicksNoPlayers(t *testing.T) {
	l := startedLeague(t, 1, models.Lineup{"qb": 1}, "A", "B")
	l.AutoPick = map[string]bool{"A": true}
	_, _, err := RunAutoPicks(l, nil, seeded(1))
	if !errors.Is(err, ErrNoAvailablePlayers) {
		t.Errorf("expected ErrNoAvailablePlayers, got %v", err)
	}
}

func TestPickFor(t *testing.T) {
	l := startedLeague(t, 1, models.Lineup{"qb": 1}, "A", "B")
	if _, err := PickFor(l, "B", players(2, "QB"), seeded(1)); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("expected ErrNotYourTurn, got %v", err)
	}
	next, err := PickFor(l, "A", players(2, "QB"), seeded(1))
	if err != nil {
		t.Fatalf("PickFor: %v", err)
	}
	if len(next.DraftPicks) != 1 || next.DraftPicks[0].TeamID != "A" {
		t.Errorf("unexpected picks %+v", next.DraftPicks)
	}
}
