package engine

import (
	"errors"
	"testing"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

func TestNewLeague(t *testing.T) {
	l, err := NewLeague(NewLeagueParams{
		ID:           "lg-42",
		Name:         "  Two-Minute Drill ",
		Commissioner: "Jamie Lee",
		Format:       "half-ppr",
		Size:         7,
	}, map[string]bool{"DRILL8": true}, testNow, seeded(4))
	if err != nil {
		t.Fatalf("NewLeague: %v", err)
	}

	if l.Name != "Two-Minute Drill" || l.Format != models.FormatHalfPPR || l.Size != 8 {
		t.Errorf("unexpected league header %+v", l)
	}
	if len(l.Code) != InviteCodeLength || l.Code == "DRILL8" {
		t.Errorf("unexpected invite code %q", l.Code)
	}
	if len(l.Members) != 1 || l.Members[0].Username != "Jamie Lee" {
		t.Errorf("commissioner should be the first member, got %+v", l.Members)
	}
	if len(l.Teams) != 1 || l.Teams[0].ID != "jamie-lee" || l.Teams[0].Name != "Jamie Lee's Team" {
		t.Errorf("unexpected commissioner team %+v", l.Teams)
	}
	if l.DraftSettings.Rounds != DefaultRounds {
		t.Errorf("expected default rounds, got %d", l.DraftSettings.Rounds)
	}
	if !l.CreatedAt.Equal(testNow) {
		t.Errorf("createdAt = %v", l.CreatedAt)
	}
}

func TestNewLeagueValidation(t *testing.T) {
	tests := []struct {
		name   string
		params NewLeagueParams
		want   error
	}{
		{"blank name", NewLeagueParams{Name: "  ", Commissioner: "a"}, ErrInvalidName},
		{"no commissioner", NewLeagueParams{Name: "x"}, ErrNotMember},
		{"bad format", NewLeagueParams{Name: "x", Commissioner: "a", Format: "dynasty"}, ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLeague(tt.params, nil, testNow, seeded(1)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestJoinLeague(t *testing.T) {
	l := leagueWith("Morgan")
	l.Size = 2

	if _, err := JoinLeague(l, " morgan "); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}

	joined, err := JoinLeague(l, "Priya")
	if err != nil {
		t.Fatalf("JoinLeague: %v", err)
	}
	if len(joined.Members) != 2 || len(l.Members) != 1 {
		t.Fatalf("expected 2 members without touching the input, got %d/%d", len(joined.Members), len(l.Members))
	}

	full := Reconcile(joined, seeded(1))
	if len(full.Teams) != 2 || len(full.DraftOrder) != 2 || len(full.Matchups) != 1 {
		t.Errorf("full league should be finalized: teams=%d order=%v matchups=%d", len(full.Teams), full.DraftOrder, len(full.Matchups))
	}

	if _, err := JoinLeague(full, "Sam"); !errors.Is(err, ErrLeagueFull) {
		t.Errorf("expected ErrLeagueFull, got %v", err)
	}
}

func TestJoinLeagueAfterDraftStart(t *testing.T) {
	l := leagueWith("A", "B")
	l.Size = 4

	started, err := StartDraft(l, "A", 1, models.Lineup{"qb": 1}, testNow, seeded(2))
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}

	got, err := JoinLeague(started, "C")
	if !errors.Is(err, ErrDraftAlreadyStarted) {
		t.Fatalf("expected ErrDraftAlreadyStarted, got %v", err)
	}
	if len(got.Members) != 2 || len(got.DraftOrder) != 2 {
		t.Errorf("rejected join should leave the league unchanged: members=%d order=%v", len(got.Members), got.DraftOrder)
	}
	if TotalPicks(got) != 2 {
		t.Errorf("expected 2 picks for 2 teams, got %d", TotalPicks(got))
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]models.Format{
		"":         models.FormatPPR,
		"PPR":      models.FormatPPR,
		"Half-PPR": models.FormatHalfPPR,
		"standard": models.FormatStandard,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = (%q, %v), want %q", in, got, err, want)
		}
	}
}
