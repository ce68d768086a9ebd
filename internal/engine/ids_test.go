package engine

import (
	"sort"
	"strings"
	"testing"
)

func TestShufflePermutes(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	got := Shuffle(ids, seeded(42))

	if len(got) != len(ids) {
		t.Fatalf("expected %d ids, got %d", len(ids), len(got))
	}
	sorted := append([]string(nil), got...)
	sort.Strings(sorted)
	if strings.Join(sorted, ",") != "a,b,c,d,e,f" {
		t.Errorf("shuffle is not a permutation: %v", got)
	}
	if strings.Join(ids, ",") != "a,b,c,d,e,f" {
		t.Errorf("input was modified: %v", ids)
	}
}

func TestShuffleIsRoughlyUniform(t *testing.T) {
	rng := seeded(7)
	counts := make(map[string]int)
	const trials = 6000
	for i := 0; i < trials; i++ {
		counts[strings.Join(Shuffle([]string{"a", "b", "c"}, rng), "")]++
	}
	if len(counts) != 6 {
		t.Fatalf("expected all 6 permutations, got %d", len(counts))
	}
	for perm, n := range counts {
		if n < 800 || n > 1200 {
			t.Errorf("permutation %s appeared %d times, expected about 1000", perm, n)
		}
	}
}

func TestShuffleDefaultSource(t *testing.T) {
	got := Shuffle([]string{"x", "y"}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 ids, got %v", got)
	}
}

func TestMakeTeamID(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		taken map[string]bool
		want  string
	}{
		{"simple", "Morgan Patel", nil, "morgan-patel"},
		{"punctuation", "Pat O’Neal", nil, "pat-o-neal"},
		{"empty", "", nil, "team"},
		{"collision", "jess", map[string]bool{"jess": true}, "jess-1"},
		{"double collision", "jess", map[string]bool{"jess": true, "jess-1": true}, "jess-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MakeTeamID(tt.owner, tt.taken); got != tt.want {
				t.Errorf("MakeTeamID(%q) = %q, want %q", tt.owner, got, tt.want)
			}
		})
	}
}

func TestGenerateInviteCode(t *testing.T) {
	code := GenerateInviteCode(nil, seeded(3))
	if len(code) != InviteCodeLength {
		t.Fatalf("expected %d characters, got %q", InviteCodeLength, code)
	}
	for _, c := range code {
		if !strings.ContainsRune(InviteAlphabet, c) {
			t.Errorf("code %q contains %q outside the alphabet", code, c)
		}
	}

	// the same seed yields the same first code, so it must be skipped
	again := GenerateInviteCode(map[string]bool{code: true}, seeded(3))
	if again == code {
		t.Errorf("expected a code different from the taken %q", code)
	}
}

func TestNormalizeInviteCode(t *testing.T) {
	if got := NormalizeInviteCode("  slate9 "); got != "SLATE9" {
		t.Errorf("expected SLATE9, got %q", got)
	}
}

func TestNormalizeSize(t *testing.T) {
	tests := []struct {
		in       int
		want     int
		adjusted bool
	}{
		{10, 10, false},
		{0, 10, false},
		{-4, 10, false},
		{1, 2, false},
		{3, 4, true},
		{15, 16, true},
		{17, 16, false},
		{40, 16, false},
	}

	for _, tt := range tests {
		got, adjusted := NormalizeSize(tt.in)
		if got != tt.want || adjusted != tt.adjusted {
			t.Errorf("NormalizeSize(%d) = (%d, %v), want (%d, %v)", tt.in, got, adjusted, tt.want, tt.adjusted)
		}
	}
}
