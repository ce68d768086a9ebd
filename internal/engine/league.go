package engine

import (
	"strings"
	"time"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// NewLeagueParams describes a league to create
type NewLeagueParams struct {
	ID           string
	Name         string
	Commissioner string
	Format       models.Format
	Size         int
}

// ParseFormat accepts the scoring formats case-insensitively. Empty means PPR.
func ParseFormat(s string) (models.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ppr":
		return models.FormatPPR, nil
	case "half-ppr", "half", "halfppr":
		return models.FormatHalfPPR, nil
	case "standard", "std":
		return models.FormatStandard, nil
	}
	return "", ErrInvalidFormat
}

// NewLeague creates a league with the commissioner as its first member and
// team. takenCodes holds invite codes already in use.
func NewLeague(p NewLeagueParams, takenCodes map[string]bool, now time.Time, rng Rand) (models.League, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return models.League{}, ErrInvalidName
	}
	commissioner := strings.TrimSpace(p.Commissioner)
	if commissioner == "" {
		return models.League{}, ErrNotMember
	}
	format, err := ParseFormat(string(p.Format))
	if err != nil {
		return models.League{}, err
	}
	size, _ := NormalizeSize(p.Size)

	l := models.League{
		ID:           p.ID,
		Name:         name,
		Commissioner: commissioner,
		Format:       format,
		Size:         size,
		Code:         GenerateInviteCode(takenCodes, rng),
		CreatedAt:    now.UTC(),
		Members:      []models.Member{{Username: commissioner, Label: commissioner}},
		Teams: []models.Team{{
			ID:    MakeTeamID(commissioner, nil),
			Owner: commissioner,
			Name:  DefaultTeamName(commissioner),
		}},
	}
	return Reconcile(l, rng), nil
}

// JoinLeague adds a member. The new member's team is created by Reconcile.
// Membership closes once the draft has started.
func JoinLeague(l models.League, username string) (models.League, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return l, ErrNotMember
	}
	if IsMember(l, username) {
		return l, ErrAlreadyMember
	}
	if l.DraftState.Started {
		return l, ErrDraftAlreadyStarted
	}
	if IsFull(l) {
		return l, ErrLeagueFull
	}
	next := l.Clone()
	next.Members = append(next.Members, models.Member{Username: username, Label: username})
	return next, nil
}
