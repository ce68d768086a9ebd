package players

import (
	"context"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// Draftable positions. Kickers, defenses and IDPs are not drafted.
var allowedPositions = map[string]bool{
	"QB": true,
	"RB": true,
	"WR": true,
	"TE": true,
}

// Source loads the full list of draftable players
type Source interface {
	Name() string
	Load(ctx context.Context) ([]models.Player, error)
}

// onRoster reports whether a team abbreviation belongs to an NFL roster
func onRoster(team string) bool {
	return team != "" && team != "FA" && team != "NONE"
}
