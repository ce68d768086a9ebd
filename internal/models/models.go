package models

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Format is the scoring format of a league
type Format string

const (
	FormatPPR      Format = "PPR"
	FormatHalfPPR  Format = "Half-PPR"
	FormatStandard Format = "Standard"
)

// Flex is the lineup key for the shared rb/wr/te slot
const Flex = "flex"

// Member is a league member. Username is the handle used for team ownership.
type Member struct {
	Username string `json:"username"`
	Label    string `json:"label,omitempty"`
}

// UnmarshalJSON also accepts a bare string, the shape older league records use
func (m *Member) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*m = Member{Username: name, Label: name}
		return nil
	}
	type member Member
	var v member
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Member(v)
	return nil
}

// Handle returns the member's ownership handle
func (m Member) Handle() string {
	if m.Username != "" {
		return m.Username
	}
	return m.Label
}

// Team represents a fantasy team inside a league
type Team struct {
	ID    string `json:"id"`
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name"`
}

// Player represents a draftable NFL player from the player pool
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
	Bye      int    `json:"bye,omitempty"`
	Status   string `json:"status,omitempty"`
}

// PlayerSnapshot is the copy of a player stored with a pick
type PlayerSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
}

// Snapshot returns the pick-time copy of the player
func (p Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{ID: p.ID, Name: p.Name, Position: p.Position, Team: p.Team}
}

// Pick is a single draft selection
type Pick struct {
	Pick   int            `json:"pick"`
	Round  int            `json:"round"`
	TeamID string         `json:"teamId"`
	Player PlayerSnapshot `json:"player"`
}

// Matchup is a head-to-head game in a given week
type Matchup struct {
	ID     string `json:"id"`
	Week   int    `json:"week"`
	HomeID string `json:"homeId"`
	AwayID string `json:"awayId"`
}

// Lineup maps a position key (qb, rb, wr, te, flex) to its slot count
type Lineup map[string]int

// DraftSettings are frozen when the draft starts
type DraftSettings struct {
	Rounds int    `json:"rounds"`
	Lineup Lineup `json:"lineup"`
}

// DraftState tracks the draft lifecycle
type DraftState struct {
	Started   bool       `json:"started"`
	Completed bool       `json:"completed"`
	StartedAt *time.Time `json:"startedAt"`
}

// League is the aggregate root persisted as a single document
type League struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Commissioner  string          `json:"commissioner"`
	Format        Format          `json:"format"`
	Size          int             `json:"size"`
	Code          string          `json:"code"`
	CreatedAt     time.Time       `json:"createdAt"`
	Members       []Member        `json:"members"`
	Teams         []Team          `json:"teams"`
	DraftOrder    []string        `json:"draftOrder"`
	DraftSettings DraftSettings   `json:"draftSettings"`
	DraftState    DraftState      `json:"draftState"`
	DraftPicks    []Pick          `json:"draftPicks"`
	Matchups      []Matchup       `json:"matchups"`
	AutoPick      map[string]bool `json:"autoPick,omitempty"`
	Version       int64           `json:"version"`
}

// Clone returns a deep copy so engine operations never share state with their input
func (l League) Clone() League {
	out := l
	out.Members = slices.Clone(l.Members)
	out.Teams = slices.Clone(l.Teams)
	out.DraftOrder = slices.Clone(l.DraftOrder)
	out.DraftPicks = slices.Clone(l.DraftPicks)
	out.Matchups = slices.Clone(l.Matchups)
	out.DraftSettings.Lineup = maps.Clone(l.DraftSettings.Lineup)
	out.AutoPick = maps.Clone(l.AutoPick)
	if l.DraftState.StartedAt != nil {
		t := *l.DraftState.StartedAt
		out.DraftState.StartedAt = &t
	}
	return out
}

// TeamByID returns the team with the given id
func (l *League) TeamByID(id string) (Team, bool) {
	for _, t := range l.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// Slot is one lineup position, open when Pick is nil
type Slot struct {
	Key  string `json:"key"`
	Pick *Pick  `json:"pick,omitempty"`
}

// Filled reports whether a pick is bound to the slot
func (s Slot) Filled() bool {
	return s.Pick != nil
}

// ADP is a player's average draft position across recorded drafts
type ADP struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Average  float64 `json:"adp"`
	Best     int     `json:"best"`
	Worst    int     `json:"worst"`
	Drafts   int     `json:"drafts"`
}
