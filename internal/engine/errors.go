package engine

import "errors"

// Rejections. Every operation that returns one of these also returns the
// input league unchanged.
var (
	ErrNotMember           = errors.New("not a league member")
	ErrNotTeamOwner        = errors.New("team is not controlled by this member")
	ErrNotEnoughTeams      = errors.New("at least two teams are required")
	ErrDraftAlreadyStarted = errors.New("draft already started")
	ErrDraftNotActive      = errors.New("draft has not started")
	ErrDraftComplete       = errors.New("draft is complete")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrDuplicatePlayer     = errors.New("player already drafted")
	ErrInvalidPlayer       = errors.New("player id is required")
	ErrInvalidLineup       = errors.New("lineup slot counts must not be negative")
	ErrNoAvailablePlayers  = errors.New("no available players")
	ErrAlreadyMember       = errors.New("already a member of this league")
	ErrLeagueFull          = errors.New("league is full")
	ErrInvalidName         = errors.New("league name is required")
	ErrInvalidFormat       = errors.New("unknown scoring format")
)
