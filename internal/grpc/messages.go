package grpc

import (
	"github.com/Billy-Davies-2/blt-leagues/internal/engine"
	"github.com/Billy-Davies-2/blt-leagues/internal/leagues"
	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

type GetLeagueRequest struct {
	LeagueID string `json:"leagueId"`
}

type JoinLeagueRequest struct {
	Code string `json:"code"`
}

type StartDraftRequest struct {
	LeagueID string        `json:"leagueId"`
	Rounds   int           `json:"rounds"`
	Lineup   models.Lineup `json:"lineup,omitempty"`
	Version  int64         `json:"version"`
}

type SubmitPickRequest struct {
	LeagueID string `json:"leagueId"`
	PlayerID string `json:"playerId"`
	Version  int64  `json:"version"`
}

type GetDraftBoardRequest struct {
	LeagueID string `json:"leagueId"`
	Position string `json:"position,omitempty"`
	Team     string `json:"team,omitempty"`
	Query    string `json:"query,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type GetScheduleRequest struct {
	LeagueID string `json:"leagueId"`
}

type WatchLeagueRequest struct {
	// LeagueID limits the stream to one league; empty streams every league
	LeagueID string `json:"leagueId"`
}

type LeagueResponse struct {
	League models.League `json:"league"`
}

type DraftBoardResponse struct {
	Board leagues.Board `json:"board"`
}

type ScheduleResponse struct {
	Weeks []engine.Week `json:"weeks"`
}

type LeagueEvent struct {
	Type     string                 `json:"type"`
	LeagueID string                 `json:"leagueId"`
	Version  int64                  `json:"version"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}
