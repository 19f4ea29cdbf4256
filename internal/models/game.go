package models

import (
	"github.com/rohan/courtside/internal/schedule"
	"github.com/rohan/courtside/internal/teamgen"
)

// Game statuses.
const (
	GameStatusActive    = "active"
	GameStatusCompleted = "completed"
)

// Game is a persisted game created from an accepted team shuffle.
type Game struct {
	GameID    int64  `json:"game_id"`
	RoomID    int64  `json:"room_id"`
	GameType  string `json:"game_type"`
	Status    string `json:"status"`
	CreatedBy int64  `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

// GameDetail bundles a game with its persisted teams and playable matches.
type GameDetail struct {
	Game    Game           `json:"game"`
	Teams   []teamgen.Team `json:"teams"`
	Matches []MatchRecord  `json:"matches"`
}

// MatchRecord is a scheduled match row. Score fields are zero until the
// match is completed.
type MatchRecord struct {
	ID          int64  `json:"id"`
	GameID      int64  `json:"game_id"`
	RoundNumber int    `json:"round_number"`
	MatchNumber int    `json:"match_number"`
	TeamA       string `json:"team_a"`
	TeamB       string `json:"team_b,omitempty"`
	Bye         bool   `json:"bye"`
	ScoreA      int    `json:"score_a"`
	ScoreB      int    `json:"score_b"`
	Winner      string `json:"winner,omitempty"`
	CompletedAt int64  `json:"completed_at,omitempty"`
}

// Result converts a completed match record into a standings input.
func (m MatchRecord) Result() schedule.Result {
	return schedule.Result{
		TeamA:       m.TeamA,
		TeamB:       m.TeamB,
		ScoreA:      m.ScoreA,
		ScoreB:      m.ScoreB,
		RoundNumber: m.RoundNumber,
		MatchNumber: m.MatchNumber,
		Winner:      m.Winner,
	}
}
