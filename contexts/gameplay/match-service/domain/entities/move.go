package entities

import (
	"time"

	"hivemind/contexts/gameplay/match-service/domain/board"
)

// MoveRecord is the append-only history of what was actually played each
// turn. Rows are written inside the turn-commit transaction and never
// mutated afterwards; they exist for audit and replay.
type MoveRecord struct {
	MoveID      string
	GameID      string
	Turn        int
	Position    board.Position
	Color       board.Color
	PlayedBy    string
	CandidateID string
	Flipped     int
	CreatedAt   time.Time
}
