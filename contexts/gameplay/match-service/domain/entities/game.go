package entities

import (
	"time"

	"hivemind/contexts/gameplay/match-service/domain/board"
)

type GameStatus string

const (
	GameStatusActive   GameStatus = "active"
	GameStatusFinished GameStatus = "finished"
)

// Game is the authoritative match record. Board and CurrentTurn advance only
// through the turn-commit transaction; Status/Winner flip exactly once.
type Game struct {
	GameID      string
	Status      GameStatus
	AISide      board.Color
	CurrentTurn int
	Board       board.Board
	Winner      board.Result
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinishedAt  *time.Time
}

// SideToMove is the color on play for the game's current turn.
func (g Game) SideToMove() board.Color {
	return board.SideToMove(g.CurrentTurn)
}

func (g Game) Finished() bool {
	return g.Status == GameStatusFinished
}

type Scoreboard struct {
	Black int
	White int
	Empty int
}

func (g Game) Score() Scoreboard {
	return Scoreboard{
		Black: g.Board.Count(board.ColorBlack),
		White: g.Board.Count(board.ColorWhite),
		Empty: g.Board.CountEmpty(),
	}
}
