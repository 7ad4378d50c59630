package queries

import (
	"context"
	"strings"

	"hivemind/contexts/gameplay/match-service/domain/board"
	"hivemind/contexts/gameplay/match-service/domain/entities"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	"hivemind/contexts/gameplay/match-service/ports"
)

// GameQueries serves the read side: game views, listings, move history.
type GameQueries struct {
	Games   ports.GameRepository
	Ballots ports.BallotRepository
}

// GameView augments the stored game with derived read-model fields.
type GameView struct {
	Game       entities.Game
	Score      entities.Scoreboard
	SideToMove board.Color
	LegalMoves []board.Position
}

func (q GameQueries) GetGame(ctx context.Context, gameID string) (GameView, error) {
	if strings.TrimSpace(gameID) == "" {
		return GameView{}, domainerrors.ErrInvalidInput
	}
	game, err := q.Games.GetGame(ctx, gameID)
	if err != nil {
		return GameView{}, err
	}
	view := GameView{
		Game:       game,
		Score:      game.Score(),
		SideToMove: game.SideToMove(),
	}
	if !game.Finished() {
		view.LegalMoves = board.LegalMoves(game.Board, game.SideToMove())
	}
	return view, nil
}

// ListGames pages matches newest-first. An empty status means all games.
func (q GameQueries) ListGames(ctx context.Context, status string, limit int, cursor string) (ports.GamePage, error) {
	filter := ports.GameListFilter{
		Cursor: strings.TrimSpace(cursor),
		Limit:  limit,
	}
	switch entities.GameStatus(strings.ToLower(strings.TrimSpace(status))) {
	case "":
	case entities.GameStatusActive:
		filter.Status = entities.GameStatusActive
	case entities.GameStatusFinished:
		filter.Status = entities.GameStatusFinished
	default:
		return ports.GamePage{}, domainerrors.ErrInvalidInput
	}
	return q.Games.ListGames(ctx, filter)
}

func (q GameQueries) ListMoves(ctx context.Context, gameID string) ([]entities.MoveRecord, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if _, err := q.Games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return q.Games.ListMoves(ctx, gameID)
}
