package commands

import (
	"context"
	"errors"
	"strings"

	application "hivemind/contexts/gameplay/match-service/application"
	"hivemind/contexts/gameplay/match-service/domain/board"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	"hivemind/contexts/gameplay/match-service/ports"
)

// FinishCheckResult reports the terminal evaluation of a game.
type FinishCheckResult struct {
	Finished        bool
	AlreadyFinished bool
	Winner          board.Result
}

// CheckAndFinish evaluates the terminal condition and transitions the game to
// finished exactly once. Finished games and lost status races are no-ops, so
// at-least-once external triggers are safe.
func (uc GameUseCase) CheckAndFinish(ctx context.Context, gameID string) (FinishCheckResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	if strings.TrimSpace(gameID) == "" {
		return FinishCheckResult{}, domainerrors.ErrInvalidInput
	}
	game, err := uc.Games.GetGame(ctx, gameID)
	if err != nil {
		return FinishCheckResult{}, err
	}
	if game.Finished() {
		return FinishCheckResult{Finished: true, AlreadyFinished: true, Winner: game.Winner}, nil
	}
	if !board.ShouldEnd(game.Board, game.SideToMove()) {
		return FinishCheckResult{}, nil
	}

	winner := board.Outcome(game.Board, game.AISide)
	now := uc.now()
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return FinishCheckResult{}, err
	}
	score := game.Score()
	outboxMsg, err := newGameplayOutbox(eventID, eventGameFinished, game.GameID, now, map[string]any{
		"game_id": game.GameID,
		"winner":  string(winner),
		"black":   score.Black,
		"white":   score.White,
	})
	if err != nil {
		return FinishCheckResult{}, err
	}

	err = uc.Games.FinishGame(ctx, game.GameID, string(winner), now, []ports.OutboxMessage{outboxMsg})
	if errors.Is(err, domainerrors.ErrConflict) {
		// Another trigger finished the game first; report its verdict.
		finished, loadErr := uc.Games.GetGame(ctx, game.GameID)
		if loadErr != nil {
			return FinishCheckResult{}, loadErr
		}
		return FinishCheckResult{Finished: true, AlreadyFinished: true, Winner: finished.Winner}, nil
	}
	if err != nil {
		return FinishCheckResult{}, err
	}

	logger.Info("game finished",
		"event", "gameplay_game_finished",
		"module", "gameplay/match-service",
		"layer", "application",
		"game_id", game.GameID,
		"winner", string(winner),
		"black", score.Black,
		"white", score.White,
	)
	return FinishCheckResult{Finished: true, Winner: winner}, nil
}
