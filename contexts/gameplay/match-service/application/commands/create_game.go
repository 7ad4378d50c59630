package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "hivemind/contexts/gameplay/match-service/application"
	"hivemind/contexts/gameplay/match-service/domain/board"
	"hivemind/contexts/gameplay/match-service/domain/entities"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	"hivemind/contexts/gameplay/match-service/ports"
)

// CreateGameCommand starts a new match with the automaton on the given side.
type CreateGameCommand struct {
	AISide string
}

// GameUseCase owns game creation and the finish check.
type GameUseCase struct {
	Games  ports.GameRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc GameUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateGame persists a fresh game: canonical opening board, turn 0, active,
// no winner.
func (uc GameUseCase) CreateGame(ctx context.Context, cmd CreateGameCommand) (entities.Game, error) {
	logger := application.ResolveLogger(uc.Logger)

	aiSide := board.Color(strings.ToLower(strings.TrimSpace(cmd.AISide)))
	if !aiSide.Valid() {
		logger.Warn("game create validation failed",
			"event", "gameplay_game_create_validation_failed",
			"module", "gameplay/match-service",
			"layer", "application",
			"ai_side", cmd.AISide,
		)
		return entities.Game{}, domainerrors.ErrInvalidInput
	}

	gameID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Game{}, err
	}
	now := uc.now()
	game := entities.Game{
		GameID:      gameID,
		Status:      entities.GameStatusActive,
		AISide:      aiSide,
		CurrentTurn: 0,
		Board:       board.Initial(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Game{}, err
	}
	outboxMsg, err := newGameplayOutbox(eventID, eventGameCreated, gameID, now, map[string]any{
		"game_id": gameID,
		"ai_side": string(aiSide),
	})
	if err != nil {
		return entities.Game{}, err
	}

	if err := uc.Games.CreateGame(ctx, game, []ports.OutboxMessage{outboxMsg}); err != nil {
		return entities.Game{}, err
	}

	logger.Info("game created",
		"event", "gameplay_game_created",
		"module", "gameplay/match-service",
		"layer", "application",
		"game_id", gameID,
		"ai_side", string(aiSide),
	)
	return game, nil
}
