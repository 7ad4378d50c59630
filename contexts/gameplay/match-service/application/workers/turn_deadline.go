package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "hivemind/contexts/gameplay/match-service/application"
	"hivemind/contexts/gameplay/match-service/application/commands"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	"hivemind/contexts/gameplay/match-service/ports"
)

// TurnDeadlineSweeper is the clock/scheduler collaborator: it finds turns
// whose voting deadline has passed and resolves them. Resolution itself is
// idempotent, so overlapping sweeps and restarts are harmless.
type TurnDeadlineSweeper struct {
	Ballots   ports.BallotRepository
	Turns     commands.TurnUseCase
	Clock     ports.Clock
	BatchSize int
	Disabled  bool
	Logger    *slog.Logger
}

// RunOnce resolves one batch of overdue turns. Stalled and already-resolved
// turns are logged and skipped; other failures abort the cycle so the next
// sweep retries.
func (s TurnDeadlineSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	if s.Disabled {
		return nil
	}
	limit := s.BatchSize
	if limit <= 0 {
		limit = 50
	}

	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	due, err := s.Ballots.DueTurns(ctx, now, limit)
	if err != nil {
		logger.Error("gameplay due turn scan failed",
			"event", "gameplay_deadline_scan_failed",
			"module", "gameplay/match-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, ref := range due {
		result, err := s.Turns.ResolveTurn(ctx, commands.CloseTurnCommand{
			GameID: ref.GameID,
			Turn:   ref.Turn,
		})
		switch {
		case errors.Is(err, domainerrors.ErrTurnStalled):
			logger.Warn("gameplay turn stalled at deadline",
				"event", "gameplay_deadline_turn_stalled",
				"module", "gameplay/match-service",
				"layer", "worker",
				"game_id", ref.GameID,
				"turn", ref.Turn,
			)
		case errors.Is(err, domainerrors.ErrConflict):
			// A concurrent resolver owns this turn; the next sweep verifies.
		case err != nil:
			logger.Error("gameplay turn resolution failed",
				"event", "gameplay_deadline_resolve_failed",
				"module", "gameplay/match-service",
				"layer", "worker",
				"game_id", ref.GameID,
				"turn", ref.Turn,
				"error", err.Error(),
			)
			return err
		default:
			logger.Info("gameplay turn resolved at deadline",
				"event", "gameplay_deadline_turn_resolved",
				"module", "gameplay/match-service",
				"layer", "worker",
				"game_id", ref.GameID,
				"turn", ref.Turn,
				"already_resolved", result.AlreadyResolved,
				"finished", result.Finish.Finished,
			)
		}
	}
	return nil
}
