package commands

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "hivemind/contexts/gameplay/match-service/application"
	"hivemind/contexts/gameplay/match-service/domain/board"
	"hivemind/contexts/gameplay/match-service/domain/entities"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	"hivemind/contexts/gameplay/match-service/ports"
)

// CloseTurnCommand resolves one (game, turn): close voting, adopt the winner,
// advance the board, then run the finish check.
type CloseTurnCommand struct {
	GameID string
	Turn   int
}

// CloseTurnResult describes what the resolution did. AlreadyResolved marks
// duplicate or racing triggers that found the turn committed.
type CloseTurnResult struct {
	Game            entities.Game
	AdoptedID       string
	Position        board.Position
	ClosedCount     int
	Passes          int
	AlreadyResolved bool
	Finish          FinishCheckResult
}

// TurnUseCase is the turn coordinator. All of its writes go through fenced
// repository transactions, so concurrent invocations resolve a turn at most
// once.
type TurnUseCase struct {
	Games            ports.GameRepository
	Ballots          ports.BallotRepository
	Clock            ports.Clock
	IDGen            ports.IDGenerator
	AutoMoveFallback bool
	Lifecycle        GameUseCase
	Logger           *slog.Logger
}

func (uc TurnUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// ResolveTurn closes the turn's candidates, selects the winning move (most
// ballots; ties go to the earliest-created candidate), applies it, and
// finishes the game when the new position is terminal. Re-invocation after a
// successful resolution is a no-op.
func (uc TurnUseCase) ResolveTurn(ctx context.Context, cmd CloseTurnCommand) (CloseTurnResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	if strings.TrimSpace(cmd.GameID) == "" || cmd.Turn < 0 {
		return CloseTurnResult{}, domainerrors.ErrInvalidInput
	}

	game, err := uc.Games.GetGame(ctx, cmd.GameID)
	if err != nil {
		return CloseTurnResult{}, err
	}
	if game.Finished() || cmd.Turn < game.CurrentTurn {
		// A proposal can slip in between closure and commit and stay in
		// voting for a turn that is already resolved. Close such stragglers
		// here, otherwise the deadline sweep rediscovers the turn forever.
		closed, err := uc.Ballots.CloseTurn(ctx, game.GameID, cmd.Turn, uc.now())
		if err != nil {
			return CloseTurnResult{}, err
		}
		if closed > 0 {
			logger.Info("late candidates closed for resolved turn",
				"event", "gameplay_turn_late_candidates_closed",
				"module", "gameplay/match-service",
				"layer", "application",
				"game_id", game.GameID,
				"turn", cmd.Turn,
				"closed_count", closed,
			)
		}
		return CloseTurnResult{Game: game, ClosedCount: closed, AlreadyResolved: true}, nil
	}
	if cmd.Turn > game.CurrentTurn {
		return CloseTurnResult{}, domainerrors.ErrTurnMismatch
	}

	now := uc.now()
	closedCount, err := uc.Ballots.CloseTurn(ctx, game.GameID, cmd.Turn, now)
	if err != nil {
		return CloseTurnResult{}, err
	}

	candidates, err := uc.Ballots.ListCandidates(ctx, game.GameID, cmd.Turn)
	if err != nil {
		return CloseTurnResult{}, err
	}
	eligible := make([]entities.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Status == entities.CandidateStatusClosed {
			eligible = append(eligible, candidate)
		}
	}

	side := board.SideToMove(cmd.Turn)
	if len(eligible) == 0 {
		fallback, fallbackErr := uc.fallbackCandidate(ctx, game, side, now, logger)
		if fallbackErr != nil {
			return CloseTurnResult{}, fallbackErr
		}
		if fallback == nil {
			// Side to move has no legal move; pass and continue below.
			return uc.passAndFinish(ctx, game, cmd.Turn, game.Board, closedCount, now, logger)
		}
		eligible = append(eligible, *fallback)
	}

	winner := selectWinner(eligible)
	next, flipped, err := board.Apply(game.Board, side, winner.Position)
	if err != nil {
		// Candidates are legality-checked on proposal; a failure here means
		// the stored board and candidate disagree.
		logger.Error("adopted candidate failed to apply",
			"event", "gameplay_turn_apply_failed",
			"module", "gameplay/match-service",
			"layer", "application",
			"game_id", game.GameID,
			"turn", cmd.Turn,
			"candidate_id", winner.CandidateID,
			"error", err.Error(),
		)
		return CloseTurnResult{}, err
	}

	moveID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CloseTurnResult{}, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CloseTurnResult{}, err
	}
	outboxMsg, err := newGameplayOutbox(eventID, eventTurnAdopted, game.GameID, now, map[string]any{
		"game_id":      game.GameID,
		"turn":         cmd.Turn,
		"candidate_id": winner.CandidateID,
		"row":          winner.Position.Row,
		"col":          winner.Position.Col,
		"votes":        winner.VoteCount,
		"played_by":    winner.ProposedBy,
	})
	if err != nil {
		return CloseTurnResult{}, err
	}

	commit := ports.TurnCommit{
		GameID:      game.GameID,
		Turn:        cmd.Turn,
		CandidateID: winner.CandidateID,
		NextBoard:   next.String(),
		Move: entities.MoveRecord{
			MoveID:      moveID,
			GameID:      game.GameID,
			Turn:        cmd.Turn,
			Position:    winner.Position,
			Color:       side,
			PlayedBy:    winner.ProposedBy,
			CandidateID: winner.CandidateID,
			Flipped:     len(flipped),
			CreatedAt:   now,
		},
		Outbox:      []ports.OutboxMessage{outboxMsg},
		CommittedAt: now,
	}
	if err := uc.Games.CommitTurn(ctx, commit); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			resolved, loadErr := uc.Games.GetGame(ctx, game.GameID)
			if loadErr != nil {
				return CloseTurnResult{}, loadErr
			}
			return CloseTurnResult{Game: resolved, ClosedCount: closedCount, AlreadyResolved: true}, nil
		}
		return CloseTurnResult{}, err
	}

	logger.Info("turn adopted",
		"event", "gameplay_turn_adopted",
		"module", "gameplay/match-service",
		"layer", "application",
		"game_id", game.GameID,
		"turn", cmd.Turn,
		"candidate_id", winner.CandidateID,
		"votes", winner.VoteCount,
		"row", winner.Position.Row,
		"col", winner.Position.Col,
	)

	result, err := uc.passAndFinish(ctx, game, cmd.Turn+1, next, closedCount, now, logger)
	if err != nil {
		return CloseTurnResult{}, err
	}
	result.AdoptedID = winner.CandidateID
	result.Position = winner.Position
	result.AlreadyResolved = false
	return result, nil
}

// fallbackCandidate implements the no-candidate policy: the automaton plays
// the first legal move in row-major order. Returns nil when the side to move
// has no legal move at all, or ErrTurnStalled when the fallback is disabled.
func (uc TurnUseCase) fallbackCandidate(
	ctx context.Context,
	game entities.Game,
	side board.Color,
	now time.Time,
	logger *slog.Logger,
) (*entities.Candidate, error) {
	legal := board.LegalMoves(game.Board, side)
	if len(legal) == 0 {
		return nil, nil
	}
	if !uc.AutoMoveFallback {
		logger.Warn("turn closed with no candidates",
			"event", "gameplay_turn_stalled",
			"module", "gameplay/match-service",
			"layer", "application",
			"game_id", game.GameID,
			"turn", game.CurrentTurn,
		)
		return nil, domainerrors.ErrTurnStalled
	}

	pos := legal[0]
	preview, _, err := board.Apply(game.Board, side, pos)
	if err != nil {
		return nil, err
	}
	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return nil, err
	}
	candidate := entities.Candidate{
		CandidateID:    candidateID,
		GameID:         game.GameID,
		Turn:           game.CurrentTurn,
		Position:       pos,
		PreviewBoard:   preview,
		ProposedBy:     entities.AutoProposer,
		Status:         entities.CandidateStatusClosed,
		VotingDeadline: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return nil, err
	}
	outboxMsg, err := newGameplayOutbox(eventID, eventCandidateProposed, game.GameID, now, map[string]any{
		"game_id":      game.GameID,
		"turn":         game.CurrentTurn,
		"candidate_id": candidateID,
		"row":          pos.Row,
		"col":          pos.Col,
		"proposed_by":  entities.AutoProposer,
	})
	if err != nil {
		return nil, err
	}
	if err := uc.Ballots.CreateCandidate(ctx, candidate, []ports.OutboxMessage{outboxMsg}); err != nil {
		return nil, err
	}
	logger.Info("fallback candidate auto-played",
		"event", "gameplay_turn_fallback",
		"module", "gameplay/match-service",
		"layer", "application",
		"game_id", game.GameID,
		"turn", game.CurrentTurn,
		"row", pos.Row,
		"col", pos.Col,
	)
	return &candidate, nil
}

// passAndFinish advances past turns whose side has no legal move, then runs
// the finish check and reloads the final game state.
func (uc TurnUseCase) passAndFinish(
	ctx context.Context,
	game entities.Game,
	turn int,
	current board.Board,
	closedCount int,
	now time.Time,
	logger *slog.Logger,
) (CloseTurnResult, error) {
	passes := 0
	for {
		if board.ShouldEnd(current, board.SideToMove(turn)) {
			break
		}
		if len(board.LegalMoves(current, board.SideToMove(turn))) > 0 {
			break
		}
		err := uc.Games.AdvanceWithoutMove(ctx, game.GameID, turn, current.String(), now)
		if errors.Is(err, domainerrors.ErrConflict) {
			break
		}
		if err != nil {
			return CloseTurnResult{}, err
		}
		logger.Info("turn passed",
			"event", "gameplay_turn_passed",
			"module", "gameplay/match-service",
			"layer", "application",
			"game_id", game.GameID,
			"turn", turn,
			"side", string(board.SideToMove(turn)),
		)
		turn++
		passes++
	}

	finish, err := uc.Lifecycle.CheckAndFinish(ctx, game.GameID)
	if err != nil {
		return CloseTurnResult{}, err
	}
	final, err := uc.Games.GetGame(ctx, game.GameID)
	if err != nil {
		return CloseTurnResult{}, err
	}
	return CloseTurnResult{
		Game:        final,
		ClosedCount: closedCount,
		Passes:      passes,
		Finish:      finish,
	}, nil
}

// selectWinner orders candidates by ballots, then creation time, then id, so
// the adopted move is deterministic for any tally.
func selectWinner(candidates []entities.Candidate) entities.Candidate {
	sorted := append([]entities.Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VoteCount != sorted[j].VoteCount {
			return sorted[i].VoteCount > sorted[j].VoteCount
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].CandidateID < sorted[j].CandidateID
	})
	return sorted[0]
}
