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

// ProposeCandidateCommand nominates a move for the game's current turn.
type ProposeCandidateCommand struct {
	GameID string
	UserID string
	Row    int
	Col    int
}

// BallotUseCase owns candidate proposal and ballot casting.
type BallotUseCase struct {
	Games        ports.GameRepository
	Ballots      ports.BallotRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	VotingWindow time.Duration
	Logger       *slog.Logger
}

func (uc BallotUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc BallotUseCase) votingWindow() time.Duration {
	if uc.VotingWindow > 0 {
		return uc.VotingWindow
	}
	return 5 * time.Minute
}

// ProposeCandidate validates the move against the rules for the side to move
// and stores a voting candidate with its preview board and deadline.
func (uc BallotUseCase) ProposeCandidate(ctx context.Context, cmd ProposeCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)

	userID := strings.TrimSpace(cmd.UserID)
	if strings.TrimSpace(cmd.GameID) == "" || userID == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidInput
	}

	game, err := uc.Games.GetGame(ctx, cmd.GameID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if game.Finished() {
		return entities.Candidate{}, domainerrors.ErrGameFinished
	}

	side := game.SideToMove()
	pos := board.Position{Row: cmd.Row, Col: cmd.Col}
	preview, _, err := board.Apply(game.Board, side, pos)
	if err != nil {
		logger.Warn("candidate rejected as illegal",
			"event", "gameplay_candidate_illegal",
			"module", "gameplay/match-service",
			"layer", "application",
			"game_id", game.GameID,
			"turn", game.CurrentTurn,
			"row", cmd.Row,
			"col", cmd.Col,
			"side", string(side),
		)
		return entities.Candidate{}, domainerrors.ErrInvalidMove
	}

	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	now := uc.now()
	candidate := entities.Candidate{
		CandidateID:    candidateID,
		GameID:         game.GameID,
		Turn:           game.CurrentTurn,
		Position:       pos,
		PreviewBoard:   preview,
		ProposedBy:     userID,
		VoteCount:      0,
		Status:         entities.CandidateStatusVoting,
		VotingDeadline: now.Add(uc.votingWindow()),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	outboxMsg, err := newGameplayOutbox(eventID, eventCandidateProposed, game.GameID, now, map[string]any{
		"game_id":      game.GameID,
		"turn":         game.CurrentTurn,
		"candidate_id": candidateID,
		"row":          pos.Row,
		"col":          pos.Col,
		"proposed_by":  userID,
	})
	if err != nil {
		return entities.Candidate{}, err
	}

	if err := uc.Ballots.CreateCandidate(ctx, candidate, []ports.OutboxMessage{outboxMsg}); err != nil {
		return entities.Candidate{}, err
	}

	logger.Info("candidate proposed",
		"event", "gameplay_candidate_proposed",
		"module", "gameplay/match-service",
		"layer", "application",
		"game_id", game.GameID,
		"turn", game.CurrentTurn,
		"candidate_id", candidateID,
		"row", pos.Row,
		"col", pos.Col,
		"proposed_by", userID,
	)
	return candidate, nil
}
