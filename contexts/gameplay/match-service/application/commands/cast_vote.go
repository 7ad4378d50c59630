package commands

import (
	"context"
	"strings"

	application "hivemind/contexts/gameplay/match-service/application"
	"hivemind/contexts/gameplay/match-service/domain/entities"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	"hivemind/contexts/gameplay/match-service/ports"
)

// CastVoteCommand records or retargets a user's ballot for the current turn.
type CastVoteCommand struct {
	GameID      string
	UserID      string
	CandidateID string
}

// CastVoteResult reports the final ballot and whether it replaced an earlier
// one for the same turn.
type CastVoteResult struct {
	Ballot  entities.Ballot
	Changed bool
}

// CastVote enforces the one-ballot-per-(game, turn, user) rule. Creation and
// retargeting both run inside the repository transaction so candidate tallies
// move with the ballot as a single unit.
func (uc BallotUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	userID := strings.TrimSpace(cmd.UserID)
	if strings.TrimSpace(cmd.GameID) == "" || userID == "" || strings.TrimSpace(cmd.CandidateID) == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidInput
	}

	game, err := uc.Games.GetGame(ctx, cmd.GameID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if game.Finished() {
		return CastVoteResult{}, domainerrors.ErrGameFinished
	}

	candidate, err := uc.Ballots.GetCandidate(ctx, cmd.CandidateID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if candidate.GameID != game.GameID || candidate.Turn != game.CurrentTurn {
		return CastVoteResult{}, domainerrors.ErrCandidateMismatch
	}
	if !candidate.AcceptsBallots() {
		return CastVoteResult{}, domainerrors.ErrCandidateNotVoting
	}

	existing, found, err := uc.Ballots.GetBallot(ctx, game.GameID, game.CurrentTurn, userID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if found && existing.CandidateID == candidate.CandidateID {
		// Same target; nothing to move.
		return CastVoteResult{Ballot: existing}, nil
	}

	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := uc.now()
	ballot := entities.Ballot{
		BallotID:    ballotID,
		GameID:      game.GameID,
		Turn:        game.CurrentTurn,
		UserID:      userID,
		CandidateID: candidate.CandidateID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	outboxMsg, err := newGameplayOutbox(eventID, eventBallotCast, game.GameID, now, map[string]any{
		"game_id":      game.GameID,
		"turn":         game.CurrentTurn,
		"candidate_id": candidate.CandidateID,
		"user_id":      userID,
		"changed":      found,
	})
	if err != nil {
		return CastVoteResult{}, err
	}

	final, err := uc.Ballots.Cast(ctx, ballot, []ports.OutboxMessage{outboxMsg})
	if err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("ballot cast",
		"event", "gameplay_ballot_cast",
		"module", "gameplay/match-service",
		"layer", "application",
		"game_id", game.GameID,
		"turn", game.CurrentTurn,
		"candidate_id", candidate.CandidateID,
		"user_id", userID,
		"changed", found,
	)
	return CastVoteResult{Ballot: final, Changed: found}, nil
}
