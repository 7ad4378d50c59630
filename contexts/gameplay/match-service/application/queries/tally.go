package queries

import (
	"context"
	"strings"

	"hivemind/contexts/gameplay/match-service/domain/entities"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
)

// TurnTally is the live scoreboard of one turn's candidates.
type TurnTally struct {
	GameID       string
	Turn         int
	Candidates   []entities.Candidate
	TotalBallots int
	UserBallot   *entities.Ballot
}

// TurnTally lists a turn's candidates in creation order with their tallies,
// plus the requesting user's current ballot when userID is given.
func (q GameQueries) TurnTally(ctx context.Context, gameID string, turn int, userID string) (TurnTally, error) {
	if strings.TrimSpace(gameID) == "" || turn < 0 {
		return TurnTally{}, domainerrors.ErrInvalidInput
	}
	if _, err := q.Games.GetGame(ctx, gameID); err != nil {
		return TurnTally{}, err
	}

	candidates, err := q.Ballots.ListCandidates(ctx, gameID, turn)
	if err != nil {
		return TurnTally{}, err
	}
	tally := TurnTally{
		GameID:     gameID,
		Turn:       turn,
		Candidates: candidates,
	}
	for _, candidate := range candidates {
		tally.TotalBallots += candidate.VoteCount
	}

	if strings.TrimSpace(userID) != "" {
		ballot, found, err := q.Ballots.GetBallot(ctx, gameID, turn, strings.TrimSpace(userID))
		if err != nil {
			return TurnTally{}, err
		}
		if found {
			tally.UserBallot = &ballot
		}
	}
	return tally, nil
}
