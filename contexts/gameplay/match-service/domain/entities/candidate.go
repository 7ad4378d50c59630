package entities

import (
	"time"

	"hivemind/contexts/gameplay/match-service/domain/board"
)

type CandidateStatus string

const (
	CandidateStatusVoting  CandidateStatus = "voting"
	CandidateStatusClosed  CandidateStatus = "closed"
	CandidateStatusAdopted CandidateStatus = "adopted"
)

// AutoProposer marks candidates authored by the automaton (opening moves and
// the no-candidate fallback) rather than by a voter.
const AutoProposer = "auto"

// Candidate is one proposed move for a (game, turn), subject to voting.
// VoteCount mirrors the number of ballot rows targeting it; the two are only
// ever written together inside one transaction.
type Candidate struct {
	CandidateID    string
	GameID         string
	Turn           int
	Position       board.Position
	PreviewBoard   board.Board
	ProposedBy     string
	VoteCount      int
	Status         CandidateStatus
	VotingDeadline time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c Candidate) AcceptsBallots() bool {
	return c.Status == CandidateStatusVoting
}

// Ballot is a user's single mutable vote within a turn; at most one row
// exists per (game, turn, user) and retargeting replaces it in place.
type Ballot struct {
	BallotID    string
	GameID      string
	Turn        int
	UserID      string
	CandidateID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
