package errors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrGameNotFound       = errors.New("game not found")
	ErrGameFinished       = errors.New("game is finished")
	ErrInvalidMove        = errors.New("move is not legal for the side to move")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrCandidateNotVoting = errors.New("candidate is no longer accepting votes")
	ErrCandidateMismatch  = errors.New("candidate does not belong to the current turn")
	ErrDuplicateCandidate = errors.New("candidate position already proposed for this turn")
	ErrTurnMismatch       = errors.New("turn is not the game's current turn")
	ErrTurnStalled        = errors.New("turn closed with no candidates")
	ErrInvalidCursor      = errors.New("invalid pagination cursor")
	ErrConflict           = errors.New("conflicting concurrent update")
)
