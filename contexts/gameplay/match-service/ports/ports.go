package ports

import (
	"context"
	"time"

	"hivemind/contexts/gameplay/match-service/domain/entities"
	contractsv1 "hivemind/contracts/gen/events/v1"
)

// GameListFilter defines read-side filtering/pagination for match listings.
type GameListFilter struct {
	Status entities.GameStatus
	Cursor string
	Limit  int
}

// GamePage is one newest-first page plus the cursor for the next one; an
// empty NextCursor means the listing is exhausted.
type GamePage struct {
	Games      []entities.Game
	NextCursor string
}

// TurnCommit is everything the turn-commit transaction writes as one unit:
// the adopted candidate, the advanced game row, and the move-history append.
type TurnCommit struct {
	GameID      string
	Turn        int
	CandidateID string
	NextBoard   string
	Move        entities.MoveRecord
	Outbox      []OutboxMessage
	CommittedAt time.Time
}

// GameRepository owns game persistence and the turn/finish transaction
// boundaries. Mutations are fenced on current_turn or status so duplicate
// triggers fail with ErrConflict instead of double-applying.
type GameRepository interface {
	CreateGame(ctx context.Context, game entities.Game, outbox []OutboxMessage) error
	GetGame(ctx context.Context, gameID string) (entities.Game, error)
	ListGames(ctx context.Context, filter GameListFilter) (GamePage, error)
	// CommitTurn atomically adopts the winning candidate, advances the board
	// and turn number, appends the move record, and stages outbox events.
	CommitTurn(ctx context.Context, commit TurnCommit) error
	// AdvanceWithoutMove bumps the turn number for a pass, fenced on the
	// expected turn.
	AdvanceWithoutMove(ctx context.Context, gameID string, fromTurn int, board string, updatedAt time.Time) error
	// FinishGame transitions active->finished exactly once.
	FinishGame(ctx context.Context, gameID string, winner string, finishedAt time.Time, outbox []OutboxMessage) error
	ListMoves(ctx context.Context, gameID string) ([]entities.MoveRecord, error)
}

// TurnRef identifies one (game, turn) pair due for resolution.
type TurnRef struct {
	GameID string
	Turn   int
}

// BallotRepository owns candidate/ballot persistence. Cast is the only write
// path for ballots and keeps the tally invariant inside one transaction.
type BallotRepository interface {
	CreateCandidate(ctx context.Context, candidate entities.Candidate, outbox []OutboxMessage) error
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListCandidates(ctx context.Context, gameID string, turn int) ([]entities.Candidate, error)
	GetBallot(ctx context.Context, gameID string, turn int, userID string) (entities.Ballot, bool, error)
	// Cast atomically creates the ballot row or retargets an existing one,
	// moving the tally from the old candidate to the new one. The target must
	// still be in voting status inside the transaction.
	Cast(ctx context.Context, ballot entities.Ballot, outbox []OutboxMessage) (entities.Ballot, error)
	// CloseTurn batch-transitions every voting candidate of the turn to
	// closed. Idempotent: a second call matches zero rows and reports 0.
	CloseTurn(ctx context.Context, gameID string, turn int, closedAt time.Time) (int, error)
	// DueTurns lists (game, turn) pairs that still have voting candidates
	// whose deadline has passed.
	DueTurns(ctx context.Context, now time.Time, limit int) ([]TurnRef, error)
}

// Clock allows deterministic testing of deadlines and timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts game/candidate/ballot/event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row staged inside a state-changing transaction and
// relayed to the bus by the worker.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
