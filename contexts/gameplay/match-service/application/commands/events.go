package commands

import (
	"encoding/json"
	"time"

	"hivemind/contexts/gameplay/match-service/ports"
)

const (
	eventGameCreated       = "game.created"
	eventCandidateProposed = "candidate.proposed"
	eventBallotCast        = "ballot.cast"
	eventTurnAdopted       = "turn.adopted"
	eventGameFinished      = "game.finished"
)

// newGameplayOutbox stages one envelope as an outbox row. Events are
// partitioned by game so game-scoped consumers observe turns in order.
func newGameplayOutbox(
	eventID string,
	eventType string,
	gameID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.OutboxMessage, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	envelope := ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "match-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "game_id",
		PartitionKey:     gameID,
		Data:             payload,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	return ports.OutboxMessage{
		OutboxID:     eventID,
		EventType:    eventType,
		PartitionKey: gameID,
		Payload:      body,
		CreatedAt:    occurredAt.UTC(),
	}, nil
}
