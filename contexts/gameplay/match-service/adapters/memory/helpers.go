package memory

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"hivemind/contexts/gameplay/match-service/domain/board"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
)

// cursor mirrors the postgres adapter's token shape so clients can treat
// both backends interchangeably.
type cursor struct {
	CreatedAt time.Time `json:"created_at"`
	GameID    string    `json:"game_id"`
}

func encodeCursor(createdAt time.Time, gameID string) string {
	raw, _ := json.Marshal(cursor{CreatedAt: createdAt.UTC(), GameID: gameID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(token string) (cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return cursor{}, domainerrors.ErrInvalidCursor
	}
	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.GameID == "" {
		return cursor{}, domainerrors.ErrInvalidCursor
	}
	return c, nil
}

func parseBoard(text string) (board.Board, error) {
	return board.Parse(text)
}

func resultFromString(value string) board.Result {
	switch board.Result(strings.TrimSpace(value)) {
	case board.ResultAI:
		return board.ResultAI
	case board.ResultCollective:
		return board.ResultCollective
	case board.ResultDraw:
		return board.ResultDraw
	default:
		return ""
	}
}
