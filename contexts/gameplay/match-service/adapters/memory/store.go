package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"hivemind/contexts/gameplay/match-service/domain/entities"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	"hivemind/contexts/gameplay/match-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory implementation of every match-service port. One
// mutex stands in for the database's transaction isolation: each port method
// is a single critical section, so the tally invariant holds at every
// release point exactly as it does at every Postgres commit.
type Store struct {
	mu sync.Mutex

	games      map[string]entities.Game
	candidates map[string]entities.Candidate
	ballots    map[string]entities.Ballot
	moves      []entities.MoveRecord
	outbox     map[string]outboxRecord

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		games:      make(map[string]entities.Game),
		candidates: make(map[string]entities.Candidate),
		ballots:    make(map[string]entities.Ballot),
		outbox:     make(map[string]outboxRecord),
	}
}

// SetNow pins the store clock for deterministic deadline tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fixed := now.UTC()
	s.now = func() time.Time { return fixed }
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func ballotKey(gameID string, turn int, userID string) string {
	return gameID + "|" + strconv.Itoa(turn) + "|" + userID
}

func (s *Store) CreateGame(_ context.Context, game entities.Game, outbox []ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[game.GameID]; exists {
		return domainerrors.ErrConflict
	}
	s.games[game.GameID] = game
	s.stageOutbox(outbox)
	return nil
}

func (s *Store) GetGame(_ context.Context, gameID string) (entities.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, found := s.games[strings.TrimSpace(gameID)]
	if !found {
		return entities.Game{}, domainerrors.ErrGameNotFound
	}
	return game, nil
}

func (s *Store) ListGames(_ context.Context, filter ports.GameListFilter) (ports.GamePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	games := make([]entities.Game, 0, len(s.games))
	for _, game := range s.games {
		if filter.Status != "" && game.Status != filter.Status {
			continue
		}
		games = append(games, game)
	}
	sort.Slice(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.After(games[j].CreatedAt)
		}
		return games[i].GameID > games[j].GameID
	})

	start := 0
	if filter.Cursor != "" {
		cursor, err := decodeCursor(filter.Cursor)
		if err != nil {
			return ports.GamePage{}, err
		}
		start = len(games)
		for i, game := range games {
			if game.CreatedAt.Before(cursor.CreatedAt) ||
				(game.CreatedAt.Equal(cursor.CreatedAt) && game.GameID < cursor.GameID) {
				start = i
				break
			}
		}
	}

	page := ports.GamePage{}
	end := start + limit
	if end > len(games) {
		end = len(games)
	}
	page.Games = append(page.Games, games[start:end]...)
	if end < len(games) && len(page.Games) > 0 {
		last := page.Games[len(page.Games)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.GameID)
	}
	return page, nil
}

func (s *Store) CommitTurn(_ context.Context, commit ports.TurnCommit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, found := s.candidates[commit.CandidateID]
	if !found || candidate.GameID != commit.GameID || candidate.Turn != commit.Turn ||
		candidate.Status == entities.CandidateStatusAdopted {
		return domainerrors.ErrConflict
	}
	game, found := s.games[commit.GameID]
	if !found || game.CurrentTurn != commit.Turn || game.Status != entities.GameStatusActive {
		return domainerrors.ErrConflict
	}
	for _, move := range s.moves {
		if move.GameID == commit.GameID && move.Turn == commit.Turn {
			return domainerrors.ErrConflict
		}
	}
	next, err := parseBoard(commit.NextBoard)
	if err != nil {
		return err
	}

	candidate.Status = entities.CandidateStatusAdopted
	candidate.UpdatedAt = commit.CommittedAt.UTC()
	s.candidates[candidate.CandidateID] = candidate

	game.Board = next
	game.CurrentTurn = commit.Turn + 1
	game.UpdatedAt = commit.CommittedAt.UTC()
	s.games[game.GameID] = game

	s.moves = append(s.moves, commit.Move)
	s.stageOutbox(commit.Outbox)
	return nil
}

func (s *Store) AdvanceWithoutMove(_ context.Context, gameID string, fromTurn int, boardText string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, found := s.games[strings.TrimSpace(gameID)]
	if !found || game.CurrentTurn != fromTurn || game.Status != entities.GameStatusActive {
		return domainerrors.ErrConflict
	}
	next, err := parseBoard(boardText)
	if err != nil {
		return err
	}
	game.Board = next
	game.CurrentTurn = fromTurn + 1
	game.UpdatedAt = updatedAt.UTC()
	s.games[game.GameID] = game
	return nil
}

func (s *Store) FinishGame(_ context.Context, gameID string, winner string, finishedAt time.Time, outbox []ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, found := s.games[strings.TrimSpace(gameID)]
	if !found || game.Status != entities.GameStatusActive {
		return domainerrors.ErrConflict
	}
	ts := finishedAt.UTC()
	game.Status = entities.GameStatusFinished
	game.Winner = resultFromString(winner)
	game.FinishedAt = &ts
	game.UpdatedAt = ts
	s.games[game.GameID] = game
	s.stageOutbox(outbox)
	return nil
}

func (s *Store) ListMoves(_ context.Context, gameID string) ([]entities.MoveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []entities.MoveRecord
	for _, move := range s.moves {
		if move.GameID == strings.TrimSpace(gameID) {
			items = append(items, move)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Turn < items[j].Turn })
	return items, nil
}

func (s *Store) CreateCandidate(_ context.Context, candidate entities.Candidate, outbox []ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.candidates {
		if existing.GameID == candidate.GameID && existing.Turn == candidate.Turn &&
			existing.Position == candidate.Position {
			return domainerrors.ErrDuplicateCandidate
		}
	}
	s.candidates[candidate.CandidateID] = candidate
	s.stageOutbox(outbox)
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, found := s.candidates[strings.TrimSpace(candidateID)]
	if !found {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListCandidates(_ context.Context, gameID string, turn int) ([]entities.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []entities.Candidate
	for _, candidate := range s.candidates {
		if candidate.GameID == strings.TrimSpace(gameID) && candidate.Turn == turn {
			items = append(items, candidate)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].CandidateID < items[j].CandidateID
	})
	return items, nil
}

func (s *Store) GetBallot(_ context.Context, gameID string, turn int, userID string) (entities.Ballot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ballot, found := s.ballots[ballotKey(strings.TrimSpace(gameID), turn, strings.TrimSpace(userID))]
	return ballot, found, nil
}

func (s *Store) Cast(_ context.Context, ballot entities.Ballot, outbox []ports.OutboxMessage) (entities.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, found := s.candidates[ballot.CandidateID]
	if !found {
		return entities.Ballot{}, domainerrors.ErrCandidateNotFound
	}
	if target.Status != entities.CandidateStatusVoting {
		return entities.Ballot{}, domainerrors.ErrCandidateNotVoting
	}
	if target.GameID != ballot.GameID || target.Turn != ballot.Turn {
		return entities.Ballot{}, domainerrors.ErrCandidateMismatch
	}

	key := ballotKey(ballot.GameID, ballot.Turn, ballot.UserID)
	if existing, found := s.ballots[key]; found {
		if existing.CandidateID == target.CandidateID {
			return existing, nil
		}
		previous, ok := s.candidates[existing.CandidateID]
		if !ok || previous.VoteCount == 0 {
			return entities.Ballot{}, domainerrors.ErrConflict
		}
		previous.VoteCount--
		previous.UpdatedAt = ballot.UpdatedAt.UTC()
		s.candidates[previous.CandidateID] = previous

		existing.CandidateID = target.CandidateID
		existing.UpdatedAt = ballot.UpdatedAt.UTC()
		s.ballots[key] = existing
		ballot = existing
	} else {
		s.ballots[key] = ballot
	}

	target.VoteCount++
	target.UpdatedAt = ballot.UpdatedAt.UTC()
	s.candidates[target.CandidateID] = target
	s.stageOutbox(outbox)
	return ballot, nil
}

func (s *Store) CloseTurn(_ context.Context, gameID string, turn int, closedAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	closed := 0
	for id, candidate := range s.candidates {
		if candidate.GameID == strings.TrimSpace(gameID) && candidate.Turn == turn &&
			candidate.Status == entities.CandidateStatusVoting {
			candidate.Status = entities.CandidateStatusClosed
			candidate.UpdatedAt = closedAt.UTC()
			s.candidates[id] = candidate
			closed++
		}
	}
	return closed, nil
}

func (s *Store) DueTurns(_ context.Context, now time.Time, limit int) ([]ports.TurnRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	seen := make(map[ports.TurnRef]time.Time)
	for _, candidate := range s.candidates {
		if candidate.Status != entities.CandidateStatusVoting {
			continue
		}
		if candidate.VotingDeadline.After(now.UTC()) {
			continue
		}
		ref := ports.TurnRef{GameID: candidate.GameID, Turn: candidate.Turn}
		if due, ok := seen[ref]; !ok || candidate.VotingDeadline.Before(due) {
			seen[ref] = candidate.VotingDeadline
		}
	}
	refs := make([]ports.TurnRef, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if !seen[refs[i]].Equal(seen[refs[j]]) {
			return seen[refs[i]].Before(seen[refs[j]])
		}
		return refs[i].GameID < refs[j].GameID
	})
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	var items []ports.OutboxMessage
	for _, record := range s.outbox {
		if !record.published {
			items = append(items, record.message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].OutboxID < items[j].OutboxID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, found := s.outbox[strings.TrimSpace(outboxID)]
	if !found || record.published {
		return domainerrors.ErrConflict
	}
	record.published = true
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) stageOutbox(outbox []ports.OutboxMessage) {
	for _, message := range outbox {
		s.outbox[message.OutboxID] = outboxRecord{message: message}
	}
}

var _ ports.GameRepository = (*Store)(nil)
var _ ports.BallotRepository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
