package postgresadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hivemind/contexts/gameplay/match-service/domain/entities"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	"hivemind/contexts/gameplay/match-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	defaultPageSize = 20
	maxPageSize     = 100
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateGame(ctx context.Context, game entities.Game, outbox []ports.OutboxMessage) error {
	row := gameModelFromEntity(game)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		return appendOutbox(tx, outbox)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return err
		}
		return r.logError("gameplay_repo_create_game_failed", err, "game_id", row.ID)
	}
	return nil
}

func (r *Repository) GetGame(ctx context.Context, gameID string) (entities.Game, error) {
	var row gameModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(gameID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Game{}, domainerrors.ErrGameNotFound
		}
		return entities.Game{}, r.logError("gameplay_repo_get_game_failed", err, "game_id", strings.TrimSpace(gameID))
	}
	return row.toEntity()
}

// gameCursor is the opaque newest-first pagination token: the creation time
// and id of the last row on the previous page.
type gameCursor struct {
	CreatedAt time.Time `json:"created_at"`
	GameID    string    `json:"game_id"`
}

func encodeGameCursor(row gameModel) string {
	raw, _ := json.Marshal(gameCursor{CreatedAt: row.CreatedAt.UTC(), GameID: row.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeGameCursor(token string) (gameCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return gameCursor{}, domainerrors.ErrInvalidCursor
	}
	var cursor gameCursor
	if err := json.Unmarshal(raw, &cursor); err != nil || cursor.GameID == "" {
		return gameCursor{}, domainerrors.ErrInvalidCursor
	}
	return cursor, nil
}

func (r *Repository) ListGames(ctx context.Context, filter ports.GameListFilter) (ports.GamePage, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	tx := r.db.WithContext(ctx).Model(&gameModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.Cursor != "" {
		cursor, err := decodeGameCursor(filter.Cursor)
		if err != nil {
			return ports.GamePage{}, err
		}
		tx = tx.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.GameID,
		)
	}

	var rows []gameModel
	if err := tx.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return ports.GamePage{}, r.logError("gameplay_repo_list_games_failed", err,
			"status", string(filter.Status),
		)
	}

	page := ports.GamePage{}
	if len(rows) > limit {
		rows = rows[:limit]
		page.NextCursor = encodeGameCursor(rows[len(rows)-1])
	}
	page.Games = make([]entities.Game, 0, len(rows))
	for _, row := range rows {
		game, err := row.toEntity()
		if err != nil {
			return ports.GamePage{}, r.logError("gameplay_repo_list_games_decode_failed", err, "game_id", row.ID)
		}
		page.Games = append(page.Games, game)
	}
	return page, nil
}

// CommitTurn adopts the winning candidate, advances the game, and appends the
// move history row in one transaction. Both status writes are conditional, so
// a racing resolver loses with ErrConflict instead of double-committing.
func (r *Repository) CommitTurn(ctx context.Context, commit ports.TurnCommit) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		adopt := tx.Model(&candidateModel{}).
			Where("id = ?", strings.TrimSpace(commit.CandidateID)).
			Where("game_id = ?", strings.TrimSpace(commit.GameID)).
			Where("turn = ?", commit.Turn).
			Where("status <> ?", string(entities.CandidateStatusAdopted)).
			Updates(map[string]any{
				"status":     string(entities.CandidateStatusAdopted),
				"updated_at": commit.CommittedAt.UTC(),
			})
		if adopt.Error != nil {
			return adopt.Error
		}
		if adopt.RowsAffected == 0 {
			return domainerrors.ErrConflict
		}

		advance := tx.Model(&gameModel{}).
			Where("id = ?", strings.TrimSpace(commit.GameID)).
			Where("current_turn = ?", commit.Turn).
			Where("status = ?", string(entities.GameStatusActive)).
			Updates(map[string]any{
				"board":        commit.NextBoard,
				"current_turn": commit.Turn + 1,
				"updated_at":   commit.CommittedAt.UTC(),
			})
		if advance.Error != nil {
			return advance.Error
		}
		if advance.RowsAffected == 0 {
			return domainerrors.ErrConflict
		}

		moveRow := moveModelFromEntity(commit.Move)
		if err := tx.Create(&moveRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		return appendOutbox(tx, commit.Outbox)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return err
		}
		return r.logError("gameplay_repo_commit_turn_failed", err,
			"game_id", strings.TrimSpace(commit.GameID),
			"turn", commit.Turn,
			"candidate_id", strings.TrimSpace(commit.CandidateID),
		)
	}
	return nil
}

func (r *Repository) AdvanceWithoutMove(ctx context.Context, gameID string, fromTurn int, boardText string, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&gameModel{}).
		Where("id = ?", strings.TrimSpace(gameID)).
		Where("current_turn = ?", fromTurn).
		Where("status = ?", string(entities.GameStatusActive)).
		Updates(map[string]any{
			"board":        boardText,
			"current_turn": fromTurn + 1,
			"updated_at":   updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("gameplay_repo_advance_without_move_failed", result.Error,
			"game_id", strings.TrimSpace(gameID),
			"turn", fromTurn,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) FinishGame(ctx context.Context, gameID string, winner string, finishedAt time.Time, outbox []ports.OutboxMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		finish := tx.Model(&gameModel{}).
			Where("id = ?", strings.TrimSpace(gameID)).
			Where("status = ?", string(entities.GameStatusActive)).
			Updates(map[string]any{
				"status":      string(entities.GameStatusFinished),
				"winner":      strings.TrimSpace(winner),
				"finished_at": finishedAt.UTC(),
				"updated_at":  finishedAt.UTC(),
			})
		if finish.Error != nil {
			return finish.Error
		}
		if finish.RowsAffected == 0 {
			return domainerrors.ErrConflict
		}
		return appendOutbox(tx, outbox)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return err
		}
		return r.logError("gameplay_repo_finish_game_failed", err,
			"game_id", strings.TrimSpace(gameID),
			"winner", strings.TrimSpace(winner),
		)
	}
	return nil
}

func (r *Repository) ListMoves(ctx context.Context, gameID string) ([]entities.MoveRecord, error) {
	var rows []moveModel
	if err := r.db.WithContext(ctx).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Order("turn ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("gameplay_repo_list_moves_failed", err, "game_id", strings.TrimSpace(gameID))
	}
	items := make([]entities.MoveRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateCandidate(ctx context.Context, candidate entities.Candidate, outbox []ports.OutboxMessage) error {
	row := candidateModelFromEntity(candidate)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateCandidate
			}
			return err
		}
		return appendOutbox(tx, outbox)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateCandidate) {
			return err
		}
		return r.logError("gameplay_repo_create_candidate_failed", err,
			"game_id", row.GameID,
			"turn", row.Turn,
			"candidate_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("gameplay_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListCandidates(ctx context.Context, gameID string, turn int) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("turn = ?", turn).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("gameplay_repo_list_candidates_failed", err,
			"game_id", strings.TrimSpace(gameID),
			"turn", turn,
		)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		candidate, err := row.toEntity()
		if err != nil {
			return nil, r.logError("gameplay_repo_list_candidates_decode_failed", err, "candidate_id", row.ID)
		}
		items = append(items, candidate)
	}
	return items, nil
}

func (r *Repository) GetBallot(ctx context.Context, gameID string, turn int, userID string) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("turn = ?", turn).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("gameplay_repo_get_ballot_failed", err,
			"game_id", strings.TrimSpace(gameID),
			"turn", turn,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

// Cast creates or retargets the caller's ballot for the turn. The target
// candidate row is locked first so the status check, the ballot write, and
// both tally adjustments commit or roll back together.
func (r *Repository) Cast(ctx context.Context, ballot entities.Ballot, outbox []ports.OutboxMessage) (entities.Ballot, error) {
	final := ballot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target candidateModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", strings.TrimSpace(ballot.CandidateID)).
			First(&target).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrCandidateNotFound
			}
			return err
		}
		if target.Status != string(entities.CandidateStatusVoting) {
			return domainerrors.ErrCandidateNotVoting
		}
		if target.GameID != strings.TrimSpace(ballot.GameID) || target.Turn != ballot.Turn {
			return domainerrors.ErrCandidateMismatch
		}

		var existing ballotModel
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("game_id = ?", strings.TrimSpace(ballot.GameID)).
			Where("turn = ?", ballot.Turn).
			Where("user_id = ?", strings.TrimSpace(ballot.UserID)).
			First(&existing).
			Error
		switch {
		case err == nil:
			if existing.CandidateID == target.ID {
				final = existing.toEntity()
				return nil
			}
			// Move the tally with the ballot: decrement the old candidate,
			// retarget the row, increment the new one.
			decrement := tx.Model(&candidateModel{}).
				Where("id = ?", existing.CandidateID).
				Where("vote_count > 0").
				Updates(map[string]any{
					"vote_count": gorm.Expr("vote_count - 1"),
					"updated_at": ballot.UpdatedAt.UTC(),
				})
			if decrement.Error != nil {
				return decrement.Error
			}
			if decrement.RowsAffected == 0 {
				return domainerrors.ErrConflict
			}
			if err := tx.Model(&ballotModel{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{
					"candidate_id": target.ID,
					"updated_at":   ballot.UpdatedAt.UTC(),
				}).Error; err != nil {
				return err
			}
			existing.CandidateID = target.ID
			existing.UpdatedAt = ballot.UpdatedAt.UTC()
			final = existing.toEntity()
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := ballotModel{
				ID:          strings.TrimSpace(ballot.BallotID),
				GameID:      strings.TrimSpace(ballot.GameID),
				Turn:        ballot.Turn,
				UserID:      strings.TrimSpace(ballot.UserID),
				CandidateID: target.ID,
				CreatedAt:   ballot.CreatedAt.UTC(),
				UpdatedAt:   ballot.UpdatedAt.UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrConflict
				}
				return err
			}
			final = row.toEntity()
		default:
			return err
		}

		increment := tx.Model(&candidateModel{}).
			Where("id = ?", target.ID).
			Updates(map[string]any{
				"vote_count": gorm.Expr("vote_count + 1"),
				"updated_at": ballot.UpdatedAt.UTC(),
			})
		if increment.Error != nil {
			return increment.Error
		}
		return appendOutbox(tx, outbox)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrCandidateNotFound) ||
			errors.Is(err, domainerrors.ErrCandidateNotVoting) ||
			errors.Is(err, domainerrors.ErrCandidateMismatch) ||
			errors.Is(err, domainerrors.ErrConflict) {
			return entities.Ballot{}, err
		}
		return entities.Ballot{}, r.logError("gameplay_repo_cast_ballot_failed", err,
			"game_id", strings.TrimSpace(ballot.GameID),
			"turn", ballot.Turn,
			"user_id", strings.TrimSpace(ballot.UserID),
			"candidate_id", strings.TrimSpace(ballot.CandidateID),
		)
	}
	return final, nil
}

func (r *Repository) CloseTurn(ctx context.Context, gameID string, turn int, closedAt time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("turn = ?", turn).
		Where("status = ?", string(entities.CandidateStatusVoting)).
		Updates(map[string]any{
			"status":     string(entities.CandidateStatusClosed),
			"updated_at": closedAt.UTC(),
		})
	if result.Error != nil {
		return 0, r.logError("gameplay_repo_close_turn_failed", result.Error,
			"game_id", strings.TrimSpace(gameID),
			"turn", turn,
		)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) DueTurns(ctx context.Context, now time.Time, limit int) ([]ports.TurnRef, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []struct {
		GameID string `gorm:"column:game_id"`
		Turn   int    `gorm:"column:turn"`
	}
	err := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Select("game_id, turn").
		Where("status = ?", string(entities.CandidateStatusVoting)).
		Where("voting_deadline <= ?", now.UTC()).
		Group("game_id, turn").
		Order("MIN(voting_deadline) ASC").
		Limit(limit).
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("gameplay_repo_due_turns_failed", err)
	}
	refs := make([]ports.TurnRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, ports.TurnRef{GameID: row.GameID, Turn: row.Turn})
	}
	return refs, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("gameplay_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("gameplay_repo_mark_outbox_sent_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func appendOutbox(tx *gorm.DB, outbox []ports.OutboxMessage) error {
	for _, message := range outbox {
		row := outboxModel{
			OutboxID:     strings.TrimSpace(message.OutboxID),
			EventType:    strings.TrimSpace(message.EventType),
			PartitionKey: strings.TrimSpace(message.PartitionKey),
			Payload:      append([]byte(nil), message.Payload...),
			Status:       outboxStatusPending,
			CreatedAt:    message.CreatedAt.UTC(),
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "gameplay/match-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("gameplay repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.GameRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
