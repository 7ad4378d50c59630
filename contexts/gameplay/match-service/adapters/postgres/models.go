package postgresadapter

import (
	"strings"
	"time"

	"hivemind/contexts/gameplay/match-service/domain/board"
	"hivemind/contexts/gameplay/match-service/domain/entities"
)

type gameModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	Status      string     `gorm:"column:status;index:idx_games_status_created,priority:1"`
	AISide      string     `gorm:"column:ai_side"`
	CurrentTurn int        `gorm:"column:current_turn"`
	Board       string     `gorm:"column:board"`
	Winner      *string    `gorm:"column:winner"`
	CreatedAt   time.Time  `gorm:"column:created_at;index:idx_games_status_created,priority:2"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at"`
}

func (gameModel) TableName() string {
	return "games"
}

func gameModelFromEntity(game entities.Game) gameModel {
	row := gameModel{
		ID:          strings.TrimSpace(game.GameID),
		Status:      string(game.Status),
		AISide:      string(game.AISide),
		CurrentTurn: game.CurrentTurn,
		Board:       game.Board.String(),
		CreatedAt:   game.CreatedAt.UTC(),
		UpdatedAt:   game.UpdatedAt.UTC(),
		FinishedAt:  normalizeOptionalTime(game.FinishedAt),
	}
	if game.Winner != "" {
		winner := string(game.Winner)
		row.Winner = &winner
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m gameModel) toEntity() (entities.Game, error) {
	grid, err := board.Parse(m.Board)
	if err != nil {
		return entities.Game{}, err
	}
	game := entities.Game{
		GameID:      m.ID,
		Status:      entities.GameStatus(m.Status),
		AISide:      board.Color(m.AISide),
		CurrentTurn: m.CurrentTurn,
		Board:       grid,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
		FinishedAt:  normalizeOptionalTime(m.FinishedAt),
	}
	if m.Winner != nil {
		game.Winner = board.Result(strings.TrimSpace(*m.Winner))
	}
	return game, nil
}

type candidateModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	GameID         string    `gorm:"column:game_id;index:idx_candidates_game_turn,priority:1;uniqueIndex:ux_candidates_position,priority:1"`
	Turn           int       `gorm:"column:turn;index:idx_candidates_game_turn,priority:2;uniqueIndex:ux_candidates_position,priority:2"`
	TargetRow      int       `gorm:"column:target_row;uniqueIndex:ux_candidates_position,priority:3"`
	TargetCol      int       `gorm:"column:target_col;uniqueIndex:ux_candidates_position,priority:4"`
	PreviewBoard   string    `gorm:"column:preview_board"`
	ProposedBy     string    `gorm:"column:proposed_by"`
	VoteCount      int       `gorm:"column:vote_count"`
	Status         string    `gorm:"column:status;index:idx_candidates_status_deadline,priority:1"`
	VotingDeadline time.Time `gorm:"column:voting_deadline;index:idx_candidates_status_deadline,priority:2"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:             strings.TrimSpace(candidate.CandidateID),
		GameID:         strings.TrimSpace(candidate.GameID),
		Turn:           candidate.Turn,
		TargetRow:      candidate.Position.Row,
		TargetCol:      candidate.Position.Col,
		PreviewBoard:   candidate.PreviewBoard.String(),
		ProposedBy:     strings.TrimSpace(candidate.ProposedBy),
		VoteCount:      candidate.VoteCount,
		Status:         string(candidate.Status),
		VotingDeadline: candidate.VotingDeadline.UTC(),
		CreatedAt:      candidate.CreatedAt.UTC(),
		UpdatedAt:      candidate.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m candidateModel) toEntity() (entities.Candidate, error) {
	preview, err := board.Parse(m.PreviewBoard)
	if err != nil {
		return entities.Candidate{}, err
	}
	return entities.Candidate{
		CandidateID:    m.ID,
		GameID:         m.GameID,
		Turn:           m.Turn,
		Position:       board.Position{Row: m.TargetRow, Col: m.TargetCol},
		PreviewBoard:   preview,
		ProposedBy:     m.ProposedBy,
		VoteCount:      m.VoteCount,
		Status:         entities.CandidateStatus(m.Status),
		VotingDeadline: m.VotingDeadline.UTC(),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}, nil
}

type ballotModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	GameID      string    `gorm:"column:game_id;uniqueIndex:ux_ballots_game_turn_user,priority:1"`
	Turn        int       `gorm:"column:turn;uniqueIndex:ux_ballots_game_turn_user,priority:2"`
	UserID      string    `gorm:"column:user_id;uniqueIndex:ux_ballots_game_turn_user,priority:3"`
	CandidateID string    `gorm:"column:candidate_id;index:idx_ballots_candidate"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:    m.ID,
		GameID:      m.GameID,
		Turn:        m.Turn,
		UserID:      m.UserID,
		CandidateID: m.CandidateID,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type moveModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	GameID      string    `gorm:"column:game_id;uniqueIndex:ux_moves_game_turn,priority:1"`
	Turn        int       `gorm:"column:turn;uniqueIndex:ux_moves_game_turn,priority:2"`
	TargetRow   int       `gorm:"column:target_row"`
	TargetCol   int       `gorm:"column:target_col"`
	Color       string    `gorm:"column:color"`
	PlayedBy    string    `gorm:"column:played_by"`
	CandidateID string    `gorm:"column:candidate_id"`
	Flipped     int       `gorm:"column:flipped"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (moveModel) TableName() string {
	return "moves"
}

func moveModelFromEntity(move entities.MoveRecord) moveModel {
	row := moveModel{
		ID:          strings.TrimSpace(move.MoveID),
		GameID:      strings.TrimSpace(move.GameID),
		Turn:        move.Turn,
		TargetRow:   move.Position.Row,
		TargetCol:   move.Position.Col,
		Color:       string(move.Color),
		PlayedBy:    strings.TrimSpace(move.PlayedBy),
		CandidateID: strings.TrimSpace(move.CandidateID),
		Flipped:     move.Flipped,
		CreatedAt:   move.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m moveModel) toEntity() entities.MoveRecord {
	return entities.MoveRecord{
		MoveID:      m.ID,
		GameID:      m.GameID,
		Turn:        m.Turn,
		Position:    board.Position{Row: m.TargetRow, Col: m.TargetCol},
		Color:       board.Color(m.Color),
		PlayedBy:    m.PlayedBy,
		CandidateID: m.CandidateID,
		Flipped:     m.Flipped,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index:idx_outbox_status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "gameplay_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

// Models lists every table owned by this adapter for migration wiring.
func Models() []any {
	return []any{
		&gameModel{},
		&candidateModel{},
		&ballotModel{},
		&moveModel{},
		&outboxModel{},
	}
}
