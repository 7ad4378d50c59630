package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type CreateGameRequest struct {
	AISide string `json:"ai_side"`
}

type GameResponse struct {
	GameID      string     `json:"game_id"`
	Status      string     `json:"status"`
	AISide      string     `json:"ai_side"`
	CurrentTurn int        `json:"current_turn"`
	Board       string     `json:"board"`
	Winner      string     `json:"winner,omitempty"`
	Black       int        `json:"black"`
	White       int        `json:"white"`
	SideToMove  string     `json:"side_to_move,omitempty"`
	LegalMoves  []Position `json:"legal_moves,omitempty"`
	CreatedAt   string     `json:"created_at"`
	FinishedAt  string     `json:"finished_at,omitempty"`
}

type GameListResponse struct {
	Items      []GameResponse `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type ProposeCandidateRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type CandidateResponse struct {
	CandidateID    string `json:"candidate_id"`
	GameID         string `json:"game_id"`
	Turn           int    `json:"turn"`
	Row            int    `json:"row"`
	Col            int    `json:"col"`
	PreviewBoard   string `json:"preview_board,omitempty"`
	ProposedBy     string `json:"proposed_by"`
	VoteCount      int    `json:"vote_count"`
	Status         string `json:"status"`
	VotingDeadline string `json:"voting_deadline"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type BallotResponse struct {
	BallotID    string `json:"ballot_id"`
	GameID      string `json:"game_id"`
	Turn        int    `json:"turn"`
	UserID      string `json:"user_id"`
	CandidateID string `json:"candidate_id"`
	Changed     bool   `json:"changed"`
}

type TurnTallyResponse struct {
	GameID       string              `json:"game_id"`
	Turn         int                 `json:"turn"`
	TotalBallots int                 `json:"total_ballots"`
	Candidates   []CandidateResponse `json:"candidates"`
	UserBallot   *BallotResponse     `json:"user_ballot,omitempty"`
}

type ResolveTurnRequest struct {
	Turn int `json:"turn"`
}

type ResolveTurnResponse struct {
	GameID          string `json:"game_id"`
	Turn            int    `json:"turn"`
	AdoptedID       string `json:"adopted_candidate_id,omitempty"`
	Row             int    `json:"row"`
	Col             int    `json:"col"`
	ClosedCount     int    `json:"closed_count"`
	Passes          int    `json:"passes"`
	AlreadyResolved bool   `json:"already_resolved"`
	Finished        bool   `json:"finished"`
	Winner          string `json:"winner,omitempty"`
	CurrentTurn     int    `json:"current_turn"`
	Board           string `json:"board"`
}

type MoveResponse struct {
	MoveID   string `json:"move_id"`
	Turn     int    `json:"turn"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Color    string `json:"color"`
	PlayedBy string `json:"played_by"`
	Flipped  int    `json:"flipped"`
}

type MoveListResponse struct {
	GameID string         `json:"game_id"`
	Items  []MoveResponse `json:"items"`
}
