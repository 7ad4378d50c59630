package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"hivemind/contexts/gameplay/match-service/application/commands"
	"hivemind/contexts/gameplay/match-service/application/queries"
	"hivemind/contexts/gameplay/match-service/domain/entities"
	httptransport "hivemind/contexts/gameplay/match-service/transport/http"
)

// Handler maps transport DTOs onto use cases; no business logic lives here.
type Handler struct {
	Games   commands.GameUseCase
	Ballots commands.BallotUseCase
	Turns   commands.TurnUseCase
	Queries queries.GameQueries
	Logger  *slog.Logger
}

func (h Handler) CreateGameHandler(ctx context.Context, req httptransport.CreateGameRequest) (httptransport.GameResponse, error) {
	game, err := h.Games.CreateGame(ctx, commands.CreateGameCommand{AISide: req.AISide})
	if err != nil {
		return httptransport.GameResponse{}, err
	}
	return gameResponse(game), nil
}

func (h Handler) GetGameHandler(ctx context.Context, gameID string) (httptransport.GameResponse, error) {
	view, err := h.Queries.GetGame(ctx, gameID)
	if err != nil {
		return httptransport.GameResponse{}, err
	}
	resp := gameResponse(view.Game)
	resp.SideToMove = ""
	if !view.Game.Finished() {
		resp.SideToMove = string(view.SideToMove)
		for _, pos := range view.LegalMoves {
			resp.LegalMoves = append(resp.LegalMoves, httptransport.Position{Row: pos.Row, Col: pos.Col})
		}
	}
	return resp, nil
}

func (h Handler) ListGamesHandler(ctx context.Context, status string, limit int, cursor string) (httptransport.GameListResponse, error) {
	page, err := h.Queries.ListGames(ctx, status, limit, cursor)
	if err != nil {
		return httptransport.GameListResponse{}, err
	}
	resp := httptransport.GameListResponse{
		Items:      make([]httptransport.GameResponse, 0, len(page.Games)),
		NextCursor: page.NextCursor,
	}
	for _, game := range page.Games {
		resp.Items = append(resp.Items, gameResponse(game))
	}
	return resp, nil
}

func (h Handler) ProposeCandidateHandler(
	ctx context.Context,
	gameID string,
	userID string,
	req httptransport.ProposeCandidateRequest,
) (httptransport.CandidateResponse, error) {
	candidate, err := h.Ballots.ProposeCandidate(ctx, commands.ProposeCandidateCommand{
		GameID: gameID,
		UserID: userID,
		Row:    req.Row,
		Col:    req.Col,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return candidateResponse(candidate), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	gameID string,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.BallotResponse, error) {
	result, err := h.Ballots.CastVote(ctx, commands.CastVoteCommand{
		GameID:      gameID,
		UserID:      userID,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	resp := ballotResponse(result.Ballot)
	resp.Changed = result.Changed
	return resp, nil
}

func (h Handler) TurnTallyHandler(ctx context.Context, gameID string, turn int, userID string) (httptransport.TurnTallyResponse, error) {
	tally, err := h.Queries.TurnTally(ctx, gameID, turn, userID)
	if err != nil {
		return httptransport.TurnTallyResponse{}, err
	}
	resp := httptransport.TurnTallyResponse{
		GameID:       tally.GameID,
		Turn:         tally.Turn,
		TotalBallots: tally.TotalBallots,
		Candidates:   make([]httptransport.CandidateResponse, 0, len(tally.Candidates)),
	}
	for _, candidate := range tally.Candidates {
		resp.Candidates = append(resp.Candidates, candidateResponse(candidate))
	}
	if tally.UserBallot != nil {
		ballot := ballotResponse(*tally.UserBallot)
		resp.UserBallot = &ballot
	}
	return resp, nil
}

func (h Handler) ResolveTurnHandler(ctx context.Context, gameID string, req httptransport.ResolveTurnRequest) (httptransport.ResolveTurnResponse, error) {
	result, err := h.Turns.ResolveTurn(ctx, commands.CloseTurnCommand{
		GameID: gameID,
		Turn:   req.Turn,
	})
	if err != nil {
		return httptransport.ResolveTurnResponse{}, err
	}
	resp := httptransport.ResolveTurnResponse{
		GameID:          result.Game.GameID,
		Turn:            req.Turn,
		AdoptedID:       result.AdoptedID,
		Row:             result.Position.Row,
		Col:             result.Position.Col,
		ClosedCount:     result.ClosedCount,
		Passes:          result.Passes,
		AlreadyResolved: result.AlreadyResolved,
		Finished:        result.Finish.Finished,
		Winner:          string(result.Finish.Winner),
		CurrentTurn:     result.Game.CurrentTurn,
		Board:           result.Game.Board.String(),
	}
	return resp, nil
}

// FinishCheckHandler re-evaluates the terminal condition without resolving a
// turn; safe to call repeatedly.
func (h Handler) FinishCheckHandler(ctx context.Context, gameID string) (httptransport.GameResponse, error) {
	if _, err := h.Games.CheckAndFinish(ctx, gameID); err != nil {
		return httptransport.GameResponse{}, err
	}
	return h.GetGameHandler(ctx, gameID)
}

func (h Handler) ListMovesHandler(ctx context.Context, gameID string) (httptransport.MoveListResponse, error) {
	moves, err := h.Queries.ListMoves(ctx, gameID)
	if err != nil {
		return httptransport.MoveListResponse{}, err
	}
	resp := httptransport.MoveListResponse{
		GameID: gameID,
		Items:  make([]httptransport.MoveResponse, 0, len(moves)),
	}
	for _, move := range moves {
		resp.Items = append(resp.Items, httptransport.MoveResponse{
			MoveID:   move.MoveID,
			Turn:     move.Turn,
			Row:      move.Position.Row,
			Col:      move.Position.Col,
			Color:    string(move.Color),
			PlayedBy: move.PlayedBy,
			Flipped:  move.Flipped,
		})
	}
	return resp, nil
}

func gameResponse(game entities.Game) httptransport.GameResponse {
	score := game.Score()
	resp := httptransport.GameResponse{
		GameID:      game.GameID,
		Status:      string(game.Status),
		AISide:      string(game.AISide),
		CurrentTurn: game.CurrentTurn,
		Board:       game.Board.String(),
		Winner:      string(game.Winner),
		Black:       score.Black,
		White:       score.White,
		CreatedAt:   game.CreatedAt.UTC().Format(time.RFC3339),
	}
	if game.FinishedAt != nil {
		resp.FinishedAt = game.FinishedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func candidateResponse(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID:    candidate.CandidateID,
		GameID:         candidate.GameID,
		Turn:           candidate.Turn,
		Row:            candidate.Position.Row,
		Col:            candidate.Position.Col,
		PreviewBoard:   candidate.PreviewBoard.String(),
		ProposedBy:     candidate.ProposedBy,
		VoteCount:      candidate.VoteCount,
		Status:         string(candidate.Status),
		VotingDeadline: candidate.VotingDeadline.UTC().Format(time.RFC3339),
	}
}

func ballotResponse(ballot entities.Ballot) httptransport.BallotResponse {
	return httptransport.BallotResponse{
		BallotID:    ballot.BallotID,
		GameID:      ballot.GameID,
		Turn:        ballot.Turn,
		UserID:      ballot.UserID,
		CandidateID: ballot.CandidateID,
	}
}
