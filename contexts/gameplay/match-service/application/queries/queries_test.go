package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hivemind/contexts/gameplay/match-service/adapters/memory"
	"hivemind/contexts/gameplay/match-service/application/commands"
	"hivemind/contexts/gameplay/match-service/application/queries"
	"hivemind/contexts/gameplay/match-service/domain/board"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
)

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newQueryFixture(t *testing.T) (*memory.Store, commands.GameUseCase, commands.BallotUseCase, queries.GameQueries) {
	t.Helper()
	store := memory.NewStore()
	store.SetNow(testEpoch)
	games := commands.GameUseCase{Games: store, Clock: store, IDGen: store}
	ballots := commands.BallotUseCase{Games: store, Ballots: store, Clock: store, IDGen: store}
	return store, games, ballots, queries.GameQueries{Games: store, Ballots: store}
}

func TestGetGameDerivesReadModelFields(t *testing.T) {
	_, games, _, q := newQueryFixture(t)
	created, err := games.CreateGame(context.Background(), commands.CreateGameCommand{AISide: "white"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	view, err := q.GetGame(context.Background(), created.GameID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if view.Score.Black != 2 || view.Score.White != 2 {
		t.Fatalf("unexpected opening score: %+v", view.Score)
	}
	if view.SideToMove != board.ColorBlack {
		t.Fatalf("turn 0 side must be black, got %s", view.SideToMove)
	}
	if len(view.LegalMoves) != 4 {
		t.Fatalf("expected 4 opening moves, got %v", view.LegalMoves)
	}
}

func TestGetGameNotFound(t *testing.T) {
	_, _, _, q := newQueryFixture(t)
	if _, err := q.GetGame(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestListGamesPagesNewestFirst(t *testing.T) {
	store, games, _, q := newQueryFixture(t)

	var ids []string
	for i := 0; i < 5; i++ {
		store.SetNow(testEpoch.Add(time.Duration(i) * time.Minute))
		game, err := games.CreateGame(context.Background(), commands.CreateGameCommand{AISide: "white"})
		if err != nil {
			t.Fatalf("create game %d: %v", i, err)
		}
		ids = append(ids, game.GameID)
	}

	var seen []string
	cursor := ""
	pages := 0
	for {
		page, err := q.ListGames(context.Background(), "", 2, cursor)
		if err != nil {
			t.Fatalf("list games: %v", err)
		}
		for _, game := range page.Games {
			seen = append(seen, game.GameID)
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if pages != 3 {
		t.Fatalf("expected 3 pages of 2/2/1, got %d", pages)
	}
	if len(seen) != len(ids) {
		t.Fatalf("expected %d games across pages, got %d", len(ids), len(seen))
	}
	for i, id := range seen {
		if want := ids[len(ids)-1-i]; id != want {
			t.Fatalf("page order wrong at %d: got %s want %s", i, id, want)
		}
	}
}

func TestListGamesValidatesStatusAndCursor(t *testing.T) {
	_, _, _, q := newQueryFixture(t)

	if _, err := q.ListGames(context.Background(), "paused", 10, ""); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad status, got %v", err)
	}
	if _, err := q.ListGames(context.Background(), "", 10, "not-a-cursor"); !errors.Is(err, domainerrors.ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestTurnTallySumsBallots(t *testing.T) {
	_, games, ballots, q := newQueryFixture(t)
	game, err := games.CreateGame(context.Background(), commands.CreateGameCommand{AISide: "white"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	c1, err := ballots.ProposeCandidate(context.Background(), commands.ProposeCandidateCommand{
		GameID: game.GameID, UserID: "alice", Row: 2, Col: 3,
	})
	if err != nil {
		t.Fatalf("propose c1: %v", err)
	}
	c2, err := ballots.ProposeCandidate(context.Background(), commands.ProposeCandidateCommand{
		GameID: game.GameID, UserID: "bob", Row: 3, Col: 2,
	})
	if err != nil {
		t.Fatalf("propose c2: %v", err)
	}
	for _, vote := range []struct{ user, candidate string }{
		{"u1", c1.CandidateID},
		{"u2", c1.CandidateID},
		{"u3", c2.CandidateID},
	} {
		if _, err := ballots.CastVote(context.Background(), commands.CastVoteCommand{
			GameID: game.GameID, UserID: vote.user, CandidateID: vote.candidate,
		}); err != nil {
			t.Fatalf("vote %s: %v", vote.user, err)
		}
	}

	tally, err := q.TurnTally(context.Background(), game.GameID, 0, "u3")
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if tally.TotalBallots != 3 {
		t.Fatalf("expected 3 total ballots, got %d", tally.TotalBallots)
	}
	if len(tally.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(tally.Candidates))
	}
	sum := 0
	for _, candidate := range tally.Candidates {
		sum += candidate.VoteCount
	}
	if sum != tally.TotalBallots {
		t.Fatalf("tally invariant violated: candidates sum %d, total %d", sum, tally.TotalBallots)
	}
	if tally.UserBallot == nil || tally.UserBallot.CandidateID != c2.CandidateID {
		t.Fatalf("expected u3 ballot on c2, got %+v", tally.UserBallot)
	}
}

func TestListMovesRequiresExistingGame(t *testing.T) {
	_, _, _, q := newQueryFixture(t)
	if _, err := q.ListMoves(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}
