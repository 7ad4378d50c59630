package commands_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"hivemind/contexts/gameplay/match-service/adapters/memory"
	"hivemind/contexts/gameplay/match-service/application/commands"
	"hivemind/contexts/gameplay/match-service/domain/board"
	"hivemind/contexts/gameplay/match-service/domain/entities"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
)

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	games   commands.GameUseCase
	ballots commands.BallotUseCase
	turns   commands.TurnUseCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	store.SetNow(testEpoch)

	games := commands.GameUseCase{Games: store, Clock: store, IDGen: store}
	ballots := commands.BallotUseCase{
		Games:        store,
		Ballots:      store,
		Clock:        store,
		IDGen:        store,
		VotingWindow: time.Minute,
	}
	turns := commands.TurnUseCase{
		Games:            store,
		Ballots:          store,
		Clock:            store,
		IDGen:            store,
		AutoMoveFallback: true,
		Lifecycle:        games,
	}
	return fixture{store: store, games: games, ballots: ballots, turns: turns}
}

func (f fixture) mustCreateGame(t *testing.T, aiSide string) entities.Game {
	t.Helper()
	game, err := f.games.CreateGame(context.Background(), commands.CreateGameCommand{AISide: aiSide})
	if err != nil {
		t.Fatalf("create game failed: %v", err)
	}
	return game
}

func (f fixture) mustPropose(t *testing.T, gameID, userID string, row, col int) entities.Candidate {
	t.Helper()
	candidate, err := f.ballots.ProposeCandidate(context.Background(), commands.ProposeCandidateCommand{
		GameID: gameID,
		UserID: userID,
		Row:    row,
		Col:    col,
	})
	if err != nil {
		t.Fatalf("propose (%d,%d) failed: %v", row, col, err)
	}
	return candidate
}

func (f fixture) mustVote(t *testing.T, gameID, userID, candidateID string) commands.CastVoteResult {
	t.Helper()
	result, err := f.ballots.CastVote(context.Background(), commands.CastVoteCommand{
		GameID:      gameID,
		UserID:      userID,
		CandidateID: candidateID,
	})
	if err != nil {
		t.Fatalf("vote by %s failed: %v", userID, err)
	}
	return result
}

func TestCreateGameStartsAtOpeningPosition(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")

	if game.Status != entities.GameStatusActive {
		t.Fatalf("expected active game, got %s", game.Status)
	}
	if game.CurrentTurn != 0 {
		t.Fatalf("expected turn 0, got %d", game.CurrentTurn)
	}
	if game.Board != board.Initial() {
		t.Fatalf("expected opening board, got %q", game.Board.String())
	}
	if game.AISide != board.ColorWhite {
		t.Fatalf("expected white AI, got %s", game.AISide)
	}

	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "game.created" {
		t.Fatalf("expected one game.created outbox row, got %+v", pending)
	}
}

func TestCreateGameRejectsUnknownSide(t *testing.T) {
	f := newFixture(t)
	_, err := f.games.CreateGame(context.Background(), commands.CreateGameCommand{AISide: "purple"})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProposeCandidateValidatesLegality(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")

	_, err := f.ballots.ProposeCandidate(context.Background(), commands.ProposeCandidateCommand{
		GameID: game.GameID,
		UserID: "alice",
		Row:    0,
		Col:    0,
	})
	if !errors.Is(err, domainerrors.ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}

	candidate := f.mustPropose(t, game.GameID, "alice", 2, 3)
	if candidate.Turn != 0 || candidate.Status != entities.CandidateStatusVoting {
		t.Fatalf("unexpected candidate state: %+v", candidate)
	}
	if candidate.VotingDeadline != testEpoch.Add(time.Minute) {
		t.Fatalf("unexpected voting deadline: %v", candidate.VotingDeadline)
	}
	if candidate.PreviewBoard == game.Board {
		t.Fatal("preview board must include the applied move")
	}
}

func TestProposeCandidateRejectsDuplicateTarget(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")
	f.mustPropose(t, game.GameID, "alice", 2, 3)

	_, err := f.ballots.ProposeCandidate(context.Background(), commands.ProposeCandidateCommand{
		GameID: game.GameID,
		UserID: "bob",
		Row:    2,
		Col:    3,
	})
	if !errors.Is(err, domainerrors.ErrDuplicateCandidate) {
		t.Fatalf("expected ErrDuplicateCandidate, got %v", err)
	}
}

func TestCastVoteKeepsTallyConsistent(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")
	c1 := f.mustPropose(t, game.GameID, "alice", 2, 3)
	c2 := f.mustPropose(t, game.GameID, "bob", 3, 2)

	for _, user := range []string{"u1", "u2", "u3"} {
		f.mustVote(t, game.GameID, user, c1.CandidateID)
	}
	f.mustVote(t, game.GameID, "u4", c2.CandidateID)

	assertTally := func(wantC1, wantC2 int) {
		t.Helper()
		got1, err := f.store.GetCandidate(context.Background(), c1.CandidateID)
		if err != nil {
			t.Fatalf("load c1: %v", err)
		}
		got2, err := f.store.GetCandidate(context.Background(), c2.CandidateID)
		if err != nil {
			t.Fatalf("load c2: %v", err)
		}
		if got1.VoteCount != wantC1 || got2.VoteCount != wantC2 {
			t.Fatalf("tally mismatch: c1=%d c2=%d, want %d/%d",
				got1.VoteCount, got2.VoteCount, wantC1, wantC2)
		}
	}
	assertTally(3, 1)

	// Retargeting moves exactly one unit of tally.
	result := f.mustVote(t, game.GameID, "u1", c2.CandidateID)
	if !result.Changed {
		t.Fatal("retarget must report Changed")
	}
	assertTally(2, 2)

	// Re-voting the same candidate is a no-op.
	result = f.mustVote(t, game.GameID, "u1", c2.CandidateID)
	if result.Changed {
		t.Fatal("same-target revote must not report Changed")
	}
	assertTally(2, 2)
}

func TestCastVoteRejectsClosedCandidate(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")
	candidate := f.mustPropose(t, game.GameID, "alice", 2, 3)

	if _, err := f.store.CloseTurn(context.Background(), game.GameID, 0, testEpoch); err != nil {
		t.Fatalf("close turn failed: %v", err)
	}

	_, err := f.ballots.CastVote(context.Background(), commands.CastVoteCommand{
		GameID:      game.GameID,
		UserID:      "u1",
		CandidateID: candidate.CandidateID,
	})
	if !errors.Is(err, domainerrors.ErrCandidateNotVoting) {
		t.Fatalf("expected ErrCandidateNotVoting, got %v", err)
	}
}

func TestResolveTurnAdoptsMostVotedCandidate(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")
	c1 := f.mustPropose(t, game.GameID, "alice", 2, 3)
	c2 := f.mustPropose(t, game.GameID, "bob", 3, 2)

	f.mustVote(t, game.GameID, "u1", c1.CandidateID)
	f.mustVote(t, game.GameID, "u2", c2.CandidateID)
	f.mustVote(t, game.GameID, "u3", c2.CandidateID)

	result, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{
		GameID: game.GameID,
		Turn:   0,
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if result.AdoptedID != c2.CandidateID {
		t.Fatalf("expected %s adopted, got %s", c2.CandidateID, result.AdoptedID)
	}
	if result.ClosedCount != 2 {
		t.Fatalf("expected 2 closed candidates, got %d", result.ClosedCount)
	}
	if result.Game.CurrentTurn != 1 {
		t.Fatalf("expected turn 1 after resolution, got %d", result.Game.CurrentTurn)
	}

	adopted, err := f.store.GetCandidate(context.Background(), c2.CandidateID)
	if err != nil {
		t.Fatalf("load adopted: %v", err)
	}
	if adopted.Status != entities.CandidateStatusAdopted {
		t.Fatalf("expected adopted status, got %s", adopted.Status)
	}

	moves, err := f.store.ListMoves(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("list moves: %v", err)
	}
	if len(moves) != 1 || moves[0].Position != (board.Position{Row: 3, Col: 2}) {
		t.Fatalf("unexpected move history: %+v", moves)
	}
	if moves[0].PlayedBy != "bob" {
		t.Fatalf("move must credit the proposer, got %s", moves[0].PlayedBy)
	}
}

func TestResolveTurnTieGoesToEarliestCandidate(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")
	first := f.mustPropose(t, game.GameID, "alice", 2, 3)

	f.store.SetNow(testEpoch.Add(time.Second))
	second := f.mustPropose(t, game.GameID, "bob", 3, 2)

	f.mustVote(t, game.GameID, "u1", first.CandidateID)
	f.mustVote(t, game.GameID, "u2", second.CandidateID)

	result, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{
		GameID: game.GameID,
		Turn:   0,
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if result.AdoptedID != first.CandidateID {
		t.Fatalf("tie must go to the earliest candidate, got %s", result.AdoptedID)
	}
}

func TestResolveTurnIsIdempotent(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")
	candidate := f.mustPropose(t, game.GameID, "alice", 2, 3)
	f.mustVote(t, game.GameID, "u1", candidate.CandidateID)

	first, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{GameID: game.GameID, Turn: 0})
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if first.AlreadyResolved {
		t.Fatal("first resolution must not report AlreadyResolved")
	}

	second, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{GameID: game.GameID, Turn: 0})
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if !second.AlreadyResolved {
		t.Fatal("duplicate resolution must report AlreadyResolved")
	}
	if second.Game.CurrentTurn != 1 {
		t.Fatalf("duplicate resolution must not advance the turn, got %d", second.Game.CurrentTurn)
	}

	moves, err := f.store.ListMoves(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("list moves: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("expected a single committed move, got %d", len(moves))
	}
}

func TestResolveTurnClosesLateCandidatesOnResolvedTurn(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")
	candidate := f.mustPropose(t, game.GameID, "alice", 2, 3)
	f.mustVote(t, game.GameID, "u1", candidate.CandidateID)

	if _, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{GameID: game.GameID, Turn: 0}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	// A proposal that raced the resolution: still in voting for turn 0 even
	// though the game has moved on.
	late := entities.Candidate{
		CandidateID:    "late-candidate",
		GameID:         game.GameID,
		Turn:           0,
		Position:       board.Position{Row: 3, Col: 2},
		PreviewBoard:   board.Initial(),
		ProposedBy:     "bob",
		Status:         entities.CandidateStatusVoting,
		VotingDeadline: testEpoch.Add(time.Minute),
		CreatedAt:      testEpoch,
		UpdatedAt:      testEpoch,
	}
	if err := f.store.CreateCandidate(context.Background(), late, nil); err != nil {
		t.Fatalf("seed late candidate: %v", err)
	}

	f.store.SetNow(testEpoch.Add(2 * time.Minute))
	due, err := f.store.DueTurns(context.Background(), f.store.Now(), 10)
	if err != nil {
		t.Fatalf("due turns: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("fixture expects the stale turn to be due, got %+v", due)
	}

	result, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{GameID: game.GameID, Turn: 0})
	if err != nil {
		t.Fatalf("repeat resolve failed: %v", err)
	}
	if !result.AlreadyResolved {
		t.Fatal("repeat resolution must report AlreadyResolved")
	}
	if result.ClosedCount != 1 {
		t.Fatalf("expected the late candidate to be closed, got %d", result.ClosedCount)
	}

	reloaded, err := f.store.GetCandidate(context.Background(), late.CandidateID)
	if err != nil {
		t.Fatalf("reload late candidate: %v", err)
	}
	if reloaded.Status != entities.CandidateStatusClosed {
		t.Fatalf("late candidate must leave voting, got %s", reloaded.Status)
	}

	due, err = f.store.DueTurns(context.Background(), f.store.Now(), 10)
	if err != nil {
		t.Fatalf("due turns after repeat resolve: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("sweep must converge, turn still due: %+v", due)
	}
}

func TestCastVoteConcurrentRetargetsKeepTallyConsistent(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")
	targets := []string{
		f.mustPropose(t, game.GameID, "alice", 2, 3).CandidateID,
		f.mustPropose(t, game.GameID, "bob", 3, 2).CandidateID,
		f.mustPropose(t, game.GameID, "carol", 4, 5).CandidateID,
	}

	const voters = 24
	const rounds = 4
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := "voter-" + strconv.Itoa(i)
			for round := 0; round < rounds; round++ {
				target := targets[(i+round)%len(targets)]
				if _, err := f.ballots.CastVote(context.Background(), commands.CastVoteCommand{
					GameID:      game.GameID,
					UserID:      user,
					CandidateID: target,
				}); err != nil {
					t.Errorf("vote by %s round %d failed: %v", user, round, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	sum := 0
	for _, id := range targets {
		candidate, err := f.store.GetCandidate(context.Background(), id)
		if err != nil {
			t.Fatalf("load candidate %s: %v", id, err)
		}
		if candidate.VoteCount < 0 {
			t.Fatalf("negative tally on %s: %d", id, candidate.VoteCount)
		}
		sum += candidate.VoteCount
	}

	ballots := 0
	for i := 0; i < voters; i++ {
		_, found, err := f.store.GetBallot(context.Background(), game.GameID, 0, "voter-"+strconv.Itoa(i))
		if err != nil {
			t.Fatalf("load ballot %d: %v", i, err)
		}
		if found {
			ballots++
		}
	}

	if ballots != voters {
		t.Fatalf("every voter must end with exactly one ballot, got %d of %d", ballots, voters)
	}
	if sum != ballots {
		t.Fatalf("tally invariant violated after concurrent casts: candidates sum %d, ballots %d", sum, ballots)
	}
}

func TestResolveTurnRejectsFutureTurn(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")

	_, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{GameID: game.GameID, Turn: 5})
	if !errors.Is(err, domainerrors.ErrTurnMismatch) {
		t.Fatalf("expected ErrTurnMismatch, got %v", err)
	}
}

func TestResolveTurnAutoPlaysWithoutCandidates(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")

	result, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{GameID: game.GameID, Turn: 0})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if result.AdoptedID == "" {
		t.Fatal("fallback resolution must adopt a candidate")
	}
	// First legal move in row-major order for the opening position.
	if result.Position != (board.Position{Row: 2, Col: 3}) {
		t.Fatalf("expected auto move (2,3), got %v", result.Position)
	}

	moves, err := f.store.ListMoves(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("list moves: %v", err)
	}
	if len(moves) != 1 || moves[0].PlayedBy != entities.AutoProposer {
		t.Fatalf("expected one auto move, got %+v", moves)
	}
}

func TestResolveTurnStallsWhenFallbackDisabled(t *testing.T) {
	f := newFixture(t)
	f.turns.AutoMoveFallback = false
	game := f.mustCreateGame(t, "white")

	_, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{GameID: game.GameID, Turn: 0})
	if !errors.Is(err, domainerrors.ErrTurnStalled) {
		t.Fatalf("expected ErrTurnStalled, got %v", err)
	}

	reloaded, err := f.store.GetGame(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("reload game: %v", err)
	}
	if reloaded.CurrentTurn != 0 {
		t.Fatalf("stalled turn must not advance, got %d", reloaded.CurrentTurn)
	}
}

func TestResolveTurnPassesMovelessSide(t *testing.T) {
	f := newFixture(t)

	// White holds the corner, so Black cannot bracket it and must pass;
	// White can still play.
	fixed, err := board.Parse("WB" + boardPadding(62))
	if err != nil {
		t.Fatalf("parse fixture board: %v", err)
	}
	game := entities.Game{
		GameID:      "game-pass",
		Status:      entities.GameStatusActive,
		AISide:      board.ColorWhite,
		CurrentTurn: 0,
		Board:       fixed,
		CreatedAt:   testEpoch,
		UpdatedAt:   testEpoch,
	}
	if err := f.store.CreateGame(context.Background(), game, nil); err != nil {
		t.Fatalf("seed game: %v", err)
	}

	result, err := f.turns.ResolveTurn(context.Background(), commands.CloseTurnCommand{GameID: game.GameID, Turn: 0})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if result.Passes != 1 {
		t.Fatalf("expected one pass, got %d", result.Passes)
	}
	if result.AdoptedID != "" {
		t.Fatalf("pass must not adopt a candidate, got %s", result.AdoptedID)
	}
	if result.Game.CurrentTurn != 1 {
		t.Fatalf("expected turn 1 after pass, got %d", result.Game.CurrentTurn)
	}
	if result.Finish.Finished {
		t.Fatal("game must continue while White can move")
	}
}

func TestCheckAndFinishIsNoOpOnOpenPosition(t *testing.T) {
	f := newFixture(t)
	game := f.mustCreateGame(t, "white")

	result, err := f.games.CheckAndFinish(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("finish check failed: %v", err)
	}
	if result.Finished {
		t.Fatal("open position must not finish the game")
	}
}

func TestCheckAndFinishFinishesOnce(t *testing.T) {
	f := newFixture(t)

	// Black wiped White out; the house rule ends the game immediately.
	fixed, err := board.Parse("BBBB" + boardPadding(60))
	if err != nil {
		t.Fatalf("parse fixture board: %v", err)
	}
	game := entities.Game{
		GameID:      "game-finish",
		Status:      entities.GameStatusActive,
		AISide:      board.ColorWhite,
		CurrentTurn: 6,
		Board:       fixed,
		CreatedAt:   testEpoch,
		UpdatedAt:   testEpoch,
	}
	if err := f.store.CreateGame(context.Background(), game, nil); err != nil {
		t.Fatalf("seed game: %v", err)
	}

	first, err := f.games.CheckAndFinish(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("finish check failed: %v", err)
	}
	if !first.Finished || first.AlreadyFinished {
		t.Fatalf("expected fresh finish, got %+v", first)
	}
	if first.Winner != board.ResultCollective {
		t.Fatalf("black majority against white AI should be collective, got %s", first.Winner)
	}

	second, err := f.games.CheckAndFinish(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("repeat finish check failed: %v", err)
	}
	if !second.AlreadyFinished {
		t.Fatal("repeat finish check must report AlreadyFinished")
	}
	if second.Winner != first.Winner {
		t.Fatalf("verdict changed across checks: %s vs %s", first.Winner, second.Winner)
	}

	reloaded, err := f.store.GetGame(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("reload game: %v", err)
	}
	if reloaded.Status != entities.GameStatusFinished || reloaded.FinishedAt == nil {
		t.Fatalf("expected finished game with timestamp, got %+v", reloaded)
	}
}

func boardPadding(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = '-'
	}
	return string(buf)
}
