package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	matchservice "hivemind/contexts/gameplay/match-service"
	gameplayhttp "hivemind/contexts/gameplay/match-service/transport/http"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	module := matchservice.NewInMemoryModule(nil)
	return New(module, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/games", "", gameplayhttp.CreateGameRequest{AISide: "white"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game status %d: %s", rec.Code, rec.Body.String())
	}
	game := decodeBody[gameplayhttp.GameResponse](t, rec)
	if game.GameID == "" || game.Status != "active" || game.CurrentTurn != 0 {
		t.Fatalf("unexpected game response: %+v", game)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/v1/games/"+game.GameID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get game status %d", rec.Code)
	}
	view := decodeBody[gameplayhttp.GameResponse](t, rec)
	if view.SideToMove != "black" || len(view.LegalMoves) != 4 {
		t.Fatalf("expected black to move with 4 options, got %+v", view)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.GameID+"/candidates", "alice",
		gameplayhttp.ProposeCandidateRequest{Row: 2, Col: 3})
	if rec.Code != http.StatusCreated {
		t.Fatalf("propose status %d: %s", rec.Code, rec.Body.String())
	}
	candidate := decodeBody[gameplayhttp.CandidateResponse](t, rec)
	if candidate.Status != "voting" || candidate.Turn != 0 {
		t.Fatalf("unexpected candidate: %+v", candidate)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.GameID+"/votes", "u1",
		gameplayhttp.CastVoteRequest{CandidateID: candidate.CandidateID})
	if rec.Code != http.StatusOK {
		t.Fatalf("vote status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/api/v1/games/"+game.GameID+"/turns/0/tally", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tally status %d", rec.Code)
	}
	tally := decodeBody[gameplayhttp.TurnTallyResponse](t, rec)
	if tally.TotalBallots != 1 || tally.UserBallot == nil {
		t.Fatalf("unexpected tally: %+v", tally)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.GameID+"/turns/resolve", "",
		gameplayhttp.ResolveTurnRequest{Turn: 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status %d: %s", rec.Code, rec.Body.String())
	}
	resolved := decodeBody[gameplayhttp.ResolveTurnResponse](t, rec)
	if resolved.AdoptedID != candidate.CandidateID || resolved.CurrentTurn != 1 {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/v1/games/"+game.GameID+"/moves", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("moves status %d", rec.Code)
	}
	moves := decodeBody[gameplayhttp.MoveListResponse](t, rec)
	if len(moves.Items) != 1 || moves.Items[0].PlayedBy != "alice" {
		t.Fatalf("unexpected move history: %+v", moves)
	}
}

func TestIdentityHeaderRequiredForWrites(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/games", "", gameplayhttp.CreateGameRequest{AISide: "black"})
	game := decodeBody[gameplayhttp.GameResponse](t, rec)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.GameID+"/candidates", "",
		gameplayhttp.ProposeCandidateRequest{Row: 2, Col: 3})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.GameID+"/votes", "",
		gameplayhttp.CastVoteRequest{CandidateID: "whatever"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestDomainErrorsMapToStatusCodes(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/games/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing game, got %d", rec.Code)
	}
	errResp := decodeBody[gameplayhttp.ErrorResponse](t, rec)
	if errResp.Code != "game_not_found" {
		t.Fatalf("unexpected error code: %+v", errResp)
	}

	rec = doJSON(t, server, http.MethodPost, "/api/v1/games", "", gameplayhttp.CreateGameRequest{AISide: "green"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad side, got %d", rec.Code)
	}

	created := doJSON(t, server, http.MethodPost, "/api/v1/games", "", gameplayhttp.CreateGameRequest{AISide: "white"})
	game := decodeBody[gameplayhttp.GameResponse](t, created)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.GameID+"/candidates", "alice",
		gameplayhttp.ProposeCandidateRequest{Row: 0, Col: 0})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for illegal move, got %d", rec.Code)
	}

	doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.GameID+"/candidates", "alice",
		gameplayhttp.ProposeCandidateRequest{Row: 2, Col: 3})
	rec = doJSON(t, server, http.MethodPost, "/api/v1/games/"+game.GameID+"/candidates", "bob",
		gameplayhttp.ProposeCandidateRequest{Row: 2, Col: 3})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate candidate, got %d", rec.Code)
	}
}

func TestListGamesValidatesLimit(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/games?limit=abc", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/v1/games", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for list, got %d", rec.Code)
	}
}
