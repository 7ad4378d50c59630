package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	matchservice "hivemind/contexts/gameplay/match-service"
	domainerrors "hivemind/contexts/gameplay/match-service/domain/errors"
	gameplayhttp "hivemind/contexts/gameplay/match-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "hivemind/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	gameplay matchservice.Module
}

func New(
	gameplay matchservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		gameplay: gameplay,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/v1/games", s.handleListGames)
	s.mux.HandleFunc("GET /api/v1/games/{game_id}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/v1/games/{game_id}/candidates", s.handleProposeCandidate)
	s.mux.HandleFunc("POST /api/v1/games/{game_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /api/v1/games/{game_id}/turns/{turn}/tally", s.handleTurnTally)
	s.mux.HandleFunc("POST /api/v1/games/{game_id}/turns/resolve", s.handleResolveTurn)
	s.mux.HandleFunc("POST /api/v1/games/{game_id}/finish-check", s.handleFinishCheck)
	s.mux.HandleFunc("GET /api/v1/games/{game_id}/moves", s.handleListMoves)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req gameplayhttp.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGameplayError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.gameplay.Handler.CreateGameHandler(r.Context(), req)
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if limitRaw := query.Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeGameplayError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}

	resp, err := s.gameplay.Handler.ListGamesHandler(
		r.Context(),
		query.Get("status"),
		limit,
		query.Get("cursor"),
	)
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("game_id")
	resp, err := s.gameplay.Handler.GetGameHandler(r.Context(), gameID)
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProposeCandidate(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeGameplayError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req gameplayhttp.ProposeCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGameplayError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	gameID := r.PathValue("game_id")
	resp, err := s.gameplay.Handler.ProposeCandidateHandler(r.Context(), gameID, userID, req)
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeGameplayError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req gameplayhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGameplayError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	gameID := r.PathValue("game_id")
	resp, err := s.gameplay.Handler.CastVoteHandler(r.Context(), gameID, userID, req)
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTurnTally(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("game_id")
	turn, err := strconv.Atoi(r.PathValue("turn"))
	if err != nil || turn < 0 {
		writeGameplayError(w, http.StatusBadRequest, "invalid_turn", "turn must be a non-negative integer")
		return
	}

	resp, err := s.gameplay.Handler.TurnTallyHandler(r.Context(), gameID, turn, resolveUserID(r))
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveTurn(w http.ResponseWriter, r *http.Request) {
	var req gameplayhttp.ResolveTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGameplayError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	gameID := r.PathValue("game_id")
	resp, err := s.gameplay.Handler.ResolveTurnHandler(r.Context(), gameID, req)
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinishCheck(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("game_id")
	resp, err := s.gameplay.Handler.FinishCheckHandler(r.Context(), gameID)
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMoves(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("game_id")
	resp, err := s.gameplay.Handler.ListMovesHandler(r.Context(), gameID)
	if err != nil {
		writeGameplayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeGameplayDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrGameNotFound):
		writeGameplayError(w, http.StatusNotFound, "game_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrCandidateNotFound):
		writeGameplayError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrGameFinished):
		writeGameplayError(w, http.StatusConflict, "game_finished", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidMove):
		writeGameplayError(w, http.StatusUnprocessableEntity, "invalid_move", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateCandidate):
		writeGameplayError(w, http.StatusConflict, "duplicate_candidate", err.Error())
	case errors.Is(err, domainerrors.ErrCandidateNotVoting),
		errors.Is(err, domainerrors.ErrCandidateMismatch),
		errors.Is(err, domainerrors.ErrTurnMismatch):
		writeGameplayError(w, http.StatusConflict, "turn_conflict", err.Error())
	case errors.Is(err, domainerrors.ErrTurnStalled):
		writeGameplayError(w, http.StatusConflict, "turn_stalled", err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		writeGameplayError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidCursor):
		writeGameplayError(w, http.StatusBadRequest, "invalid_cursor", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput):
		writeGameplayError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeGameplayError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGameplayError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, gameplayhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
