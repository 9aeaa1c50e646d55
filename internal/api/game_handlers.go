package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/logger"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/services"
)

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	cfg, err := req.validate()
	if err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.GameService.CreateSession(r.Context(), userID(r), cfg)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("created game %s", session.ID)
	writeSuccess(w, r, http.StatusCreated, session)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req guessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		handleError(w, r, err)
		return
	}

	outcome, err := s.GameService.SubmitGuess(r.Context(), userID(r), id, req.GuessedNumber)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, outcome)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	session, err := s.GameService.GetSession(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, session)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.GameService.GetUserStats(r.Context(), userID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, stats)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := services.HistoryQuery{
		Page:     queryInt(q.Get("page"), 0),
		PageSize: queryInt(q.Get("pageSize"), 0),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := models.ParseGameStatus(raw)
		if err != nil {
			handleError(w, r, errors.NewValidationError("status", "must be one of InProgress, Won, Lost, Abandoned"))
			return
		}
		query.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("difficulty")); raw != "" {
		difficulty, err := models.ParseDifficulty(raw)
		if err != nil {
			handleError(w, r, errors.NewValidationError("difficulty", "must be one of Easy, Normal, Hard, Expert"))
			return
		}
		query.Difficulty = &difficulty
	}

	page, err := s.GameService.GetHistory(r.Context(), userID(r), query)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, page)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	order := models.LeaderboardOrder(strings.ToLower(strings.TrimSpace(q.Get("by"))))
	page, err := s.StatsService.Leaderboard(r.Context(), order,
		queryInt(q.Get("minGames"), 0),
		queryInt(q.Get("page"), 0),
		queryInt(q.Get("pageSize"), 0),
	)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, page)
}

// queryInt parses an integer query value, returning def when it is absent or
// malformed.
func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
