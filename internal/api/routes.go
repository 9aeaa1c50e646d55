package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vytor/numguess/internal/errors"
)

func (s *Server) Routes() http.Handler {
	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(timeout))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh-token", s.handleRefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.handleLogout)
				r.Post("/change-password", s.handleChangePassword)
				r.Get("/profile", s.handleProfile)
			})
		})

		r.Route("/game", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateGame)
			r.Get("/stats", s.handleStats)
			r.Get("/history", s.handleHistory)
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/{id}", s.handleGetGame)
			r.Post("/{id}/guess", s.handleGuess)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, envelope{Error: &errorBody{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "Method not allowed",
		}})
	})
	return r
}
