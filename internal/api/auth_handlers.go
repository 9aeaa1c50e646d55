package api

import (
	"net/http"

	"github.com/vytor/numguess/internal/logger"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	input, err := req.validate()
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.AuthService.Register(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("registered user %s", result.User.ID)
	writeSuccess(w, r, http.StatusCreated, result)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, result)
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.AuthService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, result)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.AuthService.Logout(r.Context(), userID(r)); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.AuthService.ChangePassword(r.Context(), userID(r), req.CurrentPassword, req.NewPassword); err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, messageResponse{Message: "Password changed successfully"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.AuthService.Profile(r.Context(), userID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, profile)
}
