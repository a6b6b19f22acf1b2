package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dvcrn/expense-client/internal/api"
	"github.com/dvcrn/expense-client/internal/credentials"
)

type sessionStatus struct {
	Authenticated bool              `json:"authenticated"`
	Expired       bool              `json:"expired"`
	Refreshing    bool              `json:"refreshing"`
	User          *credentials.User `json:"user,omitempty"`
}

// sessionHandler reports (GET), opens (POST) and closes (DELETE) the stored session.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.sessionStatusHandler(w, r)
	case http.MethodPost:
		s.sessionLoginHandler(w, r)
	case http.MethodDelete:
		s.sessionLogoutHandler(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) sessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authenticated, err := s.auth.IsAuthenticated(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read session")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "failed to read session", StatusCode: http.StatusInternalServerError})
		return
	}
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read stored user")
	}

	writeJSON(w, http.StatusOK, sessionStatus{
		Authenticated: authenticated,
		Expired:       s.expired.Load(),
		Refreshing:    s.upstream.Refreshing(),
		User:          user,
	})
}

func (s *Server) sessionLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error().Err(err).Msg("Error unmarshalling request body")
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body", StatusCode: http.StatusBadRequest})
		return
	}

	data, err := s.auth.Login(r.Context(), req)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			s.logger.Warn().Int("status", apiErr.StatusCode).Msg("Login rejected by backend")
			writeJSON(w, apiErr.StatusCode, errorResponse{Message: apiErr.Message, StatusCode: apiErr.StatusCode})
			return
		}
		s.logger.Error().Err(err).Msg("Login failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "login failed", StatusCode: http.StatusBadGateway})
		return
	}

	s.expired.Store(false)
	event := s.logger.Info()
	if data.User != nil {
		event = event.Str("user", data.User.Username)
	}
	event.Msg("✅ Logged in")
	writeJSON(w, http.StatusOK, sessionStatus{Authenticated: true, User: data.User})
}

func (s *Server) sessionLogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear session")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "failed to clear session", StatusCode: http.StatusInternalServerError})
		return
	}
	s.logger.Info().Msg("Session cleared")
	w.WriteHeader(http.StatusNoContent)
}
