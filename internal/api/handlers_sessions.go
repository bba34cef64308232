package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/smukkama/factory-monitor/internal/auth"
	"github.com/smukkama/factory-monitor/internal/database"
)

type sessionResponse struct {
	Session     auth.Session      `json:"session"`
	Permissions []auth.Permission `json:"permissions"`
}

func newSessionResponse(s auth.Session) sessionResponse {
	return sessionResponse{Session: s, Permissions: auth.Permissions(s.Role())}
}

func (a *API) handleRolePermissions(w http.ResponseWriter, r *http.Request) {
	role, err := auth.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"role":        role,
		"permissions": auth.Permissions(role),
	})
}

// handleCheckPermission answers for any role and action; unknown ones are
// simply not allowed
func (a *API) handleCheckPermission(w http.ResponseWriter, r *http.Request) {
	role := database.Role(chi.URLParam(r, "role"))
	action := auth.Permission(chi.URLParam(r, "action"))
	respondJSON(w, http.StatusOK, map[string]any{
		"role":    role,
		"action":  action,
		"allowed": auth.HasPermission(role, action),
	})
}

func (a *API) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role database.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	session, err := a.sessions.Start(req.Role)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	sessionsActive.Set(float64(a.sessions.Count()))

	log.Info().Str("session_id", session.ID).Str("role", string(session.Role())).Msg("session started")
	respondJSON(w, http.StatusCreated, newSessionResponse(session))
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		respondError(w, http.StatusNotFound, auth.ErrSessionNotFound)
		return
	}
	respondJSON(w, http.StatusOK, newSessionResponse(session))
}

func (a *API) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role database.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Role == "" {
		respondError(w, http.StatusBadRequest, errors.New("role is required"))
		return
	}

	session, err := a.sessions.SwitchRole(chi.URLParam(r, "sessionID"), req.Role)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	log.Info().Str("session_id", session.ID).Str("role", string(session.Role())).Msg("session role switched")
	respondJSON(w, http.StatusOK, newSessionResponse(session))
}

func (a *API) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.End(chi.URLParam(r, "sessionID")); err != nil {
		respondSessionError(w, err)
		return
	}
	sessionsActive.Set(float64(a.sessions.Count()))
	w.WriteHeader(http.StatusNoContent)
}

func respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, auth.ErrUnknownRole):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, auth.ErrNoUserForRole):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, auth.ErrMaxSessionsReached):
		respondError(w, http.StatusServiceUnavailable, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
