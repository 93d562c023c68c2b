package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/gateway"
	"github.com/mcdev12/worldwire/internal/narrative"
	"github.com/mcdev12/worldwire/internal/session"
)

// SessionHandler exposes the session lifecycle over REST. The realtime
// channel lives on the gateway; this is the request/response side.
type SessionHandler struct {
	app     *session.App
	gateway *gateway.Service
	budget  *narrative.Budget
}

func NewSessionHandler(app *session.App, gw *gateway.Service, budget *narrative.Budget) *SessionHandler {
	return &SessionHandler{app: app, gateway: gw, budget: budget}
}

// RegisterRoutes registers the REST routes
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", h.handleSessions)
	mux.HandleFunc("/api/sessions/", h.handleSessionSubroutes)
	mux.HandleFunc("/api/narrative/usage", h.handleNarrativeUsage)
}

// handleSessions handles POST /api/sessions
func (h *SessionHandler) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// An empty body means all defaults.
	var req session.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.app.CreateSession(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleSessionSubroutes dispatches /api/sessions/{id}/... paths
func (h *SessionHandler) handleSessionSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}

	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.app.Discard(r.Context(), sessionID)
		w.WriteHeader(http.StatusNoContent)

	case len(parts) == 2 && parts[1] == "actions" && r.Method == http.MethodPost:
		h.handleSubmitAction(w, r, sessionID)

	case len(parts) == 2 && parts[1] == "commit" && r.Method == http.MethodPost:
		h.handleAdvance(w, r, sessionID, true)

	case len(parts) == 2 && parts[1] == "tick" && r.Method == http.MethodPost:
		h.handleAdvance(w, r, sessionID, false)

	case len(parts) == 2 && parts[1] == "state" && r.Method == http.MethodGet:
		h.gateway.HandleSessionState(w, r)

	case len(parts) == 3 && parts[1] == "countries" && r.Method == http.MethodPatch:
		h.handlePatchCountry(w, r, sessionID, parts[2])

	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) handleSubmitAction(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	var req session.SubmitActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid action payload", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		http.Error(w, "action type is required", http.StatusBadRequest)
		return
	}

	ack, err := h.app.SubmitAction(r.Context(), sessionID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ack)
}

func (h *SessionHandler) handleAdvance(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, commit bool) {
	var (
		diff interface{}
		err  error
	)
	if commit {
		diff, err = h.app.CommitTurn(r.Context(), sessionID)
	} else {
		diff, err = h.app.Tick(r.Context(), sessionID)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, diff)
}

func (h *SessionHandler) handlePatchCountry(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, countryID string) {
	var req session.PatchCountryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid patch payload", http.StatusBadRequest)
		return
	}
	if req.Faction == nil && req.Morale == nil {
		http.Error(w, "patch must set at least one field", http.StatusBadRequest)
		return
	}

	if err := h.app.PatchCountry(r.Context(), sessionID, countryID, req); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID.String(),
		"country_id": countryID,
		"status":     "applied",
	})
}

// handleNarrativeUsage handles GET /api/narrative/usage
func (h *SessionHandler) handleNarrativeUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.budget == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "narrative disabled"})
		return
	}

	summary, err := h.budget.Summary(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to read narrative usage")
		http.Error(w, "failed to read usage", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, session.ErrCountryNotFound):
		http.Error(w, "country not found", http.StatusNotFound)
	case errors.Is(err, session.ErrResourceExhausted):
		http.Error(w, "session capacity reached", http.StatusTooManyRequests)
	default:
		log.Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
