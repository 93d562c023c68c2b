package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/models"
	"github.com/mcdev12/worldwire/internal/session"
)

// StateProvider defines what the gateway needs to serve session snapshots
// for reconnect flows.
type StateProvider interface {
	State(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
}

// SessionStateResponse is the full snapshot a reconnecting client loads
// before resuming incremental updates.
type SessionStateResponse struct {
	SessionID     string           `json:"session_id"`
	Mode          string           `json:"mode"`
	Status        string           `json:"status"`
	Tick          int              `json:"tick"`
	CurrentDate   time.Time        `json:"current_date"`
	GlobalTension int              `json:"global_tension"`
	Countries     []models.Country `json:"countries"`
	Units         []models.Unit    `json:"units"`
	Blocs         map[string]int   `json:"bloc_distribution"`
	CreatedAt     time.Time        `json:"created_at"`
}

// StateHandler handles HTTP requests for session state
type StateHandler struct {
	stateProvider StateProvider
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{
		stateProvider: provider,
	}
}

// SetProvider installs the snapshot source. The session store publishes
// through the gateway, so the provider is wired after both exist.
func (h *StateHandler) SetProvider(provider StateProvider) {
	h.stateProvider = provider
}

// HandleGetSessionState handles GET /api/sessions/{id}/state
func (h *StateHandler) HandleGetSessionState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionIDStr := extractSessionIDFromPath(r.URL.Path)
	if sessionIDStr == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		http.Error(w, "Invalid session ID format", http.StatusBadRequest)
		return
	}

	if h.stateProvider == nil {
		http.Error(w, "state provider not configured", http.StatusServiceUnavailable)
		return
	}

	snapshot, err := h.stateProvider.State(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to get session state")
		http.Error(w, "Failed to get session state", http.StatusInternalServerError)
		return
	}

	response := buildStateResponse(snapshot)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("failed to encode session state response")
	}
}

func buildStateResponse(snapshot *models.Session) SessionStateResponse {
	countries := make([]models.Country, 0, len(snapshot.World.Countries))
	for _, c := range snapshot.World.Countries {
		countries = append(countries, c)
	}
	units := make([]models.Unit, 0, len(snapshot.World.Units))
	for _, u := range snapshot.World.Units {
		units = append(units, u)
	}
	blocs := make(map[string]int, len(snapshot.World.BlocDistribution))
	for faction, count := range snapshot.World.BlocDistribution {
		blocs[string(faction)] = count
	}

	return SessionStateResponse{
		SessionID:     snapshot.ID.String(),
		Mode:          string(snapshot.Mode),
		Status:        string(snapshot.Status),
		Tick:          snapshot.World.Tick,
		CurrentDate:   snapshot.World.CurrentDate,
		GlobalTension: snapshot.World.GlobalTension,
		Countries:     countries,
		Units:         units,
		Blocs:         blocs,
		CreatedAt:     snapshot.CreatedAt,
	}
}

// extractSessionIDFromPath extracts the id from /api/sessions/{id}/state
func extractSessionIDFromPath(path string) string {
	const prefix = "/api/sessions/"
	const suffix = "/state"

	if len(path) <= len(prefix)+len(suffix) {
		return ""
	}

	if path[:len(prefix)] != prefix || path[len(path)-len(suffix):] != suffix {
		return ""
	}

	return path[len(prefix) : len(path)-len(suffix)]
}
