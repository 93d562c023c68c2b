package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/worldwire/internal/models"
)

// CreateSessionRequest creates a new simulation session.
type CreateSessionRequest struct {
	Mode      models.GameMode `json:"mode"`
	Seed      *int64          `json:"seed,omitempty"`
	StartDate *time.Time      `json:"start_date,omitempty"`
}

// SubmitActionRequest enqueues a player action for the next commit.
type SubmitActionRequest struct {
	PlayerID   string         `json:"player_id"`
	Type       string         `json:"type"`
	TargetID   string         `json:"target_id,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// PatchCountryRequest sets one or more fields on a country outside the tick
// cycle. Nil fields are left untouched.
type PatchCountryRequest struct {
	Faction *string  `json:"faction,omitempty"`
	Morale  *float64 `json:"morale,omitempty"`
}

// ActionAck acknowledges an enqueued action.
type ActionAck struct {
	ActionID  uuid.UUID `json:"action_id"`
	SessionID uuid.UUID `json:"session_id"`
	Queued    int       `json:"queued"`
}
