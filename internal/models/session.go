package models

import (
	"time"

	"github.com/google/uuid"
)

// GameMode selects how a session advances.
type GameMode string

const (
	GameModeSinglePlayer GameMode = "singleplayer"
	GameModeMultiplayer  GameMode = "multiplayer"
	GameModeObserver     GameMode = "observer"
)

// SessionStatus defines the lifecycle state of a session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusDiscarded SessionStatus = "DISCARDED"
)

// WorldState is the complete simulation state owned by the session store.
type WorldState struct {
	Tick             int                `json:"tick"`
	CurrentDate      time.Time          `json:"current_date"`
	Countries        map[string]Country `json:"countries"`
	Units            map[string]Unit    `json:"units"`
	GlobalTension    int                `json:"global_tension"`
	BlocDistribution map[Faction]int    `json:"bloc_distribution"`
}

// Action is a queued player command, applied at the next commit in
// submission order.
type Action struct {
	ID          uuid.UUID      `json:"id"`
	PlayerID    string         `json:"player_id"`
	Type        string         `json:"type"`
	TargetID    string         `json:"target_id,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Session is one running simulation instance.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	Mode      GameMode      `json:"mode"`
	Status    SessionStatus `json:"status"`
	Seed      int64         `json:"seed"`
	World     WorldState    `json:"world"`
	CreatedAt time.Time     `json:"created_at"`
}
