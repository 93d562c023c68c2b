package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/worldwire/internal/models"
)

// Type tags the messages relayed to session subscribers. Consumers dispatch
// on the tag and must ignore unknown values.
type Type string

const (
	TypeWorldDiff      Type = "WORLD_DIFF"
	TypeBorderUpdate   Type = "BORDER_UPDATE"
	TypeNewsBatch      Type = "NEWS_BATCH"
	TypeSessionCreated Type = "SESSION_CREATED"
)

// Envelope is the wire shape of every session event.
type Envelope struct {
	EventID   uuid.UUID       `json:"event_id"`
	SessionID uuid.UUID       `json:"session_id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// BorderUpdatePayload notifies subscribers that one country's state changed
// outside the tick cycle.
type BorderUpdatePayload struct {
	CountryID string              `json:"country_id"`
	Updates   models.CountryPatch `json:"updates"`
}

// NewsBatchPayload delivers headlines generated for a prior diff.
type NewsBatchPayload struct {
	Tick      int               `json:"tick"`
	Headlines []models.Headline `json:"headlines"`
}

// SessionCreatedPayload announces a fresh session.
type SessionCreatedPayload struct {
	SessionID uuid.UUID       `json:"session_id"`
	Mode      models.GameMode `json:"mode"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEnvelope wraps a payload struct into an addressed envelope.
func NewEnvelope(sessionID uuid.UUID, typ Type, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:   uuid.New(),
		SessionID: sessionID,
		Type:      typ,
		Timestamp: time.Now(),
		Payload:   raw,
	}, nil
}

// Publisher delivers session events to whatever relay is configured:
// the in-process gateway, a JetStream subject, or both.
type Publisher interface {
	Publish(envelope Envelope)
}

// MultiPublisher fans a publish out to several publishers in order.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(envelope Envelope) {
	for _, p := range m {
		p.Publish(envelope)
	}
}
