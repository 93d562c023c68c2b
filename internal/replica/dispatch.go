package replica

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/events"
	"github.com/mcdev12/worldwire/internal/models"
)

// HeadlineFunc receives the headlines of a NEWS_BATCH or WORLD_DIFF.
type HeadlineFunc func(headlines []models.Headline)

// Dispatcher routes incoming realtime frames to the store. Frames are the
// tagged envelopes the gateway broadcasts; frames with an unknown tag are
// dropped, never fatal, so old clients survive new server event types.
type Dispatcher struct {
	store       *Store
	onHeadlines HeadlineFunc
}

// NewDispatcher creates a dispatcher feeding the given store. onHeadlines
// may be nil.
func NewDispatcher(store *Store, onHeadlines HeadlineFunc) *Dispatcher {
	return &Dispatcher{store: store, onHeadlines: onHeadlines}
}

// Dispatch handles one raw frame from the realtime channel.
func (d *Dispatcher) Dispatch(frame []byte) {
	var envelope events.Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		log.Warn().Err(err).Msg("malformed realtime frame dropped")
		return
	}

	switch envelope.Type {
	case events.TypeWorldDiff:
		d.handleWorldDiff(envelope.Payload)
	case events.TypeBorderUpdate:
		d.handleBorderUpdate(envelope.Payload)
	case events.TypeNewsBatch:
		d.handleNewsBatch(envelope.Payload)
	case events.TypeSessionCreated:
		// Informational; nothing to apply.
	default:
		log.Debug().Str("event_type", string(envelope.Type)).Msg("ignoring unknown event type")
	}
}

func (d *Dispatcher) handleWorldDiff(payload json.RawMessage) {
	var diff models.Diff
	if err := json.Unmarshal(payload, &diff); err != nil {
		log.Warn().Err(err).Msg("malformed world diff dropped")
		return
	}

	d.store.ApplyPatches(diff.CountryPatches)
	if d.onHeadlines != nil && len(diff.Headlines) > 0 {
		d.onHeadlines(diff.Headlines)
	}
}

func (d *Dispatcher) handleBorderUpdate(payload json.RawMessage) {
	var update events.BorderUpdatePayload
	if err := json.Unmarshal(payload, &update); err != nil {
		log.Warn().Err(err).Msg("malformed border update dropped")
		return
	}

	d.store.ApplyUpdate(update.CountryID, FeatureUpdate{
		Faction: update.Updates.Faction,
		Morale:  update.Updates.Morale,
	})
}

func (d *Dispatcher) handleNewsBatch(payload json.RawMessage) {
	var batch events.NewsBatchPayload
	if err := json.Unmarshal(payload, &batch); err != nil {
		log.Warn().Err(err).Msg("malformed news batch dropped")
		return
	}

	if d.onHeadlines != nil && len(batch.Headlines) > 0 {
		d.onHeadlines(batch.Headlines)
	}
}
