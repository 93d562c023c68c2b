package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/engine"
	"github.com/mcdev12/worldwire/internal/events"
	"github.com/mcdev12/worldwire/internal/models"
	"github.com/mcdev12/worldwire/internal/narrative"
)

// Baseline is what the app needs from the world data service.
type Baseline interface {
	AllCountries() []models.Country
}

// App implements the session store operations: create, advance, patch,
// query. Mutating operations on one session are serialized by that
// session's mutex; different sessions proceed concurrently.
//
// Event ordering: envelopes are enqueued on outCh while the session lock is
// still held, and a single dispatch goroutine drains the channel FIFO, so
// subscribers observe one session's events in production order.
type App struct {
	registry  *Registry
	baseline  Baseline
	generator narrative.Generator
	publisher events.Publisher

	narrativeTimeout time.Duration
	outCh            chan events.Envelope
}

// NewApp creates the session app. generator may be nil (headlines always
// empty); publisher may be nil (events dropped, useful in tests).
func NewApp(registry *Registry, baseline Baseline, generator narrative.Generator, publisher events.Publisher, narrativeTimeout time.Duration) *App {
	if narrativeTimeout <= 0 {
		narrativeTimeout = 10 * time.Second
	}
	return &App{
		registry:         registry,
		baseline:         baseline,
		generator:        generator,
		publisher:        publisher,
		narrativeTimeout: narrativeTimeout,
		outCh:            make(chan events.Envelope, 1024),
	}
}

// Run drains the outbound event queue until the context is cancelled.
func (a *App) Run(ctx context.Context) {
	log.Info().Msg("session event dispatcher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session event dispatcher shutting down")
			return
		case envelope := <-a.outCh:
			if a.publisher != nil {
				a.publisher.Publish(envelope)
			}
		}
	}
}

// Registry exposes the underlying registry (autopilot, diagnostics).
func (a *App) Registry() *Registry {
	return a.registry
}

// CreateSession allocates a fresh session with a seeded starting world.
// Fails only with ErrResourceExhausted.
func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	start := time.Now().Truncate(24 * time.Hour)
	if req.StartDate != nil {
		start = *req.StartDate
	}
	mode := req.Mode
	if mode == "" {
		mode = models.GameModeSinglePlayer
	}

	session := &models.Session{
		ID:        uuid.New(),
		Mode:      mode,
		Status:    models.SessionStatusActive,
		Seed:      seed,
		World:     engine.Generate(seed, a.baseline.AllCountries(), start),
		CreatedAt: time.Now(),
	}

	// The world generator consumed the seed; the per-session RNG driving
	// later ticks is derived from it so equal seeds stay deterministic.
	if err := a.registry.add(session, rand.New(rand.NewSource(seed+1))); err != nil {
		return nil, err
	}

	a.emit(session.ID, events.TypeSessionCreated, events.SessionCreatedPayload{
		SessionID: session.ID,
		Mode:      session.Mode,
		CreatedAt: session.CreatedAt,
	})

	log.Info().
		Str("session_id", session.ID.String()).
		Str("mode", string(session.Mode)).
		Int64("seed", seed).
		Int("countries", len(session.World.Countries)).
		Msg("session created")

	snapshot := cloneSession(session)
	return &snapshot, nil
}

// SubmitAction enqueues an action for the next commit. No world state is
// mutated until CommitTurn runs.
func (a *App) SubmitAction(ctx context.Context, sessionID uuid.UUID, req SubmitActionRequest) (*ActionAck, error) {
	e, err := a.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	action := models.Action{
		ID:          uuid.New(),
		PlayerID:    req.PlayerID,
		Type:        req.Type,
		TargetID:    req.TargetID,
		Parameters:  req.Parameters,
		SubmittedAt: time.Now(),
	}

	e.mu.Lock()
	e.pending = append(e.pending, action)
	queued := len(e.pending)
	e.mu.Unlock()

	return &ActionAck{ActionID: action.ID, SessionID: sessionID, Queued: queued}, nil
}

// CommitTurn applies all queued actions in submission order, advances the
// tick, and returns the diff. The WORLD_DIFF event is emitted before the
// narrative call so world-state visibility never waits on headline latency;
// headlines follow as a NEWS_BATCH and on the returned diff.
func (a *App) CommitTurn(ctx context.Context, sessionID uuid.UUID) (*models.Diff, error) {
	return a.advance(ctx, sessionID, true)
}

// Tick advances simulated time by one unit irrespective of pending actions
// (observer mode). The pending queue is left untouched.
func (a *App) Tick(ctx context.Context, sessionID uuid.UUID) (*models.Diff, error) {
	return a.advance(ctx, sessionID, false)
}

func (a *App) advance(ctx context.Context, sessionID uuid.UUID, consumeActions bool) (*models.Diff, error) {
	e, err := a.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	var actions []models.Action
	if consumeActions {
		actions = e.pending
		e.pending = nil
	}
	diff := engine.Advance(&e.session.World, actions, e.rng, time.Now())
	world := cloneWorld(e.session.World)
	a.emit(sessionID, events.TypeWorldDiff, diff)
	e.mu.Unlock()

	headlines, err := a.enrich(ctx, diff, world)
	if err != nil {
		log.Warn().
			Err(err).
			Int("tick", diff.Tick).
			Msg("continuing without headlines")
	}
	diff.Headlines = headlines
	if len(diff.Headlines) > 0 {
		a.emit(sessionID, events.TypeNewsBatch, events.NewsBatchPayload{
			Tick:      diff.Tick,
			Headlines: diff.Headlines,
		})
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Int("tick", diff.Tick).
		Int("actions", len(actions)).
		Int("headlines", len(diff.Headlines)).
		Msg("session advanced")

	return &diff, nil
}

// enrich asks the narrative generator for headlines with a bounded timeout.
// Any failure degrades to an empty list and ErrNarrativeUnavailable; a
// commit never fails on narrative.
func (a *App) enrich(ctx context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error) {
	if a.generator == nil {
		return []models.Headline{}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, a.narrativeTimeout)
	defer cancel()

	headlines, err := a.generator.Headlines(callCtx, diff, world)
	if err != nil {
		return []models.Headline{}, fmt.Errorf("%w: %v", ErrNarrativeUnavailable, err)
	}
	if headlines == nil {
		headlines = []models.Headline{}
	}
	return headlines, nil
}

// PatchCountry directly sets fields on a country's state outside the tick
// cycle. All provided fields apply atomically; a BORDER_UPDATE is emitted
// in mutation order.
func (a *App) PatchCountry(ctx context.Context, sessionID uuid.UUID, countryID string, req PatchCountryRequest) error {
	e, err := a.registry.get(sessionID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	country, ok := e.session.World.Countries[countryID]
	if !ok {
		return ErrCountryNotFound
	}

	patch := models.CountryPatch{CountryID: countryID}
	if req.Faction != nil {
		faction := models.ParseFaction(*req.Faction)
		country.Faction = faction
		patch.Faction = &faction
	}
	if req.Morale != nil {
		morale := models.ClampMorale(*req.Morale)
		country.Morale = morale
		patch.Morale = &morale
	}
	e.session.World.Countries[countryID] = country

	dist := make(map[models.Faction]int)
	for _, c := range e.session.World.Countries {
		dist[c.Faction]++
	}
	e.session.World.BlocDistribution = dist

	a.emit(sessionID, events.TypeBorderUpdate, events.BorderUpdatePayload{
		CountryID: countryID,
		Updates:   patch,
	})
	return nil
}

// State returns a snapshot of the session for reconnect flows. Subscribers
// receive no diff backlog, so clients re-fetch current state out of band.
func (a *App) State(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	e, err := a.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := cloneSession(e.session)
	return &snapshot, nil
}

// Discard drops the session and its pending actions. Discarding an unknown
// id is a no-op.
func (a *App) Discard(ctx context.Context, sessionID uuid.UUID) {
	a.registry.Discard(sessionID)
	log.Info().Str("session_id", sessionID.String()).Msg("session discarded")
}

// emit wraps a payload and enqueues it for dispatch. A full queue drops the
// event rather than blocking a session lock holder.
func (a *App) emit(sessionID uuid.UUID, typ events.Type, payload any) {
	envelope, err := events.NewEnvelope(sessionID, typ, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to build event envelope")
		return
	}

	select {
	case a.outCh <- envelope:
	default:
		log.Warn().
			Str("session_id", sessionID.String()).
			Str("event_type", string(typ)).
			Msg("event queue full, dropping event")
	}
}

// cloneWorld deep-copies the mutable collections so readers outside the
// session lock never observe in-place mutation.
func cloneWorld(world models.WorldState) models.WorldState {
	cloned := world
	cloned.Countries = make(map[string]models.Country, len(world.Countries))
	for id, c := range world.Countries {
		cloned.Countries[id] = c
	}
	cloned.Units = make(map[string]models.Unit, len(world.Units))
	for id, u := range world.Units {
		cloned.Units[id] = u
	}
	cloned.BlocDistribution = make(map[models.Faction]int, len(world.BlocDistribution))
	for f, n := range world.BlocDistribution {
		cloned.BlocDistribution[f] = n
	}
	return cloned
}

func cloneSession(session *models.Session) models.Session {
	cloned := *session
	cloned.World = cloneWorld(session.World)
	return cloned
}
