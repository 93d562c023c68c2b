// Package autopilot advances observer-mode sessions on a fixed cadence so
// a session with no players still produces a stream of world diffs.
package autopilot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/models"
)

// Ticker is the slice of the session app the autopilot drives.
type Ticker interface {
	Tick(ctx context.Context, sessionID uuid.UUID) (*models.Diff, error)
}

// Lister enumerates live sessions by mode.
type Lister interface {
	SessionsByMode(mode models.GameMode) []uuid.UUID
}

// Config holds autopilot settings.
type Config struct {
	Interval   time.Duration
	NumWorkers int
}

// DefaultConfig returns the default cadence: one simulated week every
// fifteen seconds of wall time, two workers.
func DefaultConfig() Config {
	return Config{
		Interval:   15 * time.Second,
		NumWorkers: 2,
	}
}

// Autopilot periodically sweeps observer sessions and enqueues each for a
// tick. A session already being ticked is skipped, so a slow narrative
// call never stacks concurrent ticks on one session.
type Autopilot struct {
	ticker     Ticker
	lister     Lister
	clock      clockwork.Clock
	interval   time.Duration
	numWorkers int

	workCh chan uuid.UUID

	inFlightMu sync.Mutex
	inFlight   map[uuid.UUID]bool
}

// New creates an autopilot. clock is injectable for tests; pass
// clockwork.NewRealClock() in production.
func New(ticker Ticker, lister Lister, clock clockwork.Clock, config Config) *Autopilot {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = DefaultConfig().NumWorkers
	}
	return &Autopilot{
		ticker:     ticker,
		lister:     lister,
		clock:      clock,
		interval:   config.Interval,
		numWorkers: config.NumWorkers,
		workCh:     make(chan uuid.UUID, 64),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Run sweeps until the context is cancelled.
func (a *Autopilot) Run(ctx context.Context) error {
	log.Info().
		Dur("interval", a.interval).
		Int("workers", a.numWorkers).
		Msg("autopilot started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < a.numWorkers; i++ {
		wg.Add(1)
		go a.worker(workerCtx, &wg, i)
	}

	ticker := a.clock.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("autopilot shutting down")
			cancelWorkers()
			wg.Wait()
			return nil
		case <-ticker.Chan():
			a.sweep()
		}
	}
}

// sweep enqueues every observer session not already in flight.
func (a *Autopilot) sweep() {
	sessionIDs := a.lister.SessionsByMode(models.GameModeObserver)
	for _, id := range sessionIDs {
		if !a.markInFlight(id) {
			continue
		}
		select {
		case a.workCh <- id:
		default:
			a.clearInFlight(id)
			log.Warn().Str("session_id", id.String()).Msg("autopilot work channel full, skipping tick")
		}
	}
}

func (a *Autopilot) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Int("worker_id", workerID).Msg("autopilot worker shutting down")
			return
		case sessionID := <-a.workCh:
			if _, err := a.ticker.Tick(ctx, sessionID); err != nil {
				log.Error().
					Err(err).
					Str("session_id", sessionID.String()).
					Int("worker_id", workerID).
					Msg("autopilot tick failed")
			}
			a.clearInFlight(sessionID)
		}
	}
}

func (a *Autopilot) markInFlight(id uuid.UUID) bool {
	a.inFlightMu.Lock()
	defer a.inFlightMu.Unlock()
	if a.inFlight[id] {
		return false
	}
	a.inFlight[id] = true
	return true
}

func (a *Autopilot) clearInFlight(id uuid.UUID) {
	a.inFlightMu.Lock()
	defer a.inFlightMu.Unlock()
	delete(a.inFlight, id)
}
