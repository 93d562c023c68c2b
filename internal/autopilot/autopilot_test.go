package autopilot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/worldwire/internal/models"
)

type fakeTicker struct {
	mu      sync.Mutex
	calls   map[uuid.UUID]int
	ticked  chan uuid.UUID
	blockCh chan struct{} // when set, Tick blocks until closed
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{
		calls:  make(map[uuid.UUID]int),
		ticked: make(chan uuid.UUID, 64),
	}
}

func (f *fakeTicker) Tick(ctx context.Context, sessionID uuid.UUID) (*models.Diff, error) {
	f.mu.Lock()
	f.calls[sessionID]++
	block := f.blockCh
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	f.ticked <- sessionID
	return &models.Diff{}, nil
}

func (f *fakeTicker) callCount(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type fakeLister struct {
	ids []uuid.UUID
}

func (f *fakeLister) SessionsByMode(mode models.GameMode) []uuid.UUID {
	if mode != models.GameModeObserver {
		return nil
	}
	return f.ids
}

func waitTicked(t *testing.T, ticker *fakeTicker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ticker.ticked:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for tick %d of %d", i+1, n)
		}
	}
}

func TestAutopilotTicksObserverSessions(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	ticker := newFakeTicker()
	clock := clockwork.NewFakeClock()

	pilot := New(ticker, &fakeLister{ids: []uuid.UUID{a, b}}, clock, Config{Interval: 10 * time.Second, NumWorkers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pilot.Run(ctx)

	// Wait for Run to create its ticker before advancing.
	clock.BlockUntil(1)
	clock.Advance(10 * time.Second)

	waitTicked(t, ticker, 2)
	if ticker.callCount(a) != 1 || ticker.callCount(b) != 1 {
		t.Fatalf("expected one tick each, got a=%d b=%d", ticker.callCount(a), ticker.callCount(b))
	}
}

func TestAutopilotSkipsSessionsStillTicking(t *testing.T) {
	id := uuid.New()
	ticker := newFakeTicker()
	block := make(chan struct{})
	ticker.blockCh = block
	clock := clockwork.NewFakeClock()

	pilot := New(ticker, &fakeLister{ids: []uuid.UUID{id}}, clock, Config{Interval: 10 * time.Second, NumWorkers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pilot.Run(ctx)

	clock.BlockUntil(1)
	clock.Advance(10 * time.Second)

	// The first tick is now blocked in flight. Further sweeps must not
	// stack another tick for the same session.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if ticker.callCount(id) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	clock.Advance(10 * time.Second)
	clock.Advance(10 * time.Second)
	time.Sleep(50 * time.Millisecond)

	if got := ticker.callCount(id); got != 1 {
		t.Fatalf("in-flight session ticked %d times, want 1", got)
	}

	close(block)
	waitTicked(t, ticker, 1)

	// With the first tick finished, subsequent sweeps pick the session up
	// again. Advance repeatedly in case the in-flight flag clears between
	// sweeps.
	deadline = time.Now().Add(2 * time.Second)
	for ticker.callCount(id) < 2 && time.Now().Before(deadline) {
		clock.Advance(10 * time.Second)
		time.Sleep(10 * time.Millisecond)
	}
	if got := ticker.callCount(id); got != 2 {
		t.Fatalf("expected a second tick after completion, got %d", got)
	}
}
