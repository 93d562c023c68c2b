package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/mcdev12/worldwire/internal/events"
	"github.com/mcdev12/worldwire/internal/models"
	"github.com/mcdev12/worldwire/internal/narrative"
)

type fakeBaseline struct{}

func (fakeBaseline) AllCountries() []models.Country {
	return []models.Country{
		{ID: "US", Name: "United States", Faction: models.FactionNATO, Morale: 0.8},
		{ID: "FR", Name: "France", Faction: models.FactionNATO, Morale: 0.7},
		{ID: "RU", Name: "Russia", Faction: models.FactionRussiaBloc, Morale: 0.6},
		{ID: "BR", Name: "Brazil", Faction: models.FactionNeutral, Morale: 0.5},
	}
}

type recordingPublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (r *recordingPublisher) Publish(envelope events.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envelopes = append(r.envelopes, envelope)
}

func (r *recordingPublisher) snapshot() []events.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Envelope, len(r.envelopes))
	copy(out, r.envelopes)
	return out
}

// waitForType polls until at least n envelopes of the given type arrived.
func (r *recordingPublisher) waitForType(t *testing.T, typ events.Type, n int) []events.Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var matched []events.Envelope
		for _, e := range r.snapshot() {
			if e.Type == typ {
				matched = append(matched, e)
			}
		}
		if len(matched) >= n {
			return matched
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d envelopes of type %s", n, typ)
	return nil
}

func newTestApp(t *testing.T, generator narrative.Generator, capacity int) (*App, *recordingPublisher) {
	t.Helper()
	recorder := &recordingPublisher{}
	app := NewApp(NewRegistry(capacity), fakeBaseline{}, generator, recorder, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go app.Run(ctx)

	return app, recorder
}

func seedOf(v int64) *int64 { return &v }

func TestCreateSessionDeterministicForEqualSeeds(t *testing.T) {
	app, _ := newTestApp(t, nil, 0)
	ctx := context.Background()

	a, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(99)})
	if err != nil {
		t.Fatal(err)
	}
	b, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(99)})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.World.Units, b.World.Units) {
		t.Fatal("equal seeds produced different starting units")
	}
	if a.ID == b.ID {
		t.Fatal("sessions must have distinct ids")
	}
}

func TestCreateSessionCapacity(t *testing.T) {
	app, _ := newTestApp(t, nil, 1)
	ctx := context.Background()

	if _, err := app.CreateSession(ctx, CreateSessionRequest{}); err != nil {
		t.Fatal(err)
	}
	if _, err := app.CreateSession(ctx, CreateSessionRequest{}); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("expected ErrResourceExhausted, got %v", err)
	}
}

func TestCommitTurnNoActions(t *testing.T) {
	app, recorder := newTestApp(t, nil, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	diff, err := app.CommitTurn(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff.Tick != 1 {
		t.Fatalf("expected tick 1, got %d", diff.Tick)
	}
	if len(diff.CountryPatches) != 0 {
		t.Fatalf("expected no patches, got %d", len(diff.CountryPatches))
	}
	if diff.Headlines == nil || len(diff.Headlines) != 0 {
		t.Fatalf("expected empty headlines, got %v", diff.Headlines)
	}

	published := recorder.waitForType(t, events.TypeWorldDiff, 1)
	var wire models.Diff
	if err := json.Unmarshal(published[0].Payload, &wire); err != nil {
		t.Fatal(err)
	}
	if wire.Tick != 1 {
		t.Fatalf("published diff tick %d, want 1", wire.Tick)
	}
}

func TestCommitTurnAppliesQueuedActionsInOrder(t *testing.T) {
	app, _ := newTestApp(t, nil, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	for _, faction := range []string{"NATO", "CHINA_BLOC"} {
		_, err := app.SubmitAction(ctx, created.ID, SubmitActionRequest{
			PlayerID:   "p1",
			Type:       "assign_faction",
			TargetID:   "BR",
			Parameters: map[string]any{"faction": faction},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	diff, err := app.CommitTurn(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(diff.CountryPatches) != 1 {
		t.Fatalf("expected one accumulated patch, got %d", len(diff.CountryPatches))
	}
	if got := *diff.CountryPatches[0].Faction; got != models.FactionChinaBloc {
		t.Fatalf("last action should win, got %q", got)
	}

	// The queue drains on commit.
	second, err := app.CommitTurn(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.CountryPatches) != 0 {
		t.Fatalf("queue not drained, second commit carries %d patches", len(second.CountryPatches))
	}
}

func TestConcurrentCommitsSerialize(t *testing.T) {
	app, _ := newTestApp(t, nil, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	const commits = 2
	ticks := make(chan int, commits)
	var wg sync.WaitGroup
	for i := 0; i < commits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			diff, err := app.CommitTurn(ctx, created.ID)
			if err != nil {
				t.Error(err)
				return
			}
			ticks <- diff.Tick
		}()
	}
	wg.Wait()
	close(ticks)

	seen := map[int]bool{}
	for tick := range ticks {
		if seen[tick] {
			t.Fatalf("duplicate tick %d: serialization violated", tick)
		}
		seen[tick] = true
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("expected ticks 1 and 2, got %v", seen)
	}
}

func TestPatchCountryLastWriteWins(t *testing.T) {
	app, recorder := newTestApp(t, nil, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	factions := []string{"NATO", "EU", "CHINA_BLOC", "RUSSIA_BLOC", "NEUTRAL"}
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f := factions[i%len(factions)]
			if err := app.PatchCountry(ctx, created.ID, "FR", PatchCountryRequest{Faction: &f}); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	// Mutation order equals publish order, so the last BORDER_UPDATE names
	// the faction the store must hold.
	updates := recorder.waitForType(t, events.TypeBorderUpdate, 25)
	var last events.BorderUpdatePayload
	if err := json.Unmarshal(updates[len(updates)-1].Payload, &last); err != nil {
		t.Fatal(err)
	}
	if last.Updates.Faction == nil {
		t.Fatal("last border update carries no faction")
	}

	state, err := app.State(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := state.World.Countries["FR"].Faction; got != *last.Updates.Faction {
		t.Fatalf("final faction %q does not match last published update %q", got, *last.Updates.Faction)
	}
}

func TestPatchCountryErrors(t *testing.T) {
	app, _ := newTestApp(t, nil, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	f := "NATO"
	if err := app.PatchCountry(ctx, created.ID, "XX", PatchCountryRequest{Faction: &f}); !errors.Is(err, ErrCountryNotFound) {
		t.Fatalf("expected ErrCountryNotFound, got %v", err)
	}

	unknown := created.ID
	app.Discard(ctx, created.ID)
	if err := app.PatchCountry(ctx, unknown, "FR", PatchCountryRequest{Faction: &f}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSubmitActionUnknownSession(t *testing.T) {
	app, _ := newTestApp(t, nil, 0)

	created, err := app.CreateSession(context.Background(), CreateSessionRequest{})
	if err != nil {
		t.Fatal(err)
	}
	app.Discard(context.Background(), created.ID)

	_, err = app.SubmitAction(context.Background(), created.ID, SubmitActionRequest{Type: "support", TargetID: "FR"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCommitTurnNarrativeFailureYieldsEmptyHeadlines(t *testing.T) {
	failing := narrative.GeneratorFunc(func(ctx context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error) {
		return nil, fmt.Errorf("generator offline")
	})
	app, _ := newTestApp(t, failing, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	diff, err := app.CommitTurn(ctx, created.ID)
	if err != nil {
		t.Fatalf("narrative failure must not fail the commit: %v", err)
	}
	if diff.Tick != 1 {
		t.Fatalf("diff tick %d, want 1", diff.Tick)
	}
	if diff.Headlines == nil || len(diff.Headlines) != 0 {
		t.Fatalf("expected empty headlines, got %v", diff.Headlines)
	}
}

func TestEnrichWrapsGeneratorFailures(t *testing.T) {
	failing := narrative.GeneratorFunc(func(ctx context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error) {
		return nil, fmt.Errorf("generator offline")
	})
	app, _ := newTestApp(t, failing, 0)

	headlines, err := app.enrich(context.Background(), models.Diff{Tick: 1}, models.WorldState{})
	if !errors.Is(err, ErrNarrativeUnavailable) {
		t.Fatalf("expected ErrNarrativeUnavailable, got %v", err)
	}
	if headlines == nil || len(headlines) != 0 {
		t.Fatalf("expected empty headlines, got %v", headlines)
	}
}

func TestNewsBatchFollowsWorldDiff(t *testing.T) {
	gen := narrative.GeneratorFunc(func(ctx context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error) {
		return []models.Headline{{Title: "Tensions rise", Severity: models.SeverityMedium}}, nil
	})
	app, recorder := newTestApp(t, gen, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	diff, err := app.CommitTurn(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(diff.Headlines) != 1 {
		t.Fatalf("expected the headline on the returned diff, got %v", diff.Headlines)
	}

	recorder.waitForType(t, events.TypeNewsBatch, 1)
	var diffIdx, newsIdx int
	for i, e := range recorder.snapshot() {
		switch e.Type {
		case events.TypeWorldDiff:
			diffIdx = i
		case events.TypeNewsBatch:
			newsIdx = i
		}
	}
	if newsIdx < diffIdx {
		t.Fatal("NEWS_BATCH delivered before its WORLD_DIFF")
	}
}

func TestTickKeepsPendingActions(t *testing.T) {
	app, _ := newTestApp(t, nil, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	f := "EU"
	if _, err := app.SubmitAction(ctx, created.ID, SubmitActionRequest{
		Type: "assign_faction", TargetID: "BR", Parameters: map[string]any{"faction": f},
	}); err != nil {
		t.Fatal(err)
	}

	tickDiff, err := app.Tick(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tickDiff.CountryPatches) != 0 {
		t.Fatal("tick must not consume queued actions")
	}

	commitDiff, err := app.CommitTurn(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(commitDiff.CountryPatches) != 1 {
		t.Fatalf("queued action lost across tick, patches %d", len(commitDiff.CountryPatches))
	}
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	app, _ := newTestApp(t, nil, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{Seed: seedOf(1)})
	if err != nil {
		t.Fatal(err)
	}

	snapshot, err := app.State(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}

	mutated := snapshot.World.Countries["FR"]
	mutated.Faction = models.FactionChinaBloc
	snapshot.World.Countries["FR"] = mutated

	fresh, err := app.State(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.World.Countries["FR"].Faction != models.FactionNATO {
		t.Fatal("mutating a snapshot leaked into the store")
	}
}

func TestDiscardRemovesSession(t *testing.T) {
	app, _ := newTestApp(t, nil, 0)
	ctx := context.Background()

	created, err := app.CreateSession(ctx, CreateSessionRequest{})
	if err != nil {
		t.Fatal(err)
	}

	app.Discard(ctx, created.ID)

	if _, err := app.State(ctx, created.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after discard, got %v", err)
	}
	if app.Registry().Len() != 0 {
		t.Fatalf("registry still holds %d sessions", app.Registry().Len())
	}
}
