package replica

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/mcdev12/worldwire/internal/events"
	"github.com/mcdev12/worldwire/internal/models"
)

func frame(t *testing.T, typ events.Type, payload any) []byte {
	t.Helper()
	envelope, err := events.NewEnvelope(uuid.New(), typ, payload)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestDispatchBorderUpdate(t *testing.T) {
	store := NewStore()
	store.Load(testFeatures())
	d := NewDispatcher(store, nil)

	f := models.FactionEU
	d.Dispatch(frame(t, events.TypeBorderUpdate, events.BorderUpdatePayload{
		CountryID: "BR",
		Updates:   models.CountryPatch{CountryID: "BR", Faction: &f},
	}))

	br, _ := store.Get("BR")
	if br.Faction != models.FactionEU {
		t.Fatalf("border update not applied, faction %q", br.Faction)
	}
}

func TestDispatchWorldDiffAppliesPatchesAndHeadlines(t *testing.T) {
	store := NewStore()
	store.Load(testFeatures())

	var received []models.Headline
	d := NewDispatcher(store, func(headlines []models.Headline) {
		received = append(received, headlines...)
	})

	morale := 0.9
	d.Dispatch(frame(t, events.TypeWorldDiff, models.Diff{
		Tick:           3,
		CountryPatches: []models.CountryPatch{{CountryID: "FR", Morale: &morale}},
		Headlines:      []models.Headline{{Title: "Ceasefire holds"}},
	}))

	fr, _ := store.Get("FR")
	if fr.Morale != 0.9 {
		t.Fatalf("diff patch not applied, morale %v", fr.Morale)
	}
	if len(received) != 1 || received[0].Title != "Ceasefire holds" {
		t.Fatalf("headlines not relayed: %v", received)
	}
}

func TestDispatchUnknownTagIgnored(t *testing.T) {
	store := NewStore()
	store.Load(testFeatures())
	d := NewDispatcher(store, nil)

	before := store.GetAll()

	d.Dispatch(frame(t, events.Type("FUTURE_EVENT"), map[string]string{"x": "y"}))
	d.Dispatch([]byte("not json at all"))

	if !reflect.DeepEqual(before, store.GetAll()) {
		t.Fatal("unknown or malformed frame mutated the store")
	}
}

func TestDispatchNewsBatch(t *testing.T) {
	store := NewStore()
	var received []models.Headline
	d := NewDispatcher(store, func(headlines []models.Headline) {
		received = append(received, headlines...)
	})

	d.Dispatch(frame(t, events.TypeNewsBatch, events.NewsBatchPayload{
		Tick:      5,
		Headlines: []models.Headline{{Title: "Summit announced"}, {Title: "Markets rally"}},
	}))

	if len(received) != 2 {
		t.Fatalf("expected 2 headlines, got %d", len(received))
	}
}
