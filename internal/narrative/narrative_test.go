package narrative

import (
	"context"
	"testing"
	"time"

	"github.com/mcdev12/worldwire/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSpendAccumulatesPerDay(t *testing.T) {
	store := testStore(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	if err := store.RecordSpend(0.01, now); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordSpend(0.02, now); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordSpend(0.50, now.AddDate(0, 0, -3)); err != nil {
		t.Fatal(err)
	}

	today, err := store.SpentToday(now)
	if err != nil {
		t.Fatal(err)
	}
	if today < 0.029 || today > 0.031 {
		t.Fatalf("today's spend = %v, want 0.03", today)
	}

	month, err := store.SpentThisMonth(now)
	if err != nil {
		t.Fatal(err)
	}
	if month < 0.529 || month > 0.531 {
		t.Fatalf("month spend = %v, want 0.53", month)
	}
}

func TestStoreHeadlineCacheRoundTrip(t *testing.T) {
	store := testStore(t)
	now := time.Now()

	if _, ok := store.CachedHeadlines("k1"); ok {
		t.Fatal("unexpected cache hit")
	}

	in := []models.Headline{{Title: "Summit convenes", Severity: models.SeverityMedium}}
	if err := store.CacheHeadlines("k1", in, now); err != nil {
		t.Fatal(err)
	}

	out, ok := store.CachedHeadlines("k1")
	if !ok {
		t.Fatal("cache miss after store")
	}
	if len(out) != 1 || out[0].Title != "Summit convenes" {
		t.Fatalf("cached headlines corrupted: %v", out)
	}
}

func TestBudgetEnforcesDailyCap(t *testing.T) {
	store := testStore(t)
	budget := NewBudget(store, 0.05, 1.0)
	now := time.Now()

	if !budget.CanSpend(0.01, now) {
		t.Fatal("fresh budget should allow spend")
	}

	budget.Record(0.05, now)
	if budget.CanSpend(0.01, now) {
		t.Fatal("spend over the daily cap should be denied")
	}

	// A new day resets the daily window.
	tomorrow := now.AddDate(0, 0, 1)
	if !budget.CanSpend(0.01, tomorrow) {
		t.Fatal("next day should allow spend again")
	}
}

func TestBudgetEnforcesMonthlyCap(t *testing.T) {
	store := testStore(t)
	budget := NewBudget(store, 10.0, 0.10)
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	budget.Record(0.06, now)
	budget.Record(0.05, now.AddDate(0, 0, 1))

	if budget.CanSpend(0.01, now.AddDate(0, 0, 2)) {
		t.Fatal("spend over the monthly cap should be denied")
	}
	if !budget.CanSpend(0.01, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("next month should allow spend again")
	}
}

func TestFallbackHeadlinesMarkedSynthetic(t *testing.T) {
	g := NewFallbackGenerator()
	f := models.FactionNATO
	morale := 0.3

	diff := models.Diff{
		Tick:          4,
		GlobalTension: 80,
		CountryPatches: []models.CountryPatch{
			{CountryID: "FR", Faction: &f},
			{CountryID: "RU", Morale: &morale},
		},
		ProducedAt: time.Now(),
	}
	world := models.WorldState{Countries: map[string]models.Country{
		"FR": {ID: "FR", Name: "France"},
	}}

	headlines, err := g.Headlines(context.Background(), diff, world)
	if err != nil {
		t.Fatal(err)
	}
	if len(headlines) != 3 {
		t.Fatalf("expected 3 headlines (2 patches + tension brief), got %d", len(headlines))
	}
	for _, h := range headlines {
		if !h.Synthetic {
			t.Fatalf("fallback headline not marked synthetic: %+v", h)
		}
		if h.Source != SyntheticSource {
			t.Fatalf("fallback headline source = %q", h.Source)
		}
	}
	if headlines[0].Severity != models.SeverityHigh {
		t.Fatalf("faction realignment should be high severity, got %q", headlines[0].Severity)
	}
	if headlines[2].Severity != models.SeverityCritical {
		t.Fatalf("tension 80 should be critical, got %q", headlines[2].Severity)
	}
}

func TestParseHeadlinesSkipsMalformedLines(t *testing.T) {
	content := "NATO expands drills | FR | military | high | Exercises begin near the Baltic.\n" +
		"this line is not pipe delimited\n" +
		" | XX | politics | low | missing title\n" +
		"Markets steady | Global | economy | LOW | Investors shrug off bloc tension."

	headlines := parseHeadlines(content, time.Now())
	if len(headlines) != 2 {
		t.Fatalf("expected 2 parsed headlines, got %d", len(headlines))
	}
	if headlines[0].Country != "FR" || headlines[0].Severity != models.SeverityHigh {
		t.Fatalf("first headline parsed wrong: %+v", headlines[0])
	}
	if headlines[1].Severity != models.SeverityLow {
		t.Fatalf("severity should normalize case, got %q", headlines[1].Severity)
	}
	if headlines[0].Synthetic {
		t.Fatal("API headline must not be marked synthetic")
	}
}

func TestParseSeverityDefaultsToLow(t *testing.T) {
	for _, raw := range []string{"", "urgent", "severe"} {
		if got := parseSeverity(raw); got != models.SeverityLow {
			t.Fatalf("parseSeverity(%q) = %q, want low", raw, got)
		}
	}
	if got := parseSeverity("CRITICAL"); got != models.SeverityCritical {
		t.Fatalf("parseSeverity should normalize case, got %q", got)
	}
}

func TestCacheKeyBucketsSimilarDiffs(t *testing.T) {
	f := models.FactionEU
	a := models.Diff{Tick: 8, GlobalTension: 42, CountryPatches: []models.CountryPatch{{CountryID: "FR", Faction: &f}}}
	b := models.Diff{Tick: 9, GlobalTension: 47, CountryPatches: []models.CountryPatch{{CountryID: "FR", Faction: &f}}}
	c := models.Diff{Tick: 30, GlobalTension: 90}

	if cacheKey(a) != cacheKey(b) {
		t.Fatalf("nearby diffs should share a key: %q vs %q", cacheKey(a), cacheKey(b))
	}
	if cacheKey(a) == cacheKey(c) {
		t.Fatal("distant diffs should not share a key")
	}
}
