package worlddata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcdev12/worldwire/internal/models"
)

func TestServiceFallsBackToCuratedSeed(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "missing.json"))

	if s.Source() != "curated" {
		t.Fatalf("expected curated source, got %q", s.Source())
	}
	if !s.Available() {
		t.Fatal("curated seed should be available")
	}

	us, ok := s.Country("US")
	if !ok {
		t.Fatal("curated seed missing US")
	}
	if us.Faction != models.FactionNATO {
		t.Fatalf("US faction = %q, want NATO", us.Faction)
	}
	if us.Nuclear == nil || us.Nuclear.Status != models.NuclearConfirmed {
		t.Fatalf("US should carry a confirmed nuclear profile, got %+v", us.Nuclear)
	}
}

func TestServiceLoadsDatasetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.json")
	data := `[
		{"id": "AA", "name": "Aland", "faction": "EU", "morale": 0.9},
		{"id": "BB", "name": "Borduria", "faction": "INVALID", "nuclear_warheads": 12, "nuclear_status": "estimated"},
		{"id": "", "name": "nameless"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewService(path)

	if s.Source() != path {
		t.Fatalf("expected dataset source %q, got %q", path, s.Source())
	}
	all := s.AllCountries()
	if len(all) != 2 {
		t.Fatalf("expected 2 countries (empty id skipped), got %d", len(all))
	}

	bb, ok := s.Country("BB")
	if !ok {
		t.Fatal("BB not loaded")
	}
	if bb.Faction != models.FactionNeutral {
		t.Fatalf("invalid faction should default to NEUTRAL, got %q", bb.Faction)
	}
	if bb.Nuclear == nil || bb.Nuclear.Warheads != 12 || bb.Nuclear.Status != models.NuclearEstimated {
		t.Fatalf("nuclear profile wrong: %+v", bb.Nuclear)
	}
	if bb.Morale != 0.5 {
		t.Fatalf("missing morale should default to 0.5, got %v", bb.Morale)
	}
}

func TestServiceRejectsMalformedDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewService(path)
	if s.Source() != "curated" {
		t.Fatalf("malformed dataset should fall back to curated, got %q", s.Source())
	}
}

func TestAllCountriesSorted(t *testing.T) {
	s := NewService("")
	all := s.AllCountries()
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("countries not sorted: %q before %q", all[i-1].ID, all[i].ID)
		}
	}
}
