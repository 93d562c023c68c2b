// Package replica holds the client-side copy of country state. The server
// owns the truth; the replica applies incremental patches in place and
// notifies the renderer, so the map never refetches the full feature set.
package replica

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/models"
)

// FeatureUpdate is a partial update to one country feature. Nil fields are
// left untouched.
type FeatureUpdate struct {
	Faction  *models.Faction
	Morale   *float64
	Geometry json.RawMessage
}

// ChangeFunc is invoked after each applied update with the ids that changed.
type ChangeFunc func(countryIDs []string)

// Store holds the full country-feature collection. Reads and writes are
// safe from concurrent goroutines; an update is atomic with respect to a
// single country, so readers never observe a half-merged feature.
type Store struct {
	mu       sync.RWMutex
	features map[string]models.Country
	onChange ChangeFunc
}

// NewStore creates an empty replica store.
func NewStore() *Store {
	return &Store{
		features: make(map[string]models.Country),
	}
}

// OnChange registers the renderer notification callback. The callback runs
// outside the store lock.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Load replaces the whole collection with a freshly fetched baseline.
func (s *Store) Load(features []models.Country) {
	s.mu.Lock()
	replaced := make(map[string]models.Country, len(features))
	ids := make([]string, 0, len(features))
	for _, f := range features {
		replaced[f.ID] = f
		ids = append(ids, f.ID)
	}
	s.features = replaced
	fn := s.onChange
	s.mu.Unlock()

	sort.Strings(ids)
	if fn != nil {
		fn(ids)
	}
}

// ApplyUpdate merges the given fields into the feature with that id.
// An unknown id is an expected race with the baseline load, so it logs a
// warning and applies nothing. Returns whether the update was applied.
func (s *Store) ApplyUpdate(countryID string, update FeatureUpdate) bool {
	s.mu.Lock()
	feature, ok := s.features[countryID]
	if !ok {
		s.mu.Unlock()
		log.Warn().Str("country_id", countryID).Msg("update for unknown country dropped")
		return false
	}

	if update.Faction != nil {
		feature.Faction = *update.Faction
	}
	if update.Morale != nil {
		feature.Morale = models.ClampMorale(*update.Morale)
	}
	if update.Geometry != nil {
		feature.Geometry = update.Geometry
	}
	s.features[countryID] = feature
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn([]string{countryID})
	}
	return true
}

// ApplyPatches applies the country patches of a world diff. Each patch is
// applied independently; unknown ids are skipped. Returns the ids applied.
func (s *Store) ApplyPatches(patches []models.CountryPatch) []string {
	var applied []string
	for _, patch := range patches {
		update := FeatureUpdate{Faction: patch.Faction, Morale: patch.Morale}
		if s.ApplyUpdate(patch.CountryID, update) {
			applied = append(applied, patch.CountryID)
		}
	}
	return applied
}

// Get returns the current feature for an id.
func (s *Store) Get(countryID string) (models.Country, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feature, ok := s.features[countryID]
	return feature, ok
}

// GetAll returns a snapshot of every feature, sorted by id.
func (s *Store) GetAll() []models.Country {
	s.mu.RLock()
	features := make([]models.Country, 0, len(s.features))
	for _, f := range s.features {
		features = append(features, f)
	}
	s.mu.RUnlock()

	sort.Slice(features, func(i, j int) bool { return features[i].ID < features[j].ID })
	return features
}

// Len reports how many features the replica holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.features)
}
