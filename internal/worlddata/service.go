package worlddata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/models"
)

// Service provides the canonical country baseline used to seed sessions and
// to serve the client's initial feature fetch.
//
// Load priority:
//  1. the dataset file configured by the caller (large canonical dataset)
//  2. the curated in-package seed table
type Service struct {
	countries map[string]models.Country
	source    string
}

// fileCountry is the on-disk record shape of the canonical dataset.
type fileCountry struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Faction  string          `json:"faction"`
	Morale   *float64        `json:"morale,omitempty"`
	Warheads int             `json:"nuclear_warheads"`
	Status   string          `json:"nuclear_status"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

// NewService loads the baseline dataset. A missing or unreadable primary
// file is not an error; the curated seed table takes over.
func NewService(datasetPath string) *Service {
	s := &Service{}

	if datasetPath != "" {
		countries, err := loadDataset(datasetPath)
		if err == nil {
			s.countries = countries
			s.source = datasetPath
			log.Info().Str("path", datasetPath).Int("countries", len(countries)).Msg("loaded country dataset")
			return s
		}
		log.Warn().Err(err).Str("path", datasetPath).Msg("primary country dataset unavailable, using curated seed")
	}

	s.countries = curatedSeed()
	s.source = "curated"
	log.Info().Int("countries", len(s.countries)).Msg("loaded curated country seed")
	return s
}

func loadDataset(path string) (map[string]models.Country, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var records []fileCountry
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s contains no countries", path)
	}

	countries := make(map[string]models.Country, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		morale := 0.5
		if rec.Morale != nil {
			morale = models.ClampMorale(*rec.Morale)
		}
		c := models.Country{
			ID:       rec.ID,
			Name:     rec.Name,
			Faction:  models.ParseFaction(rec.Faction),
			Morale:   morale,
			Geometry: rec.Geometry,
		}
		if rec.Warheads > 0 || rec.Status != "" {
			c.Nuclear = &models.NuclearProfile{
				Warheads: rec.Warheads,
				Status:   parseNuclearStatus(rec.Status),
			}
		}
		countries[c.ID] = c
	}
	return countries, nil
}

func parseNuclearStatus(raw string) models.NuclearStatus {
	switch models.NuclearStatus(raw) {
	case models.NuclearConfirmed, models.NuclearEstimated, models.NuclearSuspected:
		return models.NuclearStatus(raw)
	default:
		return models.NuclearNone
	}
}

// Source reports which tier of the load policy produced the dataset.
func (s *Service) Source() string {
	return s.source
}

// Country returns the baseline record for one country id.
func (s *Service) Country(id string) (models.Country, bool) {
	c, ok := s.countries[id]
	return c, ok
}

// AllCountries returns the full baseline sorted by id.
func (s *Service) AllCountries() []models.Country {
	out := make([]models.Country, 0, len(s.countries))
	for _, c := range s.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Available reports whether any baseline data loaded. Used by the health
// endpoint.
func (s *Service) Available() bool {
	return len(s.countries) > 0
}
