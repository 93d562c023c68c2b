package narrative

import (
	"context"
	"fmt"

	"github.com/mcdev12/worldwire/internal/models"
)

// SyntheticSource labels locally fabricated content so the UI can mark it
// as such instead of presenting it as real reporting.
const SyntheticSource = "worldwire synthetic desk"

// FallbackGenerator synthesizes placeholder headlines locally. It never
// fails and never blocks, so the simulation stays playable with zero
// AI-derived content.
type FallbackGenerator struct{}

// NewFallbackGenerator creates a fallback generator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Headlines derives one headline per patched country plus a tension brief.
func (g *FallbackGenerator) Headlines(_ context.Context, diff models.Diff, world models.WorldState) ([]models.Headline, error) {
	headlines := make([]models.Headline, 0, len(diff.CountryPatches)+1)

	for _, patch := range diff.CountryPatches {
		name := patch.CountryID
		if c, ok := world.Countries[patch.CountryID]; ok {
			name = c.Name
		}

		switch {
		case patch.Faction != nil:
			headlines = append(headlines, models.Headline{
				Title:     fmt.Sprintf("%s realigns with %s", name, *patch.Faction),
				Body:      fmt.Sprintf("%s has shifted its bloc alignment, reshaping the regional balance of power.", name),
				Country:   patch.CountryID,
				Category:  "politics",
				Severity:  models.SeverityHigh,
				Source:    SyntheticSource,
				Synthetic: true,
				Timestamp: diff.ProducedAt,
			})
		case patch.Morale != nil:
			severity := models.SeverityLow
			if *patch.Morale < 0.4 {
				severity = models.SeverityMedium
			}
			headlines = append(headlines, models.Headline{
				Title:     fmt.Sprintf("Public sentiment shifts in %s", name),
				Body:      fmt.Sprintf("Observers report changing national morale in %s amid ongoing geopolitical maneuvering.", name),
				Country:   patch.CountryID,
				Category:  "politics",
				Severity:  severity,
				Source:    SyntheticSource,
				Synthetic: true,
				Timestamp: diff.ProducedAt,
			})
		}
	}

	severity := models.SeverityLow
	switch {
	case diff.GlobalTension >= 75:
		severity = models.SeverityCritical
	case diff.GlobalTension >= 50:
		severity = models.SeverityHigh
	case diff.GlobalTension >= 25:
		severity = models.SeverityMedium
	}
	headlines = append(headlines, models.Headline{
		Title:     fmt.Sprintf("Global tension index at %d", diff.GlobalTension),
		Body:      "Analysts continue to monitor bloc posturing across contested regions.",
		Country:   "Global",
		Category:  "analysis",
		Severity:  severity,
		Source:    SyntheticSource,
		Synthetic: true,
		Timestamp: diff.ProducedAt,
	})

	return headlines, nil
}
