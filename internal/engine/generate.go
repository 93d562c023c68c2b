package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mcdev12/worldwire/internal/models"
)

// stagingArea is a fixed spawn anchor for a faction's starting units.
type stagingArea struct {
	faction models.Faction
	pos     models.Position
	kinds   []models.UnitKind
}

// Starting deployments for the major blocs. Positions are rough ocean and
// airspace anchors, jittered per seed so two sessions do not look identical.
var stagingAreas = []stagingArea{
	{models.FactionNATO, models.Position{Lon: -40.0, Lat: 45.0},
		[]models.UnitKind{models.UnitKindCarrier, models.UnitKindDestroyer, models.UnitKindFighter}},
	{models.FactionNATO, models.Position{Lon: 15.0, Lat: 55.0},
		[]models.UnitKind{models.UnitKindFighter, models.UnitKindBomber}},
	{models.FactionRussiaBloc, models.Position{Lon: 40.0, Lat: 60.0},
		[]models.UnitKind{models.UnitKindBomber, models.UnitKindSubmarine, models.UnitKindFighter}},
	{models.FactionRussiaBloc, models.Position{Lon: 160.0, Lat: 55.0},
		[]models.UnitKind{models.UnitKindSubmarine, models.UnitKindDestroyer}},
	{models.FactionChinaBloc, models.Position{Lon: 122.0, Lat: 25.0},
		[]models.UnitKind{models.UnitKindCarrier, models.UnitKindDestroyer, models.UnitKindSubmarine}},
}

// Generate builds the initial world state for a new session. Equal seeds
// over the same baseline produce identical worlds.
func Generate(seed int64, baseline []models.Country, start time.Time) models.WorldState {
	rng := rand.New(rand.NewSource(seed))

	countries := make(map[string]models.Country, len(baseline))
	for _, c := range baseline {
		countries[c.ID] = c
	}

	units := make(map[string]models.Unit)
	for i, area := range stagingAreas {
		for j, kind := range area.kinds {
			id := fmt.Sprintf("unit-%d-%d", i, j)
			units[id] = models.Unit{
				ID:      id,
				Kind:    kind,
				Faction: area.faction,
				Pos: models.Position{
					Lon: area.pos.Lon + rng.Float64()*6 - 3,
					Lat: area.pos.Lat + rng.Float64()*4 - 2,
				},
			}
		}
	}

	world := models.WorldState{
		Tick:        0,
		CurrentDate: start,
		Countries:   countries,
		Units:       units,
	}
	world.GlobalTension = computeTension(&world)
	world.BlocDistribution = blocDistribution(&world)
	return world
}

// blocDistribution counts countries per faction.
func blocDistribution(world *models.WorldState) map[models.Faction]int {
	dist := make(map[models.Faction]int)
	for _, c := range world.Countries {
		dist[c.Faction]++
	}
	return dist
}

// computeTension derives the 0..100 global tension index from bloc balance
// and average morale: large aligned blocs and low morale both raise it.
func computeTension(world *models.WorldState) int {
	if len(world.Countries) == 0 {
		return 0
	}

	aligned := 0
	moraleSum := 0.0
	for _, c := range world.Countries {
		if c.Faction != models.FactionNeutral {
			aligned++
		}
		moraleSum += c.Morale
	}

	alignedShare := float64(aligned) / float64(len(world.Countries))
	avgMorale := moraleSum / float64(len(world.Countries))

	tension := int(alignedShare*60 + (1-avgMorale)*40)
	if tension < 0 {
		tension = 0
	}
	if tension > 100 {
		tension = 100
	}
	return tension
}
