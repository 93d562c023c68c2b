package engine

import (
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/models"
)

// Action types understood by the engine. Unknown types are skipped with a
// warning rather than failing the whole commit.
const (
	ActionAssignFaction = "assign_faction"
	ActionSupport       = "support"
	ActionPressure      = "pressure"
	ActionSanction      = "sanction"
	ActionMilitary      = "military_posture"
)

// unitDriftDeg is the maximum per-tick positional drift of a unit.
const unitDriftDeg = 1.5

// Advance applies queued actions in submission order, advances the tick by
// one simulated week, moves units, and returns the resulting diff. The
// caller owns serialization; Advance itself is not safe for concurrent use
// on the same world.
func Advance(world *models.WorldState, actions []models.Action, rng *rand.Rand, now time.Time) models.Diff {
	diff := models.Diff{
		Tick:       world.Tick + 1,
		ProducedAt: now,
	}

	patched := make(map[string]*models.CountryPatch)
	for _, action := range actions {
		applyAction(world, action, rng, patched)
	}

	// one tick == one simulated week
	world.Tick++
	world.CurrentDate = world.CurrentDate.AddDate(0, 0, 7)

	diff.EntityDeltas = driftUnits(world, rng)

	if len(patched) > 0 {
		ids := make([]string, 0, len(patched))
		for id := range patched {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			diff.CountryPatches = append(diff.CountryPatches, *patched[id])
		}
	}

	world.GlobalTension = computeTension(world)
	world.BlocDistribution = blocDistribution(world)
	diff.GlobalTension = world.GlobalTension
	diff.Headlines = []models.Headline{}
	return diff
}

func applyAction(world *models.WorldState, action models.Action, rng *rand.Rand, patched map[string]*models.CountryPatch) {
	target, ok := world.Countries[action.TargetID]
	if !ok {
		log.Warn().
			Str("action_id", action.ID.String()).
			Str("target_id", action.TargetID).
			Str("type", action.Type).
			Msg("action targets unknown country, skipping")
		return
	}

	switch action.Type {
	case ActionAssignFaction:
		raw, _ := action.Parameters["faction"].(string)
		faction := models.ParseFaction(raw)
		target.Faction = faction
		recordPatch(patched, target.ID).Faction = &faction

	case ActionSupport:
		impact := 0.05 + rng.Float64()*0.05
		morale := models.ClampMorale(target.Morale + impact)
		target.Morale = morale
		recordPatch(patched, target.ID).Morale = &morale

	case ActionPressure, ActionSanction, ActionMilitary:
		impact := 0.03 + rng.Float64()*0.07
		if action.Type == ActionMilitary {
			impact += 0.05
		}
		morale := models.ClampMorale(target.Morale - impact)
		target.Morale = morale
		recordPatch(patched, target.ID).Morale = &morale

	default:
		log.Warn().
			Str("action_id", action.ID.String()).
			Str("type", action.Type).
			Msg("unknown action type, skipping")
		return
	}

	world.Countries[target.ID] = target
}

// recordPatch returns the accumulating patch for one country, creating it on
// first touch. Later fields overwrite earlier ones so the diff carries the
// final value per field (last write wins).
func recordPatch(patched map[string]*models.CountryPatch, id string) *models.CountryPatch {
	p, ok := patched[id]
	if !ok {
		p = &models.CountryPatch{CountryID: id}
		patched[id] = p
	}
	return p
}

// driftUnits nudges every unit by a small random vector and reports the new
// positions as entity deltas. Iteration order is fixed so equal seeds yield
// equal drift.
func driftUnits(world *models.WorldState, rng *rand.Rand) []models.UnitDelta {
	ids := make([]string, 0, len(world.Units))
	for id := range world.Units {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	deltas := make([]models.UnitDelta, 0, len(ids))
	for _, id := range ids {
		unit := world.Units[id]
		unit.Pos.Lon += rng.Float64()*2*unitDriftDeg - unitDriftDeg
		unit.Pos.Lat += rng.Float64()*unitDriftDeg - unitDriftDeg/2
		if unit.Pos.Lat > 85 {
			unit.Pos.Lat = 85
		}
		if unit.Pos.Lat < -85 {
			unit.Pos.Lat = -85
		}
		if unit.Pos.Lon > 180 {
			unit.Pos.Lon -= 360
		}
		if unit.Pos.Lon < -180 {
			unit.Pos.Lon += 360
		}
		world.Units[id] = unit
		deltas = append(deltas, models.UnitDelta{UnitID: id, Pos: unit.Pos})
	}
	return deltas
}
