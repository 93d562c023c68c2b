package models

import "time"

// UnitDelta reports a unit's new position after a tick.
type UnitDelta struct {
	UnitID string   `json:"unit_id"`
	Pos    Position `json:"pos"`
}

// CountryPatch is a partial update to one country's state. Nil fields were
// not touched by the update.
type CountryPatch struct {
	CountryID string   `json:"country_id"`
	Faction   *Faction `json:"faction,omitempty"`
	Morale    *float64 `json:"morale,omitempty"`
}

// Diff is the incremental change produced by advancing a session one step.
// Diffs are transient: they are handed to subscribers once and not stored.
type Diff struct {
	Tick           int            `json:"tick"`
	EntityDeltas   []UnitDelta    `json:"entity_deltas"`
	CountryPatches []CountryPatch `json:"country_patches,omitempty"`
	Headlines      []Headline     `json:"headlines"`
	GlobalTension  int            `json:"global_tension"`
	ProducedAt     time.Time      `json:"produced_at"`
}
