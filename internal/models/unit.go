package models

// UnitKind defines the type of a military unit on the map.
type UnitKind string

const (
	UnitKindCarrier   UnitKind = "carrier"
	UnitKindDestroyer UnitKind = "destroyer"
	UnitKindSubmarine UnitKind = "submarine"
	UnitKindFighter   UnitKind = "fighter"
	UnitKindBomber    UnitKind = "bomber"
	UnitKindSatellite UnitKind = "satellite"
)

// Position is a [longitude, latitude] pair.
type Position struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Unit represents a positioned entity owned by a faction.
type Unit struct {
	ID      string   `json:"id"`
	Kind    UnitKind `json:"kind"`
	Faction Faction  `json:"faction"`
	Pos     Position `json:"pos"`
}
