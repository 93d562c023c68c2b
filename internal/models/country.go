package models

import "encoding/json"

// Faction represents a geopolitical bloc alignment.
type Faction string

const (
	FactionNATO       Faction = "NATO"
	FactionRussiaBloc Faction = "RUSSIA_BLOC"
	FactionChinaBloc  Faction = "CHINA_BLOC"
	FactionEU         Faction = "EU"
	FactionNeutral    Faction = "NEUTRAL"
)

// ParseFaction normalizes a raw faction label. Unrecognized values map to
// NEUTRAL so stale or malformed client data never produces an unknown bloc.
func ParseFaction(raw string) Faction {
	switch Faction(raw) {
	case FactionNATO, FactionRussiaBloc, FactionChinaBloc, FactionEU, FactionNeutral:
		return Faction(raw)
	default:
		return FactionNeutral
	}
}

// NuclearStatus describes the confidence level of a country's arsenal data.
type NuclearStatus string

const (
	NuclearConfirmed NuclearStatus = "confirmed"
	NuclearEstimated NuclearStatus = "estimated"
	NuclearSuspected NuclearStatus = "suspected"
	NuclearNone      NuclearStatus = "none"
)

// NuclearProfile holds the optional nuclear attributes of a country.
type NuclearProfile struct {
	Warheads int           `json:"warheads"`
	Status   NuclearStatus `json:"status"`
}

// Country is the per-session state of one country. ID is unique within a
// session's country collection. Geometry is opaque GeoJSON carried through
// for the map layer; the core never inspects it.
type Country struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Faction  Faction         `json:"faction"`
	Morale   float64         `json:"morale"`
	Nuclear  *NuclearProfile `json:"nuclear,omitempty"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

// ClampMorale bounds a morale value into [0, 1].
func ClampMorale(m float64) float64 {
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}
