package worlddata

import "github.com/mcdev12/worldwire/internal/models"

// curatedSeed is the compact fallback dataset covering the countries that
// matter most to bloc dynamics. The canonical dataset file supersedes it
// when present.
func curatedSeed() map[string]models.Country {
	seed := []models.Country{
		{ID: "US", Name: "United States", Faction: models.FactionNATO, Morale: 0.8,
			Nuclear: &models.NuclearProfile{Warheads: 5244, Status: models.NuclearConfirmed}},
		{ID: "RU", Name: "Russia", Faction: models.FactionRussiaBloc, Morale: 0.7,
			Nuclear: &models.NuclearProfile{Warheads: 5977, Status: models.NuclearConfirmed}},
		{ID: "CN", Name: "China", Faction: models.FactionChinaBloc, Morale: 0.8,
			Nuclear: &models.NuclearProfile{Warheads: 410, Status: models.NuclearConfirmed}},
		{ID: "GB", Name: "United Kingdom", Faction: models.FactionNATO, Morale: 0.75,
			Nuclear: &models.NuclearProfile{Warheads: 225, Status: models.NuclearConfirmed}},
		{ID: "FR", Name: "France", Faction: models.FactionNATO, Morale: 0.7,
			Nuclear: &models.NuclearProfile{Warheads: 290, Status: models.NuclearConfirmed}},
		{ID: "DE", Name: "Germany", Faction: models.FactionNATO, Morale: 0.65},
		{ID: "IT", Name: "Italy", Faction: models.FactionNATO, Morale: 0.6},
		{ID: "CA", Name: "Canada", Faction: models.FactionNATO, Morale: 0.7},
		{ID: "PL", Name: "Poland", Faction: models.FactionNATO, Morale: 0.7},
		{ID: "TR", Name: "Turkey", Faction: models.FactionNATO, Morale: 0.6},
		{ID: "BY", Name: "Belarus", Faction: models.FactionRussiaBloc, Morale: 0.55},
		{ID: "KZ", Name: "Kazakhstan", Faction: models.FactionRussiaBloc, Morale: 0.6},
		{ID: "KP", Name: "North Korea", Faction: models.FactionChinaBloc, Morale: 0.5,
			Nuclear: &models.NuclearProfile{Warheads: 30, Status: models.NuclearEstimated}},
		{ID: "PK", Name: "Pakistan", Faction: models.FactionChinaBloc, Morale: 0.55,
			Nuclear: &models.NuclearProfile{Warheads: 170, Status: models.NuclearEstimated}},
		{ID: "IN", Name: "India", Faction: models.FactionNeutral, Morale: 0.7,
			Nuclear: &models.NuclearProfile{Warheads: 164, Status: models.NuclearEstimated}},
		{ID: "IL", Name: "Israel", Faction: models.FactionNeutral, Morale: 0.7,
			Nuclear: &models.NuclearProfile{Warheads: 90, Status: models.NuclearSuspected}},
		{ID: "JP", Name: "Japan", Faction: models.FactionNeutral, Morale: 0.75},
		{ID: "KR", Name: "South Korea", Faction: models.FactionNeutral, Morale: 0.7},
		{ID: "BR", Name: "Brazil", Faction: models.FactionNeutral, Morale: 0.65},
		{ID: "ZA", Name: "South Africa", Faction: models.FactionNeutral, Morale: 0.6},
		{ID: "AU", Name: "Australia", Faction: models.FactionNATO, Morale: 0.7},
		{ID: "ES", Name: "Spain", Faction: models.FactionEU, Morale: 0.65},
		{ID: "NL", Name: "Netherlands", Faction: models.FactionEU, Morale: 0.7},
		{ID: "SE", Name: "Sweden", Faction: models.FactionEU, Morale: 0.7},
		{ID: "UA", Name: "Ukraine", Faction: models.FactionNeutral, Morale: 0.6},
		{ID: "IR", Name: "Iran", Faction: models.FactionRussiaBloc, Morale: 0.55,
			Nuclear: &models.NuclearProfile{Warheads: 0, Status: models.NuclearSuspected}},
		{ID: "SA", Name: "Saudi Arabia", Faction: models.FactionNeutral, Morale: 0.6},
		{ID: "EG", Name: "Egypt", Faction: models.FactionNeutral, Morale: 0.55},
		{ID: "MX", Name: "Mexico", Faction: models.FactionNeutral, Morale: 0.6},
		{ID: "AR", Name: "Argentina", Faction: models.FactionNeutral, Morale: 0.55},
	}

	out := make(map[string]models.Country, len(seed))
	for _, c := range seed {
		out[c.ID] = c
	}
	return out
}
