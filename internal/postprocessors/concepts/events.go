package concepts

import "github.com/custodia-labs/rostrum/internal/core/domain"

// DefaultEvents links historical events to the concepts of
// DefaultConcepts they are expected to raise.
var DefaultEvents = []domain.WorldEvent{
	{Name: "Korean War", Year: 1950, EndYear: 1953, Category: "war", Region: "Asia",
		Concepts: []string{"rearmament", "nuclear_weapons"}},
	{Name: "Hungarian Revolution", Year: 1956, Category: "crisis", Region: "Europe",
		Concepts: []string{"sovereignty", "human_rights"}},
	{Name: "Suez Crisis", Year: 1956, Category: "crisis", Region: "Middle East",
		Concepts: []string{"sovereignty"}},
	{Name: "Cuban Missile Crisis", Year: 1962, Category: "crisis", Region: "Americas",
		Concepts: []string{"nuclear_weapons", "disarmament"}},
	{Name: "Vietnam War escalation", Year: 1964, EndYear: 1975, Category: "war", Region: "Asia",
		Concepts: []string{"sovereignty", "human_rights"}},
	{Name: "Prague Spring / Soviet invasion", Year: 1968, Category: "crisis", Region: "Europe",
		Concepts: []string{"sovereignty", "human_rights"}},

	{Name: "SALT I Treaty", Year: 1972, Category: "treaty", Region: "Global",
		Concepts: []string{"disarmament", "nuclear_weapons"}},
	{Name: "Helsinki Accords", Year: 1975, Category: "treaty", Region: "Europe",
		Concepts: []string{"human_rights", "sovereignty"}},
	{Name: "Soviet invasion of Afghanistan", Year: 1979, EndYear: 1989, Category: "war", Region: "Asia",
		Concepts: []string{"sovereignty", "refugees"}},

	{Name: "INF Treaty", Year: 1987, Category: "treaty", Region: "Global",
		Concepts: []string{"disarmament", "nuclear_weapons"}},
	{Name: "Fall of Berlin Wall", Year: 1989, Category: "revolution", Region: "Europe",
		Concepts: []string{"sovereignty", "human_rights"}},

	{Name: "Gulf War", Year: 1991, Category: "war", Region: "Middle East",
		Concepts: []string{"sovereignty"}},
	{Name: "Rwandan Genocide", Year: 1994, Category: "crisis", Region: "Africa",
		Concepts: []string{"human_rights", "refugees"}},
	{Name: "Srebrenica massacre", Year: 1995, Category: "crisis", Region: "Europe",
		Concepts: []string{"human_rights", "refugees"}},
	{Name: "Kyoto Protocol adopted", Year: 1997, Category: "treaty", Region: "Global",
		Concepts: []string{"climate_change"}},

	{Name: "September 11 attacks", Year: 2001, Category: "crisis", Region: "Global",
		Concepts: []string{"terrorism"}},
	{Name: "US invasion of Iraq", Year: 2003, Category: "war", Region: "Middle East",
		Concepts: []string{"sovereignty", "terrorism"}},
	{Name: "Darfur crisis", Year: 2003, EndYear: 2010, Category: "crisis", Region: "Africa",
		Concepts: []string{"human_rights", "refugees"}},

	{Name: "Arab Spring", Year: 2011, Category: "revolution", Region: "Middle East",
		Concepts: []string{"human_rights", "sovereignty"}},
	{Name: "Syrian Civil War begins", Year: 2011, Category: "war", Region: "Middle East",
		Concepts: []string{"refugees", "human_rights", "terrorism"}},
	{Name: "Russian annexation of Crimea", Year: 2014, Category: "crisis", Region: "Europe",
		Concepts: []string{"sovereignty", "rearmament"}},
	{Name: "Paris Climate Agreement", Year: 2015, Category: "treaty", Region: "Global",
		Concepts: []string{"climate_change"}},
	{Name: "European refugee crisis peak", Year: 2015, Category: "crisis", Region: "Europe",
		Concepts: []string{"refugees"}},
	{Name: "ISIS territorial peak", Year: 2015, Category: "crisis", Region: "Middle East",
		Concepts: []string{"terrorism", "refugees"}},

	{Name: "COVID-19 pandemic", Year: 2020, EndYear: 2023, Category: "crisis", Region: "Global",
		Concepts: []string{"human_rights"}},
	{Name: "Russian invasion of Ukraine", Year: 2022, Category: "war", Region: "Europe",
		Concepts: []string{"sovereignty", "rearmament", "refugees", "nuclear_weapons"}},
	{Name: "Hamas attack / Gaza war", Year: 2023, Category: "war", Region: "Middle East",
		Concepts: []string{"terrorism", "human_rights", "refugees"}},
}
