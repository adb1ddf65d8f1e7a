package concepts

import "github.com/custodia-labs/rostrum/internal/core/domain"

// DefaultConcepts is the built-in concept dictionary seeded on first use.
var DefaultConcepts = []domain.Concept{
	{
		Name:        "rearmament",
		Description: "Military buildup, increased defence spending, weapons acquisition",
		Category:    "military",
		Terms: []domain.ConceptTerm{
			{Term: "rearmament", Weight: 1.0},
			{Term: "re-armament", Weight: 1.0},
			{Term: "military buildup", Weight: 0.95},
			{Term: "military build-up", Weight: 0.95},
			{Term: "arms buildup", Weight: 0.95},
			{Term: "arms race", Weight: 0.9},
			{Term: "defense spending", Weight: 0.8},
			{Term: "defence spending", Weight: 0.8},
			{Term: "military spending", Weight: 0.8},
			{Term: "military expenditure", Weight: 0.8},
			{Term: "militarization", Weight: 0.85},
			{Term: "militarisation", Weight: 0.85},
			{Term: "arms procurement", Weight: 0.85},
			{Term: "defence budget", Weight: 0.75},
			{Term: "defense budget", Weight: 0.75},
		},
	},
	{
		Name:        "disarmament",
		Description: "Reduction of weapons, arms control, demilitarisation",
		Category:    "military",
		Terms: []domain.ConceptTerm{
			{Term: "disarmament", Weight: 1.0},
			{Term: "arms control", Weight: 0.95},
			{Term: "arms reduction", Weight: 0.95},
			{Term: "demilitarization", Weight: 0.9},
			{Term: "demilitarisation", Weight: 0.9},
			{Term: "denuclearization", Weight: 0.95},
			{Term: "non-proliferation", Weight: 0.85},
			{Term: "nonproliferation", Weight: 0.85},
			{Term: "test ban", Weight: 0.8},
			{Term: "arms embargo", Weight: 0.8},
		},
	},
	{
		Name:        "climate_change",
		Description: "Global warming, environmental crisis, carbon emissions",
		Category:    "environment",
		Terms: []domain.ConceptTerm{
			{Term: "climate change", Weight: 1.0},
			{Term: "global warming", Weight: 1.0},
			{Term: "climate crisis", Weight: 1.0},
			{Term: "greenhouse gas", Weight: 0.9},
			{Term: "carbon emissions", Weight: 0.9},
			{Term: "fossil fuels", Weight: 0.8},
			{Term: "renewable energy", Weight: 0.75},
			{Term: "Paris Agreement", Weight: 0.85},
			{Term: "Kyoto Protocol", Weight: 0.85},
			{Term: "sea level rise", Weight: 0.85},
			{Term: "net zero", Weight: 0.85},
		},
	},
	{
		Name:        "human_rights",
		Description: "Fundamental rights and freedoms, civil liberties, dignity",
		Category:    "rights",
		Terms: []domain.ConceptTerm{
			{Term: "human rights", Weight: 1.0},
			{Term: "fundamental rights", Weight: 0.95},
			{Term: "civil liberties", Weight: 0.9},
			{Term: "human dignity", Weight: 0.85},
			{Term: "Universal Declaration", Weight: 0.9},
			{Term: "freedom of expression", Weight: 0.85},
			{Term: "political prisoners", Weight: 0.85},
			{Term: "torture", Weight: 0.8},
			{Term: "genocide", Weight: 0.9},
			{Term: "crimes against humanity", Weight: 0.95},
		},
	},
	{
		Name:        "sovereignty",
		Description: "National independence, territorial integrity, self-determination",
		Category:    "political",
		Terms: []domain.ConceptTerm{
			{Term: "sovereignty", Weight: 1.0},
			{Term: "territorial integrity", Weight: 0.95},
			{Term: "self-determination", Weight: 0.95},
			{Term: "national independence", Weight: 0.9},
			{Term: "non-interference", Weight: 0.85},
			{Term: "non-intervention", Weight: 0.85},
			{Term: "internal affairs", Weight: 0.8},
			{Term: "sovereign equality", Weight: 0.9},
		},
	},
	{
		Name:        "terrorism",
		Description: "Terrorist threats, counter-terrorism, extremism",
		Category:    "security",
		Terms: []domain.ConceptTerm{
			{Term: "terrorism", Weight: 1.0},
			{Term: "terrorist", Weight: 0.95},
			{Term: "counter-terrorism", Weight: 0.95},
			{Term: "counterterrorism", Weight: 0.95},
			{Term: "extremism", Weight: 0.85},
			{Term: "radicalization", Weight: 0.85},
			{Term: "radicalisation", Weight: 0.85},
			{Term: "September 11", Weight: 0.85},
		},
	},
	{
		Name:        "refugees",
		Description: "Displaced persons, asylum seekers, migration crises",
		Category:    "humanitarian",
		Terms: []domain.ConceptTerm{
			{Term: "refugees", Weight: 1.0},
			{Term: "refugee crisis", Weight: 1.0},
			{Term: "asylum seekers", Weight: 0.95},
			{Term: "displaced persons", Weight: 0.95},
			{Term: "internally displaced", Weight: 0.95},
			{Term: "forced displacement", Weight: 0.95},
			{Term: "UNHCR", Weight: 0.85},
			{Term: "resettlement", Weight: 0.8},
		},
	},
	{
		Name:        "nuclear_weapons",
		Description: "Nuclear arms, atomic weapons, nuclear deterrence",
		Category:    "military",
		Terms: []domain.ConceptTerm{
			{Term: "nuclear weapons", Weight: 1.0},
			{Term: "nuclear weapon", Weight: 1.0},
			{Term: "atomic weapons", Weight: 0.95},
			{Term: "nuclear arsenal", Weight: 0.95},
			{Term: "nuclear deterrence", Weight: 0.9},
			{Term: "nuclear war", Weight: 0.95},
			{Term: "nuclear power", Weight: 0.7},
			{Term: "ballistic missile", Weight: 0.85},
			{Term: "warhead", Weight: 0.85},
			{Term: "Hiroshima", Weight: 0.8},
		},
	},
}
