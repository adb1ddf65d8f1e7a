package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// WorldEvents lists historical events and compares a concept's mentions
// around them.
type WorldEvents struct {
	concepts driving.ConceptService
}

// NewWorldEvents creates the world_events tool.
func NewWorldEvents(concepts driving.ConceptService) *WorldEvents {
	return &WorldEvents{concepts: concepts}
}

func (t *WorldEvents) Name() string { return "world_events" }

func (t *WorldEvents) Description() string {
	return "List world events linked to a concept with the number of tagged segments in the year before, " +
		"the year of and the year after each event. Call without a concept to list all events."
}

func (t *WorldEvents) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"concept": {"type": "string", "description": "Concept name, for example terrorism or refugees"}
		}
	}`)
}

func (t *WorldEvents) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Concept string `json:"concept"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}

	if strings.TrimSpace(params.Concept) == "" {
		events, err := t.concepts.Events(ctx, "")
		if err != nil {
			return "", err
		}
		return encodeResult(events)
	}

	impacts, err := t.concepts.EventImpacts(ctx, params.Concept)
	if err != nil {
		return "", err
	}

	type row struct {
		Year    int    `json:"year"`
		Event   string `json:"event"`
		Before  int    `json:"before"`
		During  int    `json:"during"`
		After   int    `json:"after"`
		Change  int    `json:"change"`
		Concept string `json:"concept"`
	}
	rows := make([]row, len(impacts))
	for i, im := range impacts {
		rows[i] = row{
			Year: im.Event.Year, Event: im.Event.Name,
			Before: im.Before, During: im.During, After: im.After,
			Change: im.Change(), Concept: im.Concept,
		}
	}
	return encodeResult(rows)
}
