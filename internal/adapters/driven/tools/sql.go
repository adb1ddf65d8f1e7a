package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// DefaultSQLRows caps the rows sql_query returns.
const DefaultSQLRows = 50

// SQLQuery runs read-only SQL against the speech store.
type SQLQuery struct {
	runner  driven.QueryRunner
	maxRows int
}

// NewSQLQuery creates the sql_query tool. maxRows <= 0 uses DefaultSQLRows.
func NewSQLQuery(runner driven.QueryRunner, maxRows int) *SQLQuery {
	if maxRows <= 0 {
		maxRows = DefaultSQLRows
	}
	return &SQLQuery{runner: runner, maxRows: maxRows}
}

func (t *SQLQuery) Name() string { return "sql_query" }

func (t *SQLQuery) Description() string {
	return fmt.Sprintf("Run one read-only SQL SELECT against the speech database and get at most %d rows. "+
		"Tables: speeches(id, year, session, country_code, country_name, region, speaker, title, text), "+
		"segments(id, document_id, ordinal, content, vector_id), "+
		"segment_topics(segment_id, concept, relevance, matched_terms), "+
		"concepts(name, description, category), concept_terms(concept, term, weight), "+
		"world_events(name, year, end_year, category, region, description), event_concepts(event, concept), "+
		"quotations(document_id, figure, text, context, direct, confidence, position), "+
		"notes(id, title, body, created_at).", t.maxRows)
}

func (t *SQLQuery) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "A single SELECT statement"
			}
		},
		"required": ["query"]
	}`)
}

func (t *SQLQuery) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}

	res, err := t.runner.Query(ctx, params.Query, t.maxRows)
	if err != nil {
		return "", err
	}
	return encodeResult(res)
}
