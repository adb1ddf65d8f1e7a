package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// setupTestStore creates a store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func speech(id, country string, year int, content string) *domain.Document {
	return &domain.Document{
		ID:      id,
		URI:     "/corpus/" + id + ".txt",
		Title:   id,
		Content: content,
		Metadata: map[string]any{
			domain.MetaCountryCode: country,
			domain.MetaYear:        year,
			domain.MetaSpeaker:     "Delegate of " + country,
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func embedded(docID, segID string, ordinal int, content string, values ...float32) domain.EmbeddedSegment {
	return domain.EmbeddedSegment{
		Segment: domain.Segment{ID: segID, DocumentID: docID, Ordinal: ordinal, Content: content},
		Vector:  domain.Vector{ID: "v-" + segID, Values: values, Model: "test-model"},
	}
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	require.NoError(t, store.Close())

	// Reopening skips applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestStore_DocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	doc := speech("USA_75_2020", "USA", 2020, "We the peoples")
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "USA_75_2020")
	require.NoError(t, err)
	assert.Equal(t, doc.URI, got.URI)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, 2020, got.Year())
	assert.Equal(t, "USA", got.MetaString(domain.MetaCountryCode))
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))

	_, err = store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListDocuments(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("USA_75_2020", "USA", 2020, "a")))
	require.NoError(t, store.SaveDocument(ctx, speech("FRA_30_1975", "FRA", 1975, "b")))
	require.NoError(t, store.SaveDocument(ctx, speech("BRA_30_1975", "BRA", 1975, "c")))

	tests := []struct {
		name   string
		filter domain.DocumentFilter
		want   []string
	}{
		{"all by year then id", domain.DocumentFilter{}, []string{"BRA_30_1975", "FRA_30_1975", "USA_75_2020"}},
		{"year from", domain.DocumentFilter{YearFrom: 2000}, []string{"USA_75_2020"}},
		{"year to", domain.DocumentFilter{YearTo: 1980}, []string{"BRA_30_1975", "FRA_30_1975"}},
		{"country", domain.DocumentFilter{CountryCodes: []string{"FRA", "USA"}}, []string{"FRA_30_1975", "USA_75_2020"}},
		{"ids", domain.DocumentFilter{DocumentIDs: []string{"USA_75_2020"}}, []string{"USA_75_2020"}},
		{"limit", domain.DocumentFilter{Limit: 1}, []string{"BRA_30_1975"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := store.ListDocuments(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, len(docs))
			for i, d := range docs {
				ids[i] = d.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_SaveEmbeddedLinksVectors(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("d1", "USA", 2020, "text")))

	require.NoError(t, store.SaveEmbedded(ctx, []domain.EmbeddedSegment{
		embedded("d1", "s1", 1, "second", 0, 1),
		embedded("d1", "s0", 0, "first", 1, 0),
	}))

	segs, err := store.GetSegments(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "s0", segs[0].ID)
	assert.True(t, segs[0].Embedded())
	assert.Equal(t, "v-s0", *segs[0].VectorID)

	v, err := store.GetVector(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", v.SegmentID)
	assert.Equal(t, []float32{0, 1}, v.Values)
	assert.Equal(t, "test-model", v.Model)

	vectors, err := store.ListVectors(ctx, domain.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, "s0", vectors[0].SegmentID)
	assert.Equal(t, "s1", vectors[1].SegmentID)

	err = store.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("d1", "s0", 0, "again", 1)})
	assert.ErrorIs(t, err, domain.ErrAlreadyEmbedded)
}

func TestStore_SaveEmbeddedIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("d1", "USA", 2020, "text")))

	err := store.SaveEmbedded(ctx, []domain.EmbeddedSegment{
		embedded("d1", "s0", 0, "first", 1),
		embedded("nope", "s1", 0, "orphan", 1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	segs, err := store.GetSegments(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestStore_LinkVectorsIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("d1", "USA", 2020, "text")))
	require.NoError(t, store.SaveSegments(ctx, []domain.Segment{
		{ID: "s0", DocumentID: "d1", Ordinal: 0, Content: "a"},
		{ID: "s1", DocumentID: "d1", Ordinal: 1, Content: "b"},
	}))

	n, err := store.CountUnembedded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.LinkVectors(ctx, []domain.Vector{{ID: "v0", SegmentID: "s0", Values: []float32{1}}}))

	err = store.LinkVectors(ctx, []domain.Vector{
		{ID: "v1", SegmentID: "s1", Values: []float32{1}},
		{ID: "v0b", SegmentID: "s0", Values: []float32{2}},
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyEmbedded)

	seg, err := store.GetSegment(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, seg.Embedded(), "a rejected batch writes nothing")

	v, err := store.GetVector(ctx, "s0")
	require.NoError(t, err)
	assert.Equal(t, "v0", v.ID)

	n, err = store.CountUnembedded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = store.LinkVectors(ctx, []domain.Vector{{ID: "vx", SegmentID: "missing", Values: []float32{1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ReplacingDocumentDropsSegments(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("d1", "USA", 2020, "text")))
	require.NoError(t, store.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("d1", "s0", 0, "text", 1)}))

	require.NoError(t, store.SaveDocument(ctx, speech("d1", "USA", 2020, "new text")))

	segs, err := store.GetSegments(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, segs)
	_, err = store.GetVector(ctx, "s0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ResavingSameContentKeepsSegments(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("d1", "USA", 2020, "text")))
	require.NoError(t, store.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("d1", "s0", 0, "text", 1)}))

	retitled := speech("d1", "USA", 2020, "text")
	retitled.Title = "Address"
	require.NoError(t, store.SaveDocument(ctx, retitled))

	segs, err := store.GetSegments(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.True(t, segs[0].Embedded())
	doc, err := store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Address", doc.Title)
}

func TestStore_PendingDocuments(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("done", "USA", 1990, "a")))
	require.NoError(t, store.SaveDocument(ctx, speech("fresh", "FRA", 2000, "b")))
	require.NoError(t, store.SaveDocument(ctx, speech("partial", "BRA", 1980, "c")))
	require.NoError(t, store.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("done", "d0", 0, "a", 1)}))
	require.NoError(t, store.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("partial", "p0", 0, "c", 1)}))
	require.NoError(t, store.SaveSegments(ctx, []domain.Segment{{ID: "p1", DocumentID: "partial", Ordinal: 1, Content: "c"}}))

	ids, err := store.PendingDocuments(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"partial", "fresh"}, ids)

	ids, err = store.PendingDocuments(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"partial"}, ids)
}

func TestStore_DeleteDocumentCascades(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("d1", "USA", 2020, "text")))
	require.NoError(t, store.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("d1", "s0", 0, "text", 1)}))

	require.NoError(t, store.DeleteDocument(ctx, "d1"))

	_, err := store.GetSegment(ctx, "s0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	vectors, err := store.ListVectors(ctx, domain.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestStore_SaveSegmentsRequiresDocument(t *testing.T) {
	store := setupTestStore(t)
	err := store.SaveSegments(context.Background(), []domain.Segment{{ID: "s", DocumentID: "none"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListVectorsFilterAndLimit(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("USA_75_2020", "USA", 2020, "a")))
	require.NoError(t, store.SaveDocument(ctx, speech("FRA_30_1975", "FRA", 1975, "b")))
	require.NoError(t, store.SaveEmbedded(ctx, []domain.EmbeddedSegment{
		embedded("USA_75_2020", "u0", 0, "a", 1),
		embedded("FRA_30_1975", "f0", 0, "b", 1),
		embedded("FRA_30_1975", "f1", 1, "b", 1),
	}))

	vectors, err := store.ListVectors(ctx, domain.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, "f0", vectors[0].SegmentID)
	assert.Equal(t, "u0", vectors[2].SegmentID)

	vectors, err = store.ListVectors(ctx, domain.DocumentFilter{CountryCodes: []string{"USA"}})
	require.NoError(t, err)
	require.Len(t, vectors, 1)

	vectors, err = store.ListVectors(ctx, domain.DocumentFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}

func TestStore_SegmentTopicsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("d1", "USA", 2020, "text")))

	seg := domain.Segment{
		ID: "s0", DocumentID: "d1", Content: "nuclear disarmament",
		Metadata: map[string]any{
			"source":          "chunker",
			domain.MetaTopics: []domain.SegmentTopic{{SegmentID: "s0", Concept: "ignored"}},
		},
	}
	require.NoError(t, store.SaveSegments(ctx, []domain.Segment{seg}))
	require.NoError(t, store.SaveTopics(ctx, []string{"s0"}, []domain.SegmentTopic{
		{SegmentID: "s0", Concept: "disarmament", Relevance: 0.9, MatchedTerms: []string{"nuclear", "disarmament"}},
	}))

	segs, err := store.GetSegments(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "chunker", segs[0].Metadata["source"])
	topics := segs[0].Topics()
	require.Len(t, topics, 1)
	assert.Equal(t, "disarmament", topics[0].Concept)
	assert.Equal(t, []string{"nuclear", "disarmament"}, topics[0].MatchedTerms)

	// Saving topics again replaces them.
	require.NoError(t, store.SaveTopics(ctx, []string{"s0"}, nil))
	segs, err = store.GetSegments(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, segs[0].Topics())
}

func TestStore_Concepts(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.SaveConcepts(ctx, []domain.Concept{
		{Name: "sovereignty", Category: "politics", Terms: []domain.ConceptTerm{{Term: "sovereign", Weight: 0.8}}},
		{Name: "disarmament", Description: "arms control", Terms: []domain.ConceptTerm{
			{Term: "arms control", Weight: 0.7},
			{Term: "disarmament", Weight: 1},
		}},
	}))

	concepts, err := store.ListConcepts(ctx)
	require.NoError(t, err)
	require.Len(t, concepts, 2)
	assert.Equal(t, "disarmament", concepts[0].Name)
	assert.Equal(t, "arms control", concepts[0].Description)
	assert.Equal(t, []domain.ConceptTerm{{Term: "disarmament", Weight: 1}, {Term: "arms control", Weight: 0.7}}, concepts[0].Terms)
	assert.Equal(t, "politics", concepts[1].Category)

	require.NoError(t, store.SaveConcepts(ctx, []domain.Concept{{Name: "climate_change"}}))
	concepts, err = store.ListConcepts(ctx)
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Empty(t, concepts[0].Terms)
}

func TestStore_Trends(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("USA_37_1982", "USA", 1982, "a")))
	require.NoError(t, store.SaveDocument(ctx, speech("USA_39_1984", "USA", 1984, "b")))
	require.NoError(t, store.SaveDocument(ctx, speech("FRA_65_2010", "FRA", 2010, "c")))
	require.NoError(t, store.SaveSegments(ctx, []domain.Segment{
		{ID: "a", DocumentID: "USA_37_1982"},
		{ID: "b", DocumentID: "USA_37_1982", Ordinal: 1},
		{ID: "c", DocumentID: "USA_39_1984"},
		{ID: "d", DocumentID: "FRA_65_2010"},
	}))
	require.NoError(t, store.SaveTopics(ctx, []string{"a", "b", "c", "d"}, []domain.SegmentTopic{
		{SegmentID: "a", Concept: "disarmament", Relevance: 1},
		{SegmentID: "b", Concept: "disarmament", Relevance: 0.8},
		{SegmentID: "c", Concept: "disarmament", Relevance: 0.9},
		{SegmentID: "d", Concept: "disarmament", Relevance: 0.9},
		{SegmentID: "d", Concept: "climate_change", Relevance: 1},
	}))

	trends, err := store.Trends(ctx, "disarmament", nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.ConceptTrend{
		{Concept: "disarmament", CountryCode: "FRA", Decade: 2010, Mentions: 1, Speeches: 1},
		{Concept: "disarmament", CountryCode: "USA", Decade: 1980, Mentions: 3, Speeches: 2},
	}, trends)

	trends, err = store.Trends(ctx, "disarmament", []string{"FRA"})
	require.NoError(t, err)
	assert.Len(t, trends, 1)

	trends, err = store.Trends(ctx, "unknown", nil)
	require.NoError(t, err)
	assert.Empty(t, trends)
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("USA_37_1982", "USA", 1982, "full")))
	require.NoError(t, store.SaveDocument(ctx, speech("FRA_65_2010", "FRA", 2010, "full")))
	require.NoError(t, store.SaveSegments(ctx, []domain.Segment{
		{ID: "u0", DocumentID: "USA_37_1982", Content: "The arms race threatens every nation."},
		{ID: "u1", DocumentID: "USA_37_1982", Ordinal: 1, Content: "Trade and development matter."},
		{ID: "f0", DocumentID: "FRA_65_2010", Content: "Climate change and the arms trade treaty."},
	}))

	results, err := store.Search(ctx, "arms", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.Highlight, "[arms]")
		assert.Greater(t, r.Score, 0.0)
		assert.Empty(t, r.Document.Content)
		assert.Equal(t, r.Document.ID, r.Segment.DocumentID)
	}

	results, err = store.Search(ctx, "arms", domain.SearchOptions{CountryCodes: []string{"FRA"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f0", results[0].Segment.ID)
	assert.Equal(t, 2010, results[0].Document.Year())

	results, err = store.Search(ctx, "arms race", domain.SearchOptions{YearTo: 1990})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "u0", results[0].Segment.ID)

	// FTS operators in user input are treated as plain terms.
	results, err = store.Search(ctx, `trade OR "`, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = store.Search(ctx, "   ", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_Query(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.SaveDocument(ctx, speech("USA_37_1982", "USA", 1982, "a")))
	require.NoError(t, store.SaveDocument(ctx, speech("FRA_65_2010", "FRA", 2010, "b")))

	res, err := store.Query(ctx, "SELECT country_code, year FROM speeches ORDER BY year;", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"country_code", "year"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "USA", res.Rows[0][0])
	assert.EqualValues(t, 1982, res.Rows[0][1])
	assert.False(t, res.Truncated)

	res, err = store.Query(ctx, "WITH s AS (SELECT id FROM speeches) SELECT id FROM s", 1)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
	assert.True(t, res.Truncated)

	for _, q := range []string{
		"",
		"DELETE FROM documents",
		"SELECT 1; DROP TABLE documents",
		"PRAGMA table_info(documents)",
	} {
		_, err := store.Query(ctx, q, 10)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, q)
	}

	_, err = store.Query(ctx, "SELECT * FROM no_such_table", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// The connection is writable again afterwards.
	require.NoError(t, store.SaveDocument(ctx, speech("BRA_1_1946", "BRA", 1946, "c")))
}

func TestStore_NotesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, store.SaveNote(ctx, &domain.Note{
			ID: id, Title: "t" + id, Body: "b", CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	notes, err := store.ListNotes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "n3", notes[0].ID)
	assert.Equal(t, "n2", notes[1].ID)
	assert.Equal(t, "tn3", notes[0].Title)

	notes, err = store.ListNotes(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}

func TestStore_Transcripts(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Append(ctx, "sess", domain.Message{Role: domain.RoleUser, Content: "hi"}))
	require.NoError(t, store.Append(ctx, "sess",
		domain.Message{
			Role:      domain.RoleAssistant,
			ToolCalls: []domain.ToolCall{{ID: "call_1", Name: "list_notes", Arguments: []byte(`{}`)}},
		},
		domain.Message{Role: domain.RoleTool, Content: "[]", ToolCallID: "call_1", Name: "list_notes"},
	))
	require.NoError(t, store.Append(ctx, "other", domain.Message{Role: domain.RoleUser, Content: "x"}))

	msgs, err := store.Read(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, "list_notes", msgs[1].ToolCalls[0].Name)
	assert.Equal(t, "call_1", msgs[2].ToolCallID)

	require.NoError(t, store.Delete(ctx, "sess"))
	msgs, err = store.Read(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = store.Read(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestFloat32Encoding(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

func TestFtsQuery(t *testing.T) {
	assert.Equal(t, `"arms" "race"`, ftsQuery("  arms   race "))
	assert.Equal(t, `"OR" "x"`, ftsQuery(`OR "x"`))
	assert.Empty(t, ftsQuery(`""`))
}
