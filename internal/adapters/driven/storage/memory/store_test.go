package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

func speech(id, country string, year int) *domain.Document {
	return &domain.Document{
		ID:      id,
		Content: "text",
		Metadata: map[string]any{
			domain.MetaCountryCode: country,
			domain.MetaYear:        year,
		},
	}
}

func embedded(docID, segID string, ordinal int, values ...float32) domain.EmbeddedSegment {
	return domain.EmbeddedSegment{
		Segment: domain.Segment{ID: segID, DocumentID: docID, Ordinal: ordinal, Content: segID},
		Vector:  domain.Vector{ID: "v-" + segID, Values: values, Model: "test"},
	}
}

func TestStore_DocumentsOrderedByYear(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveDocument(ctx, speech("USA_75_2020", "USA", 2020)))
	require.NoError(t, s.SaveDocument(ctx, speech("FRA_30_1975", "FRA", 1975)))
	require.NoError(t, s.SaveDocument(ctx, speech("BRA_30_1975", "BRA", 1975)))

	docs, err := s.ListDocuments(ctx, domain.DocumentFilter{})
	require.NoError(t, err)
	ids := []string{docs[0].ID, docs[1].ID, docs[2].ID}
	assert.Equal(t, []string{"BRA_30_1975", "FRA_30_1975", "USA_75_2020"}, ids)

	docs, err = s.ListDocuments(ctx, domain.DocumentFilter{YearFrom: 2000, Limit: 5})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = s.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveEmbeddedLinksVectors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveDocument(ctx, speech("d1", "USA", 2020)))

	require.NoError(t, s.SaveEmbedded(ctx, []domain.EmbeddedSegment{
		embedded("d1", "s1", 1, 0, 1),
		embedded("d1", "s0", 0, 1, 0),
	}))

	segs, err := s.GetSegments(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "s0", segs[0].ID)
	assert.True(t, segs[0].Embedded())
	assert.Equal(t, "v-s0", *segs[0].VectorID)

	v, err := s.GetVector(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", v.SegmentID)

	vectors, err := s.ListVectors(ctx, domain.DocumentFilter{})
	require.NoError(t, err)
	assert.Equal(t, "s0", vectors[0].SegmentID)
	assert.Equal(t, "s1", vectors[1].SegmentID)
}

func TestStore_LinkVectorsIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveDocument(ctx, speech("d1", "USA", 2020)))
	require.NoError(t, s.SaveSegments(ctx, []domain.Segment{
		{ID: "s0", DocumentID: "d1", Ordinal: 0},
		{ID: "s1", DocumentID: "d1", Ordinal: 1},
	}))

	n, err := s.CountUnembedded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.LinkVectors(ctx, []domain.Vector{{ID: "v0", SegmentID: "s0", Values: []float32{1}}}))

	err = s.LinkVectors(ctx, []domain.Vector{
		{ID: "v1", SegmentID: "s1", Values: []float32{1}},
		{ID: "v0b", SegmentID: "s0", Values: []float32{2}},
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyEmbedded)

	seg, err := s.GetSegment(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, seg.Embedded(), "a rejected batch writes nothing")

	v, err := s.GetVector(ctx, "s0")
	require.NoError(t, err)
	assert.Equal(t, "v0", v.ID)
}

func TestStore_ReplacingDocumentDropsSegments(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveDocument(ctx, speech("d1", "USA", 2020)))
	require.NoError(t, s.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("d1", "s0", 0, 1)}))

	changed := speech("d1", "USA", 2020)
	changed.Content = "new text"
	require.NoError(t, s.SaveDocument(ctx, changed))

	segs, err := s.GetSegments(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, segs)
	_, err = s.GetVector(ctx, "s0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ResavingSameContentKeepsSegments(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveDocument(ctx, speech("d1", "USA", 2020)))
	require.NoError(t, s.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("d1", "s0", 0, 1)}))

	retitled := speech("d1", "USA", 2020)
	retitled.Title = "Address"
	require.NoError(t, s.SaveDocument(ctx, retitled))

	segs, err := s.GetSegments(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.True(t, segs[0].Embedded())
	doc, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Address", doc.Title)
}

func TestStore_PendingDocuments(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveDocument(ctx, speech("done", "USA", 1990)))
	require.NoError(t, s.SaveDocument(ctx, speech("fresh", "FRA", 2000)))
	require.NoError(t, s.SaveDocument(ctx, speech("partial", "BRA", 1980)))
	require.NoError(t, s.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("done", "d0", 0, 1)}))
	require.NoError(t, s.SaveEmbedded(ctx, []domain.EmbeddedSegment{embedded("partial", "p0", 0, 1)}))
	require.NoError(t, s.SaveSegments(ctx, []domain.Segment{{ID: "p1", DocumentID: "partial", Ordinal: 1}}))

	ids, err := s.PendingDocuments(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"partial", "fresh"}, ids)

	ids, err = s.PendingDocuments(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"partial"}, ids)
}

func TestStore_SaveSegmentsRequiresDocument(t *testing.T) {
	err := NewStore().SaveSegments(context.Background(), []domain.Segment{{ID: "s", DocumentID: "none"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Trends(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveDocument(ctx, speech("USA_37_1982", "USA", 1982)))
	require.NoError(t, s.SaveDocument(ctx, speech("USA_39_1984", "USA", 1984)))
	require.NoError(t, s.SaveDocument(ctx, speech("FRA_65_2010", "FRA", 2010)))
	require.NoError(t, s.SaveSegments(ctx, []domain.Segment{
		{ID: "a", DocumentID: "USA_37_1982"},
		{ID: "b", DocumentID: "USA_37_1982", Ordinal: 1},
		{ID: "c", DocumentID: "USA_39_1984"},
		{ID: "d", DocumentID: "FRA_65_2010"},
	}))
	require.NoError(t, s.SaveTopics(ctx, []string{"a", "b", "c", "d"}, []domain.SegmentTopic{
		{SegmentID: "a", Concept: "disarmament", Relevance: 1},
		{SegmentID: "b", Concept: "disarmament", Relevance: 0.8},
		{SegmentID: "c", Concept: "disarmament", Relevance: 0.9},
		{SegmentID: "d", Concept: "disarmament", Relevance: 0.9},
		{SegmentID: "d", Concept: "climate_change", Relevance: 1},
	}))

	trends, err := s.Trends(ctx, "disarmament", nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.ConceptTrend{
		{Concept: "disarmament", CountryCode: "FRA", Decade: 2010, Mentions: 1, Speeches: 1},
		{Concept: "disarmament", CountryCode: "USA", Decade: 1980, Mentions: 3, Speeches: 2},
	}, trends)

	trends, err = s.Trends(ctx, "disarmament", []string{"FRA"})
	require.NoError(t, err)
	assert.Len(t, trends, 1)
}

func TestStore_NotesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, s.SaveNote(ctx, &domain.Note{ID: id}))
	}

	notes, err := s.ListNotes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "n3", notes[0].ID)
	assert.Equal(t, "n2", notes[1].ID)
}

func TestStore_Transcripts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Append(ctx, "sess", domain.Message{Role: domain.RoleUser, Content: "hi"}))
	require.NoError(t, s.Append(ctx, "sess", domain.Message{Role: domain.RoleAssistant, Content: "hello"}))

	msgs, err := s.Read(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Content)

	require.NoError(t, s.Delete(ctx, "sess"))
	msgs, err = s.Read(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
