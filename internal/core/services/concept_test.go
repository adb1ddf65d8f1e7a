package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/postprocessors/concepts"
)

func seedSegments(t *testing.T, store *memory.Store, doc *domain.Document, texts ...string) {
	t.Helper()
	seedDocs(t, store, doc)
	segs := make([]domain.Segment, len(texts))
	for i, text := range texts {
		segs[i] = domain.Segment{
			ID:         doc.ID + "-" + string(rune('a'+i)),
			DocumentID: doc.ID,
			Content:    text,
			Ordinal:    i,
		}
	}
	require.NoError(t, store.SaveSegments(context.Background(), segs))
}

func TestConceptService_TagAndTrends(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	fra := speechDoc("FRA_55_2000", "")
	tuv := speechDoc("TUV_55_2000", "")
	tuv.Metadata[domain.MetaYear] = 2019

	seedSegments(t, store, fra,
		"We support nuclear disarmament and arms control.",
		"The weather in Paris is pleasant.",
	)
	seedSegments(t, store, tuv,
		"Climate change and sea level rise threaten our islands.",
		"Global warming is an existential threat.",
	)

	svc := NewConceptService(store, store, store, concepts.New())

	tagged, err := svc.Tag(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, tagged)

	trends, err := svc.Trends(ctx, "climate_change", nil)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, domain.ConceptTrend{
		Concept: "climate_change", CountryCode: "TUV", Decade: 2010, Mentions: 2, Speeches: 1,
	}, trends[0])

	trends, err = svc.Trends(ctx, "climate_change", []string{" fra "})
	require.NoError(t, err)
	assert.Empty(t, trends)

	stored, err := svc.Concepts(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, len(concepts.DefaultConcepts))
}

func TestConceptService_TagIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedSegments(t, store, speechDoc("TUV_55_2000", ""), "climate change, climate change")
	svc := NewConceptService(store, store, store, concepts.New())

	_, err := svc.Tag(ctx)
	require.NoError(t, err)
	_, err = svc.Tag(ctx)
	require.NoError(t, err)

	trends, err := svc.Trends(ctx, "climate_change", nil)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, 1, trends[0].Mentions, "tags are replaced, not duplicated")
}

func TestConceptService_TrendsValidation(t *testing.T) {
	store := memory.NewStore()
	svc := NewConceptService(store, store, store, concepts.New())

	_, err := svc.Trends(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Trends(context.Background(), "astrology", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConceptService_ConceptsFallsBackToDictionary(t *testing.T) {
	store := memory.NewStore()
	svc := NewConceptService(store, store, store, concepts.New())

	got, err := svc.Concepts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, concepts.DefaultConcepts, got)
}

func TestConceptService_EventImpacts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	before := speechDoc("USA_55_2000", "")
	during := speechDoc("USA_56_2001", "")
	during.Metadata[domain.MetaYear] = 2001
	after := speechDoc("USA_57_2002", "")
	after.Metadata[domain.MetaYear] = 2002

	seedSegments(t, store, before, "Terrorism is a threat.", "Trade grows.")
	seedSegments(t, store, during, "Terrorism struck New York.", "We condemn terrorism.")
	seedSegments(t, store, after, "Trade grows again.")

	svc := NewConceptService(store, store, store, concepts.New())
	svc.SetWorldEvents([]domain.WorldEvent{
		{Name: "September 11 attacks", Year: 2001, Concepts: []string{"terrorism"}},
		{Name: "Kyoto Protocol adopted", Year: 1997, Concepts: []string{"climate_change"}},
	})
	_, err := svc.Tag(ctx)
	require.NoError(t, err)

	impacts, err := svc.EventImpacts(ctx, "terrorism")
	require.NoError(t, err)
	require.Len(t, impacts, 1)
	assert.Equal(t, "September 11 attacks", impacts[0].Event.Name)
	assert.Equal(t, 1, impacts[0].Before)
	assert.Equal(t, 2, impacts[0].During)
	assert.Equal(t, 0, impacts[0].After)
	assert.Equal(t, 1, impacts[0].Change())

	_, err = svc.EventImpacts(ctx, "astrology")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.EventImpacts(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConceptService_EventsAreStoredByTag(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewConceptService(store, store, store, concepts.New())
	svc.SetWorldEvents(concepts.DefaultEvents)

	events, err := svc.Events(ctx, "")
	require.NoError(t, err)
	assert.Len(t, events, len(concepts.DefaultEvents), "configured events are reported before tagging")

	stored, err := store.ListEvents(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, stored)

	_, err = svc.Tag(ctx)
	require.NoError(t, err)

	stored, err = store.ListEvents(ctx, "climate_change")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Kyoto Protocol adopted", stored[0].Name)
	assert.Equal(t, "Paris Climate Agreement", stored[1].Name)

	events, err = svc.Events(ctx, " climate_change ")
	require.NoError(t, err)
	assert.Equal(t, stored, events)
}

func TestConceptService_RegionalTrends(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	fra := speechDoc("FRA_55_2000", "")
	fra.Metadata[domain.MetaRegion] = "Europe"
	deu := speechDoc("DEU_55_2000", "")
	deu.Metadata[domain.MetaRegion] = "Europe"
	bra := speechDoc("BRA_55_2000", "")

	seedSegments(t, store, fra, "We support disarmament.", "And more disarmament.")
	seedSegments(t, store, deu, "Trade matters.")
	seedSegments(t, store, bra, "Football matters.")

	svc := NewConceptService(store, store, store, concepts.New())
	_, err := svc.Tag(ctx)
	require.NoError(t, err)

	trends, err := svc.RegionalTrends(ctx, "disarmament")
	require.NoError(t, err)
	assert.Equal(t, []domain.RegionalTrend{
		{Concept: "disarmament", Region: "Europe", Year: 2000, Speeches: 2, Mentioning: 1, Percent: 50},
		{Concept: "disarmament", Region: domain.RegionOther, Year: 2000, Speeches: 1, Mentioning: 0, Percent: 0},
	}, trends)

	_, err = svc.RegionalTrends(ctx, "astrology")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
