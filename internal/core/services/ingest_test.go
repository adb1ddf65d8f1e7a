package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/normalisers"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestService_IngestFile_Speech(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "FRA_75_2020.txt", "Mr. President,\r\nPeace requires courage.\r\n")
	store := memory.NewStore()
	svc := NewIngestService(store, store, normalisers.NewDefaultRegistry())

	doc, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "FRA_75_2020", doc.ID)
	assert.Equal(t, 2020, doc.Year())
	assert.Equal(t, "FRA", doc.MetaString(domain.MetaCountryCode))
	assert.Equal(t, "Mr. President,\nPeace requires courage.", doc.Content)

	stored, err := store.GetDocument(context.Background(), "FRA_75_2020")
	require.NoError(t, err)
	assert.Equal(t, doc.Content, stored.Content)
}

func TestIngestService_IngestFile_Errors(t *testing.T) {
	dir := t.TempDir()
	store := memory.NewStore()
	svc := NewIngestService(store, store, normalisers.NewDefaultRegistry())
	ctx := context.Background()

	_, err := svc.IngestFile(ctx, writeFile(t, dir, "slides.pptx", "binary"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = svc.IngestFile(ctx, writeFile(t, dir, "USA_75_2020.txt", "  \n "))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.IngestFile(ctx, dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.IngestFile(ctx, filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestService_IngestDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "FRA_75_2020.txt", "Liberty.")
	writeFile(t, dir, "nested/USA_75_2020.txt", "Freedom.")
	writeFile(t, dir, "notes.md", "# Notes\n\nSome notes.")
	writeFile(t, dir, "image.png", "png")
	writeFile(t, dir, "empty.txt", "")
	writeFile(t, dir, ".hidden/GBR_75_2020.txt", "Hidden.")
	store := memory.NewStore()
	svc := NewIngestService(store, store, normalisers.NewDefaultRegistry())

	report, err := svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Ingested)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)

	docs, err := store.ListDocuments(context.Background(), domain.DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestIngestService_IngestDir_Missing(t *testing.T) {
	store := memory.NewStore()
	svc := NewIngestService(store, store, normalisers.NewDefaultRegistry())

	_, err := svc.IngestDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestIngestService_ReingestUnchangedKeepsSegments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "FRA_75_2020.txt", "Liberty. Equality. Fraternity.")
	store := memory.NewStore()
	index := &deletingIndex{}
	svc := NewIngestService(store, store, normalisers.NewDefaultRegistry())
	svc.SetVectorIndex(index)

	first, err := svc.IngestDir(ctx, dir)
	require.NoError(t, err)
	require.Equal(t, 1, first.Ingested)
	_, err = NewIndexer(store, store, testPipeline(200, 20), newMockEmbedder(), nil, IndexerOptions{}).
		Index(ctx, nil, 0)
	require.NoError(t, err)
	before, err := store.GetSegments(ctx, "FRA_75_2020")
	require.NoError(t, err)
	require.NotEmpty(t, before)

	second, err := svc.IngestDir(ctx, dir)
	require.NoError(t, err)

	assert.Zero(t, second.Ingested)
	assert.Equal(t, 1, second.Unchanged)
	after, err := store.GetSegments(ctx, "FRA_75_2020")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, index.deleted)
}

func TestIngestService_ReingestChangedDropsIndexedVectors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "FRA_75_2020.txt", "Liberty. Equality. Fraternity.")
	store := memory.NewStore()
	index := &deletingIndex{}
	svc := NewIngestService(store, store, normalisers.NewDefaultRegistry())
	svc.SetVectorIndex(index)

	_, err := svc.IngestFile(ctx, path)
	require.NoError(t, err)
	_, err = NewIndexer(store, store, testPipeline(200, 20), newMockEmbedder(), nil, IndexerOptions{}).
		Index(ctx, nil, 0)
	require.NoError(t, err)
	old, err := store.GetSegments(ctx, "FRA_75_2020")
	require.NoError(t, err)
	require.Len(t, old, 1)

	writeFile(t, dir, "FRA_75_2020.txt", "Solidarity above all.")
	_, err = svc.IngestFile(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, []string{old[0].ID}, index.deleted)
	segs, err := store.GetSegments(ctx, "FRA_75_2020")
	require.NoError(t, err)
	assert.Empty(t, segs, "changed text is re-chunked on the next index run")
}
