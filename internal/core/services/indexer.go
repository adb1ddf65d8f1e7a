package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// Indexer defaults.
const (
	DefaultIndexBatchSize   = 100
	DefaultIndexConcurrency = 3
	DefaultIndexMaxRetries  = 2
)

// IndexerOptions tunes an Indexer. Zero values use the defaults.
type IndexerOptions struct {
	// BatchSize is the number of segments embedded and committed together.
	BatchSize int

	// Concurrency bounds how many documents are processed at once.
	Concurrency int

	// MaxRetries bounds how often a rate-limited batch is retried.
	MaxRetries int
}

func (o IndexerOptions) withDefaults() IndexerOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultIndexBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultIndexConcurrency
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = DefaultIndexMaxRetries
	}
	return o
}

// Indexer chunks documents into segments and embeds every segment that
// has no vector yet.
type Indexer struct {
	docs     driven.DocumentStore
	segments driven.SegmentStore
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	limiter  driven.RateLimiter
	concepts driven.ConceptStore
	index    driven.VectorIndex
	opts     IndexerOptions
}

// NewIndexer creates an indexer. The limiter is optional (can be nil).
func NewIndexer(
	docs driven.DocumentStore,
	segments driven.SegmentStore,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	limiter driven.RateLimiter,
	opts IndexerOptions,
) *Indexer {
	return &Indexer{
		docs:     docs,
		segments: segments,
		pipeline: pipeline,
		embedder: embedder,
		limiter:  limiter,
		opts:     opts.withDefaults(),
	}
}

// SetConceptStore enables persisting concept topics found while chunking.
func (ix *Indexer) SetConceptStore(store driven.ConceptStore) {
	ix.concepts = store
}

// SetVectorIndex mirrors new vectors into an external nearest neighbour index.
func (ix *Indexer) SetVectorIndex(index driven.VectorIndex) {
	ix.index = index
}

// Index processes documents concurrently. A failing document is recorded
// in the report and never stops its siblings.
func (ix *Indexer) Index(ctx context.Context, documentIDs []string, limit int) (*domain.IndexReport, error) {
	if ix.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	ids, err := ix.resolve(ctx, documentIDs, limit)
	if err != nil {
		return nil, err
	}

	logger.Section("Indexing")
	logger.Info("Indexing %d documents (batch=%d, concurrency=%d, model=%s)",
		len(ids), ix.opts.BatchSize, ix.opts.Concurrency, ix.embedder.ModelName())

	var (
		mu     sync.Mutex
		report domain.IndexReport
		g      errgroup.Group
	)
	g.SetLimit(ix.opts.Concurrency)

	for _, id := range ids {
		g.Go(func() error {
			r := ix.indexDocument(ctx, id)
			mu.Lock()
			report.Merge(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].DocumentID < report.Failures[j].DocumentID
	})

	logger.Info("Indexed %d documents (%d failed): %d embeddings created, %d skipped",
		report.DocumentsProcessed, report.DocumentsFailed, report.EmbeddingsCreated, report.EmbeddingsSkipped)

	if err := ctx.Err(); err != nil {
		return &report, err
	}
	return &report, nil
}

// resolve picks the documents to process. A limit without explicit IDs
// counts only documents that still have work, so repeated limited runs
// make progress through the corpus.
func (ix *Indexer) resolve(ctx context.Context, documentIDs []string, limit int) ([]string, error) {
	if len(documentIDs) > 0 {
		ids := documentIDs
		if limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
		return ids, nil
	}

	if limit > 0 {
		ids, err := ix.segments.PendingDocuments(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list pending documents: %w", err)
		}
		return ids, nil
	}

	docs, err := ix.docs.ListDocuments(ctx, domain.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	return ids, nil
}

// indexDocument brings one document to a fully embedded state. A document
// without stored segments is chunked and its segments are committed
// unembedded in one transaction. Pending segments are then embedded batch
// by batch, each batch committed on its own, so a failure keeps earlier
// batches.
func (ix *Indexer) indexDocument(ctx context.Context, documentID string) domain.IndexReport {
	report := domain.IndexReport{DocumentsProcessed: 1}
	fail := func(err error) domain.IndexReport {
		logger.Error("Indexing %s failed: %v", documentID, err)
		report.DocumentsFailed = 1
		report.Failures = []domain.IndexFailure{{DocumentID: documentID, Err: err}}
		return report
	}

	segments, err := ix.segments.GetSegments(ctx, documentID)
	if err != nil {
		return fail(fmt.Errorf("get segments: %w", err))
	}

	if len(segments) == 0 {
		segments, err = ix.segmentDocument(ctx, documentID)
		if err != nil {
			return fail(err)
		}
		report.SegmentsCreated = len(segments)
	} else {
		report.SegmentsSkipped = len(segments)
	}

	var pending []domain.Segment
	for _, seg := range segments {
		if seg.Embedded() {
			report.EmbeddingsSkipped++
		} else {
			pending = append(pending, seg)
		}
	}

	logger.Debug("%s: %d segments (%d new), %d to embed",
		documentID, len(segments), report.SegmentsCreated, len(pending))

	for start := 0; start < len(pending); start += ix.opts.BatchSize {
		batch := pending[start:min(start+ix.opts.BatchSize, len(pending))]
		vectors, err := ix.embed(ctx, batch)
		if err != nil {
			return fail(err)
		}
		if err := ix.segments.LinkVectors(ctx, vectors); err != nil {
			return fail(fmt.Errorf("link vectors: %w", err))
		}
		report.EmbeddingsCreated += len(vectors)
		ix.mirror(ctx, vectors)
	}
	return report
}

// segmentDocument chunks a document and stores every segment unembedded
// in one transaction, then records their concept topics. A stored
// segmentation is never redone, so changing the chunker settings only
// affects documents indexed afterwards.
func (ix *Indexer) segmentDocument(ctx context.Context, documentID string) ([]domain.Segment, error) {
	doc, err := ix.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	segments, err := ix.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	if len(segments) == 0 {
		return nil, nil
	}
	if err := ix.segments.SaveSegments(ctx, segments); err != nil {
		return nil, fmt.Errorf("save segments: %w", err)
	}
	if err := ix.saveTopics(ctx, segments); err != nil {
		logger.Warn("Saving topics for %s failed: %v", documentID, err)
	}
	return segments, nil
}

// embed turns a batch of segments into vectors, waiting on the rate
// limiter before each request and retrying rate-limited batches.
func (ix *Indexer) embed(ctx context.Context, batch []domain.Segment) ([]domain.Vector, error) {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Content
	}

	var (
		values [][]float32
		err    error
	)
	for attempt := 0; ; attempt++ {
		if ix.limiter != nil {
			if werr := ix.limiter.Wait(ctx); werr != nil {
				return nil, werr
			}
		}

		values, err = ix.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			break
		}

		var perr *domain.ProviderError
		if !errors.Is(err, domain.ErrRateLimited) || attempt >= ix.opts.MaxRetries {
			return nil, fmt.Errorf("embed batch: %w", err)
		}
		retryAfter := 0
		if errors.As(err, &perr) {
			retryAfter = perr.RetryAfter
		}
		logger.Warn("Rate limited, retrying batch (attempt %d/%d)", attempt+1, ix.opts.MaxRetries)
		if ix.limiter != nil {
			ix.limiter.RecordRateLimitError(retryAfter)
		}
	}

	if len(values) != len(batch) {
		return nil, fmt.Errorf("embed batch: got %d vectors for %d segments", len(values), len(batch))
	}

	model := ix.embedder.ModelName()
	vectors := make([]domain.Vector, len(batch))
	for i := range batch {
		if i > 0 && len(values[i]) != len(values[0]) {
			return nil, &domain.DimensionMismatchError{Left: len(values[0]), Right: len(values[i])}
		}
		vectors[i] = domain.Vector{
			ID:        uuid.New().String(),
			SegmentID: batch[i].ID,
			Values:    values[i],
			Model:     model,
		}
	}
	return vectors, nil
}

// mirror copies vectors into the external index. The index is derived
// data, so failures are logged and indexing continues.
func (ix *Indexer) mirror(ctx context.Context, vectors []domain.Vector) {
	if ix.index == nil {
		return
	}
	for _, v := range vectors {
		if err := ix.index.Add(ctx, v.SegmentID, v.Values); err != nil {
			logger.Warn("Vector index add %s failed: %v", v.SegmentID, err)
			return
		}
	}
}

// saveTopics stores the concept topics of newly chunked segments.
func (ix *Indexer) saveTopics(ctx context.Context, segments []domain.Segment) error {
	if ix.concepts == nil {
		return nil
	}
	ids := make([]string, len(segments))
	var topics []domain.SegmentTopic
	for i := range segments {
		ids[i] = segments[i].ID
		topics = append(topics, segments[i].Topics()...)
	}
	return ix.concepts.SaveTopics(ctx, ids, topics)
}
