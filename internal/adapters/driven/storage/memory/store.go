package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DocumentStore   = (*Store)(nil)
	_ driven.SegmentStore    = (*Store)(nil)
	_ driven.VectorStore     = (*Store)(nil)
	_ driven.NoteStore       = (*Store)(nil)
	_ driven.ConceptStore    = (*Store)(nil)
	_ driven.TranscriptStore = (*Store)(nil)
	_ driven.QuotationStore  = (*Store)(nil)
)

// Store is an in-memory implementation of the storage ports.
// It mirrors the SQLite store's semantics and is used in tests.
type Store struct {
	mu          sync.RWMutex
	documents   map[string]domain.Document
	segments    map[string][]domain.Segment // by document ID, ordinal order
	vectors     map[string]domain.Vector    // by segment ID
	notes       []domain.Note
	concepts    []domain.Concept
	topics      map[string][]domain.SegmentTopic // by segment ID
	events      []domain.WorldEvent
	quotations  map[string][]domain.Quotation // by document ID
	transcripts map[string][]domain.Message
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		documents:   make(map[string]domain.Document),
		segments:    make(map[string][]domain.Segment),
		vectors:     make(map[string]domain.Vector),
		topics:      make(map[string][]domain.SegmentTopic),
		quotations:  make(map[string][]domain.Quotation),
		transcripts: make(map[string][]domain.Message),
	}
}

// SaveDocument stores a document, discarding the segments and quotations
// of an earlier version with different content.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.documents[doc.ID]; ok && prev.Content != doc.Content {
		s.dropSegments(doc.ID)
	}
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns matching documents ordered by year then ID.
func (s *Store) ListDocuments(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.matching(filter)
	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}

// DeleteDocument removes a document with its segments and vectors.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropSegments(id)
	delete(s.documents, id)
	return nil
}

// GetSegments retrieves all segments for a document.
func (s *Store) GetSegments(_ context.Context, documentID string) ([]domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Segment(nil), s.segments[documentID]...), nil
}

// GetSegment retrieves a specific segment by ID.
func (s *Store) GetSegment(_ context.Context, id string) (*domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if seg, ok := s.findSegment(id); ok {
		return &seg, nil
	}
	return nil, domain.ErrNotFound
}

// SaveSegments stores unembedded segments.
func (s *Store) SaveSegments(_ context.Context, segments []domain.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seg := range segments {
		if _, ok := s.documents[seg.DocumentID]; !ok {
			return fmt.Errorf("segment %s: document %s: %w", seg.ID, seg.DocumentID, domain.ErrNotFound)
		}
	}
	for _, seg := range segments {
		seg.VectorID = nil
		s.putSegment(seg)
	}
	return nil
}

// SaveEmbedded inserts segments with their vectors. Either every item is
// written or none is.
func (s *Store) SaveEmbedded(_ context.Context, items []domain.EmbeddedSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if _, ok := s.documents[it.Segment.DocumentID]; !ok {
			return fmt.Errorf("segment %s: document %s: %w", it.Segment.ID, it.Segment.DocumentID, domain.ErrNotFound)
		}
		if existing, ok := s.findSegment(it.Segment.ID); ok && existing.Embedded() {
			return fmt.Errorf("segment %s: %w", it.Segment.ID, domain.ErrAlreadyEmbedded)
		}
	}
	for _, it := range items {
		seg, vec := it.Segment, it.Vector
		vec.SegmentID = seg.ID
		id := vec.ID
		seg.VectorID = &id
		s.putSegment(seg)
		s.vectors[seg.ID] = vec
	}
	return nil
}

// LinkVectors links vectors to existing unembedded segments. Either every
// link is written or none is.
func (s *Store) LinkVectors(_ context.Context, vectors []domain.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		seg, ok := s.findSegment(v.SegmentID)
		if !ok {
			return fmt.Errorf("segment %s: %w", v.SegmentID, domain.ErrNotFound)
		}
		if seg.Embedded() {
			return fmt.Errorf("segment %s: %w", v.SegmentID, domain.ErrAlreadyEmbedded)
		}
	}
	for _, v := range vectors {
		seg, _ := s.findSegment(v.SegmentID)
		id := v.ID
		seg.VectorID = &id
		s.putSegment(seg)
		s.vectors[v.SegmentID] = v
	}
	return nil
}

// CountUnembedded returns the number of segments without a vector.
func (s *Store) CountUnembedded(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, segs := range s.segments {
		for _, seg := range segs {
			if !seg.Embedded() {
				n++
			}
		}
	}
	return n, nil
}

// PendingDocuments returns IDs of documents that are not fully embedded.
func (s *Store) PendingDocuments(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, doc := range s.matching(domain.DocumentFilter{}) {
		segs := s.segments[doc.ID]
		pending := len(segs) == 0
		for _, seg := range segs {
			if !seg.Embedded() {
				pending = true
				break
			}
		}
		if !pending {
			continue
		}
		ids = append(ids, doc.ID)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids, nil
}

// GetVector returns the vector linked to a segment.
func (s *Store) GetVector(_ context.Context, segmentID string) (*domain.Vector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vectors[segmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

// ListVectors returns vectors of matching documents in document then
// ordinal order.
func (s *Store) ListVectors(_ context.Context, filter domain.DocumentFilter) ([]domain.Vector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Vector
	for _, doc := range s.matching(filter) {
		for _, seg := range s.segments[doc.ID] {
			v, ok := s.vectors[seg.ID]
			if !ok {
				continue
			}
			out = append(out, v)
			if filter.Limit > 0 && len(out) == filter.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// SaveNote stores a note.
func (s *Store) SaveNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, *note)
	return nil
}

// ListNotes returns the newest notes first.
func (s *Store) ListNotes(_ context.Context, limit int) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Note, 0, len(s.notes))
	for i := len(s.notes) - 1; i >= 0; i-- {
		out = append(out, s.notes[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SaveConcepts replaces the concept dictionary.
func (s *Store) SaveConcepts(_ context.Context, concepts []domain.Concept) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.concepts = append([]domain.Concept(nil), concepts...)
	sort.Slice(s.concepts, func(i, j int) bool { return s.concepts[i].Name < s.concepts[j].Name })
	return nil
}

// ListConcepts returns the concept dictionary ordered by name.
func (s *Store) ListConcepts(_ context.Context) ([]domain.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Concept(nil), s.concepts...), nil
}

// SaveTopics replaces the topics of the given segments.
func (s *Store) SaveTopics(_ context.Context, segmentIDs []string, topics []domain.SegmentTopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range segmentIDs {
		delete(s.topics, id)
	}
	for _, t := range topics {
		s.topics[t.SegmentID] = append(s.topics[t.SegmentID], t)
	}
	return nil
}

// Trends counts tagged segments and speeches per country and decade.
func (s *Store) Trends(_ context.Context, concept string, countryCodes []string) ([]domain.ConceptTrend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		country string
		decade  int
	}
	mentions := make(map[key]int)
	speeches := make(map[key]map[string]bool)

	filter := domain.DocumentFilter{CountryCodes: countryCodes}
	for _, doc := range s.matching(filter) {
		k := key{doc.MetaString(domain.MetaCountryCode), domain.Decade(doc.Year())}
		for _, seg := range s.segments[doc.ID] {
			for _, t := range s.topics[seg.ID] {
				if t.Concept != concept {
					continue
				}
				mentions[k]++
				if speeches[k] == nil {
					speeches[k] = make(map[string]bool)
				}
				speeches[k][doc.ID] = true
			}
		}
	}

	out := make([]domain.ConceptTrend, 0, len(mentions))
	for k, n := range mentions {
		out = append(out, domain.ConceptTrend{
			Concept:     concept,
			CountryCode: k.country,
			Decade:      k.decade,
			Mentions:    n,
			Speeches:    len(speeches[k]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CountryCode != out[j].CountryCode {
			return out[i].CountryCode < out[j].CountryCode
		}
		return out[i].Decade < out[j].Decade
	})
	return out, nil
}

// Append adds messages to a session transcript.
func (s *Store) Append(_ context.Context, sessionID string, msgs ...domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[sessionID] = append(s.transcripts[sessionID], msgs...)
	return nil
}

// Read returns a session transcript.
func (s *Store) Read(_ context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Message(nil), s.transcripts[sessionID]...), nil
}

// Delete removes a session transcript.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transcripts, sessionID)
	return nil
}

// matching returns filtered documents ordered by year then ID.
// Callers hold the lock.
func (s *Store) matching(filter domain.DocumentFilter) []domain.Document {
	var docs []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if filter.Matches(&doc) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if yi, yj := docs[i].Year(), docs[j].Year(); yi != yj {
			return yi < yj
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

func (s *Store) findSegment(id string) (domain.Segment, bool) {
	for _, segs := range s.segments {
		for _, seg := range segs {
			if seg.ID == id {
				return seg, true
			}
		}
	}
	return domain.Segment{}, false
}

// putSegment inserts or replaces a segment, keeping ordinal order.
func (s *Store) putSegment(seg domain.Segment) {
	segs := s.segments[seg.DocumentID]
	for i := range segs {
		if segs[i].ID == seg.ID {
			segs[i] = seg
			return
		}
	}
	segs = append(segs, seg)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Ordinal < segs[j].Ordinal })
	s.segments[seg.DocumentID] = segs
}

func (s *Store) dropSegments(documentID string) {
	for _, seg := range s.segments[documentID] {
		delete(s.vectors, seg.ID)
		delete(s.topics, seg.ID)
	}
	delete(s.segments, documentID)
	delete(s.quotations, documentID)
}
