package domain

import (
	"strconv"
	"time"
)

// Well-known document metadata keys.
const (
	MetaYear        = "year"
	MetaSession     = "session"
	MetaCountryCode = "country_code"
	MetaCountryName = "country_name"
	MetaSpeaker     = "speaker"
	MetaRegion      = "region"
)

// MetaTopics is the segment metadata key holding []SegmentTopic.
const MetaTopics = "topics"

// Document is an ingested source text, typically one speech.
// Documents are never mutated after ingestion. Re-ingesting a document
// replaces it and discards its segments.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text of the document.
	Content string

	// Metadata holds origin details such as year, country and speaker.
	Metadata map[string]any

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Year returns the year recorded in metadata, or 0 when absent.
func (d *Document) Year() int {
	switch v := d.Metadata[MetaYear].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// MetaString returns a string metadata value, or "" when absent.
func (d *Document) MetaString(key string) string {
	s, _ := d.Metadata[key].(string)
	return s
}

// Segment is a bounded, overlapping slice of a Document.
// It is the unit of embedding and retrieval.
type Segment struct {
	// ID is the unique identifier for the segment.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the segment text.
	Content string

	// Ordinal is the zero-based position within the document.
	Ordinal int

	// VectorID links to the segment's embedding. It is nil until the
	// segment has been embedded and is set exactly once.
	VectorID *string

	// Metadata contains segment-specific key-value pairs
	// (for example concept tags).
	Metadata map[string]any
}

// Embedded reports whether the segment has a linked vector.
func (s *Segment) Embedded() bool {
	return s.VectorID != nil && *s.VectorID != ""
}

// Topics returns the concept topics attached to the segment, if any.
func (s *Segment) Topics() []SegmentTopic {
	topics, _ := s.Metadata[MetaTopics].([]SegmentTopic)
	return topics
}

// Vector is the fixed-dimension embedding of one Segment.
type Vector struct {
	// ID is the unique identifier for the vector.
	ID string

	// SegmentID is the segment this vector represents.
	SegmentID string

	// Values are the embedding components.
	Values []float32

	// Model is the embedding model that produced the vector.
	Model string
}

// Dimensions returns the vector length.
func (v *Vector) Dimensions() int {
	return len(v.Values)
}

// EmbeddedSegment pairs a freshly created segment with its vector so
// both can be persisted in one transaction.
type EmbeddedSegment struct {
	Segment Segment
	Vector  Vector
}
