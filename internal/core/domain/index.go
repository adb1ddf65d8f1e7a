package domain

// IndexReport summarises one indexing run so partial progress is visible.
type IndexReport struct {
	DocumentsProcessed int
	DocumentsFailed    int
	SegmentsCreated    int
	SegmentsSkipped    int
	EmbeddingsCreated  int
	EmbeddingsSkipped  int
	Failures           []IndexFailure
}

// IndexFailure records a document whose embedding stopped early.
type IndexFailure struct {
	DocumentID string
	Err        error
}

// Merge adds the counts of other into r.
func (r *IndexReport) Merge(other IndexReport) {
	r.DocumentsProcessed += other.DocumentsProcessed
	r.DocumentsFailed += other.DocumentsFailed
	r.SegmentsCreated += other.SegmentsCreated
	r.SegmentsSkipped += other.SegmentsSkipped
	r.EmbeddingsCreated += other.EmbeddingsCreated
	r.EmbeddingsSkipped += other.EmbeddingsSkipped
	r.Failures = append(r.Failures, other.Failures...)
}
