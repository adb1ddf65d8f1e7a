// Package messages defines the messages passed between TUI views.
package messages

import (
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// ViewType identifies the different views in the TUI.
type ViewType int

const (
	// ViewMenu is the main menu.
	ViewMenu ViewType = iota
	// ViewSearch is full-text search over speech segments.
	ViewSearch
	// ViewSpeeches lists ingested speeches.
	ViewSpeeches
	// ViewReader shows the full text of one speech.
	ViewReader
	// ViewDetails shows speech metadata and indexing progress.
	ViewDetails
	// ViewSimilar lists passages similar to a segment.
	ViewSimilar
	// ViewHelp shows keybindings.
	ViewHelp
)

// String returns a human-readable name for the view.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewSpeeches:
		return "speeches"
	case ViewReader:
		return "reader"
	case ViewDetails:
		return "details"
	case ViewSimilar:
		return "similar"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// SearchCompleted is sent when a search finishes.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ViewChanged requests a switch to another view.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred reports an error to the status bar.
type ErrorOccurred struct {
	Err error
}

// SpeechesLoaded is sent when the speech list has been fetched.
type SpeechesLoaded struct {
	Speeches []domain.Document
	Err      error
}

// SpeechSelected asks the app to open a speech in the given view.
type SpeechSelected struct {
	DocumentID string
	View       ViewType
}

// SpeechLoaded carries a speech fetched for reading.
type SpeechLoaded struct {
	Speech *domain.Document
	Err    error
}

// DetailsLoaded carries a speech's display metadata.
type DetailsLoaded struct {
	Details *driving.DocumentDetails
	Err     error
}

// SimilarRequested asks the app to find passages similar to a segment.
type SimilarRequested struct {
	SegmentID string
	// Excerpt is the source passage, shown above the results.
	Excerpt string
}

// SimilarPassage is a similar segment resolved to its text.
type SimilarPassage struct {
	domain.ScoredSegment

	// DocumentID and Content are empty when no segment lookup is wired.
	DocumentID string
	Content    string
}

// SimilarLoaded carries the outcome of a similarity lookup.
type SimilarLoaded struct {
	SegmentID string
	Passages  []SimilarPassage
	Err       error
}

// Back returns to the view that opened the current one.
type Back struct{}

// Quit requests application exit.
type Quit struct{}
