// Package similar lists passages that are semantically close to a
// selected segment.
package similar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// ErrUnavailable is shown when no similarity service is wired.
var ErrUnavailable = errors.New("similarity search is not configured")

// Defaults for a lookup.
const (
	DefaultK         = 10
	DefaultThreshold = 0.5
)

// View shows the nearest neighbours of one segment.
type View struct {
	styles     *styles.Styles
	similarity driving.SimilarityService
	segments   driven.SegmentStore
	ctx        context.Context

	// K and Threshold bound each lookup.
	K         int
	Threshold float64

	segmentID string
	excerpt   string
	passages  []messages.SimilarPassage
	selected  int
	width     int
	height    int
	loading   bool
	err       error
}

// NewView creates a new similar view. segments may be nil, in which case
// only segment IDs and scores are shown.
func NewView(s *styles.Styles, similarity driving.SimilarityService, segments driven.SegmentStore) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:     s,
		similarity: similarity,
		segments:   segments,
		ctx:        context.Background(),
		K:          DefaultK,
		Threshold:  DefaultThreshold,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open returns a command that finds passages similar to req.SegmentID.
func (v *View) Open(req messages.SimilarRequested) tea.Cmd {
	v.segmentID = req.SegmentID
	v.excerpt = req.Excerpt
	v.passages = nil
	v.selected = 0
	v.err = nil
	v.loading = true

	ctx, svc, segs := v.ctx, v.similarity, v.segments
	k, threshold := v.K, v.Threshold
	return func() tea.Msg {
		return lookup(ctx, svc, segs, req.SegmentID, k, threshold)
	}
}

func lookup(
	ctx context.Context,
	svc driving.SimilarityService,
	segs driven.SegmentStore,
	segmentID string,
	k int,
	threshold float64,
) messages.SimilarLoaded {
	out := messages.SimilarLoaded{SegmentID: segmentID}
	if svc == nil {
		out.Err = ErrUnavailable
		return out
	}
	scored, err := svc.SimilarSegments(ctx, segmentID, k, threshold)
	if err != nil {
		out.Err = err
		return out
	}
	out.Passages = make([]messages.SimilarPassage, len(scored))
	for i, s := range scored {
		out.Passages[i].ScoredSegment = s
		if segs == nil {
			continue
		}
		// Missing segments still list with their score.
		if seg, err := segs.GetSegment(ctx, s.SegmentID); err == nil {
			out.Passages[i].DocumentID = seg.DocumentID
			out.Passages[i].Content = seg.Content
		}
	}
	return out
}

// Update handles messages for the similar view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SimilarLoaded:
		if msg.SegmentID != v.segmentID {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		v.passages = msg.Passages
		return v, nil

	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.passages)-1 {
			v.selected++
		}
	case "enter":
		if p := v.Selected(); p != nil && p.DocumentID != "" {
			id := p.DocumentID
			return v, func() tea.Msg {
				return messages.SpeechSelected{DocumentID: id, View: messages.ViewReader}
			}
		}
	case "s":
		// Hop to the neighbours of the selected passage.
		if p := v.Selected(); p != nil {
			req := messages.SimilarRequested{SegmentID: p.SegmentID, Excerpt: p.Content}
			return v, func() tea.Msg { return req }
		}
	case "esc":
		return v, func() tea.Msg { return messages.Back{} }
	}
	return v, nil
}

// View renders the similar passages.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Similar Passages"))
	b.WriteString("\n")
	if v.excerpt != "" {
		excerpt := list.Truncate(strings.Join(strings.Fields(v.excerpt), " "), v.width-4)
		b.WriteString(v.styles.Muted.Render(excerpt))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Separator(v.width - 4))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Finding similar passages..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.passages) == 0:
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Nothing scores above %.2f.", v.Threshold)))
	default:
		start, end := list.Window(v.selected, len(v.passages), (v.height-8)/2)
		for i := start; i < end; i++ {
			b.WriteString(v.renderPassage(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Read speech  [s] Similar to this  [Esc] Back"))
	return b.String()
}

func (v *View) renderPassage(i int) string {
	p := v.passages[i]
	head := fmt.Sprintf("%s %s", shortID(p.SegmentID), v.styles.Score.Render(fmt.Sprintf("%.4f", p.Score)))
	if i == v.selected {
		head = v.styles.Selected.Render(">") + " " + head
	} else {
		head = "  " + head
	}
	body := p.Content
	if body == "" {
		body = "(text unavailable)"
	}
	body = list.Truncate(strings.Join(strings.Fields(body), " "), v.width-6)
	return head + "\n    " + v.styles.Normal.Render(body)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Selected returns the selected passage, or nil when none.
func (v *View) Selected() *messages.SimilarPassage {
	if v.selected < 0 || v.selected >= len(v.passages) {
		return nil
	}
	return &v.passages[v.selected]
}

// SegmentID returns the segment whose neighbours are shown.
func (v *View) SegmentID() string {
	return v.segmentID
}
