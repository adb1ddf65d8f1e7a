// Package reader provides the full-text speech reader view for the TUI.
package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// ErrNoDocumentService is returned when the view has no document service.
var ErrNoDocumentService = errors.New("document service not available")

// View shows the wrapped text of one speech.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	speech       *domain.Document
	lines        []string
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
}

// NewView creates a new reader view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
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

// Open clears the view and returns a command loading the speech.
func (v *View) Open(documentID string) tea.Cmd {
	v.speech = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true

	ctx := v.ctx
	svc := v.documentService
	return func() tea.Msg {
		if svc == nil {
			return messages.SpeechLoaded{Err: ErrNoDocumentService}
		}
		doc, err := svc.Get(ctx, documentID)
		return messages.SpeechLoaded{Speech: doc, Err: err}
	}
}

// Update handles messages for the reader view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SpeechLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.speech = msg.Speech
			v.wrap()
		}
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
		v.scrollBy(-1)
	case "down", "j":
		v.scrollBy(1)
	case "pgup", "ctrl+u":
		v.scrollBy(-v.visibleLines())
	case "pgdown", "ctrl+d", " ":
		v.scrollBy(v.visibleLines())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		return v, func() tea.Msg { return messages.Back{} }
	}
	return v, nil
}

func (v *View) scrollBy(n int) {
	v.scrollOffset = min(max(v.scrollOffset+n, 0), v.maxScrollOffset())
}

// wrap word-wraps the speech text to the view width.
func (v *View) wrap() {
	if v.speech == nil || v.speech.Content == "" {
		v.lines = nil
		return
	}
	width := max(v.width-4, 20)
	wrapped := lipgloss.NewStyle().Width(width).Render(v.speech.Content)
	v.lines = strings.Split(wrapped, "\n")
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

func (v *View) visibleLines() int {
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the reader.
func (v *View) View() string {
	var b strings.Builder

	title := "Speech"
	if v.speech != nil {
		title = list.SpeechLabel(v.speech)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.speech != nil {
		if speaker := v.speech.MetaString(domain.MetaSpeaker); speaker != "" {
			b.WriteString(v.styles.Subtitle.Render(speaker))
			b.WriteString("\n")
		}
	}
	b.WriteString(v.styles.Separator(v.width - 4))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading speech..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(empty speech)"))
	default:
		end := min(v.scrollOffset+v.visibleLines(), len(v.lines))
		for _, line := range v.lines[v.scrollOffset:end] {
			b.WriteString(v.styles.Normal.Render(line))
			b.WriteString("\n")
		}
		if len(v.lines) > v.visibleLines() {
			pct := 100 * end / len(v.lines)
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("\n[%d-%d of %d lines] %d%%",
				v.scrollOffset+1, end, len(v.lines), pct)))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Scroll  [PgUp/PgDn] Page  [g/G] Top/Bottom  [Esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions and rewraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrap()
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// LineCount returns the number of wrapped lines.
func (v *View) LineCount() int {
	return len(v.lines)
}
