// Package details provides the speech details view for the TUI.
package details

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// ErrNoDocumentService is returned when the view has no document service.
var ErrNoDocumentService = errors.New("document service not available")

const barWidth = 30

// View shows speech metadata and how much of it has been embedded.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	details      *driving.DocumentDetails
	scrollOffset int
	width        int
	height       int
	err          error
}

// NewView creates a new details view.
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

// Open clears the view and returns a command loading the details.
func (v *View) Open(documentID string) tea.Cmd {
	v.details = nil
	v.err = nil
	v.scrollOffset = 0

	ctx := v.ctx
	svc := v.documentService
	return func() tea.Msg {
		if svc == nil {
			return messages.DetailsLoaded{Err: ErrNoDocumentService}
		}
		d, err := svc.GetDetails(ctx, documentID)
		return messages.DetailsLoaded{Details: d, Err: err}
	}
}

// Update handles messages for the details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.scrollOffset > 0 {
				v.scrollOffset--
			}
		case "down", "j":
			if v.scrollOffset < v.maxScrollOffset() {
				v.scrollOffset++
			}
		case "enter", "r":
			if v.details != nil {
				id := v.details.ID
				return v, func() tea.Msg {
					return messages.SpeechSelected{DocumentID: id, View: messages.ViewReader}
				}
			}
		case "esc":
			return v, func() tea.Msg { return messages.Back{} }
		}
		return v, nil

	case messages.DetailsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.details = msg.Details
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) visibleLines() int {
	return max(v.height-8, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

func (v *View) buildContent() []string {
	d := v.details
	if d == nil {
		return nil
	}

	lines := []string{
		formatField("ID", d.ID),
		formatField("Title", d.Title),
		formatField("File", d.URI),
		formatField("Segments", fmt.Sprint(d.SegmentCount)),
		formatField("Embedded", progressBar(d.EmbeddedCount, d.SegmentCount)),
	}
	if !d.CreatedAt.IsZero() {
		lines = append(lines, formatField("Ingested", d.CreatedAt.Format("2006-01-02 15:04")))
	}

	if len(d.Metadata) > 0 {
		lines = append(lines, "", "Metadata:")
		keys := make([]string, 0, len(d.Metadata))
		for k := range d.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			value := d.Metadata[k]
			if r := []rune(value); len(r) > 50 {
				value = string(r[:47]) + "..."
			}
			lines = append(lines, "  "+k+": "+value)
		}
	}
	return lines
}

func formatField(label, value string) string {
	return fmt.Sprintf("%-10s %s", label+":", value)
}

// progressBar renders done/total as a fixed-width bar with a count.
func progressBar(done, total int) string {
	if total <= 0 {
		return "not indexed"
	}
	filled := barWidth * done / total
	return fmt.Sprintf("%s%s %d/%d",
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled), done, total)
}

// View renders the details view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Speech Details"))
	b.WriteString("\n")
	b.WriteString(v.styles.Separator(v.width - 4))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.details == nil:
		b.WriteString(v.styles.Muted.Render("Loading details..."))
	default:
		lines := v.buildContent()
		end := min(v.scrollOffset+v.visibleLines(), len(lines))
		for _, line := range lines[v.scrollOffset:end] {
			switch {
			case line == "Metadata:":
				b.WriteString(v.styles.Subtitle.Render(line))
			case strings.HasPrefix(line, "  "):
				b.WriteString(v.styles.Muted.Render(line))
			default:
				label, value, _ := strings.Cut(line, ":")
				b.WriteString(v.styles.Subtitle.Render(label + ":"))
				b.WriteString(v.styles.Normal.Render(value))
			}
			b.WriteString("\n")
		}
		if v.details.Indexed() {
			b.WriteString("\n" + v.styles.Success.Render("Fully indexed"))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Scroll  [Enter] Read  [Esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Details returns the loaded details.
func (v *View) Details() *driving.DocumentDetails {
	return v.details
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
