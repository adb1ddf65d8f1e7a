// Package speeches provides the speech browser view for the TUI.
package speeches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// ErrNoDocumentService is returned when the view has no document service.
var ErrNoDocumentService = errors.New("document service not available")

// pageSize caps how many speeches one listing loads.
const pageSize = 500

// ActionOption is an action on the selected speech.
type ActionOption int

const (
	ActionRead ActionOption = iota
	ActionDetails
	ActionOpen
	ActionDelete
	ActionCancel
)

var actionLabels = [...]string{
	ActionRead:    "Read speech",
	ActionDetails: "Speech details",
	ActionOpen:    "Open file",
	ActionDelete:  "Delete",
	ActionCancel:  "Cancel",
}

// View lists ingested speeches with an optional country/year filter.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	filter       *input.Field
	filtering    bool
	speeches     []domain.Document
	selected     int
	width        int
	height       int
	err          error
	loading      bool
	showingMenu  bool
	menuSelected ActionOption
}

// NewView creates a new speeches view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	f := input.NewField(s, "Filter", "country:FRA year:1990-1999")
	f.Blur()

	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		filter:          f,
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the first page of speeches.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command that lists speeches matching the filter.
func (v *View) Load() tea.Cmd {
	v.loading = true
	ctx := v.ctx
	svc := v.documentService
	_, opts := input.ParseQuery(v.filter.Value())
	filter := domain.DocumentFilter{
		CountryCodes: opts.CountryCodes,
		YearFrom:     opts.YearFrom,
		YearTo:       opts.YearTo,
		Limit:        pageSize,
	}
	return func() tea.Msg {
		if svc == nil {
			return messages.SpeechesLoaded{Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx, filter)
		return messages.SpeechesLoaded{Speeches: docs, Err: err}
	}
}

// Update handles messages for the speeches view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case v.filtering:
			return v.handleFilterKey(msg)
		case v.showingMenu:
			return v.handleMenuKey(msg)
		}
		return v.handleKey(msg)

	case messages.SpeechesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.speeches = msg.Speeches
			if v.selected >= len(v.speeches) {
				v.selected = max(len(v.speeches)-1, 0)
			}
		}
		return v, nil

	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.speeches)-1 {
			v.selected++
		}
	case "enter":
		if len(v.speeches) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionRead
		}
	case "/":
		v.filtering = true
		return v, v.filter.Focus()
	case "r":
		return v, v.Load()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v.filtering = false
		v.filter.Blur()
		v.selected = 0
		return v, v.Load()
	case tea.KeyEsc:
		v.filtering = false
		v.filter.Blur()
		return v, nil
	}
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	return v, cmd
}

func (v *View) handleMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menuSelected > ActionRead {
			v.menuSelected--
		}
	case "down", "j":
		if v.menuSelected < ActionCancel {
			v.menuSelected++
		}
	case "enter":
		v.showingMenu = false
		return v, v.runAction(v.menuSelected, v.speeches[v.selected].ID)
	case "esc":
		v.showingMenu = false
	}
	return v, nil
}

func (v *View) runAction(action ActionOption, docID string) tea.Cmd {
	ctx := v.ctx
	svc := v.documentService

	switch action {
	case ActionRead:
		return func() tea.Msg {
			return messages.SpeechSelected{DocumentID: docID, View: messages.ViewReader}
		}
	case ActionDetails:
		return func() tea.Msg {
			return messages.SpeechSelected{DocumentID: docID, View: messages.ViewDetails}
		}
	case ActionOpen:
		return func() tea.Msg {
			if svc == nil {
				return messages.ErrorOccurred{Err: ErrNoDocumentService}
			}
			if err := svc.Open(ctx, docID); err != nil {
				return messages.ErrorOccurred{Err: err}
			}
			return nil
		}
	case ActionDelete:
		reload := v.Load()
		return func() tea.Msg {
			if svc == nil {
				return messages.ErrorOccurred{Err: ErrNoDocumentService}
			}
			if err := svc.Delete(ctx, docID); err != nil {
				return messages.ErrorOccurred{Err: err}
			}
			return reload()
		}
	case ActionCancel:
	}
	return nil
}

// View renders the speech list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Speeches (%d)", len(v.speeches))))
	b.WriteString("\n\n")
	b.WriteString(v.filter.View())
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading speeches..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.speeches) == 0:
		b.WriteString(v.styles.Muted.Render("No speeches. Run 'rostrum ingest <dir>' first."))
	default:
		start, end := list.Window(v.selected, len(v.speeches), v.height-10)
		for i := start; i < end; i++ {
			label := list.Truncate(list.SpeechLabel(&v.speeches[i]), v.width-4)
			if i == v.selected {
				b.WriteString(v.styles.Selected.Render("> " + label))
			} else {
				b.WriteString(v.styles.Normal.Render("  " + label))
			}
			b.WriteString("\n")
		}
	}

	if v.showingMenu {
		b.WriteString("\n")
		b.WriteString(v.renderMenu())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Actions  [/] Filter  [r] Reload  [Esc] Back"))
	return b.String()
}

func (v *View) renderMenu() string {
	lines := make([]string, 0, len(actionLabels))
	for i, label := range actionLabels {
		if ActionOption(i) == v.menuSelected {
			lines = append(lines, v.styles.Selected.Render("> "+label))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+label))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.filter.SetWidth(width)
}

// Speeches returns the loaded speeches.
func (v *View) Speeches() []domain.Document {
	return v.speeches
}

// Selected returns the index of the selected speech.
func (v *View) Selected() int {
	return v.selected
}

// Filtering reports whether the filter field has focus.
func (v *View) Filtering() bool {
	return v.filtering
}

// Loading reports whether a listing is in flight.
func (v *View) Loading() bool {
	return v.loading
}
