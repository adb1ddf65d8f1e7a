// Package search provides the full-text search view for the TUI.
package search

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// ErrNoSearchService is returned when the view has no search service.
var ErrNoSearchService = errors.New("search service not available")

// Actions offered on a selected hit.
const (
	ActionRead    = "Read speech"
	ActionDetails = "Speech details"
	ActionSimilar = "Similar passages"
	ActionOpen    = "Open file"
	ActionCancel  = "Cancel"
)

// ActionMenu is the overlay listing actions for one hit.
type ActionMenu struct {
	actions  []string
	selected int
	result   *domain.SearchResult
}

// View is the search view with input, results list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	list      *list.ResultList
	statusbar *status.Bar

	searchService   driving.SearchService
	documentService driving.DocumentService
	ctx             context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // typing a query rather than navigating hits
	actionMenu *ActionMenu
}

// NewView creates a new search view. documentService may be nil, which
// disables opening source files.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	documentService driving.DocumentService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewSearchInput(s),
		list:            list.NewResultList(s),
		statusbar:       status.NewBar(s, km),
		searchService:   searchService,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
		focusInput:      true,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.actionMenu != nil {
		return v.handleActionMenuKey(msg)
	}

	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			line := strings.TrimSpace(v.input.Value())
			if line == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateLoading)
			v.statusbar.SetMessage("Searching...")
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(line)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "enter":
		if result := v.list.SelectedResult(); result != nil {
			v.actionMenu = &ActionMenu{
				actions: []string{ActionRead, ActionDetails, ActionSimilar, ActionOpen, ActionCancel},
				result:  result,
			}
		}
	case "up", "k":
		v.list.MoveUp()
	case "down", "j":
		v.list.MoveDown()
	case "s":
		if result := v.list.SelectedResult(); result != nil {
			return v, similarCmd(result)
		}
	case "n":
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}
	return v, nil
}

func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.actionMenu.selected > 0 {
			v.actionMenu.selected--
		}
	case "down", "j":
		if v.actionMenu.selected < len(v.actionMenu.actions)-1 {
			v.actionMenu.selected++
		}
	case "enter":
		action := v.actionMenu.actions[v.actionMenu.selected]
		result := v.actionMenu.result
		v.actionMenu = nil
		return v, v.executeAction(action, result)
	case "esc":
		v.actionMenu = nil
	}
	return v, nil
}

func (v *View) executeAction(action string, result *domain.SearchResult) tea.Cmd {
	docID := result.Document.ID
	if docID == "" {
		docID = result.Segment.DocumentID
	}

	switch action {
	case ActionRead:
		return selectCmd(docID, messages.ViewReader)
	case ActionDetails:
		return selectCmd(docID, messages.ViewDetails)
	case ActionSimilar:
		return similarCmd(result)
	case ActionOpen:
		if v.documentService == nil {
			v.statusbar.SetMessage("Open not available")
			return nil
		}
		if err := v.documentService.Open(v.ctx, docID); err != nil {
			v.statusbar.SetError(err)
			return nil
		}
		v.statusbar.SetMessage("Opening " + list.SpeechLabel(&result.Document))
	}
	return nil
}

func selectCmd(docID string, view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.SpeechSelected{DocumentID: docID, View: view}
	}
}

func similarCmd(result *domain.SearchResult) tea.Cmd {
	return func() tea.Msg {
		return messages.SimilarRequested{
			SegmentID: result.Segment.ID,
			Excerpt:   result.Segment.Content,
		}
	}
}

func (v *View) performSearch(line string) tea.Cmd {
	ctx := v.ctx
	svc := v.searchService
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		query, opts := input.ParseQuery(line)
		results, err := svc.Search(ctx, query, opts)
		return messages.SearchCompleted{Query: line, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(msg.Results))
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections,
		v.styles.Title.Render("Rostrum"), "",
		v.input.View(),
		v.styles.Muted.Render("filters: country:FRA,DEU year:1990-1999"), "",
	)

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.actionMenu != nil {
		sections = append(sections, "", v.renderActionMenu())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderActionMenu() string {
	lines := make([]string, 0, len(v.actionMenu.actions))
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+action))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+action))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Reset clears the query and results and focuses the input.
func (v *View) Reset() tea.Cmd {
	v.input.Reset()
	v.list.SetResults(nil)
	v.err = nil
	v.actionMenu = nil
	v.focusInput = true
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetResultCount(0)
	return v.input.Focus()
}

// InputFocused reports whether the query input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// ActionMenuVisible reports whether the action overlay is shown.
func (v *View) ActionMenuVisible() bool {
	return v.actionMenu != nil
}
