// Package tui provides the interactive terminal browser for indexed
// speeches.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/views/details"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/views/reader"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/views/similar"
	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/views/speeches"
)

// App is the root bubbletea model. It routes messages to the active view
// and keeps a history stack for back navigation.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	menuView     *menu.View
	searchView   *search.View
	speechesView *speeches.View
	readerView   *reader.View
	detailsView  *details.View
	similarView  *similar.View

	currentView messages.ViewType
	history     []messages.ViewType

	// err holds the last error reported by any view.
	err error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates the TUI over the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		help:         help.New(),
		menuView:     menu.NewView(s),
		searchView:   search.NewView(s, km, ports.Search, ports.Documents),
		speechesView: speeches.NewView(s, ports.Documents),
		readerView:   reader.NewView(s, ports.Documents),
		detailsView:  details.NewView(s, ports.Documents),
		similarView:  similar.NewView(s, ports.Similarity, ports.Segments),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context handed to every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.speechesView.WithContext(ctx)
	a.readerView.WithContext(ctx)
	a.detailsView.WithContext(ctx)
	a.similarView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("rostrum"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.Back:
		return a, a.back()

	case messages.SpeechSelected:
		if msg.View == messages.ViewDetails {
			a.push(messages.ViewDetails)
			return a, a.detailsView.Open(msg.DocumentID)
		}
		a.push(messages.ViewReader)
		return a, a.readerView.Open(msg.DocumentID)

	case messages.SimilarRequested:
		a.push(messages.ViewSimilar)
		return a, a.similarView.Open(msg)

	case messages.SearchCompleted:
		a.err = msg.Err
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.SpeechesLoaded:
		a.err = msg.Err
		a.speechesView, cmd = a.speechesView.Update(msg)
		return a, cmd

	case messages.SpeechLoaded:
		a.err = msg.Err
		a.readerView, cmd = a.readerView.Update(msg)
		return a, cmd

	case messages.DetailsLoaded:
		a.err = msg.Err
		a.detailsView, cmd = a.detailsView.Update(msg)
		return a, cmd

	case messages.SimilarLoaded:
		a.err = msg.Err
		a.similarView, cmd = a.similarView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.currentView == messages.ViewHelp {
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			return a, a.back()
		}
		return a, nil
	}
	if a.currentView == messages.ViewMenu && msg.String() == "?" {
		return a, a.switchTo(messages.ViewHelp)
	}
	return a, a.forward(msg)
}

// forward hands msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewSpeeches:
		a.speechesView, cmd = a.speechesView.Update(msg)
	case messages.ViewReader:
		a.readerView, cmd = a.readerView.Update(msg)
	case messages.ViewDetails:
		a.detailsView, cmd = a.detailsView.Update(msg)
	case messages.ViewSimilar:
		a.similarView, cmd = a.similarView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// switchTo moves to a top-level view. The menu clears the history.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewMenu {
		a.history = a.history[:0]
		a.currentView = messages.ViewMenu
		return nil
	}
	a.push(view)

	switch view {
	case messages.ViewSearch:
		return a.searchView.Reset()
	case messages.ViewSpeeches:
		return a.speechesView.Load()
	}
	return nil
}

// push records the current view and activates view. Re-entering the
// active view does not grow the history.
func (a *App) push(view messages.ViewType) {
	if view != a.currentView {
		a.history = append(a.history, a.currentView)
	}
	a.currentView = view
}

// back pops the history, landing on the menu when it is empty.
func (a *App) back() tea.Cmd {
	if n := len(a.history); n > 0 {
		a.currentView = a.history[n-1]
		a.history = a.history[:n-1]
	} else {
		a.currentView = messages.ViewMenu
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewSpeeches:
		return a.speechesView.View()
	case messages.ViewReader:
		return a.readerView.View()
	case messages.ViewDetails:
		return a.detailsView.View()
	case messages.ViewSimilar:
		return a.similarView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("Search filters: country:FRA,DEU  year:1990  year:1990-1999"))
	b.WriteString("\n")
	b.WriteString(a.styles.Muted.Render("Reader: g/G top/bottom, PgUp/PgDn page"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the program and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// History returns the back stack, oldest first.
func (a *App) History() []messages.ViewType {
	return a.history
}

// Err returns the last error reported by a view.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has a window size.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width

	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.speechesView.SetDimensions(width, height)
	a.readerView.SetDimensions(width, height)
	a.detailsView.SetDimensions(width, height)
	a.similarView.SetDimensions(width, height)
}
