package screens

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/recipes/pkg/app/styles"
	"github.com/kerbaras/recipes/pkg/services"
)

type screenType int

const (
	searchView screenType = iota
	favoritesView
	detailsView
)

type RootScreen struct {
	ctx      context.Context
	finder   *services.Finder
	exporter *services.Exporter

	currentView screenType
	returnView  screenType
	search      *SearchScreen
	favorites   *FavoritesScreen
	details     *DetailsScreen
	snapshot    services.Snapshot

	width  int
	height int
}

func NewRootScreen(ctx context.Context, finder *services.Finder, exporter *services.Exporter) *RootScreen {
	return &RootScreen{
		ctx:         ctx,
		finder:      finder,
		exporter:    exporter,
		currentView: searchView,
		search:      NewSearchScreen(ctx, finder),
		favorites:   NewFavoritesScreen(ctx, finder, exporter),
		snapshot:    finder.Snapshot(),
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(
		r.search.Init(),
		r.favorites.Init(),
		r.listenForUpdates,
	)
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		// every screen keeps its own layout
		return r, r.broadcast(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "q":
			if !r.search.Typing() || r.currentView != searchView {
				return r, tea.Quit
			}
		case "tab":
			if r.currentView == detailsView {
				// Can't tab away from details, use esc
				break
			}
			if r.currentView == searchView {
				r.currentView = favoritesView
			} else {
				r.currentView = searchView
			}
			return r, nil
		}

	case stateChangedMsg:
		r.snapshot = msg.snapshot
		return r, tea.Batch(r.broadcast(msg), r.listenForUpdates)

	case updatesClosedMsg:
		return r, nil

	case SwitchScreenMsg:
		switch msg.Screen {
		case "search":
			r.currentView = searchView
		case "favorites":
			r.currentView = favoritesView
		case "details":
			if recipeID, ok := msg.Data.(string); ok {
				if r.currentView != detailsView {
					r.returnView = r.currentView
				}
				r.details = NewDetailsScreen(r.ctx, r.finder, recipeID)
				r.currentView = detailsView
				cmd = r.details.Init()
				if r.width > 0 {
					r.details.resize(r.width, r.height)
				}
			}
		case "back":
			r.currentView = r.returnView
			r.details = nil
		}
		return r, cmd

	case spinner.TickMsg:
		newModel, newCmd := r.search.Update(msg)
		r.search = newModel.(*SearchScreen)
		return r, newCmd

	case exportProgressMsg, exportDoneMsg:
		// exports keep running while another screen is shown
		newModel, newCmd := r.favorites.Update(msg)
		r.favorites = newModel.(*FavoritesScreen)
		return r, newCmd
	}

	// Forward message to active screen
	switch r.currentView {
	case searchView:
		newModel, newCmd := r.search.Update(msg)
		r.search = newModel.(*SearchScreen)
		return r, newCmd
	case favoritesView:
		newModel, newCmd := r.favorites.Update(msg)
		r.favorites = newModel.(*FavoritesScreen)
		return r, newCmd
	case detailsView:
		if r.details != nil {
			newModel, newCmd := r.details.Update(msg)
			r.details = newModel.(*DetailsScreen)
			return r, newCmd
		}
	}

	return r, cmd
}

// broadcast hands msg to every screen, not just the visible one.
func (r *RootScreen) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	newSearch, cmd := r.search.Update(msg)
	r.search = newSearch.(*SearchScreen)
	cmds = append(cmds, cmd)

	newFavorites, cmd := r.favorites.Update(msg)
	r.favorites = newFavorites.(*FavoritesScreen)
	cmds = append(cmds, cmd)

	if r.details != nil {
		newDetails, cmd := r.details.Update(msg)
		r.details = newDetails.(*DetailsScreen)
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

func (r *RootScreen) View() string {
	tabs := r.renderTabs()

	var content string
	switch r.currentView {
	case searchView:
		content = r.search.View()
	case favoritesView:
		content = r.favorites.View()
	case detailsView:
		if r.details != nil {
			content = r.details.View()
		}
	}

	if tabs == "" {
		return content
	}
	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

func (r *RootScreen) renderTabs() string {
	if r.currentView == detailsView {
		// Don't show tabs in details view
		return ""
	}

	searchTab := "🔍 Search"
	favoritesTab := "❤️ Favorites"
	if n := len(r.snapshot.Favorites); n > 0 {
		favoritesTab = lipgloss.JoinHorizontal(lipgloss.Top, favoritesTab, " ", styles.BadgeStyle.Render(fmt.Sprint(n)))
	}

	if r.currentView == searchView {
		searchTab = styles.ActiveTabStyle.Render(searchTab)
		favoritesTab = styles.InactiveTabStyle.Render(favoritesTab)
	} else {
		searchTab = styles.InactiveTabStyle.Render(searchTab)
		favoritesTab = styles.ActiveTabStyle.Render(favoritesTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, searchTab, favoritesTab)
}

// Messages
type stateChangedMsg struct {
	snapshot services.Snapshot
}

type updatesClosedMsg struct{}

// SwitchScreenMsg asks the root screen to show another screen.
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

func switchTo(screen string, data interface{}) tea.Cmd {
	return func() tea.Msg {
		return SwitchScreenMsg{Screen: screen, Data: data}
	}
}

// Commands
func (r *RootScreen) listenForUpdates() tea.Msg {
	snap, ok := <-r.finder.Updates()
	if !ok {
		return updatesClosedMsg{}
	}
	return stateChangedMsg{snapshot: snap}
}
