package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/recipes/pkg/app/components"
	"github.com/kerbaras/recipes/pkg/app/styles"
	"github.com/kerbaras/recipes/pkg/services"
)

type FavoritesScreen struct {
	ctx       context.Context
	finder    *services.Finder
	exporter  *services.Exporter
	list      *components.RecipeList
	tracker   *components.ExportTracker
	vm        services.ViewModel
	exporting bool
	width     int
	height    int
	err       error
}

func NewFavoritesScreen(ctx context.Context, finder *services.Finder, exporter *services.Exporter) *FavoritesScreen {
	s := &FavoritesScreen{
		ctx:      ctx,
		finder:   finder,
		exporter: exporter,
		list:     components.NewRecipeList(),
		tracker:  components.NewExportTracker(80),
	}
	s.apply(finder.Snapshot())
	return s
}

func (s *FavoritesScreen) Init() tea.Cmd {
	if s.exporter == nil {
		return nil
	}
	return s.listenForProgress
}

func (s *FavoritesScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.list.Width = msg.Width - 2
		s.list.Height = msg.Height - 12
		s.tracker.SetWidth(msg.Width - 4)

	case stateChangedMsg:
		s.apply(msg.snapshot)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.list.Prev()
		case "down", "j":
			s.list.Next()
		case "f", "d":
			if selected := s.list.Selected(); selected != nil {
				return s, toggleFavorite(s.ctx, s.finder, selected.ID)
			}
		case "e":
			if !s.exporting && s.exporter != nil && len(s.list.Items) > 0 {
				s.exporting = true
				s.err = nil
				s.tracker.Clear()
				return s, s.export()
			}
		case "enter":
			if selected := s.list.Selected(); selected != nil {
				return s, switchTo("details", selected.ID)
			}
		}

	case favoriteToggledMsg:
		s.err = msg.err

	case exportProgressMsg:
		s.tracker.Update(msg.progress)
		return s, s.listenForProgress

	case exportDoneMsg:
		s.exporting = false
		s.err = msg.err
	}

	return s, nil
}

func (s *FavoritesScreen) apply(snap services.Snapshot) {
	s.vm = services.BuildFavoritesView(snap)
	s.list.EmptyMessage = s.vm.Message
	s.list.SetItems(s.vm.Cards)
}

func (s *FavoritesScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("❤️ Favorite Recipes (%d)", s.vm.FavoriteCount))

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n\n"
	}

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: details • f/d: remove • e: export cookbook • tab: search • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s%s",
		header,
		errorMsg,
		s.list.View(),
		s.tracker.View(),
		help,
	)
}

// Messages
type exportProgressMsg struct {
	progress services.ExportProgress
}

type exportDoneMsg struct {
	path string
	err  error
}

// Commands
func (s *FavoritesScreen) export() tea.Cmd {
	recipes := s.finder.Snapshot().Favorites
	return func() tea.Msg {
		path, err := s.exporter.ExportFavorites(s.ctx, "", recipes)
		return exportDoneMsg{path: path, err: err}
	}
}

func (s *FavoritesScreen) listenForProgress() tea.Msg {
	progress, ok := <-s.exporter.GetProgressChannel()
	if !ok {
		return nil
	}
	return exportProgressMsg{progress: progress}
}
