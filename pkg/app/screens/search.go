package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/recipes/pkg/app/components"
	"github.com/kerbaras/recipes/pkg/app/styles"
	"github.com/kerbaras/recipes/pkg/services"
)

type SearchScreen struct {
	ctx        context.Context
	finder     *services.Finder
	input      textinput.Model
	spinner    spinner.Model
	results    *components.RecipeList
	vm         services.ViewModel
	suggestion int // highlighted chip, -1 for none
	width      int
	height     int
	err        error
}

func NewSearchScreen(ctx context.Context, finder *services.Finder) *SearchScreen {
	ti := textinput.New()
	ti.Placeholder = "Search recipes..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusLoading

	s := &SearchScreen{
		ctx:        ctx,
		finder:     finder,
		input:      ti,
		spinner:    sp,
		results:    components.NewRecipeList(),
		suggestion: -1,
	}
	s.results.Focused = false
	s.apply(finder.Snapshot())
	return s
}

func (s *SearchScreen) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, s.spinner.Tick)
}

// Typing reports whether keystrokes go to the search box.
func (s *SearchScreen) Typing() bool {
	return s.input.Focused()
}

func (s *SearchScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.results.Width = msg.Width - 2
		s.results.Height = msg.Height - 14
		return s, nil

	case stateChangedMsg:
		s.apply(msg.snapshot)
		return s, nil

	case spinner.TickMsg:
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case searchDoneMsg:
		// search failures show through the Error view state
		s.err = nil
		return s, nil

	case favoriteToggledMsg:
		s.err = msg.err
		return s, nil

	case tea.KeyMsg:
		if s.input.Focused() {
			return s.updateInput(msg)
		}
		return s.updateResults(msg)
	}

	return s, nil
}

func (s *SearchScreen) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if s.suggestion >= 0 && s.suggestion < len(s.vm.Suggestions) {
			chosen := s.vm.Suggestions[s.suggestion]
			s.input.SetValue(chosen)
			s.input.CursorEnd()
			s.suggestion = -1
			return s, s.selectSuggestion(chosen)
		}
		if strings.TrimSpace(s.input.Value()) != "" {
			return s, s.submit(s.input.Value())
		}
		return s, nil

	case "ctrl+n":
		if len(s.vm.Suggestions) > 0 {
			s.suggestion = (s.suggestion + 1) % len(s.vm.Suggestions)
		}
		return s, nil

	case "esc", "down":
		if len(s.results.Items) > 0 {
			s.input.Blur()
			s.results.Focused = true
		}
		return s, nil
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != before {
		s.suggestion = -1
		s.finder.HandleInput(s.input.Value())
	}
	return s, cmd
}

func (s *SearchScreen) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "/":
		s.results.Focused = false
		s.input.Focus()
		return s, textinput.Blink

	case "up", "k":
		if s.results.SelectedIndex == 0 {
			s.results.Focused = false
			s.input.Focus()
			return s, textinput.Blink
		}
		s.results.Prev()

	case "down", "j":
		s.results.Next()

	case "f":
		if selected := s.results.Selected(); selected != nil {
			return s, toggleFavorite(s.ctx, s.finder, selected.ID)
		}

	case "enter":
		if selected := s.results.Selected(); selected != nil {
			return s, switchTo("details", selected.ID)
		}
	}

	return s, nil
}

// apply renders a new finder snapshot into the screen.
func (s *SearchScreen) apply(snap services.Snapshot) {
	s.vm = services.BuildResultsView(snap)
	if s.suggestion >= len(s.vm.Suggestions) {
		s.suggestion = -1
	}

	if s.vm.State == services.Results {
		s.results.SetItems(s.vm.Cards)
	} else if s.vm.State == services.Welcome {
		s.results.SetItems(nil)
	}
	if len(s.results.Items) == 0 && !s.input.Focused() {
		s.results.Focused = false
		s.input.Focus()
	}
}

func (s *SearchScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("🍳 Recipe Finder")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	chips := components.RenderSuggestions(s.vm.Suggestions, s.suggestion)

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n\n"
	}

	help := styles.HelpStyle.Render(
		"type to search • ctrl+n: next suggestion • enter: search/details • esc: switch focus • f: favorite • tab: favorites • ctrl+c: quit",
	)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s%s\n%s",
		header,
		inputView,
		chips,
		errorMsg,
		s.renderBody(),
		help,
	)
}

func (s *SearchScreen) renderBody() string {
	switch s.vm.State {
	case services.Loading:
		return fmt.Sprintf("%s %s", s.spinner.View(), styles.StatusLoading.Render(s.vm.Message))
	case services.Results:
		count := styles.SubtitleStyle.Render(fmt.Sprintf("Found %d recipes:", len(s.results.Items)))
		return count + "\n\n" + s.results.View()
	case services.Error:
		return styles.PlaceholderStyle.Render(
			styles.StatusError.Render(s.vm.Heading) + "\n" + styles.MutedStyle.Render(s.vm.Message),
		)
	case services.NoResults:
		body := styles.PlaceholderStyle.Render(
			styles.SubtitleStyle.Render(s.vm.Heading) + "\n" + styles.MutedStyle.Render(s.vm.Message),
		)
		if len(s.results.Items) > 0 {
			body += "\n" + s.results.View()
		}
		return body
	default:
		return styles.PlaceholderStyle.Render(
			styles.TitleStyle.Render(s.vm.Heading) + "\n" + styles.MutedStyle.Render(s.vm.Message),
		)
	}
}

// Messages
type searchDoneMsg struct{}

type favoriteToggledMsg struct {
	id       string
	favorite bool
	err      error
}

// Commands
func (s *SearchScreen) submit(query string) tea.Cmd {
	return func() tea.Msg {
		s.finder.Submit(s.ctx, query)
		return searchDoneMsg{}
	}
}

func (s *SearchScreen) selectSuggestion(suggestion string) tea.Cmd {
	return func() tea.Msg {
		s.finder.SelectSuggestion(s.ctx, suggestion)
		return searchDoneMsg{}
	}
}

func toggleFavorite(ctx context.Context, finder *services.Finder, id string) tea.Cmd {
	return func() tea.Msg {
		favorite, err := finder.ToggleFavorite(ctx, id)
		return favoriteToggledMsg{id: id, favorite: favorite, err: err}
	}
}
