package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/recipes/pkg/app/components"
	"github.com/kerbaras/recipes/pkg/app/styles"
	"github.com/kerbaras/recipes/pkg/data"
	"github.com/kerbaras/recipes/pkg/services"
)

type DetailsScreen struct {
	ctx      context.Context
	finder   *services.Finder
	recipeID string
	recipe   data.Recipe
	found    bool
	detail   services.DetailView
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	err      error
}

func NewDetailsScreen(ctx context.Context, finder *services.Finder, recipeID string) *DetailsScreen {
	s := &DetailsScreen{
		ctx:      ctx,
		finder:   finder,
		recipeID: recipeID,
	}
	s.recipe, s.found = finder.Recipe(recipeID)
	if s.found {
		s.detail = services.BuildDetailView(s.recipe, finder.IsFavorite(recipeID))
	}
	return s
}

func (s *DetailsScreen) Init() tea.Cmd {
	return nil
}

func (s *DetailsScreen) resize(width, height int) {
	s.width = width
	s.height = height
	vh := height - 8
	if vh < 3 {
		vh = 3
	}
	if !s.ready {
		s.viewport = viewport.New(width-2, vh)
		s.ready = true
	} else {
		s.viewport.Width = width - 2
		s.viewport.Height = vh
	}
	s.viewport.SetContent(s.renderBody())
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return s, nil

	case stateChangedMsg:
		if s.found {
			s.detail = services.BuildDetailView(s.recipe, msg.snapshot.IsFavorite(s.recipeID))
		}
		return s, nil

	case favoriteToggledMsg:
		s.err = msg.err
		if msg.err == nil && msg.id == s.recipeID && s.found {
			s.detail = services.BuildDetailView(s.recipe, msg.favorite)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			return s, switchTo("back", nil)
		case "f":
			if s.found {
				return s, toggleFavorite(s.ctx, s.finder, s.recipeID)
			}
			return s, nil
		}
	}

	if s.ready {
		s.viewport, cmd = s.viewport.Update(msg)
	}
	return s, cmd
}

func (s *DetailsScreen) View() string {
	if !s.found {
		return styles.StatusError.Render(fmt.Sprintf("Recipe %s not found", s.recipeID)) + "\n" +
			styles.HelpStyle.Render("esc: back")
	}

	icon := s.detail.Icon
	if s.detail.Favorite {
		icon = styles.FavoriteStyle.Render(icon)
	}
	header := styles.TitleStyle.Render(fmt.Sprintf("📖 %s", s.detail.Title))
	header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", icon)

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n"
	}

	body := s.renderBody()
	if s.ready {
		body = s.viewport.View()
	}

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: scroll • f: toggle favorite • esc: back • q: quit",
	)

	return fmt.Sprintf("%s\n%s%s\n%s", header, errorMsg, body, help)
}

func (s *DetailsScreen) renderBody() string {
	var b strings.Builder

	if meta := components.MetaLine(s.detail.Card); meta != "" {
		b.WriteString(styles.SubtitleStyle.Render(meta))
		b.WriteString("\n\n")
	}

	b.WriteString(styles.CardTitleStyle.Render("Ingredients"))
	b.WriteString("\n")
	if len(s.detail.Ingredients) == 0 {
		b.WriteString(styles.MutedStyle.Render("No ingredients listed"))
		b.WriteString("\n")
	}
	for _, ing := range s.detail.Ingredients {
		line := "• " + ing.Item
		if ing.Measure != "" {
			line += " " + styles.MutedStyle.Render("("+ing.Measure+")")
		}
		b.WriteString(styles.TextStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.CardTitleStyle.Render("Instructions"))
	b.WriteString("\n")

	width := s.width - 4
	if width < 20 {
		width = 76
	}
	instructions := strings.TrimSpace(strings.ReplaceAll(s.detail.Instructions, "\r\n", "\n"))
	if instructions == "" {
		instructions = "No instructions provided"
	}
	b.WriteString(styles.TextStyle.Width(width).Render(instructions))

	return b.String()
}
