package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/recipes/pkg/app/styles"
	"github.com/kerbaras/recipes/pkg/services"
)

// RecipeList renders recipe cards and tracks which one is selected.
type RecipeList struct {
	Items         []services.Card
	SelectedIndex int
	Width         int
	Height        int
	Focused       bool
	EmptyMessage  string
}

func NewRecipeList() *RecipeList {
	return &RecipeList{
		Items:         []services.Card{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
		Focused:       true,
	}
}

// SetItems replaces the cards, keeping the selection on the same recipe
// when it is still listed.
func (l *RecipeList) SetItems(items []services.Card) {
	var selectedID string
	if sel := l.Selected(); sel != nil {
		selectedID = sel.ID
	}

	l.Items = items
	for i, item := range items {
		if item.ID == selectedID {
			l.SelectedIndex = i
			return
		}
	}
	if l.SelectedIndex >= len(items) && len(items) > 0 {
		l.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		l.SelectedIndex = 0
	}
}

func (l *RecipeList) Next() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex++
	if l.SelectedIndex >= len(l.Items) {
		l.SelectedIndex = 0
	}
}

func (l *RecipeList) Prev() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex--
	if l.SelectedIndex < 0 {
		l.SelectedIndex = len(l.Items) - 1
	}
}

func (l *RecipeList) Selected() *services.Card {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return &l.Items[l.SelectedIndex]
}

// visibleRange keeps the selected card on screen. Each card takes four rows.
func (l *RecipeList) visibleRange() (int, int) {
	perPage := l.Height / 4
	if perPage < 1 {
		perPage = 1
	}
	if len(l.Items) <= perPage {
		return 0, len(l.Items)
	}
	start := l.SelectedIndex - perPage/2
	if start < 0 {
		start = 0
	}
	end := start + perPage
	if end > len(l.Items) {
		end = len(l.Items)
		start = end - perPage
	}
	return start, end
}

func (l *RecipeList) View() string {
	if len(l.Items) == 0 {
		if l.EmptyMessage == "" {
			return ""
		}
		return styles.PlaceholderStyle.Width(l.Width).Render(styles.MutedStyle.Render(l.EmptyMessage))
	}

	start, end := l.visibleRange()

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(l.renderCard(l.Items[i], i == l.SelectedIndex && l.Focused))
		b.WriteString("\n")
	}

	if start > 0 || end < len(l.Items) {
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d recipes", start+1, end, len(l.Items)),
		))
	}

	return b.String()
}

func (l *RecipeList) renderCard(card services.Card, active bool) string {
	cardStyle := styles.CardStyle
	if active {
		cardStyle = styles.ActiveCardStyle
	}

	title := styles.CardTitleStyle.Render(card.Title)
	icon := card.Icon
	if card.Favorite {
		icon = styles.FavoriteStyle.Render(icon)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, icon, " ", title)

	meta := MetaLine(card)
	cardContent := header
	if meta != "" {
		cardContent = lipgloss.JoinVertical(lipgloss.Left, header, styles.MutedStyle.Render(meta))
	}

	width := l.Width - 4
	if width < 20 {
		width = 20
	}
	return cardStyle.Width(width).Render(cardContent)
}

// MetaLine joins category and origin, skipping empty parts.
func MetaLine(card services.Card) string {
	var parts []string
	if card.Category != "" {
		parts = append(parts, card.Category)
	}
	if card.Origin != "" {
		parts = append(parts, card.Origin)
	}
	return strings.Join(parts, " • ")
}
