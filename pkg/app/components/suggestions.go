package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/recipes/pkg/app/styles"
)

// RenderSuggestions draws the suggestion chips, highlighting index active.
// A negative active highlights nothing.
func RenderSuggestions(suggestions []string, active int) string {
	if len(suggestions) == 0 {
		return ""
	}

	chips := make([]string, 0, len(suggestions)+1)
	chips = append(chips, styles.MutedStyle.Render("Try: "))
	for i, s := range suggestions {
		style := styles.ChipStyle
		if i == active {
			style = styles.ActiveChipStyle
		}
		chips = append(chips, style.Render(s))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}
