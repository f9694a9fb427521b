package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for recipes",
	Long:  "Search TheMealDB by meal name and display results in a table. ★ marks favorites.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		controller := newController(cmd.Context())
		defer controller.Close()

		results, err := controller.Search(cmd.Context(), query)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("search failed: %w", err))
		}

		if len(results) == 0 {
			fmt.Println("No recipes found. Try searching for something else.")
			return
		}

		var (
			orange = lipgloss.Color("209")

			headerStyle = lipgloss.NewStyle().Foreground(orange).Bold(true).Align(lipgloss.Center)
			cellStyle   = lipgloss.NewStyle().Padding(0, 1)
		)

		t := table.New().
			Border(lipgloss.HiddenBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(orange)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				default:
					return cellStyle
				}
			}).
			Headers("#", "", "Name", "Category", "Origin", "ID")

		finder := controller.Finder()
		for i, recipe := range results {
			star := ""
			if finder.IsFavorite(recipe.ID) {
				star = "★"
			}
			t.Row(fmt.Sprintf("%d", i+1), star, truncateString(recipe.Name, 48), recipe.Category, recipe.Origin, recipe.ID)
		}

		fmt.Println(t)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
