package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"list"},
	Short:   "List your favorite recipes",
	Long:    "Display all favorite recipes in a formatted table",
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController(cmd.Context())
		defer controller.Close()

		favorites := controller.Favorites()
		if len(favorites) == 0 {
			fmt.Println("❤️ No favorite recipes yet. Use 'recipes search' to find some.")
			return
		}

		columns := []table.Column{
			{Title: "ID", Width: 8},
			{Title: "Name", Width: 40},
			{Title: "Category", Width: 14},
			{Title: "Origin", Width: 12},
			{Title: "Ingredients", Width: 12},
		}

		rows := []table.Row{}
		for _, recipe := range favorites {
			rows = append(rows, table.Row{
				recipe.ID,
				truncateString(recipe.Name, 38),
				recipe.Category,
				recipe.Origin,
				fmt.Sprintf("%d", len(recipe.Ingredients)),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)
		t.SetStyles(tableStyles())

		fmt.Printf("\n❤️ Favorites (%d recipes)\n\n", len(favorites))
		fmt.Println(t.View())
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [recipe-id]",
	Short: "Remove a recipe from your favorites",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController(cmd.Context())
		defer controller.Close()

		removed, err := controller.RemoveFavorite(cmd.Context(), args[0])
		if err != nil {
			cobra.CheckErr(err)
		}
		if !removed {
			fmt.Printf("❌ Recipe %s is not a favorite\n", args[0])
			return
		}
		fmt.Printf("✅ Removed %s from favorites\n", args[0])
	},
}

func init() {
	favoritesCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(favoritesCmd)
}
