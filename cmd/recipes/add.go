package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [recipe-name]",
	Short: "Add a recipe to your favorites",
	Long:  "Search for a recipe and add the first match to your favorites",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		controller := newController(cmd.Context())
		defer controller.Close()

		fmt.Printf("🔍 Searching for '%s'...\n", query)

		recipe, added, err := controller.AddFavorite(cmd.Context(), query)
		if err != nil {
			cobra.CheckErr(err)
		}

		if !added {
			fmt.Printf("❤️ '%s' is already a favorite (ID: %s)\n", recipe.Name, recipe.ID)
			return
		}
		fmt.Printf("✅ Added '%s' to favorites (ID: %s)\n", recipe.Name, recipe.ID)
		fmt.Printf("💡 To export your favorites, use: recipes export\n")
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
