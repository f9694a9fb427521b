package cmd

import (
	"fmt"
	"strings"

	"github.com/kerbaras/recipes/pkg/app/components"
	"github.com/kerbaras/recipes/pkg/app/styles"
	"github.com/kerbaras/recipes/pkg/services"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [recipe-id | name]",
	Short: "Show a recipe",
	Long:  "Print the ingredients and instructions of a favorite recipe by id, or of the first search match for a name",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController(cmd.Context())
		defer controller.Close()

		ref := strings.Join(args, " ")
		recipe, ok, err := controller.Recipe(cmd.Context(), ref)
		if err != nil {
			cobra.CheckErr(err)
		}
		if !ok {
			fmt.Printf("❌ Recipe %s not found\n", ref)
			return
		}

		detail := services.BuildDetailView(recipe, controller.Finder().IsFavorite(recipe.ID))

		fmt.Println(styles.TitleStyle.Render(fmt.Sprintf("%s %s", detail.Icon, detail.Title)))
		if meta := components.MetaLine(detail.Card); meta != "" {
			fmt.Println(styles.SubtitleStyle.Render(meta))
			fmt.Println()
		}

		fmt.Println(styles.CardTitleStyle.Render("Ingredients"))
		for _, ing := range detail.Ingredients {
			if ing.Measure != "" {
				fmt.Printf("  • %s (%s)\n", ing.Item, ing.Measure)
			} else {
				fmt.Printf("  • %s\n", ing.Item)
			}
		}

		if instructions := strings.TrimSpace(detail.Instructions); instructions != "" {
			fmt.Println()
			fmt.Println(styles.CardTitleStyle.Render("Instructions"))
			fmt.Println(styles.TextStyle.Width(80).Render(strings.ReplaceAll(instructions, "\r\n", "\n")))
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
