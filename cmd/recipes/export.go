package cmd

import (
	"fmt"

	"github.com/kerbaras/recipes/pkg/app/components"
	"github.com/kerbaras/recipes/pkg/services"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your favorites as an EPUB cookbook",
	Long:  "Fetch the thumbnails of every favorite recipe and compile them into an EPUB cookbook",
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			cfg.ExportDir = out
		}

		controller := newController(cmd.Context())
		defer controller.Close()

		favorites := controller.Favorites()
		if len(favorites) == 0 {
			fmt.Println("❤️ No favorite recipes to export. Use 'recipes add' first.")
			return
		}

		fmt.Printf("📦 Exporting %d recipes...\n", len(favorites))

		done := make(chan struct{})
		go func() {
			defer close(done)
			printProgress(controller.Exporter().GetProgressChannel())
		}()

		path, err := controller.ExportFavorites(cmd.Context(), title)
		// closing the exporter ends the progress printer
		controller.Close()
		<-done
		if err != nil {
			cobra.CheckErr(fmt.Errorf("export failed: %w", err))
		}

		fmt.Printf("\n✅ Cookbook saved to %s\n", path)
	},
}

func printProgress(progress <-chan services.ExportProgress) {
	for p := range progress {
		switch p.Status {
		case "error":
			fmt.Printf("\n⚠️  No image for %s: %v\n", p.RecipeName, p.Error)
		case "building":
			fmt.Printf("\r%s building EPUB...", components.SimpleProgress(p.Current, p.Total, 30))
		case "complete":
		default:
			fmt.Printf("\r%s %d/%d", components.SimpleProgress(p.Current, p.Total, 30), p.Current, p.Total)
		}
	}
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Output directory (default: export_dir from config)")
	exportCmd.Flags().StringP("title", "t", "My Favorite Recipes", "Cookbook title")
	rootCmd.AddCommand(exportCmd)
}
