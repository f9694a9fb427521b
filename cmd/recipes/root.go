package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/recipes/pkg/app"
	"github.com/kerbaras/recipes/pkg/config"
	"github.com/kerbaras/recipes/pkg/data"
	"github.com/kerbaras/recipes/pkg/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	ephemeral bool

	v       = viper.New()
	cfg     config.Config
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Search recipes and keep your favorites",
	Long:  "Search TheMealDB from a TUI or the command line, keep a list of favorite recipes and export them as an EPUB cookbook",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		return setupLogging(cfg.LogFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Launch TUI by default
		ctx := cmd.Context()
		controller := newController(ctx)
		defer controller.Close()

		a := app.NewApp(ctx, controller.Finder(), controller.Exporter())
		if err := a.Run(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().String("api-url", "", "Recipe catalog base URL")
	rootCmd.PersistentFlags().String("db", "", "Favorites database path")
	rootCmd.PersistentFlags().Int("debounce", 0, "Search debounce in milliseconds")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep favorites in memory only")

	bindFlag("api_url", "api-url")
	bindFlag("db_path", "db")
	bindFlag("debounce_ms", "debounce")
}

// bindFlag lets a persistent flag override key, but only when it was set.
func bindFlag(key, flag string) {
	cobra.CheckErr(v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)))
}

// setupLogging sends the standard logger to path so it never draws over the TUI.
func setupLogging(path string) error {
	if path == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "recipes")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f
	return nil
}

func newController(ctx context.Context) *services.RecipeController {
	var opts []services.ControllerOption
	if ephemeral {
		opts = append(opts, services.WithStore(data.NewMemoryStore()))
	}
	controller, err := services.NewRecipeController(ctx, cfg, opts...)
	cobra.CheckErr(err)
	return controller
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
