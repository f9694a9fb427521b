package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kerbaras/recipes/pkg/config"
	"github.com/kerbaras/recipes/pkg/data"
	"github.com/kerbaras/recipes/pkg/sources"
)

// RecipeController wires the catalog, storage, finder and exporter together
// for the CLI and the TUI.
type RecipeController struct {
	cfg      config.Config
	store    data.Store
	finder   *Finder
	exporter *Exporter

	closeOnce sync.Once
}

type ControllerOption func(*controllerOptions)

type controllerOptions struct {
	store  data.Store
	source sources.Source
	client *http.Client
}

// WithStore replaces the DuckDB file with store.
func WithStore(store data.Store) ControllerOption {
	return func(o *controllerOptions) { o.store = store }
}

func WithSource(source sources.Source) ControllerOption {
	return func(o *controllerOptions) { o.source = source }
}

func WithHTTPClient(client *http.Client) ControllerOption {
	return func(o *controllerOptions) { o.client = client }
}

func NewRecipeController(ctx context.Context, cfg config.Config, opts ...ControllerOption) (*RecipeController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o controllerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second}
	}
	if o.source == nil {
		o.source = sources.NewMealDB(cfg.APIURL, o.client)
	}
	if o.store == nil {
		store, err := data.NewDuckDBStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		o.store = store
	}

	favorites, err := data.LoadFavorites(ctx, o.store)
	if err != nil {
		closeStore(o.store)
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	finder := NewFinder(o.source, favorites,
		WithContext(ctx),
		WithDebounce(time.Duration(cfg.DebounceMS)*time.Millisecond),
		WithSuggestions(cfg.Suggestions, cfg.SuggestionLimit),
	)

	return &RecipeController{
		cfg:      cfg,
		store:    o.store,
		finder:   finder,
		exporter: NewExporter(cfg.ExportDir, o.client),
	}, nil
}

func (c *RecipeController) Finder() *Finder {
	return c.finder
}

func (c *RecipeController) Exporter() *Exporter {
	return c.exporter
}

func (c *RecipeController) Config() config.Config {
	return c.cfg
}

// Search runs query right away and returns the matches. No matches is an
// empty slice.
func (c *RecipeController) Search(ctx context.Context, query string) ([]data.Recipe, error) {
	if err := c.finder.Submit(ctx, query); err != nil {
		return nil, err
	}
	snap := c.finder.Snapshot()
	if snap.View != Results {
		return []data.Recipe{}, nil
	}
	return snap.Results, nil
}

// AddFavorite searches for query and marks the first match as a favorite.
// It reports whether the recipe was newly added.
func (c *RecipeController) AddFavorite(ctx context.Context, query string) (data.Recipe, bool, error) {
	results, err := c.Search(ctx, query)
	if err != nil {
		return data.Recipe{}, false, err
	}
	if len(results) == 0 {
		return data.Recipe{}, false, fmt.Errorf("no recipes found for %q", query)
	}

	recipe := results[0]
	if c.finder.IsFavorite(recipe.ID) {
		return recipe, false, nil
	}
	if _, err := c.finder.ToggleFavorite(ctx, recipe.ID); err != nil {
		return recipe, false, fmt.Errorf("failed to save favorite: %w", err)
	}
	return recipe, true, nil
}

// RemoveFavorite drops id from the favorites. It reports whether anything
// was removed.
func (c *RecipeController) RemoveFavorite(ctx context.Context, id string) (bool, error) {
	if !c.finder.IsFavorite(id) {
		return false, nil
	}
	if _, err := c.finder.ToggleFavorite(ctx, id); err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return true, nil
}

func (c *RecipeController) Favorites() []data.Recipe {
	return c.finder.Snapshot().Favorites
}

// Recipe resolves ref as the id of a loaded result or favorite, falling back
// to the first search match for ref as a name.
func (c *RecipeController) Recipe(ctx context.Context, ref string) (data.Recipe, bool, error) {
	if r, ok := c.finder.Recipe(ref); ok {
		return r, true, nil
	}
	results, err := c.Search(ctx, ref)
	if err != nil {
		return data.Recipe{}, false, err
	}
	if len(results) == 0 {
		return data.Recipe{}, false, nil
	}
	return results[0], true, nil
}

// ExportFavorites writes every favorite to an EPUB cookbook.
func (c *RecipeController) ExportFavorites(ctx context.Context, title string) (string, error) {
	return c.exporter.ExportFavorites(ctx, title, c.Favorites())
}

func (c *RecipeController) Close() {
	c.closeOnce.Do(func() {
		c.finder.Close()
		c.exporter.Close()
		closeStore(c.store)
	})
}

func closeStore(store data.Store) {
	if closer, ok := store.(io.Closer); ok {
		closer.Close()
	}
}
