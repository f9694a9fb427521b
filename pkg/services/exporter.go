package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kerbaras/recipes/pkg/data"
	"github.com/kerbaras/recipes/pkg/integrations"
)

// ExportProgress represents the progress of a cookbook export
type ExportProgress struct {
	RecipeID   string
	RecipeName string
	Current    int
	Total      int
	Status     string // "fetching", "error", "building", "complete"
	Error      error
	Path       string
}

// Exporter compiles favorite recipes into an EPUB cookbook. Thumbnails are
// fetched concurrently, shrunk and embedded next to each recipe.
type Exporter struct {
	client       *http.Client
	builder      integrations.Cookbook
	images       integrations.ImageOptimizer
	rateLimiter  *time.Ticker
	progressChan chan ExportProgress

	mu     sync.RWMutex
	closed bool
}

// NewExporter creates a new Exporter writing cookbooks to outputDir
func NewExporter(outputDir string, client *http.Client) *Exporter {
	if client == nil {
		client = http.DefaultClient
	}
	return &Exporter{
		client:       client,
		builder:      integrations.NewCookbookBuilder(outputDir),
		images:       integrations.NewImageProcessor(integrations.DefaultThumbnailSettings),
		rateLimiter:  time.NewTicker(250 * time.Millisecond), // 4 req/sec
		progressChan: make(chan ExportProgress, 100),
	}
}

// GetProgressChannel returns the channel for receiving export progress updates
func (e *Exporter) GetProgressChannel() <-chan ExportProgress {
	return e.progressChan
}

// ExportFavorites writes recipes to an EPUB titled title and returns its path.
// A thumbnail that cannot be fetched is reported and the recipe is exported
// without it.
func (e *Exporter) ExportFavorites(ctx context.Context, title string, recipes []data.Recipe) (string, error) {
	if len(recipes) == 0 {
		return "", fmt.Errorf("no favorite recipes to export")
	}

	workDir, err := os.MkdirTemp("", "recipes-thumbs-*")
	if err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	entries := make([]integrations.CookbookEntry, len(recipes))
	total := len(recipes)
	var done atomic.Int32

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 3) // Max 3 concurrent fetches

	for i, recipe := range recipes {
		entries[i] = integrations.CookbookEntry{Recipe: recipe.Clone()}
		if recipe.Thumbnail == "" {
			done.Add(1)
			continue
		}

		wg.Add(1)
		go func(i int, recipe data.Recipe) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			e.sendProgress(ExportProgress{
				RecipeID:   recipe.ID,
				RecipeName: recipe.Name,
				Current:    int(done.Load()),
				Total:      total,
				Status:     "fetching",
			})

			path, err := e.fetchThumbnail(ctx, workDir, recipe)
			current := int(done.Add(1))
			if err != nil {
				log.Printf("export: thumbnail for %s: %v", recipe.ID, err)
				e.sendProgress(ExportProgress{
					RecipeID:   recipe.ID,
					RecipeName: recipe.Name,
					Current:    current,
					Total:      total,
					Status:     "error",
					Error:      err,
				})
				return
			}
			entries[i].ImagePath = path
		}(i, recipe)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.sendProgress(ExportProgress{Current: total, Total: total, Status: "building"})

	path, err := e.builder.CreateCookbook(title, entries)
	if err != nil {
		return "", fmt.Errorf("failed to build cookbook: %w", err)
	}

	e.sendProgress(ExportProgress{Current: total, Total: total, Status: "complete", Path: path})
	return path, nil
}

func (e *Exporter) fetchThumbnail(ctx context.Context, dir string, recipe data.Recipe) (string, error) {
	select {
	case <-e.rateLimiter.C:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recipe.Thumbnail, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	content, err := e.images.ProcessImage(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, sanitizeID(recipe.ID)+".jpg")
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

func sanitizeID(id string) string {
	out := []rune(id)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "recipe"
	}
	return string(out)
}

// sendProgress sends a progress update (non-blocking)
func (e *Exporter) sendProgress(progress ExportProgress) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	select {
	case e.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close stops the rate limiter and closes the progress channel. An export
// still running keeps going but reports no more progress.
func (e *Exporter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.rateLimiter.Stop()
	close(e.progressChan)
}
