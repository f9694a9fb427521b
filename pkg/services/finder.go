package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kerbaras/recipes/pkg/data"
	"github.com/kerbaras/recipes/pkg/sources"
)

const DefaultDebounce = 500 * time.Millisecond

// Finder owns the search and favorites state: it debounces input, filters
// suggestions, runs searches and toggles favorites. Every change is published
// on Updates as a Snapshot.
type Finder struct {
	source          sources.Source
	favorites       *data.Favorites
	debouncer       *Debouncer
	suggestions     []string
	suggestionLimit int
	ctx             context.Context

	mu        sync.Mutex
	query     string
	view      ViewState
	results   []data.Recipe
	suggested []string
	err       error
	seq       uint64
	inputGen  uint64

	updates chan Snapshot
}

type FinderOption func(*finderOptions)

type finderOptions struct {
	scheduler       Scheduler
	delay           time.Duration
	suggestions     []string
	suggestionLimit int
	ctx             context.Context
}

func WithScheduler(s Scheduler) FinderOption {
	return func(o *finderOptions) { o.scheduler = s }
}

func WithDebounce(d time.Duration) FinderOption {
	return func(o *finderOptions) { o.delay = d }
}

func WithSuggestions(list []string, limit int) FinderOption {
	return func(o *finderOptions) {
		o.suggestions = list
		o.suggestionLimit = limit
	}
}

// WithContext sets the context debounced searches run under.
func WithContext(ctx context.Context) FinderOption {
	return func(o *finderOptions) { o.ctx = ctx }
}

func NewFinder(source sources.Source, favorites *data.Favorites, opts ...FinderOption) *Finder {
	o := finderOptions{
		scheduler:       ClockScheduler,
		delay:           DefaultDebounce,
		suggestions:     DefaultSuggestions,
		suggestionLimit: DefaultSuggestionLimit,
		ctx:             context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	f := &Finder{
		source:          source,
		favorites:       favorites,
		debouncer:       NewDebouncer(o.scheduler, o.delay),
		suggestions:     append([]string(nil), o.suggestions...),
		suggestionLimit: o.suggestionLimit,
		ctx:             o.ctx,
		view:            Welcome,
		updates:         make(chan Snapshot, 16),
	}
	f.suggested = f.staticSuggestions()
	return f
}

// Updates delivers a Snapshot after every state change. When the reader
// falls behind, older snapshots are dropped in favor of newer ones.
func (f *Finder) Updates() <-chan Snapshot {
	return f.updates
}

// HandleInput reacts to the raw content of the search box.
func (f *Finder) HandleInput(text string) {
	query := strings.TrimSpace(text)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.debouncer.Cancel()
	f.inputGen++

	if query == "" {
		f.resetLocked()
		return
	}

	f.query = query
	f.suggested = FilterSuggestions(f.suggestions, query, f.suggestionLimit)
	gen := f.inputGen
	f.debouncer.Trigger(func() {
		f.debouncedSearch(gen, query)
	})
	f.publishLocked()
}

// Submit searches for query right away, dropping any pending debounced search.
// A blank query returns to the welcome state without searching.
func (f *Finder) Submit(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)

	f.mu.Lock()
	f.debouncer.Cancel()
	f.inputGen++
	if query == "" {
		f.resetLocked()
		f.mu.Unlock()
		return nil
	}
	f.query = query
	f.mu.Unlock()

	return f.SearchRecipes(ctx, query)
}

// SelectSuggestion runs a search for one of the offered suggestions.
func (f *Finder) SelectSuggestion(ctx context.Context, suggestion string) error {
	f.mu.Lock()
	f.suggested = []string{}
	f.mu.Unlock()
	return f.Submit(ctx, suggestion)
}

// SearchRecipes performs one remote lookup and records the outcome. A
// transport failure moves the view to Error and is returned; no matches moves
// it to NoResults. Responses overtaken by a newer search are discarded.
func (f *Finder) SearchRecipes(ctx context.Context, query string) error {
	f.mu.Lock()
	seq := f.beginSearchLocked()
	f.mu.Unlock()

	return f.search(ctx, query, seq)
}

// debouncedSearch runs the search scheduled by HandleInput unless input
// changed after it was scheduled. The check and the start of the search
// happen under one lock so a superseded query never reaches the source.
func (f *Finder) debouncedSearch(gen uint64, query string) {
	f.mu.Lock()
	if gen != f.inputGen {
		f.mu.Unlock()
		return
	}
	seq := f.beginSearchLocked()
	f.mu.Unlock()

	f.search(f.ctx, query, seq)
}

func (f *Finder) beginSearchLocked() uint64 {
	f.seq++
	f.view = Loading
	f.err = nil
	f.publishLocked()
	return f.seq
}

func (f *Finder) search(ctx context.Context, query string, seq uint64) error {
	recipes, err := f.source.Search(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.seq {
		log.Printf("search %q: discarding stale response (request %d, latest %d)", query, seq, f.seq)
		return nil
	}

	switch {
	case err != nil:
		log.Printf("search %q failed: %v", query, err)
		f.view = Error
		f.err = err
	case len(recipes) == 0:
		f.view = NoResults
	default:
		f.results = data.CloneRecipes(recipes)
		f.view = Results
	}
	f.publishLocked()
	return err
}

// ToggleFavorite flips the favorite status of the recipe with id, looking it
// up in the current results first and then in the favorites. Unknown ids are
// ignored. It reports whether the recipe is a favorite afterwards.
func (f *Finder) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	recipe, ok := f.lookupLocked(id)
	if !ok {
		return false, nil
	}

	favorite, err := f.favorites.Toggle(ctx, recipe)
	if err != nil {
		log.Printf("toggle favorite %s: %v", id, err)
		return favorite, err
	}
	f.publishLocked()
	return favorite, nil
}

func (f *Finder) IsFavorite(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.favorites.Contains(id)
}

// Recipe returns the recipe for a detail view.
func (f *Finder) Recipe(id string) (data.Recipe, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookupLocked(id)
}

func (f *Finder) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Close drops any pending debounced search.
func (f *Finder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debouncer.Cancel()
	f.inputGen++
}

// resetLocked returns to the welcome state. A search still in flight must not
// replace it, so the sequence moves on too.
func (f *Finder) resetLocked() {
	f.query = ""
	f.suggested = f.staticSuggestions()
	f.view = Welcome
	f.err = nil
	f.seq++
	f.publishLocked()
}

func (f *Finder) lookupLocked(id string) (data.Recipe, bool) {
	for _, r := range f.results {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return f.favorites.Get(id)
}

func (f *Finder) staticSuggestions() []string {
	return FilterSuggestions(f.suggestions, "", f.suggestionLimit)
}

func (f *Finder) snapshotLocked() Snapshot {
	return Snapshot{
		Query:       f.query,
		View:        f.view,
		Results:     data.CloneRecipes(f.results),
		Suggestions: append([]string{}, f.suggested...),
		Favorites:   f.favorites.List(),
		Err:         f.err,
	}
}

func (f *Finder) publishLocked() {
	snap := f.snapshotLocked()
	for {
		select {
		case f.updates <- snap:
			return
		default:
		}
		// full: drop the oldest and retry
		select {
		case <-f.updates:
		default:
		}
	}
}
