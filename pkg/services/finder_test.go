package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kerbaras/recipes/pkg/data"
	"github.com/kerbaras/recipes/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler only runs tasks when the test fires them.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{delay: d, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Fire runs every task that is still scheduled.
func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	var due []*manualTask
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeSource struct {
	mu      sync.Mutex
	queries []string
	results map[string][]data.Recipe
	err     error
	gates   map[string]chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		results: make(map[string][]data.Recipe),
		gates:   make(map[string]chan struct{}),
	}
}

func (s *fakeSource) Search(ctx context.Context, query string) ([]data.Recipe, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	gate := s.gates[query]
	results, err := s.results[query], s.err
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return data.CloneRecipes(results), nil
}

func (s *fakeSource) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func recipe(id, name string) data.Recipe {
	return data.Recipe{
		ID:          id,
		Name:        name,
		Category:    "Pasta",
		Origin:      "Italian",
		Ingredients: []data.Ingredient{{Item: "Salt", Measure: "1 tsp"}},
	}
}

func newTestFinder(t *testing.T, source sources.Source) (*Finder, *manualScheduler, *data.MemoryStore) {
	t.Helper()
	store := data.NewMemoryStore()
	favs, err := data.LoadFavorites(context.Background(), store)
	require.NoError(t, err)
	sched := &manualScheduler{}
	f := NewFinder(source, favs, WithScheduler(sched))
	t.Cleanup(f.Close)
	return f, sched, store
}

func TestFinder_InitialState(t *testing.T) {
	f, _, _ := newTestFinder(t, newFakeSource())

	snap := f.Snapshot()
	assert.Equal(t, Welcome, snap.View)
	assert.Equal(t, []string{"vegetable", "salad", "pasta"}, snap.Suggestions)
	assert.Empty(t, snap.Results)
}

func TestFinder_DebounceCollapsesInput(t *testing.T) {
	source := newFakeSource()
	source.results["pas"] = []data.Recipe{recipe("1", "Pasta")}
	f, sched, _ := newTestFinder(t, source)

	f.HandleInput("p")
	f.HandleInput("pa")
	f.HandleInput("pas")

	assert.Equal(t, 1, sched.Pending())
	assert.Empty(t, source.Queries())

	assert.Equal(t, 1, sched.Fire())
	assert.Equal(t, []string{"pas"}, source.Queries())
	assert.Equal(t, Results, f.Snapshot().View)
}

func TestFinder_DebounceWithRealTimers(t *testing.T) {
	source := newFakeSource()
	favs, _ := data.LoadFavorites(context.Background(), data.NewMemoryStore())
	f := NewFinder(source, favs, WithDebounce(30*time.Millisecond))
	defer f.Close()

	f.HandleInput("p")
	f.HandleInput("pa")
	f.HandleInput("pas")

	require.Eventually(t, func() bool { return len(source.Queries()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"pas"}, source.Queries())
}

func TestFinder_InputTrimmedBeforeSearch(t *testing.T) {
	source := newFakeSource()
	f, sched, _ := newTestFinder(t, source)

	f.HandleInput("  salad  ")
	sched.Fire()

	assert.Equal(t, []string{"salad"}, source.Queries())
	assert.Equal(t, "salad", f.Snapshot().Query)
}

func TestFinder_Suggestions(t *testing.T) {
	f, _, _ := newTestFinder(t, newFakeSource())

	f.HandleInput("sa")
	assert.Equal(t, []string{"salad"}, f.Snapshot().Suggestions)

	f.HandleInput("A")
	assert.Equal(t, []string{"vegetable", "salad", "pasta"}, f.Snapshot().Suggestions)

	f.HandleInput("xyz")
	assert.Empty(t, f.Snapshot().Suggestions)
}

func TestFinder_EmptyInputResetsAndCancels(t *testing.T) {
	source := newFakeSource()
	f, sched, _ := newTestFinder(t, source)

	f.HandleInput("pas")
	f.HandleInput("   ")

	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, sched.Fire())
	assert.Empty(t, source.Queries())

	snap := f.Snapshot()
	assert.Equal(t, Welcome, snap.View)
	assert.Equal(t, "", snap.Query)
	assert.Equal(t, []string{"vegetable", "salad", "pasta"}, snap.Suggestions)
}

func TestFinder_ZeroMatchesIsNoResults(t *testing.T) {
	f, _, _ := newTestFinder(t, newFakeSource())

	err := f.SearchRecipes(context.Background(), "zzz")
	require.NoError(t, err)

	snap := f.Snapshot()
	assert.Equal(t, NoResults, snap.View)
	assert.NoError(t, snap.Err)
}

func TestFinder_TransportFailureIsError(t *testing.T) {
	source := newFakeSource()
	source.err = fmt.Errorf("%w: connection refused", sources.ErrTransport)
	f, _, _ := newTestFinder(t, source)

	err := f.SearchRecipes(context.Background(), "pasta")
	assert.ErrorIs(t, err, sources.ErrTransport)

	snap := f.Snapshot()
	assert.Equal(t, Error, snap.View)
	assert.ErrorIs(t, snap.Err, sources.ErrTransport)
	assert.Len(t, source.Queries(), 1, "failed searches are not retried")
}

func TestFinder_SearchReplacesResults(t *testing.T) {
	source := newFakeSource()
	source.results["pasta"] = []data.Recipe{recipe("1", "Pasta"), recipe("2", "Penne")}
	source.results["salad"] = []data.Recipe{recipe("3", "Salad")}
	f, _, _ := newTestFinder(t, source)
	ctx := context.Background()

	require.NoError(t, f.SearchRecipes(ctx, "pasta"))
	assert.Len(t, f.Snapshot().Results, 2)

	require.NoError(t, f.SearchRecipes(ctx, "salad"))
	results := f.Snapshot().Results
	require.Len(t, results, 1)
	assert.Equal(t, "3", results[0].ID)
}

func TestFinder_StaleResponseDiscarded(t *testing.T) {
	source := newFakeSource()
	source.results["slow"] = []data.Recipe{recipe("1", "Slow")}
	source.results["fast"] = []data.Recipe{recipe("2", "Fast")}
	gate := make(chan struct{})
	source.gates["slow"] = gate
	f, _, _ := newTestFinder(t, source)
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- f.SearchRecipes(ctx, "slow") }()
	require.Eventually(t, func() bool { return len(source.Queries()) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, f.SearchRecipes(ctx, "fast"))
	close(gate)
	require.NoError(t, <-done)

	snap := f.Snapshot()
	assert.Equal(t, Results, snap.View)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "2", snap.Results[0].ID)
}

func TestFinder_ClearingInputDiscardsInFlightSearch(t *testing.T) {
	source := newFakeSource()
	source.results["slow"] = []data.Recipe{recipe("1", "Slow")}
	gate := make(chan struct{})
	source.gates["slow"] = gate
	f, _, _ := newTestFinder(t, source)

	done := make(chan error)
	go func() { done <- f.SearchRecipes(context.Background(), "slow") }()
	require.Eventually(t, func() bool { return len(source.Queries()) == 1 }, time.Second, time.Millisecond)

	f.HandleInput("")
	close(gate)
	<-done

	assert.Equal(t, Welcome, f.Snapshot().View)
}

func TestFinder_SelectSuggestionSearchesImmediately(t *testing.T) {
	source := newFakeSource()
	source.results["salad"] = []data.Recipe{recipe("3", "Salad")}
	f, sched, _ := newTestFinder(t, source)

	f.HandleInput("sal")
	require.NoError(t, f.SelectSuggestion(context.Background(), "salad"))

	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, []string{"salad"}, source.Queries())
	snap := f.Snapshot()
	assert.Equal(t, "salad", snap.Query)
	assert.Equal(t, Results, snap.View)
	assert.Empty(t, snap.Suggestions)
}

func TestFinder_ToggleFavoriteTwiceRestores(t *testing.T) {
	source := newFakeSource()
	source.results["pasta"] = []data.Recipe{recipe("1", "Pasta"), recipe("2", "Penne")}
	f, _, store := newTestFinder(t, source)
	ctx := context.Background()
	require.NoError(t, f.SearchRecipes(ctx, "pasta"))

	_, err := f.ToggleFavorite(ctx, "2")
	require.NoError(t, err)
	before := f.Snapshot().Favorites
	beforeRaw, _, _ := store.Get(ctx, data.FavoritesKey)

	on, err := f.ToggleFavorite(ctx, "1")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, f.IsFavorite("1"))

	on, err = f.ToggleFavorite(ctx, "1")
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, f.IsFavorite("1"))

	assert.Equal(t, before, f.Snapshot().Favorites)
	afterRaw, _, _ := store.Get(ctx, data.FavoritesKey)
	assert.JSONEq(t, string(beforeRaw), string(afterRaw))
}

func TestFinder_ToggleUnknownIsNoop(t *testing.T) {
	f, _, store := newTestFinder(t, newFakeSource())

	on, err := f.ToggleFavorite(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, f.Snapshot().Favorites)

	_, ok, _ := store.Get(context.Background(), data.FavoritesKey)
	assert.False(t, ok, "no-op toggles must not write")
}

func TestFinder_ToggleFavoriteFromFavoritesOnly(t *testing.T) {
	source := newFakeSource()
	source.results["pasta"] = []data.Recipe{recipe("1", "Pasta")}
	source.results["salad"] = []data.Recipe{recipe("3", "Salad")}
	f, _, _ := newTestFinder(t, source)
	ctx := context.Background()

	f.SearchRecipes(ctx, "pasta")
	f.ToggleFavorite(ctx, "1")
	f.SearchRecipes(ctx, "salad")

	on, err := f.ToggleFavorite(ctx, "1")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, f.Snapshot().Favorites)
}

func TestFinder_CollectionsAreIndependent(t *testing.T) {
	source := newFakeSource()
	source.results["pasta"] = []data.Recipe{recipe("1", "Pasta")}
	f, _, _ := newTestFinder(t, source)
	ctx := context.Background()

	f.SearchRecipes(ctx, "pasta")
	f.ToggleFavorite(ctx, "1")

	snap := f.Snapshot()
	snap.Results[0].Ingredients[0].Item = "Sugar"
	snap.Favorites[0].Name = "Changed"

	again := f.Snapshot()
	assert.Equal(t, "Salt", again.Results[0].Ingredients[0].Item)
	assert.Equal(t, "Pasta", again.Favorites[0].Name)

	r, ok := f.Recipe("1")
	require.True(t, ok)
	assert.Equal(t, "Pasta", r.Name)
}

func TestFinder_ToggleWriteFailure(t *testing.T) {
	source := newFakeSource()
	source.results["pasta"] = []data.Recipe{recipe("1", "Pasta")}
	f, _, store := newTestFinder(t, source)
	ctx := context.Background()
	f.SearchRecipes(ctx, "pasta")

	store.FailWith(errors.New("read-only"))
	_, err := f.ToggleFavorite(ctx, "1")
	assert.Error(t, err)
	assert.False(t, f.IsFavorite("1"))
}

func TestFinder_RecipeLookupPrefersResults(t *testing.T) {
	source := newFakeSource()
	f, _, _ := newTestFinder(t, source)
	ctx := context.Background()

	source.results["old"] = []data.Recipe{recipe("1", "Old Name")}
	f.SearchRecipes(ctx, "old")
	f.ToggleFavorite(ctx, "1")

	source.results["new"] = []data.Recipe{recipe("1", "New Name")}
	f.SearchRecipes(ctx, "new")

	r, ok := f.Recipe("1")
	require.True(t, ok)
	assert.Equal(t, "New Name", r.Name)

	_, ok = f.Recipe("missing")
	assert.False(t, ok)
}

func TestFinder_PublishesUpdates(t *testing.T) {
	source := newFakeSource()
	source.results["pasta"] = []data.Recipe{recipe("1", "Pasta")}
	f, _, _ := newTestFinder(t, source)

	require.NoError(t, f.SearchRecipes(context.Background(), "pasta"))

	var states []ViewState
	for len(f.Updates()) > 0 {
		states = append(states, (<-f.Updates()).View)
	}
	assert.Equal(t, []ViewState{Loading, Results}, states)
}

func TestFinder_UpdatesKeepLatestWhenFull(t *testing.T) {
	f, _, _ := newTestFinder(t, newFakeSource())

	for i := 0; i < 40; i++ {
		f.HandleInput(fmt.Sprintf("q%d", i))
	}

	var last Snapshot
	for len(f.Updates()) > 0 {
		last = <-f.Updates()
	}
	assert.Equal(t, "q39", last.Query)
}

func TestFinder_BlankSubmitStaysWelcome(t *testing.T) {
	source := newFakeSource()
	f, sched, _ := newTestFinder(t, source)
	ctx := context.Background()

	f.HandleInput("   ")
	require.NoError(t, f.Submit(ctx, "   "))
	require.NoError(t, f.SelectSuggestion(ctx, " "))

	assert.Empty(t, source.Queries())
	assert.Equal(t, 0, sched.Pending())
	snap := f.Snapshot()
	assert.Equal(t, Welcome, snap.View)
	assert.Equal(t, "", snap.Query)
	assert.Equal(t, []string{"vegetable", "salad", "pasta"}, snap.Suggestions)
}

func TestFinder_BlankSubmitCancelsPendingSearch(t *testing.T) {
	source := newFakeSource()
	f, sched, _ := newTestFinder(t, source)

	f.HandleInput("pasta")
	require.NoError(t, f.Submit(context.Background(), "\t"))

	assert.Equal(t, 0, sched.Fire())
	assert.Empty(t, source.Queries())
	assert.Equal(t, Welcome, f.Snapshot().View)
}

func TestFinder_SupersededDebounceNeverSearches(t *testing.T) {
	source := newFakeSource()
	source.results["pasta"] = []data.Recipe{recipe("1", "Pasta")}
	f, sched, _ := newTestFinder(t, source)

	// the timer for "pas" has passed the debouncer but not yet started its
	// search when the next keystroke arrives
	f.HandleInput("pas")
	f.mu.Lock()
	gen := f.inputGen
	f.mu.Unlock()
	f.HandleInput("pasta")
	f.debouncedSearch(gen, "pas")

	assert.Empty(t, source.Queries())

	assert.Equal(t, 1, sched.Fire())
	assert.Equal(t, []string{"pasta"}, source.Queries())
	assert.Equal(t, Results, f.Snapshot().View)
}
