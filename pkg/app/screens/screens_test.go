package screens

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/recipes/pkg/data"
	"github.com/kerbaras/recipes/pkg/services"
	"github.com/kerbaras/recipes/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pastaJSON = `{"meals":[
	{"idMeal":"1","strMeal":"Spicy Arrabiata Penne","strCategory":"Vegetarian","strArea":"Italian",
	 "strInstructions":"Boil the pasta.","strIngredient1":"penne rigate","strMeasure1":"1 pound"},
	{"idMeal":"2","strMeal":"Pasta Carbonara","strCategory":"Pasta","strArea":"Italian"}
]}`

func newTestFinder(t *testing.T) *services.Finder {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("s") == "pasta" {
			w.Write([]byte(pastaJSON))
			return
		}
		w.Write([]byte(`{"meals":null}`))
	}))
	t.Cleanup(server.Close)

	favs, err := data.LoadFavorites(context.Background(), data.NewMemoryStore())
	require.NoError(t, err)

	// debounced searches never fire on their own here
	f := services.NewFinder(sources.NewMealDB(server.URL, server.Client()), favs, services.WithDebounce(time.Hour))
	t.Cleanup(f.Close)
	return f
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and every command it produces, feeding messages back.
func run(m tea.Model, cmd tea.Cmd) tea.Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case stateChangedMsg, SwitchScreenMsg, searchDoneMsg, favoriteToggledMsg:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m
}

func newSizedRoot(t *testing.T, finder *services.Finder) *RootScreen {
	t.Helper()
	root := NewRootScreen(context.Background(), finder, nil)
	m, _ := root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m.(*RootScreen)
}

// drain applies every pending finder update.
func drain(root *RootScreen, finder *services.Finder) {
	for {
		select {
		case snap := <-finder.Updates():
			root.Update(stateChangedMsg{snapshot: snap})
		default:
			return
		}
	}
}

func TestSearchScreen_TypingFeedsFinder(t *testing.T) {
	finder := newTestFinder(t)
	root := newSizedRoot(t, finder)

	for _, r := range "sal" {
		root.Update(key(string(r)))
	}
	drain(root, finder)

	snap := finder.Snapshot()
	assert.Equal(t, "sal", snap.Query)
	assert.Equal(t, []string{"salad"}, snap.Suggestions)
	assert.Contains(t, root.View(), "salad")
}

func TestSearchScreen_WelcomeView(t *testing.T) {
	root := newSizedRoot(t, newTestFinder(t))

	view := root.View()
	assert.Contains(t, view, "Welcome to Recipe Finder!")
	assert.Contains(t, view, "Start typing to search for delicious recipes")
	assert.Contains(t, view, "vegetable")
}

func TestSearchScreen_SubmitShowsResults(t *testing.T) {
	finder := newTestFinder(t)
	root := newSizedRoot(t, finder)

	for _, r := range "pasta" {
		root.Update(key(string(r)))
	}
	_, cmd := root.Update(key("enter"))
	run(root, cmd)
	drain(root, finder)

	assert.Equal(t, services.Results, finder.Snapshot().View)
	view := root.View()
	assert.Contains(t, view, "Found 2 recipes")
	assert.Contains(t, view, "Spicy Arrabiata Penne")
}

func TestSearchScreen_NoResultsView(t *testing.T) {
	finder := newTestFinder(t)
	root := newSizedRoot(t, finder)

	for _, r := range "zzz" {
		root.Update(key(string(r)))
	}
	_, cmd := root.Update(key("enter"))
	run(root, cmd)
	drain(root, finder)

	assert.Contains(t, root.View(), "No recipes found")
}

func TestSearchScreen_SuggestionSelection(t *testing.T) {
	finder := newTestFinder(t)
	root := newSizedRoot(t, finder)

	for _, r := range "pa" {
		root.Update(key(string(r)))
	}
	drain(root, finder)
	require.Equal(t, []string{"pasta"}, finder.Snapshot().Suggestions)

	root.Update(key("ctrl+n"))
	_, cmd := root.Update(key("enter"))
	run(root, cmd)
	drain(root, finder)

	snap := finder.Snapshot()
	assert.Equal(t, "pasta", snap.Query)
	assert.Equal(t, services.Results, snap.View)
	assert.Empty(t, snap.Suggestions)
}

func TestFavoriteFlow(t *testing.T) {
	finder := newTestFinder(t)
	root := newSizedRoot(t, finder)
	ctx := context.Background()

	require.NoError(t, finder.Submit(ctx, "pasta"))
	drain(root, finder)

	// focus the results and favorite the first card
	root.Update(key("esc"))
	_, cmd := root.Update(key("f"))
	run(root, cmd)
	drain(root, finder)

	assert.True(t, finder.IsFavorite("1"))

	root.Update(key("tab"))
	view := root.View()
	assert.Contains(t, view, "Favorite Recipes (1)")
	assert.Contains(t, view, "Spicy Arrabiata Penne")

	// remove it from the favorites tab
	_, cmd = root.Update(key("d"))
	run(root, cmd)
	drain(root, finder)

	assert.False(t, finder.IsFavorite("1"))
	assert.Contains(t, root.View(), "No favorite recipes yet. Start exploring and add some!")
}

func TestDetailsScreen(t *testing.T) {
	finder := newTestFinder(t)
	root := newSizedRoot(t, finder)
	ctx := context.Background()

	require.NoError(t, finder.Submit(ctx, "pasta"))
	drain(root, finder)

	root.Update(key("esc"))
	_, cmd := root.Update(key("enter"))
	run(root, cmd)

	require.Equal(t, detailsView, root.currentView)
	view := root.View()
	assert.Contains(t, view, "Spicy Arrabiata Penne")
	assert.Contains(t, view, "penne rigate")
	assert.Contains(t, view, "Boil the pasta.")

	_, cmd = root.Update(key("f"))
	run(root, cmd)
	assert.True(t, finder.IsFavorite("1"))
	assert.True(t, strings.Contains(root.View(), services.FavoriteIcon))

	_, cmd = root.Update(key("esc"))
	run(root, cmd)
	assert.Equal(t, searchView, root.currentView)
}

func TestDetailsScreen_UnknownRecipe(t *testing.T) {
	d := NewDetailsScreen(context.Background(), newTestFinder(t), "404")
	assert.Contains(t, d.View(), "Recipe 404 not found")
}

func TestRootScreen_TabsShowFavoriteCount(t *testing.T) {
	finder := newTestFinder(t)
	root := newSizedRoot(t, finder)
	ctx := context.Background()

	require.NoError(t, finder.Submit(ctx, "pasta"))
	_, err := finder.ToggleFavorite(ctx, "2")
	require.NoError(t, err)
	drain(root, finder)

	assert.Contains(t, root.renderTabs(), "1")
	assert.Contains(t, root.renderTabs(), "Favorites")
}

func TestSearchScreen_BlankEnterDoesNotSearch(t *testing.T) {
	finder := newTestFinder(t)
	root := newSizedRoot(t, finder)

	root.Update(key(" "))
	root.Update(key(" "))
	_, cmd := root.Update(key("enter"))
	assert.Nil(t, cmd)
	drain(root, finder)

	assert.Equal(t, services.Welcome, finder.Snapshot().View)
	assert.Contains(t, root.View(), "Welcome to Recipe Finder!")
}
