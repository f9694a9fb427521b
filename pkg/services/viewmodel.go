package services

import (
	"github.com/kerbaras/recipes/pkg/data"
)

const (
	FavoriteIcon    = "❤️"
	NotFavoriteIcon = "🤍"
)

type Card struct {
	ID        string
	Title     string
	Category  string
	Origin    string
	Thumbnail string
	Favorite  bool
	Icon      string
}

// ViewModel is everything a renderer needs for one list pane. Cards is only
// populated when there is something to list; otherwise Heading and Message
// describe the state.
type ViewModel struct {
	State         ViewState
	Heading       string
	Message       string
	Cards         []Card
	Suggestions   []string
	FavoriteCount int
}

type DetailView struct {
	Card
	Ingredients  []data.Ingredient
	Instructions string
}

func NewCard(r data.Recipe, favorite bool) Card {
	icon := NotFavoriteIcon
	if favorite {
		icon = FavoriteIcon
	}
	return Card{
		ID:        r.ID,
		Title:     r.Name,
		Category:  r.Category,
		Origin:    r.Origin,
		Thumbnail: r.Thumbnail,
		Favorite:  favorite,
		Icon:      icon,
	}
}

func BuildResultsView(s Snapshot) ViewModel {
	vm := ViewModel{
		State:         s.View,
		Suggestions:   s.Suggestions,
		FavoriteCount: len(s.Favorites),
	}

	switch s.View {
	case Welcome:
		vm.Heading = "Welcome to Recipe Finder!"
		vm.Message = "Start typing to search for delicious recipes"
	case Loading:
		vm.Message = "Searching for recipes..."
	case NoResults:
		vm.Heading = "No recipes found"
		vm.Message = "Try searching for something else"
	case Error:
		vm.Heading = "Oops! Something went wrong"
		vm.Message = "Please try again later"
	case Results:
		vm.Cards = make([]Card, len(s.Results))
		for i, r := range s.Results {
			vm.Cards[i] = NewCard(r, s.IsFavorite(r.ID))
		}
	}
	return vm
}

func BuildFavoritesView(s Snapshot) ViewModel {
	vm := ViewModel{
		State:         s.View,
		FavoriteCount: len(s.Favorites),
	}
	if len(s.Favorites) == 0 {
		vm.Message = "No favorite recipes yet. Start exploring and add some!"
		return vm
	}
	vm.Cards = make([]Card, len(s.Favorites))
	for i, r := range s.Favorites {
		vm.Cards[i] = NewCard(r, true)
	}
	return vm
}

func BuildDetailView(r data.Recipe, favorite bool) DetailView {
	return DetailView{
		Card:         NewCard(r, favorite),
		Ingredients:  append([]data.Ingredient{}, r.Ingredients...),
		Instructions: r.Instructions,
	}
}
