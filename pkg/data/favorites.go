package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// FavoritesKey is the store key holding the whole favorites collection.
const FavoritesKey = "favoriteRecipes"

// Favorites is the persisted, insertion-ordered set of favorite recipes.
// It is not safe for concurrent use; callers serialize access.
type Favorites struct {
	store Store
	items []Recipe
}

// LoadFavorites reads the collection from store. A missing key or content
// that fails to parse yields an empty collection.
func LoadFavorites(ctx context.Context, store Store) (*Favorites, error) {
	f := &Favorites{store: store}

	raw, ok, err := store.Get(ctx, FavoritesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if !ok || len(raw) == 0 {
		return f, nil
	}

	var items []Recipe
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("favorites: ignoring malformed stored value: %v", err)
		return f, nil
	}

	seen := make(map[string]bool, len(items))
	for _, r := range items {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		f.items = append(f.items, r)
	}
	return f, nil
}

func (f *Favorites) Len() int {
	return len(f.items)
}

func (f *Favorites) Contains(id string) bool {
	return f.indexOf(id) >= 0
}

func (f *Favorites) Get(id string) (Recipe, bool) {
	i := f.indexOf(id)
	if i < 0 {
		return Recipe{}, false
	}
	return f.items[i].Clone(), true
}

// List returns a copy of the collection in insertion order.
func (f *Favorites) List() []Recipe {
	out := CloneRecipes(f.items)
	if out == nil {
		return []Recipe{}
	}
	return out
}

// Toggle removes recipe if it is present, appends a copy otherwise, then
// persists the collection. It reports whether recipe is a favorite afterwards.
// When the write fails the in-memory collection is left unchanged.
func (f *Favorites) Toggle(ctx context.Context, recipe Recipe) (bool, error) {
	prev := f.items

	var added bool
	if i := f.indexOf(recipe.ID); i >= 0 {
		next := make([]Recipe, 0, len(f.items)-1)
		next = append(next, f.items[:i]...)
		f.items = append(next, f.items[i+1:]...)
	} else {
		next := make([]Recipe, len(f.items), len(f.items)+1)
		copy(next, f.items)
		f.items = append(next, recipe.Clone())
		added = true
	}

	if err := f.persist(ctx); err != nil {
		f.items = prev
		return !added, err
	}
	return added, nil
}

// Remove deletes id from the collection. It reports false if id was absent.
func (f *Favorites) Remove(ctx context.Context, id string) (bool, error) {
	recipe, ok := f.Get(id)
	if !ok {
		return false, nil
	}
	if _, err := f.Toggle(ctx, recipe); err != nil {
		return false, err
	}
	return true, nil
}

func (f *Favorites) persist(ctx context.Context) error {
	items := f.items
	if items == nil {
		items = []Recipe{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := f.store.Set(ctx, FavoritesKey, raw); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

func (f *Favorites) indexOf(id string) int {
	for i, r := range f.items {
		if r.ID == id {
			return i
		}
	}
	return -1
}
