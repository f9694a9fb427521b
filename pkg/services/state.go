package services

import (
	"github.com/kerbaras/recipes/pkg/data"
)

// ViewState is what the results pane currently shows.
type ViewState int

const (
	Welcome ViewState = iota
	Loading
	Results
	NoResults
	Error
)

func (s ViewState) String() string {
	switch s {
	case Welcome:
		return "welcome"
	case Loading:
		return "loading"
	case Results:
		return "results"
	case NoResults:
		return "no-results"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the Finder state handed to renderers.
type Snapshot struct {
	Query       string
	View        ViewState
	Results     []data.Recipe
	Suggestions []string
	Favorites   []data.Recipe
	Err         error
}

func (s Snapshot) IsFavorite(id string) bool {
	for _, r := range s.Favorites {
		if r.ID == id {
			return true
		}
	}
	return false
}
