package sources

import (
	"context"
	"errors"

	"github.com/kerbaras/recipes/pkg/data"
)

// ErrTransport wraps every network, status or decode failure of a lookup.
var ErrTransport = errors.New("recipe lookup failed")

type Source interface {
	// Search returns recipes whose name contains query. No matches is an
	// empty slice and a nil error.
	Search(ctx context.Context, query string) ([]data.Recipe, error)
}
