// Package store persists articles and the analysis attached to them.
package store

import (
	"context"
	"errors"
	"time"

	nb "github.com/spetersoncode/newsbrief"
)

// ErrNotFound is returned by SaveAnalysis when an article ID is unknown.
var ErrNotFound = errors.New("store: article not found")

// Store loads article batches and records their analysis.
type Store interface {
	// Articles returns the articles published in [from, to), oldest first.
	// A zero to means no upper bound.
	Articles(ctx context.Context, from, to time.Time) ([]nb.Article, error)

	// SaveArticles inserts articles or replaces existing ones by ID.
	SaveArticles(ctx context.Context, articles []nb.Article) error

	// SaveAnalysis updates Impact, Sectors and Major of existing articles.
	// Other fields are ignored.
	SaveAnalysis(ctx context.Context, articles []nb.Article) error
}

func inRange(t, from, to time.Time) bool {
	if t.Before(from) {
		return false
	}
	return to.IsZero() || t.Before(to)
}
