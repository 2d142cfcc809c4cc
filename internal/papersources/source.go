// Package papersources provides clients for querying external literature
// sources. Each source implements the PaperSource interface so the
// aggregator can fan out over them with a unified API, and shares the
// retrying, rate-limited HTTP client defined here.
package papersources

import (
	"context"
	"time"

	"github.com/helixir/literature-search-service/internal/domain"
)

// Sort criteria accepted by the preprint source.
const (
	SortRelevance       = "relevance"
	SortLastUpdatedDate = "lastUpdatedDate"
	SortSubmittedDate   = "submittedDate"
)

// ValidSortBy reports whether sortBy is an accepted sort criterion.
func ValidSortBy(sortBy string) bool {
	switch sortBy {
	case SortRelevance, SortLastUpdatedDate, SortSubmittedDate:
		return true
	}
	return false
}

// SearchParams defines the parameters for a single search request against
// one source. Only Query is required.
type SearchParams struct {
	// Query is the search expression. For the preprint source this is the
	// boolean DSL produced by the query builder; for the scholarly graph
	// it is plain text folded into filter sub-expressions.
	Query string

	// Field restricts matching to "title" or searches "all" fields.
	// Only honored by the preprint source.
	Field string

	// Categories is an optional subject-category filter (scholarly graph:
	// concept display names).
	Categories []string

	// FromYear and ToYear bound the publication year. Zero means unbounded.
	FromYear int
	ToYear   int

	// MaxResults limits the number of records returned. Zero selects the
	// source default.
	MaxResults int

	// SortBy selects the sort criterion; invalid values fall back to
	// relevance.
	SortBy string
}

// SearchResult contains the outcome of one search against one source.
type SearchResult struct {
	// Papers are the normalized records, in source-returned order.
	Papers []domain.PaperRecord

	// TotalResults is the total match count reported by the source, which
	// may exceed len(Papers).
	TotalResults int

	// Source identifies which source produced these results.
	Source domain.SourceType

	// Duration is the time taken by the request including parsing.
	Duration time.Duration
}

// PaperSource is implemented by every literature source client.
type PaperSource interface {
	// Search queries the source for papers matching params. Implementations
	// must respect context cancellation and apply their own rate limiting.
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// GetByID retrieves one paper by its source-specific identifier with a
	// fixed relevance score of 1.0. Returns domain.ErrNotFound when the
	// paper does not exist.
	GetByID(ctx context.Context, id string) (*domain.PaperRecord, error)

	// SourceType returns the type identifier for this source.
	SourceType() domain.SourceType

	// Name returns a human-readable name for logging and error messages.
	Name() string

	// IsEnabled reports whether the source is configured for searches.
	IsEnabled() bool
}
