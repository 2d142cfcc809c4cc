// Package aggregate orchestrates multi-source literature searches: it fans
// out expanded queries, filters and deduplicates the returned records, scores
// them against the original query, and partitions them into core, related and
// background buckets.
package aggregate

import (
	"strings"

	"github.com/helixir/literature-search-service/internal/domain"
)

// Category prefixes and exact identifiers excluded from results. These are
// physics, astronomy and pure-math archives whose papers routinely match CS
// query terms ("model", "simulation") without being relevant.
var (
	excludedPrefixes = []string{
		"astro-ph", "gr-qc", "hep-", "nucl-", "cond-mat",
		"physics.", "math.", "q-bio", "nlin.",
	}

	excludedExact = map[string]struct{}{
		"hep-ex":  {},
		"hep-th":  {},
		"hep-ph":  {},
		"hep-lat": {},
		"nucl-th": {},
		"nucl-ex": {},
	}
)

// CategoryFilter drops papers that carry an excluded subject category.
// Papers with no categories at all pass, since only the preprint source
// tags records with archive categories.
type CategoryFilter struct{}

// NewCategoryFilter creates a category filter with the built-in exclusions.
func NewCategoryFilter() *CategoryFilter {
	return &CategoryFilter{}
}

// Allow reports whether the record passes the filter. One excluded category
// is enough to reject, regardless of any other categories present.
func (f *CategoryFilter) Allow(p *domain.PaperRecord) bool {
	for _, cat := range p.Categories {
		for _, prefix := range excludedPrefixes {
			if strings.HasPrefix(cat, prefix) {
				return false
			}
		}
		if _, bad := excludedExact[cat]; bad {
			return false
		}
	}
	return true
}

// Apply filters papers in place order, returning the kept records and the
// number rejected.
func (f *CategoryFilter) Apply(papers []domain.PaperRecord) ([]domain.PaperRecord, int) {
	kept := make([]domain.PaperRecord, 0, len(papers))
	excluded := 0
	for i := range papers {
		if f.Allow(&papers[i]) {
			kept = append(kept, papers[i])
		} else {
			excluded++
		}
	}
	return kept, excluded
}
