package papersources

import (
	"fmt"
	"sort"

	"github.com/helixir/literature-search-service/internal/domain"
)

// Registry holds the configured paper sources keyed by source type. It is
// populated once at startup and read-only afterwards, so no locking.
type Registry struct {
	sources map[domain.SourceType]PaperSource
}

// NewRegistry creates a registry over the given sources. Nil sources are
// skipped so callers can pass disabled clients unconditionally.
func NewRegistry(sources ...PaperSource) *Registry {
	r := &Registry{sources: make(map[domain.SourceType]PaperSource, len(sources))}
	for _, src := range sources {
		if src != nil {
			r.sources[src.SourceType()] = src
		}
	}
	return r
}

// Get returns the source for the given type, or an error when it is unknown
// or disabled.
func (r *Registry) Get(st domain.SourceType) (PaperSource, error) {
	src, ok := r.sources[st]
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, st)
	}
	if !src.IsEnabled() {
		return nil, fmt.Errorf("%w: source %q is disabled", domain.ErrInvalidInput, st)
	}
	return src, nil
}

// Enabled returns the enabled source types in stable order.
func (r *Registry) Enabled() []domain.SourceType {
	out := make([]domain.SourceType, 0, len(r.sources))
	for st, src := range r.sources {
		if src.IsEnabled() {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
