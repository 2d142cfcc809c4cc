// Package search turns extracted keywords and domain filters into
// source-specific query strings, and generates fallback variants when the
// primary search under-returns.
package search

import (
	"fmt"
	"strings"

	"github.com/helixir/literature-search-service/internal/textanalysis"
)

// Field restriction values for a search query.
const (
	FieldAll   = "all"
	FieldTitle = "title"
)

// Limits on how many extracted terms participate in query expansion.
const (
	maxExpansionKeywords = 10
	maxExpansionBigrams  = 5
)

// Query is one source-specific search request, constructed and consumed
// within a single aggregation call.
type Query struct {
	// Query is the boolean expression string in the preprint source's DSL.
	Query string

	// Field restricts matching to "title" or searches "all" fields.
	Field string

	// Categories is the optional subject category filter already folded
	// into Query; kept for provenance and fallback widening.
	Categories []string

	// FromYear is an optional publication-year lower bound, folded into
	// the field expression by the adapter.
	FromYear int
}

// Builder constructs expanded queries from extracted text information.
type Builder struct{}

// NewBuilder creates a query builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build expands the original query text into one or more search queries.
// The expansion ORs together technical terms not already present in the
// original text, the top keywords longer than three characters, and the top
// bigrams, deduplicated case-insensitively in first-seen order. When a
// category filter is present, it is AND-combined as an OR-group of cat:
// clauses and a second title-only variant is added to broaden recall.
// If nothing was extracted the raw query is returned unmodified, so a remote
// query is never empty.
func (b *Builder) Build(original string, info textanalysis.ExtractedInfo, categories []string, fromYear int) []Query {
	base := b.expand(original, info)

	if len(categories) == 0 {
		return []Query{{Query: base, Field: FieldAll, FromYear: fromYear}}
	}

	catClauses := make([]string, len(categories))
	for i, cat := range categories {
		catClauses[i] = "cat:" + cat
	}
	combined := fmt.Sprintf("(%s) AND (%s)", base, strings.Join(catClauses, " OR "))

	return []Query{
		{Query: combined, Field: FieldAll, Categories: categories, FromYear: fromYear},
		{Query: combined, Field: FieldTitle, Categories: categories, FromYear: fromYear},
	}
}

// expand builds the boolean-OR clause over extracted terms, falling back to
// the raw original query when nothing usable was extracted.
func (b *Builder) expand(original string, info textanalysis.ExtractedInfo) string {
	lowerOriginal := strings.ToLower(original)

	var terms []string
	seen := map[string]struct{}{}
	add := func(term string) {
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}

	for _, term := range info.TechnicalTerms {
		if !strings.Contains(lowerOriginal, strings.ToLower(term)) {
			add(term)
		}
	}

	count := 0
	for _, kw := range info.Keywords {
		if count >= maxExpansionKeywords {
			break
		}
		if len(kw) > 3 {
			add(kw)
			count++
		}
	}

	for i, bg := range info.Bigrams {
		if i >= maxExpansionBigrams {
			break
		}
		add(bg)
	}

	if len(terms) == 0 {
		return original
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}
