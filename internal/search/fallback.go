package search

import (
	"fmt"
	"strings"

	"github.com/helixir/literature-search-service/internal/textanalysis"
)

// maxFallbackQueries caps the number of supplementary query strings.
const maxFallbackQueries = 5

// anchorPhrase is the fixed domain-anchor paired with single keywords so a
// bare keyword does not flood the search with unrelated results.
const anchorPhrase = "code generation"

// domainPhrases are the canned queries used when no terms are available at
// all; one per matched domain tag.
var domainPhrases = map[string]string{
	"software_engineering": "software engineering code generation",
	"embedded_systems":     "embedded system real-time software",
	"ai_ml":                "machine learning code generation",
	"mbse":                 "model-based systems engineering",
	"formal_methods":       "formal verification software",
}

// FallbackGenerator produces supplementary query strings when the primary
// search returned fewer core papers than required.
type FallbackGenerator struct{}

// NewFallbackGenerator creates a fallback query generator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Generate builds up to five supplementary queries from terms the primary
// expansion did not use: technical terms absent from the original query,
// high-frequency keywords paired with the anchor phrase, and unused bigrams.
// When nothing is available, one canned phrase per matched domain is emitted.
func (g *FallbackGenerator) Generate(info textanalysis.ExtractedInfo, originalQuery string) []string {
	lowerQuery := strings.ToLower(originalQuery)

	var queries []string
	seen := map[string]struct{}{}
	add := func(q string) bool {
		if len(queries) >= maxFallbackQueries {
			return false
		}
		if _, dup := seen[q]; dup {
			return true
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
		return true
	}

	for i, term := range info.TechnicalTerms {
		if i >= 3 {
			break
		}
		if !strings.Contains(lowerQuery, strings.ToLower(term)) {
			add(term)
		}
	}

	count := 0
	for _, kw := range info.Keywords {
		if count >= 5 {
			break
		}
		if len(kw) > 3 && !strings.Contains(lowerQuery, strings.ToLower(kw)) {
			add(fmt.Sprintf("%q %s", kw, anchorPhrase))
			count++
		}
	}

	for i, bg := range info.Bigrams {
		if i >= 3 {
			break
		}
		if !strings.Contains(lowerQuery, strings.ToLower(bg)) {
			add(bg)
		}
	}

	if len(queries) == 0 {
		for _, dom := range info.Domains {
			if phrase, ok := domainPhrases[dom]; ok {
				add(phrase)
			}
		}
	}

	return queries
}
