// Package textanalysis extracts keywords, bigrams, technical terms, and
// research domains from free text. All functions are pure: same input text
// always yields the same ordered output, which the query builder and the
// comparator rely on.
package textanalysis

import (
	"regexp"
	"sort"
	"strings"
)

// tokenRegex matches alphanumeric runs of length >= 3 starting with a letter.
var tokenRegex = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9]{2,}\b`)

// queryTermRegex matches plain words of length >= 3 in raw query text.
var queryTermRegex = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

const (
	// maxKeywords is the number of top frequency-ranked unigrams kept.
	maxKeywords = 30

	// maxBigrams is the number of top frequency-ranked bigrams kept.
	maxBigrams = 15
)

// ExtractedInfo is the output of one extraction pass over a text blob.
// Keywords and Bigrams are frequency-ranked with ties broken by first
// occurrence. Domains and TechnicalTerms follow dictionary declaration order.
type ExtractedInfo struct {
	Keywords       []string
	Bigrams        []string
	Domains        []string
	TechnicalTerms []string
}

// IsEmpty reports whether nothing at all was extracted.
func (e ExtractedInfo) IsEmpty() bool {
	return len(e.Keywords) == 0 && len(e.Bigrams) == 0 && len(e.TechnicalTerms) == 0
}

// TermDictionary maps a domain tag to its fixed technical phrase list.
// Declaration order is preserved for deterministic output.
type TermDictionary struct {
	Domain string
	Terms  []string
}

// Extractor extracts keywords from text using an injected stop-word set and
// technical-term dictionary, so tests can substitute fixtures.
type Extractor struct {
	stopWords map[string]struct{}
	terms     []TermDictionary
}

// NewExtractor creates an extractor with the given stop-word set and
// technical-term dictionaries. Nil arguments select the package defaults.
func NewExtractor(stopWords []string, terms []TermDictionary) *Extractor {
	if stopWords == nil {
		stopWords = DefaultStopWords
	}
	if terms == nil {
		terms = DefaultTechnicalTerms
	}
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[w] = struct{}{}
	}
	return &Extractor{stopWords: set, terms: terms}
}

// Extract tokenizes text, removes stop-words, and returns frequency-ranked
// keywords and bigrams plus matched technical terms and their domains.
// It never fails: empty input degrades to empty lists.
func (e *Extractor) Extract(text string) ExtractedInfo {
	lower := strings.ToLower(text)
	tokens := tokenRegex.FindAllString(lower, -1)

	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := e.stopWords[tok]; !stop {
			filtered = append(filtered, tok)
		}
	}

	keywords := topByFrequency(filtered, maxKeywords)

	bigrams := make([]string, 0, len(filtered))
	for i := 0; i+1 < len(filtered); i++ {
		bigrams = append(bigrams, filtered[i]+" "+filtered[i+1])
	}
	topBigrams := topByFrequency(bigrams, maxBigrams)

	var domains, technical []string
	seenDomain := map[string]struct{}{}
	seenTerm := map[string]struct{}{}
	for _, dict := range e.terms {
		matched := false
		for _, term := range dict.Terms {
			if !strings.Contains(lower, term) {
				continue
			}
			matched = true
			if _, dup := seenTerm[term]; !dup {
				seenTerm[term] = struct{}{}
				technical = append(technical, term)
			}
		}
		if matched {
			if _, dup := seenDomain[dict.Domain]; !dup {
				seenDomain[dict.Domain] = struct{}{}
				domains = append(domains, dict.Domain)
			}
		}
	}

	return ExtractedInfo{
		Keywords:       keywords,
		Bigrams:        topBigrams,
		Domains:        domains,
		TechnicalTerms: technical,
	}
}

// topByFrequency ranks items by descending count, breaking ties by first
// occurrence, and returns at most limit distinct items.
func topByFrequency(items []string, limit int) []string {
	counts := make(map[string]int, len(items))
	firstSeen := make(map[string]int, len(items))
	order := make([]string, 0, len(items))

	for i, item := range items {
		if _, ok := counts[item]; !ok {
			firstSeen[item] = i
			order = append(order, item)
		}
		counts[item]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// QueryTerms extracts the meaningful lower-cased terms of a raw query for
// relevance scoring: words of length >= 3 minus a small stop-word set.
func QueryTerms(query string) []string {
	tokens := queryTermRegex.FindAllString(strings.ToLower(query), -1)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := queryStopWords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// queryStopWords is the reduced stop-word set applied to raw query text
// before scoring. Kept separate from the extraction stop-words on purpose:
// scoring wants generic research words like "method" gone but keeps the rest.
var queryStopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"of": {}, "in": {}, "on": {}, "for": {}, "with": {}, "and": {}, "or": {},
	"to": {}, "from": {}, "by": {}, "method": {}, "approach": {},
}
