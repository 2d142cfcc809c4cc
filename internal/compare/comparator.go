// Package compare analyzes a target paper against an aggregated literature
// corpus: novelty of its vocabulary, methodology overlap, research gap
// indicators, and corpus-wide trends. All analysis is deterministic; equal
// frequencies break ties by first occurrence or declaration order.
package compare

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/helixir/literature-search-service/internal/domain"
)

const (
	// maxKeywords caps the keyword profile extracted per paper.
	maxKeywords = 20

	// noveltyWindow is how many top target keywords participate in the
	// novelty comparison, and how many corpus keywords each paper
	// contributes to the union.
	noveltyWindow = 10

	// minKeywordLength filters out short words that carry little signal.
	minKeywordLength = 5

	// Novelty verdicts by unique-keyword count.
	VerdictHighlyNovel     = "highly novel"
	VerdictModeratelyNovel = "moderately novel"
	VerdictIncremental     = "incremental"
)

// keywordRegex matches lower-case words of length >= 4; the length filter
// below tightens that to > 4.
var keywordRegex = regexp.MustCompile(`\b[a-z]{4,}\b`)

// keywordStopWords are common words excluded from keyword profiles.
var keywordStopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"were": {}, "they": {}, "their": {}, "which": {}, "more": {}, "than": {},
	"also": {}, "into": {}, "some": {}, "other": {},
}

// methodPatterns are the ML/AI techniques recognized during methodology
// comparison, with the label reported for each.
var methodPatterns = []struct {
	label string
	regex *regexp.Regexp
}{
	{"neural network", regexp.MustCompile(`(?i)\bneural network\b`)},
	{"transformer", regexp.MustCompile(`(?i)\btransformer\b`)},
	{"attention", regexp.MustCompile(`(?i)\battention\b`)},
	{"gan", regexp.MustCompile(`(?i)\bgan\b`)},
	{"gpt", regexp.MustCompile(`(?i)\bgpt\b`)},
	{"bert", regexp.MustCompile(`(?i)\bbert\b`)},
	{"resnet", regexp.MustCompile(`(?i)\bresnet\b`)},
	{"gradient descent", regexp.MustCompile(`(?i)\bgradient descent\b`)},
	{"reinforcement learning", regexp.MustCompile(`(?i)\breinforcement learning\b`)},
	{"supervised learning", regexp.MustCompile(`(?i)\bsupervised learning\b`)},
	{"unsupervised learning", regexp.MustCompile(`(?i)\bunsupervised learning\b`)},
	{"transfer learning", regexp.MustCompile(`(?i)\btransfer learning\b`)},
	{"fine-tuning", regexp.MustCompile(`(?i)\bfine-tuning\b`)},
}

// gapIndicators map textual signals in the target paper to gap descriptions.
var gapIndicators = []struct {
	regex       *regexp.Regexp
	description string
}{
	{regexp.MustCompile(`(?i)\blimitations?\b`), "Limited by assumptions or constraints"},
	{regexp.MustCompile(`(?i)\bfuture work\b`), "Potential for extension"},
	{regexp.MustCompile(`(?i)\bopen problem\b`), "Open research problem"},
	{regexp.MustCompile(`(?i)\bchallenge\b`), "Ongoing challenges in the field"},
}

// defaultGap is reported when no gap indicator matched.
const defaultGap = "General advancement in the field"

// trendKeywords maps a trend label to the words counted for it. Declaration
// order breaks ties when two trends score equally.
var trendKeywords = []struct {
	label string
	words []string
}{
	{"deep learning", []string{"neural", "deep", "network"}},
	{"transformers", []string{"transformer", "attention", "bert", "gpt"}},
	{"generative AI", []string{"generation", "gan", "diffusion"}},
	{"reinforcement", []string{"reinforcement", "policy", "agent"}},
}

// trendYearSpan is the corpus year spread that signals a long-running topic.
const trendYearSpan = 3

// TargetSummary describes the paper under comparison.
type TargetSummary struct {
	Title    string   `json:"title"`
	Year     int      `json:"year,omitempty"`
	Keywords []string `json:"keywords"`
}

// LiteratureSummary aggregates the corpus the target is compared against.
type LiteratureSummary struct {
	TotalPapers int     `json:"total_papers"`
	MinYear     int     `json:"min_year,omitempty"`
	MaxYear     int     `json:"max_year,omitempty"`
	AvgYear     float64 `json:"avg_year,omitempty"`
}

// NoveltyAnalysis reports how much of the target's vocabulary is absent from
// the corpus.
type NoveltyAnalysis struct {
	UniqueKeywords []string `json:"unique_keywords"`
	OverlapCount   int      `json:"overlap_count"`
	Assessment     string   `json:"novelty_assessment"`
}

// MethodologyComparison contrasts recognized techniques.
type MethodologyComparison struct {
	TargetMethods     []string `json:"target_methods"`
	LiteratureMethods []string `json:"literature_methods"`
	Comparison        string   `json:"comparison"`
}

// Comparison is the full analysis result.
type Comparison struct {
	TargetPaper  TargetSummary         `json:"target_paper"`
	Literature   LiteratureSummary     `json:"literature_summary"`
	Novelty      NoveltyAnalysis       `json:"novelty_analysis"`
	Methodology  MethodologyComparison `json:"methodology_comparison"`
	ResearchGaps []string              `json:"research_gaps"`
	Trends       []string              `json:"trends"`
}

// Comparator compares a target paper against a corpus. Stateless and safe
// for concurrent use.
type Comparator struct{}

// NewComparator creates a comparator.
func NewComparator() *Comparator {
	return &Comparator{}
}

// Compare analyzes target against the core and related buckets of corpus.
// Background papers are intentionally left out: they are recency samples,
// not relevance-ranked peers.
func (c *Comparator) Compare(target domain.PaperContext, corpus domain.Corpus) Comparison {
	ranked := corpus.AllRanked()
	targetKeywords := extractKeywords(target.Text())
	targetYear := 0 // the target is unpublished; corpus years drive trends

	return Comparison{
		TargetPaper: TargetSummary{
			Title:    target.Title,
			Year:     targetYear,
			Keywords: head(targetKeywords, noveltyWindow),
		},
		Literature:   summarize(ranked),
		Novelty:      analyzeNovelty(targetKeywords, ranked),
		Methodology:  compareMethodology(target.Text(), corpus.Core),
		ResearchGaps: identifyGaps(target.Text()),
		Trends:       identifyTrends(ranked),
	}
}

// extractKeywords builds a frequency-ranked keyword profile of one text:
// lower-case words longer than four characters minus stop-words, ties broken
// by first occurrence, capped at maxKeywords.
func extractKeywords(text string) []string {
	words := keywordRegex.FindAllString(strings.ToLower(text), -1)

	counts := make(map[string]int, len(words))
	firstSeen := make(map[string]int, len(words))
	order := make([]string, 0, len(words))

	for i, w := range words {
		if len(w) < minKeywordLength {
			continue
		}
		if _, stop := keywordStopWords[w]; stop {
			continue
		}
		if _, ok := counts[w]; !ok {
			firstSeen[w] = i
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	return head(order, maxKeywords)
}

func summarize(papers []domain.PaperRecord) LiteratureSummary {
	summary := LiteratureSummary{TotalPapers: len(papers)}

	var years []int
	for i := range papers {
		if y := papers[i].PublishedYear(); y > 0 {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return summary
	}

	sum := 0
	summary.MinYear = years[0]
	summary.MaxYear = years[0]
	for _, y := range years {
		sum += y
		if y < summary.MinYear {
			summary.MinYear = y
		}
		if y > summary.MaxYear {
			summary.MaxYear = y
		}
	}
	summary.AvgYear = float64(sum) / float64(len(years))
	return summary
}

// analyzeNovelty counts which of the target's top keywords appear in no
// corpus paper's top keywords.
func analyzeNovelty(targetKeywords []string, papers []domain.PaperRecord) NoveltyAnalysis {
	corpusKeywords := make(map[string]struct{})
	for i := range papers {
		profile := extractKeywords(papers[i].Title + " " + papers[i].Abstract)
		for _, kw := range head(profile, noveltyWindow) {
			corpusKeywords[kw] = struct{}{}
		}
	}

	unique := make([]string, 0, noveltyWindow)
	for _, kw := range head(targetKeywords, noveltyWindow) {
		if _, known := corpusKeywords[kw]; !known {
			unique = append(unique, kw)
		}
	}

	assessment := VerdictIncremental
	switch {
	case len(unique) > 5:
		assessment = VerdictHighlyNovel
	case len(unique) > 2:
		assessment = VerdictModeratelyNovel
	}

	return NoveltyAnalysis{
		UniqueKeywords: unique,
		OverlapCount:   len(targetKeywords) - len(unique),
		Assessment:     assessment,
	}
}

func compareMethodology(targetText string, core []domain.PaperRecord) MethodologyComparison {
	targetMethods := identifyMethods(targetText)

	seen := make(map[string]struct{})
	var literatureMethods []string
	literatureTotal := 0
	for i := range core {
		methods := identifyMethods(core[i].Title + " " + core[i].Abstract)
		literatureTotal += len(methods)
		for _, m := range methods {
			if _, dup := seen[m]; !dup {
				seen[m] = struct{}{}
				literatureMethods = append(literatureMethods, m)
			}
		}
	}

	verdict := "comparable methods"
	if len(targetMethods) > literatureTotal {
		verdict = "novel methods"
	}

	return MethodologyComparison{
		TargetMethods:     targetMethods,
		LiteratureMethods: head(literatureMethods, 10),
		Comparison:        verdict,
	}
}

// identifyMethods returns matched technique labels in pattern declaration
// order.
func identifyMethods(text string) []string {
	var methods []string
	for _, mp := range methodPatterns {
		if mp.regex.MatchString(text) {
			methods = append(methods, mp.label)
		}
	}
	return methods
}

func identifyGaps(targetText string) []string {
	var gaps []string
	for _, gi := range gapIndicators {
		if gi.regex.MatchString(targetText) {
			gaps = append(gaps, gi.description)
		}
	}
	if len(gaps) == 0 {
		gaps = []string{defaultGap}
	}
	return gaps
}

func identifyTrends(papers []domain.PaperRecord) []string {
	var trends []string

	yearSet := make(map[int]struct{})
	minYear, maxYear := 0, 0
	for i := range papers {
		y := papers[i].PublishedYear()
		if y == 0 {
			continue
		}
		yearSet[y] = struct{}{}
		if minYear == 0 || y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	if len(yearSet) > 1 && maxYear-minYear >= trendYearSpan {
		trends = append(trends, "Long-term research trajectory")
		trends = append(trends, "Growing interest in recent years")
	}

	counts := make(map[string]int)
	for i := range papers {
		text := strings.ToLower(papers[i].Title + " " + papers[i].Abstract)
		for _, tk := range trendKeywords {
			for _, word := range tk.words {
				if strings.Contains(text, word) {
					counts[tk.label]++
				}
			}
		}
	}
	if len(counts) > 0 {
		best := ""
		bestCount := 0
		for _, tk := range trendKeywords {
			if counts[tk.label] > bestCount {
				best = tk.label
				bestCount = counts[tk.label]
			}
		}
		trends = append(trends, fmt.Sprintf("Main trend: %s", best))
	}

	return trends
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
