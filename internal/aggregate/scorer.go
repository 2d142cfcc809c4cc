package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/helixir/literature-search-service/internal/domain"
	"github.com/helixir/literature-search-service/internal/textanalysis"
)

// relevantCSCategories earn a preprint record the category boost.
var relevantCSCategories = map[string]struct{}{
	"cs.SE": {}, "cs.PL": {}, "cs.OS": {}, "cs.DC": {}, "cs.NI": {},
	"cs.LO": {}, "cs.FL": {}, "cs.AI": {}, "cs.LG": {}, "cs.RO": {},
	"cs.AR": {}, "cs.CV": {}, "cs.CL": {}, "cs.HC": {},
	"stat.ML": {}, "math.OC": {},
}

// Scoring weights. The two sources use different formulas on purpose: the
// preprint source has archive categories and fresh submissions to reward,
// the scholarly graph has citation counts.
const (
	arxivTitleWeight    = 0.3
	arxivAbstractWeight = 0.1
	arxivCategoryBoost  = 0.3
	arxivRecencyBoost   = 0.1

	openalexTitleWeight    = 0.25
	openalexAbstractWeight = 0.1
	openalexCitationBoost  = 0.1

	// recencyYear is the publication-year threshold for the recency boost.
	recencyYear = 2022

	// citationThreshold is the cited-by count above which the citation
	// boost applies.
	citationThreshold = 100

	// neutralScore is assigned when the query yields no scoreable terms.
	neutralScore = 0.5
)

// Scorer computes relevance scores against the terms of one original query.
// Scores are always in [0, 1], rounded to three decimals, and assigned
// rather than accumulated, so re-scoring a record is idempotent.
type Scorer struct {
	terms []string
}

// NewScorer creates a scorer for the given original query text.
func NewScorer(originalQuery string) *Scorer {
	return &Scorer{terms: textanalysis.QueryTerms(originalQuery)}
}

// ScorePreprint scores a record from the preprint source: weighted term hits
// in title and abstract, plus a flat boost for relevant CS categories and
// another for recent publication.
func (s *Scorer) ScorePreprint(p *domain.PaperRecord) float64 {
	if len(s.terms) == 0 {
		return neutralScore
	}

	titleHits, abstractHits := s.countHits(p)
	score := float64(titleHits)*arxivTitleWeight + float64(abstractHits)*arxivAbstractWeight

	for _, cat := range p.Categories {
		if _, ok := relevantCSCategories[cat]; ok {
			score += arxivCategoryBoost
			break
		}
	}
	if p.PublishedYear() >= recencyYear {
		score += arxivRecencyBoost
	}

	return round3(clamp01(score))
}

// ScoreScholarly scores a record from the scholarly graph source: weighted
// term hits capped at 1.0, plus a citation boost for highly cited works.
func (s *Scorer) ScoreScholarly(p *domain.PaperRecord) float64 {
	if len(s.terms) == 0 {
		return neutralScore
	}

	titleHits, abstractHits := s.countHits(p)
	score := clamp01(float64(titleHits)*openalexTitleWeight + float64(abstractHits)*openalexAbstractWeight)

	if p.CitedByCount > citationThreshold {
		score += openalexCitationBoost
	}

	return round3(clamp01(score))
}

func (s *Scorer) countHits(p *domain.PaperRecord) (titleHits, abstractHits int) {
	title := strings.ToLower(p.Title)
	abstract := strings.ToLower(p.Abstract)
	for _, term := range s.terms {
		if strings.Contains(title, term) {
			titleHits++
		}
		if strings.Contains(abstract, term) {
			abstractHits++
		}
	}
	return titleHits, abstractHits
}

// Rank sorts papers by descending relevance score. The sort is stable so that
// equal scores preserve fetch order and repeated runs agree.
func Rank(papers []domain.PaperRecord) {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].RelevanceScore > papers[j].RelevanceScore
	})
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
