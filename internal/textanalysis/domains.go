package textanalysis

import (
	"regexp"
	"sort"
	"strings"
)

// GeneralDomain is the fallback domain when no pattern set matches.
const GeneralDomain = "general"

// WildcardCategory accepts every arXiv category; used with GeneralDomain.
const WildcardCategory = "cs.*"

// DomainRule scores one research domain via a fixed regex pattern set.
// Rules are an ordered slice rather than a map so that equal scores break
// ties by declaration order, keeping classification deterministic.
type DomainRule struct {
	Domain   string
	Patterns []*regexp.Regexp
}

// DomainProfile is the result of classifying one text blob.
type DomainProfile struct {
	// Primary is the highest-scoring domain, or "general" when nothing matched.
	Primary string

	// Score is the number of distinct patterns that matched for Primary.
	Score int

	// Secondary lists every other domain with a positive score, ordered by
	// descending score then declaration order.
	Secondary []string

	// Categories is the arXiv category filter associated with Primary.
	Categories []string
}

// Classifier scores text against domain pattern sets and maps the winning
// domain to its category filter.
type Classifier struct {
	rules      []DomainRule
	categories map[string][]string
}

// NewClassifier creates a classifier. Nil arguments select the package
// defaults mirroring the built-in dictionaries.
func NewClassifier(rules []DomainRule, categories map[string][]string) *Classifier {
	if rules == nil {
		rules = DefaultDomainRules()
	}
	if categories == nil {
		categories = DefaultDomainCategories
	}
	return &Classifier{rules: rules, categories: categories}
}

// Classify scores text against every rule. A domain's score is the number of
// distinct patterns that match, not the number of occurrences. Texts that
// match nothing classify as "general" with a wildcard category filter.
func (c *Classifier) Classify(text string) DomainProfile {
	text = strings.ToLower(text)

	type scored struct {
		domain string
		score  int
		index  int
	}

	var hits []scored
	for i, rule := range c.rules {
		score := 0
		for _, pat := range rule.Patterns {
			if pat.MatchString(text) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{domain: rule.Domain, score: score, index: i})
		}
	}

	if len(hits) == 0 {
		return DomainProfile{
			Primary:    GeneralDomain,
			Categories: []string{WildcardCategory},
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].index < hits[j].index
	})

	primary := hits[0]
	secondary := make([]string, 0, len(hits)-1)
	for _, h := range hits[1:] {
		secondary = append(secondary, h.domain)
	}

	cats := c.categories[primary.domain]
	if len(cats) == 0 {
		cats = []string{WildcardCategory}
	}

	return DomainProfile{
		Primary:    primary.domain,
		Score:      primary.score,
		Secondary:  secondary,
		Categories: cats,
	}
}

// DefaultDomainRules returns the built-in domain pattern table. A fresh slice
// is returned on each call so callers can safely reorder or extend it.
func DefaultDomainRules() []DomainRule {
	compile := func(patterns ...string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(patterns))
		for i, p := range patterns {
			out[i] = regexp.MustCompile(p)
		}
		return out
	}

	return []DomainRule{
		{Domain: "software_engineering", Patterns: compile(
			`software\s+engineer`, `code\s+generation`, `software\s+development`,
			`software\s+architecture`, `software\s+testing`,
		)},
		{Domain: "embedded_systems", Patterns: compile(
			`embedded\s+system`, `real-time`, `cyber-physical`,
			`safety-critical`, `hardware`,
		)},
		{Domain: "formal_methods", Patterns: compile(
			`formal\s+verification`, `model\s+checking`, `theorem\s+proving`,
			`formal\s+specification`, `temporal\s+logic`,
		)},
		{Domain: "mbse", Patterns: compile(
			`model-based`, `model\s+driven`, `sysml`, `uml`,
			`architecture\s+description`, `aadl`,
		)},
		{Domain: "ai_ml", Patterns: compile(
			`machine\s+learning`, `deep\s+learning`, `neural\s+network`,
			`large\s+language\s+model`, `transformer`, `multi-agent`,
			`reinforcement\s+learn`,
		)},
		{Domain: "systems", Patterns: compile(
			`distributed\s+system`, `system\s+architecture`, `system\s+design`,
		)},
	}
}

// DefaultDomainCategories maps each domain to its arXiv category filter.
var DefaultDomainCategories = map[string][]string{
	"software_engineering":  {"cs.SE", "cs.PL"},
	"embedded_systems":      {"cs.OS", "cs.DC", "cs.SE"},
	"formal_methods":        {"cs.LO", "cs.SE", "cs.FL"},
	"programming_languages": {"cs.PL", "cs.SE"},
	"systems":               {"cs.OS", "cs.DC", "cs.NI"},
	"ai_ml":                 {"cs.AI", "cs.LG", "stat.ML"},
	"mbse":                  {"cs.SE", "cs.PL"},
}
