// Package domain defines the core types shared across the literature search
// service: normalized paper records, corpus buckets, and the error taxonomy.
package domain

import (
	"strings"
	"time"
)

// SourceType represents the source API that provided paper data.
type SourceType string

// Supported paper sources.
const (
	SourceTypeArXiv    SourceType = "arxiv"
	SourceTypeOpenAlex SourceType = "openalex"
)

// IsValidSourceType reports whether st is a known source type.
func IsValidSourceType(st SourceType) bool {
	switch st {
	case SourceTypeArXiv, SourceTypeOpenAlex:
		return true
	}
	return false
}

// PaperRecord is the normalized representation of one bibliographic item
// regardless of source. ID is the dedup key: arXiv IDs for the preprint
// source, DOI-derived keys for the scholarly graph. Records are immutable
// once produced by an adapter, except for RelevanceScore which is recomputed
// (never accumulated) each time scoring runs.
type PaperRecord struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Abstract   string   `json:"abstract,omitempty"`
	Authors    []string `json:"authors,omitempty"`
	Categories []string `json:"categories,omitempty"`

	PublishedDate *time.Time `json:"published_date,omitempty"`
	UpdatedDate   *time.Time `json:"updated_date,omitempty"`

	PDFURL     string `json:"pdf_url,omitempty"`
	DOI        string `json:"doi,omitempty"`
	JournalRef string `json:"journal_ref,omitempty"`
	Comment    string `json:"comment,omitempty"`

	// CitedByCount is only populated by the scholarly graph source and
	// feeds its citation boost during scoring.
	CitedByCount int `json:"cited_by_count,omitempty"`

	RelevanceScore float64 `json:"relevance_score"`

	// SourceQuery and SourceField record which expanded query and field
	// variant produced this record. Provenance only, never identity.
	SourceQuery string     `json:"source_query,omitempty"`
	SourceField string     `json:"source_field,omitempty"`
	Source      SourceType `json:"source"`
}

// PublishedYear returns the publication year, or 0 when unknown.
func (p *PaperRecord) PublishedYear() int {
	if p.PublishedDate == nil {
		return 0
	}
	return p.PublishedDate.Year()
}

// HasCategoryPrefix reports whether any category starts with the given prefix.
func (p *PaperRecord) HasCategoryPrefix(prefix string) bool {
	for _, cat := range p.Categories {
		if strings.HasPrefix(cat, prefix) {
			return true
		}
	}
	return false
}

// Corpus holds the three relevance/recency-ordered partitions of an
// aggregation run. Bucket membership is mutually exclusive by record ID.
type Corpus struct {
	Core       []PaperRecord `json:"core"`
	Related    []PaperRecord `json:"related"`
	Background []PaperRecord `json:"background"`
}

// AllRanked returns core followed by related, the papers that participate in
// novelty and trend analysis.
func (c *Corpus) AllRanked() []PaperRecord {
	out := make([]PaperRecord, 0, len(c.Core)+len(c.Related))
	out = append(out, c.Core...)
	out = append(out, c.Related...)
	return out
}

// Size returns the total number of records across all buckets.
func (c *Corpus) Size() int {
	return len(c.Core) + len(c.Related) + len(c.Background)
}

// PaperContext carries the target document's title and abstract, used to
// derive a research domain and category filter for the search.
type PaperContext struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// Text returns the concatenated title and abstract.
func (p *PaperContext) Text() string {
	return strings.TrimSpace(p.Title + " " + p.Abstract)
}
