package httpserver

import (
	"github.com/helixir/literature-search-service/internal/aggregate"
	"github.com/helixir/literature-search-service/internal/domain"
)

// searchResponse is the JSON body returned by POST /api/v1/search.
type searchResponse struct {
	RunID         string               `json:"run_id"`
	Query         string               `json:"query"`
	Domain        string               `json:"domain,omitempty"`
	Categories    []string             `json:"categories,omitempty"`
	Core          []domain.PaperRecord `json:"core"`
	Related       []domain.PaperRecord `json:"related"`
	Background    []domain.PaperRecord `json:"background"`
	Warnings      []string             `json:"warnings,omitempty"`
	ExcludedCount int                  `json:"excluded_count"`
	FallbackUsed  bool                 `json:"fallback_used"`
	DurationMs    int64                `json:"duration_ms"`
}

func searchResultToResponse(result *aggregate.Result) searchResponse {
	resp := searchResponse{
		RunID:         result.RunID.String(),
		Query:         result.Query,
		Domain:        result.Domain.Primary,
		Categories:    result.Domain.Categories,
		Core:          emptyIfNil(result.Corpus.Core),
		Related:       emptyIfNil(result.Corpus.Related),
		Background:    emptyIfNil(result.Corpus.Background),
		Warnings:      result.Warnings,
		ExcludedCount: result.ExcludedCount,
		FallbackUsed:  result.FallbackUsed,
		DurationMs:    result.Duration.Milliseconds(),
	}
	return resp
}

// emptyIfNil keeps empty buckets as [] rather than null in JSON.
func emptyIfNil(papers []domain.PaperRecord) []domain.PaperRecord {
	if papers == nil {
		return []domain.PaperRecord{}
	}
	return papers
}
