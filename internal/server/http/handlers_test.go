package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/literature-search-service/internal/aggregate"
	"github.com/helixir/literature-search-service/internal/compare"
	"github.com/helixir/literature-search-service/internal/domain"
	"github.com/helixir/literature-search-service/internal/observability"
	"github.com/helixir/literature-search-service/internal/papersources"
)

// Prometheus collectors register globally, so the package shares one instance.
var testMetrics = observability.NewMetrics("httpserver_test")

// stubAggregator scripts the aggregation outcome per test.
type stubAggregator struct {
	gotRequest aggregate.Request
	result     *aggregate.Result
	err        error
}

func (s *stubAggregator) SearchLiterature(_ context.Context, req aggregate.Request) (*aggregate.Result, error) {
	s.gotRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// stubSource scripts paper lookups.
type stubSource struct {
	sourceType domain.SourceType
	enabled    bool
	paper      *domain.PaperRecord
	err        error
}

func (s *stubSource) Search(context.Context, papersources.SearchParams) (*papersources.SearchResult, error) {
	return &papersources.SearchResult{Source: s.sourceType}, nil
}

func (s *stubSource) GetByID(context.Context, string) (*domain.PaperRecord, error) {
	return s.paper, s.err
}

func (s *stubSource) SourceType() domain.SourceType { return s.sourceType }
func (s *stubSource) Name() string                  { return string(s.sourceType) }
func (s *stubSource) IsEnabled() bool               { return s.enabled }

func newTestServer(agg Aggregator, sources ...papersources.PaperSource) *Server {
	return NewServer(Config{}, agg, compare.NewComparator(), papersources.NewRegistry(sources...), zerolog.Nop(), testMetrics)
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("returns the aggregation result", func(t *testing.T) {
		agg := &stubAggregator{result: &aggregate.Result{
			RunID: uuid.New(),
			Query: "code generation",
			Corpus: domain.Corpus{
				Core: []domain.PaperRecord{{ID: "p1", Title: "one"}},
			},
			ExcludedCount: 2,
			FallbackUsed:  true,
		}}
		srv := newTestServer(agg)

		rec := postJSON(t, srv.Handler(), "/api/v1/search", `{
			"query": "code generation",
			"paper_context": {"title": "t", "abstract": "a"},
			"core_count": 5
		}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "code generation", agg.gotRequest.Query)
		assert.Equal(t, 5, agg.gotRequest.CoreCount)
		require.NotNil(t, agg.gotRequest.Paper)
		assert.Equal(t, "t", agg.gotRequest.Paper.Title)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "code generation", resp["query"])
		assert.Equal(t, true, resp["fallback_used"])
		assert.Equal(t, float64(2), resp["excluded_count"])
	})

	t.Run("empty buckets render as arrays not null", func(t *testing.T) {
		agg := &stubAggregator{result: &aggregate.Result{RunID: uuid.New(), Query: "q33"}}
		srv := newTestServer(agg)

		rec := postJSON(t, srv.Handler(), "/api/v1/search", `{"query": "q33"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"core":[]`)
		assert.Contains(t, body, `"related":[]`)
		assert.Contains(t, body, `"background":[]`)
		assert.NotContains(t, body, `"core":null`)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		srv := newTestServer(&stubAggregator{})

		rec := postJSON(t, srv.Handler(), "/api/v1/search", `{"query": `)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid JSON")
	})

	t.Run("rejects a too-short query", func(t *testing.T) {
		srv := newTestServer(&stubAggregator{})

		rec := postJSON(t, srv.Handler(), "/api/v1/search", `{"query": "ab"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "query failed min validation")
	})

	t.Run("invalid input from the pipeline maps to 400", func(t *testing.T) {
		agg := &stubAggregator{err: domain.ErrInvalidInput}
		srv := newTestServer(agg)

		rec := postJSON(t, srv.Handler(), "/api/v1/search", `{"query": "valid query"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unexpected pipeline failures map to 500", func(t *testing.T) {
		agg := &stubAggregator{err: errors.New("boom")}
		srv := newTestServer(agg)

		rec := postJSON(t, srv.Handler(), "/api/v1/search", `{"query": "valid query"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom", "internal details stay out of responses")
	})
}

func TestCompareEndpoint(t *testing.T) {
	t.Run("compares a target against a client-supplied corpus", func(t *testing.T) {
		srv := newTestServer(&stubAggregator{})

		rec := postJSON(t, srv.Handler(), "/api/v1/compare", `{
			"target": {"title": "A transformer approach", "abstract": "We use attention."},
			"corpus": {"core": [{"id": "p1", "title": "neural network baseline"}]}
		}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp compare.Comparison
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "A transformer approach", resp.TargetPaper.Title)
		assert.Equal(t, 1, resp.Literature.TotalPapers)
		assert.Contains(t, resp.Methodology.TargetMethods, "transformer")
	})

	t.Run("rejects a target with neither title nor abstract", func(t *testing.T) {
		srv := newTestServer(&stubAggregator{})

		rec := postJSON(t, srv.Handler(), "/api/v1/compare", `{"target": {"title": "  "}}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "title or an abstract")
	})
}

func TestGetPaperEndpoint(t *testing.T) {
	get := func(srv *Server, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	t.Run("returns the paper", func(t *testing.T) {
		src := &stubSource{
			sourceType: domain.SourceTypeArXiv,
			enabled:    true,
			paper:      &domain.PaperRecord{ID: "2301.12345", Title: "found", RelevanceScore: 1.0},
		}
		srv := newTestServer(&stubAggregator{}, src)

		rec := get(srv, "/api/v1/papers/arxiv/2301.12345")

		require.Equal(t, http.StatusOK, rec.Code)
		var paper domain.PaperRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paper))
		assert.Equal(t, "2301.12345", paper.ID)
		assert.Equal(t, 1.0, paper.RelevanceScore)
	})

	t.Run("unknown source type maps to 400", func(t *testing.T) {
		srv := newTestServer(&stubAggregator{})

		rec := get(srv, "/api/v1/papers/scholar/123")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disabled source maps to 400", func(t *testing.T) {
		src := &stubSource{sourceType: domain.SourceTypeArXiv, enabled: false}
		srv := newTestServer(&stubAggregator{}, src)

		rec := get(srv, "/api/v1/papers/arxiv/123")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing paper maps to 404", func(t *testing.T) {
		src := &stubSource{
			sourceType: domain.SourceTypeArXiv,
			enabled:    true,
			err:        domain.NewNotFoundError("paper", "0000.00000"),
		}
		srv := newTestServer(&stubAggregator{}, src)

		rec := get(srv, "/api/v1/papers/arxiv/0000.00000")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("source outage maps to 503", func(t *testing.T) {
		src := &stubSource{
			sourceType: domain.SourceTypeArXiv,
			enabled:    true,
			err:        domain.NewSourceUnavailableError("arXiv", 4, errors.New("down")),
		}
		srv := newTestServer(&stubAggregator{}, src)

		rec := get(srv, "/api/v1/papers/arxiv/2301.12345")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("other source failures map to 502", func(t *testing.T) {
		src := &stubSource{
			sourceType: domain.SourceTypeArXiv,
			enabled:    true,
			err:        errors.New("parse failure"),
		}
		srv := newTestServer(&stubAggregator{}, src)

		rec := get(srv, "/api/v1/papers/arxiv/2301.12345")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("healthz is always ok", func(t *testing.T) {
		srv := newTestServer(&stubAggregator{})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ok"`)
	})

	t.Run("readyz reports enabled sources", func(t *testing.T) {
		src := &stubSource{sourceType: domain.SourceTypeArXiv, enabled: true}
		srv := newTestServer(&stubAggregator{}, src)

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"arxiv"`)
	})

	t.Run("readyz fails without enabled sources", func(t *testing.T) {
		srv := newTestServer(&stubAggregator{})

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
