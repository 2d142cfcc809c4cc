package openalex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/literature-search-service/internal/domain"
	"github.com/helixir/literature-search-service/internal/papersources"
)

const sampleResponse = `{
  "meta": {"count": 2, "per_page": 50},
  "results": [
    {
      "id": "https://openalex.org/W2001",
      "doi": "https://doi.org/10.1000/ABC.123",
      "display_name": "Neural Code Generation",
      "publication_year": 2022,
      "publication_date": "2022-06-15",
      "cited_by_count": 250,
      "authorships": [
        {"author": {"display_name": "Grace Hopper"}},
        {"author": {"display_name": ""}}
      ],
      "concepts": [
        {"display_name": "Computer science"},
        {"display_name": "Software engineering"}
      ],
      "abstract_inverted_index": {
        "generate": [2],
        "We": [0],
        "code.": [3],
        "automatically": [1]
      }
    },
    {
      "id": "https://openalex.org/W2002",
      "display_name": "Untitled Work Without DOI",
      "publication_year": 2021
    },
    {
      "display_name": "No Identifiers At All"
    }
  ]
}`

func newTestClient(t *testing.T, baseURL, email string) *Client {
	t.Helper()
	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:    5 * time.Second,
		RateLimit:  100,
		BurstSize:  10,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	return NewWithHTTPClient(Config{BaseURL: baseURL, Email: email, Enabled: true}, httpClient)
}

func TestClient_Search(t *testing.T) {
	t.Run("builds the filter expression", func(t *testing.T) {
		var gotQuery url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(sampleResponse))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL, "team@example.org")
		_, err := client.Search(context.Background(), papersources.SearchParams{
			Query:      "code generation",
			FromYear:   2020,
			ToYear:     2023,
			Categories: []string{"Software engineering", "Machine learning"},
			MaxResults: 10,
		})

		require.NoError(t, err)
		want := "title.search:code generation," +
			"abstract.search:code generation," +
			"publication_year:>2019," +
			"publication_year:<2024," +
			"(concepts.display_name:Software engineering OR concepts.display_name:Machine learning)"
		assert.Equal(t, want, gotQuery.Get("filter"))
		assert.Equal(t, "10", gotQuery.Get("per_page"))
		assert.Equal(t, "relevance_score:desc", gotQuery.Get("sort"))
		assert.Equal(t, "team@example.org", gotQuery.Get("mailto"))
	})

	t.Run("caps per_page at fifty", func(t *testing.T) {
		var gotQuery url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(sampleResponse))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL, "")
		_, err := client.Search(context.Background(), papersources.SearchParams{
			Query:      "anything",
			MaxResults: 200,
		})

		require.NoError(t, err)
		assert.Equal(t, "50", gotQuery.Get("per_page"))
	})

	t.Run("normalizes works into records", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleResponse))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL, "")
		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "code"})

		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalResults)
		assert.Equal(t, domain.SourceTypeOpenAlex, result.Source)

		// The work with no DOI and no OpenAlex ID is skipped.
		require.Len(t, result.Papers, 2)

		first := result.Papers[0]
		assert.Equal(t, "10.1000/abc.123", first.ID, "bare lowercased DOI wins as identity")
		assert.Equal(t, "10.1000/abc.123", first.DOI)
		assert.Equal(t, "Neural Code Generation", first.Title)
		assert.Equal(t, "We automatically generate code.", first.Abstract)
		assert.Equal(t, []string{"Grace Hopper"}, first.Authors)
		assert.Equal(t, []string{"Computer science", "Software engineering"}, first.Categories)
		assert.Equal(t, 250, first.CitedByCount)
		require.NotNil(t, first.PublishedDate)
		assert.Equal(t, 2022, first.PublishedDate.Year())

		second := result.Papers[1]
		assert.Equal(t, "W2002", second.ID, "short OpenAlex ID when no DOI")
		assert.Empty(t, second.DOI)
	})

	t.Run("API errors carry the status code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL, "")
		_, err := client.Search(context.Background(), papersources.SearchParams{Query: "anything"})

		require.Error(t, err)
		var apiErr *domain.ExternalAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})
}

func TestClient_GetByID(t *testing.T) {
	singleWork := `{
	  "id": "https://openalex.org/W2001",
	  "doi": "https://doi.org/10.1000/abc.123",
	  "display_name": "Neural Code Generation"
	}`

	t.Run("returns the work with a fixed score of one", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(singleWork))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL, "")
		paper, err := client.GetByID(context.Background(), "W2001")

		require.NoError(t, err)
		assert.Equal(t, "/works/W2001", gotPath)
		assert.Equal(t, "10.1000/abc.123", paper.ID)
		assert.Equal(t, 1.0, paper.RelevanceScore)
	})

	t.Run("bare DOI is expanded into a DOI URL path", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(singleWork))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL, "")
		_, err := client.GetByID(context.Background(), "10.1000/abc.123")

		require.NoError(t, err)
		assert.Equal(t, "/works/https://doi.org/10.1000/abc.123", gotPath)
	})

	t.Run("missing work means not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL, "")
		_, err := client.GetByID(context.Background(), "W0000")

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://doi.org/10.1000/ABC", "10.1000/abc"},
		{"http://doi.org/10.1000/abc", "10.1000/abc"},
		{"doi:10.1000/abc", "10.1000/abc"},
		{" 10.1000/Abc ", "10.1000/abc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDOI(tt.in))
	}
}

func TestReconstructAbstract(t *testing.T) {
	t.Run("orders words by position", func(t *testing.T) {
		idx := map[string][]int{
			"the": {0, 3},
			"cat": {1},
			"sat": {2},
			"mat": {4},
		}
		assert.Equal(t, "the cat sat the mat", reconstructAbstract(idx))
	})

	t.Run("empty index yields empty string", func(t *testing.T) {
		assert.Empty(t, reconstructAbstract(nil))
		assert.Empty(t, reconstructAbstract(map[string][]int{}))
	})
}
