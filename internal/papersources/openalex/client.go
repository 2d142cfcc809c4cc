package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/literature-search-service/internal/domain"
	"github.com/helixir/literature-search-service/internal/papersources"
)

const (
	// DefaultBaseURL is the OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit keeps one request per second, matching the polite
	// pool expectations without an API key.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default page size. The API caps per_page
	// for unauthenticated filter queries, so requests never ask for more
	// than MaxPerPage.
	DefaultMaxResults = 20

	// MaxPerPage is the largest page size requested from the API.
	MaxPerPage = 50

	doiPrefix        = "https://doi.org/"
	openAlexIDPrefix = "https://openalex.org/"

	sourceName = "OpenAlex"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	BaseURL string

	// Email is the contact address for the polite pool; it is sent as the
	// mailto query parameter and grants higher rate limits.
	Email string

	Timeout    time.Duration
	RateLimit  float64
	BurstSize  int
	MaxResults int
	Enabled    bool
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client queries the OpenAlex works endpoint.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates an OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := "Helixir-LiteratureSearch/1.0"
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	return &Client{
		config: cfg,
		httpClient: papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
			UserAgent: userAgent,
		}),
	}
}

// NewWithHTTPClient creates an OpenAlex client with a custom HTTP client.
// Useful for testing against mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// Search queries OpenAlex for works matching params. The query text is folded
// into title.search and abstract.search filter clauses, year bounds become
// publication_year range clauses, and categories become an OR-group over
// concept display names. Results are sorted by the API's relevance score.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w: %v", domain.ErrMalformedResponse, err)
	}

	papers := make([]domain.PaperRecord, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		if p, ok := workToRecord(&searchResp.Results[i], params.Query); ok {
			papers = append(papers, p)
		}
	}

	return &papersources.SearchResult{
		Papers:       papers,
		TotalResults: searchResp.Meta.Count,
		Source:       domain.SourceTypeOpenAlex,
		Duration:     time.Since(startTime),
	}, nil
}

// GetByID retrieves one work by OpenAlex ID or DOI. The returned record
// carries a fixed relevance score of 1.0.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.PaperRecord, error) {
	fetchURL, err := c.buildGetByIDURL(id)
	if err != nil {
		return nil, fmt.Errorf("building fetch URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError("paper", id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var work Work
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&work); err != nil {
		return nil, fmt.Errorf("decoding response: %w: %v", domain.ErrMalformedResponse, err)
	}

	record, ok := workToRecord(&work, "")
	if !ok {
		return nil, domain.NewNotFoundError("paper", id)
	}
	record.RelevanceScore = 1.0
	return &record, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeOpenAlex
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled reports whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the works URL with the comma-joined filter
// expression.
func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = "/works"

	filters := []string{
		"title.search:" + params.Query,
		"abstract.search:" + params.Query,
	}
	if params.FromYear > 0 {
		filters = append(filters, fmt.Sprintf("publication_year:>%d", params.FromYear-1))
	}
	if params.ToYear > 0 {
		filters = append(filters, fmt.Sprintf("publication_year:<%d", params.ToYear+1))
	}
	if len(params.Categories) > 0 {
		clauses := make([]string, len(params.Categories))
		for i, cat := range params.Categories {
			clauses[i] = "concepts.display_name:" + cat
		}
		filters = append(filters, "("+strings.Join(clauses, " OR ")+")")
	}

	perPage := params.MaxResults
	if perPage == 0 {
		perPage = c.config.MaxResults
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	query := url.Values{}
	query.Set("filter", strings.Join(filters, ","))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("sort", "relevance_score:desc")
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// buildGetByIDURL constructs the single-work URL. OpenAlex accepts short IDs,
// full OpenAlex URLs and DOIs in several spellings.
func (c *Client) buildGetByIDURL(id string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	var workID string
	switch {
	case strings.HasPrefix(id, openAlexIDPrefix):
		workID = strings.TrimPrefix(id, openAlexIDPrefix)
	case strings.HasPrefix(id, doiPrefix):
		workID = id
	case strings.HasPrefix(id, "10."):
		workID = doiPrefix + id
	case strings.HasPrefix(id, "doi:"):
		workID = doiPrefix + strings.TrimPrefix(id, "doi:")
	default:
		workID = id
	}

	// The DOI goes into the path as-is; OpenAlex decodes it server-side.
	baseURL.Path = "/works/" + workID

	if c.config.Email != "" {
		query := url.Values{}
		query.Set("mailto", c.config.Email)
		baseURL.RawQuery = query.Encode()
	}

	return baseURL.String(), nil
}

// workToRecord converts one work to a normalized record. The record ID is the
// bare DOI when present, otherwise the short OpenAlex ID; works with neither
// are skipped so deduplication never sees an empty identifier.
func workToRecord(work *Work, sourceQuery string) (domain.PaperRecord, bool) {
	doi := normalizeDOI(work.DOI)
	if doi == "" {
		doi = normalizeDOI(work.IDs.DOI)
	}

	id := doi
	if id == "" {
		id = normalizeOpenAlexID(work.ID)
	}
	if id == "" {
		id = normalizeOpenAlexID(work.IDs.OpenAlex)
	}
	if id == "" {
		return domain.PaperRecord{}, false
	}

	title := work.DisplayName
	if title == "" {
		title = work.Title
	}

	authors := make([]string, 0, len(work.Authorships))
	for _, authorship := range work.Authorships {
		if name := strings.TrimSpace(authorship.Author.DisplayName); name != "" {
			authors = append(authors, name)
		}
	}

	categories := make([]string, 0, len(work.Concepts))
	for _, concept := range work.Concepts {
		if concept.DisplayName != "" {
			categories = append(categories, concept.DisplayName)
		}
	}

	var pubDate *time.Time
	if work.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", work.PublicationDate); err == nil {
			pubDate = &t
		}
	}

	var journal string
	if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
		journal = work.PrimaryLocation.Source.DisplayName
	}

	var pdfURL string
	if work.OpenAccess != nil && work.OpenAccess.OAURL != "" {
		pdfURL = work.OpenAccess.OAURL
	} else if work.PrimaryLocation != nil && work.PrimaryLocation.PDFURL != "" {
		pdfURL = work.PrimaryLocation.PDFURL
	}

	return domain.PaperRecord{
		ID:            id,
		Title:         title,
		Abstract:      reconstructAbstract(work.AbstractInvertedIndex),
		Authors:       authors,
		Categories:    categories,
		PublishedDate: pubDate,
		PDFURL:        pdfURL,
		DOI:           doi,
		JournalRef:    journal,
		CitedByCount:  work.CitedByCount,
		SourceQuery:   sourceQuery,
		Source:        domain.SourceTypeOpenAlex,
	}, true
}

// normalizeDOI strips URL and scheme prefixes and lowercases the DOI.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, doiPrefix)
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// normalizeOpenAlexID extracts the short ID from a full OpenAlex URL.
func normalizeOpenAlexID(id string) string {
	return strings.TrimSpace(strings.TrimPrefix(id, openAlexIDPrefix))
}

// reconstructAbstract rebuilds abstract text from the inverted index that
// maps each word to its positions.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}

	// Guard against payloads with absurd position counts.
	const maxAbstractWords = 100_000
	total := 0
	for _, positions := range invertedIndex {
		total += len(positions)
	}
	if total > maxAbstractWords {
		return ""
	}

	pairs := make([]posWord, 0, total)
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	var builder strings.Builder
	builder.Grow(total * 7)
	for i, pair := range pairs {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(pair.word)
	}
	return builder.String()
}
