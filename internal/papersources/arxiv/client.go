// Package arxiv implements the papersources.PaperSource interface against
// the arXiv Atom query API.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/literature-search-service/internal/domain"
	"github.com/helixir/literature-search-service/internal/papersources"
)

const (
	// DefaultBaseURL is the arXiv API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultRateLimit respects arXiv's request pacing guidance of one
	// request every three seconds.
	DefaultRateLimit = 0.34

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per search request.
	DefaultMaxResults = 50

	sourceName = "arXiv"
)

// arxivIDRegex extracts the bare arXiv ID from an abs URL, dropping the
// version suffix. Handles both new-style "2301.12345v1" and old-style
// "hep-th/9901001v1" identifiers.
var arxivIDRegex = regexp.MustCompile(`arxiv\.org/abs/(.+?)(?:v\d+)?$`)

// Config holds configuration for the arXiv client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	BurstSize  int
	MaxResults int
	MaxRetries int
	RetryDelay time.Duration
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
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2 * time.Second
	}
}

// Client queries the arXiv Atom API.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates an arXiv client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		config: cfg,
		httpClient: papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:    cfg.Timeout,
			RateLimit:  cfg.RateLimit,
			BurstSize:  cfg.BurstSize,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}),
	}
}

// NewWithHTTPClient creates an arXiv client with a custom HTTP client.
// Useful for testing against mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// Search queries arXiv for papers matching params. Transient failures are
// retried by the HTTP client; when the retry budget runs out the error is
// reported as a domain.SourceUnavailableError so the aggregator can degrade
// to partial results.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	feed, err := c.fetchFeed(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	papers := make([]domain.PaperRecord, 0, len(feed.Entries))
	for i := range feed.Entries {
		if p, ok := c.entryToRecord(&feed.Entries[i], params.Query, params.Field); ok {
			papers = append(papers, p)
		}
	}

	return &papersources.SearchResult{
		Papers:       papers,
		TotalResults: feed.TotalResults,
		Source:       domain.SourceTypeArXiv,
		Duration:     time.Since(startTime),
	}, nil
}

// GetByID retrieves one paper by its arXiv ID via the id_list parameter.
// The returned record carries a fixed relevance score of 1.0, since the
// caller asked for this exact paper.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.PaperRecord, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/query"

	query := url.Values{}
	query.Set("id_list", id)
	baseURL.RawQuery = query.Encode()

	feed, err := c.fetchFeed(ctx, baseURL.String())
	if err != nil {
		return nil, err
	}

	if len(feed.Entries) == 0 {
		return nil, domain.NewNotFoundError("paper", id)
	}
	record, ok := c.entryToRecord(&feed.Entries[0], "", "")
	if !ok {
		return nil, domain.NewNotFoundError("paper", id)
	}
	record.RelevanceScore = 1.0
	return &record, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeArXiv
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled reports whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// fetchFeed performs a GET and decodes the Atom response. The body is capped
// at 10MB.
func (c *Client) fetchFeed(ctx context.Context, rawURL string) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, papersources.ErrRetriesExhausted) {
			var retryErr *papersources.RetryError
			attempts := c.config.MaxRetries + 1
			if errors.As(err, &retryErr) {
				attempts = retryErr.Attempts
			}
			return nil, domain.NewSourceUnavailableError(sourceName, attempts, err)
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var feed Feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding response: %w: %v", domain.ErrMalformedResponse, err)
	}
	return &feed, nil
}

// buildSearchURL constructs the arXiv query URL. The boolean expression is
// prefixed with the field selector, a submittedDate range clause is appended
// when a year lower bound is set, and invalid sort criteria silently fall
// back to relevance.
func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/query"

	field := "all"
	if params.Field == "title" {
		field = "ti"
	}
	searchQuery := field + ":" + params.Query

	if filter := dateFilter(params.FromYear, params.ToYear); filter != "" {
		searchQuery += " AND " + filter
	}

	maxResults := params.MaxResults
	if maxResults == 0 {
		maxResults = c.config.MaxResults
	}

	sortBy := params.SortBy
	if !papersources.ValidSortBy(sortBy) {
		sortBy = papersources.SortRelevance
	}

	query := url.Values{}
	query.Set("search_query", searchQuery)
	query.Set("max_results", strconv.Itoa(maxResults))
	query.Set("sortBy", sortBy)
	query.Set("sortOrder", "descending")

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// dateFilter builds the submittedDate range clause in arXiv's YYYYMMDDHHMM
// form. Unbounded ends use "*".
func dateFilter(fromYear, toYear int) string {
	if fromYear == 0 && toYear == 0 {
		return ""
	}
	fromStr := "*"
	if fromYear > 0 {
		fromStr = fmt.Sprintf("%d01010000", fromYear)
	}
	toStr := "*"
	if toYear > 0 {
		toStr = fmt.Sprintf("%d12312359", toYear)
	}
	return fmt.Sprintf("submittedDate:[%s TO %s]", fromStr, toStr)
}

// entryToRecord converts one Atom entry to a normalized record. Entries
// without a parseable arXiv ID are skipped.
func (c *Client) entryToRecord(entry *Entry, sourceQuery, sourceField string) (domain.PaperRecord, bool) {
	arxivID := extractArXivID(entry.ID)
	if arxivID == "" {
		return domain.PaperRecord{}, false
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	// Only taxonomy terms count as categories; the feed reuses the category
	// element for ACM and MSC classifications under other schemes.
	categories := make([]string, 0, len(entry.Categories))
	for _, cat := range entry.Categories {
		if cat.Term != "" && strings.Contains(cat.Scheme, "arxiv.org") {
			categories = append(categories, cat.Term)
		}
	}

	pdfURL := ""
	for _, link := range entry.Links {
		if link.Title == "pdf" || link.Type == "application/pdf" {
			pdfURL = link.Href
			break
		}
	}
	if pdfURL == "" {
		pdfURL = "http://arxiv.org/pdf/" + arxivID
	}

	return domain.PaperRecord{
		ID:            arxivID,
		Title:         normalizeWhitespace(entry.Title),
		Abstract:      normalizeWhitespace(entry.Summary),
		Authors:       authors,
		Categories:    categories,
		PublishedDate: parseAtomTime(entry.Published),
		UpdatedDate:   parseAtomTime(entry.Updated),
		PDFURL:        pdfURL,
		DOI:           strings.TrimSpace(entry.DOI),
		JournalRef:    strings.TrimSpace(entry.JournalRef),
		Comment:       strings.TrimSpace(entry.Comment),
		SourceQuery:   sourceQuery,
		SourceField:   sourceField,
		Source:        domain.SourceTypeArXiv,
	}, true
}

func parseAtomTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// extractArXivID extracts the bare ID from an abs URL:
// "http://arxiv.org/abs/2301.12345v1" becomes "2301.12345".
func extractArXivID(entryURL string) string {
	matches := arxivIDRegex.FindStringSubmatch(entryURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// normalizeWhitespace trims and collapses runs of whitespace, including the
// hard-wrapped newlines arXiv embeds in titles and abstracts.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
