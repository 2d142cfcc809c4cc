package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/helixir/literature-search-service/internal/domain"
	"github.com/helixir/literature-search-service/internal/observability"
	"github.com/helixir/literature-search-service/internal/papersources"
	"github.com/helixir/literature-search-service/internal/search"
	"github.com/helixir/literature-search-service/internal/textanalysis"
)

// Config controls corpus sizes and search behavior.
type Config struct {
	// CoreCount, RelatedCount and BackgroundCount are the default bucket
	// sizes; requests may override them.
	CoreCount       int
	RelatedCount    int
	BackgroundCount int

	// MaxParallel bounds concurrent source requests per aggregation run.
	MaxParallel int

	// MinCoreThreshold is the core size below which fallback queries run.
	MinCoreThreshold int

	// PrimaryMinResults is the floor on how many results the primary
	// search asks for, regardless of core count.
	PrimaryMinResults int

	// FallbackMaxResults is the per-query result cap during fallback.
	FallbackMaxResults int

	// SecondaryFromYear bounds the scholarly graph search.
	SecondaryFromYear int

	// BackgroundFromYear bounds the background recency search.
	BackgroundFromYear int
}

func (c *Config) applyDefaults() {
	if c.CoreCount == 0 {
		c.CoreCount = 10
	}
	if c.RelatedCount == 0 {
		c.RelatedCount = 15
	}
	if c.BackgroundCount == 0 {
		c.BackgroundCount = 10
	}
	if c.MaxParallel == 0 {
		c.MaxParallel = 4
	}
	if c.MinCoreThreshold == 0 {
		c.MinCoreThreshold = 3
	}
	if c.PrimaryMinResults == 0 {
		c.PrimaryMinResults = 50
	}
	if c.FallbackMaxResults == 0 {
		c.FallbackMaxResults = 10
	}
	if c.SecondaryFromYear == 0 {
		c.SecondaryFromYear = 2020
	}
	if c.BackgroundFromYear == 0 {
		c.BackgroundFromYear = 2018
	}
}

// fallbackCategories is the widened category filter used by fallback queries
// when no domain could be derived from the paper context.
var fallbackCategories = []string{"cs.SE", "cs.OS", "cs.PL"}

// Request is one aggregation request. Query is required; Paper optionally
// supplies the title and abstract used for domain classification and query
// expansion. Zero counts fall back to the configured defaults.
type Request struct {
	Query           string
	Paper           *domain.PaperContext
	CoreCount       int
	RelatedCount    int
	BackgroundCount int
}

// Result is the outcome of one aggregation run. Source failures never fail
// the run; they surface as warnings next to whatever was retrieved.
type Result struct {
	RunID     uuid.UUID                  `json:"run_id"`
	Query     string                     `json:"query"`
	Domain    textanalysis.DomainProfile `json:"domain"`
	Extracted textanalysis.ExtractedInfo `json:"-"`
	Corpus    domain.Corpus              `json:"corpus"`

	Warnings       []string      `json:"warnings,omitempty"`
	ExcludedCount  int           `json:"excluded_count"`
	DuplicateCount int           `json:"duplicate_count"`
	FallbackUsed   bool          `json:"fallback_used"`
	Duration       time.Duration `json:"-"`
}

// Aggregator runs the multi-source search pipeline.
type Aggregator struct {
	arxiv    papersources.PaperSource
	openalex papersources.PaperSource

	extractor  *textanalysis.Extractor
	classifier *textanalysis.Classifier
	builder    *search.Builder
	fallback   *search.FallbackGenerator
	filter     *CategoryFilter

	logger  zerolog.Logger
	metrics *observability.Metrics
	config  Config
}

// New creates an aggregator over the given sources. The scholarly graph
// source may be nil or disabled; it only supplements the core bucket.
func New(arxiv, openalex papersources.PaperSource, logger zerolog.Logger, metrics *observability.Metrics, cfg Config) *Aggregator {
	cfg.applyDefaults()
	return &Aggregator{
		arxiv:      arxiv,
		openalex:   openalex,
		extractor:  textanalysis.NewExtractor(nil, nil),
		classifier: textanalysis.NewClassifier(nil, nil),
		builder:    search.NewBuilder(),
		fallback:   search.NewFallbackGenerator(),
		filter:     NewCategoryFilter(),
		logger:     logger,
		metrics:    metrics,
		config:     cfg,
	}
}

// SearchLiterature runs the full pipeline: domain classification and keyword
// extraction from the paper context, expanded primary search, scholarly graph
// supplement, fallback queries when the core is thin, and a recency-sorted
// background search. It returns an error only for invalid input; source
// outages degrade to partial results with warnings, and cancellation returns
// whatever was gathered so far.
func (a *Aggregator) SearchLiterature(ctx context.Context, req Request) (*Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}

	coreCount := req.CoreCount
	if coreCount == 0 {
		coreCount = a.config.CoreCount
	}
	relatedCount := req.RelatedCount
	if relatedCount == 0 {
		relatedCount = a.config.RelatedCount
	}
	backgroundCount := req.BackgroundCount
	if backgroundCount == 0 {
		backgroundCount = a.config.BackgroundCount
	}

	start := time.Now()
	result := &Result{
		RunID: uuid.New(),
		Query: req.Query,
	}
	a.metrics.RecordAggregationStarted()

	logger := observability.WithSearchContext(a.logger, result.RunID.String(), req.Query)

	var info textanalysis.ExtractedInfo
	var categories []string
	if req.Paper != nil {
		text := req.Paper.Text()
		result.Domain = a.classifier.Classify(text)
		info = a.extractor.Extract(text)
		if result.Domain.Primary != textanalysis.GeneralDomain {
			categories = result.Domain.Categories
		}
		logger.Info().
			Str("domain", result.Domain.Primary).
			Strs("categories", categories).
			Int("keywords", len(info.Keywords)).
			Msg("classified paper context")
	}

	scorer := NewScorer(req.Query)

	primary, secondary := a.fanOut(ctx, req.Query, info, categories, coreCount, result)

	kept, excluded := a.filter.Apply(Deduplicate(primary))
	result.ExcludedCount = excluded
	result.DuplicateCount = len(primary) - len(kept) - excluded
	a.metrics.RecordPapersExcluded(excluded)
	a.metrics.RecordPaperDuplicates(result.DuplicateCount)

	for i := range kept {
		kept[i].RelevanceScore = scorer.ScorePreprint(&kept[i])
	}
	Rank(kept)

	core := append([]domain.PaperRecord(nil), kept[:min(coreCount, len(kept))]...)
	overflow := kept[len(core):]

	// The scholarly graph only tops up the core bucket; its overflow beyond
	// the core count is dropped rather than demoted to related.
	for i := range secondary {
		secondary[i].RelevanceScore = scorer.ScoreScholarly(&secondary[i])
	}
	Rank(secondary)
	core = mergeInto(core, secondary, coreCount)

	if len(core) < a.config.MinCoreThreshold && !info.IsEmpty() && ctx.Err() == nil {
		result.FallbackUsed = true
		a.metrics.RecordFallbackTriggered()
		core = a.runFallback(ctx, logger, scorer, info, req.Query, categories, core, coreCount, result)
	}

	result.Corpus.Core = core
	result.Corpus.Related = excludeIDs(overflow, idSet(core), relatedCount)

	if req.Paper != nil && len(categories) > 0 && ctx.Err() == nil {
		known := idSet(result.Corpus.Core)
		for id := range idSet(result.Corpus.Related) {
			known[id] = struct{}{}
		}
		result.Corpus.Background = a.searchBackground(ctx, logger, scorer, req.Query, info, known, backgroundCount, result)
	}

	if err := ctx.Err(); err != nil {
		result.Warnings = append(result.Warnings, "aggregation interrupted: "+err.Error())
	}

	result.Duration = time.Since(start)
	a.metrics.RecordAggregationCompleted(result.Duration.Seconds())
	logger.Info().
		Int("core", len(result.Corpus.Core)).
		Int("related", len(result.Corpus.Related)).
		Int("background", len(result.Corpus.Background)).
		Int("excluded", result.ExcludedCount).
		Bool("fallback", result.FallbackUsed).
		Dur("duration", result.Duration).
		Msg("aggregation finished")

	return result, nil
}

// fanOut runs the expanded primary queries against the preprint source and
// the supplementary scholarly graph search concurrently, bounded by
// MaxParallel. Results land in pre-declared slots so the merge order never
// depends on goroutine scheduling.
func (a *Aggregator) fanOut(ctx context.Context, query string, info textanalysis.ExtractedInfo, categories []string, coreCount int, result *Result) (primary, secondary []domain.PaperRecord) {
	queries := a.builder.Build(query, info, categories, 0)
	primaryMax := coreCount * 3
	if primaryMax < a.config.PrimaryMinResults {
		primaryMax = a.config.PrimaryMinResults
	}

	slots := make([][]domain.PaperRecord, len(queries))
	errs := make([]error, len(queries))
	var secondaryPapers []domain.PaperRecord
	var secondaryErr error

	g := &errgroup.Group{}
	g.SetLimit(a.config.MaxParallel)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			slots[i], errs[i] = a.searchSource(ctx, a.arxiv, papersources.SearchParams{
				Query:      q.Query,
				Field:      q.Field,
				MaxResults: primaryMax,
				SortBy:     papersources.SortRelevance,
			})
			return nil
		})
	}

	if a.openalex != nil && a.openalex.IsEnabled() {
		g.Go(func() error {
			secondaryPapers, secondaryErr = a.searchSource(ctx, a.openalex, papersources.SearchParams{
				Query:      query,
				MaxResults: coreCount / 2,
				FromYear:   a.config.SecondaryFromYear,
			})
			return nil
		})
	}

	_ = g.Wait()

	for i := range queries {
		if errs[i] != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("primary search variant %d failed: %v", i+1, errs[i]))
			continue
		}
		primary = append(primary, slots[i]...)
	}
	if secondaryErr != nil {
		result.Warnings = append(result.Warnings, "scholarly graph search failed: "+secondaryErr.Error())
	}
	return primary, secondaryPapers
}

// runFallback executes supplementary queries one at a time until the core
// bucket is full or the queries run out.
func (a *Aggregator) runFallback(ctx context.Context, logger zerolog.Logger, scorer *Scorer, info textanalysis.ExtractedInfo, query string, categories []string, core []domain.PaperRecord, coreCount int, result *Result) []domain.PaperRecord {
	cats := categories
	if len(cats) == 0 {
		cats = fallbackCategories
	}

	for _, fq := range a.fallback.Generate(info, query) {
		if len(core) >= coreCount || ctx.Err() != nil {
			break
		}

		fallbackQueries := a.builder.Build(fq, textanalysis.ExtractedInfo{}, cats, 0)
		papers, err := a.searchSource(ctx, a.arxiv, papersources.SearchParams{
			Query:      fallbackQueries[0].Query,
			Field:      fallbackQueries[0].Field,
			MaxResults: a.config.FallbackMaxResults,
			SortBy:     papersources.SortRelevance,
		})
		if err != nil {
			result.Warnings = append(result.Warnings, "fallback search failed: "+err.Error())
			continue
		}

		kept, _ := a.filter.Apply(Deduplicate(papers))
		for i := range kept {
			kept[i].RelevanceScore = scorer.ScorePreprint(&kept[i])
		}
		Rank(kept)
		core = mergeInto(core, kept, coreCount)
	}

	logger.Info().Int("core", len(core)).Msg("fallback searches finished")
	return core
}

// searchBackground fetches recent papers sorted by submission date, excluding
// anything already placed in core or related.
func (a *Aggregator) searchBackground(ctx context.Context, logger zerolog.Logger, scorer *Scorer, query string, info textanalysis.ExtractedInfo, known map[string]struct{}, backgroundCount int, result *Result) []domain.PaperRecord {
	queries := a.builder.Build(query, info, nil, a.config.BackgroundFromYear)
	papers, err := a.searchSource(ctx, a.arxiv, papersources.SearchParams{
		Query:      queries[0].Query,
		Field:      queries[0].Field,
		FromYear:   a.config.BackgroundFromYear,
		MaxResults: backgroundCount,
		SortBy:     papersources.SortSubmittedDate,
	})
	if err != nil {
		result.Warnings = append(result.Warnings, "background search failed: "+err.Error())
		return nil
	}

	kept, _ := a.filter.Apply(Deduplicate(papers))
	for i := range kept {
		kept[i].RelevanceScore = scorer.ScorePreprint(&kept[i])
	}

	background := make([]domain.PaperRecord, 0, backgroundCount)
	for i := range kept {
		if len(background) >= backgroundCount {
			break
		}
		if _, dup := known[kept[i].ID]; dup {
			continue
		}
		background = append(background, kept[i])
	}
	logger.Debug().Int("background", len(background)).Msg("background search finished")
	return background
}

// searchSource wraps one source call with metrics and per-source logging.
func (a *Aggregator) searchSource(ctx context.Context, src papersources.PaperSource, params papersources.SearchParams) ([]domain.PaperRecord, error) {
	name := string(src.SourceType())
	logger := observability.WithSourceContext(a.logger, name)
	a.metrics.RecordSearchStarted(name)

	start := time.Now()
	res, err := src.Search(ctx, params)
	if err != nil {
		a.metrics.RecordSearchFailed(name, time.Since(start).Seconds())
		logger.Warn().Err(err).Msg("source search failed")
		return nil, err
	}
	a.metrics.RecordSearchCompleted(name, len(res.Papers), res.Duration.Seconds())
	logger.Debug().Int("papers", len(res.Papers)).Dur("duration", res.Duration).Msg("source search finished")
	return res.Papers, nil
}

// mergeInto appends papers not already present until target reaches limit.
func mergeInto(target, papers []domain.PaperRecord, limit int) []domain.PaperRecord {
	existing := idSet(target)
	for i := range papers {
		if len(target) >= limit {
			break
		}
		if _, dup := existing[papers[i].ID]; dup {
			continue
		}
		existing[papers[i].ID] = struct{}{}
		target = append(target, papers[i])
	}
	return target
}

// excludeIDs returns up to limit papers whose IDs are not in known.
func excludeIDs(papers []domain.PaperRecord, known map[string]struct{}, limit int) []domain.PaperRecord {
	out := make([]domain.PaperRecord, 0, limit)
	for i := range papers {
		if len(out) >= limit {
			break
		}
		if _, dup := known[papers[i].ID]; dup {
			continue
		}
		out = append(out, papers[i])
	}
	return out
}

func idSet(papers []domain.PaperRecord) map[string]struct{} {
	set := make(map[string]struct{}, len(papers))
	for i := range papers {
		set[papers[i].ID] = struct{}{}
	}
	return set
}
