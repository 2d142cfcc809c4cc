package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/helixir/literature-search-service/internal/aggregate"
	"github.com/helixir/literature-search-service/internal/domain"
	"github.com/helixir/literature-search-service/internal/observability"
)

// maxRequestBodySize caps request bodies at 1 MB.
const maxRequestBodySize = 1 << 20

var validate = validator.New()

// searchRequest is the JSON body for POST /api/v1/search.
type searchRequest struct {
	Query           string               `json:"query" validate:"required,min=3,max=10000"`
	PaperContext    *paperContextPayload `json:"paper_context,omitempty"`
	CoreCount       int                  `json:"core_count,omitempty" validate:"omitempty,min=1,max=50"`
	RelatedCount    int                  `json:"related_count,omitempty" validate:"omitempty,min=1,max=100"`
	BackgroundCount int                  `json:"background_count,omitempty" validate:"omitempty,min=1,max=50"`
}

type paperContextPayload struct {
	Title    string `json:"title" validate:"max=2000"`
	Abstract string `json:"abstract" validate:"max=50000"`
}

// compareRequest is the JSON body for POST /api/v1/compare. The corpus is
// client-supplied, typically the output of a previous search call.
type compareRequest struct {
	Target paperContextPayload `json:"target" validate:"required"`
	Corpus domain.Corpus       `json:"corpus"`
}

// searchLiterature handles POST /api/v1/search.
func (s *Server) searchLiterature(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	aggReq := aggregate.Request{
		Query:           strings.TrimSpace(req.Query),
		CoreCount:       req.CoreCount,
		RelatedCount:    req.RelatedCount,
		BackgroundCount: req.BackgroundCount,
	}
	if req.PaperContext != nil {
		aggReq.Paper = &domain.PaperContext{
			Title:    req.PaperContext.Title,
			Abstract: req.PaperContext.Abstract,
		}
	}

	result, err := s.aggregator.SearchLiterature(r.Context(), aggReq)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, searchResultToResponse(result))
}

// compareLiterature handles POST /api/v1/compare.
func (s *Server) compareLiterature(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Target.Title) == "" && strings.TrimSpace(req.Target.Abstract) == "" {
		writeError(w, http.StatusBadRequest, "target must have a title or an abstract")
		return
	}

	target := domain.PaperContext{Title: req.Target.Title, Abstract: req.Target.Abstract}
	start := time.Now()
	comparison := s.comparator.Compare(target, req.Corpus)
	s.metrics.RecordComparison(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, comparison)
}

// getPaper handles GET /api/v1/papers/{source}/{paperID}.
func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	sourceType := domain.SourceType(chi.URLParam(r, "source"))
	if !domain.IsValidSourceType(sourceType) {
		writeError(w, http.StatusBadRequest, "unknown source: "+string(sourceType))
		return
	}
	paperID := chi.URLParam(r, "paperID")
	if paperID == "" {
		writeError(w, http.StatusBadRequest, "paper id is required")
		return
	}

	src, err := s.registry.Get(sourceType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	paper, err := src.GetByID(r.Context(), paperID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "paper not found: "+paperID)
		case errors.Is(err, domain.ErrSourceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "source unavailable")
		default:
			logger := observability.WithPaperContext(s.logger, string(sourceType), paperID)
			logger.Error().Err(err).Msg("paper lookup failed")
			writeError(w, http.StatusBadGateway, "source lookup failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, paper)
}

// decodeAndValidate reads the capped request body into dst and runs struct
// validation, writing the error response itself on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag()+" validation")
	}
	return strings.Join(parts, "; ")
}
