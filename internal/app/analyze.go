package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"review_radar/internal/domain"
)

// Identifier modes accepted by Analyze.
const (
	ModeName    = "name"
	ModePlaceID = "place_id"
)

const (
	DefaultTargetCount = 30
	maxTargetCount     = 500
	fetchCacheTTLSec   = 900 // fetched pages cost API credits; cache them hard
)

// ErrInvalidRequest marks request-shape problems so transports can answer 400.
var ErrInvalidRequest = errors.New("invalid request")

// AnalyzeRequest is the one configurable operation the near-identical
// top-level flows collapse into.
type AnalyzeRequest struct {
	Target         string `json:"target"`
	Competitor     string `json:"competitor,omitempty"`
	IdentifierMode string `json:"identifierMode,omitempty"` // name|place_id
	Region         string `json:"region,omitempty"`
	Language       string `json:"language,omitempty"`
	TargetCount    int    `json:"targetCount,omitempty"`
}

// AnalysisService orchestrates one run: resolve the place, fetch reviews for
// the target and then the competitor, assemble the prompt, summarize, persist.
// Strictly sequential; there is exactly one logical invocation per request.
type AnalysisService struct {
	source   domain.ReviewSource
	fetcher  *Fetcher
	sum      domain.Summarizer
	repo     domain.AnalysisRepository
	cache    domain.Cache
	pageSize int
}

func NewAnalysisService(src domain.ReviewSource, sum domain.Summarizer, repo domain.AnalysisRepository, cache domain.Cache, pageSize int) *AnalysisService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &AnalysisService{
		source:   src,
		fetcher:  NewFetcher(src),
		sum:      sum,
		repo:     repo,
		cache:    cache,
		pageSize: pageSize,
	}
}

// Analyze runs the full pipeline and returns the persisted analysis plus the
// per-entity fetch results. A failed competitor lookup degrades to a
// target-only run; a failed summarization degrades to an error report.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (domain.Analysis, *domain.EntitySet, error) {
	if err := normalizeRequest(&req); err != nil {
		return domain.Analysis{}, nil, err
	}

	set := domain.NewEntitySet()

	// 1) Target. A lookup miss here is terminal.
	targetPlace, err := s.resolvePlace(ctx, req.Target, req.IdentifierMode, req.Region, req.Language)
	if err != nil {
		return domain.Analysis{}, nil, fmt.Errorf("target %q: %w", req.Target, err)
	}
	targetRes := s.fetchEntity(ctx, req, targetPlace)
	if err := set.Add(req.Target, targetRes); err != nil {
		return domain.Analysis{}, nil, err
	}

	// 2) Competitor: best-effort, fetched strictly after the target.
	if req.Competitor != "" {
		compPlace, cerr := s.resolvePlace(ctx, req.Competitor, req.IdentifierMode, req.Region, req.Language)
		if cerr != nil {
			log.Warn().Str("competitor", req.Competitor).Err(cerr).Msg("competitor lookup failed, continuing target-only")
		} else {
			if err := set.Add(req.Competitor, s.fetchEntity(ctx, req, compPlace)); err != nil {
				return domain.Analysis{}, nil, err
			}
		}
	}

	// 3) Summarize. Failures become a displayable report, not an error.
	a := domain.Analysis{
		Target:      req.Target,
		Region:      req.Region,
		Language:    req.Language,
		TargetCount: req.TargetCount,
		Status:      domain.AnalysisOK,
	}
	if req.Competitor != "" {
		c := req.Competitor
		a.Competitor = &c
	}

	prompt, err := AssemblePrompt(set, languageName(req.Language))
	if err != nil {
		return domain.Analysis{}, nil, err
	}
	report, err := s.sum.Summarize(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("summarization failed")
		a.Status = domain.AnalysisSummarizerFailed
		a.Report = "AI analysis failed: " + err.Error()
	} else {
		a.Report = report
	}

	// 4) Persist the run and its reviews.
	id, err := s.repo.InsertAnalysis(ctx, a)
	if err != nil {
		return domain.Analysis{}, nil, fmt.Errorf("store analysis: %w", err)
	}
	a.ID = id
	for _, label := range set.Labels() {
		res, _ := set.Get(label)
		if len(res.Records) == 0 {
			continue
		}
		if err := s.repo.InsertReviews(ctx, mapStoredReviews(id, label, res.Records)); err != nil {
			return domain.Analysis{}, nil, fmt.Errorf("store reviews for %q: %w", label, err)
		}
	}
	return a, set, nil
}

// resolvePlace turns the caller-supplied identifier into a place id.
// In place_id mode the identifier passes through untouched.
func (s *AnalysisService) resolvePlace(ctx context.Context, ident, mode, region, language string) (string, error) {
	if mode == ModePlaceID {
		return ident, nil
	}
	raw, err := s.source.FindPlace(ctx, ident, region, language)
	if err != nil {
		return "", fmt.Errorf("place search: %w", err)
	}
	if msg := payloadError(raw); msg != "" {
		s.logMiss(ctx, ident, 200, msg)
		return "", fmt.Errorf("place search: %s: %w", msg, domain.ErrNoMatch)
	}
	id, ok := placeIDFromSearch(raw)
	if !ok {
		s.logMiss(ctx, ident, 404, "no local results")
		return "", domain.ErrNoMatch
	}
	return id, nil
}

// fetchEntity runs the bounded fetch with a cache in front; an errored fetch
// keeps its partial records and is never cached.
func (s *AnalysisService) fetchEntity(ctx context.Context, req AnalyzeRequest, placeID string) domain.FetchResult {
	key := fmt.Sprintf("reviews:%s:%s:%s:%d", placeID, req.Region, req.Language, req.TargetCount)
	if s.cache != nil {
		var cached domain.FetchResult
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached
		}
	}

	res, err := s.fetcher.Fetch(ctx, domain.FetchRequest{
		PlaceID:     placeID,
		Region:      req.Region,
		Language:    req.Language,
		TargetCount: req.TargetCount,
		PageSize:    s.pageSize,
	})
	if err != nil {
		log.Warn().Str("place_id", placeID).Int("records", len(res.Records)).Err(err).Msg("fetch terminated early")
		return res
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, res, fetchCacheTTLSec)
	}
	return res
}

func (s *AnalysisService) logMiss(ctx context.Context, query string, status int, reason string) {
	if err := s.repo.LogLookupMiss(ctx, query, status, reason); err != nil {
		log.Warn().Str("query", query).Err(err).Msg("log lookup miss failed")
	}
}

func normalizeRequest(req *AnalyzeRequest) error {
	req.Target = strings.TrimSpace(req.Target)
	req.Competitor = strings.TrimSpace(req.Competitor)
	if req.Target == "" {
		return fmt.Errorf("target is required: %w", ErrInvalidRequest)
	}
	switch req.IdentifierMode {
	case "":
		req.IdentifierMode = ModeName
	case ModeName, ModePlaceID:
	default:
		return fmt.Errorf("identifierMode must be %q or %q: %w", ModeName, ModePlaceID, ErrInvalidRequest)
	}
	if req.Region == "" {
		req.Region = "us"
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.TargetCount <= 0 {
		req.TargetCount = DefaultTargetCount
	}
	if req.TargetCount > maxTargetCount {
		return fmt.Errorf("targetCount must be at most %d: %w", maxTargetCount, ErrInvalidRequest)
	}
	return nil
}
