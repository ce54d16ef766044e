package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"review_radar/internal/domain"
)

type QueryService struct {
	repo     domain.AnalysisRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.AnalysisRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetAnalysis(ctx context.Context, id int64) (domain.Analysis, error) {
	key := fmt.Sprintf("analysis:%d", id)
	var a domain.Analysis
	if ok, _ := s.cache.Get(ctx, key, &a); ok {
		return a, nil
	}
	a, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return domain.Analysis{}, err
	}
	_ = s.cache.Set(ctx, key, a, int(s.cacheTTL.Seconds()))
	return a, nil
}

func (s *QueryService) ListAnalysisReviews(ctx context.Context, id int64) ([]domain.StoredReview, error) {
	key := fmt.Sprintf("analysis_reviews:%d", id)
	var out []domain.StoredReview
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := s.repo.ListAnalysisReviews(ctx, id)
	if err != nil {
		return nil, err
	}

	// copy before caching so callers mutating the slice can't poison the cache
	cp := make([]domain.StoredReview, len(rs))
	copy(cp, rs)

	// size guard
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}
