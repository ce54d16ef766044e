package domain

import (
	"context"
	"errors"
)

// Sentinel errors shared by the source adapters and the app layer.
var (
	ErrNotFound     = errors.New("source: not found")
	ErrUnauthorized = errors.New("source: unauthorized")
	ErrForbidden    = errors.New("source: forbidden")
	// ErrNoMatch means a name lookup resolved to no reviewable place.
	ErrNoMatch = errors.New("source: no matching place")
)

// ReviewSource is the paginated search-data API. Both methods return the raw
// decoded payload; field extraction lives in the app-layer mappers so payload
// drift stays out of the transport client.
type ReviewSource interface {
	FindPlace(ctx context.Context, query, region, language string) (map[string]any, error)
	FetchReviewPage(ctx context.Context, q ReviewPageQuery) (map[string]any, error)
}

// Summarizer turns one assembled prompt into free-form report text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type AnalysisRepository interface {
	// Write paths
	InsertAnalysis(ctx context.Context, a Analysis) (int64, error)
	InsertReviews(ctx context.Context, rs []StoredReview) error
	LogLookupMiss(ctx context.Context, query string, status int, reason string) error

	// Read paths
	GetAnalysis(ctx context.Context, id int64) (Analysis, error)
	ListAnalysisReviews(ctx context.Context, id int64) ([]StoredReview, error)
}
