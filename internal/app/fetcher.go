package app

import (
	"context"
	"fmt"

	"review_radar/internal/domain"
)

// DefaultPageSize matches what the reviews engine returns per page.
const DefaultPageSize = 10

// Fetcher walks the token-paginated review feed until the target count is
// reached or the feed runs dry. No deduplication and no per-page retries:
// the source's pagination is trusted and a failed page ends the fetch.
type Fetcher struct {
	source domain.ReviewSource
}

func NewFetcher(s domain.ReviewSource) *Fetcher { return &Fetcher{source: s} }

// Fetch accumulates up to req.TargetCount records, newest first. On error the
// returned result still carries everything gathered before the failure, with
// status FetchErrored. Page requests never exceed ceil(target/pageSize).
func (f *Fetcher) Fetch(ctx context.Context, req domain.FetchRequest) (domain.FetchResult, error) {
	if req.PlaceID == "" {
		return domain.FetchResult{Status: domain.FetchErrored}, fmt.Errorf("place id is required")
	}
	if req.TargetCount <= 0 {
		return domain.FetchResult{Status: domain.FetchErrored}, fmt.Errorf("target count must be positive")
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	// hard iteration ceiling against a misbehaving source
	maxPages := (req.TargetCount + pageSize - 1) / pageSize

	var acc []domain.ReviewRecord
	token := ""
	for page := 1; page <= maxPages; page++ {
		raw, err := f.source.FetchReviewPage(ctx, domain.ReviewPageQuery{
			PlaceID:   req.PlaceID,
			Region:    req.Region,
			Language:  req.Language,
			PageToken: token,
		})
		if err != nil {
			return domain.FetchResult{Records: acc, Status: domain.FetchErrored, Pages: page},
				fmt.Errorf("reviews page %d: %w", page, err)
		}
		if msg := payloadError(raw); msg != "" {
			return domain.FetchResult{Records: acc, Status: domain.FetchErrored, Pages: page},
				fmt.Errorf("reviews page %d: source error: %s", page, msg)
		}

		recs := mapReviews(raw)
		acc = append(acc, recs...)

		if len(acc) >= req.TargetCount {
			return domain.FetchResult{Records: acc[:req.TargetCount], Status: domain.FetchCompleted, Pages: page}, nil
		}
		// a zero-record page ends the walk even when a token is present
		if len(recs) == 0 {
			return domain.FetchResult{Records: acc, Status: domain.FetchExhausted, Pages: page}, nil
		}
		token = nextPageToken(raw)
		if token == "" {
			return domain.FetchResult{Records: acc, Status: domain.FetchExhausted, Pages: page}, nil
		}
	}
	return domain.FetchResult{Records: acc, Status: domain.FetchExhausted, Pages: maxPages}, nil
}
