package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"review_radar/internal/app"
	"review_radar/internal/domain"
)

// ---- fakes ----

// pagedSource serves canned review pages keyed by token ("" = first page).
type pagedSource struct {
	pages map[string]map[string]any
	calls []domain.ReviewPageQuery
	fail  map[string]error // token -> error to return
}

func (s *pagedSource) FindPlace(ctx context.Context, query, region, language string) (map[string]any, error) {
	return map[string]any{
		"local_results": []any{map[string]any{"place_id": "pid-" + query}},
	}, nil
}

func (s *pagedSource) FetchReviewPage(ctx context.Context, q domain.ReviewPageQuery) (map[string]any, error) {
	s.calls = append(s.calls, q)
	if err, ok := s.fail[q.PageToken]; ok {
		return nil, err
	}
	p, ok := s.pages[q.PageToken]
	if !ok {
		return map[string]any{"reviews": []any{}}, nil
	}
	return p, nil
}

func page(token string, next string, ratings ...float64) map[string]any {
	revs := make([]any, 0, len(ratings))
	for i, r := range ratings {
		revs = append(revs, map[string]any{
			"rating":  r,
			"snippet": fmt.Sprintf("review %s/%d", token, i),
			"date":    "a week ago",
			"user":    map[string]any{"name": fmt.Sprintf("user-%d", i)},
		})
	}
	p := map[string]any{"reviews": revs}
	if next != "" {
		p["serpapi_pagination"] = map[string]any{"next_page_token": next}
	}
	return p
}

func fetch(t *testing.T, src *pagedSource, target, pageSize int) (domain.FetchResult, error) {
	t.Helper()
	return app.NewFetcher(src).Fetch(context.Background(), domain.FetchRequest{
		PlaceID:     "pid-1",
		Region:      "us",
		Language:    "en",
		TargetCount: target,
		PageSize:    pageSize,
	})
}

// ---- tests ----

func TestFetch_StopsAtTargetAndTruncates(t *testing.T) {
	src := &pagedSource{pages: map[string]map[string]any{
		"":   page("", "t1", 5, 4, 3, 2, 1, 5, 4, 3, 2, 1),
		"t1": page("t1", "t2", 1, 2, 3, 4, 5, 1, 2, 3, 4, 5),
	}}
	res, err := fetch(t, src, 12, 10)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Status != domain.FetchCompleted {
		t.Fatalf("status = %s, want %s", res.Status, domain.FetchCompleted)
	}
	if len(res.Records) != 12 {
		t.Fatalf("records = %d, want 12", len(res.Records))
	}
	// excess records on the final page are discarded, order preserved
	if res.Records[10].Text != "review t1/0" || res.Records[11].Text != "review t1/1" {
		t.Fatalf("unexpected tail: %q, %q", res.Records[10].Text, res.Records[11].Text)
	}
	if len(src.calls) != 2 {
		t.Fatalf("page requests = %d, want 2", len(src.calls))
	}
}

func TestFetch_ExhaustedWhenSourceRunsDry(t *testing.T) {
	src := &pagedSource{pages: map[string]map[string]any{
		"": page("", "", 5, 1, 2), // no continuation token
	}}
	res, err := fetch(t, src, 10, 10)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Status != domain.FetchExhausted {
		t.Fatalf("status = %s, want %s", res.Status, domain.FetchExhausted)
	}
	if len(res.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(res.Records))
	}
}

func TestFetch_NeverExceedsPageCeiling(t *testing.T) {
	// endless feed: every page links to the next
	src := &pagedSource{pages: map[string]map[string]any{}}
	src.pages[""] = page("", "t1", 5)
	for i := 1; i < 50; i++ {
		src.pages[fmt.Sprintf("t%d", i)] = page(fmt.Sprintf("t%d", i), fmt.Sprintf("t%d", i+1), 5)
	}
	res, err := fetch(t, src, 25, 10) // ceil(25/10) = 3
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := len(src.calls); got > 3 {
		t.Fatalf("page requests = %d, want <= 3", got)
	}
	if res.Status != domain.FetchExhausted {
		t.Fatalf("status = %s, want %s", res.Status, domain.FetchExhausted)
	}
}

func TestFetch_ZeroRecordPageStopsDespiteToken(t *testing.T) {
	src := &pagedSource{pages: map[string]map[string]any{
		"":   page("", "t1", 4, 2),
		"t1": page("t1", "t2"), // zero records but a token
	}}
	res, err := fetch(t, src, 30, 10)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Status != domain.FetchExhausted {
		t.Fatalf("status = %s, want %s", res.Status, domain.FetchExhausted)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2 (prior pages only)", len(res.Records))
	}
	if len(src.calls) != 2 {
		t.Fatalf("page requests = %d, want 2", len(src.calls))
	}
}

func TestFetch_ContinuationCarriesPlaceAndFilters(t *testing.T) {
	src := &pagedSource{pages: map[string]map[string]any{
		"":   page("", "t1", 1, 2, 3, 4, 5, 1, 2, 3, 4, 5),
		"t1": page("t1", "", 1, 2),
	}}
	if _, err := fetch(t, src, 20, 10); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(src.calls) != 2 {
		t.Fatalf("page requests = %d, want 2", len(src.calls))
	}
	second := src.calls[1]
	if second.PageToken != "t1" || second.PlaceID != "pid-1" || second.Region != "us" || second.Language != "en" {
		t.Fatalf("continuation dropped filters: %+v", second)
	}
}

func TestFetch_PageErrorKeepsPartials(t *testing.T) {
	src := &pagedSource{
		pages: map[string]map[string]any{
			"": page("", "t1", 5, 4, 3, 2, 1, 5, 4, 3, 2, 1),
		},
		fail: map[string]error{"t1": errors.New("remote 500")},
	}
	res, err := fetch(t, src, 20, 10)
	if err == nil {
		t.Fatalf("expected error")
	}
	if res.Status != domain.FetchErrored {
		t.Fatalf("status = %s, want %s", res.Status, domain.FetchErrored)
	}
	if len(res.Records) != 10 {
		t.Fatalf("records = %d, want the 10 gathered before the failure", len(res.Records))
	}
}

func TestFetch_PayloadErrorTerminates(t *testing.T) {
	src := &pagedSource{pages: map[string]map[string]any{
		"": {"error": "Google Maps Reviews hasn't returned any results for this query."},
	}}
	res, err := fetch(t, src, 10, 10)
	if err == nil {
		t.Fatalf("expected error")
	}
	if res.Status != domain.FetchErrored || len(res.Records) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
