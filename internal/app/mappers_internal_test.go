package app

import "testing"

func TestMapReviews_AliasesAndOrder(t *testing.T) {
	raw := map[string]any{
		"reviews": []any{
			map[string]any{
				"rating":    4.0,
				"snippet":   "short version",
				"date":      "2 weeks ago",
				"user":      map[string]any{"name": "Pat"},
				"review_id": "r1",
			},
			map[string]any{
				// older payload shape: string rating, flat author, text key
				"rating": "2",
				"text":   "cold food",
				"author": "Sam",
			},
			map[string]any{
				// no rating at all
				"snippet": "unrated drive-by",
			},
		},
	}
	recs := mapReviews(raw)
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	if recs[0].Text != "short version" || recs[0].Author == nil || *recs[0].Author != "Pat" {
		t.Fatalf("first record mapped wrong: %+v", recs[0])
	}
	if recs[0].Rating == nil || *recs[0].Rating != 4 {
		t.Fatalf("first rating mapped wrong: %+v", recs[0].Rating)
	}
	if recs[1].Text != "cold food" || recs[1].Author == nil || *recs[1].Author != "Sam" {
		t.Fatalf("second record mapped wrong: %+v", recs[1])
	}
	if recs[1].Rating == nil || *recs[1].Rating != 2 {
		t.Fatalf("string rating not coerced: %+v", recs[1].Rating)
	}
	if recs[2].Rating != nil {
		t.Fatalf("absent rating must stay nil: %+v", recs[2].Rating)
	}
	if len(recs[0].RawJSON) == 0 {
		t.Fatalf("raw payload not retained")
	}
}

func TestNextPageToken(t *testing.T) {
	raw := map[string]any{
		"serpapi_pagination": map[string]any{"next_page_token": "abc123"},
	}
	if tok := nextPageToken(raw); tok != "abc123" {
		t.Fatalf("token = %q", tok)
	}
	if tok := nextPageToken(map[string]any{}); tok != "" {
		t.Fatalf("expected empty token, got %q", tok)
	}
}

func TestPlaceIDFromSearch(t *testing.T) {
	local := map[string]any{
		"local_results": []any{map[string]any{"place_id": "ChIJlocal"}},
	}
	if id, ok := placeIDFromSearch(local); !ok || id != "ChIJlocal" {
		t.Fatalf("local_results: %q %v", id, ok)
	}

	direct := map[string]any{
		"place_results": map[string]any{"place_id": "ChIJdirect"},
	}
	if id, ok := placeIDFromSearch(direct); !ok || id != "ChIJdirect" {
		t.Fatalf("place_results: %q %v", id, ok)
	}

	if _, ok := placeIDFromSearch(map[string]any{"local_results": []any{}}); ok {
		t.Fatalf("empty local_results must not resolve")
	}
}

func TestPayloadError(t *testing.T) {
	if msg := payloadError(map[string]any{"error": "out of searches"}); msg != "out of searches" {
		t.Fatalf("msg = %q", msg)
	}
	if msg := payloadError(map[string]any{}); msg != "" {
		t.Fatalf("expected empty, got %q", msg)
	}
}
