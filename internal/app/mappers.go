package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"review_radar/internal/domain"
)

/********** alias registries (single source of truth) **********/

// SerpAPI has shuffled review field names across engine versions; each logical
// field lists the payload paths seen in the wild, preferred first.
var reviewAliases = map[string][]string{
	"author":    {"user.name", "author", "name", "reviewer.name"},
	"text":      {"snippet", "extracted_snippet.original", "text", "review_text", "comment"},
	"date":      {"date", "iso_date", "published_at"},
	"rating":    {"rating", "score", "rating.value"},
	"source_id": {"review_id", "id"},
}

var searchAliases = map[string][]string{
	"place_id": {
		"local_results.0.place_id",
		"place_results.place_id",
	},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps; numeric parts index arrays.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		switch obj := cur.(type) {
		case map[string]any:
			v, ok := obj[part]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(obj) {
				return nil
			}
			cur = obj[i]
		default:
			return nil
		}
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

// firstNumericAlias: first numeric value for a named alias set, coercing
// JSON numbers and numeric strings.
func firstNumericAlias(m map[string]any, aliases map[string][]string, key string) *float64 {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

/********** payload mappers **********/

// payloadError returns the source-reported error message, if any. SerpAPI
// signals failures (and "no results" for some engines) inside a 200 body.
func payloadError(raw map[string]any) string {
	return lookupStr(raw, "error")
}

// nextPageToken extracts the continuation token; "" means last page.
func nextPageToken(raw map[string]any) string {
	return lookupStr(raw, "serpapi_pagination.next_page_token")
}

// placeIDFromSearch resolves a maps search payload to a place id.
// Search responses carry local_results; direct hits carry place_results.
func placeIDFromSearch(raw map[string]any) (string, bool) {
	for _, p := range searchAliases["place_id"] {
		if id := lookupStr(raw, p); id != "" {
			return id, true
		}
	}
	return "", false
}

// mapReviews converts the payload's review list into domain records,
// preserving source order. Unrecognized entries are skipped.
func mapReviews(raw map[string]any) []domain.ReviewRecord {
	items, ok := raw["reviews"].([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	out := make([]domain.ReviewRecord, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rec := domain.ReviewRecord{
			SourceID: firstNonEmptyAlias(m, reviewAliases, "source_id"),
			Author:   firstNonEmptyAlias(m, reviewAliases, "author"),
			Rating:   firstNumericAlias(m, reviewAliases, "rating"),
			Date:     firstNonEmptyAlias(m, reviewAliases, "date"),
		}
		if t := firstNonEmptyAlias(m, reviewAliases, "text"); t != nil {
			rec.Text = *t
		}
		if b, err := json.Marshal(m); err == nil {
			rec.RawJSON = b
		}
		out = append(out, rec)
	}
	return out
}

// mapStoredReviews flattens an entity's fetched records for persistence.
func mapStoredReviews(analysisID int64, entity string, recs []domain.ReviewRecord) []domain.StoredReview {
	out := make([]domain.StoredReview, 0, len(recs))
	for i, r := range recs {
		out = append(out, domain.StoredReview{
			AnalysisID: analysisID,
			Entity:     entity,
			Position:   i,
			Rating:     r.Rating,
			Author:     r.Author,
			Text:       r.Text,
			Date:       r.Date,
			RawJSON:    r.RawJSON,
		})
	}
	return out
}
