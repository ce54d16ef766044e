package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	server "review_radar/internal/adapters/http_server"
	"review_radar/internal/app"
	"review_radar/internal/domain"
)

// ---- fakes ----

type fakeSource struct{ placeID string }

func (f *fakeSource) FindPlace(ctx context.Context, query, region, language string) (map[string]any, error) {
	if f.placeID == "" {
		return map[string]any{}, nil
	}
	return map[string]any{"local_results": []any{map[string]any{"place_id": f.placeID}}}, nil
}

func (f *fakeSource) FetchReviewPage(ctx context.Context, q domain.ReviewPageQuery) (map[string]any, error) {
	return map[string]any{
		"reviews": []any{
			map[string]any{"rating": 1.0, "snippet": "rude staff"},
			map[string]any{"rating": 5.0, "snippet": "fine"},
		},
	}, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	return "pain point report", nil
}

type fakeRepo struct {
	analyses map[int64]domain.Analysis
	nextID   int64
}

func (f *fakeRepo) InsertAnalysis(ctx context.Context, a domain.Analysis) (int64, error) {
	if f.analyses == nil {
		f.analyses = map[int64]domain.Analysis{}
	}
	f.nextID++
	a.ID = f.nextID
	f.analyses[f.nextID] = a
	return f.nextID, nil
}
func (f *fakeRepo) InsertReviews(ctx context.Context, rs []domain.StoredReview) error { return nil }
func (f *fakeRepo) LogLookupMiss(ctx context.Context, query string, status int, reason string) error {
	return nil
}
func (f *fakeRepo) GetAnalysis(ctx context.Context, id int64) (domain.Analysis, error) {
	a, ok := f.analyses[id]
	if !ok {
		return domain.Analysis{}, errors.New("not found")
	}
	return a, nil
}
func (f *fakeRepo) ListAnalysisReviews(ctx context.Context, id int64) ([]domain.StoredReview, error) {
	return nil, nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (noopCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (noopCache) Del(ctx context.Context, key string) error { return nil }

func newTestServer(repo *fakeRepo, placeID string) http.Handler {
	a := app.NewAnalysisService(&fakeSource{placeID: placeID}, fakeSummarizer{}, repo, noopCache{}, 10)
	q := app.NewQueryService(repo, noopCache{}, time.Minute)
	srv := server.New()
	srv.MountHandlers(&server.Handlers{A: a, Q: q})
	return srv.Mux()
}

// ---- tests ----

func TestRunAnalysis_Created(t *testing.T) {
	repo := &fakeRepo{}
	h := newTestServer(repo, "pid-1")

	body := strings.NewReader(`{"target":"Acme Cafe","targetCount":2}`)
	req := httptest.NewRequest("POST", "/v1/analyses", body)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Analysis domain.Analysis `json:"analysis"`
		Entities []struct {
			Label  string `json:"label"`
			Status string `json:"status"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Analysis.ID != 1 || resp.Analysis.Report != "pain point report" {
		t.Fatalf("unexpected analysis: %+v", resp.Analysis)
	}
	if len(resp.Entities) != 1 || resp.Entities[0].Label != "Acme Cafe" {
		t.Fatalf("unexpected entities: %+v", resp.Entities)
	}
}

func TestRunAnalysis_NoMatchIs404(t *testing.T) {
	h := newTestServer(&fakeRepo{}, "") // lookup resolves nothing

	req := httptest.NewRequest("POST", "/v1/analyses", strings.NewReader(`{"target":"Ghost Diner"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestRunAnalysis_BadBodyIs400(t *testing.T) {
	h := newTestServer(&fakeRepo{}, "pid-1")

	req := httptest.NewRequest("POST", "/v1/analyses", strings.NewReader(`{"target":""}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestGetAnalysis_ETagShortCircuit(t *testing.T) {
	repo := &fakeRepo{}
	_, _ = repo.InsertAnalysis(context.Background(), domain.Analysis{Target: "Acme Cafe", Status: domain.AnalysisOK, Report: "r"})
	h := newTestServer(repo, "pid-1")

	req := httptest.NewRequest("GET", "/v1/analyses/1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req2 := httptest.NewRequest("GET", "/v1/analyses/1", nil)
	req2.Header.Set("If-None-Match", etag)
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req2)
	if rr2.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rr2.Code)
	}
}

func TestGetAnalysis_Missing404(t *testing.T) {
	h := newTestServer(&fakeRepo{}, "pid-1")

	req := httptest.NewRequest("GET", "/v1/analyses/99", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
