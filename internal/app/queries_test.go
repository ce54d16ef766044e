package app_test

import (
	"context"
	"testing"
	"time"

	"review_radar/internal/app"
	"review_radar/internal/domain"
)

func TestGetAnalysis_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{analyses: []domain.Analysis{
		{Target: "Acme Cafe", Region: "us", Language: "en", Status: domain.AnalysisOK, Report: "original"},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	a, err := q.GetAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if a.ID != 1 || a.Report != "original" {
		t.Fatalf("unexpected analysis: %+v", a)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.analyses[0].Report = "SHOULD NOT SEE THIS"

	a2, err := q.GetAnalysis(context.Background(), 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if a2.Report != "original" {
		t.Fatalf("expected cached report, got %q", a2.Report)
	}
}

func TestListAnalysisReviews_Cache(t *testing.T) {
	author := "Ana"
	repo := &fakeRepo{reviews: []domain.StoredReview{
		{AnalysisID: 1, Entity: "Acme Cafe", Position: 0, Author: &author, Text: "slow"},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	out, err := q.ListAnalysisReviews(context.Background(), 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].Text != "slow" {
		t.Fatalf("unexpected reviews: %+v", out)
	}

	// Change repo, call again -> should come from cache
	repo.reviews[0].Text = "changed"
	out2, _ := q.ListAnalysisReviews(context.Background(), 1)
	if out2[0].Text != "slow" {
		t.Fatalf("expected cached text, got %q", out2[0].Text)
	}
}
