// Batch runner: analyzes each business named on the command line and logs the
// resulting report. Independent runs share a bounded worker pool; within one
// run the target and competitor are still fetched sequentially.
//
//	analyzer "So Energy" "Bulb Energy" ...
package main

import (
	"context"
	"database/sql"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_radar/internal/adapters/gemini"
	"review_radar/internal/adapters/observability"
	redisad "review_radar/internal/adapters/redis"
	"review_radar/internal/adapters/serp"
	"review_radar/internal/app"
	"review_radar/internal/shared"
	mysqlrepo "review_radar/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	names := os.Args[1:]
	if len(names) == 0 {
		log.Fatal().Msg("usage: analyzer <business name> [<business name> ...]")
	}

	log.Info().
		Int("workers", cfg.Workers).
		Int("targetCount", cfg.TargetCount).
		Int("businesses", len(names)).
		Msg("analyzer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	source, err := serp.New(cfg.SerpBase, cfg.SerpKey, cfg.SerpRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SerpAPI client")
	}
	summarizer, err := gemini.New(ctx, cfg.GeminiKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Gemini client")
	}

	svc := app.NewAnalysisService(source, summarizer, repo, cache, cfg.PageSize)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, name := range names {
		name := name

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			defer sem.Release(1)

			a, set, err := svc.Analyze(ctx, app.AnalyzeRequest{
				Target:      target,
				TargetCount: cfg.TargetCount,
			})
			if err != nil {
				log.Warn().Str("target", target).Err(err).Msg("analysis failed")
				return
			}
			total := 0
			for _, label := range set.Labels() {
				res, _ := set.Get(label)
				total += len(res.Records)
			}
			log.Info().
				Str("target", target).
				Int64("id", a.ID).
				Str("status", a.Status).
				Int("reviews", total).
				Msg("analysis ok")
		}(name)
	}

	wg.Wait()
	log.Info().Msg("analyzer completed")
}
