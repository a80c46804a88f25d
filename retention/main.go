package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lawgpt-ru/lawsearch/backend/internal/config"
	"github.com/lawgpt-ru/lawsearch/backend/internal/esclient"
	"github.com/lawgpt-ru/lawsearch/backend/internal/logger"
	"github.com/lawgpt-ru/lawsearch/backend/internal/search"
)

// The crawler re-ingests the corpus periodically; chunks whose indexed_at is
// older than RETENTION_MAX_AGE were superseded and get purged here.
func main() {
	_ = godotenv.Load()

	log := logger.New("retention")
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient := connectWithRetry(ctx, log, cfg)
	if esClient == nil {
		log.Error("failed to connect to elasticsearch after retries")
		os.Exit(1)
	}

	log.Info("connected to elasticsearch")

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("retention job running",
		slog.Duration("interval", cfg.Interval),
		slog.Duration("max_age", cfg.MaxAge),
	)

	runOnce(ctx, log, esClient, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, esClient, cfg)
		}
	}
}

func connectWithRetry(ctx context.Context, log *slog.Logger, cfg *config.Retention) *esclient.Client {
	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		esClient, err := esclient.New(cfg.ElasticsearchAddr, cfg.ElasticsearchUser, cfg.ElasticsearchPass, log)
		if err != nil {
			log.Warn("failed to create elasticsearch client, retrying",
				slog.Any("err", err),
				slog.Int("attempt", i+1),
				slog.Int("max_retries", maxRetries),
			)
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := esClient.Ping(pingCtx)
			cancel()
			if pingErr == nil {
				return esClient
			}
			log.Warn("elasticsearch ping failed, retrying",
				slog.Any("err", pingErr),
				slog.Int("attempt", i+1),
				slog.Int("max_retries", maxRetries),
				slog.Duration("retry_in", retryDelay),
			)
		}

		select {
		case <-time.After(retryDelay):
			// Continue to next attempt
		case <-ctx.Done():
			log.Info("shutdown signal received during startup")
			os.Exit(0)
		}
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}

	return nil
}

// runOnce sweeps every configured index. A failing index is skipped so the
// remaining ones still get cleaned.
func runOnce(ctx context.Context, log *slog.Logger, esClient *esclient.Client, cfg *config.Retention) {
	subCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	indices := search.IndicesFromConfig(&cfg.Search)
	total := int64(0)

	for _, index := range []string{
		indices.CourtDecisions,
		indices.CourtReviews,
		indices.LegalArticles,
		indices.RuslawodChunks,
		indices.ProceduralForms,
	} {
		deleted, err := esClient.DeleteOlderThan(subCtx, index, "indexed_at", cfg.MaxAge, cfg.BatchSize)
		if err != nil {
			log.Warn("retention sweep failed for index (will retry on next interval)",
				slog.String("index", index),
				slog.Any("err", err),
			)
			continue
		}
		total += deleted
	}

	if total > 0 {
		log.Info("retention run completed", slog.Int64("deleted", total))
	} else {
		log.Debug("retention run completed, no stale chunks found")
	}
}
