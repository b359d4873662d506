// cmd/api-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/api"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/cache"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/config"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/database"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/logger"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/common/observability"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/census"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/deals"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/fred"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/funds"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/listings"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/marketdata"
	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/services/rentcast"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting api-server...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Wire services ---
	store := cache.NewRedis(redisClient.Client)

	censusSvc := census.New(cfg.APIs.Census,
		time.Duration(cfg.Cache.CensusTTL)*time.Second, store, log)
	rentcastSvc := rentcast.New(cfg.APIs.RentCast,
		time.Duration(cfg.Cache.RentCastTTL)*time.Second, store, log)
	fredSvc := fred.New(cfg.APIs.FRED,
		time.Duration(cfg.Cache.FREDTTL)*time.Second, store, log)
	marketSvc := marketdata.New(censusSvc, rentcastSvc, fredSvc, log)

	dealSvc := deals.NewService(deals.NewRepository(pg.DB), log)
	fundSvc := funds.NewService(funds.NewRepository(pg.DB), log)

	listingSvc := listings.NewService(esClient.Client, cfg.Database.Elasticsearch.ListingsIndex, log)
	if err := listingSvc.EnsureIndex(ctx); err != nil {
		zapLog.Fatal("listings index setup failed", zap.Error(err))
	}

	server := api.NewServer(*cfg, api.Dependencies{
		Demographics: censusSvc,
		Rentals:      rentcastSvc,
		Economy:      fredSvc,
		Market:       marketSvc,
		Deals:        dealSvc,
		Funds:        fundSvc,
		Listings:     listingSvc,
		Health:       healthCheck(pg, redisClient, esClient),
		Obs:          obs,
	}, log)
	defer server.Close()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("api-server stopped gracefully")
}

func healthCheck(pg *database.PostgresClient, redisClient *database.RedisClient, esClient *database.ElasticsearchClient) api.HealthCheck {
	return func(ctx context.Context) map[string]string {
		components := map[string]string{
			"postgres":      "up",
			"redis":         "up",
			"elasticsearch": "up",
		}
		if err := pg.Ping(ctx); err != nil {
			components["postgres"] = "down"
		}
		if err := redisClient.Ping(ctx); err != nil {
			components["redis"] = "down"
		}
		if err := esClient.Ping(ctx); err != nil {
			components["elasticsearch"] = "down"
		}
		return components
	}
}
