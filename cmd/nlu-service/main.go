// cmd/nlu-service/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agentic-nlu/internal/common/cache"
	"agentic-nlu/internal/common/config"
	"agentic-nlu/internal/common/database"
	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/nlu/classifier"
	"agentic-nlu/internal/nlu/collector"
	"agentic-nlu/internal/nlu/extract"
	"agentic-nlu/internal/nlu/intent"
	"agentic-nlu/internal/nlu/llmx"
	"agentic-nlu/internal/nlu/ner"
	"agentic-nlu/internal/nlu/orchestrator"
	"agentic-nlu/internal/nlu/resolve"
	"agentic-nlu/internal/server"
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

	zapLog.Info("Starting nlu-service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry (intent definition store) ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Host != "" {
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
	} else {
		zapLog.Warn("postgres not configured, intent definitions run on the hardcoded table")
	}

	// --- Extraction cache (memory or shared Redis) ---
	ttl := time.Duration(cfg.Cache.TTL) * time.Second
	var extractionCache cache.Cache
	if cfg.Cache.Backend == "redis" {
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
		extractionCache = cache.NewRedis(redisClient.Client, ttl, "nlu:extract:")
		zapLog.Info("Redis extraction cache connected")
	} else {
		memCache := cache.NewMemory(ttl, cfg.Cache.MaxEntries)
		defer memCache.Stop()
		extractionCache = memCache
	}

	// --- Catalog resolver (HTTP search service or Elasticsearch) ---
	var resolver resolve.Resolver
	if cfg.Search.Backend == "elasticsearch" {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		resolver = resolve.NewESResolver(&resolve.ESConfig{
			StoreIndex: cfg.Search.StoreIndex,
			FoodIndex:  cfg.Search.FoodIndex,
			Limit:      cfg.Search.Limit,
		}, esClient.Client, log)
		zapLog.Info("Elasticsearch resolver connected")
	} else if cfg.Search.URL != "" {
		resolver = resolve.NewHTTPResolver(&resolve.Config{
			BaseURL: cfg.Search.URL,
			Limit:   cfg.Search.Limit,
			Timeout: time.Duration(cfg.Search.Timeout) * time.Millisecond,
		}, log)
	} else {
		zapLog.Warn("no search backend configured, extraction runs without resolution")
	}

	// --- NLU components ---
	llmProvider, err := llmx.ParseProvider(cfg.LLM.Provider)
	if err != nil {
		zapLog.Fatal("invalid llm provider", zap.Error(err))
	}

	fastClient := classifier.NewClient(&classifier.Config{
		BaseURL: cfg.NLU.ClassifierURL,
		Timeout: time.Duration(cfg.NLU.Timeout) * time.Millisecond,
	}, log)

	var llmClient llmx.Client
	if cfg.LLM.BaseURL != "" {
		llmClient = llmx.NewHTTPClient(&llmx.Config{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: time.Duration(cfg.LLM.Timeout) * time.Millisecond,
		}, log)
	} else {
		zapLog.Warn("llm gateway not configured, pipeline runs fast tier only")
	}

	var nerClient *ner.Client
	if cfg.NER.URL != "" {
		nerClient = ner.NewClient(&ner.Config{
			BaseURL:       cfg.NER.URL,
			Timeout:       time.Duration(cfg.NER.Timeout) * time.Millisecond,
			ProbeInterval: time.Duration(cfg.NER.ProbeInterval) * time.Second,
		}, log)
		nerClient.StartProbing(ctx)
	}

	col := collector.NewClient(&collector.Config{
		BaseURL: cfg.Collector.URL,
		Enabled: cfg.Collector.Enabled,
	}, log)

	var llmExtractor *extract.LLMExtractor
	if llmClient != nil {
		llmExtractor = extract.NewLLMExtractor(llmClient, &extract.LLMConfig{
			Provider:    llmProvider,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}, extractionCache, col, log)
	}

	var nerDep extract.NERClient
	if nerClient != nil {
		nerDep = nerClient
	}
	var llmDep extract.LLMEntityExtractor
	if llmExtractor != nil {
		llmDep = llmExtractor
	}
	extractor := extract.NewExtractor(nerDep, llmDep, resolver, log)

	orch := orchestrator.New(fastClient, llmClient, &orchestrator.Config{
		FastConfidenceThreshold: cfg.NLU.FastConfidenceThreshold,
		AgenticEnabled:          cfg.NLU.AgenticFallbackEnabled,
		Provider:                llmProvider,
		Temperature:             cfg.LLM.Temperature,
	}, log)

	var intentStore *intent.Store
	if pg != nil {
		intentStore = intent.NewStore(pg.DB)
	}
	intents := intent.NewManager(intentStore,
		time.Duration(cfg.NLU.IntentRefreshInterval)*time.Second, log)
	intents.StartRefreshing(ctx)

	// --- HTTP server ---
	deps := &server.Dependencies{
		Classifier: orch,
		Extractor:  extractor,
		Intents:    intents,
		Version:    cfg.App.Version,
	}
	if intentStore != nil {
		deps.IntentStore = intentStore
	}
	if nerClient != nil {
		deps.NER = nerClient
	}

	srv := server.New(&cfg.Server, deps, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown error", zap.Error(err))
	}

	zapLog.Info("nlu-service stopped gracefully")
}
