package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/user/recipe-service/internal/adapter/chromedp_fetcher"
	"github.com/user/recipe-service/internal/adapter/filestore"
	"github.com/user/recipe-service/internal/adapter/httpfetch"
	"github.com/user/recipe-service/internal/adapter/postgres"
	redis_adapter "github.com/user/recipe-service/internal/adapter/redis"
	"github.com/user/recipe-service/internal/delivery/http/handler"
	"github.com/user/recipe-service/internal/delivery/http/router"
	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/sites"
	"github.com/user/recipe-service/internal/proxy"
	"github.com/user/recipe-service/internal/repository"
	"github.com/user/recipe-service/internal/usecase"
	"github.com/user/recipe-service/pkg/config"
	"github.com/user/recipe-service/pkg/imaging"
	"github.com/user/recipe-service/pkg/logger"
	"github.com/user/recipe-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Parsers ---
	registry, err := sites.Default()
	if err != nil {
		log.Fatal("Invalid parser registry", zap.Error(err))
	}
	log.Info("Parsers registered", zap.Int("count", registry.Len()))

	ctx := context.Background()
	checks := map[string]handler.Pinger{}

	// --- Optional storage ---
	var history repository.ParseHistoryRepository
	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal("Unable to connect to database", zap.Error(err))
		}
		defer dbpool.Close()
		repo := postgres.NewParseHistoryRepo(dbpool)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatal("Could not migrate parse history table", zap.Error(err))
		}
		history = repo
		checks["postgres"] = repo
		log.Info("PostgreSQL connection pool established")
	}

	var cache repository.ParseCacheRepository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		repo := redis_adapter.NewParseCacheRepo(rdb)
		if err := repo.Ping(ctx); err != nil {
			log.Fatal("Unable to connect to Redis", zap.Error(err))
		}
		cache = repo
		checks["redis"] = repo
		log.Info("Redis connection established")
	}

	osFs := afero.NewOsFs()
	store, err := filestore.New(osFs, cfg.TmpDir, cfg.TmpURLPrefix)
	if err != nil {
		log.Fatal("Could not prepare temporary files directory", zap.String("dir", cfg.TmpDir), zap.Error(err))
	}

	// --- Fetchers ---
	proxies, err := proxy.NewManager(cfg.ProxyURLs, cfg.UserAgents)
	if err != nil {
		log.Fatal("Invalid proxy configuration", zap.Error(err))
	}
	client := httpfetch.NewClient(cfg.FetchTimeout, cfg.MaxImageBytes, proxies)

	var pages repository.PageFetcher = client
	if len(cfg.BrowserDomains) > 0 {
		browser := chromedp_fetcher.NewChromedpFetcher(cfg.BrowserConcurrency, cfg.BrowserTimeout, proxies.UserAgent(), log)
		defer browser.Close()
		pages = httpfetch.NewRouter(client, browser, cfg.BrowserDomains)
		log.Info("Headless browser enabled", zap.Strings("domains", cfg.BrowserDomains))
	}

	// --- Use Cases ---
	scraper := parser.NewScraper(pages, log, m)
	images := usecase.NewImageDownloader(client, store, imaging.Options{
		MaxWidth:  cfg.ImageMaxWidth,
		Quality:   cfg.JPEGQuality,
		MaxPixels: cfg.ImageMaxPixels,
	}, log, m)
	recipes := usecase.NewRecipeParser(registry, scraper, images, cache, history, cfg.CacheTTL, log, m)

	janitor := usecase.NewTmpJanitor(store, cfg.TmpMaxAge, cfg.TmpCleanInterval, log, m)
	janitor.Start()

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(recipes, checks, log)
	httpRouter := router.New(apiHandler, log, m, router.Options{
		TmpPrefix: cfg.TmpURLPrefix,
		TmpFiles:  afero.NewHttpFs(osFs).Dir(cfg.TmpDir),
		Timeout:   cfg.FetchTimeout*2 + cfg.BrowserTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.FetchTimeout*2 + cfg.BrowserTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()
	log.Info("Server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	janitor.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}
