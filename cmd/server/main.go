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

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/pricecompare/backend/config"
	httpDelivery "github.com/pricecompare/backend/internal/delivery/http"
	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/aliexpress"
	"github.com/pricecompare/backend/internal/infrastructure/cache"
	"github.com/pricecompare/backend/internal/infrastructure/ebay"
	"github.com/pricecompare/backend/internal/infrastructure/etsy"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
	"github.com/pricecompare/backend/internal/random"
	"github.com/pricecompare/backend/internal/usecase"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.Server)
	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("ebay_env", cfg.Ebay.Environment).
		Msg("starting PriceCompare backend")

	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Result cache
	var (
		resultCache domain.CacheRepository
		memoryCache *cache.MemoryCache
	)
	switch cfg.Cache.Type {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis unavailable")
		}
		redisCache := cache.NewRedisCache(client, "")
		defer redisCache.Close()
		resultCache = redisCache
		logger.Info().Msg("redis cache connected")
	default:
		memoryCache = cache.NewMemoryCache()
		resultCache = memoryCache
	}

	// Marketplace clients
	upstreamOpts := upstream.Options{
		Timeout:       cfg.Upstream.Timeout,
		MaxAttempts:   cfg.Upstream.MaxAttempts,
		Backoff:       cfg.Upstream.Backoff,
		RatePerSecond: cfg.Upstream.RatePerSecond,
	}

	ebayCfg := ebay.Config{
		ClientID:     cfg.Ebay.ClientID,
		ClientSecret: cfg.Ebay.ClientSecret,
		Environment:  cfg.Ebay.Environment,
		Scope:        cfg.Ebay.Scope,
		IdentityURL:  cfg.Ebay.IdentityURL,
		APIURL:       cfg.Ebay.APIURL,
		TokenTTL:     cfg.Cache.TokenTTL,
	}
	ebayRequester := upstream.NewRequester("ebay", upstreamOpts, logger)
	ebayClient := ebay.NewClient(
		ebayCfg,
		ebay.NewTokenCache(ebayCfg, resultCache, ebayRequester, logger),
		ebayRequester,
		logger,
	)
	etsyClient := etsy.NewClient(
		cfg.Etsy.APIKey,
		cfg.Etsy.BaseURL,
		upstream.NewRequester("etsy", upstreamOpts, logger),
		logger,
	)
	aliexpressClient := aliexpress.NewClient(
		cfg.AliExpress.RapidAPIKey,
		cfg.AliExpress.Host,
		cfg.AliExpress.BaseURL,
		upstream.NewRequester("aliexpress", upstreamOpts, logger),
		logger,
	)

	// Initialize usecase layer
	searchService := usecase.NewSearchService(
		resultCache,
		ebayClient,
		etsyClient,
		aliexpressClient,
		usecase.DefaultPolicyFilter(),
		usecase.NewFallbackGenerator(random.NewTimeSeeded(), nil),
		usecase.SearchServiceConfig{
			CacheTTL:    cfg.Cache.TTL,
			FallbackTTL: cfg.Cache.FallbackTTL,
		},
		logger,
	)

	// HTTP delivery
	limiter := httpDelivery.NewIPRateLimiter(cfg.RateLimit.PerIP, cfg.RateLimit.Window)
	handler := httpDelivery.NewHandler(searchService, resultCache, cfg.Server.Environment, logger)
	router := httpDelivery.SetupRouter(cfg, handler, limiter, logger)

	// Housekeeping
	scheduler := cron.New()
	spec := fmt.Sprintf("@every %s", cfg.Cache.SweepInterval)
	if _, err := scheduler.AddFunc(spec, func() {
		ev := logger.Debug().Int("limiter_pruned", limiter.Prune(cfg.RateLimit.Window))
		if memoryCache != nil {
			ev = ev.Int("cache_swept", memoryCache.Sweep())
		}
		ev.Msg("housekeeping")
	}); err != nil {
		logger.Fatal().Err(err).Str("spec", spec).Msg("invalid sweep interval")
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("stopped")
}

// newLogger writes JSON in production and a console format elsewhere
func newLogger(server config.ServerConfig) zerolog.Logger {
	if server.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return zerolog.New(os.Stdout).With().Timestamp().Str("service", "pricecompare").Logger()
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}
