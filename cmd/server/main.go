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

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"veil/internal/platform/config"
	"veil/internal/platform/httpserver"
	"veil/internal/platform/logger"
	platformmetrics "veil/internal/platform/metrics"
	platformmiddleware "veil/internal/platform/middleware"
	platformredis "veil/internal/platform/redis"
	"veil/internal/profile/handler"
	"veil/internal/profile/metrics"
	"veil/internal/profile/service"
	accountstore "veil/internal/profile/store/account"
	profilestore "veil/internal/profile/store/profile"
	ratelimitmiddleware "veil/internal/ratelimit/middleware"
	"veil/internal/ratelimit/store/bucket"
	"veil/internal/zk"
	"veil/pkg/platform/middleware/metadata"
	"veil/pkg/platform/middleware/recovery"
	"veil/pkg/platform/middleware/requestid"
	"veil/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal/profile.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if cfg.IssuerSecret == "" {
		return errors.New("VEIL_ISSUER_SECRET is required")
	}
	issuer, err := zk.NewStandInIssuer([]byte(cfg.IssuerSecret))
	if err != nil {
		return fmt.Errorf("create credential issuer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var accounts service.AccountStore
	var profiles service.ProfileStore
	var pool *pgxpool.Pool
	if cfg.PostgresURL != "" {
		pool, err = pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		accountStore, err := accountstore.NewPostgresStore(pool)
		if err != nil {
			return err
		}
		profileStore, err := profilestore.NewPostgresStore(pool)
		if err != nil {
			return err
		}
		accounts, profiles = accountStore, profileStore
		log.Info("using postgres stores")
	} else {
		accounts = accountstore.NewInMemoryStore()
		profiles = profilestore.NewInMemoryStore()
		log.Warn("postgres not configured, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cached, err := accountstore.NewCachingStore(accounts, redisClient.Client,
			accountstore.WithCacheTTL(cfg.AccountCacheTTL),
			accountstore.WithCacheLogger(log),
		)
		if err != nil {
			return err
		}
		accounts = cached
		log.Info("account cache enabled", "ttl", cfg.AccountCacheTTL)
	}

	profileMetrics := metrics.New()
	svc, err := service.New(accounts, profiles, issuer,
		service.WithLogger(log),
		service.WithMetrics(profileMetrics),
		service.WithCredentialWindow(cfg.CredentialWindow),
	)
	if err != nil {
		return fmt.Errorf("create profile service: %w", err)
	}

	router := chi.NewRouter()
	router.Use(requestid.Middleware)
	router.Use(requesttime.Middleware)
	router.Use(metadata.ClientMetadata)
	router.Use(recovery.Middleware(log))
	router.Use(platformmetrics.NewHTTP().Middleware)
	router.Use(platformmiddleware.ClientPlatform(profileMetrics))
	if cfg.RateLimit > 0 {
		limiter := ratelimitmiddleware.New(bucket.NewInMemoryBucketStore(), log, cfg.RateLimit, cfg.RateWindow)
		router.Use(limiter.RateLimit)
	}

	handler.New(svc, log).Register(router)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
