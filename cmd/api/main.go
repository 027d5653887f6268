package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/careercounsel/internal/accounts"
	"github.com/geocoder89/careercounsel/internal/ai"
	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/cache"
	"github.com/geocoder89/careercounsel/internal/config"
	httpx "github.com/geocoder89/careercounsel/internal/http"
	"github.com/geocoder89/careercounsel/internal/http/middlewares"
	"github.com/geocoder89/careercounsel/internal/notifications"
	"github.com/geocoder89/careercounsel/internal/observability"
	"github.com/geocoder89/careercounsel/internal/profiles"
	"github.com/geocoder89/careercounsel/internal/security"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Load the config set up
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.OtelEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.OtelEndpoint, cfg.Env)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			sctx, scancel := config.WithTimeout(5 * time.Second)
			defer scancel()
			_ = shutdownTracer(sctx)
		}()
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// storage
	b := &backends{cfg: cfg, log: log, aws: &awsLoader{cfg: cfg}}

	raw, err := b.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	defer func() { _ = raw.Close() }()
	st := store.Instrument(raw, prom)

	// services
	hasher, err := security.NewHasher(cfg.PasswordMode)
	if err != nil {
		return err
	}
	accountsSvc := accounts.NewService(st.Users, hasher)
	profilesSvc := profiles.NewService(st.Users, log)

	created, err := accountsSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info("admin account created", "username", cfg.AdminUsername)
	}

	gw, err := ai.New(ctx, cfg, b.aws.Load)
	if err != nil {
		return fmt.Errorf("ai provider: %w", err)
	}
	gw = ai.Observe(gw, cfg.AIProvider, prom)

	var gaps *cache.Cache[ai.Gap]
	if cfg.GapCacheTTL > 0 {
		gaps = cache.New[ai.Gap](cfg.GapCacheTTL, 1024)
	}

	pub, closePub, err := b.openPublisher(ctx)
	if err != nil {
		return fmt.Errorf("open %s publisher: %w", cfg.NotifyBackend, err)
	}
	defer func() { _ = closePub() }()

	notifier := notifications.NewNotifier(
		notifications.NewProtectedPublisher(pub, notifications.ProtectedPublisherConfig{Timeout: cfg.NotifyTimeout}, log),
		log,
		prom,
	)

	var rdb *redis.Client
	if b.redis != nil {
		rdb = b.redis.Raw()
		// the store owns the client only when it is the redis backend
		if cfg.StoreBackend != "redis" {
			defer func() { _ = b.redis.Close() }()
		}
	}
	lim, err := middlewares.NewRateLimiter(cfg.RateLimit, rdb)
	if err != nil {
		return err
	}

	router := httpx.NewRouter(httpx.Deps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Sessions: auth.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.Env == "prod"),
		Accounts: accountsSvc,
		Profiles: profilesSvc,
		Gateway:  gw,
		Notifier: notifier,
		Prom:     prom,
		Gatherer: reg,
		Limiter:  lim,
		GapCache: gaps,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// roadmap generation waits on the model
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			"port", cfg.Port,
			"env", cfg.Env,
			"store", cfg.StoreBackend,
			"ai", cfg.AIProvider,
			"notify", cfg.NotifyBackend,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, scancel := config.WithTimeout(10 * time.Second)
		defer scancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")
	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
	return nil
}
