package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"notebin/internal/app"
	"notebin/internal/config"
	"notebin/internal/ratelimit"
	"notebin/internal/server"
	"notebin/internal/util"
	"notebin/pkg/payments"
	"notebin/pkg/queue"
	"notebin/pkg/storage"
	"notebin/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	db, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	sessions, err := store.NewJWTSessionStore(cfg.JWTSecret, sessionTTL, store.JWTOptions{})
	if err != nil {
		log.Fatalf("failed to init session store: %v", err)
	}
	sessionMeta := store.NewRedisSessionMetaStore(cfg.RedisAddr, cfg.RedisPassword)

	var blobs storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
		blobs = minioStore
	} else {
		slog.Warn("object storage not configured, avatar endpoints disabled")
	}

	cleanup, err := queue.NewRedisJobQueue(queue.RedisQueueConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatalf("failed to init cleanup queue: %v", err)
	}

	verifier, err := payments.NewHMACVerifier(cfg.PaymentKeySecret)
	if err != nil {
		log.Fatalf("failed to init payment verifier: %v", err)
	}

	appCore, err := app.New(app.Config{
		Store:             db,
		Sessions:          sessions,
		SessionMeta:       sessionMeta,
		Blobs:             blobs,
		Cleanup:           cleanup,
		Verifier:          verifier,
		SessionTTL:        sessionTTL,
		AnonExpiryDefault: time.Duration(cfg.AnonExpiryHours) * time.Hour,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanup.Start(ctx, cfg.CleanupWorkers, appCore.CleanupHandler)
	appCore.StartJanitor(ctx, time.Duration(cfg.JanitorIntervalMins)*time.Minute)

	window := time.Duration(cfg.RateLimitWindowSecs) * time.Second
	loginLimiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "notebin:ratelimit:login", cfg.LoginRateLimit, window)
	if err != nil {
		log.Fatalf("failed to init login rate limiter: %v", err)
	}
	anonLimiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "notebin:ratelimit:anon", cfg.AnonymousRateLimit, window)
	if err != nil {
		log.Fatalf("failed to init anonymous rate limiter: %v", err)
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		LoginLimiter:   loginLimiter,
		AnonLimiter:    anonLimiter,
		TrustedProxies: trusted,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		Production:     cfg.Production(),
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server listening", "addr", addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
