package app

import (
	"context"
	"errors"
	"time"

	"notebin/pkg/payments"
	"notebin/pkg/queue"
	"notebin/pkg/storage"
	"notebin/pkg/store"
)

// CleanupQueue schedules asynchronous reaping of a deleted file's leftover
// content versions.
type CleanupQueue interface {
	Enqueue(ctx context.Context, fileID string) (queue.JobStatus, error)
}

// Config wires the application's collaborators. Store, Sessions, and
// Verifier are required; the rest degrade gracefully when absent.
type Config struct {
	Store             store.Store
	Sessions          store.SessionStore
	SessionMeta       store.SessionMetaStore
	Blobs             storage.ObjectStore
	Cleanup           CleanupQueue
	Verifier          payments.Verifier
	SessionTTL        time.Duration
	AnonExpiryDefault time.Duration
}

// App is the core application service: authentication, the share/access
// authorization model, admin operations, and payment recording.
type App struct {
	store             store.Store
	sessions          store.SessionStore
	sessionMeta       store.SessionMetaStore
	blobs             storage.ObjectStore
	cleanup           CleanupQueue
	verifier          payments.Verifier
	sessionTTL        time.Duration
	anonExpiryDefault time.Duration
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("payment verifier is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.AnonExpiryDefault <= 0 {
		cfg.AnonExpiryDefault = 24 * time.Hour
	}
	return &App{
		store:             cfg.Store,
		sessions:          cfg.Sessions,
		sessionMeta:       cfg.SessionMeta,
		blobs:             cfg.Blobs,
		cleanup:           cfg.Cleanup,
		verifier:          cfg.Verifier,
		sessionTTL:        cfg.SessionTTL,
		anonExpiryDefault: cfg.AnonExpiryDefault,
	}, nil
}

// SessionTTL exposes the configured token lifetime (cookie max age).
func (a *App) SessionTTL() time.Duration {
	return a.sessionTTL
}

func contextWithShortTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (a *App) enqueueCleanup(fileID string) {
	if a.cleanup == nil {
		return
	}
	ctx, cancel := contextWithShortTimeout()
	defer cancel()
	_, _ = a.cleanup.Enqueue(ctx, fileID)
}
