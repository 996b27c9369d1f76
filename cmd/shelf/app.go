package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/shelf/internal/adapter"
	"github.com/mmcdole/shelf/internal/adapter/source/openlibrary"
	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/library"
	"github.com/mmcdole/shelf/internal/repository"
	"github.com/mmcdole/shelf/internal/store"
	"github.com/mmcdole/shelf/internal/worker"
)

// inboxBuffer lets a burst of completions land while the loop is busy
const inboxBuffer = 64

// app holds the services one invocation works with. It owns the instance
// lock, so only one app exists per data directory at a time.
type app struct {
	cfg     *adapter.Config
	logger  *slog.Logger
	lock    *adapter.InstanceLock
	db      *sql.DB
	cache   *store.SearchStore
	library *library.Service
	covers  *covers.Store

	pool  *worker.Pool
	inbox *worker.Inbox
}

func openApp(ctx context.Context, cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	lock, err := adapter.AcquireLock(cfg.LockPath())
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, lock: lock}

	a.db, err = repository.Open(cfg.DBPath())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	// A broken search cache only costs us offline answers.
	var cache domain.SearchCache
	a.cache, err = store.NewSearchStore(cfg.SearchCacheDir())
	if err != nil {
		logger.Warn("search cache unavailable", "dir", cfg.SearchCacheDir(), "error", err)
		a.cache = nil
	} else {
		cache = a.cache
	}

	searcher := openlibrary.NewClient(cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.Timeout, logger)
	a.library = library.NewService(repository.NewItemRepository(a.db), searcher, cache, library.Options{
		SearchLimit: cfg.OpenLibrary.Limit,
		CacheTTL:    cfg.OpenLibrary.CacheTTL,
	}, logger)

	if cfg.DevSeed {
		if _, err := a.library.EnsureSampleData(ctx); err != nil {
			logger.Warn("failed to seed sample data", "error", err)
		}
	}

	a.covers = covers.NewStore(cfg.CoverDir(),
		covers.WithBaseURL(cfg.Covers.Host),
		covers.WithTimeout(cfg.Covers.FetchTimeout),
		covers.WithLogger(logger),
	)
	return a, nil
}

// startWorkers creates the pool, its inbox and a cover pipeline on top.
// Whoever calls it must drain the inbox.
func (a *app) startWorkers(ctx context.Context) *covers.Pipeline {
	a.inbox = worker.NewInbox(inboxBuffer)
	a.pool = worker.NewPool(ctx, a.cfg.Pool.Workers, a.inbox, a.logger)
	return covers.NewPipeline(a.covers, a.pool, covers.PipelineOptions{
		Variant:           domain.SizeVariant(a.cfg.Covers.Variant),
		ThumbnailCapacity: a.cfg.Covers.ThumbnailCapacity,
	}, a.logger)
}

// close shuts down in dependency order: stop delivering, drain the pool,
// then the stores, then the lock.
func (a *app) close() error {
	var errs []error
	if a.inbox != nil {
		a.inbox.Close()
	}
	if a.pool != nil {
		a.pool.Shutdown(a.cfg.Pool.DrainTimeout)
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close search cache: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close library: %w", err))
		}
	}
	if err := a.lock.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release lock: %w", err))
	}
	return errors.Join(errs...)
}

// withApp opens the app for the duration of fn.
func (c *commandContext) withApp(ctx context.Context, fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg, c.log())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			c.log().Error("shutdown", "error", err)
		}
	}()
	return fn(a)
}
