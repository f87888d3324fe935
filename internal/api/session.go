package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fileset/internal/catalog"
	"fileset/internal/config"
	"fileset/internal/logging"
)

// SessionOptions controls how a Session opens the catalog.
type SessionOptions struct {
	// Reset deletes the catalog database before opening it.
	Reset bool
	// ReadOnly skips the exclusive catalog lock and opens an existing
	// catalog without creating directories, files, or schema.
	ReadOnly bool
}

// Session is one command's handle on the catalog.
type Session struct {
	Config *config.Config
	Store  *catalog.Store
	Logger *slog.Logger
	RunID  string

	lock *catalog.Lock
}

// OpenSession locks (unless read-only), optionally resets, and opens the
// catalog named by cfg. A read-only session on a missing catalog fails with
// catalog.ErrNoCatalog. The returned context carries the session run id.
func OpenSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts SessionOptions) (*Session, context.Context, error) {
	if cfg == nil {
		return nil, ctx, errors.New("config is required")
	}
	if opts.Reset && opts.ReadOnly {
		return nil, ctx, errors.New("cannot reset the catalog in a read-only session")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Session{Config: cfg, Logger: logger, RunID: uuid.NewString()}
	ctx = logging.WithRunID(ctx, s.RunID)

	if opts.ReadOnly {
		store, err := catalog.OpenExisting(ctx, cfg.Paths.Database)
		if err != nil {
			return nil, ctx, err
		}
		s.Store = store
		return s, ctx, nil
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, ctx, fmt.Errorf("ensure directories: %w", err)
	}

	lock, err := catalog.AcquireLock(cfg.Paths.Database)
	if err != nil {
		return nil, ctx, err
	}
	s.lock = lock
	if opts.Reset {
		if err := catalog.Reset(cfg.Paths.Database); err != nil {
			_ = s.lock.Release()
			return nil, ctx, err
		}
		logging.WithContext(ctx, logger).Info("catalog reset", logging.String("database", cfg.Paths.Database))
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		_ = s.lock.Release()
		return nil, ctx, err
	}
	s.Store = store
	return s, ctx, nil
}

// Close closes the catalog and releases the lock.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	return errors.Join(s.Store.Close(), s.lock.Release())
}
