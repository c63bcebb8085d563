package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// RebuildFunc is invoked after the inventory file changes.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors an inventory CSV and triggers a rebuild when it
// changes. Rebuilds are rate limited so an editor writing the file in
// several bursts only triggers one.
type Watcher struct {
	path    string
	rebuild RebuildFunc
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Options configures a Watcher.
type Options struct {
	// MinInterval is the minimum time between rebuilds. Zero means one
	// second.
	MinInterval time.Duration

	Logger *slog.Logger
}

// New creates a watcher for the inventory file at path.
func New(path string, rebuild RebuildFunc, opts *Options) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("inventory path required")
	}
	if rebuild == nil {
		return nil, fmt.Errorf("rebuild function required")
	}

	minInterval := time.Second
	logger := slog.Default()
	if opts != nil {
		if opts.MinInterval > 0 {
			minInterval = opts.MinInterval
		}
		if opts.Logger != nil {
			logger = opts.Logger
		}
	}

	return &Watcher{
		path:    path,
		rebuild: rebuild,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		logger:  logger,
	}, nil
}

// Watch blocks, rebuilding whenever the inventory file is written,
// until the context is canceled. The parent directory is watched so
// editors that replace the file with a rename are still seen.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("failed to resolve inventory path: %w", err)
	}

	w.logger.Info("watching inventory file", "path", target)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.matches(event, target) {
				continue
			}
			if !w.limiter.Allow() {
				w.logger.Debug("rebuild suppressed by rate limit", "path", target)
				continue
			}
			w.logger.Info("inventory changed, rebuilding", "op", event.Op.String())
			if err := w.rebuild(ctx); err != nil {
				w.logger.Error("rebuild failed", "error", err)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) matches(event fsnotify.Event, target string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return abs == target
}
