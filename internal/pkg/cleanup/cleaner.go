// Package cleanup removes uploaded files once the database write that
// orphaned them has succeeded. Removal never fails the originating request.
package cleanup

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Remover deletes one stored file by its public path.
type Remover interface {
	Remove(ctx context.Context, publicPath string) error
}

// Cleaner schedules the removal of stored files.
type Cleaner interface {
	Cleanup(ctx context.Context, paths ...string)
}

// compact drops blank and duplicate paths.
func compact(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// InlineCleaner removes files synchronously and logs failures.
type InlineCleaner struct {
	store    Remover
	failures prometheus.Counter
	logger   zerolog.Logger
}

// NewInlineCleaner creates a cleaner removing files in the caller's goroutine.
// failures may be nil.
func NewInlineCleaner(store Remover, failures prometheus.Counter, logger zerolog.Logger) *InlineCleaner {
	return &InlineCleaner{store: store, failures: failures, logger: logger}
}

// Cleanup implements Cleaner.
func (c *InlineCleaner) Cleanup(ctx context.Context, paths ...string) {
	_ = c.remove(ctx, compact(paths))
}

func (c *InlineCleaner) remove(ctx context.Context, paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := c.store.Remove(ctx, p); err != nil {
			c.logger.Warn().Err(err).Str("path", p).Msg("Failed to remove stored file")
			if c.failures != nil {
				c.failures.Inc()
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
