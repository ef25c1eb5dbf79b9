package merge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abramin/symmerge/internal/symbols"
)

// Source is a read-only, already-built set of per-version symbol trees.
type Source interface {
	// Versions returns the version tags in enumeration order.
	Versions() symbols.Versions
	// ModuleNames returns the sorted union of module names across all versions.
	ModuleNames() []string
	// Module returns the module as seen in v, or nil when v does not have it.
	Module(v symbols.Version, name string) *symbols.ModuleSymbol
}

// Aggregator merges every module of a Source.
type Aggregator struct {
	workers int
	logger  *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers sets how many modules are merged concurrently. Values below 2
// merge sequentially.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		a.workers = n
	}
}

// WithLogger sets the logger used for progress reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates an aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		workers: 1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Merge returns the mapping from module name to merged module. Modules are
// independent, so they may be merged concurrently; versions within a module
// are always folded in enumeration order.
func (a *Aggregator) Merge(ctx context.Context, src Source) (map[string]*symbols.MergedModule, error) {
	start := time.Now()
	names := src.ModuleNames()
	results := make([]*symbols.MergedModule, len(names))

	if a.workers < 2 {
		for i, name := range names {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("merging modules: %w", err)
			}
			results[i] = MergeModule(name, src)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.workers)
		for i, name := range names {
			i, name := i, name
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = MergeModule(name, src)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("merging modules: %w", err)
		}
	}

	merged := make(map[string]*symbols.MergedModule, len(names))
	for i, name := range names {
		merged[name] = results[i]
	}
	a.logger.Info("merged modules",
		"modules", len(merged),
		"versions", len(src.Versions()),
		"workers", a.workers,
		"duration", time.Since(start).Round(time.Millisecond))
	return merged, nil
}
