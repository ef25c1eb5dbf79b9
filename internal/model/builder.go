package model

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/abramin/symmerge/internal/symbols"
)

// Walker produces the raw per-version symbol tree for one version.
type Walker interface {
	Walk(ctx context.Context, version symbols.Version) ([]*symbols.ModuleSymbol, error)
}

// WalkerFunc adapts a function to the Walker interface.
type WalkerFunc func(ctx context.Context, version symbols.Version) ([]*symbols.ModuleSymbol, error)

// Walk calls f.
func (f WalkerFunc) Walk(ctx context.Context, version symbols.Version) ([]*symbols.ModuleSymbol, error) {
	return f(ctx, version)
}

// BuildError reports the version whose model could not be built.
type BuildError struct {
	Version symbols.Version
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building model for version %s: %v", e.Version, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Builder turns walker output into version-tagged module mappings.
type Builder struct {
	walker Walker
	logger *slog.Logger
}

// NewBuilder creates a builder around walker. A nil logger uses slog.Default().
func NewBuilder(walker Walker, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{walker: walker, logger: logger}
}

// Build walks every version in order. The first failing version aborts the
// whole build; no partial model is returned.
func (b *Builder) Build(ctx context.Context, versions symbols.Versions) (*Models, error) {
	for i, v := range versions {
		if slices.Contains(versions[:i], v) {
			return nil, fmt.Errorf("duplicate version %q in version set", v)
		}
	}

	models := &Models{
		versions: slices.Clone(versions),
		modules:  make(map[symbols.Version]map[string]*symbols.ModuleSymbol, len(versions)),
	}
	for _, v := range versions {
		start := time.Now()
		raw, err := b.walker.Walk(ctx, v)
		if err != nil {
			return nil, &BuildError{Version: v, Err: err}
		}
		modules := make(map[string]*symbols.ModuleSymbol, len(raw))
		for _, mod := range raw {
			if mod == nil {
				continue
			}
			if err := mod.Validate(); err != nil {
				return nil, &BuildError{Version: v, Err: err}
			}
			if _, dup := modules[mod.FullName]; dup {
				b.logger.Warn("module reported twice, keeping the later one",
					"version", v, "module", mod.FullName)
			}
			modules[mod.FullName] = b.dedupe(v, mod)
		}
		models.modules[v] = modules
		b.logger.Debug("built version model",
			"version", v,
			"modules", len(modules),
			"duration", time.Since(start).Round(time.Millisecond))
	}
	return models, nil
}
