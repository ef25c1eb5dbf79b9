package model

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramin/symmerge/internal/symbols"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func staticWalker(trees map[symbols.Version][]*symbols.ModuleSymbol) Walker {
	return WalkerFunc(func(ctx context.Context, v symbols.Version) ([]*symbols.ModuleSymbol, error) {
		return trees[v], nil
	})
}

func TestBuild(t *testing.T) {
	walker := staticWalker(map[symbols.Version][]*symbols.ModuleSymbol{
		"27": {{FullName: "legacy"}, {FullName: "os"}},
		"38": {{FullName: "os"}, {FullName: "asyncio"}},
	})

	models, err := NewBuilder(walker, quiet).Build(context.Background(), symbols.Versions{"27", "38"})
	require.NoError(t, err)

	assert.Equal(t, symbols.Versions{"27", "38"}, models.Versions())
	assert.Equal(t, []string{"asyncio", "legacy", "os"}, models.ModuleNames())
	assert.NotNil(t, models.Module("27", "legacy"))
	assert.Nil(t, models.Module("38", "legacy"))
	assert.Len(t, models.Modules("38"), 2)
}

func TestBuildWalkerFailure(t *testing.T) {
	cause := errors.New("stub directory unreadable")
	calls := 0
	walker := WalkerFunc(func(ctx context.Context, v symbols.Version) ([]*symbols.ModuleSymbol, error) {
		calls++
		if v == "35" {
			return nil, cause
		}
		return []*symbols.ModuleSymbol{{FullName: "m"}}, nil
	})

	models, err := NewBuilder(walker, quiet).Build(context.Background(), symbols.Versions{"27", "35", "38"})
	require.Error(t, err)
	assert.Nil(t, models, "no partial model on failure")
	assert.Equal(t, 2, calls, "build stops at the failing version")

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, symbols.Version("35"), buildErr.Version)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "version 35")
}

func TestBuildRejectsDuplicateVersions(t *testing.T) {
	walker := staticWalker(nil)

	_, err := NewBuilder(walker, quiet).Build(context.Background(), symbols.Versions{"27", "38", "27"})
	assert.ErrorContains(t, err, "duplicate version")
}

func TestBuildDuplicateModuleKeepsLater(t *testing.T) {
	first := &symbols.ModuleSymbol{FullName: "m"}
	second := &symbols.ModuleSymbol{FullName: "m", Functions: []*symbols.FunctionSymbol{{Name: "f", FullName: "m.f"}}}
	walker := staticWalker(map[symbols.Version][]*symbols.ModuleSymbol{
		"38": {first, nil, second},
	})

	models, err := NewBuilder(walker, quiet).Build(context.Background(), symbols.Versions{"38"})
	require.NoError(t, err)
	assert.Same(t, second, models.Module("38", "m"))
}

func TestBuildEmptyVersionSet(t *testing.T) {
	models, err := NewBuilder(staticWalker(nil), nil).Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, models.ModuleNames())
}

func TestNewModelsKeepsOrder(t *testing.T) {
	models := NewModels(symbols.Versions{"39", "27"}, map[symbols.Version]map[string]*symbols.ModuleSymbol{
		"27": {"m": {FullName: "m"}},
	})

	assert.Equal(t, symbols.Versions{"39", "27"}, models.Versions())
	assert.Nil(t, models.Module("39", "m"))
	assert.NotNil(t, models.Module("27", "m"))
	assert.Equal(t, []string{"m"}, models.ModuleNames())
}

func TestBuildRejectsNullSymbols(t *testing.T) {
	walker := staticWalker(map[symbols.Version][]*symbols.ModuleSymbol{
		"27": {{FullName: "m"}},
		"38": {{FullName: "m", Functions: []*symbols.FunctionSymbol{{Name: "f", FullName: "m.f"}, nil}}},
	})

	models, err := NewBuilder(walker, quiet).Build(context.Background(), symbols.Versions{"27", "38"})
	require.Error(t, err)
	assert.Nil(t, models)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, symbols.Version("38"), buildErr.Version)
	assert.ErrorIs(t, err, symbols.ErrNullSymbol)
	assert.Contains(t, err.Error(), "module m")
}

func TestBuildRepeatedSymbolKeepsLater(t *testing.T) {
	first := &symbols.FunctionSymbol{Name: "f", FullName: "m.f"}
	second := &symbols.FunctionSymbol{Name: "f", FullName: "m.f", ReturnType: "int"}
	g := &symbols.FunctionSymbol{Name: "g", FullName: "m.g"}
	oldMethod := &symbols.FunctionSymbol{Name: "h", FullName: "m.C.h"}
	newMethod := &symbols.FunctionSymbol{Name: "h", FullName: "m.C.h", IsStatic: true}
	cls := &symbols.ClassSymbol{Name: "C", FullName: "m.C", Methods: []*symbols.FunctionSymbol{oldMethod, newMethod}}
	raw := &symbols.ModuleSymbol{
		FullName:  "m",
		Functions: []*symbols.FunctionSymbol{first, g, second},
		Classes:   []*symbols.ClassSymbol{cls},
	}
	walker := staticWalker(map[symbols.Version][]*symbols.ModuleSymbol{"38": {raw}})

	models, err := NewBuilder(walker, quiet).Build(context.Background(), symbols.Versions{"38"})
	require.NoError(t, err)

	mod := models.Module("38", "m")
	require.Len(t, mod.Functions, 2)
	assert.Same(t, g, mod.Functions[0])
	assert.Same(t, second, mod.Functions[1])
	require.Len(t, mod.Classes, 1)
	require.Len(t, mod.Classes[0].Methods, 1)
	assert.Same(t, newMethod, mod.Classes[0].Methods[0])

	assert.Len(t, raw.Functions, 3, "walker output is not mutated")
	assert.Len(t, cls.Methods, 2, "walker output is not mutated")
}

func TestBuildUniqueSymbolsKeepModule(t *testing.T) {
	raw := &symbols.ModuleSymbol{
		FullName:  "m",
		Functions: []*symbols.FunctionSymbol{{Name: "f", FullName: "m.f"}, {Name: "g", FullName: "m.g"}},
		Classes:   []*symbols.ClassSymbol{{Name: "C", FullName: "m.C", Methods: []*symbols.FunctionSymbol{{Name: "h", FullName: "m.C.h"}}}},
	}
	walker := staticWalker(map[symbols.Version][]*symbols.ModuleSymbol{"38": {raw}})

	models, err := NewBuilder(walker, quiet).Build(context.Background(), symbols.Versions{"38"})
	require.NoError(t, err)
	assert.Same(t, raw, models.Module("38", "m"))
}
