package merge

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramin/symmerge/internal/export"
	"github.com/abramin/symmerge/internal/model"
	"github.com/abramin/symmerge/internal/store"
	"github.com/abramin/symmerge/internal/symbols"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// trees returns fresh per-version trees on every call so that two builds
// never share symbol values.
func trees() map[symbols.Version][]*symbols.ModuleSymbol {
	out := map[symbols.Version][]*symbols.ModuleSymbol{}
	versions := []symbols.Version{"27", "35", "36", "37", "38", "39"}
	for i, v := range versions {
		for _, name := range []string{"zlib", "os", "os.path", "asyncio", "legacy"} {
			if name == "legacy" && i > 0 || name == "asyncio" && i < 2 {
				continue
			}
			mod := &symbols.ModuleSymbol{FullName: name}
			params := []string{"x"}
			if i >= 3 {
				params = append(params, "y")
			}
			mod.Functions = []*symbols.FunctionSymbol{function(name, "f", params...), function(name, "g")}
			var bases []string
			if i%2 == 0 {
				bases = []string{"Base"}
			}
			mod.Classes = []*symbols.ClassSymbol{class(name, "C", bases, function(name+".C", "m", params...), function(name+".C", "n"))}
			out[v] = append(out[v], mod)
		}
	}
	return out
}

func mergeTrees(t *testing.T, workers int, trees map[symbols.Version][]*symbols.ModuleSymbol) (symbols.Versions, map[string]*symbols.MergedModule) {
	t.Helper()
	versions := symbols.Versions{"27", "35", "36", "37", "38", "39"}
	walker := model.WalkerFunc(func(ctx context.Context, v symbols.Version) ([]*symbols.ModuleSymbol, error) {
		return trees[v], nil
	})
	models, err := model.NewBuilder(walker, quiet).Build(context.Background(), versions)
	require.NoError(t, err)
	merged, err := NewAggregator(WithWorkers(workers), WithLogger(quiet)).Merge(context.Background(), models)
	require.NoError(t, err)
	return versions, merged
}

func TestPipelineOutputIsDeterministic(t *testing.T) {
	versions, first := mergeTrees(t, 1, trees())
	want, err := export.Marshal(versions, first)
	require.NoError(t, err)

	for _, workers := range []int{1, 4, 1, 8} {
		versions, again := mergeTrees(t, workers, trees())
		got, err := export.Marshal(versions, again)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), "workers=%d", workers)
	}
}

func TestPipelineRepeatedNameInOneVersion(t *testing.T) {
	input := trees()
	// 38 reports os.f twice with equal signatures and os.g twice with
	// different ones; os.C.n is repeated inside the class.
	for _, mod := range input["38"] {
		if mod.FullName != "os" {
			continue
		}
		mod.Functions = append(mod.Functions, function("os", "f", "x", "y"), function("os", "g", "z"))
		mod.Classes[0].Methods = append(mod.Classes[0].Methods, function("os.C", "n"))
	}

	versions, merged := mergeTrees(t, 4, input)

	osMod := merged["os"]
	require.NotNil(t, osMod)
	coverage := func(name string, variants []*symbols.MergedFunction) {
		count := map[symbols.Version]int{}
		for _, v := range variants {
			for _, version := range v.ValidFor {
				count[version]++
			}
		}
		for version, n := range count {
			assert.Equal(t, 1, n, "%s: version %s appears %d times", name, version, n)
		}
	}
	coverage("os.f", osMod.Functions["os.f"])
	coverage("os.g", osMod.Functions["os.g"])
	for _, cls := range osMod.Classes["os.C"] {
		coverage("os.C.n", cls.Methods["os.C.n"])
	}

	g := osMod.Function("os.g", "38")
	require.NotNil(t, g)
	assert.Len(t, g.Symbol.Parameters, 1, "the later report wins")

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.SaveMerged(versions, merged))
}
