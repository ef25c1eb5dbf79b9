package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abramin/symmerge/internal/symbols"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// sampleModule mirrors a module where f changed signature in 38 and class C
// gained a base class in 38.
func sampleModule() *symbols.MergedModule {
	mod := symbols.NewMergedModule("m")
	mod.Functions["m.f"] = []*symbols.MergedFunction{
		{
			Symbol:   &symbols.FunctionSymbol{Name: "f", FullName: "m.f", Parameters: []symbols.Parameter{{Name: "x"}}},
			ValidFor: symbols.Versions{"27", "35"},
		},
		{
			Symbol:   &symbols.FunctionSymbol{Name: "f", FullName: "m.f", Parameters: []symbols.Parameter{{Name: "x"}, {Name: "y"}}},
			ValidFor: symbols.Versions{"38"},
		},
	}
	mod.OverloadedFunctions["m.o"] = []*symbols.MergedOverloadedFunction{
		{
			Symbol: &symbols.OverloadedFunctionSymbol{Name: "o", FullName: "m.o", Definitions: []*symbols.FunctionSymbol{
				{Name: "o", FullName: "m.o", ReturnType: "int"},
				{Name: "o", FullName: "m.o", ReturnType: "str"},
			}},
			ValidFor: symbols.Versions{"27", "35", "38"},
		},
	}
	oldC := &symbols.MergedClass{
		Methods: map[string][]*symbols.MergedFunction{
			"m.C.g": {{Symbol: &symbols.FunctionSymbol{Name: "g", FullName: "m.C.g"}, ValidFor: symbols.Versions{"27", "35"}}},
		},
		OverloadedMethods: map[string][]*symbols.MergedOverloadedFunction{},
	}
	oldC.Symbol = &symbols.ClassSymbol{Name: "C", FullName: "m.C"}
	oldC.ValidFor = symbols.Versions{"27", "35"}

	newC := &symbols.MergedClass{
		Methods: map[string][]*symbols.MergedFunction{
			"m.C.g": {{Symbol: &symbols.FunctionSymbol{Name: "g", FullName: "m.C.g"}, ValidFor: symbols.Versions{"38"}}},
		},
		OverloadedMethods: map[string][]*symbols.MergedOverloadedFunction{},
	}
	newC.Symbol = &symbols.ClassSymbol{Name: "C", FullName: "m.C", SuperClasses: []string{"Base"}}
	newC.ValidFor = symbols.Versions{"38"}

	mod.Classes["m.C"] = []*symbols.MergedClass{oldC, newC}
	return mod
}

func TestOpenAndClose(t *testing.T) {
	tmpDir := t.TempDir()

	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	dataDir := filepath.Join(tmpDir, ".symmerge")
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Error(".symmerge directory was not created")
	}

	dbPath := filepath.Join(dataDir, "merged.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("merged.db was not created")
	}

	if err := st.Close(); err != nil {
		t.Errorf("failed to close store: %v", err)
	}
}

func TestSaveAndLoadModule(t *testing.T) {
	st := openTestStore(t)
	versions := symbols.Versions{"27", "35", "38"}
	want := sampleModule()

	if err := st.SaveMerged(versions, map[string]*symbols.MergedModule{"m": want}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := st.LoadModule("m")
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}

	fs := got.Functions["m.f"]
	if len(fs) != 2 {
		t.Fatalf("expected 2 variants of m.f, got %d", len(fs))
	}
	if len(fs[0].ValidFor) != 2 || fs[0].ValidFor[0] != "27" || fs[0].ValidFor[1] != "35" {
		t.Errorf("unexpected valid_for of first variant: %v", fs[0].ValidFor)
	}
	if !fs[1].Symbol.Equal(want.Functions["m.f"][1].Symbol) {
		t.Errorf("second variant payload not preserved: %+v", fs[1].Symbol)
	}

	classes := got.Classes["m.C"]
	if len(classes) != 2 {
		t.Fatalf("expected 2 class variants, got %d", len(classes))
	}
	if len(classes[1].Symbol.SuperClasses) != 1 {
		t.Errorf("expected base class on second variant, got %v", classes[1].Symbol.SuperClasses)
	}
	if m := classes[0].Methods["m.C.g"]; len(m) != 1 || len(m[0].ValidFor) != 2 {
		t.Errorf("methods of first class variant not scoped: %+v", m)
	}
	if m := classes[1].Methods["m.C.g"]; len(m) != 1 || m[0].ValidFor[0] != "38" {
		t.Errorf("methods of second class variant not scoped: %+v", m)
	}

	ov := got.OverloadedFunctions["m.o"]
	if len(ov) != 1 || len(ov[0].Symbol.Definitions) != 2 {
		t.Errorf("overloaded function not preserved: %+v", ov)
	}
}

func TestLoadMissingModule(t *testing.T) {
	st := openTestStore(t)
	_, err := st.LoadModule("nope")
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestVersionsKeepOrder(t *testing.T) {
	st := openTestStore(t)
	versions := symbols.Versions{"39", "27", "35"}
	if err := st.SaveMerged(versions, nil); err != nil {
		t.Fatal(err)
	}
	got, err := st.Versions()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != "39" || got[1] != "27" || got[2] != "35" {
		t.Errorf("expected enumeration order to be kept, got %v", got)
	}
}

func TestResolve(t *testing.T) {
	st := openTestStore(t)
	if err := st.SaveMerged(symbols.Versions{"27", "35", "38"}, map[string]*symbols.MergedModule{"m": sampleModule()}); err != nil {
		t.Fatal(err)
	}

	variants, err := st.Resolve("m", "m.f", "38")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(variants) != 1 || variants[0].Index != 1 {
		t.Fatalf("expected second variant of m.f, got %+v", variants)
	}
	if len(variants[0].ValidFor) != 1 || variants[0].ValidFor[0] != "38" {
		t.Errorf("unexpected valid_for: %v", variants[0].ValidFor)
	}

	methods, err := st.Resolve("m", "m.C.g", "35")
	if err != nil {
		t.Fatalf("resolve method failed: %v", err)
	}
	if len(methods) != 1 || methods[0].Kind != KindMethod || methods[0].ParentID == 0 {
		t.Errorf("expected one method variant with a parent, got %+v", methods)
	}

	if _, err := st.Resolve("m", "m.f", "310"); !IsNotFound(err) {
		t.Errorf("expected not found for unknown version, got %v", err)
	}
}

func TestSearchVariants(t *testing.T) {
	st := openTestStore(t)
	if err := st.SaveMerged(symbols.Versions{"27", "35", "38"}, map[string]*symbols.MergedModule{"m": sampleModule()}); err != nil {
		t.Fatal(err)
	}

	results, err := st.SearchVariants("m.f", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Variants != 2 || results[0].Kind != KindFunction {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestMetadata(t *testing.T) {
	st := openTestStore(t)

	if err := st.SetMetadata("test_key", "test_value"); err != nil {
		t.Fatalf("failed to set metadata: %v", err)
	}

	value, err := st.GetMetadata("test_key")
	if err != nil {
		t.Fatalf("failed to get metadata: %v", err)
	}
	if value != "test_value" {
		t.Errorf("expected 'test_value', got '%s'", value)
	}

	if err := st.SetMetadata("test_key", "updated_value"); err != nil {
		t.Fatalf("failed to update metadata: %v", err)
	}
	value, _ = st.GetMetadata("test_key")
	if value != "updated_value" {
		t.Errorf("expected 'updated_value', got '%s'", value)
	}
}

func TestGetStatsAndClear(t *testing.T) {
	st := openTestStore(t)
	if err := st.SaveMerged(symbols.Versions{"27", "35", "38"}, map[string]*symbols.MergedModule{"m": sampleModule()}); err != nil {
		t.Fatal(err)
	}

	stats, err := st.GetStats()
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.VersionCount != 3 {
		t.Errorf("expected 3 versions, got %d", stats.VersionCount)
	}
	if stats.ModuleCount != 1 {
		t.Errorf("expected 1 module, got %d", stats.ModuleCount)
	}
	// 2 classes, 2 methods, 2 functions, 1 overload set
	if stats.VariantCount != 7 {
		t.Errorf("expected 7 variants, got %d", stats.VariantCount)
	}

	if err := st.Clear(); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	stats, _ = st.GetStats()
	if stats.VariantCount != 0 || stats.ModuleCount != 0 {
		t.Errorf("expected empty store after clear, got %+v", stats)
	}
}

func TestWriteIndexJSON(t *testing.T) {
	st := openTestStore(t)
	if err := st.SaveMerged(symbols.Versions{"38"}, map[string]*symbols.MergedModule{"m": symbols.NewMergedModule("m")}); err != nil {
		t.Fatal(err)
	}
	if err := st.WriteIndexJSON(); err != nil {
		t.Fatalf("failed to write index.json: %v", err)
	}
	indexPath := filepath.Join(filepath.Dir(st.DBPath()), "index.json")
	if _, err := os.Stat(indexPath); err != nil {
		t.Errorf("index.json not written: %v", err)
	}
}
