package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/abramin/symmerge/internal/config"
	"github.com/abramin/symmerge/internal/export"
	"github.com/abramin/symmerge/internal/merge"
	"github.com/abramin/symmerge/internal/model"
	"github.com/abramin/symmerge/internal/store"
	"github.com/abramin/symmerge/internal/walker"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Build per-version models and merge them",
	Long: `Walk every configured version and merge the resulting symbol trees.

The merge command:
- Builds one model per version with the configured walker
- Groups structurally equal symbols across versions
- Merges class members separately for each class variant
- Persists results to .symmerge/merged.db
- Writes the merged JSON document`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		logger := slog.Default()
		ctx := cmd.Context()
		start := time.Now()

		versions := cfg.VersionKeys()
		fmt.Printf("Merging %d versions with the %s walker\n", len(versions), cfg.Walker)

		models, err := model.NewBuilder(newWalker(cfg, logger), logger).Build(ctx, versions)
		if err != nil {
			return err
		}

		aggregator := merge.NewAggregator(merge.WithWorkers(cfg.Workers), merge.WithLogger(logger))
		merged, err := aggregator.Merge(ctx, models)
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Output.Dir)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Clear(); err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}
		if err := st.SaveMerged(versions, merged); err != nil {
			return fmt.Errorf("saving merged modules: %w", err)
		}
		if err := st.SetMetadata("merged_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("saving metadata: %w", err)
		}
		if err := st.WriteIndexJSON(); err != nil {
			return err
		}

		jsonPath, err := filepath.Abs(filepath.Join(cfg.Output.Dir, cfg.Output.JSON))
		if err != nil {
			return err
		}
		if err := export.Write(ctx, afs.New(), jsonPath, versions, merged); err != nil {
			return err
		}

		s := merge.Summarize(merged)
		fmt.Println()
		fmt.Printf("Merge complete!\n")
		fmt.Printf("  Modules:    %d\n", s.Modules)
		fmt.Printf("  Classes:    %d (%d methods, %d overloaded)\n", s.Classes, s.Methods, s.OverloadedMethods)
		fmt.Printf("  Functions:  %d (%d overloaded)\n", s.Functions, s.OverloadedFunctions)
		fmt.Printf("  Variants:   %d (%d names differ across versions)\n", s.Variants, s.Divergent)
		fmt.Printf("  Duration:   %s\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Database:   %s\n", st.DBPath())
		fmt.Printf("  JSON:       %s\n", jsonPath)
		return nil
	},
}

func newWalker(cfg *config.Config, logger *slog.Logger) model.Walker {
	if cfg.Walker == config.WalkerPackages {
		return walker.NewPackages(cfg, logger)
	}
	return walker.NewSnapshot(cfg, logger)
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
