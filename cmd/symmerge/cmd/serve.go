package cmd

import (
	"fmt"
	"log/slog"

	"github.com/abramin/symmerge/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the symmerge API server",
	Long: `Start a local HTTP server over the merged store.

The API provides:
- Module listing and merged module views
- Per-version resolution of a symbol name
- Name search and merge statistics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		srv, err := server.New(server.Config{
			Port:    servePort,
			DataDir: cfg.Output.Dir,
			Logger:  slog.Default(),
		})
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		fmt.Printf("Starting symmerge API on http://localhost:%d\n", srv.Port())
		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to run the API server on")
}
