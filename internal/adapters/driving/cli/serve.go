package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/athenaeum-labs/alexandria/internal/adapters/driving/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API server exposing search and catalog endpoints:

  GET /search?q=...&mode=auto|flat|hierarchical&limit=N&sections_limit=N
  GET /api/get-works
  GET /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil || catalogService == nil {
		return errors.New("services not configured")
	}

	server, err := api.NewServer(&api.Ports{
		Retrieval: retrievalService,
		Catalog:   catalogService,
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" && appConfig != nil {
		addr = appConfig.Server.Addr
	}
	if addr == "" {
		addr = "127.0.0.1:8720"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "API listening on http://%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
