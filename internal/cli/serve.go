package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/codegraphhq/codegraph/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the JSON API: ingestion, retrieval, and graph exploration.

Examples:
  codegraph serve
  CODEGRAPH_SERVER_PORT=9090 codegraph serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	server := api.NewServer(a.pipeline, a.retriever, a.coordinator, log)
	return server.Run(cfg.Server.Addr())
}
