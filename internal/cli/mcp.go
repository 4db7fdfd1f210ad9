package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/codegraphhq/codegraph/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Serve the Model Context Protocol tools (ingest_module, query_codebase,
graph_status) over stdio for AI coding assistants. Logs go to stderr;
stdout carries the protocol.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	server := mcp.NewServer(a.pipeline, a.retriever, a.coordinator, log)
	return server.Serve(ctx)
}
