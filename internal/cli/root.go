package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codegraphhq/codegraph/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "codegraph",
	Short: "Code graph RAG service - ingest repositories, query them with hybrid retrieval",
	Long: `codegraph ingests Go repositories into a labelled property graph, embeds
method bodies into a vector index, and answers questions by fusing vector
search with graph expansion.

Example usage:
  codegraph bootstrap                # Create graph constraints and indexes
  codegraph ingest --repo . --module myapp
  codegraph query -q "where are invoices charged?"
  codegraph serve                    # HTTP API
  codegraph mcp                      # MCP server on stdio`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		log, err = newLogger(cfg.Logging.Level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.codegraph/config.yaml)")
}

// newLogger builds the process logger. It writes to stderr, which keeps
// stdout free for the MCP protocol.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}
