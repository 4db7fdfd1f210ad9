package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create graph constraints and indexes",
	Long: `Create the uniqueness constraints, property indexes, and the cosine
vector index the service relies on. Safe to run repeatedly.`,
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if err := a.coordinator.Bootstrap(ctx, cfg.Embedding.Dimensions); err != nil {
		return err
	}
	fmt.Println("schema bootstrapped")
	return nil
}
