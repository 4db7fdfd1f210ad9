package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codegraphhq/codegraph/pkg/types"
)

var (
	queryText     string
	queryModule   string
	queryTopK     int
	queryHops     int
	queryNoAnswer bool
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question over the ingested code",
	Long: `Answer a natural-language question with hybrid retrieval: vector search
over chunk embeddings plus graph expansion around the matches.

Examples:
  codegraph query -q "where are invoices charged?"
  codegraph query -q "auth flow" --module billing --top-k 5 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "question", "q", "", "question (required)")
	queryCmd.Flags().StringVar(&queryModule, "module", "", "restrict matches to one module")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "vector-search depth (default 10)")
	queryCmd.Flags().IntVar(&queryHops, "hops", -1, "graph expansion depth (default 2)")
	queryCmd.Flags().BoolVar(&queryNoAnswer, "no-answer", false, "skip answer synthesis")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	_ = queryCmd.MarkFlagRequired("question")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	result, err := a.retriever.Query(ctx, types.QueryRequest{
		Question:       queryText,
		ModuleFilter:   queryModule,
		TopK:           queryTopK,
		Hops:           queryHops,
		GenerateAnswer: !queryNoAnswer,
	})
	if err != nil {
		return err
	}

	if queryJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	if result.Answer != "" {
		fmt.Println(result.Answer)
		fmt.Println()
	}
	fmt.Printf("%d matches, subgraph of %d nodes and %d relationships\n",
		len(result.Hits), len(result.Subgraph.Nodes), len(result.Subgraph.Relationships))
	for i, hit := range result.Hits {
		owner, _ := hit.Node.Properties["ownerIdentity"].(string)
		path, _ := hit.Node.Properties["sourcePath"].(string)
		fmt.Printf("%2d. %.3f  %s  (%s)\n", i+1, hit.Score, owner, path)
	}
	return nil
}
