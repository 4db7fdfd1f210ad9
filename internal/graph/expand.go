package graph

import (
	"context"
	"fmt"

	"github.com/codegraphhq/codegraph/pkg/types"
)

const maxHops = 5

// Expand walks the graph outward from the chunks with the given ids and
// returns every node and relationship within the hop bound. Zero hops yields
// the seed nodes alone.
func (c *Coordinator) Expand(ctx context.Context, chunkIDs []string, hops int) (types.Subgraph, error) {
	if len(chunkIDs) == 0 {
		return types.EmptySubgraph(), nil
	}
	cypher := cypherExpandSeedsOnly
	if hops > 0 {
		cypher = fmt.Sprintf(cypherExpandFromChunksFmt, clampHops(hops))
	}
	rows, err := c.runner.ExecuteRead(ctx, cypher, map[string]any{"chunkIds": chunkIDs})
	if err != nil {
		return types.EmptySubgraph(), fmt.Errorf("expand from %d chunks: %w", len(chunkIDs), err)
	}
	return subgraphFromRows(rows), nil
}

// ExpandNodes walks outward from nodes addressed by their element ids. This
// backs the generic graph exploration endpoint, where the caller already
// holds node ids from a previous response.
func (c *Coordinator) ExpandNodes(ctx context.Context, nodeIDs []string, hops int) (types.Subgraph, error) {
	if len(nodeIDs) == 0 {
		return types.EmptySubgraph(), nil
	}
	cypher := cypherExpandNodesSeedsOnly
	if hops > 0 {
		cypher = fmt.Sprintf(cypherExpandFromNodesFmt, clampHops(hops))
	}
	rows, err := c.runner.ExecuteRead(ctx, cypher, map[string]any{"ids": nodeIDs})
	if err != nil {
		return types.EmptySubgraph(), fmt.Errorf("expand from %d nodes: %w", len(nodeIDs), err)
	}
	return subgraphFromRows(rows), nil
}

// ShortestTypePath returns the shortest undirected path between two types,
// or an empty subgraph when no path exists.
func (c *Coordinator) ShortestTypePath(ctx context.Context, sourceFQName, targetFQName string) (types.Subgraph, error) {
	rows, err := c.runner.ExecuteRead(ctx, cypherShortestTypePath, map[string]any{
		"sourceFqName": sourceFQName,
		"targetFqName": targetFQName,
	})
	if err != nil {
		return types.EmptySubgraph(), fmt.Errorf("shortest path %s -> %s: %w", sourceFQName, targetFQName, err)
	}
	return subgraphFromRows(rows), nil
}

func clampHops(hops int) int {
	if hops < 1 {
		return 1
	}
	if hops > maxHops {
		return maxHops
	}
	return hops
}

func subgraphFromRows(rows []map[string]any) types.Subgraph {
	sub := types.EmptySubgraph()
	if len(rows) == 0 {
		return sub
	}
	row := rows[0]
	if nodes, ok := row["nodes"].([]any); ok {
		for _, raw := range nodes {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			sub.Nodes = append(sub.Nodes, types.GraphNode{
				ID:         stringValue(m["id"]),
				Label:      stringValue(m["label"]),
				Properties: mapValue(m["properties"]),
			})
		}
	}
	if rels, ok := row["rels"].([]any); ok {
		for _, raw := range rels {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			sub.Relationships = append(sub.Relationships, types.GraphRelationship{
				ID:         stringValue(m["id"]),
				Type:       stringValue(m["type"]),
				SourceID:   stringValue(m["sourceId"]),
				TargetID:   stringValue(m["targetId"]),
				Properties: mapValue(m["properties"]),
			})
		}
	}
	return sub
}

func mapValue(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
