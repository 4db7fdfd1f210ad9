package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Runner executes parameterized queries against the graph store in read-only
// or read-write mode and returns result rows as column-name-to-value maps.
type Runner interface {
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Client is the Neo4j-backed Runner. Every call opens its own session and
// managed transaction and releases both on all exit paths; nothing is held
// open across calls.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	log      *zap.Logger
}

// NewClient connects to Neo4j and verifies connectivity.
func NewClient(ctx context.Context, uri, username, password, database string, log *zap.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", uri, err)
	}
	return &Client{driver: driver, database: database, log: log}, nil
}

// ExecuteRead runs cypher in a read transaction.
func (c *Client) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return c.run(ctx, cypher, params, neo4j.AccessModeRead)
}

// ExecuteWrite runs cypher in a write transaction. The transaction commits
// fully or not at all.
func (c *Client) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return c.run(ctx, cypher, params, neo4j.AccessModeWrite)
}

func (c *Client) run(ctx context.Context, cypher string, params map[string]any, mode neo4j.AccessMode) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, len(records))
		for i, record := range records {
			rows[i] = record.AsMap()
		}
		return rows, nil
	}

	var out any
	var err error
	if mode == neo4j.AccessModeRead {
		out, err = session.ExecuteRead(ctx, work)
	} else {
		out, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return nil, err
	}
	return out.([]map[string]any), nil
}

// Close releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
