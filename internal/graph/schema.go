package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Bootstrap creates the uniqueness constraints, property indexes, and the
// cosine vector index the store relies on. Every statement is IF NOT EXISTS,
// so bootstrap is safe to run on every startup.
func (c *Coordinator) Bootstrap(ctx context.Context, dimensions int) error {
	statements := []string{
		`CREATE CONSTRAINT module_name IF NOT EXISTS FOR (m:Module) REQUIRE m.name IS UNIQUE`,
		`CREATE CONSTRAINT type_identity IF NOT EXISTS FOR (t:Type) REQUIRE (t.module, t.fqName) IS UNIQUE`,
		`CREATE CONSTRAINT method_identity IF NOT EXISTS FOR (m:Method) REQUIRE (m.module, m.fqName, m.signature) IS UNIQUE`,
		`CREATE CONSTRAINT endpoint_identity IF NOT EXISTS FOR (e:Endpoint) REQUIRE (e.module, e.httpMethod, e.path) IS UNIQUE`,
		`CREATE CONSTRAINT chunk_id IF NOT EXISTS FOR (c:Chunk) REQUIRE c.id IS UNIQUE`,
		`CREATE INDEX type_module IF NOT EXISTS FOR (t:Type) ON (t.module)`,
		`CREATE INDEX method_module IF NOT EXISTS FOR (m:Method) ON (m.module)`,
		`CREATE INDEX chunk_module IF NOT EXISTS FOR (c:Chunk) ON (c.module)`,
		fmt.Sprintf(`CREATE VECTOR INDEX chunk_embedding IF NOT EXISTS FOR (c:Chunk) ON (c.embedding) `+
			`OPTIONS {indexConfig: {`+"`vector.dimensions`"+`: %d, `+"`vector.similarity_function`"+`: 'cosine'}}`, dimensions),
	}
	for _, stmt := range statements {
		if _, err := c.runner.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	c.log.Info("graph schema bootstrapped", zap.Int("vector_dimensions", dimensions))
	return nil
}
