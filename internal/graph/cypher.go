package graph

// Batch upsert templates. Every template follows the same scheme: UNWIND the
// batch, MERGE on the natural key, tag each entity with whether the merge
// created it, refresh the mutable properties, and return aggregate
// created/updated counts in a single row.

const cypherUpsertModules = `
UNWIND $modules AS row
MERGE (m:Module {name: row.name})
ON CREATE SET m.wasCreated = true
ON MATCH SET m.wasCreated = false
SET m.path = row.path
WITH m, m.wasCreated AS wasCreated
REMOVE m.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherUpsertTypes = `
UNWIND $types AS row
MERGE (t:Type {module: row.module, fqName: row.fqName})
ON CREATE SET t.wasCreated = true
ON MATCH SET t.wasCreated = false
SET t.name = row.name,
    t.kind = row.kind,
    t.path = row.path,
    t.startLine = row.startLine,
    t.endLine = row.endLine
WITH t, t.wasCreated AS wasCreated
REMOVE t.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherUpsertMethods = `
UNWIND $methods AS row
MERGE (m:Method {module: row.module, fqName: row.fqName, signature: row.signature})
ON CREATE SET m.wasCreated = true
ON MATCH SET m.wasCreated = false
SET m.name = row.name,
    m.returnType = row.returnType,
    m.visibility = row.visibility,
    m.pointerRecv = row.pointerRecv,
    m.path = row.path,
    m.startLine = row.startLine,
    m.endLine = row.endLine
WITH m, m.wasCreated AS wasCreated
REMOVE m.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherUpsertEndpoints = `
UNWIND $endpoints AS row
MERGE (e:Endpoint {module: row.module, httpMethod: row.httpMethod, path: row.path})
ON CREATE SET e.wasCreated = true
ON MATCH SET e.wasCreated = false
WITH e, e.wasCreated AS wasCreated
REMOVE e.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherUpsertChunks = `
UNWIND $chunks AS row
MERGE (c:Chunk {id: row.id})
ON CREATE SET c.wasCreated = true
ON MATCH SET c.wasCreated = false
SET c.module = row.module,
    c.ownerIdentity = row.ownerIdentity,
    c.ownerSignature = row.ownerSignature,
    c.sourcePath = row.sourcePath,
    c.startLine = row.startLine,
    c.endLine = row.endLine,
    c.kind = row.kind,
    c.text = row.text,
    c.textHash = row.textHash,
    c.embeddingModel = row.embeddingModel,
    c.embedding = row.embedding
WITH c, c.wasCreated AS wasCreated
REMOVE c.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherRelModuleContainsTypes = `
UNWIND $relationships AS row
MATCH (m:Module {name: row.moduleName})
MATCH (t:Type {module: row.typeModule, fqName: row.typeFqName})
MERGE (m)-[r:CONTAINS]->(t)
ON CREATE SET r.wasCreated = true
ON MATCH SET r.wasCreated = false
WITH r, r.wasCreated AS wasCreated
REMOVE r.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherRelTypeDeclaresMethods = `
UNWIND $relationships AS row
MATCH (t:Type {module: row.typeModule, fqName: row.typeFqName})
MATCH (m:Method {module: row.methodModule, fqName: row.methodFqName, signature: row.signature})
MERGE (t)-[r:DECLARES]->(m)
ON CREATE SET r.wasCreated = true
ON MATCH SET r.wasCreated = false
WITH r, r.wasCreated AS wasCreated
REMOVE r.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherRelTypeDependencies = `
UNWIND $relationships AS row
MATCH (s:Type {module: row.sourceModule, fqName: row.sourceFqName})
MATCH (t:Type {module: row.targetModule, fqName: row.targetFqName})
MERGE (s)-[r:DEPENDS_ON {kind: row.kind, via: row.via}]->(t)
ON CREATE SET r.wasCreated = true
ON MATCH SET r.wasCreated = false
WITH r, r.wasCreated AS wasCreated
REMOVE r.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherRelTypeExposesEndpoints = `
UNWIND $relationships AS row
MATCH (t:Type {module: row.typeModule, fqName: row.typeFqName})
MATCH (e:Endpoint {module: row.endpointModule, httpMethod: row.httpMethod, path: row.path})
MERGE (t)-[r:EXPOSES]->(e)
ON CREATE SET r.wasCreated = true
ON MATCH SET r.wasCreated = false
WITH r, r.wasCreated AS wasCreated
REMOVE r.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherRelEndpointImplementsMethods = `
UNWIND $relationships AS row
MATCH (e:Endpoint {module: row.endpointModule, httpMethod: row.httpMethod, path: row.path})
MATCH (m:Method {module: row.methodModule, fqName: row.methodFqName, signature: row.signature})
MERGE (e)-[r:IMPLEMENTS]->(m)
ON CREATE SET r.wasCreated = true
ON MATCH SET r.wasCreated = false
WITH r, r.wasCreated AS wasCreated
REMOVE r.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherRelChunkOfMethods = `
UNWIND $relationships AS row
MATCH (c:Chunk {id: row.chunkId})
MATCH (m:Method {module: row.methodModule, fqName: row.methodFqName, signature: row.signature})
MERGE (c)-[r:CHUNK_OF]->(m)
ON CREATE SET r.wasCreated = true
ON MATCH SET r.wasCreated = false
WITH r, r.wasCreated AS wasCreated
REMOVE r.wasCreated
RETURN sum(CASE WHEN wasCreated THEN 1 ELSE 0 END) AS created,
       sum(CASE WHEN wasCreated THEN 0 ELSE 1 END) AS updated`

const cypherFindChunkByID = `
MATCH (c:Chunk {id: $id})
RETURN c.textHash AS textHash, c.embeddingModel AS embeddingModel, c.embedding AS embedding`

// Expansion templates. A variable-length pattern bound cannot be a query
// parameter, so the clamped hop count is formatted into the text. Node and
// relationship order follows the store's traversal order.

const cypherExpandSeedsOnly = `
MATCH (seed:Chunk) WHERE seed.id IN $chunkIds
WITH collect(DISTINCT seed) AS ns
RETURN [n IN ns | {id: elementId(n), label: head(labels(n)), properties: properties(n)}] AS nodes,
       [] AS rels`

const cypherExpandFromChunksFmt = `
MATCH (seed:Chunk) WHERE seed.id IN $chunkIds
OPTIONAL MATCH path = (seed)-[*1..%d]-()
WITH collect(DISTINCT seed) AS seeds, collect(path) AS paths
WITH seeds,
     reduce(ns = [], p IN paths | ns + nodes(p)) AS pathNodes,
     reduce(rs = [], p IN paths | rs + relationships(p)) AS pathRels
UNWIND (seeds + pathNodes) AS n
WITH collect(DISTINCT n) AS ns, pathRels
UNWIND (CASE WHEN size(pathRels) = 0 THEN [null] ELSE pathRels END) AS r
WITH ns, collect(DISTINCT r) AS rs
RETURN [n IN ns | {id: elementId(n), label: head(labels(n)), properties: properties(n)}] AS nodes,
       [r IN rs | {id: elementId(r), type: type(r), sourceId: elementId(startNode(r)), targetId: elementId(endNode(r)), properties: properties(r)}] AS rels`

const cypherExpandNodesSeedsOnly = `
MATCH (seed) WHERE elementId(seed) IN $ids
WITH collect(DISTINCT seed) AS ns
RETURN [n IN ns | {id: elementId(n), label: head(labels(n)), properties: properties(n)}] AS nodes,
       [] AS rels`

const cypherExpandFromNodesFmt = `
MATCH (seed) WHERE elementId(seed) IN $ids
OPTIONAL MATCH path = (seed)-[*1..%d]-()
WITH collect(DISTINCT seed) AS seeds, collect(path) AS paths
WITH seeds,
     reduce(ns = [], p IN paths | ns + nodes(p)) AS pathNodes,
     reduce(rs = [], p IN paths | rs + relationships(p)) AS pathRels
UNWIND (seeds + pathNodes) AS n
WITH collect(DISTINCT n) AS ns, pathRels
UNWIND (CASE WHEN size(pathRels) = 0 THEN [null] ELSE pathRels END) AS r
WITH ns, collect(DISTINCT r) AS rs
RETURN [n IN ns | {id: elementId(n), label: head(labels(n)), properties: properties(n)}] AS nodes,
       [r IN rs | {id: elementId(r), type: type(r), sourceId: elementId(startNode(r)), targetId: elementId(endNode(r)), properties: properties(r)}] AS rels`

const cypherShortestTypePath = `
MATCH (s:Type {fqName: $sourceFqName}), (t:Type {fqName: $targetFqName})
MATCH p = shortestPath((s)-[*..10]-(t))
RETURN [n IN nodes(p) | {id: elementId(n), label: head(labels(n)), properties: properties(n)}] AS nodes,
       [r IN relationships(p) | {id: elementId(r), type: type(r), sourceId: elementId(startNode(r)), targetId: elementId(endNode(r)), properties: properties(r)}] AS rels`

const cypherModuleStats = `
RETURN COUNT { MATCH (t:Type {module: $module}) } AS types,
       COUNT { MATCH (m:Method {module: $module}) } AS methods,
       COUNT { MATCH (e:Endpoint {module: $module}) } AS endpoints,
       COUNT { MATCH (c:Chunk {module: $module}) } AS chunks,
       COUNT { MATCH (c:Chunk {module: $module}) WHERE c.embedding IS NOT NULL } AS embeddedChunks`
