package graph

const (
	MergeCompanyQuery = `
		MERGE (c:Company {name: $name})
		SET c.ticker = $ticker,
			c.cik = $cik,
			c.cusip = $cusip
		RETURN c.name AS name
	`

	MergeAssetManagerQuery = `
		MERGE (a:AssetManager {managerName: $manager_name})
		WITH a
		MATCH (c:Company {name: $company_name})
		MERGE (a)-[r:OWNS]->(c)
		SET r.shares = $shares
		RETURN a.managerName AS manager
	`

	MergeDocumentQuery = `
		MERGE (d:Document {path: $path})
		SET d.uuid = $uuid,
			d.name = $name,
			d.company = $company,
			d.ticker = $ticker,
			d.created_at = $created_at
		RETURN d.path AS path
	`

	MergeChunkQuery = `
		MATCH (d:Document {path: $document_path})
		MERGE (c:Chunk {uuid: $uuid})
		SET c.text = $text,
			c.index = $index,
			c.embedding = $embedding
		MERGE (c)-[:FROM_DOCUMENT]->(d)
		RETURN c.uuid AS uuid
	`

	LinkNextChunkQuery = `
		MATCH (a:Chunk {uuid: $prev_uuid})
		MATCH (b:Chunk {uuid: $next_uuid})
		MERGE (a)-[:NEXT_CHUNK]->(b)
	`

	// Extracted entity nodes carry a dynamic label, so the label is
	// interpolated by the caller from a fixed allow-list, never from input.
	MergeEntityQueryTemplate = `
		MERGE (n:%s {name: $name})
		SET n += $properties
		WITH n
		MATCH (c:Chunk {uuid: $chunk_uuid})
		MERGE (n)-[:FROM_CHUNK]->(c)
		RETURN n.name AS name
	`

	MergeRelationshipQueryTemplate = `
		MATCH (a {name: $source_name})
		MATCH (b {name: $target_name})
		MERGE (a)-[:%s]->(b)
	`

	CountRelationshipsQuery = `
		MATCH ()-[r]->()
		RETURN type(r) AS type, count(r) AS count
		ORDER BY count DESC
	`

	CountTotalNodesQuery = `MATCH (n) RETURN count(n) AS total`

	ProvenanceQuery = `
		MATCH (e)-[:FROM_CHUNK]->(c:Chunk)-[:FROM_DOCUMENT]->(d:Document)
		RETURN count(DISTINCT e) AS entities,
			   count(DISTINCT c) AS chunks,
			   count(DISTINCT d) AS docs
	`

	SampleEmbeddedChunksQuery = `
		MATCH (c:Chunk)-[:FROM_DOCUMENT]->(d:Document)
		WHERE c.embedding IS NOT NULL
		RETURN c.uuid AS chunk_id, size(c.embedding) AS dims
		LIMIT $limit
	`

	ShowConstraintsQuery = `SHOW CONSTRAINTS YIELD name RETURN name`

	ShowIndexesQuery = `SHOW INDEXES YIELD name, type WHERE type <> 'LOOKUP' RETURN name`

	DeleteBatchQuery = `
		MATCH (n) WITH n LIMIT 500
		DETACH DELETE n
		RETURN count(*) AS deleted
	`
)
