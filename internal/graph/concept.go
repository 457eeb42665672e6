package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/alexelgier/minerva/internal/model"
)

// conceptRelevanceThreshold is the minimum cosine similarity
// FindRelevantConcepts accepts (spec §4.4).
const conceptRelevanceThreshold = 0.6

// ConceptRepository extends the generic Store[*model.Concept] with the
// concept-to-concept relation operations §4.4 reserves for this one
// label.
type ConceptRepository struct {
	*Store[*model.Concept]
	driver neo4j.DriverWithContext
}

// NewConceptRepository wraps NewConceptStore with the Concept-only
// relation operations.
func NewConceptRepository(driver neo4j.DriverWithContext) *ConceptRepository {
	return &ConceptRepository{Store: NewConceptStore(driver), driver: driver}
}

// FindConceptByNameOrTitle matches on either the Concept's name or its
// title field, case-insensitively.
func (r *ConceptRepository) FindConceptByNameOrTitle(ctx context.Context, query string) ([]*model.Concept, error) {
	cypher := `MATCH (n:Concept) WHERE toLower(n.name) CONTAINS toLower($q) OR toLower(n.title) CONTAINS toLower($q)
	           RETURN properties(n) AS props`
	return r.queryMany(ctx, cypher, map[string]any{"q": query})
}

// GetConceptConnections returns every concept directly related to uuid
// in either direction, alongside the relation type connecting them.
type ConceptConnection struct {
	Concept *model.Concept
	Type    model.ConceptRelationType
	Forward bool // true if uuid -> Concept, false if Concept -> uuid
}

func (r *ConceptRepository) GetConceptConnections(ctx context.Context, uuid string) ([]ConceptConnection, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (c:Concept {uuid: $uuid})-[r:RELATES]-(other:Concept)
			RETURN properties(other) AS props, r.type AS type, startNode(r).uuid = $uuid AS forward
		`
		res, err := tx.Run(ctx, query, map[string]any{"uuid": uuid})
		if err != nil {
			return nil, err
		}
		var rows []neo4j.Record
		for res.Next(ctx) {
			rows = append(rows, *res.Record())
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, err
	}

	records, _ := result.([]neo4j.Record)
	out := make([]ConceptConnection, 0, len(records))
	for _, rec := range records {
		propsVal, _ := rec.Get("props")
		typeVal, _ := rec.Get("type")
		forwardVal, _ := rec.Get("forward")

		concept, err := r.decode(propsVal.(map[string]any))
		if err != nil {
			return nil, err
		}
		out = append(out, ConceptConnection{
			Concept: concept,
			Type:    model.ConceptRelationType(typeVal.(string)),
			Forward: forwardVal.(bool),
		})
	}
	return out, nil
}

// CreateConceptRelation MERGEs a single directed RELATES edge tagged
// with its type (spec §4.4 idempotency: edges use MERGE, unlike node
// Create). It writes only the direction requested — the caller asks
// for both directions explicitly when the relation type is symmetric
// or its reverse should also be recorded (spec §9 "unidirectional
// relation creation": this writer never auto-inserts the reverse).
func (r *ConceptRepository) CreateConceptRelation(ctx context.Context, rel model.ConceptRelation) error {
	query := `
		MATCH (a:Concept {uuid: $source}), (b:Concept {uuid: $target})
		MERGE (a)-[r:RELATES {type: $type}]->(b)
		SET r.uuid = $uuid, r.summary = $summary, r.summary_short = $summaryShort
	`
	params := map[string]any{
		"source":       rel.SourceUUID,
		"target":       rel.TargetUUID,
		"type":         string(rel.Type),
		"uuid":         rel.UUID,
		"summary":      rel.Summary,
		"summaryShort": rel.SummaryShort,
	}
	_, err := r.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	return err
}

// GetConceptRelations returns every outgoing ConceptRelation from uuid.
func (r *ConceptRepository) GetConceptRelations(ctx context.Context, uuid string) ([]model.ConceptRelation, error) {
	query := `
		MATCH (a:Concept {uuid: $uuid})-[r:RELATES]->(b:Concept)
		RETURN r.uuid AS uuid, b.uuid AS target, r.type AS type, r.summary AS summary, r.summary_short AS summaryShort
	`
	result, err := r.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"uuid": uuid})
		if err != nil {
			return nil, err
		}
		var rows []neo4j.Record
		for res.Next(ctx) {
			rows = append(rows, *res.Record())
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, err
	}

	records, _ := result.([]neo4j.Record)
	out := make([]model.ConceptRelation, 0, len(records))
	for _, rec := range records {
		relUUID, _ := rec.Get("uuid")
		target, _ := rec.Get("target")
		relType, _ := rec.Get("type")
		summary, _ := rec.Get("summary")
		summaryShort, _ := rec.Get("summaryShort")

		out = append(out, model.ConceptRelation{
			UUID:         toString(relUUID),
			SourceUUID:   uuid,
			TargetUUID:   toString(target),
			Type:         model.ConceptRelationType(toString(relType)),
			Summary:      toString(summary),
			SummaryShort: toString(summaryShort),
		})
	}
	return out, nil
}

// DeleteConceptRelation removes the single RELATES edge of the given
// type between source and target.
func (r *ConceptRepository) DeleteConceptRelation(ctx context.Context, sourceUUID, targetUUID string, relType model.ConceptRelationType) error {
	query := `
		MATCH (a:Concept {uuid: $source})-[r:RELATES {type: $type}]->(b:Concept {uuid: $target})
		DELETE r
	`
	_, err := r.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"source": sourceUUID, "target": targetUUID, "type": string(relType)})
	})
	return err
}

// FindRelevantConcepts returns every Concept scoring at or above
// conceptRelevanceThreshold against embedding (spec §4.4).
func (r *ConceptRepository) FindRelevantConcepts(ctx context.Context, embedding []float32, limit int) ([]*model.Concept, error) {
	candidates, err := r.VectorSearch(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}
	out := candidates[:0]
	for _, c := range candidates {
		if cosineSimilarity(entityEmbedding(c), embedding) >= conceptRelevanceThreshold {
			out = append(out, c)
		}
	}
	return out, nil
}

// ConceptContext bundles a concept with its immediate relation
// neighborhood, the shape the curation dashboard and the self-critique
// sub-workflow step both need (spec §4.1, §4.4).
type ConceptContext struct {
	Concept     *model.Concept
	Connections []ConceptConnection
}

func (r *ConceptRepository) GetConceptContext(ctx context.Context, uuid string) (ConceptContext, error) {
	concept, ok, err := r.FindByUUID(ctx, uuid)
	if err != nil || !ok {
		return ConceptContext{}, err
	}
	connections, err := r.GetConceptConnections(ctx, uuid)
	if err != nil {
		return ConceptContext{}, err
	}
	return ConceptContext{Concept: concept, Connections: connections}, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
