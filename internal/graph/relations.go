package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/alexelgier/minerva/internal/model"
)

// RelationWriter writes generic (non-Concept) Relation edges between
// entities of any label — the DB_WRITE stage's edge half, grounded on
// the same MERGE idempotency db/repository/neo4j.go uses for its
// REQUIRES edges. Nodes are matched by uuid without a label filter
// since a Relation's endpoints can be any of the eight §3 entity
// types.
type RelationWriter struct {
	driver neo4j.DriverWithContext
}

func NewRelationWriter(driver neo4j.DriverWithContext) *RelationWriter {
	return &RelationWriter{driver: driver}
}

// CreateRelation MERGEs a single directed RELATION edge of rel.Type
// between its endpoints. As with ConceptRepository.CreateConceptRelation,
// this writes only the requested direction (spec §9).
func (w *RelationWriter) CreateRelation(ctx context.Context, rel model.Relation) error {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a {uuid: $source}), (b {uuid: $target})
		MERGE (a)-[r:RELATION {type: $type}]->(b)
		SET r.uuid = $uuid, r.summary = $summary, r.summary_short = $summaryShort
	`
	params := map[string]any{
		"source":       rel.SourceUUID,
		"target":       rel.TargetUUID,
		"type":         rel.Type,
		"uuid":         rel.UUID,
		"summary":      rel.Summary,
		"summaryShort": rel.SummaryShort,
	}
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	return err
}

// CreateSupportsEdges MERGEs a SUPPORTS edge from a Content node to a
// Concept node, the generalized substitute for a per-Quote edge: quote
// text is carried inline on Content rather than persisted as its own
// node in this module (see DESIGN.md), so the provenance edge the
// concept sub-workflow's write stage records runs Content->Concept.
func (w *RelationWriter) CreateSupportsEdges(ctx context.Context, contentUUID, conceptUUID string) error {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (c:Content {uuid: $content}), (n:Concept {uuid: $concept})
		MERGE (c)-[:SUPPORTS]->(n)
	`
	params := map[string]any{"content": contentUUID, "concept": conceptUUID}
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	return err
}

// CreateFeelingEdges writes the two edges a FeelingEmotion/FeelingConcept
// node represents: (Person)-[:FEELS]->(FeelingX) and
// (FeelingX)-[:ABOUT]->(Emotion|Concept). Both MERGE, so a re-run of
// DB_WRITE after a retry never duplicates edges.
func (w *RelationWriter) CreateFeelingEdges(ctx context.Context, feelingUUID, feelingLabel, personUUID, targetUUID string) error {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (p:Person {uuid: $person}), (f:` + feelingLabel + ` {uuid: $feeling}), (t {uuid: $target})
		MERGE (p)-[:FEELS]->(f)
		MERGE (f)-[:ABOUT]->(t)
	`
	params := map[string]any{"person": personUUID, "feeling": feelingUUID, "target": targetUUID}
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	return err
}
