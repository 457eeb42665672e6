package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/alexelgier/minerva/internal/model"
)

// ContentRepository extends Store[*model.Content] with the
// create_authored_by edge §4.4 reserves for this label.
type ContentRepository struct {
	*Store[*model.Content]
	driver neo4j.DriverWithContext
}

func NewContentRepository(driver neo4j.DriverWithContext) *ContentRepository {
	return &ContentRepository{Store: NewContentStore(driver), driver: driver}
}

// CreateAuthoredBy MERGEs an AUTHORED_BY edge from a Content node to a
// Person node — idempotent, unlike node creation (spec §4.4).
func (r *ContentRepository) CreateAuthoredBy(ctx context.Context, contentUUID, personUUID string) error {
	query := `
		MATCH (c:Content {uuid: $content}), (p:Person {uuid: $person})
		MERGE (c)-[:AUTHORED_BY]->(p)
	`
	_, err := r.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"content": contentUUID, "person": personUUID})
	})
	return err
}
