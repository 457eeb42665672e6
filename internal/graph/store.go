package graph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/alexelgier/minerva/internal/model"
)

// Store is the generic Neo4j-backed Repository[T]. newT allocates a
// zero value of the concrete pointer type so Decode has somewhere to
// unmarshal into — Go generics give no way to say "new T()" directly
// when T is a pointer type.
type Store[T model.Entity] struct {
	driver neo4j.DriverWithContext
	label  string
	newT   func() T
}

// NewStore builds a label-scoped repository. label must be a valid
// Cypher node label (e.g. "Person", "Concept").
func NewStore[T model.Entity](driver neo4j.DriverWithContext, label string, newT func() T) *Store[T] {
	return &Store[T]{driver: driver, label: label, newT: newT}
}

func (s *Store[T]) write(ctx context.Context, fn func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, fn)
}

func (s *Store[T]) read(ctx context.Context, fn func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, fn)
}

// encode flattens an entity to Neo4j node properties via a JSON round
// trip, since every §3 entity type already knows how to marshal itself
// and Neo4j's driver accepts a plain map[string]any for node props.
func encode(entity model.Entity) (map[string]any, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var props map[string]any
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func (s *Store[T]) decode(props map[string]any) (T, error) {
	var zero T
	raw, err := json.Marshal(props)
	if err != nil {
		return zero, err
	}
	out := s.newT()
	if err := json.Unmarshal(raw, out); err != nil {
		return zero, err
	}
	return out, nil
}

// Create always adds a new node (spec §4.4: create is NOT idempotent,
// unlike the edge-creating MERGE calls elsewhere in this package).
func (s *Store[T]) Create(ctx context.Context, entity T) error {
	props, err := encode(entity)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("CREATE (n:%s) SET n = $props", s.label)
	_, err = s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"props": props})
	})
	return err
}

// Update replaces every property of the matching node.
func (s *Store[T]) Update(ctx context.Context, entity T) error {
	props, err := encode(entity)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("MATCH (n:%s {uuid: $uuid}) SET n = $props", s.label)
	_, err = s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"uuid": entity.GetUUID(), "props": props})
	})
	return err
}

// FindByUUID returns the node with the given uuid, or ok=false if
// absent.
func (s *Store[T]) FindByUUID(ctx context.Context, uuid string) (T, bool, error) {
	query := fmt.Sprintf("MATCH (n:%s {uuid: $uuid}) RETURN properties(n) AS props LIMIT 1", s.label)
	result, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"uuid": uuid})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		props, _ := res.Record().Get("props")
		return props, nil
	})
	var zero T
	if err != nil {
		return zero, false, err
	}
	if result == nil {
		return zero, false, nil
	}
	entity, err := s.decode(result.(map[string]any))
	if err != nil {
		return zero, false, err
	}
	return entity, true, nil
}

// ListAll returns every node of this label.
func (s *Store[T]) ListAll(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("MATCH (n:%s) RETURN properties(n) AS props", s.label)
	return s.queryMany(ctx, query, nil)
}

// Count returns the number of nodes of this label.
func (s *Store[T]) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS total", s.label)
	result, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return int64(0), res.Err()
		}
		total, _ := res.Record().Get("total")
		return total, nil
	})
	if err != nil {
		return 0, err
	}
	return int(result.(int64)), nil
}

// Exists reports whether a node with the given uuid is present.
func (s *Store[T]) Exists(ctx context.Context, uuid string) (bool, error) {
	_, ok, err := s.FindByUUID(ctx, uuid)
	return ok, err
}

// SearchByText performs a case-insensitive substring match against the
// node's name (a CONTAINS scan — full-text indexing is left to a
// dedicated Neo4j full-text index in deployment, not modeled here).
func (s *Store[T]) SearchByText(ctx context.Context, query string, limit int) ([]T, error) {
	cypher := fmt.Sprintf("MATCH (n:%s) WHERE toLower(n.name) CONTAINS toLower($q) RETURN properties(n) AS props LIMIT $limit", s.label)
	return s.queryMany(ctx, cypher, map[string]any{"q": query, "limit": int64(limit)})
}

// Delete removes the node with the given uuid.
func (s *Store[T]) Delete(ctx context.Context, uuid string) error {
	query := fmt.Sprintf("MATCH (n:%s {uuid: $uuid}) DETACH DELETE n", s.label)
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"uuid": uuid})
	})
	return err
}

// VectorSearch ranks nodes of this label by cosine similarity to
// embedding, returning the top limit. It pulls candidate embeddings and
// scores them in Go rather than assuming a Neo4j vector index plugin is
// installed, matching the teacher's plain-Cypher style elsewhere in
// this file.
func (s *Store[T]) VectorSearch(ctx context.Context, embedding []float32, limit int) ([]T, error) {
	query := fmt.Sprintf("MATCH (n:%s) WHERE n.embedding IS NOT NULL RETURN properties(n) AS props", s.label)
	all, err := s.queryMany(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	return topBySimilarity(all, embedding, limit), nil
}

// FindSimilar is VectorSearch seeded by an existing node's own
// embedding, excluding the node itself.
func (s *Store[T]) FindSimilar(ctx context.Context, uuid string, limit int) ([]T, error) {
	entity, ok, err := s.FindByUUID(ctx, uuid)
	if err != nil || !ok {
		return nil, err
	}
	embedding := entityEmbedding(entity)
	if embedding == nil {
		return nil, nil
	}
	candidates, err := s.VectorSearch(ctx, embedding, limit+1)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, limit)
	for _, c := range candidates {
		if c.GetUUID() == uuid {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store[T]) queryMany(ctx context.Context, query string, params map[string]any) ([]T, error) {
	result, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		var rows []map[string]any
		for res.Next(ctx) {
			props, _ := res.Record().Get("props")
			rows = append(rows, props.(map[string]any))
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, err
	}

	rows, _ := result.([]map[string]any)
	out := make([]T, 0, len(rows))
	for _, props := range rows {
		entity, err := s.decode(props)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
