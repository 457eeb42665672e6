// Package graph implements the Graph Writer (spec §4.4): a generic,
// per-label repository over Neo4j. A single generic Store[T] replaces
// db/repository/interfaces.go's one-interface-per-backend shape with
// one capability interface parameterized on the entity type, since
// every §3 entity needs the same ten operations against a different
// label — grounded on db/repository/neo4j.go's MERGE/session-per-call
// style (spec §9 "polymorphism over repositories, not bespoke
// per-entity files").
package graph

import (
	"context"

	"github.com/alexelgier/minerva/internal/model"
)

// Repository is the capability surface every labeled entity store
// satisfies (spec §4.4). Create is NOT idempotent (it always adds a
// new node); edges created elsewhere in this package use MERGE and
// are idempotent.
type Repository[T model.Entity] interface {
	Create(ctx context.Context, entity T) error
	Update(ctx context.Context, entity T) error
	FindByUUID(ctx context.Context, uuid string) (T, bool, error)
	ListAll(ctx context.Context) ([]T, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, uuid string) (bool, error)
	SearchByText(ctx context.Context, query string, limit int) ([]T, error)
	Delete(ctx context.Context, uuid string) error
	VectorSearch(ctx context.Context, embedding []float32, limit int) ([]T, error)
	FindSimilar(ctx context.Context, uuid string, limit int) ([]T, error)
}
