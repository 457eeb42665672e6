package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/alexelgier/minerva/internal/model"
)

// Statistics is the get_statistics() response shape shared by the
// Person, Event, and Feeling repositories (spec §4.4): a node count
// plus its out-degree total, a cheap proxy for "how connected".
type Statistics struct {
	Count     int
	EdgeCount int
}

func nodeAndEdgeCount(ctx context.Context, driver neo4j.DriverWithContext, label string) (Statistics, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:` + label + `)
			OPTIONAL MATCH (n)-[r]->()
			RETURN count(DISTINCT n) AS nodes, count(r) AS edges
		`
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		nodes, _ := res.Record().Get("nodes")
		edges, _ := res.Record().Get("edges")
		return Statistics{Count: int(nodes.(int64)), EdgeCount: int(edges.(int64))}, nil
	})
	if err != nil {
		return Statistics{}, err
	}
	return result.(Statistics), nil
}

// PersonRepository extends Store[*model.Person] with get_statistics
// (spec §4.4); it adds no Person-specific finder beyond Store's.
type PersonRepository struct {
	*Store[*model.Person]
	driver neo4j.DriverWithContext
}

func NewPersonRepository(driver neo4j.DriverWithContext) *PersonRepository {
	return &PersonRepository{Store: NewPersonStore(driver), driver: driver}
}

func (r *PersonRepository) GetStatistics(ctx context.Context) (Statistics, error) {
	return nodeAndEdgeCount(ctx, r.driver, "Person")
}

// EventRepository extends Store[*model.Event] with get_statistics
// (spec §4.4); it adds no Event-specific finder beyond Store's.
type EventRepository struct {
	*Store[*model.Event]
	driver neo4j.DriverWithContext
}

func NewEventRepository(driver neo4j.DriverWithContext) *EventRepository {
	return &EventRepository{Store: NewEventStore(driver), driver: driver}
}

func (r *EventRepository) GetStatistics(ctx context.Context) (Statistics, error) {
	return nodeAndEdgeCount(ctx, r.driver, "Event")
}

// FeelingRepository bundles the FeelingEmotion and FeelingConcept
// stores with the get_statistics operation §4.4 reserves for the
// feeling labels together.
type FeelingRepository struct {
	Emotions *Store[*model.FeelingEmotion]
	Concepts *Store[*model.FeelingConcept]
	driver   neo4j.DriverWithContext
}

func NewFeelingRepository(driver neo4j.DriverWithContext) *FeelingRepository {
	return &FeelingRepository{
		Emotions: NewFeelingEmotionStore(driver),
		Concepts: NewFeelingConceptStore(driver),
		driver:   driver,
	}
}

func (r *FeelingRepository) GetStatistics(ctx context.Context) (Statistics, error) {
	emotionStats, err := nodeAndEdgeCount(ctx, r.driver, "FeelingEmotion")
	if err != nil {
		return Statistics{}, err
	}
	conceptStats, err := nodeAndEdgeCount(ctx, r.driver, "FeelingConcept")
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{
		Count:     emotionStats.Count + conceptStats.Count,
		EdgeCount: emotionStats.EdgeCount + conceptStats.EdgeCount,
	}, nil
}

// FindEmotionsByPerson returns every FeelingEmotion recorded for
// personUUID.
func (r *FeelingRepository) FindEmotionsByPerson(ctx context.Context, personUUID string) ([]*model.FeelingEmotion, error) {
	return r.Emotions.queryMany(ctx,
		"MATCH (n:FeelingEmotion {person_uuid: $person}) RETURN properties(n) AS props",
		map[string]any{"person": personUUID},
	)
}

// FindConceptsByPerson returns every FeelingConcept recorded for
// personUUID.
func (r *FeelingRepository) FindConceptsByPerson(ctx context.Context, personUUID string) ([]*model.FeelingConcept, error) {
	return r.Concepts.queryMany(ctx,
		"MATCH (n:FeelingConcept {person_uuid: $person}) RETURN properties(n) AS props",
		map[string]any{"person": personUUID},
	)
}
