package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/alexelgier/minerva/internal/model"
)

// Writer bundles every label repository behind the single entry point
// the orchestrator's DB_WRITE stage calls: write every entity, then
// every relation and feeling edge, entities always preceding edges
// within a run (spec §4.4 ordering).
type Writer struct {
	Person     *PersonRepository
	Emotion    *Store[*model.Emotion]
	Concept    *ConceptRepository
	Content    *ContentRepository
	Consumable *Store[*model.Consumable]
	Place      *Store[*model.Place]
	Event      *EventRepository
	Project    *Store[*model.Project]
	Feeling    *FeelingRepository
	Relations  *RelationWriter
}

func NewWriter(driver neo4j.DriverWithContext) *Writer {
	return &Writer{
		Person:     NewPersonRepository(driver),
		Emotion:    NewEmotionStore(driver),
		Concept:    NewConceptRepository(driver),
		Content:    NewContentRepository(driver),
		Consumable: NewConsumableStore(driver),
		Place:      NewPlaceStore(driver),
		Event:      NewEventRepository(driver),
		Project:    NewProjectStore(driver),
		Feeling:    NewFeelingRepository(driver),
		Relations:  NewRelationWriter(driver),
	}
}

// WriteEntity dispatches a decoded entity to its label-specific Create
// call by its concrete Go type.
func (w *Writer) WriteEntity(ctx context.Context, entity model.Entity) error {
	switch e := entity.(type) {
	case *model.Person:
		return w.Person.Create(ctx, e)
	case *model.Emotion:
		return w.Emotion.Create(ctx, e)
	case *model.Concept:
		return w.Concept.Create(ctx, e)
	case *model.Content:
		return w.Content.Create(ctx, e)
	case *model.Consumable:
		return w.Consumable.Create(ctx, e)
	case *model.Place:
		return w.Place.Create(ctx, e)
	case *model.Event:
		return w.Event.Create(ctx, e)
	case *model.Project:
		return w.Project.Create(ctx, e)
	case *model.FeelingEmotion:
		return w.Feeling.Emotions.Create(ctx, e)
	case *model.FeelingConcept:
		return w.Feeling.Concepts.Create(ctx, e)
	default:
		return fmt.Errorf("graph: unsupported entity type %T", entity)
	}
}

// FindEntityByUUID resolves uuid against the label repository for
// entityType, returning (nil, false, nil) if the label has no matching
// node. Used by Orchestrator.resolveExisting to fetch the existing
// entity a vault lookup entry points at, for the extraction engine's
// merge step (spec §4.3 step 4).
func (w *Writer) FindEntityByUUID(ctx context.Context, entityType, uuid string) (model.Entity, bool, error) {
	switch entityType {
	case "Person":
		e, ok, err := w.Person.FindByUUID(ctx, uuid)
		return entityOrNil(e, ok), ok, err
	case "Emotion":
		e, ok, err := w.Emotion.FindByUUID(ctx, uuid)
		return entityOrNil(e, ok), ok, err
	case "Concept":
		e, ok, err := w.Concept.FindByUUID(ctx, uuid)
		return entityOrNil(e, ok), ok, err
	case "Content":
		e, ok, err := w.Content.FindByUUID(ctx, uuid)
		return entityOrNil(e, ok), ok, err
	case "Consumable":
		e, ok, err := w.Consumable.FindByUUID(ctx, uuid)
		return entityOrNil(e, ok), ok, err
	case "Place":
		e, ok, err := w.Place.FindByUUID(ctx, uuid)
		return entityOrNil(e, ok), ok, err
	case "Event":
		e, ok, err := w.Event.FindByUUID(ctx, uuid)
		return entityOrNil(e, ok), ok, err
	case "Project":
		e, ok, err := w.Project.FindByUUID(ctx, uuid)
		return entityOrNil(e, ok), ok, err
	default:
		return nil, false, fmt.Errorf("graph: unsupported entity type %q", entityType)
	}
}

// entityOrNil keeps FindEntityByUUID's per-type branches from returning
// a non-nil model.Entity wrapping a nil *T when ok is false (a typed
// nil pointer boxed in the Entity interface is itself non-nil).
func entityOrNil[T model.Entity](e T, ok bool) model.Entity {
	if !ok {
		return nil
	}
	return e
}

// WriteRelation writes a generic Relation edge.
func (w *Writer) WriteRelation(ctx context.Context, rel model.Relation) error {
	return w.Relations.CreateRelation(ctx, rel)
}

// WriteConceptRelation writes a Concept-to-Concept edge.
func (w *Writer) WriteConceptRelation(ctx context.Context, rel model.ConceptRelation) error {
	return w.Concept.CreateConceptRelation(ctx, rel)
}
