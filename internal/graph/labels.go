package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/alexelgier/minerva/internal/model"
)

// NewPersonStore, and the rest of the label constructors below, are
// thin aliases over Store[T] fixing the label and allocator for one
// §3 entity type — the generic capability lives in store.go, these
// just name it.
func NewPersonStore(driver neo4j.DriverWithContext) *Store[*model.Person] {
	return NewStore(driver, "Person", func() *model.Person { return &model.Person{} })
}

func NewEmotionStore(driver neo4j.DriverWithContext) *Store[*model.Emotion] {
	return NewStore(driver, "Emotion", func() *model.Emotion { return &model.Emotion{} })
}

func NewConceptStore(driver neo4j.DriverWithContext) *Store[*model.Concept] {
	return NewStore(driver, "Concept", func() *model.Concept { return &model.Concept{} })
}

func NewContentStore(driver neo4j.DriverWithContext) *Store[*model.Content] {
	return NewStore(driver, "Content", func() *model.Content { return &model.Content{} })
}

func NewConsumableStore(driver neo4j.DriverWithContext) *Store[*model.Consumable] {
	return NewStore(driver, "Consumable", func() *model.Consumable { return &model.Consumable{} })
}

func NewPlaceStore(driver neo4j.DriverWithContext) *Store[*model.Place] {
	return NewStore(driver, "Place", func() *model.Place { return &model.Place{} })
}

func NewEventStore(driver neo4j.DriverWithContext) *Store[*model.Event] {
	return NewStore(driver, "Event", func() *model.Event { return &model.Event{} })
}

func NewProjectStore(driver neo4j.DriverWithContext) *Store[*model.Project] {
	return NewStore(driver, "Project", func() *model.Project { return &model.Project{} })
}

func NewFeelingEmotionStore(driver neo4j.DriverWithContext) *Store[*model.FeelingEmotion] {
	return NewStore(driver, "FeelingEmotion", func() *model.FeelingEmotion { return &model.FeelingEmotion{} })
}

func NewFeelingConceptStore(driver neo4j.DriverWithContext) *Store[*model.FeelingConcept] {
	return NewStore(driver, "FeelingConcept", func() *model.FeelingConcept { return &model.FeelingConcept{} })
}
