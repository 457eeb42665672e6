package model

// EntityWithSpans pairs an extracted entity with the spans hydrated for
// it against the source journal text.
type EntityWithSpans struct {
	Entity Entity `json:"entity"`
	Spans  []Span `json:"spans"`
}

// RelationshipContext is a disambiguation annotation attached to a
// relationship curation item: which entity the annotation concerns and
// what sub-types apply to it in that relationship.
type RelationshipContext struct {
	EntityUUID string   `json:"entity_uuid"`
	SubType    []string `json:"sub_type"`
}

// RelationshipWithSpansAndContext is the wire shape produced by
// relationship extraction.
type RelationshipWithSpansAndContext struct {
	Relation Relation              `json:"relation"`
	Spans    []Span                `json:"spans"`
	Context  []RelationshipContext `json:"context,omitempty"`
}

// CuratableItemKind discriminates the payload carried by a CuratableItem.
type CuratableItemKind string

const (
	KindRelation        CuratableItemKind = "relation"
	KindConceptRelation CuratableItemKind = "concept_relation"
	KindFeelingEmotion  CuratableItemKind = "feeling_emotion"
	KindFeelingConcept  CuratableItemKind = "feeling_concept"
)

// CuratableItem is the sum type carried across the extraction/curation
// boundary for anything that is not a plain entity: relations, concept
// relations, and feelings.
type CuratableItem struct {
	Kind    CuratableItemKind     `json:"kind"`
	Data    any                   `json:"data"`
	Spans   []Span                `json:"spans,omitempty"`
	Context []RelationshipContext `json:"context,omitempty"`
}
