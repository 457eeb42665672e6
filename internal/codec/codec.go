// Package codec implements the tagged-variant JSON codec used at every
// polymorphic boundary in Minerva: the curation store's JSON blobs and the
// orchestrator's durable event log. A single registry, keyed on the `type`
// (entities) or `kind` (curatable items) discriminator already present on
// the wire, replaces per-type bespoke serializers (spec §9).
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/alexelgier/minerva/internal/model"
)

// entityDecoders maps the Base.Type discriminator to a constructor that
// unmarshals into the correct concrete entity.
var entityDecoders = map[string]func([]byte) (model.Entity, error){
	"Person": func(b []byte) (model.Entity, error) {
		var v model.Person
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"Emotion": func(b []byte) (model.Entity, error) {
		var v model.Emotion
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"Concept": func(b []byte) (model.Entity, error) {
		var v model.Concept
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"Content": func(b []byte) (model.Entity, error) {
		var v model.Content
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"Consumable": func(b []byte) (model.Entity, error) {
		var v model.Consumable
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"Place": func(b []byte) (model.Entity, error) {
		var v model.Place
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"Event": func(b []byte) (model.Entity, error) {
		var v model.Event
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"Project": func(b []byte) (model.Entity, error) {
		var v model.Project
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"FeelingEmotion": func(b []byte) (model.Entity, error) {
		var v model.FeelingEmotion
		err := json.Unmarshal(b, &v)
		return &v, err
	},
	"FeelingConcept": func(b []byte) (model.Entity, error) {
		var v model.FeelingConcept
		err := json.Unmarshal(b, &v)
		return &v, err
	},
}

type typeTag struct {
	Type string `json:"type"`
}

// EncodeEntity marshals any supported entity to its JSON wire form. The
// `type` discriminator is already a field on model.Base, so this is a
// plain json.Marshal — kept as a named function so callers never depend
// on encoding/json directly at this boundary.
func EncodeEntity(e model.Entity) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("codec: cannot encode nil entity")
	}
	return json.Marshal(e)
}

// DecodeEntity reconstitutes a concrete entity from its tagged JSON blob.
// An unrecognized type is reported as an error; callers that must match
// spec §4.2's "unknown types are silently skipped (logged)" behavior
// should treat this error as a skip-and-log, not a hard failure.
func DecodeEntity(data []byte) (model.Entity, error) {
	var tag typeTag
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("codec: reading type discriminator: %w", err)
	}
	dec, ok := entityDecoders[tag.Type]
	if !ok {
		return nil, fmt.Errorf("codec: unknown entity type %q", tag.Type)
	}
	return dec(data)
}

type kindTag struct {
	Kind model.CuratableItemKind `json:"kind"`
}

var curatableDecoders = map[model.CuratableItemKind]func(json.RawMessage) (interface{}, error){
	model.KindRelation: func(b json.RawMessage) (interface{}, error) {
		var v model.Relation
		err := json.Unmarshal(b, &v)
		return v, err
	},
	model.KindConceptRelation: func(b json.RawMessage) (interface{}, error) {
		var v model.ConceptRelation
		err := json.Unmarshal(b, &v)
		return v, err
	},
	model.KindFeelingEmotion: func(b json.RawMessage) (interface{}, error) {
		var v model.FeelingEmotion
		err := json.Unmarshal(b, &v)
		return v, err
	},
	model.KindFeelingConcept: func(b json.RawMessage) (interface{}, error) {
		var v model.FeelingConcept
		err := json.Unmarshal(b, &v)
		return v, err
	},
}

// curatableWire is the on-the-wire envelope for a CuratableItem: Data is
// kept raw until Kind is known.
type curatableWire struct {
	Kind    model.CuratableItemKind       `json:"kind"`
	Data    json.RawMessage               `json:"data"`
	Spans   []model.Span                  `json:"spans,omitempty"`
	Context []model.RelationshipContext   `json:"context,omitempty"`
}

// EncodeCuratableItem marshals a CuratableItem to its JSON wire form.
func EncodeCuratableItem(item model.CuratableItem) ([]byte, error) {
	dataBytes, err := json.Marshal(item.Data)
	if err != nil {
		return nil, fmt.Errorf("codec: marshaling curatable data: %w", err)
	}
	wire := curatableWire{
		Kind:    item.Kind,
		Data:    dataBytes,
		Spans:   item.Spans,
		Context: item.Context,
	}
	return json.Marshal(wire)
}

// DecodeCuratableData unmarshals raw into the concrete type registered for
// kind, for callers (like the curation store) that already know the kind
// from its own column and only have the bare data JSON, not the full
// curatableWire envelope.
func DecodeCuratableData(kind model.CuratableItemKind, raw []byte) (interface{}, error) {
	dec, ok := curatableDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("codec: unknown curatable kind %q", kind)
	}
	return dec(raw)
}

// DecodeCuratableItem reconstitutes a CuratableItem from its tagged JSON
// blob, dispatching item.Data's concrete type on the `kind` field.
func DecodeCuratableItem(data []byte) (model.CuratableItem, error) {
	var wire curatableWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return model.CuratableItem{}, fmt.Errorf("codec: reading kind discriminator: %w", err)
	}
	dec, ok := curatableDecoders[wire.Kind]
	if !ok {
		return model.CuratableItem{}, fmt.Errorf("codec: unknown curatable kind %q", wire.Kind)
	}
	payload, err := dec(wire.Data)
	if err != nil {
		return model.CuratableItem{}, fmt.Errorf("codec: decoding %s payload: %w", wire.Kind, err)
	}
	return model.CuratableItem{
		Kind:    wire.Kind,
		Data:    payload,
		Spans:   wire.Spans,
		Context: wire.Context,
	}, nil
}
