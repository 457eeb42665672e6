// Package ids provides the identifier and partition primitives shared by
// every entity, relation, and document type in the Minerva model.
package ids

import (
	"github.com/google/uuid"
)

// New generates a new random identifier string.
func New() string {
	return uuid.NewString()
}

// Partition classifies a node as a real-world referent, a text artifact,
// or a time anchor.
type Partition string

const (
	// PartitionDomain marks real-world referents: people, concepts, events.
	PartitionDomain Partition = "DOMAIN"
	// PartitionLexical marks text artifacts: journal entries, spans, quotes.
	PartitionLexical Partition = "LEXICAL"
	// PartitionTemporal marks time anchors.
	PartitionTemporal Partition = "TEMPORAL"
)

// Partitioned is implemented by every model type; the partition a type
// reports is fixed at compile time and never varies per instance.
type Partitioned interface {
	Partition() Partition
}
