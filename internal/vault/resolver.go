// Package vault models the external "linked note" index consumed by the
// extraction engine. The production implementation (a file-sync utility
// over an Obsidian-style vault) is an external collaborator per spec §1;
// only the interface it must satisfy is owned here.
package vault

import (
	"context"
	"strings"
	"sync"
)

// LinkedNote is what resolve_link() returns for a `[[Name]]` or
// `[[Name|Alias]]` reference: the canonical identity behind a mentioned
// name, if one is already known.
type LinkedNote struct {
	EntityName    string
	CanonicalName string
	Aliases       []string
	EntityUUID    string // empty if no existing graph node
	ShortSummary  string // empty if none on file
}

// Resolver resolves a wiki-style link to a known entity identity. Called
// once per unique link per journal (spec §6).
type Resolver interface {
	ResolveLink(ctx context.Context, linkText string) (LinkedNote, error)
}

// InMemoryResolver is a test double / minimal standalone implementation
// backed by a static map, keyed case-insensitively on canonical name.
type InMemoryResolver struct {
	mu    sync.RWMutex
	notes map[string]LinkedNote
}

// NewInMemoryResolver builds a resolver seeded with the given notes,
// always including the narrator as a default entry (spec §4.3 step 1).
func NewInMemoryResolver(notes []LinkedNote) *InMemoryResolver {
	r := &InMemoryResolver{notes: make(map[string]LinkedNote)}
	for _, n := range notes {
		r.Put(n)
	}
	r.ensureNarrator()
	return r
}

const narratorName = "Alex Elgier"

func (r *InMemoryResolver) ensureNarrator() {
	key := strings.ToLower(narratorName)
	if _, ok := r.notes[key]; !ok {
		r.notes[key] = LinkedNote{
			EntityName:    narratorName,
			CanonicalName: narratorName,
		}
	}
}

// Put inserts or replaces a note, indexed by its canonical name and every
// alias.
func (r *InMemoryResolver) Put(n LinkedNote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[strings.ToLower(n.CanonicalName)] = n
	for _, alias := range n.Aliases {
		r.notes[strings.ToLower(alias)] = n
	}
}

// ResolveLink looks up linkText case-insensitively; an unknown name
// resolves to a bare LinkedNote carrying only the name (no UUID, no
// summary) rather than an error — resolution of a never-seen entity is
// expected, not exceptional.
func (r *InMemoryResolver) ResolveLink(ctx context.Context, linkText string) (LinkedNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.notes[strings.ToLower(linkText)]; ok {
		return n, nil
	}
	return LinkedNote{EntityName: linkText, CanonicalName: linkText}, nil
}
