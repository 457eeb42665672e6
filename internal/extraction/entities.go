package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexelgier/minerva/internal/codec"
	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
	"github.com/alexelgier/minerva/internal/vault"
)

// parseTimeField parses an RFC3339 or date-only field, returning nil on
// empty or malformed input (extraction never fails the whole candidate
// over one bad date field).
func parseTimeField(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}

func parseDurationField(s string) *time.Duration {
	d, err := codec.ParseDuration(s)
	if err != nil {
		return nil
	}
	return d
}

func parseIntField(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Candidate is the shape the extraction LLM is prompted to emit for a
// single extracted entity: a canonical name, the verbatim quotes from
// the journal that support it, and a bag of type-specific fields (e.g.
// "occupation" for a Person, "category" for a Content). Keeping this
// generic avoids one bespoke parser per entity type (spec §9), mirroring
// the single polymorphic codec table in internal/codec.
type Candidate struct {
	Name        string            `json:"name"`
	SourceSpans []string          `json:"source_spans"`
	Fields      map[string]string `json:"fields"`
	ExistingRef string            `json:"existing_ref,omitempty"`
}

// Builder constructs a concrete model.Entity of one type from a
// Candidate's generic fields. Each builder knows only its own type's
// field names.
type Builder func(name string, fields map[string]string) model.Entity

// Builders is the type -> Builder registry, one entry per §3 entity
// type the extraction engine can produce.
var Builders = map[string]Builder{
	"Person":         buildPerson,
	"Emotion":        buildEmotion,
	"Concept":        buildConcept,
	"Content":        buildContent,
	"Consumable":     buildConsumable,
	"Place":          buildPlace,
	"Event":          buildEvent,
	"Project":        buildProject,
}

func buildPerson(name string, f map[string]string) model.Entity {
	return &model.Person{
		Base:       model.NewBase("Person", name, ""),
		Occupation: f["occupation"],
		BirthDate:  parseTimeField(f["birth_date"]),
	}
}

func buildEmotion(name string, f map[string]string) model.Entity {
	return &model.Emotion{Base: model.NewBase("Emotion", name, "")}
}

func buildConcept(name string, f map[string]string) model.Entity {
	return &model.Concept{
		Base:        model.NewBase("Concept", name, ""),
		Title:       f["title"],
		ConceptText: f["concept_text"],
		Analysis:    f["analysis"],
		Source:      f["source"],
	}
}

func buildContent(name string, f map[string]string) model.Entity {
	return &model.Content{
		Base:     model.NewBase("Content", name, ""),
		Title:    f["title"],
		Category: model.ContentCategory(f["category"]),
		Status:   f["status"],
		Author:   f["author"],
		URL:      f["url"],
	}
}

func buildConsumable(name string, f map[string]string) model.Entity {
	return &model.Consumable{Base: model.NewBase("Consumable", name, "")}
}

func buildPlace(name string, f map[string]string) model.Entity {
	return &model.Place{Base: model.NewBase("Place", name, "")}
}

func buildEvent(name string, f map[string]string) model.Entity {
	return &model.Event{
		Base:     model.NewBase("Event", name, ""),
		Category: f["category"],
		Date:     parseTimeField(f["date"]),
		Duration: parseDurationField(f["duration"]),
		Location: f["location"],
	}
}

func buildProject(name string, f map[string]string) model.Entity {
	return &model.Project{
		Base:             model.NewBase("Project", name, ""),
		Status:           f["status"],
		StartDate:        parseTimeField(f["start_date"]),
		TargetCompletion: parseTimeField(f["target_completion"]),
		Progress:         parseIntField(f["progress"]),
	}
}

// lookupNarrator is the journal's narrator, always present in the
// entity lookup whether or not the journal links to them.
const lookupNarrator = "Alex Elgier"

// BuildLookup seeds an entity name -> vault.LinkedNote lookup from the
// journal's [[wiki links]] plus the narrator, each resolved through the
// resolver (spec §4.3). The LLM prompt is given this lookup so it can
// reference existing vault entities by name instead of re-describing
// them.
func BuildLookup(ctx context.Context, journalText string, resolver vault.Resolver) map[string]vault.LinkedNote {
	lookup := map[string]vault.LinkedNote{}
	for _, link := range ParseLinks(journalText) {
		note, _ := resolver.ResolveLink(ctx, link.Target)
		lookup[strings.ToLower(link.DisplayName())] = note
	}
	if _, ok := lookup[strings.ToLower(lookupNarrator)]; !ok {
		note, _ := resolver.ResolveLink(ctx, lookupNarrator)
		lookup[strings.ToLower(lookupNarrator)] = note
	}
	return lookup
}

// ParseCandidates decodes the LLM's JSON array response into
// Candidates. An empty, non-JSON or malformed response yields nil
// rather than an error, and nothing is logged (spec §9: silent [] on
// caught parse failures).
func ParseCandidates(raw string) []Candidate {
	var out []Candidate
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// ExtractEntities runs the §4.3 pipeline for a single entity type,
// given a lookup already built by BuildLookup: invoke the LLM with that
// lookup, dedup by canonical name within the type, merge-or-hydrate
// against the existing graph entities passed in, and hydrate spans
// against the journal text. It returns one EntityWithSpans per
// surviving candidate.
func ExtractEntities(ctx context.Context, client llm.Client, entityType, journalText string, lookup map[string]vault.LinkedNote, existing []model.Entity, now time.Time) ([]model.EntityWithSpans, error) {
	builder, ok := Builders[entityType]
	if !ok {
		return nil, fmt.Errorf("extraction: unknown entity type %q", entityType)
	}

	resp, err := client.Generate(ctx, llm.Request{
		System: fmt.Sprintf("Extract every %s mentioned in the journal entry. Respond with a JSON array of candidates.", entityType),
		Prompt: promptWithLookup(journalText, lookup),
	})
	if err != nil {
		return nil, err
	}

	candidates := Dedup(ParseCandidates(resp.Text))

	results := make([]model.EntityWithSpans, 0, len(candidates))
	for _, cand := range candidates {
		built := builder(cand.Name, cand.Fields)
		if base, ok := built.(interface{ SetCreatedAt(time.Time) }); ok {
			base.SetCreatedAt(now)
		}

		entity := MergeOrHydrate(ctx, client, built, existing, entityType)

		var spans []model.Span
		for _, s := range cand.SourceSpans {
			if span, ok := HydrateSpan(journalText, s); ok {
				spans = append(spans, span)
			}
		}

		results = append(results, model.EntityWithSpans{Entity: entity, Spans: spans})
	}

	return results, nil
}

// promptWithLookup builds the "Known entities" glossary the LLM is
// given alongside the journal text: each entry's short summary (spec
// §4.3 step 2) so the model knows what it already knows about a
// mentioned name, plus its existing UUID when the vault has already
// resolved it to a graph node.
func promptWithLookup(journalText string, lookup map[string]vault.LinkedNote) string {
	var b strings.Builder
	b.WriteString("Known entities:\n")
	for name, note := range lookup {
		b.WriteString("- ")
		b.WriteString(name)
		if note.ShortSummary != "" {
			b.WriteString(": ")
			b.WriteString(note.ShortSummary)
		}
		if note.EntityUUID != "" {
			fmt.Fprintf(&b, " (uuid: %s)", note.EntityUUID)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nJournal entry:\n")
	b.WriteString(journalText)
	return b.String()
}
