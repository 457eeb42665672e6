package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexelgier/minerva/internal/ids"
	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
)

// contextCandidate is the LLM's raw proposal for a disambiguation
// annotation on a relationship: which entity it concerns and what
// sub-types apply to it in that relationship (spec §4.3: "optional
// context[]").
type contextCandidate struct {
	EntityUUID string   `json:"entity_uuid"`
	SubType    []string `json:"sub_type"`
}

// relationCandidate is the LLM's raw proposal for a relationship: UUIDs
// it believes it saw in the entity lookup it was given, plus the
// verbatim spans supporting the relation and any context annotations.
type relationCandidate struct {
	SourceUUID    string             `json:"source_uuid"`
	TargetUUID    string             `json:"target_uuid"`
	ProposedTypes []string           `json:"proposed_types"`
	SourceSpans   []string           `json:"source_spans"`
	Context       []contextCandidate `json:"context,omitempty"`
}

// ParseRelationCandidates decodes the LLM's JSON array response.
// Malformed responses yield nil (spec §9 silent-[] policy).
func ParseRelationCandidates(raw string) []relationCandidate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []relationCandidate
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// entityListPrompt prepends a "Known entities" block listing each
// curated entity's name and uuid, so the model has real UUIDs to
// reference instead of inventing ones validation will reject.
func entityListPrompt(journalText string, entities []model.EntityWithSpans) string {
	var b strings.Builder
	b.WriteString("Known entities:\n")
	for _, e := range entities {
		fmt.Fprintf(&b, "- %s (%s): %s\n", e.Entity.GetName(), e.Entity.GetType(), e.Entity.GetUUID())
	}
	b.WriteString("\nJournal entry:\n")
	b.WriteString(journalText)
	return b.String()
}

// ExtractRelationships prompts for relationships between the curated
// entities, validates every proposed UUID against that set, and drops
// any triple referencing a UUID the extraction run never produced
// (spec §4.3, scenario S3). A triple survives only if both endpoints
// validate and it carries at least one proposed type.
func ExtractRelationships(ctx context.Context, client llm.Client, journalText string, entities []model.EntityWithSpans) ([]model.RelationshipWithSpansAndContext, error) {
	knownUUIDs := map[string]bool{}
	for _, e := range entities {
		knownUUIDs[e.Entity.GetUUID()] = true
	}

	resp, err := client.Generate(ctx, llm.Request{
		System: "Extract relationships between the entities mentioned in this journal entry. Respond with a JSON array of {source_uuid, target_uuid, proposed_types, source_spans, context}, where context is an optional array of {entity_uuid, sub_type} disambiguation annotations.",
		Prompt: entityListPrompt(journalText, entities),
	})
	if err != nil {
		return nil, err
	}

	candidates := ParseRelationCandidates(resp.Text)
	results := make([]model.RelationshipWithSpansAndContext, 0, len(candidates))

	for _, c := range candidates {
		if !knownUUIDs[c.SourceUUID] || !knownUUIDs[c.TargetUUID] {
			continue
		}
		if len(c.ProposedTypes) == 0 {
			continue
		}

		relType := c.ProposedTypes[0]
		relation := model.Relation{
			UUID:          ids.New(),
			SourceUUID:    c.SourceUUID,
			TargetUUID:    c.TargetUUID,
			Type:          relType,
			ProposedTypes: c.ProposedTypes,
		}

		var spans []model.Span
		for _, s := range c.SourceSpans {
			if span, ok := HydrateSpan(journalText, s); ok {
				spans = append(spans, span)
			}
		}

		var context []model.RelationshipContext
		for _, cc := range c.Context {
			if !knownUUIDs[cc.EntityUUID] {
				continue
			}
			context = append(context, model.RelationshipContext{EntityUUID: cc.EntityUUID, SubType: cc.SubType})
		}

		results = append(results, model.RelationshipWithSpansAndContext{Relation: relation, Spans: spans, Context: context})
	}

	return results, nil
}
