package extraction

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/alexelgier/minerva/internal/ids"
	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
)

// maxConceptCandidates and maxSourceQuotes are the concept-extraction
// sub-workflow's two caps (spec §4.1): at most 5 concepts proposed per
// run, drawn from at most 20 quotes.
const (
	maxConceptCandidates = 5
	maxSourceQuotes      = 20
)

type conceptCandidate struct {
	Title       string   `json:"title"`
	ConceptText string   `json:"concept_text"`
	Analysis    string   `json:"analysis"`
	SourceSpans []string `json:"source_spans"`
}

func parseConceptCandidates(raw string) []conceptCandidate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []conceptCandidate
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	if len(out) > maxConceptCandidates {
		out = out[:maxConceptCandidates]
	}
	return out
}

// ExtractConceptCandidates extracts up to maxConceptCandidates concepts
// from a Content entity's quotes, capping the quotes considered at
// maxSourceQuotes (spec §4.1). contentUUID is stamped on each
// candidate's Source field for provenance; de-duplication against
// already-known concepts happens in DedupAgainstExisting.
func ExtractConceptCandidates(ctx context.Context, client llm.Client, contentUUID string, quotes []string, now time.Time) ([]model.EntityWithSpans, error) {
	if len(quotes) > maxSourceQuotes {
		quotes = quotes[:maxSourceQuotes]
	}
	joined := strings.Join(quotes, "\n---\n")

	resp, err := client.Generate(ctx, llm.Request{
		System: "Extract up to five candidate concepts (ideas, themes, topics) supported by these quotes. Respond with a JSON array of {title, concept_text, analysis, source_spans}.",
		Prompt: joined,
	})
	if err != nil {
		return nil, err
	}

	candidates := parseConceptCandidates(resp.Text)
	results := make([]model.EntityWithSpans, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Title) == "" {
			continue
		}
		concept := &model.Concept{
			Base:        model.NewBase("Concept", c.Title, ""),
			Title:       c.Title,
			ConceptText: c.ConceptText,
			Analysis:    c.Analysis,
			Source:      contentUUID,
		}
		concept.SetCreatedAt(now)

		var spans []model.Span
		for _, s := range c.SourceSpans {
			if span, ok := HydrateSpan(joined, s); ok {
				spans = append(spans, span)
			}
		}
		results = append(results, model.EntityWithSpans{Entity: concept, Spans: spans})
	}
	return results, nil
}

// DedupAgainstExisting drops any freshly-extracted concept whose
// canonical name matches one already in the graph, returning only the
// genuinely new candidates.
func DedupAgainstExisting(fresh []model.EntityWithSpans, existing []*model.Concept) []model.EntityWithSpans {
	seen := map[string]bool{}
	for _, e := range existing {
		seen[canonicalName(e.Name)] = true
	}
	out := make([]model.EntityWithSpans, 0, len(fresh))
	for _, ews := range fresh {
		name := canonicalName(ews.Entity.GetName())
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, ews)
	}
	return out
}

type conceptRelationCandidate struct {
	SourceUUID string `json:"source_uuid"`
	TargetUUID string `json:"target_uuid"`
	Type       string `json:"type"`
}

func parseConceptRelationCandidates(raw string) []conceptRelationCandidate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []conceptRelationCandidate
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// conceptRelationTypes is the closed set a candidate's Type must belong
// to (spec §3); anything else is dropped.
var conceptRelationTypes = map[string]model.ConceptRelationType{
	"GENERALIZES":  model.Generalizes,
	"SPECIFIC_OF":  model.SpecificOf,
	"PART_OF":      model.PartOf,
	"HAS_PART":     model.HasPart,
	"SUPPORTS":     model.Supports,
	"SUPPORTED_BY": model.SupportedBy,
	"OPPOSES":      model.Opposes,
	"SIMILAR_TO":   model.SimilarTo,
	"RELATES_TO":   model.RelatesTo,
}

// DiscoverConceptRelations prompts the LLM to relate a batch of newly
// proposed concepts to each other and to the nearby existing concepts
// supplied in context, validating every type against the closed
// ConceptRelationType set.
func DiscoverConceptRelations(ctx context.Context, client llm.Client, conceptContext string, knownUUIDs map[string]bool) ([]model.ConceptRelation, error) {
	resp, err := client.Generate(ctx, llm.Request{
		System: "Propose relations between these concepts. Respond with a JSON array of {source_uuid, target_uuid, type}, type one of GENERALIZES, SPECIFIC_OF, PART_OF, HAS_PART, SUPPORTS, SUPPORTED_BY, OPPOSES, SIMILAR_TO, RELATES_TO.",
		Prompt: conceptContext,
	})
	if err != nil {
		return nil, err
	}

	candidates := parseConceptRelationCandidates(resp.Text)
	results := make([]model.ConceptRelation, 0, len(candidates))
	for _, c := range candidates {
		if !knownUUIDs[c.SourceUUID] || !knownUUIDs[c.TargetUUID] {
			continue
		}
		relType, ok := conceptRelationTypes[c.Type]
		if !ok {
			continue
		}
		results = append(results, model.ConceptRelation{
			UUID:          ids.New(),
			SourceUUID:    c.SourceUUID,
			TargetUUID:    c.TargetUUID,
			Type:          relType,
			ProposedTypes: []model.ConceptRelationType{relType},
		})
	}
	return results, nil
}
