package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
)

// MergeOrHydrate finds an existing entity of the same type and
// canonical name among existing. If found, it merges built into it per
// the §4.3 entity merge contract: every field of built wins except
// Summary/SummaryShort, which come from the LLM merge call over
// (existing.summary, new.summary), and UUID, which is kept from
// existing so curation and graph references stay stable across
// re-runs. If no match exists, built is hydrated via the LLM
// "person-hydrate" call (spec §4.3 step 4), which fills in summary,
// summary_short, and (when the model can sharpen it) name.
func MergeOrHydrate(ctx context.Context, client llm.Client, built model.Entity, existing []model.Entity, entityType string) model.Entity {
	for _, e := range existing {
		if e.GetType() != entityType {
			continue
		}
		if canonicalName(e.GetName()) != canonicalName(built.GetName()) {
			continue
		}
		return merge(ctx, client, built, e)
	}
	return hydrate(ctx, client, built, entityType)
}

// mergedSummary is the structured response shape requested from the
// LLM summary-merge call.
type mergedSummary struct {
	Summary      string `json:"summary"`
	SummaryShort string `json:"summary_short"`
}

// merge overwrites built's UUID with existing's and replaces its
// summary pair with the LLM's merge of the two. Every §3 entity type
// shares the same Base/Summarized field names but exposes no common
// setter interface, so field assignment goes through reflection rather
// than a type switch over eight near-identical cases.
func merge(ctx context.Context, client llm.Client, built, existing model.Entity) model.Entity {
	bv := reflect.ValueOf(built)
	if bv.Kind() != reflect.Ptr || bv.IsNil() {
		return built
	}
	ev := reflect.ValueOf(existing)
	if ev.Kind() == reflect.Ptr {
		ev = ev.Elem()
	}

	elem := bv.Elem()
	copyField(elem, ev, "UUID")

	summary, summaryShort := mergeSummaries(ctx, client, stringField(ev, "Summary"), stringField(elem, "Summary"), stringField(elem, "SummaryShort"))
	elem.FieldByName("Summary").SetString(summary)
	elem.FieldByName("SummaryShort").SetString(summaryShort)

	return built
}

// hydratedFields is the structured response shape requested from the
// LLM hydrate call (spec §4.3 step 4: "yields summary, summary_short,
// and name").
type hydratedFields struct {
	Name         string `json:"name"`
	Summary      string `json:"summary"`
	SummaryShort string `json:"summary_short"`
}

// hydrate fills in built's summary pair (and name, when the model
// refines it) via an LLM call keyed on the entity's type, generalizing
// the reference's single "person-hydrate" prompt to every §3 entity
// type. On any failure built is returned unchanged (spec §9: repository
// layers degrade to the caller's own data rather than fail extraction
// over a transient LLM error).
func hydrate(ctx context.Context, client llm.Client, built model.Entity, entityType string) model.Entity {
	if client == nil {
		return built
	}
	resp, err := client.Generate(ctx, llm.Request{
		System: fmt.Sprintf("Write a concise summary (<=100 words) and a short summary (<=30 words) for this %s based on how it is described in the journal entry. Refine its name if you can state it more precisely. Respond with JSON: {\"name\":...,\"summary\":...,\"summary_short\":...}.", entityType),
		Prompt: fmt.Sprintf("Name: %s", built.GetName()),
	})
	if err != nil {
		return built
	}
	var hf hydratedFields
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &hf); err != nil {
		return built
	}

	bv := reflect.ValueOf(built)
	if bv.Kind() != reflect.Ptr || bv.IsNil() {
		return built
	}
	elem := bv.Elem()
	if hf.Name != "" {
		setStringField(elem, "Name", hf.Name)
	}
	setStringField(elem, "Summary", hf.Summary)
	setStringField(elem, "SummaryShort", hf.SummaryShort)
	return built
}

func setStringField(v reflect.Value, name, val string) {
	f := v.FieldByName(name)
	if f.IsValid() && f.CanSet() && f.Kind() == reflect.String {
		f.SetString(val)
	}
}

func stringField(v reflect.Value, name string) string {
	f := v.FieldByName(name)
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

// mergeSummaries invokes the LLM merge call; on any failure it falls
// back to keeping the new summary pair untouched (spec §9: repositories
// degrade to the caller's own data rather than failing the extraction
// over a transient LLM error).
func mergeSummaries(ctx context.Context, client llm.Client, existingSummary, newSummary, newSummaryShort string) (summary, summaryShort string) {
	if client == nil {
		return newSummary, newSummaryShort
	}
	resp, err := client.Generate(ctx, llm.Request{
		System: "Merge the two summaries of the same entity into one coherent summary (<=100 words) and a short summary (<=30 words). Respond with JSON: {\"summary\":...,\"summary_short\":...}.",
		Prompt: fmt.Sprintf("Existing summary:\n%s\n\nNew summary:\n%s", existingSummary, newSummary),
	})
	if err != nil {
		return newSummary, newSummaryShort
	}
	var merged mergedSummary
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &merged); err != nil {
		return newSummary, newSummaryShort
	}
	return merged.Summary, merged.SummaryShort
}

func copyField(dst, src reflect.Value, name string) {
	df := dst.FieldByName(name)
	sf := src.FieldByName(name)
	if !df.IsValid() || !sf.IsValid() || !df.CanSet() {
		return
	}
	if df.Type() != sf.Type() {
		return
	}
	df.Set(sf)
}
