package extraction

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/alexelgier/minerva/internal/codec"
	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
)

// feelingCandidate is the LLM's raw proposal for one person's feeling
// toward an emotion or a concept.
type feelingCandidate struct {
	PersonUUID string `json:"person_uuid"`
	TargetUUID string `json:"target_uuid"` // an emotion or concept UUID
	Timestamp  string `json:"timestamp"`
	Intensity  *int   `json:"intensity,omitempty"` // 1-10
	Duration   string `json:"duration,omitempty"`
}

func parseFeelingCandidates(raw string) []feelingCandidate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []feelingCandidate
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// filterByType returns the subset of entities matching typeName, plus a
// set of their UUIDs for validation.
func filterByType(entities []model.EntityWithSpans, typeName string) ([]model.EntityWithSpans, map[string]bool) {
	var filtered []model.EntityWithSpans
	uuids := map[string]bool{}
	for _, e := range entities {
		if e.Entity.GetType() == typeName {
			filtered = append(filtered, e)
			uuids[e.Entity.GetUUID()] = true
		}
	}
	return filtered, uuids
}

// ExtractFeelingEmotions prompts for every (person, emotion) pair
// expressed in the journal, validating both UUIDs against the curated
// Person and Emotion entities produced earlier in the pipeline run.
func ExtractFeelingEmotions(ctx context.Context, client llm.Client, journalText string, entities []model.EntityWithSpans, fallback time.Time) ([]model.FeelingEmotion, error) {
	persons, personUUIDs := filterByType(entities, "Person")
	emotions, emotionUUIDs := filterByType(entities, "Emotion")

	resp, err := client.Generate(ctx, llm.Request{
		System: "Identify every person-emotion pair this journal entry expresses. Respond with a JSON array of {person_uuid, target_uuid, timestamp, intensity, duration}.",
		Prompt: entityListPrompt(journalText, append(append([]model.EntityWithSpans{}, persons...), emotions...)),
	})
	if err != nil {
		return nil, err
	}

	var out []model.FeelingEmotion
	for _, c := range parseFeelingCandidates(resp.Text) {
		if !personUUIDs[c.PersonUUID] || !emotionUUIDs[c.TargetUUID] {
			continue
		}
		out = append(out, model.FeelingEmotion{
			Base:        model.NewBase("FeelingEmotion", "", ""),
			PersonUUID:  c.PersonUUID,
			EmotionUUID: c.TargetUUID,
			Timestamp:   feelingTimestamp(c.Timestamp, fallback),
			Intensity:   c.Intensity,
			Duration:    parseDurationOrNil(c.Duration),
		})
	}
	return out, nil
}

// ExtractFeelingConcepts is the Concept-target analogue of
// ExtractFeelingEmotions.
func ExtractFeelingConcepts(ctx context.Context, client llm.Client, journalText string, entities []model.EntityWithSpans, fallback time.Time) ([]model.FeelingConcept, error) {
	persons, personUUIDs := filterByType(entities, "Person")
	concepts, conceptUUIDs := filterByType(entities, "Concept")

	resp, err := client.Generate(ctx, llm.Request{
		System: "Identify every person-concept feeling pair this journal entry expresses. Respond with a JSON array of {person_uuid, target_uuid, timestamp, intensity, duration}.",
		Prompt: entityListPrompt(journalText, append(append([]model.EntityWithSpans{}, persons...), concepts...)),
	})
	if err != nil {
		return nil, err
	}

	var out []model.FeelingConcept
	for _, c := range parseFeelingCandidates(resp.Text) {
		if !personUUIDs[c.PersonUUID] || !conceptUUIDs[c.TargetUUID] {
			continue
		}
		out = append(out, model.FeelingConcept{
			Base:        model.NewBase("FeelingConcept", "", ""),
			PersonUUID:  c.PersonUUID,
			ConceptUUID: c.TargetUUID,
			Timestamp:   feelingTimestamp(c.Timestamp, fallback),
			Intensity:   c.Intensity,
			Duration:    parseDurationOrNil(c.Duration),
		})
	}
	return out, nil
}

func feelingTimestamp(raw string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return fallback
}

func parseDurationOrNil(s string) *time.Duration {
	d, _ := codec.ParseDuration(s)
	return d
}
