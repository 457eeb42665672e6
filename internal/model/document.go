package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexelgier/minerva/internal/ids"
)

// DocBase is the shared shape for lexical (text-artifact) documents.
type DocBase struct {
	UUID      string    `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
}

func (DocBase) Partition() ids.Partition { return ids.PartitionLexical }

// NewDocBase constructs a DocBase, generating a UUID when one is not
// supplied.
func NewDocBase(uuid string) DocBase {
	if uuid == "" {
		uuid = ids.New()
	}
	return DocBase{UUID: uuid, CreatedAt: time.Now()}
}

// SurveyVector is a fixed-length scored dimension set (PANAS, BPNS,
// Flourishing).
type SurveyVector map[string]float64

// JournalEntry is the free-form text input a pipeline run is submitted
// for.
type JournalEntry struct {
	DocBase
	Date             time.Time    `json:"date"` // Y-M-D granularity
	Text             string       `json:"text"`
	NarrativeExcerpt string       `json:"narrative_excerpt,omitempty"`
	PANASPositive    *float64     `json:"panas_positive,omitempty"`
	PANASNegative    *float64     `json:"panas_negative,omitempty"`
	BPNS             SurveyVector `json:"bpns,omitempty"`
	Flourishing      SurveyVector `json:"flourishing,omitempty"`
	WakeTime         *time.Time   `json:"wake_time,omitempty"`
	SleepTime        *time.Time   `json:"sleep_time,omitempty"`
}

// WorkflowID derives the deterministic orchestrator workflow id for this
// journal entry: journal-{date}-{uuid}.
func (j *JournalEntry) WorkflowID() string {
	return fmt.Sprintf("journal-%s-%s", j.Date.Format("2006-01-02"), j.UUID)
}

// Span is an offset pair into an immutable document with the exact
// substring it denotes.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"` // exclusive
	Text  string `json:"text"`
}

// Hydrate validates the span invariant against the supplied document text:
// text[start:end] must equal Text, case-insensitively.
func (s Span) Hydrate(docText string) bool {
	if s.Start < 0 || s.End > len(docText) || s.Start >= s.End {
		return false
	}
	return strings.EqualFold(docText[s.Start:s.End], s.Text)
}

// Chunk is a contiguous slice of a document, used for retrieval and
// context windows.
type Chunk struct {
	DocBase
	SourceUUID string `json:"source_uuid"`
	Span       Span   `json:"span"`
	Text       string `json:"text"`
}

// Quote is a text artifact attributed to a Content entity, carrying its
// own embedding for concept-extraction similarity search.
type Quote struct {
	DocBase
	ContentUUID string    `json:"content_uuid"`
	Text        string    `json:"text"`
	Section     string    `json:"section,omitempty"`
	Page        string    `json:"page,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
}
