// Package model defines the typed entities, relations, and documents that
// flow through the Minerva pipeline.
package model

import (
	"time"

	"github.com/alexelgier/minerva/internal/ids"
)

// Entity is the common shape every domain object satisfies.
type Entity interface {
	ids.Partitioned
	GetUUID() string
	GetName() string
	GetType() string
}

// Base carries the three invariants every entity shares: a stable UUID, a
// creation timestamp, and a fixed partition.
type Base struct {
	UUID      string    `json:"uuid"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (b Base) GetUUID() string        { return b.UUID }
func (b Base) GetName() string        { return b.Name }
func (b Base) GetType() string        { return b.Type }
func (Base) Partition() ids.Partition { return ids.PartitionDomain }

// SetCreatedAt overrides the creation timestamp, used by extraction to
// stamp entities with the pipeline's logical clock instead of wall time.
func (b *Base) SetCreatedAt(t time.Time) { b.CreatedAt = t }

// NewBase constructs a Base, generating a UUID when one is not supplied.
func NewBase(entityType, name, uuid string) Base {
	if uuid == "" {
		uuid = ids.New()
	}
	return Base{
		UUID:      uuid,
		Type:      entityType,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// Summarized is embedded by every entity that carries the summary pair and
// optional embedding vector described in spec §3.
type Summarized struct {
	SummaryShort string    `json:"summary_short,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// ContentCategory enumerates the categories a Content entity may carry.
type ContentCategory string

const (
	ContentBook    ContentCategory = "BOOK"
	ContentArticle ContentCategory = "ARTICLE"
	ContentYoutube ContentCategory = "YOUTUBE"
	ContentMovie   ContentCategory = "MOVIE"
	ContentMisc    ContentCategory = "MISC"
)

// Person is a real-world individual mentioned in a journal.
type Person struct {
	Base
	Summarized
	Occupation string     `json:"occupation,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
}

// Emotion is a named feeling state (joy, grief, …) that a Person can
// experience via a FeelingEmotion.
type Emotion struct {
	Base
	Summarized
}

// Concept is an idea, theme, or topic extracted from quotes or journal
// text.
type Concept struct {
	Base
	Summarized
	Title       string `json:"title,omitempty"`
	ConceptText string `json:"concept_text,omitempty"`
	Analysis    string `json:"analysis,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Content is a consumed media item (book, article, video, …).
type Content struct {
	Base
	Summarized
	Title    string          `json:"title,omitempty"`
	Category ContentCategory `json:"category,omitempty"`
	Status   string          `json:"status,omitempty"`
	Author   string          `json:"author,omitempty"`
	Quotes   []string        `json:"quotes,omitempty"`
	URL      string          `json:"url,omitempty"`
}

// Consumable is a physical or experiential item consumed by the narrator.
type Consumable struct {
	Base
	Summarized
}

// Place is a named location.
type Place struct {
	Base
	Summarized
}

// Event is a dated occurrence, possibly with a duration and location.
type Event struct {
	Base
	Summarized
	Category string         `json:"category,omitempty"`
	Date     *time.Time     `json:"date,omitempty"`
	Duration *time.Duration `json:"duration,omitempty"`
	Location string         `json:"location,omitempty"`
}

// Project is a tracked personal or professional initiative.
type Project struct {
	Base
	Summarized
	Status           string     `json:"status,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	TargetCompletion *time.Time `json:"target_completion,omitempty"`
	Progress         int        `json:"progress"` // 0-100
}

// FeelingEmotion reifies a Person experiencing an Emotion at a point in
// time.
type FeelingEmotion struct {
	Base
	PersonUUID  string         `json:"person_uuid"`
	EmotionUUID string         `json:"emotion_uuid"`
	Timestamp   time.Time      `json:"timestamp"`
	Intensity   *int           `json:"intensity,omitempty"` // 1-10
	Duration    *time.Duration `json:"duration,omitempty"`
}

// FeelingConcept reifies a Person's feeling about a Concept at a point in
// time.
type FeelingConcept struct {
	Base
	PersonUUID  string         `json:"person_uuid"`
	ConceptUUID string         `json:"concept_uuid"`
	Timestamp   time.Time      `json:"timestamp"`
	Intensity   *int           `json:"intensity,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty"`
}
