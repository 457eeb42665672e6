package model

import "time"

// CurationStatus is the per-item lattice: PENDING is the only
// non-terminal state.
type CurationStatus string

const (
	CurationPending  CurationStatus = "PENDING"
	CurationAccepted CurationStatus = "ACCEPTED"
	CurationRejected CurationStatus = "REJECTED"
)

// JournalOverallStatus is the per-journal lattice tracked by
// journal_curation.overall_status.
type JournalOverallStatus string

const (
	OverallPendingEntities  JournalOverallStatus = "PENDING_ENTITIES"
	OverallEntitiesDone     JournalOverallStatus = "ENTITIES_DONE"
	OverallPendingRelations JournalOverallStatus = "PENDING_RELATIONS"
	OverallCompleted        JournalOverallStatus = "COMPLETED"
)

// JournalCuration is the journal_curation row.
type JournalCuration struct {
	UUID          string               `json:"uuid"`
	Text          string               `json:"text"`
	CreatedAt     time.Time            `json:"created_at"`
	OverallStatus JournalOverallStatus `json:"overall_status"`
}

// EntityCurationItem is an entity_curation_items row.
type EntityCurationItem struct {
	UUID         string         `json:"uuid"`
	JournalUUID  string         `json:"journal_id"`
	EntityType   string         `json:"entity_type"`
	OriginalJSON []byte         `json:"original_json,omitempty"`
	CuratedJSON  []byte         `json:"curated_json,omitempty"`
	Status       CurationStatus `json:"status"`
	IsUserAdded  bool           `json:"is_user_added"`
}

// RelationshipCurationItem is a relationship_curation_items row. Its
// shape mirrors EntityCurationItem but the stored JSON carries a
// CuratableItem rather than a bare entity.
type RelationshipCurationItem struct {
	UUID         string            `json:"uuid"`
	JournalUUID  string            `json:"journal_id"`
	Kind         CuratableItemKind `json:"kind"`
	OriginalJSON []byte            `json:"original_json,omitempty"`
	CuratedJSON  []byte            `json:"curated_json,omitempty"`
	Status       CurationStatus    `json:"status"`
	IsUserAdded  bool              `json:"is_user_added"`
}

// SpanCurationItem is a span_curation_items row; OwnerUUID is either an
// entity or relationship curation item's uuid.
type SpanCurationItem struct {
	UUID        string `json:"uuid"`
	JournalUUID string `json:"journal_id"`
	OwnerUUID   string `json:"owner_uuid"`
	SpanJSON    []byte `json:"span_json"`
}

// RelationshipContextItem is a relationship_context_items row.
type RelationshipContextItem struct {
	JournalUUID      string `json:"journal_id"`
	RelationshipUUID string `json:"relationship_uuid"`
	EntityUUID       string `json:"entity_uuid"`
	SubTypeJSON      []byte `json:"sub_type_json"`
}

// CurationStats is the response shape of get_curation_stats(): counts per
// status bucket across journals, entities, and relationships.
type CurationStats struct {
	Journals      map[JournalOverallStatus]int `json:"journals"`
	Entities      map[CurationStatus]int       `json:"entities"`
	Relationships map[CurationStatus]int       `json:"relationships"`
}
