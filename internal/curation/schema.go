package curation

import "context"

// schema is the normative DDL for the curation store (spec §3, §4.2).
// Every curation item's payload is stored as JSONB: entities carry
// their own `type` discriminator, relationship items store the bare
// data JSON with the kind in its own column, so the store never needs
// to know the shape of an entity or a relationship — it only moves
// bytes and enforces the status/ownership lattice.
const schema = `
CREATE TABLE IF NOT EXISTS journal_curation (
	uuid           UUID PRIMARY KEY,
	text           TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	overall_status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entity_curation_items (
	uuid          UUID PRIMARY KEY,
	journal_id    UUID NOT NULL REFERENCES journal_curation(uuid),
	entity_type   TEXT NOT NULL,
	original_json JSONB,
	curated_json  JSONB,
	status        TEXT NOT NULL,
	is_user_added BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_entity_curation_journal ON entity_curation_items(journal_id);
CREATE INDEX IF NOT EXISTS idx_entity_curation_status ON entity_curation_items(journal_id, status);

CREATE TABLE IF NOT EXISTS relationship_curation_items (
	uuid          UUID PRIMARY KEY,
	journal_id    UUID NOT NULL REFERENCES journal_curation(uuid),
	kind          TEXT NOT NULL,
	original_json JSONB,
	curated_json  JSONB,
	status        TEXT NOT NULL,
	is_user_added BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_relationship_curation_journal ON relationship_curation_items(journal_id);
CREATE INDEX IF NOT EXISTS idx_relationship_curation_status ON relationship_curation_items(journal_id, status);

CREATE TABLE IF NOT EXISTS span_curation_items (
	uuid        UUID PRIMARY KEY,
	journal_id  UUID NOT NULL REFERENCES journal_curation(uuid),
	owner_uuid  UUID NOT NULL,
	span_json   JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_span_curation_owner ON span_curation_items(owner_uuid);

CREATE TABLE IF NOT EXISTS relationship_context_items (
	journal_id        UUID NOT NULL REFERENCES journal_curation(uuid),
	relationship_uuid UUID NOT NULL,
	entity_uuid       UUID NOT NULL,
	sub_type_json     JSONB NOT NULL,
	PRIMARY KEY (relationship_uuid, entity_uuid)
);
CREATE INDEX IF NOT EXISTS idx_relationship_context_rel ON relationship_context_items(relationship_uuid);
`

// Migrate applies the curation schema. It is idempotent (every
// statement is IF NOT EXISTS) so it can run on every process start.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}
