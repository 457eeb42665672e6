package curation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexelgier/minerva/internal/codec"
	"github.com/alexelgier/minerva/internal/ids"
	"github.com/alexelgier/minerva/internal/model"
)

// CreateJournalForCuration inserts the journal_curation row a pipeline
// run curates against, in PENDING_ENTITIES (spec §4.2).
func (s *Store) CreateJournalForCuration(ctx context.Context, journal model.JournalEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO journal_curation (uuid, text, created_at, overall_status) VALUES ($1, $2, $3, $4)`,
		journal.UUID, journal.Text, journal.CreatedAt, model.OverallPendingEntities,
	)
	return err
}

// QueueEntitiesForCuration inserts one entity_curation_items row per
// entity (encoded via internal/codec) plus one span_curation_items row
// per hydrated span, all within a single transaction.
func (s *Store) QueueEntitiesForCuration(ctx context.Context, journalUUID string, entities []model.EntityWithSpans) ([]string, error) {
	itemUUIDs := make([]string, 0, len(entities))

	err := s.withTx(ctx, func(tx pgxTx) error {
		for _, ews := range entities {
			entityJSON, err := codec.EncodeEntity(ews.Entity)
			if err != nil {
				return err
			}

			itemUUID := ids.New()
			itemUUIDs = append(itemUUIDs, itemUUID)

			if _, err := tx.Exec(ctx,
				`INSERT INTO entity_curation_items (uuid, journal_id, entity_type, original_json, status, is_user_added)
				 VALUES ($1, $2, $3, $4, $5, FALSE)`,
				itemUUID, journalUUID, ews.Entity.GetType(), entityJSON, model.CurationPending,
			); err != nil {
				return err
			}

			for _, span := range ews.Spans {
				spanJSON, err := json.Marshal(span)
				if err != nil {
					return err
				}
				if _, err := tx.Exec(ctx,
					`INSERT INTO span_curation_items (uuid, journal_id, owner_uuid, span_json) VALUES ($1, $2, $3, $4)`,
					ids.New(), journalUUID, itemUUID, spanJSON,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})

	return itemUUIDs, err
}

// AcceptEntity marks an entity_curation_items row ACCEPTED, storing the
// (possibly human-edited) curated JSON (spec §4.2 accept_entity
// contract). When isUserAdded is true, entityUUID is ignored and a new
// row is inserted instead — an operator adding an entity the extractor
// never proposed — with a fresh uuid and no original_json. Otherwise
// the existing PENDING row for entityUUID is updated in place. Returns
// the effective row uuid, or "" if the target row does not exist or
// was not PENDING (idempotency-safe no-op).
func (s *Store) AcceptEntity(ctx context.Context, journalUUID, entityUUID string, curated model.Entity, isUserAdded bool) (string, error) {
	curatedJSON, err := codec.EncodeEntity(curated)
	if err != nil {
		return "", err
	}

	if isUserAdded {
		newUUID := ids.New()
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO entity_curation_items (uuid, journal_id, entity_type, curated_json, status, is_user_added)
			 VALUES ($1, $2, $3, $4, $5, TRUE)`,
			newUUID, journalUUID, curated.GetType(), curatedJSON, model.CurationAccepted,
		); err != nil {
			return "", err
		}
		return newUUID, nil
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE entity_curation_items SET status = $1, curated_json = $2 WHERE uuid = $3 AND journal_id = $4 AND status = $5`,
		model.CurationAccepted, curatedJSON, entityUUID, journalUUID, model.CurationPending,
	)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", nil
	}
	return entityUUID, nil
}

// RejectEntity marks an entity_curation_items row REJECTED. It returns
// false if the item does not exist or was not PENDING.
func (s *Store) RejectEntity(ctx context.Context, itemUUID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE entity_curation_items SET status = $1 WHERE uuid = $2 AND status = $3`,
		model.CurationRejected, itemUUID, model.CurationPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetAcceptedEntitiesWithSpans returns every ACCEPTED entity for a
// journal, reassembled with its hydrated spans, ready for the DB_WRITE
// stage.
func (s *Store) GetAcceptedEntitiesWithSpans(ctx context.Context, journalUUID string) ([]model.EntityWithSpans, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uuid, COALESCE(curated_json, original_json) FROM entity_curation_items
		 WHERE journal_id = $1 AND status = $2`,
		journalUUID, model.CurationAccepted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EntityWithSpans
	for rows.Next() {
		var itemUUID string
		var raw []byte
		if err := rows.Scan(&itemUUID, &raw); err != nil {
			return nil, err
		}

		entity, err := codec.DecodeEntity(raw)
		if err != nil {
			return nil, fmt.Errorf("curation: decode entity %s: %w", itemUUID, err)
		}

		spans, err := s.getSpansForOwner(ctx, itemUUID)
		if err != nil {
			return nil, err
		}

		out = append(out, model.EntityWithSpans{Entity: entity, Spans: spans})
	}
	return out, rows.Err()
}

func (s *Store) getSpansForOwner(ctx context.Context, ownerUUID string) ([]model.Span, error) {
	rows, err := s.pool.Query(ctx, `SELECT span_json FROM span_curation_items WHERE owner_uuid = $1`, ownerUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spans []model.Span
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var span model.Span
		if err := json.Unmarshal(raw, &span); err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	return spans, rows.Err()
}

// CompleteEntityPhase advances a journal's overall_status to
// ENTITIES_DONE once every entity_curation_items row has left PENDING.
// It returns false (no error) if items are still pending.
func (s *Store) CompleteEntityPhase(ctx context.Context, journalUUID string) (bool, error) {
	var pending int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM entity_curation_items WHERE journal_id = $1 AND status = $2`,
		journalUUID, model.CurationPending,
	).Scan(&pending); err != nil {
		return false, err
	}
	if pending > 0 {
		return false, nil
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE journal_curation SET overall_status = $1 WHERE uuid = $2`,
		model.OverallEntitiesDone, journalUUID,
	)
	return err == nil, err
}

// QueueRelationshipsForCuration is the relationship-phase analogue of
// QueueEntitiesForCuration: one relationship_curation_items row per
// CuratableItem, its spans, and its RelationshipContext annotations.
func (s *Store) QueueRelationshipsForCuration(ctx context.Context, journalUUID string, items []model.CuratableItem) ([]string, error) {
	itemUUIDs := make([]string, 0, len(items))

	err := s.withTx(ctx, func(tx pgxTx) error {
		for _, item := range items {
			dataJSON, err := json.Marshal(item.Data)
			if err != nil {
				return err
			}

			itemUUID := ids.New()
			itemUUIDs = append(itemUUIDs, itemUUID)

			if _, err := tx.Exec(ctx,
				`INSERT INTO relationship_curation_items (uuid, journal_id, kind, original_json, status, is_user_added)
				 VALUES ($1, $2, $3, $4, $5, FALSE)`,
				itemUUID, journalUUID, item.Kind, dataJSON, model.CurationPending,
			); err != nil {
				return err
			}

			for _, span := range item.Spans {
				spanJSON, err := json.Marshal(span)
				if err != nil {
					return err
				}
				if _, err := tx.Exec(ctx,
					`INSERT INTO span_curation_items (uuid, journal_id, owner_uuid, span_json) VALUES ($1, $2, $3, $4)`,
					ids.New(), journalUUID, itemUUID, spanJSON,
				); err != nil {
					return err
				}
			}

			for _, rc := range item.Context {
				subTypeJSON, err := json.Marshal(rc.SubType)
				if err != nil {
					return err
				}
				if _, err := tx.Exec(ctx,
					`INSERT INTO relationship_context_items (journal_id, relationship_uuid, entity_uuid, sub_type_json)
					 VALUES ($1, $2, $3, $4) ON CONFLICT (relationship_uuid, entity_uuid) DO UPDATE SET sub_type_json = $4`,
					journalUUID, itemUUID, rc.EntityUUID, subTypeJSON,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})

	return itemUUIDs, err
}

// AcceptRelationship is the relationship-phase analogue of AcceptEntity.
func (s *Store) AcceptRelationship(ctx context.Context, itemUUID string, curatedData interface{}) (bool, error) {
	curatedJSON, err := json.Marshal(curatedData)
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE relationship_curation_items SET status = $1, curated_json = $2 WHERE uuid = $3 AND status = $4`,
		model.CurationAccepted, curatedJSON, itemUUID, model.CurationPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RejectRelationship is the relationship-phase analogue of RejectEntity.
func (s *Store) RejectRelationship(ctx context.Context, itemUUID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE relationship_curation_items SET status = $1 WHERE uuid = $2 AND status = $3`,
		model.CurationRejected, itemUUID, model.CurationPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetAcceptedRelationshipsWithSpansAndContext returns every ACCEPTED
// relationship_curation_items row for a journal, reassembled with
// spans and context annotations.
func (s *Store) GetAcceptedRelationshipsWithSpansAndContext(ctx context.Context, journalUUID string) ([]model.CuratableItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uuid, kind, COALESCE(curated_json, original_json) FROM relationship_curation_items
		 WHERE journal_id = $1 AND status = $2`,
		journalUUID, model.CurationAccepted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		uuid string
		kind model.CuratableItemKind
		raw  []byte
	}
	var scanned []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.uuid, &r.kind, &r.raw); err != nil {
			return nil, err
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.CuratableItem, 0, len(scanned))
	for _, r := range scanned {
		data, err := codec.DecodeCuratableData(r.kind, r.raw)
		if err != nil {
			return nil, fmt.Errorf("curation: decode relationship %s: %w", r.uuid, err)
		}

		spans, err := s.getSpansForOwner(ctx, r.uuid)
		if err != nil {
			return nil, err
		}
		contexts, err := s.getContextForOwner(ctx, r.uuid)
		if err != nil {
			return nil, err
		}

		out = append(out, model.CuratableItem{Kind: r.kind, Data: data, Spans: spans, Context: contexts})
	}
	return out, nil
}

func (s *Store) getContextForOwner(ctx context.Context, relationshipUUID string) ([]model.RelationshipContext, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT entity_uuid, sub_type_json FROM relationship_context_items WHERE relationship_uuid = $1`,
		relationshipUUID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RelationshipContext
	for rows.Next() {
		var entityUUID string
		var raw []byte
		if err := rows.Scan(&entityUUID, &raw); err != nil {
			return nil, err
		}
		var subType []string
		if err := json.Unmarshal(raw, &subType); err != nil {
			return nil, err
		}
		out = append(out, model.RelationshipContext{EntityUUID: entityUUID, SubType: subType})
	}
	return out, rows.Err()
}

// CompleteRelationshipPhase is the relationship-phase analogue of
// CompleteEntityPhase, advancing overall_status to COMPLETED.
func (s *Store) CompleteRelationshipPhase(ctx context.Context, journalUUID string) (bool, error) {
	var pending int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM relationship_curation_items WHERE journal_id = $1 AND status = $2`,
		journalUUID, model.CurationPending,
	).Scan(&pending); err != nil {
		return false, err
	}
	if pending > 0 {
		return false, nil
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE journal_curation SET overall_status = $1 WHERE uuid = $2`,
		model.OverallCompleted, journalUUID,
	)
	return err == nil, err
}

// GetJournalStatus returns the current overall_status of a journal.
func (s *Store) GetJournalStatus(ctx context.Context, journalUUID string) (model.JournalOverallStatus, error) {
	var status model.JournalOverallStatus
	err := s.pool.QueryRow(ctx, `SELECT overall_status FROM journal_curation WHERE uuid = $1`, journalUUID).Scan(&status)
	return status, err
}

// GetCurationStats aggregates counts per status bucket across
// journals, entities, and relationships, for the dashboard (spec §4.2).
func (s *Store) GetCurationStats(ctx context.Context) (model.CurationStats, error) {
	stats := model.CurationStats{
		Journals:      map[model.JournalOverallStatus]int{},
		Entities:      map[model.CurationStatus]int{},
		Relationships: map[model.CurationStatus]int{},
	}

	if err := s.scanCounts(ctx, "SELECT overall_status, count(*) FROM journal_curation GROUP BY overall_status",
		func(key string, n int) { stats.Journals[model.JournalOverallStatus(key)] = n }); err != nil {
		return stats, err
	}
	if err := s.scanCounts(ctx, "SELECT status, count(*) FROM entity_curation_items GROUP BY status",
		func(key string, n int) { stats.Entities[model.CurationStatus(key)] = n }); err != nil {
		return stats, err
	}
	if err := s.scanCounts(ctx, "SELECT status, count(*) FROM relationship_curation_items GROUP BY status",
		func(key string, n int) { stats.Relationships[model.CurationStatus(key)] = n }); err != nil {
		return stats, err
	}

	return stats, nil
}

func (s *Store) scanCounts(ctx context.Context, query string, assign func(key string, n int)) error {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		assign(key, n)
	}
	return rows.Err()
}
