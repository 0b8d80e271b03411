package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/OFFIS-RIT/corpusgraph/internal/util"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
)

// MergeFragments persists extracted entities and relationships within a
// single transaction. Entities are keyed by (type, id), so the same
// entity extracted from different chunks or documents merges into one
// node. The latest non-empty description wins.
func (s *GraphDBStore) MergeFragments(ctx context.Context, fragments []common.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	nodes := 0
	relations := 0
	for _, f := range fragments {
		nodes += len(f.Nodes)
		relations += len(f.Relationships)
	}
	logger.Debug("[Store][MergeFragments] Merging extraction results",
		"fragments", len(fragments), "nodes", nodes, "relationships", relations)

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgxv5.Batch{}
	for _, fragment := range fragments {
		for _, node := range fragment.Nodes {
			batch.Queue(`
				INSERT INTO entities (entity_type, entity_id, description)
				VALUES ($1, $2, $3)
				ON CONFLICT (entity_type, entity_id) DO UPDATE SET
					description = CASE
						WHEN EXCLUDED.description = '' THEN entities.description
						ELSE EXCLUDED.description
					END`,
				node.Type, node.ID, util.SanitizePostgresText(node.Description),
			)
		}
	}
	for _, fragment := range fragments {
		for _, rel := range fragment.Relationships {
			batch.Queue(`
				INSERT INTO entity_relations (source_type, source_id, relation_type, target_type, target_id)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT DO NOTHING`,
				rel.SourceType, rel.SourceID, rel.Type, rel.TargetType, rel.TargetID,
			)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LinkChunkEntities records which chunks mention which entities.
func (s *GraphDBStore) LinkChunkEntities(ctx context.Context, links []common.ChunkEntityLink) error {
	if len(links) == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	return store.ChunkRange(len(links), 1000, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		batch := &pgxv5.Batch{}
		for _, link := range links[start:end] {
			batch.Queue(`
				INSERT INTO chunk_entities (chunk_id, entity_type, entity_id)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`,
				link.ChunkID, link.EntityType, link.EntityID,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}
