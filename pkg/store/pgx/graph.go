package pgx

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/store"
)

func (s *Storage) SaveEntities(ctx context.Context, entities []common.Entity) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("failed to clear entities: %w", err)
	}

	err = store.ChunkRange(len(entities), insertBatchSize, func(start, end int) error {
		part := entities[start:end]
		logger.Debug("[Store][SaveEntities] Saving batch", "entities", len(part))

		names := make([]string, 0, len(part))
		types := make([]string, 0, len(part))
		descriptions := make([]string, 0, len(part))
		sourceChunks := make([]string, 0, len(part))
		embeddings := make([]pgvector.Vector, 0, len(part))
		for _, e := range part {
			names = append(names, e.Name)
			types = append(types, string(e.Type))
			descriptions = append(descriptions, util.SanitizeText(e.Description))
			sourceChunks = append(sourceChunks, e.SourceChunk)
			embeddings = append(embeddings, pgvector.NewVector(e.Embedding))
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO entities (name, type, description, source_chunk, embedding)
			SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::vector[])
		`, names, types, descriptions, sourceChunks, embeddings)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert entities: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Storage) LoadEntities(ctx context.Context) ([]common.Entity, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT name, type, description, source_chunk, embedding
		FROM entities
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []common.Entity{}
	for rows.Next() {
		var e common.Entity
		var typ string
		var embedding pgvector.Vector
		if err := rows.Scan(&e.Name, &typ, &e.Description, &e.SourceChunk, &embedding); err != nil {
			return nil, err
		}
		e.Type = common.EntityType(typ)
		e.Embedding = embedding.Slice()
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

func (s *Storage) SaveRelationships(ctx context.Context, relationships []common.Relationship) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM relationships`); err != nil {
		return fmt.Errorf("failed to clear relationships: %w", err)
	}

	err = store.ChunkRange(len(relationships), insertBatchSize, func(start, end int) error {
		part := relationships[start:end]
		logger.Debug("[Store][SaveRelationships] Saving batch", "relationships", len(part))

		sources := make([]string, 0, len(part))
		targets := make([]string, 0, len(part))
		labels := make([]string, 0, len(part))
		descriptions := make([]string, 0, len(part))
		weights := make([]float64, 0, len(part))
		for _, rel := range part {
			sources = append(sources, rel.Source)
			targets = append(targets, rel.Target)
			labels = append(labels, rel.Label)
			descriptions = append(descriptions, util.SanitizeText(rel.Description))
			weights = append(weights, rel.Weight)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO relationships (source, target, label, description, weight)
			SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::float8[])
		`, sources, targets, labels, descriptions, weights)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert relationships: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Storage) LoadRelationships(ctx context.Context) ([]common.Relationship, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT source, target, label, description, weight
		FROM relationships
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	relationships := []common.Relationship{}
	for rows.Next() {
		var rel common.Relationship
		if err := rows.Scan(&rel.Source, &rel.Target, &rel.Label, &rel.Description, &rel.Weight); err != nil {
			return nil, err
		}
		relationships = append(relationships, rel)
	}
	return relationships, rows.Err()
}
