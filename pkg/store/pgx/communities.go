package pgx

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/store"
)

func (s *Storage) SaveCommunities(ctx context.Context, communities []common.Community) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM community_members`); err != nil {
		return fmt.Errorf("failed to clear community members: %w", err)
	}

	var entities []string
	var ids, sizes []int32
	for _, c := range communities {
		for _, member := range c.Members {
			entities = append(entities, member)
			ids = append(ids, int32(c.ID))
			sizes = append(sizes, int32(c.Size()))
		}
	}

	err = store.ChunkRange(len(entities), insertBatchSize, func(start, end int) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO community_members (entity, community_id, community_size)
			SELECT * FROM unnest($1::text[], $2::int[], $3::int[])
		`, entities[start:end], ids[start:end], sizes[start:end])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert community members: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Storage) LoadCommunities(ctx context.Context) ([]common.Community, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT entity, community_id
		FROM community_members
		ORDER BY community_id, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int]*common.Community{}
	var order []int
	for rows.Next() {
		var entity string
		var id int
		if err := rows.Scan(&entity, &id); err != nil {
			return nil, err
		}
		c, ok := byID[id]
		if !ok {
			c = &common.Community{ID: id}
			byID[id] = c
			order = append(order, id)
		}
		c.Members = append(c.Members, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	communities := make([]common.Community, 0, len(order))
	for _, id := range order {
		communities = append(communities, *byID[id])
	}
	return communities, nil
}

func (s *Storage) SaveReports(ctx context.Context, reports []common.CommunityReport) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM community_reports`); err != nil {
		return fmt.Errorf("failed to clear community reports: %w", err)
	}

	err = store.ChunkRange(len(reports), insertBatchSize, func(start, end int) error {
		part := reports[start:end]

		ids := make([]int32, 0, len(part))
		titles := make([]string, 0, len(part))
		summaries := make([]string, 0, len(part))
		numEntities := make([]int32, 0, len(part))
		ranks := make([]float64, 0, len(part))
		embeddings := make([]pgvector.Vector, 0, len(part))
		for _, r := range part {
			ids = append(ids, int32(r.CommunityID))
			titles = append(titles, r.Title)
			summaries = append(summaries, util.SanitizeText(r.Summary))
			numEntities = append(numEntities, int32(r.NumEntities))
			ranks = append(ranks, r.Rank)
			embeddings = append(embeddings, pgvector.NewVector(r.Embedding))
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO community_reports (community_id, title, summary, num_entities, rank, embedding)
			SELECT * FROM unnest($1::int[], $2::text[], $3::text[], $4::int[], $5::float8[], $6::vector[])
		`, ids, titles, summaries, numEntities, ranks, embeddings)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert community reports: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Storage) LoadReports(ctx context.Context) ([]common.CommunityReport, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT community_id, title, summary, num_entities, rank, embedding
		FROM community_reports
		ORDER BY community_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []common.CommunityReport{}
	for rows.Next() {
		var r common.CommunityReport
		var embedding pgvector.Vector
		if err := rows.Scan(&r.CommunityID, &r.Title, &r.Summary, &r.NumEntities, &r.Rank, &embedding); err != nil {
			return nil, err
		}
		r.Embedding = embedding.Slice()
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
