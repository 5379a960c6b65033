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

const insertBatchSize = 250

func (s *Storage) SaveChunks(ctx context.Context, chunks []common.Chunk) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	err = store.ChunkRange(len(chunks), insertBatchSize, func(start, end int) error {
		part := chunks[start:end]
		logger.Debug("[Store][SaveChunks] Saving batch", "chunks", len(part))

		chunkIDs := make([]string, 0, len(part))
		docIDs := make([]string, 0, len(part))
		texts := make([]string, 0, len(part))
		indexes := make([]int32, 0, len(part))
		embeddings := make([]pgvector.Vector, 0, len(part))
		for _, c := range part {
			chunkIDs = append(chunkIDs, c.ChunkID)
			docIDs = append(docIDs, c.DocID)
			texts = append(texts, util.SanitizeText(c.Text))
			indexes = append(indexes, int32(c.Index))
			embeddings = append(embeddings, pgvector.NewVector(c.Embedding))
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO chunks (chunk_id, doc_id, content, chunk_index, embedding)
			SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::int[], $5::vector[])
		`, chunkIDs, docIDs, texts, indexes, embeddings)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Storage) LoadChunks(ctx context.Context) ([]common.Chunk, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT chunk_id, doc_id, content, chunk_index, embedding
		FROM chunks
		ORDER BY doc_id, chunk_index
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []common.Chunk
	for rows.Next() {
		var c common.Chunk
		var embedding pgvector.Vector
		if err := rows.Scan(&c.ChunkID, &c.DocID, &c.Text, &c.Index, &embedding); err != nil {
			return nil, err
		}
		c.Embedding = embedding.Slice()
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, store.ErrNotFound
	}
	return chunks, nil
}
