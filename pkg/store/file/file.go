package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/store"
)

const (
	chunkMatrixFile  = "chunk_embeddings.bin"
	chunkMetaFile    = "chunks.json"
	entityMatrixFile = "entity_embeddings.bin"
	entityMetaFile   = "entities.json"
	graphFile        = "graph.graphml"
	communitiesFile  = "communities.csv"
	reportsFile      = "community_reports.json"
)

// Storage persists index artifacts as plain files in a single directory.
// Embeddings go into binary float32 matrices with a parallel JSON metadata
// file in the same row order, the relationship graph into GraphML, the
// community partition into CSV, and reports into JSON.
type Storage struct {
	dir string
}

type NewStorageParams struct {
	// Dir is the index directory. It is created if missing.
	Dir string
}

func NewStorage(params NewStorageParams) (*Storage, error) {
	if params.Dir == "" {
		return nil, errors.New("index directory is required")
	}
	if err := os.MkdirAll(params.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	return &Storage{dir: params.Dir}, nil
}

func (s *Storage) path(name string) string {
	return filepath.Join(s.dir, name)
}

type chunkMeta struct {
	ChunkID string `json:"chunk_id"`
	DocID   string `json:"doc_id"`
	Text    string `json:"text"`
	Index   int    `json:"chunk_index"`
}

func (s *Storage) SaveChunks(_ context.Context, chunks []common.Chunk) error {
	rows := make([][]float32, len(chunks))
	meta := make([]chunkMeta, len(chunks))
	for i, c := range chunks {
		rows[i] = c.Embedding
		meta[i] = chunkMeta{ChunkID: c.ChunkID, DocID: c.DocID, Text: c.Text, Index: c.Index}
	}
	if err := writeMatrix(s.path(chunkMatrixFile), rows); err != nil {
		return fmt.Errorf("failed to save chunk embeddings: %w", err)
	}
	return writeJSON(s.path(chunkMetaFile), meta)
}

func (s *Storage) LoadChunks(_ context.Context) ([]common.Chunk, error) {
	var meta []chunkMeta
	if err := readJSON(s.path(chunkMetaFile), &meta); err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load chunk metadata: %w", err)
	}
	rows, err := readMatrix(s.path(chunkMatrixFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load chunk embeddings: %w", err)
	}
	if len(rows) != len(meta) {
		return nil, fmt.Errorf("chunk metadata has %d rows, embeddings have %d", len(meta), len(rows))
	}

	chunks := make([]common.Chunk, len(meta))
	for i, m := range meta {
		chunks[i] = common.Chunk{
			ChunkID:   m.ChunkID,
			DocID:     m.DocID,
			Text:      m.Text,
			Embedding: rows[i],
			Index:     m.Index,
		}
	}
	return chunks, nil
}

type entityMeta struct {
	Name        string            `json:"name"`
	Type        common.EntityType `json:"type"`
	Description string            `json:"description"`
	SourceChunk string            `json:"source_chunk,omitempty"`
}

func (s *Storage) SaveEntities(_ context.Context, entities []common.Entity) error {
	rows := make([][]float32, len(entities))
	meta := make([]entityMeta, len(entities))
	for i, e := range entities {
		rows[i] = e.Embedding
		meta[i] = entityMeta{Name: e.Name, Type: e.Type, Description: e.Description, SourceChunk: e.SourceChunk}
	}
	if err := writeMatrix(s.path(entityMatrixFile), rows); err != nil {
		return fmt.Errorf("failed to save entity embeddings: %w", err)
	}
	return writeJSON(s.path(entityMetaFile), meta)
}

func (s *Storage) LoadEntities(_ context.Context) ([]common.Entity, error) {
	var meta []entityMeta
	if err := readJSON(s.path(entityMetaFile), &meta); err != nil {
		if os.IsNotExist(err) {
			return []common.Entity{}, nil
		}
		return nil, fmt.Errorf("failed to load entity metadata: %w", err)
	}
	rows, err := readMatrix(s.path(entityMatrixFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("entity metadata exists but embeddings are missing")
		}
		return nil, fmt.Errorf("failed to load entity embeddings: %w", err)
	}
	if len(rows) != len(meta) {
		return nil, fmt.Errorf("entity metadata has %d rows, embeddings have %d", len(meta), len(rows))
	}

	entities := make([]common.Entity, len(meta))
	for i, m := range meta {
		entities[i] = common.Entity{
			Name:        m.Name,
			Type:        m.Type,
			Description: m.Description,
			Embedding:   rows[i],
			SourceChunk: m.SourceChunk,
		}
	}
	return entities, nil
}

func (s *Storage) SaveRelationships(_ context.Context, relationships []common.Relationship) error {
	return writeGraphML(s.path(graphFile), relationships)
}

func (s *Storage) LoadRelationships(_ context.Context) ([]common.Relationship, error) {
	relationships, err := readGraphML(s.path(graphFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []common.Relationship{}, nil
		}
		return nil, err
	}
	return relationships, nil
}

// SaveCommunities writes one CSV row per member with the columns
// entity, community_id, community_size.
func (s *Storage) SaveCommunities(_ context.Context, communities []common.Community) error {
	f, err := os.Create(s.path(communitiesFile))
	if err != nil {
		return fmt.Errorf("failed to create communities file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"entity", "community_id", "community_size"}); err != nil {
		return err
	}
	for _, c := range communities {
		for _, member := range c.Members {
			row := []string{member, strconv.Itoa(c.ID), strconv.Itoa(c.Size())}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

func (s *Storage) LoadCommunities(_ context.Context) ([]common.Community, error) {
	f, err := os.Open(s.path(communitiesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []common.Community{}, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse communities file: %w", err)
	}
	if len(records) == 0 {
		return []common.Community{}, nil
	}

	// first record is the header
	byID := map[int]*common.Community{}
	var order []int
	for _, rec := range records[1:] {
		id, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("invalid community id %q: %w", rec[1], err)
		}
		c, ok := byID[id]
		if !ok {
			c = &common.Community{ID: id}
			byID[id] = c
			order = append(order, id)
		}
		c.Members = append(c.Members, rec[0])
	}

	communities := make([]common.Community, 0, len(order))
	for _, id := range order {
		communities = append(communities, *byID[id])
	}
	return communities, nil
}

func (s *Storage) SaveReports(_ context.Context, reports []common.CommunityReport) error {
	return writeJSON(s.path(reportsFile), reports)
}

func (s *Storage) LoadReports(_ context.Context) ([]common.CommunityReport, error) {
	var reports []common.CommunityReport
	if err := readJSON(s.path(reportsFile), &reports); err != nil {
		if os.IsNotExist(err) {
			return []common.CommunityReport{}, nil
		}
		return nil, fmt.Errorf("failed to load community reports: %w", err)
	}
	if reports == nil {
		reports = []common.CommunityReport{}
	}
	return reports, nil
}

func (s *Storage) Close() {}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
