package file

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/store"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(NewStorageParams{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	return s
}

func TestChunkRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	chunks := []common.Chunk{
		{ChunkID: "doc1_chunk_0", DocID: "doc1", Text: "First chunk.", Embedding: []float32{0.1, 0.2, 0.3}, Index: 0},
		{ChunkID: "doc1_chunk_1", DocID: "doc1", Text: "Second chunk.", Embedding: []float32{0.4, 0.5, 0.6}, Index: 1},
	}
	if err := s.SaveChunks(ctx, chunks); err != nil {
		t.Fatalf("SaveChunks failed: %v", err)
	}

	got, err := s.LoadChunks(ctx)
	if err != nil {
		t.Fatalf("LoadChunks failed: %v", err)
	}
	if !reflect.DeepEqual(got, chunks) {
		t.Errorf("loaded chunks = %+v, want %+v", got, chunks)
	}
}

func TestLoadChunksMissing(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.LoadChunks(context.Background())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("LoadChunks on empty directory returned %v, want ErrNotFound", err)
	}
}

func TestEntityRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	entities := []common.Entity{
		{Name: "Alice", Type: common.EntityTypePerson, Description: "A researcher.", Embedding: []float32{1, 0}, SourceChunk: "doc1_chunk_0"},
		{Name: "ACME", Type: common.EntityTypeOrganization, Description: "A company.", Embedding: []float32{0, 1}},
	}
	if err := s.SaveEntities(ctx, entities); err != nil {
		t.Fatalf("SaveEntities failed: %v", err)
	}

	got, err := s.LoadEntities(ctx)
	if err != nil {
		t.Fatalf("LoadEntities failed: %v", err)
	}
	if !reflect.DeepEqual(got, entities) {
		t.Errorf("loaded entities = %+v, want %+v", got, entities)
	}
}

func TestLoadEntitiesMissingIsEmpty(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.LoadEntities(context.Background())
	if err != nil {
		t.Fatalf("LoadEntities failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entities, got %d", len(got))
	}
}

func TestRelationshipRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	relationships := []common.Relationship{
		{Source: "Alice", Target: "ACME", Label: "works_at", Description: "Alice works at ACME.", Weight: 2},
		{Source: "Alice", Target: "Bob", Label: "knows", Description: "Colleagues.", Weight: 1},
	}
	if err := s.SaveRelationships(ctx, relationships); err != nil {
		t.Fatalf("SaveRelationships failed: %v", err)
	}

	got, err := s.LoadRelationships(ctx)
	if err != nil {
		t.Fatalf("LoadRelationships failed: %v", err)
	}
	if !reflect.DeepEqual(got, relationships) {
		t.Errorf("loaded relationships = %+v, want %+v", got, relationships)
	}
}

func TestCommunityRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	communities := []common.Community{
		{ID: 0, Members: []string{"Alice", "Bob", "Carol"}},
		{ID: 1, Members: []string{"ACME"}},
	}
	if err := s.SaveCommunities(ctx, communities); err != nil {
		t.Fatalf("SaveCommunities failed: %v", err)
	}

	got, err := s.LoadCommunities(ctx)
	if err != nil {
		t.Fatalf("LoadCommunities failed: %v", err)
	}
	if !reflect.DeepEqual(got, communities) {
		t.Errorf("loaded communities = %+v, want %+v", got, communities)
	}
}

func TestOptionalArtifactsMissingAreEmpty(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	communities, err := s.LoadCommunities(ctx)
	if err != nil || len(communities) != 0 {
		t.Errorf("LoadCommunities = %v, %v; want empty, nil", communities, err)
	}
	reports, err := s.LoadReports(ctx)
	if err != nil || len(reports) != 0 {
		t.Errorf("LoadReports = %v, %v; want empty, nil", reports, err)
	}
	relationships, err := s.LoadRelationships(ctx)
	if err != nil || len(relationships) != 0 {
		t.Errorf("LoadRelationships = %v, %v; want empty, nil", relationships, err)
	}
}

func TestReportRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	reports := []common.CommunityReport{
		{CommunityID: 0, Title: "Alice, Bob, and 2 others", Summary: "A research group.", NumEntities: 4, Rank: 4, Embedding: []float32{0.5, 0.5}},
	}
	if err := s.SaveReports(ctx, reports); err != nil {
		t.Fatalf("SaveReports failed: %v", err)
	}

	got, err := s.LoadReports(ctx)
	if err != nil {
		t.Fatalf("LoadReports failed: %v", err)
	}
	if !reflect.DeepEqual(got, reports) {
		t.Errorf("loaded reports = %+v, want %+v", got, reports)
	}
}

func TestMatrixRejectsRaggedRows(t *testing.T) {
	dir := t.TempDir()
	err := writeMatrix(dir+"/m.bin", [][]float32{{1, 2}, {3}})
	if err == nil {
		t.Fatal("expected an error for ragged rows")
	}
}
