package store

import (
	"context"
	"errors"

	"github.com/wfiftyfour/graphrag/pkg/common"
)

// ErrNotFound reports that a required index artifact is missing from the
// backend. Chunk data is required; community data is optional and its
// absence is not an error.
var ErrNotFound = errors.New("index data not found")

// Storage persists and loads the artifacts of an index build: embedded
// chunks and entities, the relationship graph, the community partition,
// and the generated community reports.
//
// Load methods distinguish required from optional data. LoadChunks on an
// empty backend fails with ErrNotFound, because a deployment without a
// chunk index cannot answer anything. LoadCommunities and LoadReports
// return empty slices instead, so corpora indexed without community
// detection still serve local queries.
type Storage interface {
	SaveChunks(ctx context.Context, chunks []common.Chunk) error
	LoadChunks(ctx context.Context) ([]common.Chunk, error)

	SaveEntities(ctx context.Context, entities []common.Entity) error
	LoadEntities(ctx context.Context) ([]common.Entity, error)

	SaveRelationships(ctx context.Context, relationships []common.Relationship) error
	LoadRelationships(ctx context.Context) ([]common.Relationship, error)

	SaveCommunities(ctx context.Context, communities []common.Community) error
	LoadCommunities(ctx context.Context) ([]common.Community, error)

	SaveReports(ctx context.Context, reports []common.CommunityReport) error
	LoadReports(ctx context.Context) ([]common.CommunityReport, error)

	Close()
}
