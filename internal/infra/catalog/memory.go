package catalog

import (
	"context"

	"github.com/yanqian/adventure-ai/internal/domain/similarity"
)

// MemoryCatalog serves a snapshot from process memory. It is read-only after
// construction and safe for concurrent use.
type MemoryCatalog struct {
	records   map[int64]similarity.Record
	neighbors map[int64][]int64
}

// NewMemoryCatalog copies snap into an in-memory catalog.
func NewMemoryCatalog(snap similarity.Snapshot) *MemoryCatalog {
	records := make(map[int64]similarity.Record, len(snap.Adventures))
	for _, rec := range snap.Adventures {
		records[rec.ID] = rec
	}
	neighbors := make(map[int64][]int64, len(snap.Neighbors))
	for id, ids := range snap.Neighbors {
		copied := make([]int64, len(ids))
		copy(copied, ids)
		neighbors[id] = copied
	}
	return &MemoryCatalog{records: records, neighbors: neighbors}
}

// Adventure implements similarity.Catalog.
func (c *MemoryCatalog) Adventure(_ context.Context, id int64) (similarity.Record, bool, error) {
	rec, ok := c.records[id]
	return rec, ok, nil
}

// Neighbors implements similarity.Catalog.
func (c *MemoryCatalog) Neighbors(_ context.Context, id int64) ([]int64, error) {
	ids := c.neighbors[id]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}

var _ similarity.Catalog = (*MemoryCatalog)(nil)
