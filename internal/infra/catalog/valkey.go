package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/adventure-ai/internal/domain/similarity"
)

// ValkeyCatalog reads adventures and neighbor lists from a Valkey-compatible database.
//
// Layout: <prefix>:adventure:<id> holds the title, <prefix>:neighbors:<id> is a
// list of neighbor ids in rank order.
type ValkeyCatalog struct {
	client valkey.Client
	prefix string
}

// NewValkeyCatalog constructs a catalog backed by Valkey.
func NewValkeyCatalog(client valkey.Client, prefix string) *ValkeyCatalog {
	if prefix == "" {
		prefix = "catalog"
	}
	return &ValkeyCatalog{client: client, prefix: prefix}
}

// Adventure implements similarity.Catalog.
func (c *ValkeyCatalog) Adventure(ctx context.Context, id int64) (similarity.Record, bool, error) {
	title, err := c.client.Do(ctx, c.client.B().Get().Key(c.adventureKey(id)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return similarity.Record{}, false, nil
		}
		return similarity.Record{}, false, err
	}
	return similarity.Record{ID: id, Title: title}, true, nil
}

// Neighbors implements similarity.Catalog.
func (c *ValkeyCatalog) Neighbors(ctx context.Context, id int64) ([]int64, error) {
	members, err := c.client.Do(ctx, c.client.B().Lrange().Key(c.neighborsKey(id)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]int64, 0, len(members))
	for _, member := range members {
		parsed, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("neighbor id %q for adventure %d: %w", member, id, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

// Seed replaces the stored entries for every adventure in snap.
func (c *ValkeyCatalog) Seed(ctx context.Context, snap similarity.Snapshot) error {
	cmds := make(valkey.Commands, 0, len(snap.Adventures)*3)
	for _, rec := range snap.Adventures {
		cmds = append(cmds,
			c.client.B().Set().Key(c.adventureKey(rec.ID)).Value(rec.Title).Build(),
			c.client.B().Del().Key(c.neighborsKey(rec.ID)).Build(),
		)
		ids := snap.Neighbors[rec.ID]
		if len(ids) == 0 {
			continue
		}
		members := make([]string, 0, len(ids))
		for _, n := range ids {
			members = append(members, strconv.FormatInt(n, 10))
		}
		cmds = append(cmds, c.client.B().Rpush().Key(c.neighborsKey(rec.ID)).Element(members...).Build())
	}
	for _, resp := range c.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("seed valkey catalog: %w", err)
		}
	}
	return nil
}

func (c *ValkeyCatalog) adventureKey(id int64) string {
	return fmt.Sprintf("%s:adventure:%d", c.prefix, id)
}

func (c *ValkeyCatalog) neighborsKey(id int64) string {
	return fmt.Sprintf("%s:neighbors:%d", c.prefix, id)
}

var _ similarity.Catalog = (*ValkeyCatalog)(nil)
