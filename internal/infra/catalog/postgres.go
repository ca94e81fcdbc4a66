package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/adventure-ai/internal/domain/similarity"
)

// PostgresCatalog implements similarity.Catalog using pgx.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog constructs the catalog.
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

// Adventure fetches a record by id.
func (c *PostgresCatalog) Adventure(ctx context.Context, id int64) (similarity.Record, bool, error) {
	var rec similarity.Record
	err := c.pool.QueryRow(ctx, `
		SELECT id, title
		FROM adventures
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return similarity.Record{}, false, nil
	}
	if err != nil {
		return similarity.Record{}, false, err
	}
	return rec, true, nil
}

// Neighbors returns neighbor ids ordered by rank.
func (c *PostgresCatalog) Neighbors(ctx context.Context, id int64) ([]int64, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT neighbor_id
		FROM adventure_neighbors
		WHERE adventure_id = $1
		ORDER BY rank ASC
	`, id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// EnsureSchema creates the catalog tables when missing.
func (c *PostgresCatalog) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS adventures (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS adventure_neighbors (
			adventure_id BIGINT NOT NULL REFERENCES adventures(id) ON DELETE CASCADE,
			neighbor_id BIGINT NOT NULL,
			rank INT NOT NULL,
			PRIMARY KEY (adventure_id, rank)
		)`,
	}
	for _, stmt := range statements {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}

// Seed upserts every adventure in snap and replaces its neighbor list.
func (c *PostgresCatalog) Seed(ctx context.Context, snap similarity.Snapshot) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range snap.Adventures {
		batch.Queue(`
			INSERT INTO adventures (id, title) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title
		`, rec.ID, rec.Title)
		batch.Queue(`DELETE FROM adventure_neighbors WHERE adventure_id = $1`, rec.ID)
		for rank, neighbor := range snap.Neighbors[rec.ID] {
			batch.Queue(`
				INSERT INTO adventure_neighbors (adventure_id, neighbor_id, rank)
				VALUES ($1, $2, $3)
			`, rec.ID, neighbor, rank)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed postgres catalog: %w", err)
	}
	return tx.Commit(ctx)
}

var _ similarity.Catalog = (*PostgresCatalog)(nil)
