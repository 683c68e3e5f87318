package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"camisfut-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const upsertQuery = `
INSERT INTO overlay_entries (product_id, deleted, doc, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (product_id) DO UPDATE
SET deleted = EXCLUDED.deleted,
    doc = EXCLUDED.doc,
    updated_at = now()
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.OverlayEntry, error) {
	const q = `
SELECT product_id, deleted, doc, updated_at
FROM overlay_entries
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OverlayEntry
	for rows.Next() {
		var e domain.OverlayEntry
		if err := rows.Scan(&e.ProductID, &e.Deleted, &e.Doc, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("overlay repo: list", "count", len(out))
	return out, nil
}

func (r *postgresRepo) Get(ctx context.Context, productID int) (domain.OverlayEntry, error) {
	const q = `
SELECT product_id, deleted, doc, updated_at
FROM overlay_entries
WHERE product_id = $1
`
	var e domain.OverlayEntry
	if err := r.pool.QueryRow(ctx, q, productID).Scan(&e.ProductID, &e.Deleted, &e.Doc, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OverlayEntry{}, domain.ErrNotFound
		}
		return domain.OverlayEntry{}, err
	}
	return e, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, entry domain.OverlayEntry) error {
	if _, err := r.pool.Exec(ctx, upsertQuery, entry.ProductID, entry.Deleted, []byte(entry.Doc)); err != nil {
		return fmt.Errorf("upsert overlay entry %d: %w", entry.ProductID, err)
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, productID int) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM overlay_entries WHERE product_id = $1`, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ReplaceAll(ctx context.Context, entries []domain.OverlayEntry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM overlay_entries`); err != nil {
		return fmt.Errorf("clear overlay: %w", err)
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(upsertQuery, e.ProductID, e.Deleted, []byte(e.Doc))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert overlay entries: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("overlay repo: replaced", "count", len(entries))
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM overlay_entries`)
	return err
}
