package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"camisfut-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, key string) (*domain.Cart, error) {
	const q = `
SELECT cart_key, items, updated_at
FROM carts
WHERE cart_key = $1
`
	var (
		cart domain.Cart
		raw  []byte
	)
	if err := r.pool.QueryRow(ctx, q, key).Scan(&cart.Key, &raw, &cart.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := DecodeItems(raw)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *postgresRepo) Save(ctx context.Context, cart domain.Cart) error {
	const q = `
INSERT INTO carts (cart_key, items, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (cart_key) DO UPDATE
SET items = EXCLUDED.items,
    updated_at = now()
`
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.Key, err)
	}
	_, err = r.pool.Exec(ctx, q, cart.Key, data)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, key string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE cart_key = $1`, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
