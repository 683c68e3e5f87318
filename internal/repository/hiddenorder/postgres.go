package hiddenorder

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Hide(ctx context.Context, userID, orderID int) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO hidden_orders (user_id, order_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, userID, orderID)
	return err
}

func (r *postgresRepo) List(ctx context.Context, userID int) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT order_id FROM hidden_orders WHERE user_id = $1 ORDER BY hidden_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Clear(ctx context.Context, userID int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM hidden_orders WHERE user_id = $1`, userID)
	return err
}
