package pending

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save upserts the session's marker; a newer checkout replaces the older one.
func (s *PostgresStore) Save(ctx context.Context, m Marker) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pending_orders (session_id, order_id, payment_url, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id)
		DO UPDATE SET order_id = EXCLUDED.order_id,
		              payment_url = EXCLUDED.payment_url,
		              created_at = EXCLUDED.created_at
	`, m.SessionID, m.OrderID, m.PaymentURL, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("save pending order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (Marker, error) {
	m := Marker{SessionID: sessionID}
	err := s.pool.QueryRow(ctx, `
		SELECT order_id, payment_url, created_at
		FROM pending_orders
		WHERE session_id = $1
	`, sessionID).Scan(&m.OrderID, &m.PaymentURL, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Marker{}, ErrNotFound
		}
		return Marker{}, fmt.Errorf("get pending order: %w", err)
	}
	return m, nil
}

// Delete is idempotent.
func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM pending_orders WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete pending order: %w", err)
	}
	return nil
}
