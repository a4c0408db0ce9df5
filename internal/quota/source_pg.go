package quota

import (
	"context"
	"database/sql"
	"errors"
)

// PGSource keeps balances in the usage_quotas table.
type PGSource struct {
	DB *sql.DB
}

func NewPGSource(db *sql.DB) *PGSource {
	return &PGSource{DB: db}
}

func (s *PGSource) Get(ctx context.Context, ownerID string) (Counter, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `
SELECT remaining FROM usage_quotas WHERE user_id = $1`, ownerID).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counter{}, nil
		}
		return Counter{}, err
	}
	return Counter{Remaining: n, Set: true}, nil
}

func (s *PGSource) Update(ctx context.Context, ownerID string, remaining int) error {
	if remaining < 0 {
		remaining = 0
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO usage_quotas (user_id, remaining, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id) DO UPDATE SET remaining = EXCLUDED.remaining, updated_at = NOW()`, ownerID, remaining)
	return err
}

func (s *PGSource) Decrement(ctx context.Context, ownerID string, start int) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO usage_quotas (user_id, remaining, updated_at)
VALUES ($1, GREATEST($2::int - 1, 0), NOW())
ON CONFLICT (user_id) DO UPDATE
SET remaining = GREATEST(usage_quotas.remaining - 1, 0), updated_at = NOW()
RETURNING remaining`, ownerID, start).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

var (
	_ Source      = (*PGSource)(nil)
	_ Decrementer = (*PGSource)(nil)
)
