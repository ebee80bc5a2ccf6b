package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists settlement records in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS settlement_records (
    intent_id TEXT PRIMARY KEY,
    escrow TEXT NOT NULL,
    chain_id INT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
`

// NewPostgresStore connects to Postgres using the DSN and ensures the table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresStore) Get(ctx context.Context, intentID string) (*Record, error) {
	row := p.pool.QueryRow(ctx, `
SELECT intent_id, escrow, chain_id, created_at
FROM settlement_records
WHERE intent_id = $1
`, intentID)

	var rec Record
	err := row.Scan(&rec.IntentID, &rec.Escrow, &rec.ChainID, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *PostgresStore) Save(ctx context.Context, record Record) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO settlement_records (intent_id, escrow, chain_id, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (intent_id) DO NOTHING
`, record.IntentID, record.Escrow, record.ChainID, record.CreatedAt)
	return err
}
