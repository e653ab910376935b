package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/typeid"
)

// Postgres stores every save as a new versioned snapshot row. Load returns
// the highest version.
type Postgres struct {
	pool *pgxpool.Pool
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS symbols (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS symbol_snapshots (
		id TEXT PRIMARY KEY,
		symbol_id TEXT NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
		version INTEGER NOT NULL,
		document JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (symbol_id, version)
	)`,
}

// NewPostgres connects a pool and applies the schema.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, m := range postgresMigrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Load(ctx context.Context, key string) (Record, error) {
	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT document FROM symbol_snapshots WHERE symbol_id = $1 ORDER BY version DESC LIMIT 1`,
		key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get snapshot: %w", err)
	}
	return decode(data)
}

func (p *Postgres) Save(ctx context.Context, key string, doc document.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO symbols (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, key); err != nil {
		return fmt.Errorf("upsert symbol: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO symbol_snapshots (id, symbol_id, version, document)
		 SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3::jsonb
		 FROM symbol_snapshots WHERE symbol_id = $2`,
		typeid.NewSnapshotID(), key, string(data),
	)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) List(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT id FROM symbols ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return ids, nil
}

func (p *Postgres) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM symbol_snapshots s
		 WHERE s.version <= (
			SELECT MAX(version) FROM symbol_snapshots WHERE symbol_id = s.symbol_id
		 ) - $1`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
