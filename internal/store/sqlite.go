package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/typeid"
)

// SQLite is the single-file counterpart of Postgres with the same snapshot
// layout.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (or creates) the database file at path.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS symbols (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS symbol_snapshots (
			id TEXT PRIMARY KEY,
			symbol_id TEXT NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
			version INTEGER NOT NULL,
			document TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (symbol_id, version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol ON symbol_snapshots(symbol_id, version)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, key string) (Record, error) {
	var data string
	err := s.conn.QueryRowContext(ctx,
		`SELECT document FROM symbol_snapshots WHERE symbol_id = ? ORDER BY version DESC LIMIT 1`,
		key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get snapshot: %w", err)
	}
	return decode([]byte(data))
}

func (s *SQLite) Save(ctx context.Context, key string, doc document.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	return s.saveRaw(ctx, key, string(data))
}

func (s *SQLite) saveRaw(ctx context.Context, key, data string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO symbols (id) VALUES (?)`, key); err != nil {
		return fmt.Errorf("upsert symbol: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO symbol_snapshots (id, symbol_id, version, document)
		 SELECT ?, ?, COALESCE(MAX(version), 0) + 1, ?
		 FROM symbol_snapshots WHERE symbol_id = ?`,
		typeid.NewSnapshotID(), key, data, key,
	)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM symbols ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLite) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM symbol_snapshots
		 WHERE version <= (
			SELECT MAX(v.version) FROM symbol_snapshots v WHERE v.symbol_id = symbol_snapshots.symbol_id
		 ) - ?`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}
