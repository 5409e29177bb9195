package providers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"lrsd/internal/common/fsutil"
	"lrsd/pkg/types"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS statements (
	id        TEXT NOT NULL,
	actor     TEXT NOT NULL,
	verb      TEXT NOT NULL,
	object    TEXT NOT NULL,
	body      TEXT NOT NULL,
	stored_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS statements_id ON statements(id);`

// SQLiteProvider appends statements to a local SQLite database.
type SQLiteProvider struct {
	id   string
	path string
	db   *sql.DB
}

// OpenSQLiteProvider opens (creating if needed) the database at path and
// applies the schema.
func OpenSQLiteProvider(id, path string) (*SQLiteProvider, error) {
	p, err := fsutil.PrepareFile(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite provider %s: %w", id, err)
	}
	dsn := p + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteProvider{id: id, path: p, db: db}, nil
}

func (p *SQLiteProvider) ID() string { return p.id }

// Path returns the resolved database file.
func (p *SQLiteProvider) Path() string { return p.path }

func (p *SQLiteProvider) Accept(ctx context.Context, stmt types.Statement) error {
	body, err := statementBody(stmt)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO statements (id, actor, verb, object, body, stored_at) VALUES (?, ?, ?, ?, ?, ?)`,
		stmt.ID, stmt.Actor.ID, stmt.Verb.ID, stmt.Object.ID, string(body), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert statement %s: %w", stmt.ID, err)
	}
	return nil
}

// Count returns the number of stored statements.
func (p *SQLiteProvider) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM statements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count statements: %w", err)
	}
	return n, nil
}

// Close closes the SQLite handle.
func (p *SQLiteProvider) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
