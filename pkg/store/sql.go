package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/template"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	driver string
	schema string
	get    string
	upsert string
	delete string
	list   string
}

var dialects = map[string]dialect{
	BackendSQLite: {
		driver: "sqlite",
		schema: `CREATE TABLE IF NOT EXISTS templates (
			id         TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			frames     INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		get: `SELECT body FROM templates WHERE id = ?`,
		upsert: `INSERT INTO templates (id, body, frames, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET body = excluded.body, frames = excluded.frames, updated_at = excluded.updated_at`,
		delete: `DELETE FROM templates WHERE id = ?`,
		list:   `SELECT id, frames, updated_at FROM templates ORDER BY id`,
	},
	BackendPostgres: {
		driver: "postgres",
		schema: `CREATE TABLE IF NOT EXISTS templates (
			id         VARCHAR(128) PRIMARY KEY,
			body       TEXT NOT NULL,
			frames     INTEGER NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		get: `SELECT body FROM templates WHERE id = $1`,
		upsert: `INSERT INTO templates (id, body, frames, updated_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, frames = EXCLUDED.frames, updated_at = EXCLUDED.updated_at`,
		delete: `DELETE FROM templates WHERE id = $1`,
		list:   `SELECT id, frames, updated_at FROM templates ORDER BY id`,
	},
	BackendMySQL: {
		driver: "mysql",
		schema: `CREATE TABLE IF NOT EXISTS templates (
			id         VARCHAR(128) PRIMARY KEY,
			body       LONGTEXT NOT NULL,
			frames     INT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		get: `SELECT body FROM templates WHERE id = ?`,
		upsert: `INSERT INTO templates (id, body, frames, updated_at) VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE body = VALUES(body), frames = VALUES(frames), updated_at = VALUES(updated_at)`,
		delete: `DELETE FROM templates WHERE id = ?`,
		list:   `SELECT id, frames, updated_at FROM templates ORDER BY id`,
	},
}

// SQLStore keeps templates in a single table. Timestamps are stored as
// Unix milliseconds so that every driver reads them the same way.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQL opens a SQL store for backend (sqlite, postgres or mysql) and
// creates the table if needed. For sqlite the DSN is a file path.
func OpenSQL(ctx context.Context, backend, dsn string) (*SQLStore, error) {
	d, ok := dialects[backend]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown SQL backend %q", backend)
	}
	if dsn == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s store requires a DSN", backend)
	}
	if backend == BackendSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	if backend == BackendSQLite {
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("create templates table: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*template.Document, error) {
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	var body string
	err := s.db.QueryRowContext(ctx, s.dialect.get, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return template.Decode([]byte(body))
}

func (s *SQLStore) Put(ctx context.Context, id string, doc *template.Document) error {
	if err := checkPut(id, doc); err != nil {
		return err
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.dialect.upsert, id, string(data), len(doc.Frames), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.delete, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.list)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum Summary
			ms  int64
		)
		if err := rows.Scan(&sum.ID, &sum.Frames, &ms); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

var _ Store = (*SQLStore)(nil)
