package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// DB wraps a SQL connection and the dialect its statements are written for.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// NewSQLite opens (or creates) the SQLite file at dbPath.
func NewSQLite(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer only; avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)
	return newDB(conn, DialectSQLite)
}

// New opens a database for the given dialect. For sqlite dsn is a file path.
func New(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	switch dialect {
	case DialectSQLite, "":
		return NewSQLite(dsn)
	case DialectPostgres:
		conn, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return pinged(ctx, conn, DialectPostgres)
	case DialectMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		// report matched rows, so an update that changes nothing is not "not found"
		cfg.ClientFoundRows = true
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return pinged(ctx, sql.OpenDB(connector), DialectMySQL)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
}

func pinged(ctx context.Context, conn *sql.DB, d Dialect) (*DB, error) {
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	return newDB(conn, d)
}

func newDB(conn *sql.DB, d Dialect) (*DB, error) {
	db := &DB{conn: conn, dialect: d}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Rebind rewrites '?' placeholders into the dialect's form.
func (db *DB) Rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// upsert builds an insert that overwrites cols on key conflict.
func (db *DB) upsert(table, key string, cols ...string) string {
	all := append([]string{key}, cols...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(all, ", "), marks)

	sets := make([]string, len(cols))
	if db.dialect == DialectMySQL {
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		}
		return q + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return q + fmt.Sprintf(" ON CONFLICT(%s) DO UPDATE SET ", key) + strings.Join(sets, ", ")
}

type columnTypes struct {
	id, text, long, time, integer string
}

func (db *DB) types() columnTypes {
	switch db.dialect {
	case DialectPostgres:
		return columnTypes{id: "TEXT", text: "TEXT", long: "TEXT", time: "TIMESTAMPTZ", integer: "BIGINT"}
	case DialectMySQL:
		return columnTypes{id: "VARCHAR(64)", text: "VARCHAR(255)", long: "LONGTEXT", time: "DATETIME(6)", integer: "BIGINT"}
	default:
		return columnTypes{id: "TEXT", text: "TEXT", long: "TEXT", time: "DATETIME", integer: "INTEGER"}
	}
}

func (db *DB) migrate() error {
	t := db.types()
	isMySQL := db.dialect == DialectMySQL

	// MySQL has no CREATE INDEX IF NOT EXISTS; its indexes go inline.
	inline := func(def string) string {
		if isMySQL {
			return ",\n\t\t\t" + def
		}
		return ""
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pages (
			id %[1]s PRIMARY KEY,
			title %[2]s NOT NULL,
			slug %[2]s NOT NULL,
			status %[1]s NOT NULL DEFAULT 'draft',
			template %[1]s NOT NULL DEFAULT '',
			document_json %[3]s NOT NULL,
			created_at %[4]s NOT NULL,
			updated_at %[4]s NOT NULL%[5]s
		)`, t.id, t.text, t.long, t.time, inline("UNIQUE INDEX idx_pages_slug (slug)")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS revisions (
			id %[1]s PRIMARY KEY,
			page_id %[1]s NOT NULL,
			parent_id %[1]s,
			seq %[5]s NOT NULL,
			label %[2]s NOT NULL,
			snapshot_json %[3]s NOT NULL,
			created_at %[4]s NOT NULL%[6]s
		)`, t.id, t.text, t.long, t.time, t.integer, inline("INDEX idx_revisions_page (page_id, seq)")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS revision_state (
			page_id %[1]s PRIMARY KEY,
			current_id %[1]s NOT NULL
		)`, t.id),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS mcp_approvals (
			id %[1]s PRIMARY KEY,
			tool %[2]s NOT NULL,
			description %[3]s NOT NULL,
			status %[1]s NOT NULL DEFAULT 'pending',
			metadata %[3]s NOT NULL,
			created_at %[4]s NOT NULL
		)`, t.id, t.text, t.long, t.time),
	}
	if !isMySQL {
		migrations = append(migrations,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_pages_slug ON pages(slug)`,
			`CREATE INDEX IF NOT EXISTS idx_revisions_page ON revisions(page_id, seq)`,
		)
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", firstLine(m), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
