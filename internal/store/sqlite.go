package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// DefaultPollInterval is how often a watching SQLite handle looks for
// writes made by other processes.
const DefaultPollInterval = 500 * time.Millisecond

// SQLite is a durable Gateway over a single SQLite file. It also keeps
// the LLM request event log.
//
// Every write is stamped with a value from a global sequence and the
// handle's origin id. Removed keys are kept as tombstones (NULL value), so
// a watching handle in another process can pick up both writes and
// removals by scanning for sequence numbers it has not seen yet.
type SQLite struct {
	db     *sql.DB
	seq    *sequenceCounter
	origin string

	// PollInterval controls Watch. Zero means DefaultPollInterval.
	PollInterval time.Duration
}

// Open creates a new SQLite gateway connected to the database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", withConnParams(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, seq: seq, origin: uuid.NewString()}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// EventRepo returns the LLM event log backed by this database.
func (s *SQLite) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var v sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	if !v.Valid {
		return "", false, nil
	}
	return v.String, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	return s.write(ctx, key, sql.NullString{String: value, Valid: true})
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, ok, err := s.Get(ctx, key); err != nil || !ok {
		return err
	}
	return s.write(ctx, key, sql.NullString{})
}

// write stamps and stores a value in one transaction, so writes commit in
// sequence order and a watcher never skips a lower sequence number.
func (s *SQLite) write(ctx context.Context, key string, value sql.NullString) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	defer tx.Rollback()

	seq, err := s.seq.Next(ctx, tx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, seq, origin, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			seq = excluded.seq,
			origin = excluded.origin,
			updated_at = excluded.updated_at`,
		key, value, seq, s.origin, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv WHERE value IS NOT NULL ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Watch polls for writes stamped by other origins. Only writes made after
// Watch is called are delivered.
func (s *SQLite) Watch(ctx context.Context, fn func(Change)) error {
	var last int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM kv`).Scan(&last); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				changes, next, err := s.changesSince(ctx, last)
				if err != nil {
					continue
				}
				last = next
				for _, c := range changes {
					fn(c)
				}
			}
		}
	}()
	return nil
}

func (s *SQLite) changesSince(ctx context.Context, after int64) ([]Change, int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, seq, origin FROM kv WHERE seq > ? ORDER BY seq`, after)
	if err != nil {
		return nil, after, err
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var (
			key, origin string
			value       sql.NullString
			seq         int64
		)
		if err := rows.Scan(&key, &value, &seq, &origin); err != nil {
			return nil, after, err
		}
		after = seq
		if origin == s.origin {
			continue
		}
		c := Change{Key: key}
		if value.Valid {
			c.NewValue = strPtr(value.String)
		}
		changes = append(changes, c)
	}
	return changes, after, rows.Err()
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT,
			seq INTEGER NOT NULL,
			origin TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS kv_seq ON kv (seq)`,
		`CREATE TABLE IF NOT EXISTS llm_request_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TIMESTAMP NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// connParams apply to every pooled connection. Write transactions start
// with BEGIN IMMEDIATE so concurrent writers queue on the busy timeout
// instead of failing on lock upgrade.
var connParams = []string{
	"_pragma=busy_timeout(5000)",
	"_pragma=foreign_keys(1)",
	"_txlock=immediate",
}

func withConnParams(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(connParams, "&")
}

// applyPragmas configures SQLite for a single-user workload.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// sequenceCounter hands out the global write sequence. The increment runs
// inside the caller's write transaction, which holds the database write
// lock until commit.
type sequenceCounter struct {
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next returns the next sequence number and increments the counter as
// part of tx.
func (sc *sequenceCounter) Next(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. VUEQUEST_DB environment variable
// 2. $XDG_DATA_HOME/vuequest/vuequest.db
// 3. ~/.local/share/vuequest/vuequest.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("VUEQUEST_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "vuequest", "vuequest.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
