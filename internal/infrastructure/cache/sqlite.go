package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"dom-engine/internal/application/port/output"
)

var (
	_ output.CachePort = (*SQLiteCache)(nil)
	_ output.CachePort = Noop{}
)

const schema = `CREATE TABLE IF NOT EXISTS results (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL
)`

// SQLiteCache stores operation results with a fixed time to live. Errors
// are logged and reported to callers as misses.
type SQLiteCache struct {
	db     *sql.DB
	ttl    time.Duration
	logger output.LoggerPort
	now    func() time.Time
}

func OpenSQLite(path string, ttl time.Duration, logger output.LoggerPort) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteCache{db: db, ttl: ttl, logger: logger, now: time.Now}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM results WHERE key = ? AND expires_at > ?`,
		key, c.now().UnixNano()).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Warn("Cache read failed", "error", err)
		}
		return nil, false
	}
	return value, true
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte) {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO results (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, c.now().Add(c.ttl).UnixNano())
	if err != nil {
		c.logger.Warn("Cache write failed", "error", err)
	}
}

// Prune deletes expired rows.
func (c *SQLiteCache) Prune(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM results WHERE expires_at <= ?`, c.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return res.RowsAffected()
}

func (c *SQLiteCache) Status(ctx context.Context) string {
	if err := c.db.PingContext(ctx); err != nil {
		return "unavailable"
	}
	return "connected"
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Noop is used when caching is disabled or the database could not be
// opened at startup.
type Noop struct {
	Reason string
}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Noop) Set(context.Context, string, []byte)        {}
func (Noop) Close() error                               { return nil }

func (n Noop) Status(context.Context) string {
	if n.Reason != "" {
		return n.Reason
	}
	return "disabled"
}
