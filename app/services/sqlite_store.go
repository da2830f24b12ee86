package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteStore implements KVStore on a single-file SQLite database, the
// on-device backend.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
	logger    *zap.Logger
}

// NewSQLiteStore opens dsn, configures WAL mode and creates the kv table.
func NewSQLiteStore(ctx context.Context, dsn, namespace string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}

	return &SQLiteStore{db: db, namespace: namespace, logger: logger}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.namespace+key).Scan(&value)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("SQLite get failed", zap.Error(err), zap.String("key", key))
		return nil, false, eris.Wrapf(err, "sqlite: get %s", key)
	}
	return json.RawMessage(value), true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal %s", key)
	}
	return s.putRaw(ctx, key, data)
}

func (s *SQLiteStore) putRaw(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace+key, string(data), time.Now().UTC(),
	)
	if err != nil {
		s.logger.Error("SQLite set failed", zap.Error(err), zap.String("key", key))
		return eris.Wrapf(err, "sqlite: set %s", key)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.namespace+key); err != nil {
		return eris.Wrapf(err, "sqlite: delete %s", key)
	}
	return nil
}

func (s *SQLiteStore) ListByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	full := s.namespace + prefix
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM kv WHERE substr(key, 1, length(?)) = ? ORDER BY key`,
		full, full,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s", prefix)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan kv row")
		}
		entries = append(entries, Entry{Key: key[len(s.namespace):], Value: json.RawMessage(value)})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate kv rows")
	}
	return validEntries(entries, s.logger), nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE substr(key, 1, length(?)) = ?`, s.namespace, s.namespace)
	return eris.Wrap(err, "sqlite: clear")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
