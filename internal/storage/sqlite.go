package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores namespaced key/value pairs in a single SQLite table.
type SQLiteBackend struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS kv (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (namespace, key)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initializing sqlite: %w", err)
		}
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Namespace(name string) (KeyValue, error) {
	if name == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	return &sqliteNamespace{db: b.db, name: name}, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

type sqliteNamespace struct {
	db   *sql.DB
	name string
}

func (n *sqliteNamespace) Load(key string, out any) (bool, error) {
	var raw string
	err := n.db.QueryRow(`SELECT value FROM kv WHERE namespace = ? AND key = ?`, n.name, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading %s/%s: %w", n.name, key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return true, fmt.Errorf("unmarshal key %q: %w", key, err)
	}
	return true, nil
}

func (n *sqliteNamespace) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal key %q: %w", key, err)
	}

	_, err = n.db.Exec(
		`INSERT INTO kv (namespace, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value`,
		n.name, key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("saving %s/%s: %w", n.name, key, err)
	}
	return nil
}
