package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"notion-mini/core"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BYTEA NOT NULL)`
	selectValue = `SELECT value FROM kv WHERE key = $1`
	upsertValue = `INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
)

type keyValueStore struct {
	db *sql.DB
}

// NewKeyValueStore connects to dataSourceName with the postgres driver.
func NewKeyValueStore(dataSourceName string) (core.KeyValueStore, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New uses an existing connection pool and makes sure the kv table exists.
func New(db *sql.DB) (core.KeyValueStore, error) {
	if _, err := db.Exec(createTable); err != nil {
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &keyValueStore{db: db}, nil
}

func (s *keyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, selectValue, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
		}
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Error("Failed to read key")
		return nil, err
	}
	return data, nil
}

func (s *keyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertValue, key, value); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Error("Failed to write key")
		return err
	}
	return nil
}
