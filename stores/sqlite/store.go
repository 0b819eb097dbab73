package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"notion-mini/core"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type keyValueStore struct {
	db *sql.DB
}

func NewKeyValueStore(dataSourceName string) (core.KeyValueStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}
	sts := `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB);`
	if _, err := db.Exec(sts); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &keyValueStore{db}, nil
}

func (s *keyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	log := logrus.WithField("key", key)
	log.Debug("Reading key")
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("Key not found")
			return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
		}
		log.WithField("error", err).Error("Failed to read key")
		return nil, err
	}
	return data, nil
}

func (s *keyValueStore) Set(ctx context.Context, key string, value []byte) error {
	log := logrus.WithFields(logrus.Fields{
		"key":         key,
		"data_length": len(value),
	})
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		log.WithField("error", err).Error("Failed to write key")
		return err
	}
	log.Debug("Key written")
	return nil
}
