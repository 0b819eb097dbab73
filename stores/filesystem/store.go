package filesystem

import (
	"context"
	"fmt"
	"net/url"
	"notion-mini/core"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

const (
	lockRetryInterval = 50 * time.Millisecond
	fileMode          = 0644
)

type keyValueStore struct {
	basePath string // Directory holding one file per key.
}

func NewKeyValueStore(basePath string) (core.KeyValueStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &keyValueStore{basePath: basePath}, nil
}

func (s *keyValueStore) path(key string) string {
	return filepath.Join(s.basePath, url.PathEscape(key)+".json")
}

// lock takes the per-key lock file shared with other processes using the
// same directory.
func (s *keyValueStore) lock(ctx context.Context, filePath string) (*flock.Flock, error) {
	fileLock := flock.New(filePath + ".lock")
	locked, err := fileLock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire lock on %s", filePath)
	}
	return fileLock, nil
}

func (s *keyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	filePath := s.path(key)
	log := logrus.WithFields(logrus.Fields{
		"key":       key,
		"file_path": filePath,
	})

	fileLock, err := s.lock(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fileLock.Unlock() }()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Key not found")
			return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
		}
		log.WithField("error", err).Error("Failed to read key")
		return nil, err
	}
	return data, nil
}

func (s *keyValueStore) Set(ctx context.Context, key string, value []byte) error {
	filePath := s.path(key)
	log := logrus.WithFields(logrus.Fields{
		"key":         key,
		"file_path":   filePath,
		"data_length": len(value),
	})

	fileLock, err := s.lock(ctx, filePath)
	if err != nil {
		return err
	}
	defer func() { _ = fileLock.Unlock() }()

	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		log.WithField("error", err).Error("Failed to create temp file")
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		log.WithField("error", err).Error("Failed to set file mode")
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		log.WithField("error", err).Error("Failed to write key")
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		log.WithField("error", err).Error("Failed to write key")
		return err
	}
	log.Debug("Key written")
	return nil
}
