package stores

import (
	"context"
	"fmt"
	"notion-mini/config"
	"notion-mini/core"
	"notion-mini/stores/aws"
	"notion-mini/stores/filesystem"
	"notion-mini/stores/memory"
	"notion-mini/stores/postgres"
	"notion-mini/stores/sqlite"

	"github.com/sirupsen/logrus"
)

func GetStore(ctx context.Context, cfg config.Config) (core.KeyValueStore, error) {
	var (
		store core.KeyValueStore
		err   error
	)

	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	switch cfg.StorageType {
	case "filesystem":
		storageField["basePath"] = cfg.LocalStoragePath
		store, err = filesystem.NewKeyValueStore(cfg.LocalStoragePath)
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		store, err = sqlite.NewKeyValueStore(cfg.DataSourceName)
	case "postgres":
		store, err = postgres.NewKeyValueStore(cfg.DataSourceName)
	case "s3":
		storageField["bucketName"] = cfg.S3BucketName
		store, err = aws.NewKeyValueStore(ctx, cfg.S3BucketName)
	case "", "memory":
		store = memory.NewKeyValueStore()
		storageField["storageType"] = "in-memory"
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageType, err)
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
