package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr string

	StorageType      string // memory, filesystem, sqlite, postgres or s3
	LocalStoragePath string
	DataSourceName   string
	S3BucketName     string
	StorageKey       string

	LogLevel  string
	LogFormat string // text or json
}

// Load reads the configuration from the environment. Values from a .env file
// in the working directory are used when present; variables already set in
// the environment win.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables from OS")
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		ListenAddr:       getenv("LISTEN_ADDR", ":3002"),
		StorageType:      strings.ToLower(getenv("STORAGE_TYPE", "memory")),
		LocalStoragePath: getenv("LOCAL_STORAGE_PATH", "./data"),
		DataSourceName:   getenv("DATA_SOURCE_NAME", ""),
		S3BucketName:     getenv("S3_BUCKET_NAME", ""),
		StorageKey:       getenv("STORAGE_KEY", ""),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "text"),
	}
}

// SetupLogging applies the log level and format to the standard logrus logger.
func (c Config) SetupLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.WithField("level", c.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
