// Package config loads csvapi settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/nao1215/csvapi/domain/model"
)

// Prefix is the environment variable prefix, e.g. CSVAPI_PORT.
const Prefix = "CSVAPI"

// Config holds every runtime setting.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	Port        int    `envconfig:"PORT" default:"8000"`

	DataDir     string        `envconfig:"DATA_DIR" default:"data"`
	DBFile      string        `envconfig:"DB_FILE" default:"csv_api.db"`
	Driver      string        `envconfig:"DRIVER" default:"sqlite"`
	BusyTimeout time.Duration `envconfig:"BUSY_TIMEOUT" default:"5s"`

	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	SampleSize      int           `envconfig:"SAMPLE_SIZE" default:"5"`
	InferWorkers    int           `envconfig:"INFER_WORKERS" default:"4"`
	DefaultLimit    int           `envconfig:"DEFAULT_LIMIT" default:"100"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// Load reads envFile (if it exists) into the process environment and then
// processes the CSVAPI_* variables. An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data dir cannot be empty"))
	}
	if c.DBFile == "" {
		errs = append(errs, errors.New("db file cannot be empty"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload bytes must be positive"))
	}
	if c.SampleSize <= 0 || c.SampleSize > model.MaxSampleSize {
		errs = append(errs, fmt.Errorf("sample size must be between 1 and %d", model.MaxSampleSize))
	}
	if c.InferWorkers <= 0 {
		errs = append(errs, errors.New("infer workers must be positive"))
	}
	if c.DefaultLimit <= 0 {
		errs = append(errs, errors.New("default limit must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DBPath is the database file location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}
