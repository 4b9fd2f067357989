// Package config loads process settings for the weft binaries.
//
// Values come from WEFT_* environment variables, optionally seeded from a
// .env file. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/internal/runtime"
)

// Environment variable names.
const (
	EnvLogLevel      = "WEFT_LOG_LEVEL"
	EnvLogFormat     = "WEFT_LOG_FORMAT"
	EnvAddr          = "WEFT_ADDR"
	EnvRedisAddr     = "WEFT_REDIS_ADDR"
	EnvRedisPassword = "WEFT_REDIS_PASSWORD"
	EnvRedisDB       = "WEFT_REDIS_DB"
	EnvStoreDir      = "WEFT_STORE_DIR"
	EnvSnapshotTTL   = "WEFT_SNAPSHOT_TTL"
	EnvLockTTL       = "WEFT_LOCK_TTL"
	EnvResolvePolicy = "WEFT_RESOLVE_POLICY"
)

// Config holds every tunable of the CLI and server.
type Config struct {
	LogLevel  slog.Level
	LogFormat logging.Format

	// Addr is the HTTP listen address of `weft serve`.
	Addr string

	// RedisAddr selects the redis snapshot store and lock when set;
	// otherwise StoreDir is used.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StoreDir      string

	SnapshotTTL time.Duration
	LockTTL     time.Duration

	ResolvePolicy runtime.ResolvePolicy
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel:      slog.LevelInfo,
		LogFormat:     logging.FormatText,
		Addr:          ":8080",
		StoreDir:      ".weft/graphs",
		LockTTL:       30 * time.Second,
		ResolvePolicy: runtime.ResolveLatestIssued,
	}
}

// Load reads envFile (or ./.env when empty) into the process environment and
// then builds a Config from it. A missing default .env is not an error; a
// missing explicit envFile is. Variables already set in the environment win
// over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	if v, ok := lookup(EnvLogLevel); ok {
		level, err := logging.ParseLevel(v)
		errs = append(errs, err)
		cfg.LogLevel = level
	}
	if v, ok := lookup(EnvLogFormat); ok {
		format, err := logging.ParseFormat(v)
		errs = append(errs, err)
		cfg.LogFormat = format
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup(EnvRedisAddr); ok {
		cfg.RedisAddr = v
	}
	if v, ok := lookup(EnvRedisPassword); ok {
		cfg.RedisPassword = v
	}
	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid database %q", EnvRedisDB, v))
		}
		cfg.RedisDB = db
	}
	if v, ok := lookup(EnvStoreDir); ok && v != "" {
		cfg.StoreDir = v
	}
	if v, ok := lookup(EnvSnapshotTTL); ok && v != "" {
		d, err := parseDuration(EnvSnapshotTTL, v)
		errs = append(errs, err)
		cfg.SnapshotTTL = d
	}
	if v, ok := lookup(EnvLockTTL); ok && v != "" {
		d, err := parseDuration(EnvLockTTL, v)
		errs = append(errs, err)
		if d > 0 {
			cfg.LockTTL = d
		}
	}
	if v, ok := lookup(EnvResolvePolicy); ok && v != "" {
		p, valid := runtime.ParseResolvePolicy(v)
		if !valid {
			errs = append(errs, fmt.Errorf("%s: unknown policy %q", EnvResolvePolicy, v))
		}
		cfg.ResolvePolicy = p
	}

	if err := errors.Join(errs...); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func parseDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", name, v)
	}
	return d, nil
}
