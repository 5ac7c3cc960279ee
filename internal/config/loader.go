package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/golazo/internal/domain/ranking"
)

// Environment variables read by Load.
const (
	envPrefix     = "GOLAZO_"
	envConfigFile = "GOLAZO_CONFIG"
	envDotEnvFile = "GOLAZO_DOTENV"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if GOLAZO_CONFIG is set
//  3. env (prefix GOLAZO_), including variables from a .env file that
//     does not override the real environment
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GOLAZO_QUEUE_SIZE -> queue_size; underscores match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv reads GOLAZO_DOTENV (default .env). A missing default file is not an error.
func loadDotEnv() error {
	path, explicit := os.LookupEnv(envDotEnvFile)
	if !explicit || path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
}

// Validate checks field combinations that would make the service unusable.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreBackend != BackendMemory && c.StoreBackend != BackendSQLite:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	case c.StoreBackend == BackendSQLite && strings.TrimSpace(c.SQLitePath) == "":
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.PointsWin < 1:
		return fmt.Errorf("%w: points_win must be positive", ErrInvalidConfig)
	case c.PointsDraw < 0 || c.PointsDraw > c.PointsWin:
		return fmt.Errorf("%w: points_draw must be between 0 and points_win", ErrInvalidConfig)
	case c.PointsLoss < 0 || c.PointsLoss > c.PointsWin:
		return fmt.Errorf("%w: points_loss must be between 0 and points_win", ErrInvalidConfig)
	case c.RatingScale <= 0:
		return fmt.Errorf("%w: rating_scale must be positive", ErrInvalidConfig)
	}
	if _, err := ranking.ParseZeroPlayedPolicy(c.ZeroPlayedPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// RankingOptions translates the scoring fields into engine options.
func (c *Config) RankingOptions() []ranking.Option {
	policy, err := ranking.ParseZeroPlayedPolicy(c.ZeroPlayedPolicy)
	if err != nil {
		policy = ranking.ZeroPlayedZero
	}
	return []ranking.Option{
		ranking.WithPoints(c.PointsWin, c.PointsDraw, c.PointsLoss),
		ranking.WithScale(c.RatingScale),
		ranking.WithZeroPlayedPolicy(policy),
	}
}
