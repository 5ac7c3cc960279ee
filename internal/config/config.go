// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config holding defaults only.
// - Load layers a .env file, an optional YAML file and environment variables on top.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text, json or logfmt output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects where players and matches live: memory or sqlite.
	StoreBackend string `koanf:"store_backend"`

	// ArchivePath is the msgpack archive of the memory backend. Empty disables archiving.
	ArchivePath string `koanf:"archive_path"`

	// SQLitePath is the database file of the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// QueueSize bounds the in-memory refresh queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many idempotency keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// Points awarded per result, from the player's side.
	PointsWin  int `koanf:"points_win"`
	PointsDraw int `koanf:"points_draw"`
	PointsLoss int `koanf:"points_loss"`

	// RatingScale is the rating of a player who won every match.
	RatingScale float64 `koanf:"rating_scale"`

	// ZeroPlayedPolicy rates players without matches: zero or nan.
	ZeroPlayedPolicy string `koanf:"zero_played_policy"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		StoreBackend:     BackendMemory,
		ArchivePath:      "",
		SQLitePath:       "golazo.db",
		QueueSize:        1024,
		WorkerCount:      max(1, runtime.NumCPU()/2),
		DedupeSize:       10_000,
		PointsWin:        3,
		PointsDraw:       1,
		PointsLoss:       0,
		RatingScale:      10,
		ZeroPlayedPolicy: "zero",
	}
}
