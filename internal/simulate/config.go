// Package simulate seeds a golazo server with generated players and matches
// and checks that the rankings it serves agree with a local computation.
package simulate

import (
	"context"
	"errors"
	"time"

	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/ranking"
)

// Defaults used when a Config field is left at its zero value.
const (
	DefaultPlayers       = 20
	DefaultMatches       = 200
	DefaultWorkers       = 8
	DefaultTeamSize      = 3
	DefaultMaxGoals      = 5
	DefaultSettleTimeout = 10 * time.Second
	defaultPollInterval  = 100 * time.Millisecond
)

// ErrRankingMismatch is returned when served rankings never converge to the
// locally computed ones within the settle timeout.
var ErrRankingMismatch = errors.New("served rankings do not match local computation")

// Target is the subset of the remote API the simulation drives.
type Target interface {
	CreatePlayer(ctx context.Context, name string) (model.Player, error)
	CreateMatch(ctx context.Context, params model.MatchParameters) (model.Match, error)
	FetchPlayers(ctx context.Context) ([]model.Player, error)
	FetchMatches(ctx context.Context) ([]model.Match, error)
	FetchRankings(ctx context.Context) ([]model.Ranking, error)
}

// Config holds configuration for a simulation run.
type Config struct {
	Players       int             // Players to create
	Matches       int             // Matches to record
	Workers       int             // Concurrent submitters
	TeamSize      int             // Maximum players per side
	MaxGoals      int             // Maximum goals per side
	SettleTimeout time.Duration   // How long to wait for rankings to converge
	OutputFile    string          // Optional JSON report path
	Engine        *ranking.Engine // Local engine; must match the server's scoring
	Verbose       bool            // Log every failed submission
}

// Stats holds run statistics.
type Stats struct {
	PlayersCreated int           `json:"players_created"`
	PlayersFailed  int           `json:"players_failed"`
	MatchesCreated int           `json:"matches_created"`
	MatchesFailed  int           `json:"matches_failed"`
	RankedPlayers  int           `json:"ranked_players"`
	RankingPolls   int           `json:"ranking_polls"`
	Verified       bool          `json:"verified"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration_ns"`
	TopPlayers     []TopEntry    `json:"top_players"`
}

// TopEntry is one line of the leaderboard summary.
type TopEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Rating string `json:"rating"`
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Players <= 0 {
		out.Players = DefaultPlayers
	}
	if out.Matches < 0 {
		out.Matches = 0
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.TeamSize <= 0 {
		out.TeamSize = DefaultTeamSize
	}
	if out.MaxGoals < 0 {
		out.MaxGoals = DefaultMaxGoals
	}
	if out.SettleTimeout <= 0 {
		out.SettleTimeout = DefaultSettleTimeout
	}
	if out.Engine == nil {
		out.Engine = ranking.NewEngine()
	}
	return out
}
