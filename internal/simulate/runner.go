package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run seeds target with players and matches and verifies the rankings it
// serves. The returned stats are populated even when verification fails.
func Run(ctx context.Context, target Target, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("simulate")

	log.Info(ctx, "starting simulation",
		logger.Int("players", cfg.Players),
		logger.Int("matches", cfg.Matches),
		logger.Int("workers", cfg.Workers),
		logger.String("settleTimeout", cfg.SettleTimeout.String()))

	// Step 1: create the roster
	roster, err := submitPlayers(ctx, target, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("player submission failed: %w", err)
	}

	// Step 2: record matches concurrently
	if err := submitMatches(ctx, target, cfg, roster, stats); err != nil {
		return stats, fmt.Errorf("match submission failed: %w", err)
	}

	// Step 3: wait for the served rankings to converge
	verifyErr := verifyRankings(ctx, target, cfg, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, stats); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	displayFinalStats(ctx, stats)
	if verifyErr != nil {
		return stats, verifyErr
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// submitPlayers creates the roster concurrently and returns the players that
// were accepted.
func submitPlayers(ctx context.Context, target Target, cfg Config, stats *Stats) ([]model.Player, error) {
	names := generateNames(cfg.Players)
	created := make([]model.Player, len(names))
	ok := make([]bool, len(names))

	failed := runPool(ctx, cfg.Workers, len(names), func(i int) error {
		p, err := target.CreatePlayer(ctx, names[i])
		if err != nil {
			return err
		}
		created[i], ok[i] = p, true
		return nil
	}, cfg.Verbose)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roster := make([]model.Player, 0, len(names))
	for i, p := range created {
		if ok[i] {
			roster = append(roster, p)
		}
	}
	stats.PlayersCreated = len(roster)
	stats.PlayersFailed = failed
	if len(roster) == 0 {
		return nil, fmt.Errorf("no players were created (%d failed)", failed)
	}
	logger.Get().Info(ctx, "players created", logger.Int("count", len(roster)), logger.Int("failed", failed))
	return roster, nil
}

func submitMatches(ctx context.Context, target Target, cfg Config, roster []model.Player, stats *Stats) error {
	params := make([]model.MatchParameters, cfg.Matches)
	for i := range params {
		params[i] = generateMatch(roster, cfg.TeamSize, cfg.MaxGoals)
	}

	failed := runPool(ctx, cfg.Workers, len(params), func(i int) error {
		_, err := target.CreateMatch(ctx, params[i])
		return err
	}, cfg.Verbose)
	if err := ctx.Err(); err != nil {
		return err
	}

	stats.MatchesCreated = len(params) - failed
	stats.MatchesFailed = failed
	logger.Get().Info(ctx, "matches recorded", logger.Int("count", stats.MatchesCreated), logger.Int("failed", failed))
	return nil
}

// runPool calls fn for every index in [0, n) on up to workers goroutines
// and returns how many calls failed.
func runPool(ctx context.Context, workers, n int, fn func(i int) error, verbose bool) int {
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	indices := make(chan int, workers*2)

	for w := 0; w < min(workers, max(n, 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if err := fn(i); err != nil {
					failed.Add(1)
					if verbose {
						logger.Get().Warn(ctx, "submission failed", logger.Int("index", i), logger.Error(err))
					}
				}
			}
		}()
	}

send:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break send
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()
	return int(failed.Load())
}

func saveReport(path string, stats *Stats) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var matchesPerSecond float64
	if stats.Duration > 0 {
		matchesPerSecond = float64(stats.MatchesCreated) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersCreated", stats.PlayersCreated),
		logger.Int("playersFailed", stats.PlayersFailed),
		logger.Int("matchesCreated", stats.MatchesCreated),
		logger.Int("matchesFailed", stats.MatchesFailed),
		logger.Int("rankedPlayers", stats.RankedPlayers),
		logger.Int("rankingPolls", stats.RankingPolls),
		logger.Bool("verified", stats.Verified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("matchesPerSecond", matchesPerSecond))
}
