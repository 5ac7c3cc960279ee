package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/golazo/internal/domain/changeset"
	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/pkg/logger"
)

const topPlayersShown = 5

// verifyRankings polls the served rankings until they equal the engine's
// result over the served roster and history, or the settle timeout passes.
func verifyRankings(ctx context.Context, target Target, cfg Config, stats *Stats) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.SettleTimeout)
	defer cancel()

	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	var lastDiff changeset.Changeset
	for {
		stats.RankingPolls++
		expected, served, err := fetchRankings(ctx, target, cfg)
		if err != nil {
			if ctx.Err() != nil && stats.RankingPolls > 1 {
				return mismatch(lastDiff, stats)
			}
			return fmt.Errorf("ranking retrieval failed: %w", err)
		}

		lastDiff = changeset.Compute(expected, served, model.RankingKey, model.RankingContentEqual)
		if lastDiff.IsEmpty() && sameOrder(expected, served) {
			stats.Verified = true
			stats.RankedPlayers = len(served)
			stats.TopPlayers = topPlayers(served, topPlayersShown)
			logger.Get().Info(ctx, "rankings verified", logger.Int("players", len(served)), logger.Int("polls", stats.RankingPolls))
			return nil
		}

		select {
		case <-ctx.Done():
			stats.RankedPlayers = len(served)
			return mismatch(lastDiff, stats)
		case <-ticker.C:
		}
	}
}

func mismatch(diff changeset.Changeset, stats *Stats) error {
	return fmt.Errorf("%w: %d deletions, %d modifications, %d insertions after %d polls",
		ErrRankingMismatch,
		len(diff.Deletions), len(diff.Modifications), len(diff.Insertions),
		stats.RankingPolls)
}

// fetchRankings returns the locally computed rankings and the served ones.
// Rankings are fetched last so a refresh in flight can only make them newer
// than the history they are compared against.
func fetchRankings(ctx context.Context, target Target, cfg Config) (expected, served []model.Ranking, err error) {
	players, err := target.FetchPlayers(ctx)
	if err != nil {
		return nil, nil, err
	}
	matches, err := target.FetchMatches(ctx)
	if err != nil {
		return nil, nil, err
	}
	served, err = target.FetchRankings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg.Engine.Compute(players, matches), served, nil
}

// sameOrder reports whether both lists rank the same players in the same order.
func sameOrder(a, b []model.Ranking) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if model.RankingKey(a[i]) != model.RankingKey(b[i]) {
			return false
		}
	}
	return true
}

func topPlayers(rankings []model.Ranking, n int) []TopEntry {
	n = min(n, len(rankings))
	out := make([]TopEntry, n)
	for i := 0; i < n; i++ {
		out[i] = TopEntry{
			Rank:   i + 1,
			Name:   rankings[i].Player.Name,
			Rating: model.FormatRating(rankings[i].Rating),
		}
	}
	return out
}
