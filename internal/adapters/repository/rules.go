package repository

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/pkg/metrics"
)

// Store operation names used for metrics.
const (
	opFetchMatches = "fetch_matches"
	opCreateMatch  = "create_match"
	opUpdateMatch  = "update_match"
	opDeleteMatch  = "delete_match"
	opFetchPlayers = "fetch_players"
	opCreatePlayer = "create_player"
)

func newID() string { return uuid.NewString() }

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreOperation(op, err, float64(time.Since(start).Microseconds())/1000.0)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

func validateGoals(params model.MatchParameters) error {
	if params.HomeGoals < 0 || params.AwayGoals < 0 {
		return fmt.Errorf("%w: %d:%d", ErrInvalidGoals, params.HomeGoals, params.AwayGoals)
	}
	return nil
}

// insertionIndex returns the index before the first player whose name is
// greater than name, keeping the roster alphabetical.
func insertionIndex(players []model.Player, name string) int {
	for i, p := range players {
		if p.Name > name {
			return i
		}
	}
	return len(players)
}

// resolveSide maps a set of player IDs to players ordered by name.
// Repeated IDs are kept once.
func resolveSide(ids []string, lookup func(id string) (model.Player, error)) ([]model.Player, error) {
	seen := make(map[string]struct{}, len(ids))
	side := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		p, err := lookup(id)
		if err != nil {
			return nil, err
		}
		side = append(side, p)
	}
	sortByName(side)
	return side, nil
}

func sortByName(players []model.Player) {
	sort.SliceStable(players, func(i, j int) bool { return players[i].Name < players[j].Name })
}

func clonePlayers(in []model.Player) []model.Player {
	out := make([]model.Player, len(in))
	copy(out, in)
	return out
}

func cloneMatch(m model.Match) model.Match {
	m.HomePlayers = clonePlayers(m.HomePlayers)
	m.AwayPlayers = clonePlayers(m.AwayPlayers)
	return m
}

func cloneMatches(in []model.Match) []model.Match {
	out := make([]model.Match, len(in))
	for i, m := range in {
		out[i] = cloneMatch(m)
	}
	return out
}
