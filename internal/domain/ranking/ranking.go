// Package ranking derives player ratings from match history.
//
// A rating is the share of the maximum attainable points a player earned,
// scaled to 0..10 by default: a win is worth 3 points, a draw 1 and a
// loss 0, counted from the side the player occupied.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/golazo/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultWinPoints  = 3
	DefaultDrawPoints = 1
	DefaultLossPoints = 0
	DefaultScale      = 10.0
)

// ZeroPlayedPolicy decides the rating of a ranked player who appears in no match.
type ZeroPlayedPolicy string

// Zero-played policies.
const (
	// ZeroPlayedZero rates players without matches at 0.
	ZeroPlayedZero ZeroPlayedPolicy = "zero"
	// ZeroPlayedNaN keeps the undefined 0/0 rating. NaN ratings sort last.
	ZeroPlayedNaN ZeroPlayedPolicy = "nan"
)

// ParseZeroPlayedPolicy converts a configuration string to a policy.
func ParseZeroPlayedPolicy(s string) (ZeroPlayedPolicy, error) {
	switch p := ZeroPlayedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", ZeroPlayedZero:
		return ZeroPlayedZero, nil
	case ZeroPlayedNaN:
		return p, nil
	default:
		return "", fmt.Errorf("unknown zero played policy: %s", s)
	}
}

// Engine computes rankings. It holds configuration only and is safe for
// concurrent use.
type Engine struct {
	winPoints  int
	drawPoints int
	lossPoints int
	scale      float64
	zeroPlayed ZeroPlayedPolicy
}

// NewEngine creates an engine with the default points table and options applied.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		winPoints:  DefaultWinPoints,
		drawPoints: DefaultDrawPoints,
		lossPoints: DefaultLossPoints,
		scale:      DefaultScale,
		zeroPlayed: ZeroPlayedZero,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sides holds the player IDs of one match for constant-time membership tests.
type sides struct {
	home map[string]struct{}
	away map[string]struct{}
}

func newSides(m model.Match) sides {
	s := sides{
		home: make(map[string]struct{}, len(m.HomePlayers)),
		away: make(map[string]struct{}, len(m.AwayPlayers)),
	}
	for _, p := range m.HomePlayers {
		s.home[p.ID] = struct{}{}
	}
	for _, p := range m.AwayPlayers {
		s.away[p.ID] = struct{}{}
	}
	return s
}

// Compute returns one ranking per player, sorted by rating descending.
// Players with equal ratings keep their relative order from players.
// A player listed on both sides of a match is counted once per side.
func (e *Engine) Compute(players []model.Player, matches []model.Match) []model.Ranking {
	if len(players) == 0 {
		return []model.Ranking{}
	}

	rankings := make([]model.Ranking, len(players))
	if len(matches) == 0 {
		for i, p := range players {
			rankings[i] = model.Ranking{Player: p, Rating: 0}
		}
		return rankings
	}

	index := make([]sides, len(matches))
	for i, m := range matches {
		index[i] = newSides(m)
	}

	for i, p := range players {
		var earned, played int
		for j, m := range matches {
			if _, ok := index[j].home[p.ID]; ok {
				earned += e.points(m.OutcomeFor(model.SideHome))
				played++
			}
			if _, ok := index[j].away[p.ID]; ok {
				earned += e.points(m.OutcomeFor(model.SideAway))
				played++
			}
		}
		rankings[i] = model.Ranking{Player: p, Rating: e.rating(earned, played*e.winPoints)}
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return ranksBefore(rankings[i].Rating, rankings[j].Rating)
	})
	return rankings
}

// points returns the points awarded for an outcome.
func (e *Engine) points(o model.Outcome) int {
	switch o {
	case model.OutcomeWin:
		return e.winPoints
	case model.OutcomeDraw:
		return e.drawPoints
	default:
		return e.lossPoints
	}
}

func (e *Engine) rating(earned, maxPoints int) float64 {
	if maxPoints == 0 {
		if e.zeroPlayed == ZeroPlayedNaN {
			return math.NaN()
		}
		return 0
	}
	return e.scale * float64(earned) / float64(maxPoints)
}

// ranksBefore orders ratings descending with NaN after every number.
func ranksBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
