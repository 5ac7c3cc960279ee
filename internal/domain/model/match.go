package model

// Match is a recorded result between a home and an away side.
// Either side may be empty and the two sides may overlap.
type Match struct {
	ID          string   `json:"id" msgpack:"id"`
	HomePlayers []Player `json:"home_players" msgpack:"home_players"`
	AwayPlayers []Player `json:"away_players" msgpack:"away_players"`
	HomeGoals   int      `json:"home_goals" msgpack:"home_goals"`
	AwayGoals   int      `json:"away_goals" msgpack:"away_goals"`
}

// MatchKey returns the identity key of m.
func MatchKey(m Match) string { return m.ID }

// SameMatch reports whether a and b share an identity.
func SameMatch(a, b Match) bool { return a.ID == b.ID }

// MatchContentEqual compares identity, both rosters (order-sensitive) and the score.
func MatchContentEqual(a, b Match) bool {
	return a.ID == b.ID &&
		PlayersContentEqual(a.HomePlayers, b.HomePlayers) &&
		PlayersContentEqual(a.AwayPlayers, b.AwayPlayers) &&
		a.HomeGoals == b.HomeGoals &&
		a.AwayGoals == b.AwayGoals
}

// Side identifies which team a player occupied in a match.
type Side int

// Match sides.
const (
	SideHome Side = iota
	SideAway
)

// String returns the lower-case side name.
func (s Side) String() string {
	if s == SideAway {
		return "away"
	}
	return "home"
}

// Outcome is the result of a match from one side's perspective.
type Outcome int

// Match outcomes.
const (
	OutcomeLoss Outcome = iota
	OutcomeDraw
	OutcomeWin
)

// OutcomeFor returns the result of m as seen from side.
func (m Match) OutcomeFor(side Side) Outcome {
	switch {
	case m.HomeGoals == m.AwayGoals:
		return OutcomeDraw
	case m.HomeGoals > m.AwayGoals:
		if side == SideHome {
			return OutcomeWin
		}
		return OutcomeLoss
	default:
		if side == SideAway {
			return OutcomeWin
		}
		return OutcomeLoss
	}
}

// MatchParameters carries the fields a caller supplies to create or update a match.
// Sides are referenced by player ID; stores resolve and order them.
type MatchParameters struct {
	HomePlayerIDs []string
	AwayPlayerIDs []string
	HomeGoals     int
	AwayGoals     int
}
