package model

import "fmt"

// Ranking pairs a player with a rating derived from match history.
// Rankings are always recomputed and never persisted.
type Ranking struct {
	Player Player  `json:"player"`
	Rating float64 `json:"rating"`
}

// RankingKey returns the identity key of r, which is its player's ID.
func RankingKey(r Ranking) string { return r.Player.ID }

// FormatRating renders a rating the way clients display it.
func FormatRating(rating float64) string {
	return fmt.Sprintf("%.2f", rating)
}

// RankingContentEqual compares the player content and the rendered rating.
// Raw float equality is avoided so that differences invisible at two
// decimals do not trigger a refresh.
func RankingContentEqual(a, b Ranking) bool {
	return PlayerContentEqual(a.Player, b.Player) &&
		FormatRating(a.Rating) == FormatRating(b.Rating)
}
