package simulate

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/okian/golazo/internal/domain/model"
)

var firstNames = []string{
	"Ada", "Bruno", "Carla", "Dario", "Elena", "Felix", "Gala", "Hugo",
	"Ines", "Jonas", "Kira", "Luca", "Mara", "Nico", "Olga", "Pablo",
	"Quinn", "Rosa", "Sami", "Tea", "Ugo", "Vera", "Wim", "Xena", "Yuri", "Zoe",
}

// randomInt returns a uniform integer in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateNames returns count distinct player names.
func generateNames(count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("%s %03d", firstNames[randomInt(len(firstNames))], i+1)
	}
	return names
}

// generateMatch draws two disjoint sides of 1..teamSize players each from
// the roster and a random score.
func generateMatch(roster []model.Player, teamSize, maxGoals int) model.MatchParameters {
	perSide := min(teamSize, len(roster)/2)
	if perSide == 0 {
		// Not enough players for two sides; play a one-sided match.
		return model.MatchParameters{
			HomePlayerIDs: pickIDs(roster, min(len(roster), 1)),
			HomeGoals:     randomInt(maxGoals + 1),
			AwayGoals:     randomInt(maxGoals + 1),
		}
	}

	ids := pickIDs(roster, 2*perSide)
	home := 1 + randomInt(perSide)
	away := 1 + randomInt(perSide)
	return model.MatchParameters{
		HomePlayerIDs: ids[:home],
		AwayPlayerIDs: ids[perSide : perSide+away],
		HomeGoals:     randomInt(maxGoals + 1),
		AwayGoals:     randomInt(maxGoals + 1),
	}
}

// pickIDs returns the IDs of n distinct players chosen by a partial
// Fisher-Yates shuffle.
func pickIDs(roster []model.Player, n int) []string {
	idx := make([]int, len(roster))
	for i := range idx {
		idx[i] = i
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		j := i + randomInt(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, roster[idx[i]].ID)
	}
	return out
}
