// Package model contains domain models passed between layers.
package model

// Player is a member of the roster. Identity is the ID alone; two players
// with the same ID are the same player even when their names differ.
type Player struct {
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
}

// PlayerKey returns the identity key of p.
func PlayerKey(p Player) string { return p.ID }

// SamePlayer reports whether a and b share an identity.
func SamePlayer(a, b Player) bool { return a.ID == b.ID }

// PlayerContentEqual compares the displayable fields of two players.
func PlayerContentEqual(a, b Player) bool {
	return a.ID == b.ID && a.Name == b.Name
}

// PlayersContentEqual compares two ordered player lists element by element.
func PlayersContentEqual(a, b []Player) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !PlayerContentEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ContainsPlayer reports whether list holds a player with p's identity.
func ContainsPlayer(list []Player, p Player) bool {
	for _, candidate := range list {
		if candidate.ID == p.ID {
			return true
		}
	}
	return false
}
