// Package repository defines the player and match store interface and its
// implementations.
package repository

import (
	"context"

	"github.com/okian/golazo/internal/domain/model"
)

// Store provides read/write access to the roster and the match history.
type Store interface {
	// FetchMatches returns every match in creation order.
	FetchMatches(ctx context.Context) ([]model.Match, error)

	// CreateMatch materializes params into a new match with a fresh ID.
	CreateMatch(ctx context.Context, params model.MatchParameters) (model.Match, error)

	// UpdateMatch replaces the content of match id.
	// Returns ErrNotFound if the match is unknown.
	UpdateMatch(ctx context.Context, id string, params model.MatchParameters) (model.Match, error)

	// DeleteMatch removes match id.
	// Returns ErrNotFound if the match is unknown.
	DeleteMatch(ctx context.Context, id string) error

	// FetchPlayers returns the roster ordered by name.
	FetchPlayers(ctx context.Context) ([]model.Player, error)

	// CreatePlayer adds a player with a fresh ID.
	// Returns ErrInvalidName if name is blank.
	CreatePlayer(ctx context.Context, name string) (model.Player, error)

	// Close releases resources held by the store.
	Close() error
}
