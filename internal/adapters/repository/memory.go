package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/golazo/internal/domain/model"
)

// MemoryStore keeps the roster and history in process memory.
// Players stay ordered by name; matches stay in creation order.
type MemoryStore struct {
	mu      sync.RWMutex
	players []model.Player
	matches []model.Match

	archivePath string
	newID       func() string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		players: make([]model.Player, 0),
		matches: make([]model.Match, 0),
		newID:   newID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchMatches implements Store.
func (s *MemoryStore) FetchMatches(ctx context.Context) (_ []model.Match, err error) {
	defer func(start time.Time) { observe(opFetchMatches, start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMatches(s.matches), nil
}

// CreateMatch implements Store.
func (s *MemoryStore) CreateMatch(ctx context.Context, params model.MatchParameters) (_ model.Match, err error) {
	defer func(start time.Time) { observe(opCreateMatch, start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return model.Match{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.materialize(s.newID(), params)
	if err != nil {
		return model.Match{}, err
	}
	s.matches = append(s.matches, m)
	return cloneMatch(m), nil
}

// UpdateMatch implements Store.
func (s *MemoryStore) UpdateMatch(ctx context.Context, id string, params model.MatchParameters) (_ model.Match, err error) {
	defer func(start time.Time) { observe(opUpdateMatch, start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return model.Match{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.matchIndex(id)
	if idx < 0 {
		return model.Match{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	m, err := s.materialize(id, params)
	if err != nil {
		return model.Match{}, err
	}
	s.matches[idx] = m
	return cloneMatch(m), nil
}

// DeleteMatch implements Store.
func (s *MemoryStore) DeleteMatch(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(opDeleteMatch, start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.matchIndex(id)
	if idx < 0 {
		return fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	s.matches = append(s.matches[:idx], s.matches[idx+1:]...)
	return nil
}

// FetchPlayers implements Store.
func (s *MemoryStore) FetchPlayers(ctx context.Context) (_ []model.Player, err error) {
	defer func(start time.Time) { observe(opFetchPlayers, start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlayers(s.players), nil
}

// CreatePlayer implements Store.
func (s *MemoryStore) CreatePlayer(ctx context.Context, name string) (_ model.Player, err error) {
	defer func(start time.Time) { observe(opCreatePlayer, start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return model.Player{}, err
	}
	name, err = normalizeName(name)
	if err != nil {
		return model.Player{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.Player{ID: s.newID(), Name: name}
	idx := insertionIndex(s.players, name)
	s.players = append(s.players, model.Player{})
	copy(s.players[idx+1:], s.players[idx:])
	s.players[idx] = p
	return p, nil
}

// Close implements Store. It does not archive; call Archive explicitly.
func (s *MemoryStore) Close() error { return nil }

// Len returns the number of players and matches held.
func (s *MemoryStore) Len() (players, matches int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players), len(s.matches)
}

// materialize must be called with s.mu held.
func (s *MemoryStore) materialize(id string, params model.MatchParameters) (model.Match, error) {
	if err := validateGoals(params); err != nil {
		return model.Match{}, err
	}
	home, err := resolveSide(params.HomePlayerIDs, s.lookupPlayer)
	if err != nil {
		return model.Match{}, err
	}
	away, err := resolveSide(params.AwayPlayerIDs, s.lookupPlayer)
	if err != nil {
		return model.Match{}, err
	}
	return model.Match{
		ID:          id,
		HomePlayers: home,
		AwayPlayers: away,
		HomeGoals:   params.HomeGoals,
		AwayGoals:   params.AwayGoals,
	}, nil
}

func (s *MemoryStore) lookupPlayer(id string) (model.Player, error) {
	for _, p := range s.players {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Player{}, fmt.Errorf("player %s: %w", id, ErrUnknownPlayer)
}

func (s *MemoryStore) matchIndex(id string) int {
	for i, m := range s.matches {
		if m.ID == id {
			return i
		}
	}
	return -1
}
