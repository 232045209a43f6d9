package store

import (
	"sync"

	"github.com/blackhelm/tradefloor/internal/domain"
)

// PlayerStore is a thread-safe in-memory store for players,
// keyed by player id.
type PlayerStore struct {
	mu      sync.RWMutex
	players map[string]*domain.Player
	order   []string // registration order, for stable listings
}

// NewPlayerStore creates an empty PlayerStore.
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{
		players: make(map[string]*domain.Player),
	}
}

// Create adds a player to the store. It returns
// domain.ErrPlayerAlreadyExists if a player with the same id
// already exists.
func (s *PlayerStore) Create(p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[p.PlayerID]; exists {
		return domain.ErrPlayerAlreadyExists
	}
	s.players[p.PlayerID] = p
	s.order = append(s.order, p.PlayerID)
	return nil
}

// Get retrieves a player by id. It returns
// domain.ErrPlayerNotFound if the player does not exist.
func (s *PlayerStore) Get(id string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return p, nil
}

// Exists returns true if a player with the given id exists.
func (s *PlayerStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.players[id]
	return ok
}

// List returns all players in registration order.
func (s *PlayerStore) List() []*domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.players[id])
	}
	return out
}
