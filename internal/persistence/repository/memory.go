package repository

import (
	"context"
	"sync"
	"time"

	"github.com/devmeet/devmeet/internal/domain"
)

// InMemoryRoomStore keeps room records in process memory. It is the
// fallback when no MongoDB is configured, and the store tests run against
// it directly.
type InMemoryRoomStore struct {
	mu    sync.RWMutex
	rooms map[string]domain.Room
}

func NewInMemoryRoomStore() *InMemoryRoomStore {
	return &InMemoryRoomStore{
		rooms: make(map[string]domain.Room),
	}
}

func (s *InMemoryRoomStore) Create(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; ok {
		return nil
	}

	s.rooms[roomID] = domain.Room{
		ID:        roomID,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *InMemoryRoomStore) Exists(_ context.Context, roomID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.rooms[roomID]
	return ok, nil
}
