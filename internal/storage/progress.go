package storage

import (
	"context"
	"sync"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/repository"
)

// ProgressStorage provides in-memory storage for user progress keyed by user ID.
// It is used when no database is configured and in tests.
type ProgressStorage struct {
	mu       sync.RWMutex
	progress map[int64]entities.UserProgress
}

// NewProgressStorage creates a new ProgressStorage.
func NewProgressStorage() *ProgressStorage {
	return &ProgressStorage{
		progress: make(map[int64]entities.UserProgress),
	}
}

// Get returns a copy of the stored progress for userID.
func (s *ProgressStorage) Get(_ context.Context, userID int64) (*entities.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[userID]
	if !ok {
		return nil, repository.ErrProgressNotFound
	}
	return clone(p), nil
}

// Upsert creates or partially updates progress for userID.
func (s *ProgressStorage) Upsert(_ context.Context, userID, chatID int64, upd entities.ProgressUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.progress[userID]
	if !ok {
		p = *entities.NewUserProgress(userID, chatID)
	}
	p.ChatID = chatID
	upd.Apply(&p)

	s.progress[userID] = p
	return nil
}

// Len returns the number of stored records.
func (s *ProgressStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.progress)
}

func clone(p entities.UserProgress) *entities.UserProgress {
	if p.Level != nil {
		l := *p.Level
		p.Level = &l
	}
	return &p
}
