// internal/infrastructure/persistence/memory/memory.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trading-signals-bot/internal/core/access"
	"trading-signals-bot/internal/core/conversation"
)

// Хранилища в памяти. Используются при выключенных Postgres/Redis
// (DB_ENABLED=false, REDIS_ENABLED=false) и в тестах.

// SelectionStore - выбор инструмента по пользователю
type SelectionStore struct {
	mu   sync.RWMutex
	data map[int64]string
}

// NewSelectionStore создает хранилище выбора в памяти
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		data: make(map[int64]string),
	}
}

// Upsert сохраняет или перезаписывает выбор пользователя
func (s *SelectionStore) Upsert(ctx context.Context, userID int64, instrument string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = instrument
	return nil
}

// Get возвращает выбор пользователя
func (s *SelectionStore) Get(ctx context.Context, userID int64) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instrument, ok := s.data[userID]
	return instrument, ok, nil
}

// ListUserIDs возвращает всех известных пользователей
func (s *SelectionStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// AttemptStore - записи попыток входа
type AttemptStore struct {
	mu   sync.Mutex
	data map[int64]access.AttemptRecord
}

// NewAttemptStore создает хранилище попыток в памяти
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		data: make(map[int64]access.AttemptRecord),
	}
}

func (s *AttemptStore) Get(ctx context.Context, userID int64) (access.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[userID], nil
}

func (s *AttemptStore) Put(ctx context.Context, userID int64, rec access.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = rec
	return nil
}

func (s *AttemptStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

// CooldownStore - момент доступности следующего сигнала по пользователю
type CooldownStore struct {
	mu   sync.Mutex
	data map[int64]time.Time
}

// NewCooldownStore создает хранилище кулдаунов в памяти
func NewCooldownStore() *CooldownStore {
	return &CooldownStore{
		data: make(map[int64]time.Time),
	}
}

func (s *CooldownStore) Get(ctx context.Context, userID int64) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[userID], nil
}

func (s *CooldownStore) Set(ctx context.Context, userID int64, availableAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = availableAt
	return nil
}

// StateStore - состояния диалогов
type StateStore struct {
	mu   sync.RWMutex
	data map[int64]conversation.Session
}

// NewStateStore создает хранилище состояний диалогов
func NewStateStore() *StateStore {
	return &StateStore{
		data: make(map[int64]conversation.Session),
	}
}

func (s *StateStore) Get(userID int64) conversation.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[userID]
}

func (s *StateStore) Set(userID int64, session conversation.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = session
}
