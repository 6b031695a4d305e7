// internal/infrastructure/persistence/redis_storage/throttle/attempts.go
package throttle

import (
	"context"
	"fmt"
	"time"

	"trading-signals-bot/internal/core/access"
	"trading-signals-bot/internal/infrastructure/cache/redis"
)

// attemptRecord - сериализуемая запись попыток входа
type attemptRecord struct {
	FailedAttempts int       `json:"failed_attempts"`
	BannedUntil    time.Time `json:"banned_until,omitempty"`
}

// AttemptStore хранит записи попыток входа в Redis.
// Записи живут не дольше окна бана и самоочищаются по TTL.
type AttemptStore struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewAttemptStore создает Redis-хранилище попыток входа
func NewAttemptStore(cache *redis.Cache, banDuration time.Duration) *AttemptStore {
	return &AttemptStore{
		cache: cache,
		ttl:   banDuration,
	}
}

func (s *AttemptStore) key(userID int64) string {
	return fmt.Sprintf("throttle:attempts:%d", userID)
}

// Get возвращает запись попыток. Отсутствие ключа - пустая запись.
func (s *AttemptStore) Get(ctx context.Context, userID int64) (access.AttemptRecord, error) {
	var rec attemptRecord
	err := s.cache.Get(ctx, s.key(userID), &rec)
	if err == redis.Nil {
		return access.AttemptRecord{}, nil
	}
	if err != nil {
		return access.AttemptRecord{}, fmt.Errorf("failed to get attempt record: %w", err)
	}

	return access.AttemptRecord{
		FailedAttempts: rec.FailedAttempts,
		BannedUntil:    rec.BannedUntil,
	}, nil
}

// Put сохраняет запись попыток. TTL покрывает активный бан целиком.
func (s *AttemptStore) Put(ctx context.Context, userID int64, rec access.AttemptRecord) error {
	ttl := s.ttl
	if until := time.Until(rec.BannedUntil); until > ttl {
		ttl = until
	}

	stored := attemptRecord{
		FailedAttempts: rec.FailedAttempts,
		BannedUntil:    rec.BannedUntil,
	}
	if err := s.cache.Set(ctx, s.key(userID), stored, ttl); err != nil {
		return fmt.Errorf("failed to put attempt record: %w", err)
	}
	return nil
}

// Clear удаляет запись попыток (успешный вход)
func (s *AttemptStore) Clear(ctx context.Context, userID int64) error {
	if err := s.cache.Delete(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("failed to clear attempt record: %w", err)
	}
	return nil
}
