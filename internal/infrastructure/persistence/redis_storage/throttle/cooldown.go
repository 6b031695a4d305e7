// internal/infrastructure/persistence/redis_storage/throttle/cooldown.go
package throttle

import (
	"context"
	"fmt"
	"time"

	"trading-signals-bot/internal/infrastructure/cache/redis"
)

// CooldownStore хранит момент доступности следующего сигнала в Redis.
// Ключ самоочищается по TTL ровно в момент доступности.
type CooldownStore struct {
	cache *redis.Cache
}

// NewCooldownStore создает Redis-хранилище кулдаунов
func NewCooldownStore(cache *redis.Cache) *CooldownStore {
	return &CooldownStore{cache: cache}
}

func (s *CooldownStore) key(userID int64) string {
	return fmt.Sprintf("throttle:cooldown:%d", userID)
}

// Get возвращает момент доступности. Отсутствие ключа - нулевое время.
func (s *CooldownStore) Get(ctx context.Context, userID int64) (time.Time, error) {
	var availableAt time.Time
	err := s.cache.Get(ctx, s.key(userID), &availableAt)
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get cooldown: %w", err)
	}
	return availableAt, nil
}

// Set сохраняет момент доступности с TTL до его наступления
func (s *CooldownStore) Set(ctx context.Context, userID int64, availableAt time.Time) error {
	ttl := time.Until(availableAt)
	if ttl <= 0 {
		return s.cache.Delete(ctx, s.key(userID))
	}

	if err := s.cache.Set(ctx, s.key(userID), availableAt, ttl); err != nil {
		return fmt.Errorf("failed to set cooldown: %w", err)
	}
	return nil
}
