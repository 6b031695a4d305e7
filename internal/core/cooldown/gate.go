// internal/core/cooldown/gate.go
package cooldown

import (
	"context"
	"time"
)

// Store хранит момент, когда пользователю снова доступен сигнал.
// Отсутствующая запись возвращается как нулевое время.
type Store interface {
	Get(ctx context.Context, userID int64) (time.Time, error)
	Set(ctx context.Context, userID int64, availableAt time.Time) error
}

// Gate ограничивает частоту запросов сигналов: один запрос в заданный интервал
type Gate struct {
	duration time.Duration
	store    Store
}

// NewGate создает кулдаун-шлюз
func NewGate(duration time.Duration, store Store) *Gate {
	return &Gate{
		duration: duration,
		store:    store,
	}
}

// Reserve пытается занять слот запроса. При успехе кулдаун ставится сразу,
// до генерации сигнала, чтобы повтор во время генерации не обходил лимит.
// При отказе запись не меняется, возвращается остаток ожидания.
func (g *Gate) Reserve(ctx context.Context, userID int64, now time.Time) (bool, time.Duration, error) {
	availableAt, err := g.store.Get(ctx, userID)
	if err != nil {
		return false, 0, err
	}

	if now.Before(availableAt) {
		return false, availableAt.Sub(now), nil
	}

	if err := g.store.Set(ctx, userID, now.Add(g.duration)); err != nil {
		return false, 0, err
	}

	return true, 0, nil
}

// Duration возвращает настроенный интервал кулдауна
func (g *Gate) Duration() time.Duration {
	return g.duration
}
