// internal/core/access/gate.go
package access

import (
	"context"
	"time"
)

// AttemptRecord - запись о неудачных попытках входа пользователя
type AttemptRecord struct {
	FailedAttempts int
	BannedUntil    time.Time // нулевое время = бана нет
}

// AttemptStore хранит записи попыток по пользователям.
// Отсутствующая запись возвращается как пустой AttemptRecord.
type AttemptStore interface {
	Get(ctx context.Context, userID int64) (AttemptRecord, error)
	Put(ctx context.Context, userID int64, rec AttemptRecord) error
	Clear(ctx context.Context, userID int64) error
}

// OutcomeKind - результат проверки кода доступа
type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota
	OutcomeRejected
	OutcomeBanned
)

// Outcome - исход проверки кода доступа
type Outcome struct {
	Kind         OutcomeKind
	AttemptsUsed int
	AttemptsMax  int
	Remaining    time.Duration // для OutcomeBanned
}

// Gate проверяет код доступа с политикой попыток и временного бана.
// Смену состояния диалога выполняет вызывающая сторона.
type Gate struct {
	code        string
	maxAttempts int
	banDuration time.Duration
	store       AttemptStore
}

// NewGate создает шлюз доступа
func NewGate(code string, maxAttempts int, banDuration time.Duration, store AttemptStore) *Gate {
	return &Gate{
		code:        code,
		maxAttempts: maxAttempts,
		banDuration: banDuration,
		store:       store,
	}
}

// SubmitCode проверяет присланный код.
// Активный бан всегда возвращает Banned и не увеличивает счетчик попыток.
func (g *Gate) SubmitCode(ctx context.Context, userID int64, code string, now time.Time) (Outcome, error) {
	rec, err := g.store.Get(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}

	if rec.BannedUntil.After(now) {
		return Outcome{
			Kind:      OutcomeBanned,
			Remaining: rec.BannedUntil.Sub(now),
		}, nil
	}

	if code == g.code {
		if err := g.store.Clear(ctx, userID); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeAccepted}, nil
	}

	rec.FailedAttempts++

	if rec.FailedAttempts >= g.maxAttempts {
		// Лимит исчерпан: ставим бан и сбрасываем счетчик
		rec = AttemptRecord{
			FailedAttempts: 0,
			BannedUntil:    now.Add(g.banDuration),
		}
		if err := g.store.Put(ctx, userID, rec); err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Kind:      OutcomeBanned,
			Remaining: g.banDuration,
		}, nil
	}

	if err := g.store.Put(ctx, userID, rec); err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Kind:         OutcomeRejected,
		AttemptsUsed: rec.FailedAttempts,
		AttemptsMax:  g.maxAttempts,
	}, nil
}
