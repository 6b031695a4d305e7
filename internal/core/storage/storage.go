// internal/core/storage/storage.go
package storage

import "context"

// SelectionStore - единственное долговременное хранилище: выбранный
// инструмент по пользователю. Upsert атомарен по ключу пользователя.
type SelectionStore interface {
	Upsert(ctx context.Context, userID int64, instrument string) error
	Get(ctx context.Context, userID int64) (string, bool, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}
