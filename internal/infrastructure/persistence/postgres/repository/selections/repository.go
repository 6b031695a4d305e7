// internal/infrastructure/persistence/postgres/repository/selections/repository.go
package selections

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SelectionRepository интерфейс для работы с выбором инструмента
type SelectionRepository interface {
	Upsert(ctx context.Context, userID int64, instrument string) error
	Get(ctx context.Context, userID int64) (string, bool, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// SelectionRepositoryImpl реализация репозитория выбора инструмента
type SelectionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSelectionRepository создает новый репозиторий выбора инструмента
func NewSelectionRepository(db *sqlx.DB) *SelectionRepositoryImpl {
	return &SelectionRepositoryImpl{db: db}
}

// EnsureSchema создает таблицу, если её еще нет
func (r *SelectionRepositoryImpl) EnsureSchema(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS user_selections (
        user_id    BIGINT PRIMARY KEY,
        instrument TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )
    `

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure user_selections schema: %w", err)
	}
	return nil
}

// Upsert сохраняет или перезаписывает выбор пользователя (атомарно по ключу)
func (r *SelectionRepositoryImpl) Upsert(ctx context.Context, userID int64, instrument string) error {
	query := `
    INSERT INTO user_selections (user_id, instrument, created_at, updated_at)
    VALUES ($1, $2, NOW(), NOW())
    ON CONFLICT (user_id)
    DO UPDATE SET instrument = $2, updated_at = NOW()
    `

	if _, err := r.db.ExecContext(ctx, query, userID, instrument); err != nil {
		return fmt.Errorf("failed to upsert selection for user %d: %w", userID, err)
	}
	return nil
}

// Get возвращает выбранный инструмент пользователя
func (r *SelectionRepositoryImpl) Get(ctx context.Context, userID int64) (string, bool, error) {
	var instrument string
	query := `SELECT instrument FROM user_selections WHERE user_id = $1`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&instrument)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get selection for user %d: %w", userID, err)
	}
	return instrument, true, nil
}

// ListUserIDs возвращает всех пользователей с сохраненным выбором
func (r *SelectionRepositoryImpl) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := `SELECT user_id FROM user_selections ORDER BY user_id`

	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}
