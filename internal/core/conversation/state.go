// internal/core/conversation/state.go
package conversation

import "trading-signals-bot/internal/core/catalog"

// State - состояние диалога пользователя
type State string

const (
	StateUnauthenticated    State = ""
	StateAwaitingAccessCode State = "awaiting_access_code"
	StateAwaitingAssetClass State = "awaiting_asset_class"
	StateAwaitingInstrument State = "awaiting_instrument"
	StateReadyForSignal     State = "ready_for_signal"
)

// Session - текущее состояние диалога одного пользователя.
// Category хранит категорию, чей список инструментов показан сейчас.
type Session struct {
	State    State
	Category catalog.Category
}

// StateStore хранит состояние диалогов. Живет только в памяти процесса:
// после рестарта все диалоги начинаются заново.
type StateStore interface {
	Get(userID int64) Session
	Set(userID int64, s Session)
}
