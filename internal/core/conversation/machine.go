// internal/core/conversation/machine.go
package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"trading-signals-bot/internal/core/access"
	"trading-signals-bot/internal/core/catalog"
	"trading-signals-bot/internal/core/cooldown"
	"trading-signals-bot/internal/core/signals"
	"trading-signals-bot/internal/core/storage"
	"trading-signals-bot/pkg/logger"
)

// Gateway - узкий интерфейс исходящих сообщений.
// Реализуется транспортом (Telegram), ядро о транспорте не знает.
type Gateway interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64, text string, rows [][]Choice) error
	EditMenu(ctx context.Context, chatID int64, messageID int, text string, rows [][]Choice) error
	AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error
}

// Machine - конечный автомат диалога. Обрабатывает входящие события
// по одному пользователю строго последовательно (мьютекс на пользователя).
type Machine struct {
	states     StateStore
	selections storage.SelectionStore
	accessGate *access.Gate
	cooldown   *cooldown.Gate
	generator  *signals.Generator
	catalog    *catalog.Catalog
	gateway    Gateway

	now func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewMachine создает конечный автомат диалога
func NewMachine(
	states StateStore,
	selections storage.SelectionStore,
	accessGate *access.Gate,
	cooldownGate *cooldown.Gate,
	generator *signals.Generator,
	cat *catalog.Catalog,
	gateway Gateway,
) *Machine {
	return &Machine{
		states:     states,
		selections: selections,
		accessGate: accessGate,
		cooldown:   cooldownGate,
		generator:  generator,
		catalog:    cat,
		gateway:    gateway,
		now:        time.Now,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (m *Machine) SetNowFunc(now func() time.Time) {
	m.now = now
}

// lockUser возвращает мьютекс конкретного пользователя
func (m *Machine) lockUser(userID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

// HandleText обрабатывает входящее текстовое сообщение
func (m *Machine) HandleText(ctx context.Context, userID, chatID int64, text string) {
	lock := m.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	session := m.states.Get(userID)

	// /start всегда перезапускает диалог с запроса кода
	if text == "/start" {
		m.promptAccessCode(ctx, userID, chatID)
		return
	}

	switch session.State {
	case StateUnauthenticated:
		// Первый контакт: любое событие ведет к запросу кода
		m.promptAccessCode(ctx, userID, chatID)

	case StateAwaitingAccessCode:
		m.handleAccessCode(ctx, userID, chatID, text)

	default:
		// Нераспознанный ввод игнорируется без перехода и без ответа
	}
}

// HandleCallback обрабатывает нажатие кнопки
func (m *Machine) HandleCallback(ctx context.Context, userID, chatID int64, messageID int, callbackID, data string) {
	lock := m.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	session := m.states.Get(userID)

	switch session.State {
	case StateUnauthenticated:
		m.promptAccessCode(ctx, userID, chatID)

	case StateAwaitingAssetClass:
		if category, ok := categoryFromCallback(data); ok {
			m.showInstruments(ctx, userID, chatID, messageID, callbackID, category)
		}

	case StateAwaitingInstrument:
		switch {
		case data == callbackBack:
			m.showCategories(ctx, userID, chatID, messageID, callbackID)
		case strings.HasPrefix(data, callbackPairPrefix):
			instrument := strings.TrimPrefix(data, callbackPairPrefix)
			m.selectInstrument(ctx, userID, chatID, messageID, callbackID, session.Category, instrument)
		}

	case StateReadyForSignal:
		switch data {
		case callbackBack:
			m.showCategories(ctx, userID, chatID, messageID, callbackID)
		case callbackGetSignal:
			m.requestSignal(ctx, userID, chatID, callbackID)
		}

	default:
		// Нераспознанный ввод игнорируется
	}
}

// promptAccessCode запрашивает код доступа и переводит диалог в ожидание кода
func (m *Machine) promptAccessCode(ctx context.Context, userID, chatID int64) {
	m.states.Set(userID, Session{State: StateAwaitingAccessCode})

	if err := m.gateway.SendText(ctx, chatID, textAskAccessCode); err != nil {
		logger.Error("❌ Не удалось отправить запрос кода пользователю %d: %v", userID, err)
	}
}

// handleAccessCode проверяет присланный код через шлюз доступа
func (m *Machine) handleAccessCode(ctx context.Context, userID, chatID int64, code string) {
	outcome, err := m.accessGate.SubmitCode(ctx, userID, strings.TrimSpace(code), m.now())
	if err != nil {
		logger.Error("❌ Ошибка проверки кода для пользователя %d: %v", userID, err)
		return
	}

	switch outcome.Kind {
	case access.OutcomeAccepted:
		m.states.Set(userID, Session{State: StateAwaitingAssetClass})
		if err := m.gateway.SendMenu(ctx, chatID, textCodeAccepted, menuCategories()); err != nil {
			logger.Error("❌ Не удалось отправить меню категорий пользователю %d: %v", userID, err)
		}

	case access.OutcomeRejected:
		m.sendText(ctx, userID, chatID, textCodeRejected(outcome.AttemptsUsed, outcome.AttemptsMax))

	case access.OutcomeBanned:
		m.sendText(ctx, userID, chatID, textBanned(outcome.Remaining))
	}
}

// showInstruments показывает инструменты выбранной категории
func (m *Machine) showInstruments(ctx context.Context, userID, chatID int64, messageID int, callbackID string, category catalog.Category) {
	m.states.Set(userID, Session{State: StateAwaitingInstrument, Category: category})

	m.answerCallback(ctx, userID, callbackID)
	rows := menuInstruments(m.catalog.Instruments(category))
	if err := m.gateway.EditMenu(ctx, chatID, messageID, categoryPrompt(category), rows); err != nil {
		logger.Error("❌ Не удалось показать инструменты пользователю %d: %v", userID, err)
	}
}

// showCategories возвращает пользователя к меню категорий
func (m *Machine) showCategories(ctx context.Context, userID, chatID int64, messageID int, callbackID string) {
	m.states.Set(userID, Session{State: StateAwaitingAssetClass})

	m.answerCallback(ctx, userID, callbackID)
	if err := m.gateway.EditMenu(ctx, chatID, messageID, textChooseType, menuCategories()); err != nil {
		logger.Error("❌ Не удалось показать категории пользователю %d: %v", userID, err)
	}
}

// selectInstrument сохраняет выбор пользователя и открывает кнопку сигнала.
// Инструмент обязан принадлежать показанной сейчас категории.
func (m *Machine) selectInstrument(ctx context.Context, userID, chatID int64, messageID int, callbackID string, category catalog.Category, instrument string) {
	if !m.catalog.Contains(category, instrument) {
		return
	}

	if err := m.selections.Upsert(ctx, userID, instrument); err != nil {
		logger.Error("❌ Не удалось сохранить выбор пользователя %d: %v", userID, err)
		return
	}

	m.states.Set(userID, Session{State: StateReadyForSignal, Category: category})

	m.answerCallback(ctx, userID, callbackID)
	if err := m.gateway.EditMenu(ctx, chatID, messageID, textPairSelected(instrument), menuAfterSelection()); err != nil {
		logger.Error("❌ Не удалось подтвердить выбор пользователю %d: %v", userID, err)
	}
}

// requestSignal - путь запроса сигнала: кулдаун, выбор, генерация, отправка.
// Кулдаун резервируется до генерации, повторный запрос не обходит лимит.
func (m *Machine) requestSignal(ctx context.Context, userID, chatID int64, callbackID string) {
	now := m.now()

	ok, remaining, err := m.cooldown.Reserve(ctx, userID, now)
	if err != nil {
		logger.Error("❌ Ошибка кулдауна для пользователя %d: %v", userID, err)
		return
	}

	if !ok {
		if err := m.gateway.AnswerCallback(ctx, callbackID, textCooldown(remaining), true); err != nil {
			logger.Error("❌ Не удалось ответить на callback пользователя %d: %v", userID, err)
		}
		return
	}

	m.answerCallback(ctx, userID, callbackID)

	instrument, found, err := m.selections.Get(ctx, userID)
	if err != nil {
		logger.Error("❌ Ошибка чтения выбора пользователя %d: %v", userID, err)
		return
	}

	if !found {
		// Защитная ветка: ReadyForSignal без сохраненного выбора.
		// Возвращаем пользователя к выбору категории.
		logger.Error("⚠️ Пользователь %d в ReadyForSignal без выбранного инструмента", userID)
		m.states.Set(userID, Session{State: StateAwaitingAssetClass})
		if err := m.gateway.SendMenu(ctx, chatID, textSelectAgain, menuCategories()); err != nil {
			logger.Error("❌ Не удалось отправить меню категорий пользователю %d: %v", userID, err)
		}
		return
	}

	m.sendText(ctx, userID, chatID, textPreparingSignal)

	rec := m.generator.Generate(instrument, now)
	logger.Signal(rec.Instrument, rec.Timeframe, rec.Direction, rec.RiskPercent)

	if err := m.gateway.SendMenu(ctx, chatID, FormatSignal(rec), MenuSignalOnly()); err != nil {
		logger.Error("❌ Не удалось отправить сигнал пользователю %d: %v", userID, err)
	}
}

func (m *Machine) sendText(ctx context.Context, userID, chatID int64, text string) {
	if err := m.gateway.SendText(ctx, chatID, text); err != nil {
		logger.Error("❌ Не удалось отправить сообщение пользователю %d: %v", userID, err)
	}
}

func (m *Machine) answerCallback(ctx context.Context, userID int64, callbackID string) {
	if err := m.gateway.AnswerCallback(ctx, callbackID, "", false); err != nil {
		logger.Error("❌ Не удалось ответить на callback пользователя %d: %v", userID, err)
	}
}
