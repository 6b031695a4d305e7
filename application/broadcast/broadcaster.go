// application/broadcast/broadcaster.go
package broadcast

import (
	"context"
	"sync"
	"time"

	"trading-signals-bot/internal/core/catalog"
	"trading-signals-bot/internal/core/signals"
	"trading-signals-bot/internal/core/storage"
	"trading-signals-bot/pkg/logger"
)

// Границы окон расписания (час в фиксированном поясе рассылки)
const (
	quietStartHour  = 10 // [10,19) - тихое окно, рассылки нет
	eveningHour     = 19 // с 19:00 начинается вечернее окно
	nightEndHour    = 4  // вечернее окно тянется до 04:00
	morningEndHour  = 10 // [4,10) - утреннее окно
	eveningInterval = 3 * time.Hour
	morningInterval = time.Hour
)

// Notifier доставляет сигнал одному пользователю
type Notifier interface {
	NotifySignal(ctx context.Context, userID int64, rec signals.Record) error
}

// Broadcaster - фоновая рассылка сигналов всем известным пользователям.
// Работает независимо от диалогов и их кулдаунов.
type Broadcaster struct {
	selections storage.SelectionStore
	generator  *signals.Generator
	catalog    *catalog.Catalog
	notifier   Notifier
	location   *time.Location

	now func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewBroadcaster создает рассыльщик. utcOffset - смещение пояса расписания в часах.
func NewBroadcaster(
	selections storage.SelectionStore,
	generator *signals.Generator,
	cat *catalog.Catalog,
	notifier Notifier,
	utcOffset int,
) *Broadcaster {
	return &Broadcaster{
		selections: selections,
		generator:  generator,
		catalog:    cat,
		notifier:   notifier,
		location:   time.FixedZone("broadcast", utcOffset*3600),
		now:        time.Now,
		stopChan:   make(chan struct{}),
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (b *Broadcaster) SetNowFunc(now func() time.Time) {
	b.now = now
}

// Start запускает цикл рассылки в фоновой горутине
func (b *Broadcaster) Start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.loop()
	}()
	logger.Info("✅ [Broadcast] Рассылка запущена")
}

// Stop останавливает цикл рассылки
func (b *Broadcaster) Stop() {
	close(b.stopChan)
	b.wg.Wait()
	logger.Info("🛑 [Broadcast] Рассылка остановлена")
}

// loop - вечный цикл: рассылка или ожидание, затем пересчет расписания.
// Момент пробуждения каждый раз вычисляется от текущего времени заново.
func (b *Broadcaster) loop() {
	for {
		now := b.now().In(b.location)
		doBroadcast, wakeAt := nextWake(now)

		if doBroadcast {
			b.broadcast()
		} else {
			logger.Info("💤 [Broadcast] Тихое окно, следующая рассылка в %s",
				wakeAt.Format("15:04"))
		}

		timer := time.NewTimer(wakeAt.Sub(b.now().In(b.location)))
		select {
		case <-timer.C:
		case <-b.stopChan:
			timer.Stop()
			return
		}
	}
}

// nextWake решает, рассылать ли сейчас, и когда просыпаться в следующий раз:
//   - час в [19,24) или [0,4): рассылка сейчас, следующая через 3 часа;
//   - час в [4,10): рассылка сейчас, следующая через 1 час;
//   - час в [10,19): рассылки нет, спим до 19:00 этого дня.
func nextWake(now time.Time) (bool, time.Time) {
	hour := now.Hour()

	if hour >= quietStartHour && hour < eveningHour {
		wake := time.Date(now.Year(), now.Month(), now.Day(), eveningHour, 0, 0, 0, now.Location())
		return false, wake
	}

	if hour >= nightEndHour && hour < morningEndHour {
		return true, now.Add(morningInterval)
	}

	return true, now.Add(eveningInterval)
}

// broadcast отправляет один сигнал по полному каталогу всем пользователям.
// Ошибка доставки одному получателю не прерывает рассылку остальным.
func (b *Broadcaster) broadcast() {
	ctx := context.Background()

	rec := b.generator.GenerateFrom(b.catalog.All(), b.now())
	logger.Signal(rec.Instrument, rec.Timeframe, rec.Direction, rec.RiskPercent)

	userIDs, err := b.selections.ListUserIDs(ctx)
	if err != nil {
		logger.Error("❌ [Broadcast] Не удалось получить список пользователей: %v", err)
		return
	}

	sent := 0
	for _, userID := range userIDs {
		if err := b.notifier.NotifySignal(ctx, userID, rec); err != nil {
			// Пользователь мог заблокировать бота
			logger.Warn("⚠️ [Broadcast] Доставка пользователю %d не удалась: %v", userID, err)
			continue
		}
		sent++
	}

	logger.Info("📨 [Broadcast] Сигнал %s доставлен %d/%d пользователям",
		rec.Instrument, sent, len(userIDs))
}
