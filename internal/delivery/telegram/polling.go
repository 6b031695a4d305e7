// internal/delivery/telegram/polling.go
package telegram

import (
	"context"
	"sync"
	"time"

	"trading-signals-bot/pkg/logger"
)

// PollingClient - клиент для polling обновлений.
// Обновления обрабатываются последовательно: события одного пользователя
// никогда не выполняются параллельно друг другу.
type PollingClient struct {
	client   *TelegramClient
	bot      *TelegramBot
	timeout  int
	offset   int
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPollingClient создает новый polling клиент
func NewPollingClient(client *TelegramClient, bot *TelegramBot, timeout int) *PollingClient {
	return &PollingClient{
		client:   client,
		bot:      bot,
		timeout:  timeout,
		stopChan: make(chan struct{}),
	}
}

// Start запускает polling обновлений
func (pc *PollingClient) Start() {
	logger.Info("🔄 Starting Telegram bot polling...")

	pc.wg.Add(1)
	go func() {
		defer pc.wg.Done()
		pc.pollLoop()
	}()
}

// Stop останавливает polling обновлений
func (pc *PollingClient) Stop() {
	close(pc.stopChan)
	pc.wg.Wait()
	logger.Info("🛑 Telegram bot polling stopped")
}

// pollLoop основной цикл polling
func (pc *PollingClient) pollLoop() {
	for {
		select {
		case <-pc.stopChan:
			return
		default:
			pc.fetchUpdates()
		}
	}
}

// fetchUpdates получает и обрабатывает порцию обновлений
func (pc *PollingClient) fetchUpdates() {
	resp, err := pc.client.GetUpdates(pc.offset, pc.timeout)
	if err != nil {
		logger.Error("❌ Error fetching updates: %v", err)
		time.Sleep(3 * time.Second)
		return
	}

	if !resp.OK {
		logger.Error("❌ getUpdates returned not ok")
		time.Sleep(3 * time.Second)
		return
	}

	ctx := context.Background()
	for _, update := range resp.Result {
		if update.UpdateID >= pc.offset {
			pc.offset = update.UpdateID + 1
		}
		pc.bot.HandleUpdate(ctx, update)
	}
}
