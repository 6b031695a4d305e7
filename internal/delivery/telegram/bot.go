// internal/delivery/telegram/bot.go
package telegram

import (
	"context"

	"trading-signals-bot/internal/core/conversation"
	"trading-signals-bot/internal/core/signals"
)

// TelegramBot связывает транспорт с конечным автоматом диалога
type TelegramBot struct {
	sender  *MessageSender
	machine *conversation.Machine
}

// NewTelegramBot создает нового бота
func NewTelegramBot(sender *MessageSender, machine *conversation.Machine) *TelegramBot {
	return &TelegramBot{
		sender:  sender,
		machine: machine,
	}
}

// HandleUpdate маршрутизирует одно обновление Telegram в ядро
func (b *TelegramBot) HandleUpdate(ctx context.Context, update Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		if msg.Text == "" {
			// Стикеры, фото и прочее игнорируются
			return
		}
		b.machine.HandleText(ctx, msg.From.ID, msg.Chat.ID, msg.Text)

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil {
			return
		}
		b.machine.HandleCallback(ctx, cb.From.ID, cb.Message.Chat.ID, cb.Message.MessageID, cb.ID, cb.Data)
	}
}

// NotifySignal доставляет сигнал рассылки одному пользователю.
// В личных чатах chat_id совпадает с id пользователя.
func (b *TelegramBot) NotifySignal(ctx context.Context, userID int64, rec signals.Record) error {
	text := conversation.FormatSignal(rec)
	return b.sender.SendMenu(ctx, userID, text, conversation.MenuSignalOnly())
}
