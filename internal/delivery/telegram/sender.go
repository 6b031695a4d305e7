// internal/delivery/telegram/sender.go
package telegram

import (
	"context"
	"time"

	"trading-signals-bot/internal/core/conversation"
)

// MessageSender - отправитель сообщений. Реализует conversation.Gateway.
type MessageSender struct {
	client      *TelegramClient
	rateLimiter *RateLimiter
}

// NewMessageSender создает новый отправитель сообщений
func NewMessageSender(client *TelegramClient) *MessageSender {
	return &MessageSender{
		client:      client,
		rateLimiter: NewRateLimiter(time.Second),
	}
}

// SendText отправляет текстовое сообщение
func (ms *MessageSender) SendText(ctx context.Context, chatID int64, text string) error {
	ms.rateLimiter.Wait(chatID)

	_, err := ms.client.Call("sendMessage", SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	return err
}

// SendMenu отправляет сообщение с inline клавиатурой
func (ms *MessageSender) SendMenu(ctx context.Context, chatID int64, text string, rows [][]conversation.Choice) error {
	ms.rateLimiter.Wait(chatID)

	_, err := ms.client.Call("sendMessage", SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: buildMarkup(rows),
	})
	return err
}

// EditMenu заменяет текст и клавиатуру существующего сообщения
func (ms *MessageSender) EditMenu(ctx context.Context, chatID int64, messageID int, text string, rows [][]conversation.Choice) error {
	_, err := ms.client.Call("editMessageText", EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: buildMarkup(rows),
	})
	return err
}

// AnswerCallback отвечает на нажатие кнопки (пустой ответ снимает "часики")
func (ms *MessageSender) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	_, err := ms.client.Call("answerCallbackQuery", AnswerCallbackParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	return err
}

// buildMarkup переводит ряды кнопок ядра в разметку Telegram
func buildMarkup(rows [][]conversation.Choice) InlineKeyboardMarkup {
	keyboard := make([][]InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]InlineKeyboardButton, 0, len(row))
		for _, choice := range row {
			buttons = append(buttons, InlineKeyboardButton{
				Text:         choice.Label,
				CallbackData: choice.Data,
			})
		}
		keyboard = append(keyboard, buttons)
	}
	return InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
