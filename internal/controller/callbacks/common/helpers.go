package common

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// AnswerCallback гасит "часики" на кнопке, text показывается всплывающей подсказкой
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	answerCallback(ctx, b, callbackID, text, false)
}

// AnswerCallbackAlert то же, но окном, которое нужно закрыть
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	answerCallback(ctx, b, callbackID, text, true)
}

// callbackMessage сообщение с кнопкой; для устаревших (inaccessible) сообщений nil
func callbackMessage(callback *models.CallbackQuery) *models.Message {
	return callback.Message.Message
}

// IsMessageNotModifiedError Telegram отвечает так, если текст и клавиатура не изменились
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// ReplyMarkup не даёт пустой клавиатуре превратиться в "reply_markup": null
func ReplyMarkup(keyboard *models.InlineKeyboardMarkup) models.ReplyMarkup {
	if keyboard == nil || len(keyboard.InlineKeyboard) == 0 {
		return nil
	}
	return keyboard
}
