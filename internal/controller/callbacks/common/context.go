package common

import (
	"bytes"
	"context"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerContext содержит общие данные для обработки callback
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *callbacktypes.Handler
	Message    *models.Message
	Session    *model.CoachSession
	TelegramID int64
	ChatID     int64
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := callbackMessage(callback)
	var chatID int64
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

// LoadSession загружает сессию тренера в контекст
func (hc *HandlerContext) LoadSession() error {
	session, err := hc.Handler.AuthService.Session(hc.Ctx, hc.TelegramID)
	if err != nil {
		return err
	}
	hc.Session = session
	return nil
}

// Token возвращает токен API текущего тренера
func (hc *HandlerContext) Token() string {
	if hc.Session == nil {
		return ""
	}
	return hc.Session.Token
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// EditMessage редактирует сообщение
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	_, err := hc.Bot.EditMessageText(hc.Ctx, &bot.EditMessageTextParams{
		ChatID:      hc.ChatID,
		MessageID:   hc.Message.ID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: ReplyMarkup(keyboard),
	})

	// Игнорируем ошибку "message is not modified" - это не настоящая ошибка
	if IsMessageNotModifiedError(err) {
		return nil
	}

	return err
}

// Show показывает экран на месте текущего сообщения.
// Сообщение с картинкой нельзя превратить в текст, поэтому оно заменяется новым.
func (hc *HandlerContext) Show(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message != nil && len(hc.Message.Photo) > 0 {
		_ = hc.DeleteMessage()
		return hc.SendMessage(text, keyboard)
	}
	return hc.EditMessage(text, keyboard)
}

// DeleteMessage удаляет сообщение
func (hc *HandlerContext) DeleteMessage() error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	_, err := hc.Bot.DeleteMessage(hc.Ctx, &bot.DeleteMessageParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
	})

	return err
}

// SendMessage отправляет новое сообщение
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	_, err := hc.Bot.SendMessage(hc.Ctx, &bot.SendMessageParams{
		ChatID:      hc.ChatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: ReplyMarkup(keyboard),
	})
	return err
}

// SendPhoto отправляет картинку с подписью и клавиатурой
func (hc *HandlerContext) SendPhoto(name string, data []byte, caption string, keyboard *models.InlineKeyboardMarkup) error {
	_, err := hc.Bot.SendPhoto(hc.Ctx, &bot.SendPhotoParams{
		ChatID:      hc.ChatID,
		Photo:       &models.InputFileUpload{Filename: name, Data: bytes.NewReader(data)},
		Caption:     caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: ReplyMarkup(keyboard),
	})
	return err
}

// SendDocument отправляет файл
func (hc *HandlerContext) SendDocument(name string, data []byte, caption string) error {
	_, err := hc.Bot.SendDocument(hc.Ctx, &bot.SendDocumentParams{
		ChatID:   hc.ChatID,
		Document: &models.InputFileUpload{Filename: name, Data: bytes.NewReader(data)},
		Caption:  caption,
	})
	return err
}

// Dialog загружает диалоговую сессию пользователя
func (hc *HandlerContext) Dialog() (*state.Session, error) {
	return hc.Handler.StateStore.Get(hc.Ctx, hc.TelegramID)
}

// SaveDialog сохраняет диалоговую сессию
func (hc *HandlerContext) SaveDialog(s *state.Session) error {
	return hc.Handler.StateStore.Save(hc.Ctx, hc.TelegramID, s)
}

// ClearDialog очищает состояние пользователя
func (hc *HandlerContext) ClearDialog() {
	if err := hc.Handler.StateStore.Clear(hc.Ctx, hc.TelegramID); err != nil {
		hc.Handler.Logger.Warn("Failed to clear dialog state",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
	}
}
