package handlers

import (
	"bytes"
	"context"
	"errors"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireSession проверяет что тренер вошёл в аккаунт
// Возвращает сессию и true если OK, nil и false если нет
func (h *Handlers) requireSession(ctx context.Context, b *bot.Bot, update *models.Update) (*model.CoachSession, bool) {
	if update.Message == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	session, err := h.authService.Session(ctx, telegramID)
	if err != nil {
		if !service.IsAuthError(err) {
			h.logger.Error("Failed to get session", zap.Int64("telegram_id", telegramID), zap.Error(err))
		}
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return nil, false
	}

	return session, true
}

// reportError логирует ошибку операции и сообщает о ней пользователю.
// Отвергнутый API токен удаляет сессию.
func (h *Handlers) reportError(ctx context.Context, b *bot.Bot, update *models.Update, err error, operation string) {
	telegramID := update.Message.From.ID
	err = h.authService.Invalidate(ctx, telegramID, err)

	var verr *service.ValidationError
	switch {
	case service.IsAuthError(err):
		h.logger.Info("Session rejected by API",
			zap.String("operation", operation),
			zap.Int64("telegram_id", telegramID))
	case errors.As(err, &verr):
		h.logger.Debug("Invalid input",
			zap.String("operation", operation),
			zap.String("field", verr.Field))
	default:
		h.logger.Error("Operation failed",
			zap.String("operation", operation),
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
	}

	h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет HTML сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendScreen(ctx, b, chatID, text, nil)
}

// sendScreen отправляет HTML сообщение с клавиатурой
func (h *Handlers) sendScreen(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: common.ReplyMarkup(kb),
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// sendPhoto отправляет картинку с подписью и клавиатурой
func (h *Handlers) sendPhoto(ctx context.Context, b *bot.Bot, chatID int64, name string, data []byte, caption string, kb *models.InlineKeyboardMarkup) error {
	_, err := b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileUpload{Filename: name, Data: bytes.NewReader(data)},
		Caption:     caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: common.ReplyMarkup(kb),
	})
	return err
}

// dialog возвращает диалог пользователя; при ошибке хранилища - пустой
func (h *Handlers) dialog(ctx context.Context, telegramID int64) *state.Session {
	s, err := h.stateStore.Get(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to load dialog", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return &state.Session{}
	}
	return s
}

// saveDialog сохраняет диалог и сообщает пользователю, если не удалось
func (h *Handlers) saveDialog(ctx context.Context, b *bot.Bot, update *models.Update, s *state.Session) bool {
	if err := h.stateStore.Save(ctx, update.Message.From.ID, s); err != nil {
		h.reportError(ctx, b, update, err, "save dialog")
		return false
	}
	return true
}

// clearDialog сбрасывает диалог пользователя
func (h *Handlers) clearDialog(ctx context.Context, telegramID int64) {
	if err := h.stateStore.Clear(ctx, telegramID); err != nil {
		h.logger.Warn("Failed to clear dialog state",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
	}
}
