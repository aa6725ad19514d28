package common

import (
	"context"
	"errors"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// WithSession создаёт HandlerContext и загружает сессию тренера.
// Без входа отвечает пользователю и handler не вызывается.
func WithSession(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	hc := NewHandlerContext(ctx, b, callback, h)

	if err := hc.LoadSession(); err != nil {
		if !service.IsAuthError(err) {
			h.Logger.Error("Failed to load session",
				zap.Int64("telegram_id", hc.TelegramID),
				zap.Error(err))
		}
		hc.AnswerAlert(ErrorMessage(err))
		return
	}

	handler(hc)
}

// HandleError обрабатывает ошибку и отправляет ответ пользователю.
// Отвергнутый API токен удаляет сессию.
func HandleError(hc *HandlerContext, err error, operation string) {
	err = hc.Handler.AuthService.Invalidate(hc.Ctx, hc.TelegramID, err)

	var verr *service.ValidationError
	switch {
	case service.IsAuthError(err):
		hc.Handler.Logger.Info("Session rejected by API",
			zap.String("operation", operation),
			zap.Int64("telegram_id", hc.TelegramID))
	case errors.As(err, &verr):
		hc.Handler.Logger.Debug("Invalid input",
			zap.String("operation", operation),
			zap.String("field", verr.Field))
	default:
		hc.Handler.Logger.Error("Operation failed",
			zap.String("operation", operation),
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
	}
	hc.AnswerAlert(ErrorMessage(err))
}

// LogAndAnswer логирует действие и отвечает на callback
func LogAndAnswer(hc *HandlerContext, message string, answer string) {
	fields := []zap.Field{zap.Int64("telegram_id", hc.TelegramID)}
	if hc.Session != nil {
		fields = append(fields, zap.String("coach_id", hc.Session.CoachID))
	}
	hc.Handler.Logger.Info(message, fields...)
	hc.Answer(answer)
}
