package controller

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// UpdateObserver считает входящие обновления
type UpdateObserver interface {
	ObserveUpdate(kind string)
}

// updateKind тип обновления для метрик
func updateKind(update *models.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback"
	case update.Message != nil && len(update.Message.Text) > 0 && update.Message.Text[0] == '/':
		return "command"
	case update.Message != nil:
		return "message"
	default:
		return "other"
	}
}

// ObserveMiddleware считает обновления и логирует медленную обработку
func ObserveMiddleware(observer UpdateObserver, logger *zap.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			kind := updateKind(update)
			observer.ObserveUpdate(kind)

			started := time.Now()
			next(ctx, b, update)

			if elapsed := time.Since(started); elapsed > 3*time.Second {
				logger.Warn("Slow update handling",
					zap.String("kind", kind),
					zap.Int64("update_id", update.ID),
					zap.Duration("elapsed", elapsed))
			}
		}
	}
}
