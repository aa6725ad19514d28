package callbacks

import (
	"context"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler обрабатывает callback queries
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	authService *service.AuthService,
	lessonService *service.LessonService,
	studentService *service.StudentService,
	paymentService *service.PaymentService,
	statementService *service.StatementService,
	stateStore state.Store,
	logger *zap.Logger,
) *Handler {
	inner := &callbacktypes.Handler{
		AuthService:      authService,
		LessonService:    lessonService,
		StudentService:   studentService,
		PaymentService:   paymentService,
		StatementService: statementService,
		StateStore:       stateStore,
		Logger:           logger,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery
	h.Logger.Info("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h.Handler)
}
