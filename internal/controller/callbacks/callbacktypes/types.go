package callbacktypes

import (
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	AuthService      *service.AuthService
	LessonService    *service.LessonService
	StudentService   *service.StudentService
	PaymentService   *service.PaymentService
	StatementService *service.StatementService
	StateStore       state.Store
	Logger           *zap.Logger
}
