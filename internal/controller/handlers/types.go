package handlers

import (
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	authService    *service.AuthService
	lessonService  *service.LessonService
	studentService *service.StudentService
	paymentService *service.PaymentService
	stateStore     state.Store
	logger         *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	authService *service.AuthService,
	lessonService *service.LessonService,
	studentService *service.StudentService,
	paymentService *service.PaymentService,
	stateStore state.Store,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		authService:    authService,
		lessonService:  lessonService,
		studentService: studentService,
		paymentService: paymentService,
		stateStore:     stateStore,
		logger:         logger,
	}
}
