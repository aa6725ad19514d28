package common

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/coach_bot/internal/apiclient"
	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
	ErrFormExpired   = errors.New("dialog form is gone")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	var verr *service.ValidationError
	var apiErr *apiclient.APIError

	switch {
	case errors.Is(err, service.ErrNoSession):
		return "🔑 Вы не вошли. Используйте /login или /register"
	case errors.Is(err, service.ErrSessionExpired), apiclient.IsUnauthorized(err):
		return "🔑 Сессия истекла. Войдите снова: /login"
	case errors.Is(err, service.ErrLessonNotFound):
		return "❌ Занятие не найдено"
	case errors.Is(err, service.ErrStudentNotFound):
		return "❌ Ученик не найден"
	case errors.Is(err, calendar.ErrInvalidRepeatWeeks):
		return "❌ Повтор возможен на 0–4 недели"
	case errors.As(err, &verr):
		return "❌ " + verr.Message
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, ErrFormExpired):
		return "⌛️ Форма устарела, начните заново"
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusNotFound {
			return "❌ Не найдено"
		}
		if apiErr.Status >= http.StatusInternalServerError {
			return "❌ Сервер недоступен, попробуйте позже"
		}
		return "❌ " + apiErr.Message
	default:
		return "❌ Произошла ошибка"
	}
}
