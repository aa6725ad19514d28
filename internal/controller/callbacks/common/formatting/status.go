package formatting

import "github.com/Freeeeeet/coach_bot/internal/model"

// StatusDisplay emoji и текст статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetLessonStatusDisplay возвращает emoji и текст для статуса занятия
func GetLessonStatusDisplay(status model.LessonStatus) StatusDisplay {
	displays := map[model.LessonStatus]StatusDisplay{
		model.LessonStatusScheduled: {"🗓", "Запланировано"},
		model.LessonStatusCompleted: {"✅", "Проведено"},
		model.LessonStatusCancelled: {"❌", "Отменено"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// GetPaymentStatusDisplay возвращает emoji и текст для статуса оплаты занятия
func GetPaymentStatusDisplay(status model.PaymentStatus) StatusDisplay {
	displays := map[model.PaymentStatus]StatusDisplay{
		model.PaymentStatusUnpaid:   {"💸", "Не оплачено"},
		model.PaymentStatusPartial:  {"🌓", "Частично"},
		model.PaymentStatusPaid:     {"💰", "Оплачено"},
		model.PaymentStatusRefunded: {"↩️", "Возврат"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// GetPaymentMethodName возвращает название способа оплаты
func GetPaymentMethodName(method model.PaymentMethod) string {
	names := map[model.PaymentMethod]string{
		model.PaymentMethodCash:     "Наличные",
		model.PaymentMethodTransfer: "Перевод",
		model.PaymentMethodMP:       "Mercado Pago",
		model.PaymentMethodCard:     "Карта",
		model.PaymentMethodBalance:  "С баланса",
	}
	if name, ok := names[method]; ok {
		return name
	}
	return string(method)
}
