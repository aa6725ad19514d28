package keyboard

import "github.com/go-telegram/bot/models"

const (
	labelBack    = "⬅️ Назад"
	labelCancel  = "❌ Отмена"
	labelConfirm = "✅ Подтвердить"
	labelYes     = "✅ Да"
	labelNo      = "❌ Нет"
	labelDelete  = "🗑 Удалить"
)

// BackButton кнопка возврата на предыдущий экран
func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button(labelBack, callbackData)
}

func CancelButton(callbackData string) models.InlineKeyboardButton {
	return Button(labelCancel, callbackData)
}

func DeleteButton(callbackData string) models.InlineKeyboardButton {
	return Button(labelDelete, callbackData)
}

// pair один ряд из двух кнопок, положительная слева
func pair(ok, cancel models.InlineKeyboardButton) [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{{ok, cancel}}
}

// YesNoButtons ряд подтверждения удаления или выхода
func YesNoButtons(yesCallback, noCallback string) [][]models.InlineKeyboardButton {
	return pair(Button(labelYes, yesCallback), Button(labelNo, noCallback))
}

// ConfirmCancelButtons нижний ряд форм занятия и оплаты
func ConfirmCancelButtons(confirmCallback, cancelCallback string) [][]models.InlineKeyboardButton {
	return pair(Button(labelConfirm, confirmCallback), CancelButton(cancelCallback))
}

// AddBackButton добавляет ряд с кнопкой "Назад"
func (b *Builder) AddBackButton(callbackData string) *Builder {
	return b.Row(BackButton(callbackData))
}
