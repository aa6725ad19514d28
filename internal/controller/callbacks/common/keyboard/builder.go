package keyboard

import "github.com/go-telegram/bot/models"

// Builder упрощает создание inline клавиатур
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

// NewBuilder создаёт новый builder клавиатуры
func NewBuilder() *Builder {
	return &Builder{
		rows: make([][]models.InlineKeyboardButton, 0),
	}
}

// Row добавляет новый ряд кнопок
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

// Grid раскладывает кнопки по рядам не длиннее perRow
func (b *Builder) Grid(perRow int, buttons ...models.InlineKeyboardButton) *Builder {
	if perRow <= 0 {
		perRow = 1
	}
	for start := 0; start < len(buttons); start += perRow {
		end := start + perRow
		if end > len(buttons) {
			end = len(buttons)
		}
		row := make([]models.InlineKeyboardButton, end-start)
		copy(row, buttons[start:end])
		b.rows = append(b.rows, row)
	}
	return b
}

// Button создаёт кнопку
func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// AddRows добавляет несколько рядов кнопок
func (b *Builder) AddRows(rows [][]models.InlineKeyboardButton) *Builder {
	b.rows = append(b.rows, rows...)
	return b
}

// Rows возвращает количество рядов
func (b *Builder) Rows() int {
	return len(b.rows)
}

// Build создаёт финальную клавиатуру
func (b *Builder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: b.rows,
	}
}
