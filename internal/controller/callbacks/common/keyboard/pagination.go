package keyboard

import (
	"strconv"

	"github.com/go-telegram/bot/models"
)

// noopData callback для кнопок-заголовков, на которые нажимать незачем
const noopData = "noop"

// PaginationButtons ряд "⬅️ / 📄 n/m / ➡️" для постраничного списка.
// page начинается с 0; при одной странице ряд не нужен.
func PaginationButtons(prefix string, page, totalPages int) []models.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}

	row := make([]models.InlineKeyboardButton, 0, 3)
	if page > 0 {
		row = append(row, Button("⬅️", prefix+strconv.Itoa(page-1)))
	}
	row = append(row, Button("📄 "+strconv.Itoa(page+1)+"/"+strconv.Itoa(totalPages), noopData))
	if page+1 < totalPages {
		row = append(row, Button("➡️", prefix+strconv.Itoa(page+1)))
	}
	return row
}

// AddPagination добавляет ряд пагинации, если страниц больше одной
func (b *Builder) AddPagination(prefix string, page, totalPages int) *Builder {
	return b.Row(PaginationButtons(prefix, page, totalPages)...)
}

// PeriodPagination ряд "назад / заголовок / вперёд" для дня, недели или месяца
func PeriodPagination(prevData, title, nextData string) []models.InlineKeyboardButton {
	return []models.InlineKeyboardButton{
		Button("◀️", prevData),
		Button(title, noopData),
		Button("▶️", nextData),
	}
}

// TotalPages количество страниц для total элементов по perPage
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
