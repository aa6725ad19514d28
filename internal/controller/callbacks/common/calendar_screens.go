package common

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/go-telegram/bot/models"
)

const (
	slotsPerRow      = 3
	slotTitleMaxLen  = 8
	monthDaysPerWeek = 7
)

// BuildDayScreen формирует сетку дня: одна кнопка на слот
func BuildDayScreen(view calendar.DayView) (string, *models.InlineKeyboardMarkup) {
	day := view.Date

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s, %s</b>\n\n",
		formatting.GetWeekdayName(int(day.Weekday())), formatting.FormatDate(day))

	starting := view.StartingCount()
	if starting == 0 {
		sb.WriteString("Занятий нет.\n")
	} else {
		fmt.Fprintf(&sb, "🎾 %d %s\n", starting, formatting.PluralizeLessons(starting))
	}
	if conflicts := view.ConflictCount(); conflicts > 0 {
		fmt.Fprintf(&sb, "⚠️ Пересечения в %d слотах\n", conflicts)
	}
	sb.WriteString("\nНажмите на свободный слот, чтобы добавить занятие, или на занятие, чтобы открыть его.")

	buttons := make([]models.InlineKeyboardButton, 0, len(view.Slots))
	for _, slot := range view.Slots {
		buttons = append(buttons, keyboard.Button(SlotButtonText(slot), SlotData(day, slot.Minute)))
	}

	kb := keyboard.NewBuilder().
		Grid(slotsPerRow, buttons...).
		Row(keyboard.PeriodPagination(
			DayData(calendar.AddDays(day, -1)),
			formatting.FormatDateWithWeekday(day),
			DayData(calendar.AddDays(day, 1)),
		)...).
		Row(
			keyboard.Button("🗓 Неделя", WeekData(day)),
			keyboard.Button("📆 Месяц", MonthData(day)),
		).
		Build()

	return sb.String(), kb
}

// SlotButtonText подпись кнопки слота
func SlotButtonText(slot calendar.SlotInfo) string {
	label := slot.Label()
	switch {
	case len(slot.StartingHere) > 0:
		mark := "🎾"
		if slot.HasConflict {
			mark = "⚠️"
		}
		first := slot.StartingHere[0]
		text := fmt.Sprintf("%s %s %s", mark, label, truncate(first.Title, slotTitleMaxLen))
		if span := calendar.Span(first, slot.StepMinutes()); span > 1 {
			text += fmt.Sprintf(" ×%d", span)
		}
		return text
	case !slot.IsFree():
		if slot.HasConflict {
			return "⚠️ " + label
		}
		return "┃ " + label
	case slot.IsPast:
		return "· " + label
	default:
		return label
	}
}

// BuildWeekScreen формирует подпись и клавиатуру недели; картинку рисует GenerateWeekImage
func BuildWeekScreen(week calendar.Week, today time.Time) (string, *models.InlineKeyboardMarkup) {
	end := calendar.AddDays(week.Start, 6)

	total, conflicts := 0, 0
	b := keyboard.NewBuilder()
	for _, day := range week.Days {
		count := day.StartingCount()
		total += count
		conflicts += day.ConflictCount()

		text := formatting.FormatDateWithWeekday(day.Date)
		if calendar.SameDay(day.Date, today) {
			text = "Сегодня • " + text
		}
		if count > 0 {
			text = fmt.Sprintf("%s • %d", text, count)
		}
		if day.ConflictCount() > 0 {
			text += " ⚠️"
		}
		b.Row(keyboard.Button(text, DayData(day.Date)))
	}

	b.Row(keyboard.PeriodPagination(
		WeekData(calendar.AddDays(week.Start, -7)),
		fmt.Sprintf("%s–%s", week.Start.Format("02.01"), end.Format("02.01")),
		WeekData(calendar.AddDays(week.Start, 7)),
	)...)
	b.Row(keyboard.Button("📆 Месяц", MonthData(week.Start)))

	text := fmt.Sprintf("🗓 <b>Неделя %s – %s</b>\n\n🎾 %d %s",
		formatting.FormatDate(week.Start), formatting.FormatDate(end),
		total, formatting.PluralizeLessons(total))
	if conflicts > 0 {
		text += fmt.Sprintf("\n⚠️ Пересечений: %d (отмечены кольцами)", conflicts)
	}
	text += "\n\nВыберите день:"

	return text, b.Build()
}

// BuildMonthScreen формирует месячную сетку 7×6 с количеством занятий по дням
func BuildMonthScreen(month calendar.Month) (string, *models.InlineKeyboardMarkup) {
	first := time.Date(month.Year, month.Month, 1, 0, 0, 0, 0, time.UTC)
	if len(month.Cells) > 0 {
		first = time.Date(month.Year, month.Month, 1, 0, 0, 0, 0, month.Cells[0].Date.Location())
	}

	b := keyboard.NewBuilder()

	header := make([]models.InlineKeyboardButton, 0, monthDaysPerWeek)
	for i := 1; i <= monthDaysPerWeek; i++ {
		header = append(header, keyboard.Button(formatting.GetWeekdayShort(i%7), CallbackNoop))
	}
	b.Row(header...)

	total := 0
	cells := make([]models.InlineKeyboardButton, 0, len(month.Cells))
	for _, cell := range month.Cells {
		if cell.InMonth {
			total += len(cell.Entries)
		}
		cells = append(cells, keyboard.Button(MonthCellText(cell), DayData(cell.Date)))
	}
	b.Grid(monthDaysPerWeek, cells...)

	b.Row(keyboard.PeriodPagination(
		MonthData(first.AddDate(0, -1, 0)),
		fmt.Sprintf("%s %d", formatting.GetMonthName(month.Month), month.Year),
		MonthData(first.AddDate(0, 1, 0)),
	)...)
	b.Row(keyboard.Button("🗓 Неделя", WeekData(first)))

	text := fmt.Sprintf("📆 <b>%s %d</b>\n\n🎾 %d %s за месяц\n\nЧисло в скобках - количество занятий.",
		formatting.GetMonthName(month.Month), month.Year, total, formatting.PluralizeLessons(total))

	return text, b.Build()
}

// MonthCellText подпись ячейки месяца
func MonthCellText(cell calendar.MonthCell) string {
	text := fmt.Sprintf("%d", cell.Date.Day())
	if n := len(cell.Entries); n > 0 {
		text = fmt.Sprintf("%d(%d)", cell.Date.Day(), n)
	}
	if cell.IsToday {
		text = "•" + text + "•"
	}
	if !cell.InMonth {
		text = "·" + text
	}
	return text
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
