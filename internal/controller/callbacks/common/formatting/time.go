package formatting

import (
	"fmt"
	"time"
)

var (
	weekdayNames = [...]string{
		time.Sunday:    "Воскресенье",
		time.Monday:    "Понедельник",
		time.Tuesday:   "Вторник",
		time.Wednesday: "Среда",
		time.Thursday:  "Четверг",
		time.Friday:    "Пятница",
		time.Saturday:  "Суббота",
	}
	weekdayShort = [...]string{
		time.Sunday:    "Вс",
		time.Monday:    "Пн",
		time.Tuesday:   "Вт",
		time.Wednesday: "Ср",
		time.Thursday:  "Чт",
		time.Friday:    "Пт",
		time.Saturday:  "Сб",
	}
	monthNames = [...]string{
		time.January: "Январь", time.February: "Февраль", time.March: "Март",
		time.April: "Апрель", time.May: "Май", time.June: "Июнь",
		time.July: "Июль", time.August: "Август", time.September: "Сентябрь",
		time.October: "Октябрь", time.November: "Ноябрь", time.December: "Декабрь",
	}
	// родительный падеж: "3 июня"
	monthGenitive = [...]string{
		time.January: "января", time.February: "февраля", time.March: "марта",
		time.April: "апреля", time.May: "мая", time.June: "июня",
		time.July: "июля", time.August: "августа", time.September: "сентября",
		time.October: "октября", time.November: "ноября", time.December: "декабря",
	}
)

// FormatDate форматирует дату: "03.06.2024"
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatDayMonth форматирует день с месяцем словом: "3 июня"
func FormatDayMonth(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), monthGenitive[t.Month()])
}

// FormatDateWithWeekday форматирует дату с коротким днём недели: "Пн, 03.06"
func FormatDateWithWeekday(t time.Time) string {
	return GetWeekdayShort(int(t.Weekday())) + ", " + t.Format("02.01")
}

// FormatTime форматирует время начала занятия
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatTimeRange форматирует интервал занятия: "18:30–20:00"
func FormatTimeRange(start, end time.Time) string {
	return FormatTime(start) + "–" + FormatTime(end)
}

// FormatDuration форматирует длительность занятия в минутах: "1 ч 30 мин"
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d мин", m)
	case m == 0:
		return fmt.Sprintf("%d ч", h)
	default:
		return fmt.Sprintf("%d ч %d мин", h, m)
	}
}

// GetWeekdayName возвращает полное название дня недели (0 = воскресенье)
func GetWeekdayName(weekday int) string {
	if weekday < 0 || weekday >= len(weekdayNames) {
		return "?"
	}
	return weekdayNames[weekday]
}

// GetWeekdayShort возвращает короткое название дня недели (0 = воскресенье)
func GetWeekdayShort(weekday int) string {
	if weekday < 0 || weekday >= len(weekdayShort) {
		return "?"
	}
	return weekdayShort[weekday]
}

// GetMonthName возвращает название месяца для заголовка календаря
func GetMonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return "?"
	}
	return monthNames[month]
}
