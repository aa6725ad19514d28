package calendar

import "time"

// HalfHourMinutes шаг округления времени начала занятия
const HalfHourMinutes = 30

// AddMinutes возвращает новое время, сдвинутое на minutes минут по часам календаря.
// Переходы через час, сутки, месяц и год нормализуются time.Date.
func AddMinutes(t time.Time, minutes int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()+minutes, t.Second(), t.Nanosecond(), t.Location())
}

// AddDays сдвигает время на days календарных дней, сохраняя время суток
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// RoundToNextSlot округляет время вверх до ближайшей границы получаса.
// Секунды и наносекунды обнуляются; время ровно на границе не меняется.
func RoundToNextSlot(t time.Time) time.Time {
	result := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())

	if remainder := result.Minute() % HalfHourMinutes; remainder != 0 {
		result = AddMinutes(result, HalfHourMinutes-remainder)
	}

	// 10:00:15 после обнуления секунд стало 10:00, а это уже в прошлом
	if result.Before(t) {
		result = AddMinutes(result, HalfHourMinutes)
	}

	return result
}

// StartOfDay возвращает полночь того же дня
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek возвращает полночь понедельника той же недели (неделя начинается с понедельника)
func StartOfWeek(t time.Time) time.Time {
	daysSinceMonday := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}
	return StartOfDay(AddDays(t, -daysSinceMonday))
}

// SameDay проверяет совпадение года, месяца и числа.
// Каждое значение читается в своей временной зоне.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// At возвращает момент day в указанное количество минут от полуночи
func At(day time.Time, minuteOfDay int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minuteOfDay, 0, 0, day.Location())
}
