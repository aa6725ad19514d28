package calendar

import "time"

// MonthGridDays количество ячеек месячной сетки: 6 недель по 7 дней
const MonthGridDays = 42

// MonthCell ячейка месячной сетки
type MonthCell struct {
	Date    time.Time
	InMonth bool
	IsToday bool
	Entries []Entry
}

// Month сетка месяца
type Month struct {
	Year  int
	Month time.Month
	Cells []MonthCell
}

// StartOfMonthGrid возвращает понедельник на или до первого числа месяца
func StartOfMonthGrid(anyDay time.Time) time.Time {
	first := time.Date(anyDay.Year(), anyDay.Month(), 1, 0, 0, 0, 0, anyDay.Location())
	return StartOfWeek(first)
}

// MonthView строит сетку месяца, содержащего anyDay.
// Занятие попадает в ячейку дня, на который приходится его начало.
func MonthView(entries []Entry, anyDay time.Time, now time.Time) Month {
	start := StartOfMonthGrid(anyDay)
	cells := make([]MonthCell, 0, MonthGridDays)

	for i := 0; i < MonthGridDays; i++ {
		day := AddDays(start, i)

		var dayEntries []Entry
		for _, e := range entries {
			if SameDay(e.Start, day) {
				dayEntries = append(dayEntries, e)
			}
		}

		cells = append(cells, MonthCell{
			Date:    day,
			InMonth: day.Month() == anyDay.Month(),
			IsToday: SameDay(day, now),
			Entries: dayEntries,
		})
	}

	return Month{Year: anyDay.Year(), Month: anyDay.Month(), Cells: cells}
}
