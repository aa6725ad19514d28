package calendar

import (
	"fmt"
	"time"
)

// Параметры сетки по умолчанию
const (
	DefaultStepMinutes = 30
	DefaultStartHour   = 6
	DefaultEndHour     = 24
)

// Entry занятие с точки зрения сетки: только интервал и подпись
type Entry struct {
	ID    string
	Start time.Time
	End   time.Time
	Title string
}

// DurationMinutes возвращает длительность занятия в минутах
func (e Entry) DurationMinutes() float64 {
	d := e.End.Sub(e.Start).Minutes()
	if d < 0 {
		return 0
	}
	return d
}

// Window описывает отображаемый диапазон часов и шаг слота
type Window struct {
	StepMinutes int
	StartHour   int
	EndHour     int
}

// DefaultWindow возвращает сетку 06:00–24:00 с шагом 30 минут
func DefaultWindow() Window {
	return Window{
		StepMinutes: DefaultStepMinutes,
		StartHour:   DefaultStartHour,
		EndHour:     DefaultEndHour,
	}
}

// SlotCount возвращает количество слотов в дне.
// Если шаг не делит диапазон нацело, последний неполный слот отбрасывается.
func (w Window) SlotCount() int {
	if w.StepMinutes <= 0 || w.EndHour <= w.StartHour {
		return 0
	}
	return ((w.EndHour - w.StartHour) * 60) / w.StepMinutes
}

// SlotMinutes возвращает смещения слотов от полуночи в минутах
func (w Window) SlotMinutes() []int {
	count := w.SlotCount()
	minutes := make([]int, count)
	for i := 0; i < count; i++ {
		minutes[i] = w.StartHour*60 + i*w.StepMinutes
	}
	return minutes
}

// IsTruncated сообщает, что последний неполный слот отброшен
func (w Window) IsTruncated() bool {
	if w.StepMinutes <= 0 || w.EndHour <= w.StartHour {
		return false
	}
	return ((w.EndHour-w.StartHour)*60)%w.StepMinutes != 0
}

// SlotInfo классификация одного слота сетки
type SlotInfo struct {
	Start        time.Time
	End          time.Time
	Minute       int     // смещение от полуночи
	Overlaps     []Entry // занятия, пересекающие слот
	StartingHere []Entry // занятия, начинающиеся ровно в начале слота
	IsPast       bool
	HasConflict  bool // больше одного занятия в слоте
}

// Label возвращает подпись слота вида "09:30"
func (s SlotInfo) Label() string {
	return fmt.Sprintf("%02d:%02d", s.Minute/60, s.Minute%60)
}

// IsFree проверяет, что в слоте нет занятий
func (s SlotInfo) IsFree() bool {
	return len(s.Overlaps) == 0
}

// StepMinutes длина слота в минутах
func (s SlotInfo) StepMinutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// Span возвращает высоту блока занятия в слотах: ceil(длительность / шаг), минимум 1
func Span(e Entry, stepMinutes int) int {
	if stepMinutes <= 0 {
		return 1
	}
	duration := e.DurationMinutes()
	span := int(duration) / stepMinutes
	if float64(span*stepMinutes) < duration {
		span++
	}
	if span < 1 {
		span = 1
	}
	return span
}

// ComputeSlotView классифицирует все слоты дня day.
// Пересечение строго полуоткрытое: занятие, заканчивающееся в начале слота,
// и занятие, начинающееся в конце слота, в слот не попадают.
// Порядок entries сохраняется во всех списках.
func ComputeSlotView(entries []Entry, day time.Time, w Window, now time.Time) []SlotInfo {
	nowMin := RoundToNextSlot(now)
	minutes := w.SlotMinutes()
	slots := make([]SlotInfo, 0, len(minutes))

	for _, m := range minutes {
		slotStart := At(day, m)
		slotEnd := AddMinutes(slotStart, w.StepMinutes)

		var overlaps, startingHere []Entry
		for _, e := range entries {
			if !SameDay(e.Start, day) {
				continue
			}
			if e.End.After(slotStart) && e.Start.Before(slotEnd) {
				overlaps = append(overlaps, e)
				if e.Start.Equal(slotStart) {
					startingHere = append(startingHere, e)
				}
			}
		}

		slots = append(slots, SlotInfo{
			Start:        slotStart,
			End:          slotEnd,
			Minute:       m,
			Overlaps:     overlaps,
			StartingHere: startingHere,
			IsPast:       slotStart.Before(nowMin),
			HasConflict:  len(overlaps) > 1,
		})
	}

	return slots
}

// DayView сетка одного дня
type DayView struct {
	Date  time.Time
	Slots []SlotInfo
}

// StartingCount возвращает количество занятий, начинающихся в слотах дня
func (d DayView) StartingCount() int {
	count := 0
	for _, s := range d.Slots {
		count += len(s.StartingHere)
	}
	return count
}

// ConflictCount возвращает количество слотов с пересечениями
func (d DayView) ConflictCount() int {
	count := 0
	for _, s := range d.Slots {
		if s.HasConflict {
			count++
		}
	}
	return count
}

// FindSlot ищет слот по смещению от полуночи
func (d DayView) FindSlot(minute int) (SlotInfo, bool) {
	for _, s := range d.Slots {
		if s.Minute == minute {
			return s, true
		}
	}
	return SlotInfo{}, false
}

// ComputeDayView строит сетку одного дня
func ComputeDayView(entries []Entry, day time.Time, w Window, now time.Time) DayView {
	date := StartOfDay(day)
	return DayView{
		Date:  date,
		Slots: ComputeSlotView(entries, date, w, now),
	}
}

// Week сетка недели с понедельника по воскресенье
type Week struct {
	Start time.Time
	Days  []DayView
}

// End возвращает полночь понедельника следующей недели
func (w Week) End() time.Time {
	return AddDays(w.Start, 7)
}

// WeekView строит сетку недели, содержащей anyDay
func WeekView(entries []Entry, anyDay time.Time, w Window, now time.Time) Week {
	start := StartOfWeek(anyDay)
	days := make([]DayView, 0, 7)
	for i := 0; i < 7; i++ {
		day := AddDays(start, i)
		days = append(days, DayView{
			Date:  day,
			Slots: ComputeSlotView(entries, day, w, now),
		})
	}
	return Week{Start: start, Days: days}
}
