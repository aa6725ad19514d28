package calendar

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

// MaxRepeatWeeks наибольшее количество недельных повторов
const MaxRepeatWeeks = 4

// ErrInvalidRepeatWeeks количество повторов вне диапазона 0..4
var ErrInvalidRepeatWeeks = errors.New("repeat weeks out of range")

// ExpandRecurrence возвращает дополнительные черновики занятия на weeks недель вперёд.
// Исходный черновик в результат не входит. Все поля кроме Start и End копируются,
// участники копируются глубоко, время суток сохраняется по календарю, а не через 168 часов.
func ExpandRecurrence(draft model.LessonDraft, weeks int) ([]model.LessonDraft, error) {
	if weeks < 0 || weeks > MaxRepeatWeeks {
		return nil, fmt.Errorf("expand recurrence %d: %w", weeks, ErrInvalidRepeatWeeks)
	}

	copies := make([]model.LessonDraft, 0, weeks)
	for i := 1; i <= weeks; i++ {
		c := draft
		c.Start = AddDays(draft.Start, 7*i)
		c.End = AddDays(draft.End, 7*i)
		if draft.Attendees != nil {
			c.Attendees = draft.Attendees.Clone()
		}
		copies = append(copies, c)
	}

	return copies, nil
}
