package calendar

import "github.com/Freeeeeet/coach_bot/internal/model"

// EntriesFromLessons переводит занятия в записи сетки, сохраняя порядок
func EntriesFromLessons(lessons []model.Lesson) []Entry {
	entries := make([]Entry, 0, len(lessons))
	for _, l := range lessons {
		entries = append(entries, Entry{
			ID:    l.ID,
			Start: l.Start,
			End:   l.End,
			Title: l.Title(),
		})
	}
	return entries
}
