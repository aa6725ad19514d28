package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

// Рисует картинку недели на тестовых занятиях, чтобы проверить вёрстку без бота
func main() {
	out := flag.String("o", "week.png", "файл для картинки")
	flag.Parse()

	now := time.Now()
	monday := calendar.StartOfWeek(now)
	at := func(day, hour, minute int) time.Time {
		return calendar.AddDays(monday, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	lessons := []model.Lesson{
		// Понедельник
		{
			ID:        "demo-1",
			Start:     at(0, 9, 0),
			End:       at(0, 10, 0),
			Attendees: model.PrivateAttendee{StudentID: "s1"},
			Status:    model.LessonStatusCompleted,
		},
		{
			ID:    "demo-2",
			Start: at(0, 18, 30),
			End:   at(0, 20, 0),
			Attendees: model.GroupAttendees{Participants: []model.Participant{
				{StudentID: "s2", Price: 2500},
				{StudentID: "s3", Price: 2500},
			}},
			Status: model.LessonStatusScheduled,
		},
		// Среда: два занятия пересекаются
		{
			ID:        "demo-3",
			Start:     at(2, 10, 0),
			End:       at(2, 11, 0),
			Attendees: model.PrivateAttendee{StudentID: "s4"},
			Status:    model.LessonStatusScheduled,
		},
		{
			ID:        "demo-4",
			Start:     at(2, 10, 30),
			End:       at(2, 11, 30),
			Attendees: model.PrivateAttendee{StudentID: "s5"},
			Status:    model.LessonStatusScheduled,
		},
		// Пятница
		{
			ID:        "demo-5",
			Start:     at(4, 16, 0),
			End:       at(4, 17, 0),
			Attendees: model.PrivateAttendee{StudentID: "s1"},
			Status:    model.LessonStatusCancelled,
		},
	}

	window := calendar.DefaultWindow()
	week := calendar.WeekView(calendar.EntriesFromLessons(lessons), monday, window, now)

	imageData, err := common.GenerateWeekImage(week, lessons, window, now)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", *out)
	fmt.Printf("📅 Период: %s - %s\n", monday.Format("02.01.2006"), calendar.AddDays(monday, 6).Format("02.01.2006"))
	fmt.Printf("🎾 Занятий: %d\n", len(lessons))
}
