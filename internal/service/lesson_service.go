package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

// DurationOptions допустимые длительности занятия в минутах
var DurationOptions = []int{30, 60, 90, 120}

// Форматы ввода времени начала
var startLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"02.01.2006 15:04",
	"02.01 15:04",
}

// LessonForm данные формы создания занятия
type LessonForm struct {
	Start           time.Time
	DurationMinutes int
	Attendees       model.Attendees
	Location        string
	Court           string
	Notes           string
	Price           float64
	Currency        string
	RepeatWeeks     int
}

// RepeatOutcome результат создания одной недельной копии
type RepeatOutcome struct {
	Start time.Time
	ID    string
	Err   error
}

// CreateResult результат создания занятия с повторами
type CreateResult struct {
	LessonID string
	Repeats  []RepeatOutcome
}

// Failed возвращает количество копий, которые не удалось создать
func (r *CreateResult) Failed() int {
	failed := 0
	for _, o := range r.Repeats {
		if o.Err != nil {
			failed++
		}
	}
	return failed
}

// LessonStats сводка по списку занятий
type LessonStats struct {
	Total     int
	Next24h   int
	Completed int
	Conflicts int
}

type LessonService struct {
	api      LessonAPI
	validate *validator.Validate
	metrics  LessonMetrics
	window   calendar.Window
	location *time.Location
	now      Clock
	logger   *zap.Logger
}

func NewLessonService(
	api LessonAPI,
	validate *validator.Validate,
	metrics LessonMetrics,
	location *time.Location,
	logger *zap.Logger,
) *LessonService {
	if location == nil {
		location = time.Local
	}
	return &LessonService{
		api:      api,
		validate: newValidator(validate),
		metrics:  metrics,
		window:   calendar.DefaultWindow(),
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// Now возвращает текущее время в зоне тренера
func (s *LessonService) Now() time.Time {
	return s.now().In(s.location)
}

// Window возвращает параметры сетки
func (s *LessonService) Window() calendar.Window {
	return s.window
}

// Location возвращает зону тренера
func (s *LessonService) Location() *time.Location {
	return s.location
}

// EarliestStart возвращает ближайшее время, на которое можно поставить занятие
func (s *LessonService) EarliestStart() time.Time {
	return calendar.RoundToNextSlot(s.Now())
}

// DefaultStart время начала для быстрого добавления
func (s *LessonService) DefaultStart() time.Time {
	return s.EarliestStart()
}

// CreateStartForSlot возвращает начало нового занятия по нажатому слоту.
// Если слот успел уйти в прошлое, начало сдвигается на ближайший доступный слот.
func (s *LessonService) CreateStartForSlot(slotStart time.Time) time.Time {
	earliest := s.EarliestStart()
	if slotStart.Before(earliest) {
		return earliest
	}
	return slotStart
}

// ParseStart разбирает введённое время начала в зоне тренера
func (s *LessonService) ParseStart(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	now := s.Now()

	for _, layout := range startLayouts {
		t, err := time.ParseInLocation(layout, input, s.location)
		if err != nil {
			continue
		}
		if layout == "02.01 15:04" {
			t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, s.location)
		}
		return t, nil
	}

	return time.Time{}, invalid("start", "не удалось разобрать дату, пример: 03.06.2024 10:00")
}

// ValidateStart проверяет, что начало не раньше ближайшего доступного слота
func (s *LessonService) ValidateStart(start time.Time) error {
	if start.Before(s.EarliestStart()) {
		return invalid("start", "дата должна быть не раньше текущего момента")
	}
	return nil
}

// ValidateDuration проверяет длительность занятия
func ValidateDuration(minutes int) error {
	for _, d := range DurationOptions {
		if d == minutes {
			return nil
		}
	}
	return invalid("duration", "длительность должна быть 30, 60, 90 или 120 минут")
}

// EditDuration длительность существующего занятия, округлённая до получаса (не меньше 30)
func EditDuration(lesson model.Lesson) int {
	minutes := lesson.Duration().Minutes()
	slots := int(minutes/calendar.HalfHourMinutes + 0.5)
	if slots < 1 {
		slots = 1
	}
	return slots * calendar.HalfHourMinutes
}

// Draft собирает и проверяет черновик из формы
func (s *LessonService) Draft(form LessonForm) (model.LessonDraft, error) {
	if err := s.ValidateStart(form.Start); err != nil {
		return model.LessonDraft{}, err
	}
	if err := ValidateDuration(form.DurationMinutes); err != nil {
		return model.LessonDraft{}, err
	}

	draft := model.LessonDraft{
		Start:     form.Start,
		End:       calendar.AddMinutes(form.Start, form.DurationMinutes),
		Attendees: form.Attendees,
		Location:  strings.TrimSpace(form.Location),
		Court:     strings.TrimSpace(form.Court),
		Notes:     strings.TrimSpace(form.Notes),
		Price:     form.Price,
		Currency:  strings.ToUpper(strings.TrimSpace(form.Currency)),
	}

	if err := s.validate.Struct(draft); err != nil {
		return model.LessonDraft{}, fromValidator(err)
	}
	if len(draft.Attendees.StudentIDs()) == 0 {
		return model.LessonDraft{}, invalid("student", "выберите ученика")
	}

	return draft, nil
}

// Create создаёт занятие и его недельные повторы.
// Все ошибки ввода возвращаются до первого обращения к API.
// Повторы отправляются параллельно после создания основного занятия;
// неудачные копии не повторяются и не откатываются.
func (s *LessonService) Create(ctx context.Context, token string, form LessonForm) (*CreateResult, error) {
	draft, err := s.Draft(form)
	if err != nil {
		return nil, err
	}

	copies, err := calendar.ExpandRecurrence(draft, form.RepeatWeeks)
	if err != nil {
		return nil, invalid("repeat", "повтор возможен на 0–4 недели")
	}

	id, err := s.api.CreateLesson(ctx, token, draft)
	s.observe("primary", err)
	if err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	result := &CreateResult{
		LessonID: id,
		Repeats:  s.createCopies(ctx, token, copies),
	}

	s.logger.Info("Lesson created",
		zap.String("lesson_id", id),
		zap.Time("start", draft.Start),
		zap.Int("repeats", len(copies)),
		zap.Int("repeats_failed", result.Failed()))

	return result, nil
}

// Repeat создаёт недельные копии существующего занятия.
// Индивидуальное занятие без studentId сопоставляется с учеником по имени через students.
func (s *LessonService) Repeat(ctx context.Context, token string, lesson model.Lesson, weeks int, students StudentFinder) ([]RepeatOutcome, error) {
	if weeks < 1 || weeks > calendar.MaxRepeatWeeks {
		return nil, invalid("repeat", "повтор возможен на 1–4 недели")
	}

	draft := lesson.Draft()
	attendees, err := s.repeatAttendees(ctx, token, lesson, students)
	if err != nil {
		return nil, err
	}
	draft.Attendees = attendees

	copies, err := calendar.ExpandRecurrence(draft, weeks)
	if err != nil {
		return nil, invalid("repeat", "повтор возможен на 1–4 недели")
	}

	outcomes := s.createCopies(ctx, token, copies)

	s.logger.Info("Lesson repeated",
		zap.String("lesson_id", lesson.ID),
		zap.Int("weeks", weeks),
		zap.Int("failed", countFailed(outcomes)))

	return outcomes, nil
}

// repeatAttendees участники копий; без ученика копии не создаются
func (s *LessonService) repeatAttendees(ctx context.Context, token string, lesson model.Lesson, students StudentFinder) (model.Attendees, error) {
	if lesson.Attendees != nil && len(lesson.Attendees.StudentIDs()) > 0 {
		return lesson.Attendees.Clone(), nil
	}
	if lesson.Type() == model.LessonTypeGroup || students == nil {
		return nil, invalid("student", "у занятия нет ученика")
	}

	student, err := students.FindByName(ctx, token, lesson.StudentName)
	if errors.Is(err, ErrStudentNotFound) {
		return nil, invalid("student", "у занятия нет ученика")
	}
	if err != nil {
		return nil, err
	}
	return model.PrivateAttendee{StudentID: student.ID}, nil
}

// createCopies отправляет копии параллельно; результат i соответствует copies[i]
func (s *LessonService) createCopies(ctx context.Context, token string, copies []model.LessonDraft) []RepeatOutcome {
	outcomes := make([]RepeatOutcome, len(copies))
	if len(copies) == 0 {
		return outcomes
	}

	batchID := uuid.NewString()

	var g errgroup.Group
	for i, c := range copies {
		g.Go(func() error {
			id, err := s.api.CreateLesson(ctx, token, c)
			s.observe("repeat", err)
			outcomes[i] = RepeatOutcome{Start: c.Start, ID: id, Err: err}
			if err != nil {
				s.logger.Warn("Failed to create repeated lesson",
					zap.String("batch_id", batchID),
					zap.Int("week", i+1),
					zap.Time("start", c.Start),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *LessonService) observe(kind string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveLessonCreated(kind, err)
	}
}

func countFailed(outcomes []RepeatOutcome) int {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return failed
}

// Reschedule переносит занятие, сохраняя длительность
func (s *LessonService) Reschedule(ctx context.Context, token string, lesson model.Lesson, start time.Time) error {
	if err := s.ValidateStart(start); err != nil {
		return err
	}
	end := start.Add(lesson.Duration())
	if err := s.api.UpdateLesson(ctx, token, lesson.ID, model.LessonUpdate{Start: &start, End: &end}); err != nil {
		return fmt.Errorf("reschedule lesson: %w", err)
	}
	s.logger.Info("Lesson rescheduled", zap.String("lesson_id", lesson.ID), zap.Time("start", start))
	return nil
}

// SetDuration меняет длительность, начало остаётся прежним
func (s *LessonService) SetDuration(ctx context.Context, token string, lesson model.Lesson, minutes int) error {
	if err := ValidateDuration(minutes); err != nil {
		return err
	}
	end := calendar.AddMinutes(lesson.Start, minutes)
	if err := s.api.UpdateLesson(ctx, token, lesson.ID, model.LessonUpdate{End: &end}); err != nil {
		return fmt.Errorf("set lesson duration: %w", err)
	}
	return nil
}

// SetStatus отмечает занятие проведённым, отменённым или снова запланированным
func (s *LessonService) SetStatus(ctx context.Context, token, lessonID string, status model.LessonStatus) error {
	switch status {
	case model.LessonStatusScheduled, model.LessonStatusCompleted, model.LessonStatusCancelled:
	default:
		return invalid("status", "недопустимый статус")
	}
	if err := s.api.UpdateLesson(ctx, token, lessonID, model.LessonUpdate{Status: &status}); err != nil {
		return fmt.Errorf("set lesson status: %w", err)
	}
	s.logger.Info("Lesson status changed", zap.String("lesson_id", lessonID), zap.String("status", string(status)))
	return nil
}

// SetNotes меняет заметку к занятию
func (s *LessonService) SetNotes(ctx context.Context, token, lessonID, notes string) error {
	notes = strings.TrimSpace(notes)
	if len([]rune(notes)) > 500 {
		return invalid("notes", "слишком длинное значение")
	}
	if err := s.api.UpdateLesson(ctx, token, lessonID, model.LessonUpdate{Notes: &notes}); err != nil {
		return fmt.Errorf("set lesson notes: %w", err)
	}
	return nil
}

// Delete удаляет занятие
func (s *LessonService) Delete(ctx context.Context, token, lessonID string) error {
	if err := s.api.DeleteLesson(ctx, token, lessonID); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	s.logger.Info("Lesson deleted", zap.String("lesson_id", lessonID))
	return nil
}

// List возвращает занятия интервала, отсортированные по началу
func (s *LessonService) List(ctx context.Context, token string, from, to time.Time) ([]model.Lesson, error) {
	lessons, err := s.api.ListLessons(ctx, token, from, to)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].Start.Before(lessons[j].Start)
	})
	return lessons, nil
}

// Find ищет занятие по ID среди занятий дня day
func (s *LessonService) Find(ctx context.Context, token, lessonID string, day time.Time) (*model.Lesson, error) {
	from := calendar.StartOfDay(day.In(s.location))
	lessons, err := s.List(ctx, token, from, calendar.AddDays(from, 1))
	if err != nil {
		return nil, err
	}
	for i := range lessons {
		if lessons[i].ID == lessonID {
			return &lessons[i], nil
		}
	}
	return nil, ErrLessonNotFound
}

// Upcoming возвращает занятия на ближайшие days дней, начиная с текущего момента
func (s *LessonService) Upcoming(ctx context.Context, token string, days int) ([]model.Lesson, error) {
	from := calendar.StartOfDay(s.Now())
	return s.List(ctx, token, from, calendar.AddDays(from, days))
}

// Day возвращает сетку дня и его занятия
func (s *LessonService) Day(ctx context.Context, token string, day time.Time) (calendar.DayView, []model.Lesson, error) {
	from := calendar.StartOfDay(day.In(s.location))
	lessons, err := s.List(ctx, token, from, calendar.AddDays(from, 1))
	if err != nil {
		return calendar.DayView{}, nil, err
	}
	view := calendar.ComputeDayView(calendar.EntriesFromLessons(lessons), from, s.window, s.Now())
	return view, lessons, nil
}

// Week возвращает сетку недели, содержащей anyDay
func (s *LessonService) Week(ctx context.Context, token string, anyDay time.Time) (calendar.Week, []model.Lesson, error) {
	from := calendar.StartOfWeek(anyDay.In(s.location))
	lessons, err := s.List(ctx, token, from, calendar.AddDays(from, 7))
	if err != nil {
		return calendar.Week{}, nil, err
	}
	view := calendar.WeekView(calendar.EntriesFromLessons(lessons), from, s.window, s.Now())
	return view, lessons, nil
}

// Month возвращает месячную сетку (42 дня)
func (s *LessonService) Month(ctx context.Context, token string, anyDay time.Time) (calendar.Month, error) {
	anyDay = anyDay.In(s.location)
	from := calendar.StartOfMonthGrid(anyDay)
	lessons, err := s.List(ctx, token, from, calendar.AddDays(from, calendar.MonthGridDays))
	if err != nil {
		return calendar.Month{}, err
	}
	return calendar.MonthView(calendar.EntriesFromLessons(lessons), anyDay, s.Now()), nil
}

// Stats считает сводку: всего, ближайшие 24 часа, проведённые, пересечения
func (s *LessonService) Stats(lessons []model.Lesson) LessonStats {
	now := s.Now()
	next := now.Add(24 * time.Hour)

	stats := LessonStats{Total: len(lessons)}
	for i, l := range lessons {
		if !l.Start.Before(now) && !l.Start.After(next) {
			stats.Next24h++
		}
		if l.Status == model.LessonStatusCompleted {
			stats.Completed++
		}
		for _, other := range lessons[i+1:] {
			if l.Status != model.LessonStatusCancelled && other.Status != model.LessonStatusCancelled &&
				l.Start.Before(other.End) && other.Start.Before(l.End) {
				stats.Conflicts++
			}
		}
	}
	return stats
}
