package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

func newLessonService(api LessonAPI, now time.Time) (*LessonService, *recordingMetrics) {
	metrics := &recordingMetrics{}
	s := NewLessonService(api, nil, metrics, testLoc, zap.NewNop())
	s.now = fixedClock(now)
	return s, metrics
}

func validForm() LessonForm {
	return LessonForm{
		Start:           at(2024, 6, 3, 10, 0),
		DurationMinutes: 60,
		Attendees:       model.PrivateAttendee{StudentID: "s1"},
		Notes:           "  saque  ",
		Price:           15000,
		Currency:        "ars",
	}
}

func TestCreateWithRepeats(t *testing.T) {
	api := &stubLessonAPI{}
	s, metrics := newLessonService(api, at(2024, 6, 3, 9, 10))

	form := validForm()
	form.RepeatWeeks = 3

	res, err := s.Create(context.Background(), "tok", form)
	require.NoError(t, err)
	assert.Equal(t, "0603-1000", res.LessonID)
	require.Len(t, res.Repeats, 3)
	assert.Zero(t, res.Failed())

	for i, r := range res.Repeats {
		assert.Equal(t, at(2024, 6, 3+7*(i+1), 10, 0), r.Start)
		assert.NoError(t, r.Err)
		assert.NotEmpty(t, r.ID)
	}

	require.Equal(t, 4, api.createdCount())
	primary := api.created[0]
	assert.Equal(t, at(2024, 6, 3, 11, 0), primary.End)
	assert.Equal(t, "saque", primary.Notes)
	assert.Equal(t, "ARS", primary.Currency)

	assert.Equal(t, 1, metrics.created["primary"])
	assert.Equal(t, 3, metrics.created["repeat"])
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	now := at(2024, 6, 3, 10, 10)

	tests := []struct {
		name  string
		mod   func(*LessonForm)
		field string
	}{
		{"past start", func(f *LessonForm) { f.Start = at(2024, 6, 3, 10, 0) }, "start"},
		{"bad duration", func(f *LessonForm) { f.DurationMinutes = 45 }, "duration"},
		{"repeat too many", func(f *LessonForm) { f.RepeatWeeks = 5 }, "repeat"},
		{"negative repeat", func(f *LessonForm) { f.RepeatWeeks = -1 }, "repeat"},
		{"no attendees", func(f *LessonForm) { f.Attendees = nil }, "attendees"},
		{"empty student", func(f *LessonForm) { f.Attendees = model.PrivateAttendee{} }, "student"},
		{"bad currency", func(f *LessonForm) { f.Currency = "peso" }, "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubLessonAPI{}
			s, _ := newLessonService(api, now)

			form := validForm()
			form.Start = at(2024, 6, 3, 10, 30)
			tt.mod(&form)

			_, err := s.Create(context.Background(), "tok", form)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, api.createdCount())
		})
	}
}

func TestCreateStartOnRoundedNowIsAllowed(t *testing.T) {
	api := &stubLessonAPI{}
	s, _ := newLessonService(api, at(2024, 6, 3, 10, 10))

	form := validForm()
	form.Start = at(2024, 6, 3, 10, 30)

	_, err := s.Create(context.Background(), "tok", form)
	require.NoError(t, err)
}

func TestCreatePartialRepeatFailure(t *testing.T) {
	api := &stubLessonAPI{failAt: map[time.Time]error{
		at(2024, 6, 17, 10, 0): errors.New("HTTP 500"),
	}}
	s, metrics := newLessonService(api, at(2024, 6, 3, 9, 0))

	form := validForm()
	form.RepeatWeeks = 4

	res, err := s.Create(context.Background(), "tok", form)
	require.NoError(t, err)
	require.Len(t, res.Repeats, 4)
	assert.Equal(t, 1, res.Failed())

	assert.NoError(t, res.Repeats[0].Err)
	assert.EqualError(t, res.Repeats[1].Err, "HTTP 500")
	assert.Empty(t, res.Repeats[1].ID)
	assert.NoError(t, res.Repeats[2].Err)
	assert.NoError(t, res.Repeats[3].Err)

	// Неудачная копия не повторяется, остальные не откатываются
	assert.Equal(t, 4, api.createdCount())
	assert.Equal(t, 1, metrics.failed["repeat"])
}

func TestCreatePrimaryFailureSkipsRepeats(t *testing.T) {
	api := &stubLessonAPI{failAt: map[time.Time]error{
		at(2024, 6, 3, 10, 0): errors.New("boom"),
	}}
	s, _ := newLessonService(api, at(2024, 6, 3, 9, 0))

	form := validForm()
	form.RepeatWeeks = 2

	_, err := s.Create(context.Background(), "tok", form)
	require.Error(t, err)
	assert.Zero(t, api.createdCount())
}

func TestRepeatExistingLesson(t *testing.T) {
	api := &stubLessonAPI{}
	s, _ := newLessonService(api, at(2024, 6, 3, 9, 0))

	lesson := model.Lesson{
		ID:        "l1",
		Start:     at(2024, 6, 1, 18, 0),
		End:       at(2024, 6, 1, 19, 30),
		Attendees: model.GroupAttendees{Participants: []model.Participant{{StudentID: "s1", Price: 10}}},
		Court:     "3",
	}

	outcomes, err := s.Repeat(context.Background(), "tok", lesson, 2, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, at(2024, 6, 15, 18, 0), outcomes[1].Start)
	assert.Equal(t, 2, api.createdCount())

	for _, weeks := range []int{0, 5} {
		_, err = s.Repeat(context.Background(), "tok", lesson, weeks, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "repeat", verr.Field)
	}
}

func TestRepeatResolvesStudentByName(t *testing.T) {
	api := &stubLessonAPI{}
	s, _ := newLessonService(api, at(2024, 6, 3, 9, 0))
	students := NewStudentService(&stubStudentAPI{students: []model.Student{
		{ID: "s1", Name: "Bruno"},
		{ID: "s2", Name: "Ana"},
	}}, nil, zap.NewNop())

	lesson := model.Lesson{
		ID:          "l1",
		Start:       at(2024, 6, 1, 18, 0),
		End:         at(2024, 6, 1, 19, 0),
		Attendees:   model.PrivateAttendee{},
		StudentName: "ana",
	}

	outcomes, err := s.Repeat(context.Background(), "tok", lesson, 2, students)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	require.Equal(t, 2, api.createdCount())
	for _, draft := range api.created {
		assert.Equal(t, []string{"s2"}, draft.Attendees.StudentIDs())
	}
}

func TestRepeatWithoutStudentCreatesNothing(t *testing.T) {
	students := NewStudentService(&stubStudentAPI{students: []model.Student{{ID: "s1", Name: "Bruno"}}}, nil, zap.NewNop())

	tests := []struct {
		name     string
		lesson   model.Lesson
		students StudentFinder
	}{
		{"unknown name", model.Lesson{Attendees: model.PrivateAttendee{}, StudentName: "Ana"}, students},
		{"no name", model.Lesson{Attendees: model.PrivateAttendee{}}, students},
		{"nil attendees without finder", model.Lesson{StudentName: "Bruno"}, nil},
		{"empty group", model.Lesson{Attendees: model.GroupAttendees{}}, students},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubLessonAPI{}
			s, _ := newLessonService(api, at(2024, 6, 3, 9, 0))
			tt.lesson.Start = at(2024, 6, 1, 18, 0)
			tt.lesson.End = at(2024, 6, 1, 19, 0)

			_, err := s.Repeat(context.Background(), "tok", tt.lesson, 2, tt.students)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "student", verr.Field)
			assert.Zero(t, api.createdCount())
		})
	}
}

func TestParseStart(t *testing.T) {
	s, _ := newLessonService(&stubLessonAPI{}, at(2024, 6, 3, 9, 0))

	for _, input := range []string{"2024-06-05T14:00", "2024-06-05 14:00", "05.06.2024 14:00", " 05.06 14:00 "} {
		got, err := s.ParseStart(input)
		require.NoError(t, err, input)
		assert.Equal(t, at(2024, 6, 5, 14, 0), got, input)
	}

	_, err := s.ParseStart("tomorrow")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCreateStartForSlot(t *testing.T) {
	s, _ := newLessonService(&stubLessonAPI{}, at(2024, 6, 3, 10, 10))

	assert.Equal(t, at(2024, 6, 3, 10, 30), s.CreateStartForSlot(at(2024, 6, 3, 9, 0)))
	assert.Equal(t, at(2024, 6, 3, 12, 0), s.CreateStartForSlot(at(2024, 6, 3, 12, 0)))
	assert.Equal(t, at(2024, 6, 3, 10, 30), s.DefaultStart())
}

func TestEditDuration(t *testing.T) {
	mk := func(minutes int) model.Lesson {
		return model.Lesson{Start: at(2024, 6, 3, 10, 0), End: at(2024, 6, 3, 10, 0).Add(time.Duration(minutes) * time.Minute)}
	}
	assert.Equal(t, 30, EditDuration(mk(10)))
	assert.Equal(t, 60, EditDuration(mk(45)))
	assert.Equal(t, 60, EditDuration(mk(60)))
	assert.Equal(t, 90, EditDuration(mk(80)))
}

func TestRescheduleKeepsDuration(t *testing.T) {
	api := &stubLessonAPI{}
	s, _ := newLessonService(api, at(2024, 6, 3, 9, 0))

	lesson := model.Lesson{ID: "l1", Start: at(2024, 6, 4, 10, 0), End: at(2024, 6, 4, 11, 30)}
	require.NoError(t, s.Reschedule(context.Background(), "tok", lesson, at(2024, 6, 4, 12, 0)))

	update := api.updates["l1"]
	require.NotNil(t, update.Start)
	require.NotNil(t, update.End)
	assert.Equal(t, at(2024, 6, 4, 13, 30), *update.End)

	err := s.Reschedule(context.Background(), "tok", lesson, at(2024, 6, 2, 12, 0))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSetDurationAndStatus(t *testing.T) {
	api := &stubLessonAPI{}
	s, _ := newLessonService(api, at(2024, 6, 3, 9, 0))
	lesson := model.Lesson{ID: "l1", Start: at(2024, 6, 4, 10, 0), End: at(2024, 6, 4, 11, 0)}

	require.NoError(t, s.SetDuration(context.Background(), "tok", lesson, 120))
	assert.Equal(t, at(2024, 6, 4, 12, 0), *api.updates["l1"].End)
	assert.Nil(t, api.updates["l1"].Start)

	assert.Error(t, s.SetDuration(context.Background(), "tok", lesson, 15))

	require.NoError(t, s.SetStatus(context.Background(), "tok", "l1", model.LessonStatusCompleted))
	assert.Equal(t, model.LessonStatusCompleted, *api.updates["l1"].Status)
	assert.Error(t, s.SetStatus(context.Background(), "tok", "l1", "done"))
}

func TestWeekFetchesWholeWeek(t *testing.T) {
	api := &stubLessonAPI{lessons: []model.Lesson{
		{ID: "l1", Start: at(2024, 6, 3, 10, 0), End: at(2024, 6, 3, 11, 0), Attendees: model.PrivateAttendee{StudentID: "s1"}},
		{ID: "l2", Start: at(2024, 6, 12, 10, 0), End: at(2024, 6, 12, 11, 0), Attendees: model.PrivateAttendee{StudentID: "s1"}},
	}}
	s, _ := newLessonService(api, at(2024, 6, 1, 8, 0))

	week, lessons, err := s.Week(context.Background(), "tok", at(2024, 6, 6, 15, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2024, 6, 3, 0, 0), api.lastFrom)
	assert.Equal(t, at(2024, 6, 10, 0, 0), api.lastTo)
	require.Len(t, lessons, 1)

	slot, ok := week.Days[0].FindSlot(10 * 60)
	require.True(t, ok)
	require.Len(t, slot.StartingHere, 1)
	assert.Equal(t, 2, calendar.Span(slot.StartingHere[0], s.Window().StepMinutes))
}

func TestMonthFetchesGrid(t *testing.T) {
	api := &stubLessonAPI{}
	s, _ := newLessonService(api, at(2024, 6, 12, 8, 0))

	month, err := s.Month(context.Background(), "tok", at(2024, 6, 12, 0, 0))
	require.NoError(t, err)
	assert.Len(t, month.Cells, calendar.MonthGridDays)
	assert.Equal(t, at(2024, 5, 27, 0, 0), api.lastFrom)
	assert.Equal(t, at(2024, 7, 8, 0, 0), api.lastTo)
}

func TestFindLesson(t *testing.T) {
	api := &stubLessonAPI{lessons: []model.Lesson{
		{ID: "l1", Start: at(2024, 6, 3, 10, 0), End: at(2024, 6, 3, 11, 0)},
	}}
	s, _ := newLessonService(api, at(2024, 6, 1, 8, 0))

	lesson, err := s.Find(context.Background(), "tok", "l1", at(2024, 6, 3, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "l1", lesson.ID)

	_, err = s.Find(context.Background(), "tok", "missing", at(2024, 6, 3, 0, 0))
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestStats(t *testing.T) {
	s, _ := newLessonService(&stubLessonAPI{}, at(2024, 6, 3, 9, 0))
	lessons := []model.Lesson{
		{ID: "past", Start: at(2024, 6, 2, 10, 0), End: at(2024, 6, 2, 11, 0), Status: model.LessonStatusCompleted},
		{ID: "soon", Start: at(2024, 6, 3, 10, 0), End: at(2024, 6, 3, 11, 0)},
		{ID: "overlap", Start: at(2024, 6, 3, 10, 30), End: at(2024, 6, 3, 11, 30)},
		{ID: "later", Start: at(2024, 6, 5, 10, 0), End: at(2024, 6, 5, 11, 0)},
	}

	stats := s.Stats(lessons)
	assert.Equal(t, LessonStats{Total: 4, Next24h: 2, Completed: 1, Conflicts: 1}, stats)
}
