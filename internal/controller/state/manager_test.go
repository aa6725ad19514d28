package state

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

func TestManager_GetUnknownUserReturnsEmptySession(t *testing.T) {
	m := NewManager()

	s, err := m.Get(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, StateNone, s.State)
}

func TestManager_SaveStoresCopy(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	s := &Session{State: StateLessonForm, Lesson: &LessonForm{Duration: 60, StudentIDs: []string{"a"}}}
	require.NoError(t, m.Save(ctx, 1, s))

	s.Lesson.StudentIDs[0] = "changed"
	s.Lesson.Duration = 30

	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateLessonForm, got.State)
	assert.Equal(t, 60, got.Lesson.Duration)
	assert.Equal(t, []string{"a"}, got.Lesson.StudentIDs)
	assert.False(t, got.UpdatedAt.IsZero())

	got.Lesson.Duration = 120
	again, _ := m.Get(ctx, 1)
	assert.Equal(t, 60, again.Lesson.Duration)
}

func TestManager_SaveWithoutStateDeletes(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	require.NoError(t, m.Save(ctx, 1, &Session{State: StateLoginEmail}))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Save(ctx, 1, &Session{}))
	assert.Equal(t, 0, m.Len())
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	require.NoError(t, m.Save(ctx, 7, &Session{State: StateStudentName}))
	require.NoError(t, m.Clear(ctx, 7))

	s, err := m.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateNone, s.State)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := int64(i % 5)
			s, _ := m.Get(ctx, id)
			s.State = StateLessonForm
			_ = m.Save(ctx, id, s)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, m.Len())
}

func TestLessonForm_ToggleStudent(t *testing.T) {
	f := &LessonForm{}

	f.ToggleStudent("a")
	f.ToggleStudent("b")
	assert.True(t, f.HasStudent("a"))
	assert.Equal(t, []string{"a", "b"}, f.StudentIDs)

	f.ToggleStudent("a")
	assert.False(t, f.HasStudent("a"))
	assert.Equal(t, []string{"b"}, f.StudentIDs)
}

func TestLessonForm_Attendees(t *testing.T) {
	single := &LessonForm{StudentIDs: []string{"s1"}, Price: 5000}
	assert.Equal(t, model.PrivateAttendee{StudentID: "s1"}, single.Attendees())

	group := &LessonForm{StudentIDs: []string{"s1", "s2"}, Price: 3000}
	g, ok := group.Attendees().(model.GroupAttendees)
	require.True(t, ok)
	require.Len(t, g.Participants, 2)
	assert.Equal(t, model.Participant{StudentID: "s2", Price: 3000}, g.Participants[1])

	empty := &LessonForm{}
	assert.Empty(t, empty.Attendees().StudentIDs())
}

func TestLessonForm_ServiceForm(t *testing.T) {
	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	f := &LessonForm{Start: start, Duration: 90, StudentIDs: []string{"s1"}, Price: 1, Currency: "ARS", RepeatWeeks: 2}

	sf := f.ServiceForm()
	assert.Equal(t, start, sf.Start)
	assert.Equal(t, 90, sf.DurationMinutes)
	assert.Equal(t, 2, sf.RepeatWeeks)
	assert.Equal(t, "ARS", sf.Currency)
	assert.Equal(t, []string{"s1"}, sf.Attendees.StudentIDs())
}

func TestSession_JSONRoundTripKeepsForms(t *testing.T) {
	s := &Session{
		State:   StatePaymentAmount,
		Auth:    AuthForm{Email: "coach@example.com"},
		Payment: &model.PaymentInput{StudentID: "s1", Amount: 100, Method: model.PaymentMethodCash},
		Target:  Target{LessonID: "l1"},
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")

	var back Session
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, StatePaymentAmount, back.State)
	assert.Equal(t, "s1", back.Payment.StudentID)
	assert.Equal(t, "l1", back.Target.LessonID)
	assert.Nil(t, back.Lesson)
}

func TestUserState_IsSecret(t *testing.T) {
	assert.True(t, StateLoginPassword.IsSecret())
	assert.True(t, StateRegisterPassword.IsSecret())
	assert.False(t, StateLoginEmail.IsSecret())
}

func TestManager_ExpiredSessionIsDropped(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	m := NewManagerWithTTL(time.Hour)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, 1, &Session{State: StateLessonForm, Lesson: &LessonForm{Duration: 60}}))

	now = now.Add(59 * time.Minute)
	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateLessonForm, got.State)

	now = now.Add(2 * time.Minute)
	got, err = m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateNone, got.State)
	assert.Nil(t, got.Lesson)
	assert.Equal(t, 0, m.Len())
}

func TestManager_SavePrunesAbandonedDialogs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	m := NewManagerWithTTL(time.Hour)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, 1, &Session{State: StateStudentName}))
	now = now.Add(2 * time.Hour)
	require.NoError(t, m.Save(ctx, 2, &Session{State: StateStudentName}))

	assert.Equal(t, 1, m.Len())
}

func TestManager_TransitionOnlyOnce(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	require.NoError(t, m.Save(ctx, 1, &Session{State: StateLessonForm, Lesson: &LessonForm{Duration: 90}}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, ok, err := m.Transition(ctx, 1, StateLessonForm, StateLessonSaving)
			assert.NoError(t, err)
			if ok {
				assert.Equal(t, 90, s.Lesson.Duration)
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, claimed)
	got, _ := m.Get(ctx, 1)
	assert.Equal(t, StateLessonSaving, got.State)

	_, ok, err := m.Transition(ctx, 2, StateLessonForm, StateLessonSaving)
	require.NoError(t, err)
	assert.False(t, ok)
}
