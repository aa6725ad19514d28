package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

func testDraft() model.LessonDraft {
	return model.LessonDraft{
		Start:     at(2024, 6, 3, 10, 0),
		End:       at(2024, 6, 3, 11, 0),
		Attendees: model.PrivateAttendee{StudentID: "s1"},
		Location:  "Club",
		Court:     "2",
		Notes:     "backhand",
		Price:     15000,
		Currency:  "ARS",
	}
}

func TestExpandRecurrence(t *testing.T) {
	draft := testDraft()

	copies, err := ExpandRecurrence(draft, 3)
	require.NoError(t, err)
	require.Len(t, copies, 3)

	for i, c := range copies {
		weeks := i + 1
		assert.Equal(t, AddDays(draft.Start, 7*weeks), c.Start)
		assert.Equal(t, AddDays(draft.End, 7*weeks), c.End)
		assert.Equal(t, 10, c.Start.Hour())
		assert.Equal(t, 0, c.Start.Minute())
		assert.Equal(t, draft.Start.Weekday(), c.Start.Weekday())
		assert.Equal(t, draft.Attendees, c.Attendees)
		assert.Equal(t, draft.Location, c.Location)
		assert.Equal(t, draft.Court, c.Court)
		assert.Equal(t, draft.Notes, c.Notes)
		assert.Equal(t, draft.Price, c.Price)
		assert.Equal(t, draft.Currency, c.Currency)
	}

	assert.Equal(t, at(2024, 6, 24, 10, 0), copies[2].Start)

	// Исходный черновик не меняется
	assert.Equal(t, testDraft(), draft)
}

func TestExpandRecurrenceZero(t *testing.T) {
	copies, err := ExpandRecurrence(testDraft(), 0)
	require.NoError(t, err)
	assert.Empty(t, copies)
}

func TestExpandRecurrenceOutOfRange(t *testing.T) {
	for _, weeks := range []int{-1, 5, 52} {
		_, err := ExpandRecurrence(testDraft(), weeks)
		assert.ErrorIs(t, err, ErrInvalidRepeatWeeks)
	}
}

func TestExpandRecurrenceGroup(t *testing.T) {
	draft := testDraft()
	draft.Attendees = model.GroupAttendees{Participants: []model.Participant{
		{StudentID: "s1", Price: 8000},
		{StudentID: "s2", Price: 9000},
	}}

	copies, err := ExpandRecurrence(draft, 4)
	require.NoError(t, err)
	require.Len(t, copies, 4)
	assert.Equal(t, model.LessonTypeGroup, copies[3].Attendees.Type())
	assert.Equal(t, []string{"s1", "s2"}, copies[3].Attendees.StudentIDs())
}

func TestExpandRecurrenceGroupCopiesAreIndependent(t *testing.T) {
	draft := testDraft()
	draft.Attendees = model.GroupAttendees{Participants: []model.Participant{
		{StudentID: "s1", Price: 8000},
		{StudentID: "s2", Price: 9000},
	}}

	copies, err := ExpandRecurrence(draft, 2)
	require.NoError(t, err)
	require.Len(t, copies, 2)

	first := copies[0].Attendees.(model.GroupAttendees)
	first.Participants[0].Price = 1
	first.Participants[1].StudentID = "changed"

	original := draft.Attendees.(model.GroupAttendees)
	assert.Equal(t, 8000.0, original.Participants[0].Price)
	assert.Equal(t, "s2", original.Participants[1].StudentID)

	second := copies[1].Attendees.(model.GroupAttendees)
	assert.Equal(t, 8000.0, second.Participants[0].Price)
	assert.Equal(t, []string{"s1", "s2"}, second.StudentIDs())
}

func TestExpandRecurrenceWithoutAttendees(t *testing.T) {
	draft := testDraft()
	draft.Attendees = nil

	copies, err := ExpandRecurrence(draft, 1)
	require.NoError(t, err)
	assert.Nil(t, copies[0].Attendees)
}
