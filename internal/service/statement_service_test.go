package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

func TestStatementBuild(t *testing.T) {
	lessonAPI := &stubLessonAPI{lessons: []model.Lesson{
		{ID: "own", Start: at(2024, 6, 1, 10, 0), End: at(2024, 6, 1, 11, 0), Attendees: model.PrivateAttendee{StudentID: "s1"}},
		{ID: "group", Start: at(2024, 6, 2, 10, 0), End: at(2024, 6, 2, 11, 0), Attendees: model.GroupAttendees{Participants: []model.Participant{{StudentID: "s1"}, {StudentID: "s2"}}}},
		{ID: "other", Start: at(2024, 6, 2, 12, 0), End: at(2024, 6, 2, 13, 0), Attendees: model.PrivateAttendee{StudentID: "s2"}},
		{ID: "old", Start: at(2024, 4, 1, 10, 0), End: at(2024, 4, 1, 11, 0), Attendees: model.PrivateAttendee{StudentID: "s1"}},
	}}
	studentAPI := &stubStudentAPI{
		students: []model.Student{{ID: "s1", Name: "Lucia"}, {ID: "s2", Name: "Bruno"}},
		payments: []model.Payment{
			{ID: "p1", StudentID: "s1", Amount: 10, Date: at(2024, 6, 1, 12, 0)},
			{ID: "p-old", StudentID: "s1", Amount: 10, Date: at(2024, 3, 1, 12, 0)},
		},
	}

	lessons, _ := newLessonService(lessonAPI, at(2024, 6, 3, 9, 0))
	students := NewStudentService(studentAPI, nil, zap.NewNop())
	payments := newPaymentService(studentAPI)
	s := NewStatementService(lessons, students, payments, zap.NewNop())

	session := &model.CoachSession{Token: "tok", CoachName: "Ana"}
	st, err := s.Build(context.Background(), session, "s1", DefaultStatementDays)
	require.NoError(t, err)

	assert.Equal(t, "Lucia", st.Student.Name)
	assert.Equal(t, "Ana", st.CoachName)
	require.Len(t, st.Lessons, 2)
	assert.Equal(t, "own", st.Lessons[0].ID)
	assert.Equal(t, "group", st.Lessons[1].ID)
	require.Len(t, st.Payments, 1)
	assert.Equal(t, at(2024, 6, 3, 0, 0), st.To)

	file, err := s.Render(context.Background(), session, "s1", DefaultStatementDays, StatementPDF)
	require.NoError(t, err)
	assert.Equal(t, "statement_Lucia_2024-06-03.pdf", file.Name)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))

	file, err = s.Render(context.Background(), session, "s1", DefaultStatementDays, StatementCSV)
	require.NoError(t, err)
	assert.Contains(t, string(file.Data), "Занятия")

	_, err = s.Build(context.Background(), session, "missing", DefaultStatementDays)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
