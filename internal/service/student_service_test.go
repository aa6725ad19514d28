package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

func TestStudentListSortedAndGet(t *testing.T) {
	api := &stubStudentAPI{students: []model.Student{
		{ID: "s2", Name: "lucia"},
		{ID: "s1", Name: "Bruno"},
		{ID: "s3", Name: "Ana"},
	}}
	s := NewStudentService(api, nil, zap.NewNop())

	students, err := s.List(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Ana", students[0].Name)
	assert.Equal(t, "lucia", students[2].Name)

	st, err := s.Get(context.Background(), "tok", "s1")
	require.NoError(t, err)
	assert.Equal(t, "Bruno", st.Name)

	_, err = s.Get(context.Background(), "tok", "missing")
	assert.ErrorIs(t, err, ErrStudentNotFound)

	names, err := s.Names(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "lucia", names["s2"])
}

func TestStudentCreateValidation(t *testing.T) {
	api := &stubStudentAPI{}
	s := NewStudentService(api, nil, zap.NewNop())

	id, err := s.Create(context.Background(), "tok", model.StudentInput{Name: "  Lucía  ", Email: " LUCIA@Mail.com "})
	require.NoError(t, err)
	assert.Equal(t, "new", id)
	assert.Equal(t, "Lucía", api.students[0].Name)
	assert.Equal(t, "lucia@mail.com", api.students[0].Email)

	_, err = s.Create(context.Background(), "tok", model.StudentInput{Name: "L"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = s.Create(context.Background(), "tok", model.StudentInput{Name: "Lucas", Email: "nope"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestStudentRename(t *testing.T) {
	api := &stubStudentAPI{students: []model.Student{{ID: "s1", Name: "Ana"}}}
	s := NewStudentService(api, nil, zap.NewNop())

	require.NoError(t, s.Rename(context.Background(), "tok", "s1", " Ana Paula "))
	assert.Equal(t, "Ana Paula", api.students[0].Name)
	assert.Error(t, s.Rename(context.Background(), "tok", "s1", ""))
}
