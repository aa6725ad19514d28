package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

func newPaymentService(api PaymentAPI) *PaymentService {
	s := NewPaymentService(api, nil, zap.NewNop())
	s.now = fixedClock(at(2024, 6, 3, 12, 0))
	return s
}

func TestDefaultsForPrivateLesson(t *testing.T) {
	s := newPaymentService(&stubStudentAPI{})
	lesson := model.Lesson{ID: "l1", Attendees: model.PrivateAttendee{StudentID: "s1"}, Price: 12000}

	in := s.DefaultsForLesson(lesson, []model.Student{{ID: "s1", Balance: 0}})
	assert.Equal(t, "s1", in.StudentID)
	assert.Equal(t, "l1", in.LessonID)
	assert.Equal(t, 12000.0, in.Amount)
	assert.Equal(t, DefaultCurrency, in.Currency)
	assert.Equal(t, model.PaymentMethodCash, in.Method)
	assert.Equal(t, model.PaymentRecordCompleted, in.Status)
}

func TestDefaultsForGroupLessonAndCredit(t *testing.T) {
	s := newPaymentService(&stubStudentAPI{})
	lesson := model.Lesson{
		ID:       "l2",
		Currency: "USD",
		Attendees: model.GroupAttendees{Participants: []model.Participant{
			{StudentID: "s1", Price: 20},
			{StudentID: "s2", Price: 25},
		}},
	}
	students := []model.Student{{ID: "s1", Balance: -100}, {ID: "s2", Balance: 40}}

	in := s.DefaultsForLesson(lesson, students)
	assert.Equal(t, "s1", in.StudentID)
	assert.Equal(t, 20.0, in.Amount)
	assert.Equal(t, "USD", in.Currency)
	assert.Equal(t, model.PaymentMethodBalance, in.Method)

	in = s.SelectStudent(in, lesson, "s2", students)
	assert.Equal(t, 25.0, in.Amount)
	assert.Equal(t, model.PaymentMethodCash, in.Method)
}

func TestRecordPayment(t *testing.T) {
	api := &stubStudentAPI{}
	s := newPaymentService(api)

	in := model.PaymentInput{StudentID: "s1", Amount: 100, Currency: "ars", Method: model.PaymentMethodCash, Status: model.PaymentRecordCompleted}
	id, err := s.Record(context.Background(), "tok", in, &model.Student{ID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "pay-1", id)
	require.Len(t, api.recorded, 1)
	assert.Equal(t, "ARS", api.recorded[0].Currency)
	assert.Equal(t, at(2024, 6, 3, 12, 0), api.recorded[0].Date)
}

func TestRecordPaymentValidation(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*model.PaymentInput)
		field string
	}{
		{"zero amount", func(in *model.PaymentInput) { in.Amount = 0 }, "amount"},
		{"unknown method", func(in *model.PaymentInput) { in.Method = "crypto" }, "method"},
		{"no student", func(in *model.PaymentInput) { in.StudentID = "" }, "studentid"},
		{"balance without credit", func(in *model.PaymentInput) { in.Method = model.PaymentMethodBalance }, "method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubStudentAPI{}
			s := newPaymentService(api)
			in := model.PaymentInput{StudentID: "s1", Amount: 100, Currency: "ARS", Method: model.PaymentMethodCash, Status: model.PaymentRecordCompleted}
			tt.mod(&in)

			_, err := s.Record(context.Background(), "tok", in, &model.Student{ID: "s1", Balance: 10})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, api.recorded)
		})
	}
}

func TestListAndTotal(t *testing.T) {
	api := &stubStudentAPI{payments: []model.Payment{
		{ID: "p1", StudentID: "s1", Amount: 10, Currency: "ARS", Status: model.PaymentRecordCompleted, Date: at(2024, 6, 1, 10, 0)},
		{ID: "p2", StudentID: "s1", Amount: 5, Currency: "ARS", Status: model.PaymentRecordFailed, Date: at(2024, 6, 2, 10, 0)},
		{ID: "p3", StudentID: "s1", Amount: 7, Currency: "USD", Status: model.PaymentRecordCompleted, Date: at(2024, 6, 3, 10, 0)},
		{ID: "p4", StudentID: "s2", Amount: 99, Currency: "ARS", Status: model.PaymentRecordCompleted, Date: at(2024, 6, 3, 10, 0)},
	}}
	s := newPaymentService(api)

	payments, err := s.List(context.Background(), "tok", "s1")
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, "p3", payments[0].ID)

	assert.Equal(t, map[string]float64{"ARS": 10, "USD": 7}, Total(payments))
}

