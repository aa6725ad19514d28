package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

// DefaultCurrency валюта платежа по умолчанию
const DefaultCurrency = "ARS"

type PaymentService struct {
	api      PaymentAPI
	validate *validator.Validate
	now      Clock
	logger   *zap.Logger
}

func NewPaymentService(api PaymentAPI, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		api:      api,
		validate: newValidator(validate),
		now:      time.Now,
		logger:   logger,
	}
}

// DefaultsForLesson заполняет платёж по занятию: индивидуальное: ученик и цена занятия;
// групповое: первый участник и его цена
func (s *PaymentService) DefaultsForLesson(lesson model.Lesson, students []model.Student) model.PaymentInput {
	in := model.PaymentInput{
		LessonID: lesson.ID,
		Currency: lesson.Currency,
		Method:   model.PaymentMethodCash,
		Status:   model.PaymentRecordCompleted,
		Date:     s.now(),
	}
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}

	switch a := lesson.Attendees.(type) {
	case model.PrivateAttendee:
		in.StudentID = a.StudentID
		in.Amount = lesson.Price
	case model.GroupAttendees:
		if len(a.Participants) > 0 {
			in.StudentID = a.Participants[0].StudentID
			in.Amount = a.Participants[0].Price
		}
	}

	return s.SelectStudent(in, lesson, in.StudentID, students)
}

// SelectStudent меняет плательщика: способ оплаты становится "balance" при предоплате,
// для группового занятия подставляется цена участника
func (s *PaymentService) SelectStudent(in model.PaymentInput, lesson model.Lesson, studentID string, students []model.Student) model.PaymentInput {
	in.StudentID = studentID
	in.Method = model.PaymentMethodCash

	for _, st := range students {
		if st.ID == studentID && st.HasCredit() {
			in.Method = model.PaymentMethodBalance
		}
	}

	if g, ok := lesson.Attendees.(model.GroupAttendees); ok {
		for _, p := range g.Participants {
			if p.StudentID == studentID {
				in.Amount = p.Price
			}
		}
	}

	return in
}

// Record регистрирует платёж
func (s *PaymentService) Record(ctx context.Context, token string, in model.PaymentInput, student *model.Student) (string, error) {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	if err := s.validate.Struct(in); err != nil {
		return "", fromValidator(err)
	}
	if in.Method == model.PaymentMethodBalance && student != nil && !student.HasCredit() {
		return "", invalid("method", "у ученика нет предоплаты")
	}

	id, err := s.api.CreatePayment(ctx, token, in)
	if err != nil {
		return "", fmt.Errorf("record payment: %w", err)
	}

	s.logger.Info("Payment recorded",
		zap.String("payment_id", id),
		zap.String("student_id", in.StudentID),
		zap.String("lesson_id", in.LessonID),
		zap.Float64("amount", in.Amount),
		zap.String("method", string(in.Method)))

	return id, nil
}

// List возвращает платежи ученика, новые сверху
func (s *PaymentService) List(ctx context.Context, token, studentID string) ([]model.Payment, error) {
	payments, err := s.api.ListPayments(ctx, token, studentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].Date.After(payments[j].Date)
	})
	return payments, nil
}

// Total суммирует завершённые платежи по валютам
func Total(payments []model.Payment) map[string]float64 {
	total := make(map[string]float64)
	for _, p := range payments {
		if p.Status == model.PaymentRecordCompleted {
			total[p.Currency] += p.Amount
		}
	}
	return total
}
