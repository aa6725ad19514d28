package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/export"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

// StatementFormat формат выгрузки выписки
type StatementFormat string

const (
	StatementPDF StatementFormat = "pdf"
	StatementCSV StatementFormat = "csv"
)

// StatementFile готовый файл выписки
type StatementFile struct {
	Name string
	Data []byte
}

type StatementService struct {
	lessons  *LessonService
	students *StudentService
	payments *PaymentService
	pdf      *export.PDFExporter
	csv      *export.CSVExporter
	logger   *zap.Logger
}

func NewStatementService(lessons *LessonService, students *StudentService, payments *PaymentService, logger *zap.Logger) *StatementService {
	return &StatementService{
		lessons:  lessons,
		students: students,
		payments: payments,
		pdf:      export.NewPDFExporter(),
		csv:      export.NewCSVExporter(),
		logger:   logger,
	}
}

// Build собирает выписку ученика за последние days дней
func (s *StatementService) Build(ctx context.Context, session *model.CoachSession, studentID string, days int) (*export.Statement, error) {
	student, err := s.students.Get(ctx, session.Token, studentID)
	if err != nil {
		return nil, err
	}

	now := s.lessons.Now()
	to := calendar.AddDays(calendar.StartOfDay(now), 1)
	from := calendar.AddDays(to, -days)

	lessons, err := s.lessons.List(ctx, session.Token, from, to)
	if err != nil {
		return nil, err
	}
	own := make([]model.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if l.HasStudent(studentID) {
			own = append(own, l)
		}
	}

	payments, err := s.payments.List(ctx, session.Token, studentID)
	if err != nil {
		return nil, err
	}
	inPeriod := make([]model.Payment, 0, len(payments))
	for _, p := range payments {
		if !p.Date.Before(from) && p.Date.Before(to) {
			inPeriod = append(inPeriod, p)
		}
	}

	return &export.Statement{
		CoachName:   session.CoachName,
		Student:     *student,
		From:        from,
		To:          calendar.AddDays(to, -1),
		Lessons:     own,
		Payments:    inPeriod,
		GeneratedAt: now,
	}, nil
}

// Render формирует файл выписки в нужном формате
func (s *StatementService) Render(ctx context.Context, session *model.CoachSession, studentID string, days int, format StatementFormat) (*StatementFile, error) {
	st, err := s.Build(ctx, session, studentID, days)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case StatementCSV:
		data, err = s.csv.Render(*st)
	default:
		format = StatementPDF
		data, err = s.pdf.Render(*st)
	}
	if err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}

	s.logger.Info("Statement rendered",
		zap.String("student_id", studentID),
		zap.String("format", string(format)),
		zap.Int("lessons", len(st.Lessons)),
		zap.Int("bytes", len(data)))

	name := fmt.Sprintf("statement_%s_%s.%s", st.Student.Name, st.GeneratedAt.Format("2006-01-02"), format)
	return &StatementFile{Name: name, Data: data}, nil
}

// DefaultStatementDays период выписки по умолчанию
const DefaultStatementDays = 30
