package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/apiclient"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

// SessionStore хранилище сессий тренеров
type SessionStore interface {
	Upsert(ctx context.Context, s *model.CoachSession) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.CoachSession, error)
	Delete(ctx context.Context, telegramID int64) (bool, error)
	SetDigest(ctx context.Context, telegramID int64, enabled bool) error
}

// DigestStore учёт отправленных сводок
type DigestStore interface {
	ListDigestRecipients(ctx context.Context, day time.Time) ([]*model.CoachSession, error)
	MarkDigestDelivered(ctx context.Context, telegramID int64, day time.Time, lessons int) error
}

// CoachAPI вход, регистрация и профиль
type CoachAPI interface {
	Login(ctx context.Context, email, password string) (*apiclient.AuthResult, error)
	Register(ctx context.Context, email, password, name, phone string) (*apiclient.AuthResult, error)
	GetProfile(ctx context.Context, token string) (*model.Coach, error)
	UpdateProfile(ctx context.Context, token string, coach model.Coach) error
}

// LessonAPI операции с занятиями
type LessonAPI interface {
	ListLessons(ctx context.Context, token string, from, to time.Time) ([]model.Lesson, error)
	CreateLesson(ctx context.Context, token string, draft model.LessonDraft) (string, error)
	UpdateLesson(ctx context.Context, token, id string, update model.LessonUpdate) error
	DeleteLesson(ctx context.Context, token, id string) error
}

// StudentAPI операции с учениками
type StudentAPI interface {
	ListStudents(ctx context.Context, token string) ([]model.Student, error)
	CreateStudent(ctx context.Context, token string, in model.StudentInput) (string, error)
	UpdateStudent(ctx context.Context, token, id string, in model.StudentInput) error
	DeleteStudent(ctx context.Context, token, id string) error
}

// StudentFinder ищет ученика по имени, когда API вернул занятие без studentId
type StudentFinder interface {
	FindByName(ctx context.Context, token, name string) (*model.Student, error)
}

// PaymentAPI операции с платежами
type PaymentAPI interface {
	ListPayments(ctx context.Context, token, studentID string) ([]model.Payment, error)
	CreatePayment(ctx context.Context, token string, in model.PaymentInput) (string, error)
}

// LessonMetrics счётчик созданных занятий
type LessonMetrics interface {
	ObserveLessonCreated(kind string, err error)
}

// Clock источник текущего времени
type Clock func() time.Time
