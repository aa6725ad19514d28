package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/apiclient"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

var testLoc = time.FixedZone("ART", -3*60*60)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, testLoc)
}

type stubLessonAPI struct {
	mu       sync.Mutex
	lessons  []model.Lesson
	created  []model.LessonDraft
	updates  map[string]model.LessonUpdate
	deleted  []string
	failAt   map[time.Time]error // ошибка создания по времени начала
	listErr  error
	lastFrom time.Time
	lastTo   time.Time
}

func (s *stubLessonAPI) ListLessons(_ context.Context, _ string, from, to time.Time) ([]model.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFrom, s.lastTo = from, to
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Lesson
	for _, l := range s.lessons {
		if !l.Start.Before(from) && l.Start.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubLessonAPI) CreateLesson(_ context.Context, _ string, draft model.LessonDraft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for start, err := range s.failAt {
		if start.Equal(draft.Start) {
			return "", err
		}
	}
	s.created = append(s.created, draft)
	return draft.Start.Format("0102-1504"), nil
}

func (s *stubLessonAPI) UpdateLesson(_ context.Context, _ string, id string, update model.LessonUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updates == nil {
		s.updates = make(map[string]model.LessonUpdate)
	}
	s.updates[id] = update
	return nil
}

func (s *stubLessonAPI) DeleteLesson(_ context.Context, _ string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubLessonAPI) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type stubSessions struct {
	sessions  map[int64]*model.CoachSession
	delivered map[int64]int
	upserts   int
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: make(map[int64]*model.CoachSession), delivered: make(map[int64]int)}
}

func (s *stubSessions) Upsert(_ context.Context, session *model.CoachSession) error {
	s.upserts++
	copied := *session
	s.sessions[session.TelegramID] = &copied
	return nil
}

func (s *stubSessions) GetByTelegramID(_ context.Context, telegramID int64) (*model.CoachSession, error) {
	session, ok := s.sessions[telegramID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (s *stubSessions) Delete(_ context.Context, telegramID int64) (bool, error) {
	_, ok := s.sessions[telegramID]
	delete(s.sessions, telegramID)
	return ok, nil
}

func (s *stubSessions) SetDigest(_ context.Context, telegramID int64, enabled bool) error {
	session, ok := s.sessions[telegramID]
	if !ok {
		return errors.New("no rows")
	}
	session.DigestEnabled = enabled
	return nil
}

func (s *stubSessions) ListDigestRecipients(_ context.Context, _ time.Time) ([]*model.CoachSession, error) {
	var out []*model.CoachSession
	for id, session := range s.sessions {
		if _, done := s.delivered[id]; session.DigestEnabled && !done {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *stubSessions) MarkDigestDelivered(_ context.Context, telegramID int64, _ time.Time, lessons int) error {
	s.delivered[telegramID] = lessons
	return nil
}

type stubCoachAPI struct {
	token    string
	coach    model.Coach
	err      error
	updated  *model.Coach
	loggedIn string
}

func (s *stubCoachAPI) Login(_ context.Context, email, _ string) (*apiclient.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.loggedIn = email
	return &apiclient.AuthResult{Token: s.token, Coach: s.coach}, nil
}

func (s *stubCoachAPI) Register(_ context.Context, email, _, name, _ string) (*apiclient.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	coach := s.coach
	coach.Email, coach.Name = email, name
	return &apiclient.AuthResult{Token: s.token, Coach: coach}, nil
}

func (s *stubCoachAPI) GetProfile(context.Context, string) (*model.Coach, error) {
	coach := s.coach
	return &coach, s.err
}

func (s *stubCoachAPI) UpdateProfile(_ context.Context, _ string, coach model.Coach) error {
	s.updated = &coach
	return s.err
}

type stubStudentAPI struct {
	students []model.Student
	payments []model.Payment
	recorded []model.PaymentInput
}

func (s *stubStudentAPI) ListStudents(context.Context, string) ([]model.Student, error) {
	return append([]model.Student(nil), s.students...), nil
}

func (s *stubStudentAPI) CreateStudent(_ context.Context, _ string, in model.StudentInput) (string, error) {
	s.students = append(s.students, model.Student{ID: "new", Name: in.Name, Phone: in.Phone, Email: in.Email})
	return "new", nil
}

func (s *stubStudentAPI) UpdateStudent(_ context.Context, _ string, id string, in model.StudentInput) error {
	for i := range s.students {
		if s.students[i].ID == id {
			s.students[i].Name = in.Name
		}
	}
	return nil
}

func (s *stubStudentAPI) DeleteStudent(context.Context, string, string) error { return nil }

func (s *stubStudentAPI) ListPayments(_ context.Context, _ string, studentID string) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range s.payments {
		if studentID == "" || p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubStudentAPI) CreatePayment(_ context.Context, _ string, in model.PaymentInput) (string, error) {
	s.recorded = append(s.recorded, in)
	return "pay-1", nil
}

type recordingMetrics struct {
	mu      sync.Mutex
	created map[string]int
	failed  map[string]int
	digests int
}

func (m *recordingMetrics) ObserveLessonCreated(kind string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.created == nil {
		m.created = map[string]int{}
		m.failed = map[string]int{}
	}
	if err != nil {
		m.failed[kind]++
		return
	}
	m.created[kind]++
}

func (m *recordingMetrics) ObserveDigestSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.digests++
}
