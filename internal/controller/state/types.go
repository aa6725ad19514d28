package state

import (
	"time"

	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/Freeeeeet/coach_bot/internal/service"
)

// UserState представляет текущий шаг диалога пользователя
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Вход и регистрация
	StateLoginEmail       UserState = "login_email"
	StateLoginPassword    UserState = "login_password"
	StateRegisterEmail    UserState = "register_email"
	StateRegisterName     UserState = "register_name"
	StateRegisterPhone    UserState = "register_phone"
	StateRegisterPassword UserState = "register_password"

	// Ученики
	StateStudentName   UserState = "student_name"
	StateStudentPhone  UserState = "student_phone"
	StateStudentEmail  UserState = "student_email"
	StateStudentRename UserState = "student_rename"

	// Создание занятия
	StateLessonStart UserState = "lesson_start"
	StateLessonForm  UserState = "lesson_form"
	// занятие отправлено в API, повторное подтверждение игнорируется
	StateLessonSaving UserState = "lesson_saving"
	StateLessonPrice UserState = "lesson_price"

	// Редактирование занятия
	StateLessonReschedule UserState = "lesson_reschedule"
	StateLessonNotes      UserState = "lesson_notes"

	// Платёж
	StatePaymentForm   UserState = "payment_form"
	StatePaymentAmount UserState = "payment_amount"

	// Профиль
	StateProfileName UserState = "profile_name"
)

// IsSecret сообщает, что на этом шаге пользователь вводит пароль
func (s UserState) IsSecret() bool {
	return s == StateLoginPassword || s == StateRegisterPassword
}

// AuthForm данные входа или регистрации. Пароль вводится последним шагом и не сохраняется.
type AuthForm struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// LessonForm черновик занятия, который собирается кнопками
type LessonForm struct {
	Start       time.Time `json:"start"`
	Duration    int       `json:"duration"`
	StudentIDs  []string  `json:"student_ids"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	RepeatWeeks int       `json:"repeat_weeks"`
}

// DefaultLessonDuration длительность нового занятия в минутах
const DefaultLessonDuration = 60

// NewLessonForm черновик с началом start и значениями по умолчанию
func NewLessonForm(start time.Time) *LessonForm {
	return &LessonForm{
		Start:    start,
		Duration: DefaultLessonDuration,
		Currency: service.DefaultCurrency,
	}
}

// HasStudent проверяет, выбран ли ученик
func (f *LessonForm) HasStudent(id string) bool {
	for _, s := range f.StudentIDs {
		if s == id {
			return true
		}
	}
	return false
}

// ToggleStudent добавляет ученика или убирает его из выбранных
func (f *LessonForm) ToggleStudent(id string) {
	for i, s := range f.StudentIDs {
		if s == id {
			f.StudentIDs = append(f.StudentIDs[:i], f.StudentIDs[i+1:]...)
			return
		}
	}
	f.StudentIDs = append(f.StudentIDs, id)
}

// Attendees один ученик даёт индивидуальное занятие, несколько - групповое по одной цене
func (f *LessonForm) Attendees() model.Attendees {
	switch len(f.StudentIDs) {
	case 0:
		return model.PrivateAttendee{}
	case 1:
		return model.PrivateAttendee{StudentID: f.StudentIDs[0]}
	}

	participants := make([]model.Participant, 0, len(f.StudentIDs))
	for _, id := range f.StudentIDs {
		participants = append(participants, model.Participant{StudentID: id, Price: f.Price})
	}
	return model.GroupAttendees{Participants: participants}
}

// ServiceForm переводит черновик в форму сервиса занятий
func (f *LessonForm) ServiceForm() service.LessonForm {
	return service.LessonForm{
		Start:           f.Start,
		DurationMinutes: f.Duration,
		Attendees:       f.Attendees(),
		Price:           f.Price,
		Currency:        f.Currency,
		RepeatWeeks:     f.RepeatWeeks,
	}
}

// Target занятие или ученик, с которым сейчас работает диалог
type Target struct {
	LessonID  string    `json:"lesson_id,omitempty"`
	Day       time.Time `json:"day,omitempty"`
	StudentID string    `json:"student_id,omitempty"`
}

// Session хранит шаг диалога и собранные данные пользователя
type Session struct {
	State     UserState           `json:"state"`
	Auth      AuthForm            `json:"auth"`
	Student   model.StudentInput  `json:"student"`
	Lesson    *LessonForm         `json:"lesson,omitempty"`
	Payment   *model.PaymentInput `json:"payment,omitempty"`
	Target    Target              `json:"target"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Clone возвращает независимую копию сессии
func (s *Session) Clone() *Session {
	c := *s
	if s.Lesson != nil {
		lesson := *s.Lesson
		lesson.StudentIDs = append([]string(nil), s.Lesson.StudentIDs...)
		c.Lesson = &lesson
	}
	if s.Payment != nil {
		payment := *s.Payment
		c.Payment = &payment
	}
	return &c
}

// Reset сбрасывает шаг и все данные диалога
func (s *Session) Reset() {
	*s = Session{}
}
