package model

import (
	"fmt"
	"time"
)

type LessonType string

const (
	LessonTypePrivate LessonType = "private"
	LessonTypeGroup   LessonType = "group"
)

type LessonStatus string

const (
	LessonStatusScheduled LessonStatus = "scheduled" // Запланировано
	LessonStatusCompleted LessonStatus = "completed" // Проведено
	LessonStatusCancelled LessonStatus = "cancelled" // Отменено
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Attendees описывает, кто посещает занятие: либо один ученик, либо группа.
// Реализации: PrivateAttendee и GroupAttendees.
type Attendees interface {
	Type() LessonType
	StudentIDs() []string
	// Clone возвращает независимую копию без общих срезов
	Clone() Attendees
}

// PrivateAttendee индивидуальное занятие
type PrivateAttendee struct {
	StudentID string `json:"studentId"`
}

func (PrivateAttendee) Type() LessonType { return LessonTypePrivate }

func (p PrivateAttendee) Clone() Attendees { return p }

func (p PrivateAttendee) StudentIDs() []string {
	if p.StudentID == "" {
		return nil
	}
	return []string{p.StudentID}
}

// Participant участник группового занятия со своей ценой
type Participant struct {
	StudentID string  `json:"studentId"`
	Price     float64 `json:"price"`
}

// GroupAttendees групповое занятие
type GroupAttendees struct {
	Participants []Participant `json:"participants"`
}

func (GroupAttendees) Type() LessonType { return LessonTypeGroup }

func (g GroupAttendees) Clone() Attendees {
	participants := make([]Participant, len(g.Participants))
	copy(participants, g.Participants)
	return GroupAttendees{Participants: participants}
}

func (g GroupAttendees) StudentIDs() []string {
	ids := make([]string, 0, len(g.Participants))
	for _, p := range g.Participants {
		ids = append(ids, p.StudentID)
	}
	return ids
}

// Lesson занятие, полученное из API
type Lesson struct {
	ID            string
	Start         time.Time
	End           time.Time
	Attendees     Attendees
	Status        LessonStatus
	PaymentStatus PaymentStatus

	// Дополнительные поля (не используются в логике слотов)
	StudentName string
	Location    string
	Court       string
	Capacity    int
	Notes       string
	Price       float64
	Currency    string
}

// Type возвращает тип занятия по его участникам
func (l *Lesson) Type() LessonType {
	if l.Attendees == nil {
		return LessonTypePrivate
	}
	return l.Attendees.Type()
}

// Title возвращает короткую подпись занятия для календаря
func (l *Lesson) Title() string {
	if l.Type() == LessonTypeGroup {
		if g, ok := l.Attendees.(GroupAttendees); ok {
			return fmt.Sprintf("Группа (%d)", len(g.Participants))
		}
		return "Группа"
	}
	if l.StudentName != "" {
		return l.StudentName
	}
	return "Занятие"
}

// Duration возвращает длительность занятия
func (l *Lesson) Duration() time.Duration {
	return l.End.Sub(l.Start)
}

// DurationMinutes возвращает длительность в минутах
func (l *Lesson) DurationMinutes() int {
	return int(l.Duration() / time.Minute)
}

// HasStudent проверяет, участвует ли ученик в занятии
func (l *Lesson) HasStudent(studentID string) bool {
	if l.Attendees == nil {
		return false
	}
	for _, id := range l.Attendees.StudentIDs() {
		if id == studentID {
			return true
		}
	}
	return false
}

// Draft возвращает черновик для создания копии занятия
func (l *Lesson) Draft() LessonDraft {
	var attendees Attendees
	if l.Attendees != nil {
		attendees = l.Attendees.Clone()
	}
	return LessonDraft{
		Start:     l.Start,
		End:       l.End,
		Attendees: attendees,
		Location:  l.Location,
		Court:     l.Court,
		Capacity:  l.Capacity,
		Notes:     l.Notes,
		Price:     l.Price,
		Currency:  l.Currency,
	}
}

// LessonDraft данные для создания занятия
type LessonDraft struct {
	Start     time.Time `validate:"required"`
	End       time.Time `validate:"required,gtfield=Start"`
	Attendees Attendees `validate:"required"`
	Location  string    `validate:"max=120"`
	Court     string    `validate:"max=60"`
	Capacity  int       `validate:"gte=0"`
	Notes     string    `validate:"max=500"`
	Price     float64   `validate:"gte=0"`
	Currency  string    `validate:"omitempty,len=3"`
}

// LessonUpdate частичное обновление занятия; nil поля не меняются
type LessonUpdate struct {
	Start  *time.Time
	End    *time.Time
	Status *LessonStatus
	Notes  *string
}
