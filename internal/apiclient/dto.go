package apiclient

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

// coachDTO тренер в ответах /auth и /profile
type coachDTO struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Name             string         `json:"name"`
	Phone            string         `json:"phone,omitempty"`
	WorkHours        []workHoursDTO `json:"workHours,omitempty"`
	AcceptedPayments []string       `json:"acceptedPayments,omitempty"`
	Holidays         []string       `json:"holidays,omitempty"`
}

type workHoursDTO struct {
	Day   int    `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type authResponse struct {
	Token string   `json:"token"`
	Coach coachDTO `json:"coach"`
}

type idResponse struct {
	ID string `json:"id"`
}

type studentDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Email   string  `json:"email,omitempty"`
	Balance float64 `json:"balance,omitempty"`
}

type lessonStudentDTO struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type participantDTO struct {
	StudentID string  `json:"studentId"`
	Price     float64 `json:"price"`
}

// lessonDTO занятие в том виде, в котором его отдает API.
// Поле type может отсутствовать у старых записей, тогда занятие индивидуальное.
type lessonDTO struct {
	ID            string            `json:"id"`
	Type          string            `json:"type,omitempty"`
	StudentID     string            `json:"studentId,omitempty"`
	Participants  []participantDTO  `json:"participants,omitempty"`
	Student       *lessonStudentDTO `json:"student,omitempty"`
	Start         string            `json:"start"`
	End           string            `json:"end"`
	Status        string            `json:"status,omitempty"`
	PaymentStatus string            `json:"paymentStatus,omitempty"`
	Location      string            `json:"location,omitempty"`
	Court         string            `json:"court,omitempty"`
	Capacity      int               `json:"capacity,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Price         float64           `json:"price,omitempty"`
	Currency      string            `json:"currency,omitempty"`
}

type lessonUpdateDTO struct {
	Start  string  `json:"start,omitempty"`
	End    string  `json:"end,omitempty"`
	Status string  `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type paymentDTO struct {
	ID        string  `json:"id,omitempty"`
	StudentID string  `json:"studentId"`
	LessonID  string  `json:"lessonId,omitempty"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	Reference string  `json:"reference,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	Date      string  `json:"date,omitempty"`
}

// formatTime форматирует момент для API (ISO-8601 в UTC)
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime разбирает дату из API и переводит её в зону тренера
func parseTime(value string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

func (d coachDTO) toModel() model.Coach {
	coach := model.Coach{
		ID:    d.ID,
		Email: d.Email,
		Name:  d.Name,
		Phone: d.Phone,
	}
	for _, wh := range d.WorkHours {
		coach.WorkHours = append(coach.WorkHours, model.WorkHours{Day: wh.Day, Start: wh.Start, End: wh.End})
	}
	for _, m := range d.AcceptedPayments {
		coach.AcceptedPayments = append(coach.AcceptedPayments, model.PaymentMethod(m))
	}
	coach.Holidays = append(coach.Holidays, d.Holidays...)
	return coach
}

func coachToDTO(c model.Coach) coachDTO {
	d := coachDTO{
		ID:       c.ID,
		Email:    c.Email,
		Name:     c.Name,
		Phone:    c.Phone,
		Holidays: c.Holidays,
	}
	for _, wh := range c.WorkHours {
		d.WorkHours = append(d.WorkHours, workHoursDTO{Day: wh.Day, Start: wh.Start, End: wh.End})
	}
	for _, m := range c.AcceptedPayments {
		d.AcceptedPayments = append(d.AcceptedPayments, string(m))
	}
	return d
}

func (d studentDTO) toModel() model.Student {
	return model.Student{
		ID:      d.ID,
		Name:    d.Name,
		Phone:   d.Phone,
		Email:   d.Email,
		Balance: d.Balance,
	}
}

// toModel разрешает тип занятия один раз на границе API
func (d lessonDTO) toModel(loc *time.Location) (model.Lesson, error) {
	start, err := parseTime(d.Start, loc)
	if err != nil {
		return model.Lesson{}, fmt.Errorf("parse lesson %s start: %w", d.ID, err)
	}
	end, err := parseTime(d.End, loc)
	if err != nil {
		return model.Lesson{}, fmt.Errorf("parse lesson %s end: %w", d.ID, err)
	}

	lesson := model.Lesson{
		ID:            d.ID,
		Start:         start,
		End:           end,
		Status:        model.LessonStatus(d.Status),
		PaymentStatus: model.PaymentStatus(d.PaymentStatus),
		Location:      d.Location,
		Court:         d.Court,
		Capacity:      d.Capacity,
		Notes:         d.Notes,
		Price:         d.Price,
		Currency:      d.Currency,
	}
	if lesson.Status == "" {
		lesson.Status = model.LessonStatusScheduled
	}
	if lesson.PaymentStatus == "" {
		lesson.PaymentStatus = model.PaymentStatusUnpaid
	}
	if d.Student != nil {
		lesson.StudentName = d.Student.Name
	}

	switch model.LessonType(d.Type) {
	case model.LessonTypeGroup:
		group := model.GroupAttendees{Participants: make([]model.Participant, 0, len(d.Participants))}
		for _, p := range d.Participants {
			group.Participants = append(group.Participants, model.Participant{StudentID: p.StudentID, Price: p.Price})
		}
		lesson.Attendees = group
	case model.LessonTypePrivate, "":
		lesson.Attendees = model.PrivateAttendee{StudentID: d.StudentID}
	default:
		return model.Lesson{}, fmt.Errorf("lesson %s: unknown type %q", d.ID, d.Type)
	}

	return lesson, nil
}

func draftToDTO(draft model.LessonDraft) lessonDTO {
	d := lessonDTO{
		Start:    formatTime(draft.Start),
		End:      formatTime(draft.End),
		Location: draft.Location,
		Court:    draft.Court,
		Capacity: draft.Capacity,
		Notes:    draft.Notes,
		Price:    draft.Price,
		Currency: draft.Currency,
	}

	switch a := draft.Attendees.(type) {
	case model.GroupAttendees:
		d.Type = string(model.LessonTypeGroup)
		for _, p := range a.Participants {
			d.Participants = append(d.Participants, participantDTO{StudentID: p.StudentID, Price: p.Price})
		}
	case model.PrivateAttendee:
		d.Type = string(model.LessonTypePrivate)
		d.StudentID = a.StudentID
	}

	return d
}

func updateToDTO(u model.LessonUpdate) lessonUpdateDTO {
	var d lessonUpdateDTO
	if u.Start != nil {
		d.Start = formatTime(*u.Start)
	}
	if u.End != nil {
		d.End = formatTime(*u.End)
	}
	if u.Status != nil {
		d.Status = string(*u.Status)
	}
	d.Notes = u.Notes
	return d
}

func (d paymentDTO) toModel(loc *time.Location) model.Payment {
	p := model.Payment{
		ID:        d.ID,
		StudentID: d.StudentID,
		LessonID:  d.LessonID,
		Amount:    d.Amount,
		Currency:  d.Currency,
		Method:    model.PaymentMethod(d.Method),
		Status:    model.PaymentRecordStatus(d.Status),
		Reference: d.Reference,
		Notes:     d.Notes,
	}
	if d.Date != "" {
		if t, err := parseTime(d.Date, loc); err == nil {
			p.Date = t
		}
	}
	return p
}

func paymentInputToDTO(in model.PaymentInput) paymentDTO {
	d := paymentDTO{
		StudentID: in.StudentID,
		LessonID:  in.LessonID,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Method:    string(in.Method),
		Status:    string(in.Status),
		Reference: in.Reference,
		Notes:     in.Notes,
	}
	if !in.Date.IsZero() {
		d.Date = formatTime(in.Date)
	}
	return d
}
