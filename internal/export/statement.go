// Package export формирует выписки по ученику в PDF и CSV
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

// Table таблица выписки
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Statement выписка по ученику за период
type Statement struct {
	CoachName   string
	Student     model.Student
	From        time.Time
	To          time.Time
	Lessons     []model.Lesson
	Payments    []model.Payment
	GeneratedAt time.Time
}

var statusNames = map[model.LessonStatus]string{
	model.LessonStatusScheduled: "запланировано",
	model.LessonStatusCompleted: "проведено",
	model.LessonStatusCancelled: "отменено",
}

var methodNames = map[model.PaymentMethod]string{
	model.PaymentMethodCash:     "наличные",
	model.PaymentMethodTransfer: "перевод",
	model.PaymentMethodMP:       "Mercado Pago",
	model.PaymentMethodCard:     "карта",
	model.PaymentMethodBalance:  "предоплата",
}

// Title заголовок выписки
func (s Statement) Title() string {
	return fmt.Sprintf("Выписка: %s", s.Student.Name)
}

// Period подпись периода
func (s Statement) Period() string {
	return fmt.Sprintf("%s – %s", s.From.Format("02.01.2006"), s.To.Format("02.01.2006"))
}

// LessonTable занятия ученика по возрастанию даты
func (s Statement) LessonTable() Table {
	lessons := append([]model.Lesson(nil), s.Lessons...)
	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].Start.Before(lessons[j].Start) })

	t := Table{
		Title:   "Занятия",
		Headers: []string{"Дата", "Время", "Мин", "Тип", "Статус", "Цена"},
	}
	for _, l := range lessons {
		kind := "индив."
		price := l.Price
		if g, ok := l.Attendees.(model.GroupAttendees); ok {
			kind = "группа"
			for _, p := range g.Participants {
				if p.StudentID == s.Student.ID {
					price = p.Price
				}
			}
		}
		t.Rows = append(t.Rows, []string{
			l.Start.Format("02.01.2006"),
			l.Start.Format("15:04") + "–" + l.End.Format("15:04"),
			fmt.Sprintf("%d", l.DurationMinutes()),
			kind,
			statusNames[l.Status],
			formatAmount(price, l.Currency),
		})
	}
	return t
}

// PaymentTable платежи ученика по возрастанию даты
func (s Statement) PaymentTable() Table {
	payments := append([]model.Payment(nil), s.Payments...)
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].Date.Before(payments[j].Date) })

	t := Table{
		Title:   "Платежи",
		Headers: []string{"Дата", "Сумма", "Способ", "Статус", "Комментарий"},
	}
	for _, p := range payments {
		t.Rows = append(t.Rows, []string{
			p.Date.Format("02.01.2006"),
			formatAmount(p.Amount, p.Currency),
			methodNames[p.Method],
			string(p.Status),
			strings.TrimSpace(p.Reference + " " + p.Notes),
		})
	}
	return t
}

// Summary итоговые строки: проведённые занятия, оплачено, баланс
func (s Statement) Summary() []string {
	completed := 0
	for _, l := range s.Lessons {
		if l.Status == model.LessonStatusCompleted {
			completed++
		}
	}

	paid := make(map[string]float64)
	for _, p := range s.Payments {
		if p.Status == model.PaymentRecordCompleted {
			paid[p.Currency] += p.Amount
		}
	}
	currencies := make([]string, 0, len(paid))
	for c := range paid {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	lines := []string{fmt.Sprintf("Проведено занятий: %d из %d", completed, len(s.Lessons))}
	for _, c := range currencies {
		lines = append(lines, fmt.Sprintf("Оплачено: %s", formatAmount(paid[c], c)))
	}

	switch {
	case s.Student.HasDebt():
		lines = append(lines, fmt.Sprintf("Долг: %.2f", s.Student.Balance))
	case s.Student.HasCredit():
		lines = append(lines, fmt.Sprintf("Предоплата: %.2f", s.Student.Credit()))
	default:
		lines = append(lines, "Баланс: 0")
	}
	return lines
}

func formatAmount(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}
