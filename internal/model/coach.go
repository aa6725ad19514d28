package model

import "time"

// WorkHours рабочие часы тренера в конкретный день недели
type WorkHours struct {
	Day   int    `json:"day"`   // 0 = Sunday, 6 = Saturday
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "18:00"
}

type Coach struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Phone            string          `json:"phone,omitempty"`
	WorkHours        []WorkHours     `json:"workHours,omitempty"`
	AcceptedPayments []PaymentMethod `json:"acceptedPayments,omitempty"`
	Holidays         []string        `json:"holidays,omitempty"` // даты "2006-01-02"
}

// IsHoliday проверяет, отмечен ли день как выходной
func (c *Coach) IsHoliday(day time.Time) bool {
	key := day.Format("2006-01-02")
	for _, h := range c.Holidays {
		if h == key {
			return true
		}
	}
	return false
}
