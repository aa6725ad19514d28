package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodMP       PaymentMethod = "mp" // Mercado Pago
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodBalance  PaymentMethod = "balance" // списание с баланса ученика
)

// PaymentMethods все способы оплаты в порядке отображения
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodTransfer,
	PaymentMethodMP,
	PaymentMethodCard,
	PaymentMethodBalance,
}

type PaymentRecordStatus string

const (
	PaymentRecordPending   PaymentRecordStatus = "pending"
	PaymentRecordCompleted PaymentRecordStatus = "completed"
	PaymentRecordFailed    PaymentRecordStatus = "failed"
	PaymentRecordRefunded  PaymentRecordStatus = "refunded"
)

type Payment struct {
	ID        string              `json:"id"`
	StudentID string              `json:"studentId"`
	LessonID  string              `json:"lessonId,omitempty"`
	Amount    float64             `json:"amount"`
	Currency  string              `json:"currency"`
	Method    PaymentMethod       `json:"method"`
	Status    PaymentRecordStatus `json:"status"`
	Reference string              `json:"reference,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	Date      time.Time           `json:"date"`
}

// PaymentInput данные для регистрации платежа
type PaymentInput struct {
	StudentID string              `json:"studentId" validate:"required"`
	LessonID  string              `json:"lessonId,omitempty"`
	Amount    float64             `json:"amount" validate:"gt=0"`
	Currency  string              `json:"currency" validate:"required,len=3"`
	Method    PaymentMethod       `json:"method" validate:"required,oneof=cash transfer mp card balance"`
	Status    PaymentRecordStatus `json:"status" validate:"required,oneof=pending completed failed"`
	Reference string              `json:"reference,omitempty" validate:"max=100"`
	Notes     string              `json:"notes,omitempty" validate:"max=500"`
	Date      time.Time           `json:"date" validate:"required"`
}
