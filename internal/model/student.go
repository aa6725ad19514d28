package model

type Student struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Email   string  `json:"email,omitempty"`
	Balance float64 `json:"balance"` // >0 долг ученика, <0 предоплата (сальдо в пользу ученика)
}

// HasDebt проверяет, есть ли у ученика задолженность
func (s *Student) HasDebt() bool {
	return s.Balance > 0
}

// HasCredit проверяет, есть ли у ученика предоплата
func (s *Student) HasCredit() bool {
	return s.Balance < 0
}

// Credit возвращает сумму предоплаты (0 если её нет)
func (s *Student) Credit() float64 {
	if s.Balance < 0 {
		return -s.Balance
	}
	return 0
}

// StudentInput данные для создания/обновления ученика
type StudentInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}
