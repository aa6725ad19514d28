package calendar

import "time"

// ClickAction результат нажатия на слот
type ClickAction int

const (
	ClickNone   ClickAction = iota // прошедший пустой слот, ничего не делаем
	ClickEdit                      // открыть редактирование занятия
	ClickCreate                    // открыть создание занятия с началом в слоте
)

// Click решение по нажатию на слот
type Click struct {
	Action ClickAction
	Entry  Entry
	Start  time.Time
}

// Resolve определяет действие по нажатию на слот.
// Первое занятие, начинающееся в слоте, открывается на редактирование даже в прошлом.
// Слот, занятый продолжением занятия, считается свободным для создания.
func (s SlotInfo) Resolve() Click {
	if len(s.StartingHere) > 0 {
		return Click{Action: ClickEdit, Entry: s.StartingHere[0], Start: s.Start}
	}
	if s.IsPast {
		return Click{Action: ClickNone, Start: s.Start}
	}
	return Click{Action: ClickCreate, Start: s.Start}
}
