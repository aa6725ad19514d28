package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

func TestBuildBalancesScreen(t *testing.T) {
	students := []model.Student{
		{ID: "1", Name: "Анна", Balance: 5000},
		{ID: "2", Name: "Борис"},
		{ID: "3", Name: "Вера", Balance: -1500},
		{ID: "4", Name: "Глеб", Balance: 2500},
	}

	text, kb := buildBalancesScreen(students)

	assert.Contains(t, text, "Должны")
	assert.Contains(t, text, "Предоплата")
	assert.Contains(t, text, "Итого долг: 7 500")
	assert.NotContains(t, text, "Борис")

	require.NotNil(t, kb)
	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			data = append(data, btn.CallbackData)
		}
	}
	assert.Equal(t, []string{
		common.PrefixStudentPayments + "1",
		common.PrefixStudentPayments + "4",
		common.PrefixStudentPayments + "3",
	}, data)
}

func TestBuildBalancesScreenSettled(t *testing.T) {
	text, kb := buildBalancesScreen([]model.Student{{ID: "1", Name: "Анна"}})

	assert.Contains(t, text, "Все расчёты закрыты")
	assert.Nil(t, kb)
}
