package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder_Grid(t *testing.T) {
	kb := NewBuilder().Grid(2,
		Button("a", "1"), Button("b", "2"), Button("c", "3"), Button("d", "4"), Button("e", "5"),
	).Build()

	assert.Len(t, kb.InlineKeyboard, 3)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[2], 1)
	assert.Equal(t, "5", kb.InlineKeyboard[2][0].CallbackData)
	assert.Equal(t, 0, NewBuilder().Grid(3).Rows())
}

func TestBuilder_RowSkipsEmpty(t *testing.T) {
	b := NewBuilder().Row().Row(Button("x", "y"))
	assert.Equal(t, 1, b.Rows())
}

func TestPaginationButtons(t *testing.T) {
	assert.Nil(t, PaginationButtons("sts:", 0, 1))

	first := PaginationButtons("sts:", 0, 3)
	assert.Len(t, first, 2)
	assert.Equal(t, "noop", first[0].CallbackData)
	assert.Equal(t, "sts:1", first[1].CallbackData)

	middle := PaginationButtons("sts:", 1, 3)
	assert.Len(t, middle, 3)
	assert.Equal(t, "sts:0", middle[0].CallbackData)
	assert.Equal(t, "📄 2/3", middle[1].Text)

	last := PaginationButtons("sts:", 2, 3)
	assert.Len(t, last, 2)
	assert.Equal(t, "sts:1", last[0].CallbackData)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 8))
	assert.Equal(t, 1, TotalPages(8, 8))
	assert.Equal(t, 2, TotalPages(9, 8))
}

func TestConfirmRows(t *testing.T) {
	rows := ConfirmCancelButtons("ok", "no")
	assert.Len(t, rows, 1)
	assert.Equal(t, "ok", rows[0][0].CallbackData)
	assert.Equal(t, "no", rows[0][1].CallbackData)

	kb := NewBuilder().AddPagination("sts:", 0, 1).AddBackButton("menu").Build()
	assert.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "menu", kb.InlineKeyboard[0][0].CallbackData)
}
