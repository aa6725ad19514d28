package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

func testStatement() Statement {
	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	return Statement{
		CoachName: "Ана",
		Student:   model.Student{ID: "s1", Name: "Лусия", Balance: -500},
		From:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Lessons: []model.Lesson{
			{
				ID:        "l2",
				Start:     start.AddDate(0, 0, 7),
				End:       start.AddDate(0, 0, 7).Add(90 * time.Minute),
				Attendees: model.GroupAttendees{Participants: []model.Participant{{StudentID: "s2", Price: 1}, {StudentID: "s1", Price: 700}}},
				Status:    model.LessonStatusScheduled,
				Currency:  "ARS",
			},
			{
				ID:        "l1",
				Start:     start,
				End:       start.Add(time.Hour),
				Attendees: model.PrivateAttendee{StudentID: "s1"},
				Status:    model.LessonStatusCompleted,
				Price:     1000,
				Currency:  "ARS",
			},
		},
		Payments: []model.Payment{
			{ID: "p1", StudentID: "s1", Amount: 1000, Currency: "ARS", Method: model.PaymentMethodCash, Status: model.PaymentRecordCompleted, Date: start},
			{ID: "p2", StudentID: "s1", Amount: 300, Currency: "ARS", Method: model.PaymentMethodMP, Status: model.PaymentRecordFailed, Date: start.Add(time.Hour)},
		},
		GeneratedAt: start,
	}
}

func TestLessonTable(t *testing.T) {
	table := testStatement().LessonTable()
	require.Len(t, table.Rows, 2)

	assert.Equal(t, []string{"03.06.2024", "10:00–11:00", "60", "индив.", "проведено", "1000.00 ARS"}, table.Rows[0])
	assert.Equal(t, "группа", table.Rows[1][3])
	assert.Equal(t, "700.00 ARS", table.Rows[1][5])
}

func TestSummary(t *testing.T) {
	lines := testStatement().Summary()
	assert.Equal(t, []string{
		"Проведено занятий: 1 из 2",
		"Оплачено: 1000.00 ARS",
		"Предоплата: 500.00",
	}, lines)
}

func TestPDFRender(t *testing.T) {
	data, err := NewPDFExporter().Render(testStatement())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFRenderEmpty(t *testing.T) {
	st := testStatement()
	st.Lessons = nil
	st.Payments = nil

	data, err := NewPDFExporter().Render(st)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestCSVRender(t *testing.T) {
	data, err := NewCSVExporter().Render(testStatement())
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	// Заголовок, шапка и 2 занятия, затем заголовок, шапка и 2 платежа.
	// Пустая строка-разделитель csv.Reader пропускает.
	require.Len(t, records, 8)
	assert.Equal(t, []string{"Занятия"}, records[0])
	assert.Equal(t, []string{"Платежи"}, records[4])
	assert.Equal(t, "Mercado Pago", records[7][2])
}
