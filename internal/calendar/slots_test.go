package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, start time.Time, minutes int) Entry {
	return Entry{ID: id, Start: start, End: AddMinutes(start, minutes), Title: id}
}

func slotAt(t *testing.T, slots []SlotInfo, hh, mm int) SlotInfo {
	t.Helper()
	for _, s := range slots {
		if s.Minute == hh*60+mm {
			return s
		}
	}
	require.Failf(t, "slot not found", "%02d:%02d", hh, mm)
	return SlotInfo{}
}

func TestWindowSlotCount(t *testing.T) {
	assert.Equal(t, 36, DefaultWindow().SlotCount())
	assert.False(t, DefaultWindow().IsTruncated())

	w := Window{StepMinutes: 45, StartHour: 6, EndHour: 8}
	assert.Equal(t, 2, w.SlotCount())
	assert.True(t, w.IsTruncated())
	assert.Equal(t, []int{360, 405}, w.SlotMinutes())

	assert.Zero(t, Window{StepMinutes: 0, StartHour: 6, EndHour: 24}.SlotCount())
	assert.Zero(t, Window{StepMinutes: 30, StartHour: 10, EndHour: 10}.SlotCount())
}

func TestMondayWeekScenario(t *testing.T) {
	lesson := Entry{ID: "l1", Start: at(2024, 6, 3, 10, 0), End: at(2024, 6, 3, 11, 0)}
	now := at(2024, 6, 1, 8, 0)

	week := WeekView([]Entry{lesson}, at(2024, 6, 3, 0, 0), DefaultWindow(), now)
	require.Len(t, week.Days, 7)
	assert.Equal(t, at(2024, 6, 3, 0, 0), week.Start)

	monday := week.Days[0].Slots

	ten := slotAt(t, monday, 10, 0)
	require.Len(t, ten.StartingHere, 1)
	assert.Equal(t, 2, Span(ten.StartingHere[0], 30))

	tenThirty := slotAt(t, monday, 10, 30)
	require.Len(t, tenThirty.Overlaps, 1)
	assert.Equal(t, "l1", tenThirty.Overlaps[0].ID)
	assert.Empty(t, tenThirty.StartingHere)

	nineThirty := slotAt(t, monday, 9, 30)
	assert.Empty(t, nineThirty.Overlaps)
	assert.Empty(t, nineThirty.StartingHere)

	// Остальные дни недели пустые
	for _, d := range week.Days[1:] {
		assert.Zero(t, d.StartingCount())
	}
}

func TestPastSlotClickScenario(t *testing.T) {
	now := at(2024, 6, 10, 9, 0)
	day := at(2024, 6, 5, 0, 0)

	slots := ComputeSlotView(nil, day, DefaultWindow(), now)
	slot := slotAt(t, slots, 14, 0)
	assert.True(t, slot.IsPast)
	assert.Equal(t, ClickNone, slot.Resolve().Action)

	existing := entry("l1", at(2024, 6, 5, 14, 0), 60)
	slots = ComputeSlotView([]Entry{existing}, day, DefaultWindow(), now)
	slot = slotAt(t, slots, 14, 0)
	assert.True(t, slot.IsPast)

	click := slot.Resolve()
	assert.Equal(t, ClickEdit, click.Action)
	assert.Equal(t, "l1", click.Entry.ID)

	// Продолжение занятия в прошлом не открывает ничего
	assert.Equal(t, ClickNone, slotAt(t, slots, 14, 30).Resolve().Action)
}

func TestSlotCoverage(t *testing.T) {
	entries := []Entry{
		entry("a", at(2024, 6, 3, 6, 0), 60),
		entry("b", at(2024, 6, 3, 9, 30), 90),
		entry("c", at(2024, 6, 4, 18, 0), 30),
		entry("d", at(2024, 6, 9, 23, 30), 30),
		entry("e", at(2024, 6, 7, 12, 0), 120),
		// Вне окна: другая неделя и до 06:00
		entry("f", at(2024, 6, 10, 10, 0), 60),
		entry("g", at(2024, 6, 5, 5, 0), 30),
	}
	now := at(2024, 6, 1, 0, 0)
	week := WeekView(entries, at(2024, 6, 5, 12, 0), DefaultWindow(), now)

	total := 0
	for _, d := range week.Days {
		total += d.StartingCount()
	}

	inWindow := 0
	for _, e := range entries {
		if !e.Start.Before(week.Start) && e.Start.Before(week.End()) && e.Start.Hour() >= DefaultStartHour {
			inWindow++
		}
	}

	assert.Equal(t, 5, inWindow)
	assert.Equal(t, inWindow, total)
}

func TestHalfOpenOverlap(t *testing.T) {
	day := at(2024, 6, 3, 0, 0)
	now := at(2024, 6, 1, 0, 0)

	before := entry("before", at(2024, 6, 3, 9, 0), 60)
	after := entry("after", at(2024, 6, 3, 10, 30), 30)

	slots := ComputeSlotView([]Entry{before, after}, day, DefaultWindow(), now)
	slot := slotAt(t, slots, 10, 0)
	assert.Empty(t, slot.Overlaps)
	assert.True(t, slot.IsFree())
	assert.Equal(t, ClickCreate, slot.Resolve().Action)

	assert.Len(t, slotAt(t, slots, 9, 30).Overlaps, 1)
	assert.Len(t, slotAt(t, slots, 10, 30).Overlaps, 1)
}

func TestSpan(t *testing.T) {
	step := 30
	lesson := entry("p3", at(2024, 6, 3, 10, 0), 90)
	assert.Equal(t, 3, Span(lesson, step))

	// Количество соседних занятий на высоту не влияет
	others := []Entry{lesson}
	for i := 0; i < 10; i++ {
		others = append(others, entry("x", at(2024, 6, 3, 10, 0), 30+i))
	}
	slots := ComputeSlotView(others, at(2024, 6, 3, 0, 0), DefaultWindow(), at(2024, 6, 1, 0, 0))
	slot := slotAt(t, slots, 10, 0)
	require.NotEmpty(t, slot.StartingHere)
	assert.Equal(t, 3, Span(slot.StartingHere[0], step))

	assert.Equal(t, 1, Span(entry("short", at(2024, 6, 3, 10, 0), 10), step))
	assert.Equal(t, 2, Span(entry("odd", at(2024, 6, 3, 10, 0), 31), step))
	assert.Equal(t, 1, Span(Entry{Start: at(2024, 6, 3, 10, 0), End: at(2024, 6, 3, 10, 0)}, step))
}

func TestConflictAndFirstMatchWins(t *testing.T) {
	first := entry("first", at(2024, 6, 3, 10, 0), 60)
	second := entry("second", at(2024, 6, 3, 10, 0), 30)
	third := entry("third", at(2024, 6, 3, 10, 30), 30)

	day := ComputeDayView([]Entry{first, second, third}, at(2024, 6, 3, 15, 0), DefaultWindow(), at(2024, 6, 1, 0, 0))

	ten, ok := day.FindSlot(10 * 60)
	require.True(t, ok)
	assert.True(t, ten.HasConflict)
	assert.Equal(t, []string{"first", "second"}, ids(ten.StartingHere))
	assert.Equal(t, "first", ten.Resolve().Entry.ID)

	tenThirty, ok := day.FindSlot(10*60 + 30)
	require.True(t, ok)
	assert.True(t, tenThirty.HasConflict)
	assert.Equal(t, []string{"first", "third"}, ids(tenThirty.Overlaps))

	assert.Equal(t, 2, day.ConflictCount())
}

func TestFutureSlotClickCreates(t *testing.T) {
	now := at(2024, 6, 3, 10, 10)
	slots := ComputeSlotView(nil, at(2024, 6, 3, 0, 0), DefaultWindow(), now)

	// 10:00 прошёл, 10:30 первый доступный
	assert.True(t, slotAt(t, slots, 10, 0).IsPast)
	click := slotAt(t, slots, 10, 30).Resolve()
	assert.Equal(t, ClickCreate, click.Action)
	assert.Equal(t, at(2024, 6, 3, 10, 30), click.Start)
}

func TestSlotLabel(t *testing.T) {
	slots := ComputeSlotView(nil, at(2024, 6, 3, 0, 0), DefaultWindow(), at(2024, 6, 1, 0, 0))
	require.Len(t, slots, 36)
	assert.Equal(t, "06:00", slots[0].Label())
	assert.Equal(t, "23:30", slots[35].Label())
	assert.Equal(t, at(2024, 6, 4, 0, 0), slots[35].End)
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
