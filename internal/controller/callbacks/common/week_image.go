package common

import (
	"bytes"
	"image/color"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleRegular FontStyle = ""
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 140
	dayPaddingX      = 8
	minLessonHeight  = 8.0
	lessonRadius     = 6.0
	shadowOffset     = 3.0
	conflictRingSize = 9.0
	totalDaysInWeek  = 7
	hourPaddingTop   = 1
	hourPaddingBot   = 1
	titleMaxRunes    = 18
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 24.0
	hourLabelFontSize  = 17.0
	lessonTimeFontSize = 16.0
	legendItemFontSize = 13.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 214, 102, 110}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{225, 225, 225, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	lessonScheduledColor = color.RGBA{133, 193, 85, 230}
	lessonCompletedColor = color.RGBA{120, 170, 230, 230}
	lessonCancelledColor = color.RGBA{170, 170, 170, 200}
	lessonTextColor      = color.RGBA{20, 24, 28, 230}
	lessonShadowColor    = color.RGBA{0, 0, 0, 20}
	conflictRingColor    = color.RGBA{230, 40, 40, 255}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// hourRange диапазон часов на картинке
type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont подключает шрифт нужного стиля, при ошибке - basicfont
func loadFont(dc *gg.Context, size float64, style FontStyle) {
	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		data := goregular.TTF
		if style == FontStyleBold {
			data = gobold.TTF
		}
		var err error
		parsed, err = opentype.Parse(data)
		if err != nil {
			fontsMu.Unlock()
			dc.SetFontFace(basicfont.Face7x13)
			return
		}
		cachedFonts[style] = parsed
	}
	fontsMu.Unlock()

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// GenerateWeekImage рисует неделю: занятия по дням, цвет по статусу,
// красное кольцо у занятий, которые пересекаются с другими
func GenerateWeekImage(week calendar.Week, lessons []model.Lesson, window calendar.Window, now time.Time) ([]byte, error) {
	conflicts := conflictingLessons(week)
	hours := calculateHourRange(lessons, window)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, week)
	drawHourLabels(dc, hours, cellHeight)

	for i, day := range week.Days {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, calendar.SameDay(day.Date, now))
		drawDayHeader(dc, day.Date, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)

		for _, block := range dayBlocks(day, lessons, window.StepMinutes) {
			drawLesson(dc, block, conflicts[block.lesson.ID], x, y, dayWidth, hours, cellHeight)
		}
	}

	if !now.Before(week.Start) && now.Before(week.End()) {
		drawCurrentTimeLine(dc, now, hours, cellHeight, dayWidth)
	}
	drawLegend(dc, dayWidth)

	return encodeImage(dc)
}

// lessonBlock занятие на картинке: начало в минутах от полуночи и высота в слотах
type lessonBlock struct {
	lesson model.Lesson
	minute int
	slots  int
	step   int
}

// dayBlocks раскладывает занятия дня по слотам, в которых они начинаются.
// Каждое занятие рисуется один раз высотой calendar.Span слотов; занятия,
// начинающиеся не на границе слота, рисуются от своего времени начала.
func dayBlocks(day calendar.DayView, lessons []model.Lesson, step int) []lessonBlock {
	if step <= 0 {
		step = calendar.DefaultStepMinutes
	}
	byID := make(map[string]model.Lesson)
	for _, l := range lessons {
		if calendar.SameDay(l.Start, day.Date) {
			byID[l.ID] = l
		}
	}

	var blocks []lessonBlock
	drawn := make(map[string]bool)
	for _, slot := range day.Slots {
		for _, e := range slot.StartingHere {
			l, ok := byID[e.ID]
			if !ok || drawn[e.ID] {
				continue
			}
			drawn[e.ID] = true
			blocks = append(blocks, lessonBlock{lesson: l, minute: slot.Minute, slots: calendar.Span(e, step), step: step})
		}
	}

	for _, l := range lessons {
		if drawn[l.ID] || !calendar.SameDay(l.Start, day.Date) {
			continue
		}
		drawn[l.ID] = true
		e := calendar.Entry{ID: l.ID, Start: l.Start, End: l.End}
		blocks = append(blocks, lessonBlock{
			lesson: l,
			minute: l.Start.Hour()*60 + l.Start.Minute(),
			slots:  calendar.Span(e, step),
			step:   step,
		})
	}
	return blocks
}

// conflictingLessons собирает ID занятий из слотов с пересечениями
func conflictingLessons(week calendar.Week) map[string]bool {
	ids := make(map[string]bool)
	for _, day := range week.Days {
		for _, slot := range day.Slots {
			if !slot.HasConflict {
				continue
			}
			for _, e := range slot.Overlaps {
				ids[e.ID] = true
			}
		}
	}
	return ids
}

// calculateHourRange сужает сетку до часов с занятиями (с отступом), но не шире окна
func calculateHourRange(lessons []model.Lesson, window calendar.Window) hourRange {
	minHour, maxHour := 24, 0

	for _, l := range lessons {
		startH := l.Start.Hour()
		endH := l.End.Hour()
		if l.End.Minute() > 0 {
			endH++
		}
		if !calendar.SameDay(l.Start, l.End) {
			endH = 24
		}
		if startH < minHour {
			minHour = startH
		}
		if endH > maxHour {
			maxHour = endH
		}
	}

	if minHour == 24 {
		minHour = window.StartHour + 2
		maxHour = minHour + 12
	}

	startHour := minHour - hourPaddingTop
	endHour := maxHour + hourPaddingBot
	if startHour < window.StartHour {
		startHour = window.StartHour
	}
	if endHour > window.EndHour {
		endHour = window.EndHour
	}
	if endHour <= startHour {
		endHour = startHour + 1
	}

	return hourRange{
		start: startHour,
		end:   endHour,
		total: endHour - startHour,
	}
}

// createCanvas создает новый контекст рисования с фоном
func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader рисует заголовок с названием месяца
func drawHeader(dc *gg.Context, week calendar.Week) {
	end := calendar.AddDays(week.Start, 6)

	title := formatting.GetMonthName(week.Start.Month())
	if end.Month() != week.Start.Month() {
		title += " - " + formatting.GetMonthName(end.Month())
	}

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/8+h/2, 0, 0)
}

// drawHourLabels рисует колонку с часами слева
func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleRegular)
	dc.SetColor(hourLabelColor)

	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		label := calendar.SlotInfo{Minute: (hours.start + i) * 60}.Label()
		dc.DrawStringAnchored(label, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

// drawDayBackground рисует фон дня
func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует дату и день недели
func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(formatting.GetWeekdayShort(int(date.Weekday())), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

// drawHourLines рисует горизонтальные линии часов
func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// drawLesson рисует один блок занятия
func drawLesson(dc *gg.Context, block lessonBlock, conflict bool, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	l := block.lesson
	startHour := float64(block.minute) / 60.0
	endHour := startHour + float64(block.slots*block.step)/60.0
	if startHour < float64(hours.start) {
		startHour = float64(hours.start)
	}
	if endHour > float64(hours.end) {
		endHour = float64(hours.end)
	}
	if endHour <= startHour {
		return
	}

	blockY := y + (startHour-float64(hours.start))*cellHeight
	blockHeight := (endHour - startHour) * cellHeight
	if blockHeight < minLessonHeight {
		blockHeight = minLessonHeight
	}

	fill := lessonColor(l.Status)
	blockX := x + dayPaddingX
	blockWidth := float64(dayWidth) - float64(dayPaddingX*2)

	// Тень
	dc.SetColor(lessonShadowColor)
	dc.DrawRoundedRectangle(blockX+shadowOffset, blockY+2+shadowOffset, blockWidth, blockHeight-4, lessonRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(blockX, blockY+2, blockWidth, blockHeight-4, lessonRadius)
	dc.Fill()

	// Рамка
	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(blockX, blockY+2, blockWidth, blockHeight-4, lessonRadius)
	dc.Stroke()

	if conflict {
		dc.SetColor(conflictRingColor)
		dc.SetLineWidth(3)
		dc.DrawCircle(blockX+blockWidth-conflictRingSize-2, blockY+conflictRingSize+4, conflictRingSize)
		dc.Stroke()
	}

	loadFont(dc, lessonTimeFontSize, FontStyleBold)
	dc.SetColor(lessonTextColor)
	txtX := blockX + 8
	txtY := blockY + 18
	dc.DrawStringAnchored(l.Start.Format("15:04"), txtX, txtY, 0, 0)

	if blockHeight > 25 {
		title := l.Title()
		if utf8.RuneCountInString(title) > titleMaxRunes {
			title = string([]rune(title)[:titleMaxRunes-1]) + "…"
		}
		loadFont(dc, lessonTimeFontSize-2, FontStyleRegular)
		dc.DrawStringAnchored(title, txtX, txtY+16, 0, 0)
	}
}

// lessonColor возвращает цвет блока по статусу занятия
func lessonColor(status model.LessonStatus) color.RGBA {
	switch status {
	case model.LessonStatusCompleted:
		return lessonCompletedColor
	case model.LessonStatusCancelled:
		return lessonCancelledColor
	default:
		return lessonScheduledColor
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени
func drawCurrentTimeLine(dc *gg.Context, now time.Time, hours hourRange, cellHeight float64, dayWidth int) {
	current := float64(now.Hour()) + float64(now.Minute())/60.0
	if current < float64(hours.start) || current > float64(hours.end) {
		return
	}

	y := float64(headerHeight) + (current-float64(hours.start))*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(float64(leftLabelsWidth), y, float64(leftLabelsWidth+totalDaysInWeek*dayWidth), y)
	dc.Stroke()
}

// drawLegend рисует легенду справа
func drawLegend(dc *gg.Context, dayWidth int) {
	legendX := float64(leftLabelsWidth + totalDaysInWeek*dayWidth + 12)
	legendY := float64(imageHeight) - 150.0

	items := []struct {
		Label string
		Clr   color.Color
	}{
		{"Запланировано", lessonScheduledColor},
		{"Проведено", lessonCompletedColor},
		{"Отменено", lessonCancelledColor},
	}

	boxW, boxH := 20.0, 14.0
	liY := legendY

	loadFont(dc, legendItemFontSize, FontStyleRegular)
	for _, item := range items {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(legendX, liY, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.Label, legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}

	dc.SetColor(conflictRingColor)
	dc.SetLineWidth(3)
	dc.DrawCircle(legendX+boxW/2, liY+boxH/2, boxH/2)
	dc.Stroke()
	dc.SetColor(legendItemColor)
	dc.DrawStringAnchored("Пересечение", legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
