package common

import (
	"fmt"
	"strings"
	"time"
)

// Telegram ограничивает callback data 64 байтами
const MaxCallbackDataLen = 64

// Общие callbacks
const (
	CallbackNoop      = "noop"
	CallbackMainMenu  = "menu"
	CallbackNewLesson = "new"
	CallbackProfile   = "pf"
)

// Календарь
const (
	PrefixDay   = "d:"  // d:20240603
	PrefixWeek  = "w:"  // w:20240603 (любой день недели)
	PrefixMonth = "m:"  // m:202406
	PrefixSlot  = "sl:" // sl:20240603:570 (день:минута от полуночи)
)

// Занятие: <prefix><lessonID>:<день занятия>[:аргумент]
const (
	PrefixLesson          = "l:"
	PrefixLessonStatus    = "lst:" // lst:id:20240603:completed
	PrefixLessonDelete    = "ldl:"
	PrefixLessonDeleteOK  = "ldy:"
	PrefixLessonDuration  = "ldu:"
	PrefixLessonSetDur    = "lds:" // lds:id:20240603:60
	PrefixLessonShift     = "lsh:" // lsh:id:20240603:-30
	PrefixLessonTime      = "ltm:"
	PrefixLessonRepeat    = "lrp:"
	PrefixLessonRepeatSet = "lrn:" // lrn:id:20240603:2
	PrefixLessonNotes     = "lnt:"
	PrefixLessonPay       = "lpy:"
)

// Форма нового занятия
const (
	NewLessonTyped   = "nl"
	PrefixFormStud   = "fs:" // fs:studentID
	PrefixFormDur    = "fd:" // fd:60
	PrefixFormRepeat = "fr:" // fr:2
	FormPrice        = "fp"
	FormConfirm      = "fok"
	FormCancel       = "fcx"
)

// Платёж
const (
	PrefixPayStudent = "ps:" // ps:studentID
	PrefixPayMethod  = "pm:" // pm:cash
	PayAmount        = "pa"
	PayConfirm       = "pok"
	PayCancel        = "pcx"
)

// Ученики
const (
	PrefixStudents        = "sts:" // sts:0 (страница)
	PrefixStudent         = "st:"
	PrefixStudentDelete   = "sdl:"
	PrefixStudentDeleteOK = "sdy:"
	PrefixStudentRename   = "srn:"
	PrefixStudentPayments = "spy:"
	PrefixStudentPay      = "spn:"
	PrefixStatement       = "sst:" // sst:studentID:pdf
	StudentAdd            = "sad"
)

// Профиль
const (
	PrefixDigest = "dg:" // dg:on / dg:off
	ProfileName  = "pfn"
	LogoutYes    = "lo:y"
)

const (
	dayKeyLayout   = "20060102"
	monthKeyLayout = "200601"
)

// DayKey кодирует календарный день для callback data
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// ParseDayKey возвращает полночь дня в зоне loc
func ParseDayKey(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayKeyLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, ErrInvalidFormat)
	}
	return t, nil
}

// MonthKey кодирует месяц для callback data
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// ParseMonthKey возвращает первое число месяца в зоне loc
func ParseMonthKey(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(monthKeyLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month %q: %w", s, ErrInvalidFormat)
	}
	return t, nil
}

// DayData callback дня
func DayData(day time.Time) string { return PrefixDay + DayKey(day) }

// WeekData callback недели, содержащей day
func WeekData(day time.Time) string { return PrefixWeek + DayKey(day) }

// MonthData callback месяца
func MonthData(day time.Time) string { return PrefixMonth + MonthKey(day) }

// SlotData callback слота дня
func SlotData(day time.Time, minute int) string {
	return fmt.Sprintf("%s%s:%d", PrefixSlot, DayKey(day), minute)
}

// LessonData callback действия над занятием
func LessonData(prefix, lessonID string, day time.Time, args ...string) string {
	data := prefix + lessonID + ":" + DayKey(day)
	for _, a := range args {
		data += ":" + a
	}
	return data
}

// ParseArgs отделяет префикс и делит остаток по ':'. want - ожидаемое число частей.
func ParseArgs(data, prefix string, want int) ([]string, error) {
	if !strings.HasPrefix(data, prefix) {
		return nil, ErrInvalidFormat
	}
	parts := strings.Split(strings.TrimPrefix(data, prefix), ":")
	if len(parts) != want {
		return nil, ErrInvalidFormat
	}
	for _, p := range parts {
		if p == "" {
			return nil, ErrInvalidFormat
		}
	}
	return parts, nil
}

// LessonRef занятие, закодированное в callback
type LessonRef struct {
	ID  string
	Day time.Time
	Arg string
}

// ParseLessonData разбирает callback занятия; withArg - есть ли третий аргумент
func ParseLessonData(data, prefix string, loc *time.Location, withArg bool) (LessonRef, error) {
	want := 2
	if withArg {
		want = 3
	}
	parts, err := ParseArgs(data, prefix, want)
	if err != nil {
		return LessonRef{}, err
	}
	day, err := ParseDayKey(parts[1], loc)
	if err != nil {
		return LessonRef{}, err
	}
	ref := LessonRef{ID: parts[0], Day: day}
	if withArg {
		ref.Arg = parts[2]
	}
	return ref, nil
}
