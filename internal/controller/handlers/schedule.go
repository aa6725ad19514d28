package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/students"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// upcomingDays горизонт команды /lessons
const upcomingDays = 7

var dayLayouts = []string{"02.01.2006", "02.01"}

// parseDay разбирает необязательный день из аргумента команды; пустой аргумент означает сегодня
func parseDay(arg string, now time.Time) (time.Time, error) {
	if arg == "" {
		return calendar.StartOfDay(now), nil
	}
	for _, layout := range dayLayouts {
		t, err := time.ParseInLocation(layout, arg, now.Location())
		if err != nil {
			continue
		}
		if layout == "02.01" {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
		}
		return t, nil
	}
	return time.Time{}, &service.ValidationError{Field: "day", Message: "не удалось разобрать дату, пример: 03.06"}
}

// HandleDay показывает сетку дня: /day или /day 03.06
func (h *Handlers) HandleDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	day, err := parseDay(commandArgs(update.Message.Text), h.lessonService.Now())
	if err != nil {
		h.reportError(ctx, b, update, err, "parse day")
		return
	}

	view, _, err := h.lessonService.Day(ctx, session.Token, day)
	if err != nil {
		h.reportError(ctx, b, update, err, "load day")
		return
	}

	text, kb := common.BuildDayScreen(view)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleWeek отправляет картинку недели: /week или /week 03.06
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	day, err := parseDay(commandArgs(update.Message.Text), h.lessonService.Now())
	if err != nil {
		h.reportError(ctx, b, update, err, "parse week")
		return
	}

	week, lessons, err := h.lessonService.Week(ctx, session.Token, day)
	if err != nil {
		h.reportError(ctx, b, update, err, "load week")
		return
	}

	now := h.lessonService.Now()
	caption, kb := common.BuildWeekScreen(week, now)
	chatID := update.Message.Chat.ID

	img, err := common.GenerateWeekImage(week, lessons, h.lessonService.Window(), now)
	if err == nil {
		name := fmt.Sprintf("week_%s.png", common.DayKey(week.Start))
		if err = h.sendPhoto(ctx, b, chatID, name, img, caption, kb); err == nil {
			return
		}
	}

	h.logger.Warn("Failed to send week image, falling back to text",
		zap.Int64("telegram_id", session.TelegramID),
		zap.Error(err))
	h.sendScreen(ctx, b, chatID, caption, kb)
}

// HandleMonth показывает календарь месяца: /month или /month 03.06
func (h *Handlers) HandleMonth(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	day, err := parseDay(commandArgs(update.Message.Text), h.lessonService.Now())
	if err != nil {
		h.reportError(ctx, b, update, err, "parse month")
		return
	}

	view, err := h.lessonService.Month(ctx, session.Token, day)
	if err != nil {
		h.reportError(ctx, b, update, err, "load month")
		return
	}

	text, kb := common.BuildMonthScreen(view)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleLessons показывает занятия на ближайшие 7 дней со сводкой
func (h *Handlers) HandleLessons(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	lessons, err := h.lessonService.Upcoming(ctx, session.Token, upcomingDays)
	if err != nil {
		h.reportError(ctx, b, update, err, "list lessons")
		return
	}

	names, err := h.studentService.Names(ctx, session.Token)
	if err != nil {
		h.logger.Warn("Failed to load student names", zap.Int64("telegram_id", session.TelegramID), zap.Error(err))
	}

	today := h.lessonService.Now()
	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("➕ Занятие", common.CallbackNewLesson),
			keyboard.Button("🗓 Неделя", common.WeekData(today)),
		).
		Build()

	text := common.BuildLessonsListText(lessons, h.lessonService.Stats(lessons), names)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleNewLesson открывает форму занятия: /newlesson или /newlesson 03.06 18:30
func (h *Handlers) HandleNewLesson(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	start := h.lessonService.DefaultStart()
	if arg := commandArgs(update.Message.Text); arg != "" {
		parsed, err := h.lessonService.ParseStart(arg)
		if err == nil {
			err = h.lessonService.ValidateStart(parsed)
		}
		if err != nil {
			h.reportError(ctx, b, update, err, "parse lesson start")
			return
		}
		start = parsed
	}

	form := state.NewLessonForm(start)
	if !h.saveDialog(ctx, b, update, &state.Session{State: state.StateLessonForm, Lesson: form}) {
		return
	}

	h.sendLessonForm(ctx, b, update, session, form)
}

// HandleStudents показывает список учеников
func (h *Handlers) HandleStudents(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	list, err := h.studentService.List(ctx, session.Token)
	if err != nil {
		h.reportError(ctx, b, update, err, "list students")
		return
	}

	text, kb := common.BuildStudentsScreen(list, 0)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleAddStudent начинает добавление ученика
func (h *Handlers) HandleAddStudent(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireSession(ctx, b, update); !ok {
		return
	}

	if !h.saveDialog(ctx, b, update, &state.Session{State: state.StateStudentName}) {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, students.AddStudentPrompt+"\nОтмена: /cancel")
}

// HandlePayments показывает учеников с долгом или предоплатой
func (h *Handlers) HandlePayments(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	list, err := h.studentService.List(ctx, session.Token)
	if err != nil {
		h.reportError(ctx, b, update, err, "list students")
		return
	}

	text, kb := buildBalancesScreen(list)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// buildBalancesScreen сводка по балансам: сначала долги, затем предоплаты
func buildBalancesScreen(list []model.Student) (string, *models.InlineKeyboardMarkup) {
	var debts, credits []model.Student
	var totalDebt float64
	for _, s := range list {
		switch {
		case s.Balance > 0:
			debts = append(debts, s)
			totalDebt += s.Balance
		case s.Balance < 0:
			credits = append(credits, s)
		}
	}

	var sb strings.Builder
	sb.WriteString("💳 <b>Платежи</b>\n")

	if len(debts) == 0 && len(credits) == 0 {
		sb.WriteString("\nВсе расчёты закрыты 👌")
		return sb.String(), nil
	}

	b := keyboard.NewBuilder()
	var buttons []models.InlineKeyboardButton
	writeGroup := func(title string, group []model.Student) {
		if len(group) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n<b>%s</b>\n", title)
		for _, s := range group {
			fmt.Fprintf(&sb, "• %s: %s\n", html.EscapeString(s.Name),
				formatting.FormatBalance(s.Balance, service.DefaultCurrency))
			buttons = append(buttons, keyboard.Button(s.Name, common.PrefixStudentPayments+s.ID))
		}
	}
	writeGroup("Должны", debts)
	writeGroup("Предоплата", credits)

	if totalDebt > 0 {
		fmt.Fprintf(&sb, "\nИтого долг: %s", formatting.FormatMoney(totalDebt, service.DefaultCurrency))
	}

	b.Grid(2, buttons...)
	return sb.String(), b.Build()
}

// sendLessonForm отправляет форму занятия; без списка учеников форма всё равно показывается
func (h *Handlers) sendLessonForm(ctx context.Context, b *bot.Bot, update *models.Update, session *model.CoachSession, form *state.LessonForm) {
	list, err := h.studentService.List(ctx, session.Token)
	if err != nil {
		h.logger.Warn("Failed to list students for lesson form", zap.Int64("telegram_id", session.TelegramID), zap.Error(err))
	}

	text, kb := common.BuildLessonFormScreen(form, list)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// sendLesson отправляет карточку занятия
func (h *Handlers) sendLesson(ctx context.Context, b *bot.Bot, update *models.Update, session *model.CoachSession, lessonID string, day time.Time) {
	lesson, err := h.lessonService.Find(ctx, session.Token, lessonID, day)
	if err != nil {
		h.reportError(ctx, b, update, err, "find lesson")
		return
	}

	names, err := h.studentService.Names(ctx, session.Token)
	if err != nil {
		h.logger.Warn("Failed to load student names", zap.Int64("telegram_id", session.TelegramID), zap.Error(err))
	}

	text, kb := common.BuildLessonScreen(*lesson, names)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// sendStudent отправляет карточку ученика
func (h *Handlers) sendStudent(ctx context.Context, b *bot.Bot, update *models.Update, session *model.CoachSession, studentID string) {
	student, err := h.studentService.Get(ctx, session.Token, studentID)
	if err != nil {
		h.reportError(ctx, b, update, err, "get student")
		return
	}

	text, kb := common.BuildStudentScreen(*student)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// sendProfile отправляет профиль тренера
func (h *Handlers) sendProfile(ctx context.Context, b *bot.Bot, update *models.Update, session *model.CoachSession) {
	coach, err := h.authService.Profile(ctx, session)
	if err != nil {
		h.reportError(ctx, b, update, err, "load profile")
		return
	}

	text, kb := common.BuildProfileScreen(coach, session)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}
