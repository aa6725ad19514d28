package common

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// StudentsPerPage учеников на одной странице списка
const StudentsPerPage = 8

// LessonAttendeesText перечисляет участников занятия по именам
func LessonAttendeesText(lesson model.Lesson, names map[string]string) string {
	if g, ok := lesson.Attendees.(model.GroupAttendees); ok {
		parts := make([]string, 0, len(g.Participants))
		for _, p := range g.Participants {
			parts = append(parts, fmt.Sprintf("%s (%s)",
				html.EscapeString(studentName(p.StudentID, names)),
				formatting.FormatMoney(p.Price, lesson.Currency)))
		}
		return "👥 " + strings.Join(parts, ", ")
	}
	if lesson.StudentName != "" {
		return "👤 " + html.EscapeString(lesson.StudentName)
	}
	if lesson.Attendees == nil {
		return "👤 без ученика"
	}
	ids := lesson.Attendees.StudentIDs()
	if len(ids) == 0 {
		return "👤 без ученика"
	}
	return "👤 " + html.EscapeString(studentName(ids[0], names))
}

func studentName(id string, names map[string]string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return "ученик " + id
}

// BuildLessonScreen карточка занятия с действиями
func BuildLessonScreen(lesson model.Lesson, names map[string]string) (string, *models.InlineKeyboardMarkup) {
	status := formatting.GetLessonStatusDisplay(lesson.Status)
	payment := formatting.GetPaymentStatusDisplay(lesson.PaymentStatus)
	day := calendar.StartOfDay(lesson.Start)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>Занятие %s</b>\n\n", status.Emoji, formatting.FormatDateWithWeekday(lesson.Start))
	fmt.Fprintf(&sb, "🕒 %s (%s)\n",
		formatting.FormatTimeRange(lesson.Start, lesson.End),
		formatting.FormatDuration(lesson.DurationMinutes()))
	sb.WriteString(LessonAttendeesText(lesson, names) + "\n")
	fmt.Fprintf(&sb, "📊 Статус: %s\n", status.Text)
	fmt.Fprintf(&sb, "%s Оплата: %s\n", payment.Emoji, payment.Text)
	if lesson.Price > 0 {
		fmt.Fprintf(&sb, "💰 Цена: %s\n", formatting.FormatMoney(lesson.Price, lesson.Currency))
	}
	if lesson.Location != "" || lesson.Court != "" {
		place := strings.TrimSpace(strings.Join([]string{lesson.Location, lesson.Court}, " "))
		fmt.Fprintf(&sb, "📍 %s\n", html.EscapeString(place))
	}
	if lesson.Notes != "" {
		fmt.Fprintf(&sb, "📝 %s\n", html.EscapeString(lesson.Notes))
	}

	id := lesson.ID
	b := keyboard.NewBuilder()

	switch lesson.Status {
	case model.LessonStatusScheduled:
		b.Row(
			keyboard.Button("✅ Проведено", LessonData(PrefixLessonStatus, id, day, string(model.LessonStatusCompleted))),
			keyboard.Button("❌ Отменить", LessonData(PrefixLessonStatus, id, day, string(model.LessonStatusCancelled))),
		)
	default:
		b.Row(keyboard.Button("🗓 Вернуть в план", LessonData(PrefixLessonStatus, id, day, string(model.LessonStatusScheduled))))
	}

	b.Row(
		keyboard.Button("⏪ −30 мин", LessonData(PrefixLessonShift, id, day, "-30")),
		keyboard.Button("🕒 Время", LessonData(PrefixLessonTime, id, day)),
		keyboard.Button("+30 мин ⏩", LessonData(PrefixLessonShift, id, day, "30")),
	)
	b.Row(
		keyboard.Button("⏱ Длительность", LessonData(PrefixLessonDuration, id, day)),
		keyboard.Button("🔁 Повторить", LessonData(PrefixLessonRepeat, id, day)),
	)
	b.Row(
		keyboard.Button("📝 Заметка", LessonData(PrefixLessonNotes, id, day)),
		keyboard.Button("💰 Оплата", LessonData(PrefixLessonPay, id, day)),
	)
	b.Row(keyboard.DeleteButton(LessonData(PrefixLessonDelete, id, day)))
	b.AddBackButton(DayData(day))

	return sb.String(), b.Build()
}

// BuildDurationScreen выбор длительности занятия
func BuildDurationScreen(lesson model.Lesson) (string, *models.InlineKeyboardMarkup) {
	current := service.EditDuration(lesson)
	day := calendar.StartOfDay(lesson.Start)

	buttons := make([]models.InlineKeyboardButton, 0, len(service.DurationOptions))
	for _, d := range service.DurationOptions {
		text := formatting.FormatDuration(d)
		if d == current {
			text = "✓ " + text
		}
		buttons = append(buttons, keyboard.Button(text, LessonData(PrefixLessonSetDur, lesson.ID, day, strconv.Itoa(d))))
	}

	kb := keyboard.NewBuilder().
		Grid(2, buttons...).
		AddBackButton(LessonData(PrefixLesson, lesson.ID, day)).
		Build()

	return fmt.Sprintf("⏱ <b>Длительность занятия</b>\n\nСейчас: %s\nНачало остаётся %s.",
		formatting.FormatDuration(current), formatting.FormatTime(lesson.Start)), kb
}

// BuildRepeatScreen выбор количества недельных повторов
func BuildRepeatScreen(lesson model.Lesson) (string, *models.InlineKeyboardMarkup) {
	day := calendar.StartOfDay(lesson.Start)

	buttons := make([]models.InlineKeyboardButton, 0, calendar.MaxRepeatWeeks)
	for w := 1; w <= calendar.MaxRepeatWeeks; w++ {
		buttons = append(buttons, keyboard.Button(
			fmt.Sprintf("%d %s", w, formatting.PluralizeWeeks(w)),
			LessonData(PrefixLessonRepeatSet, lesson.ID, day, strconv.Itoa(w))))
	}

	kb := keyboard.NewBuilder().
		Grid(2, buttons...).
		AddBackButton(LessonData(PrefixLesson, lesson.ID, day)).
		Build()

	return fmt.Sprintf("🔁 <b>Повторить занятие</b>\n\n%s, %s\nКопии создаются в тот же день недели и время.",
		formatting.FormatDateWithWeekday(lesson.Start), formatting.FormatTimeRange(lesson.Start, lesson.End)), kb
}

// BuildDeleteConfirmScreen подтверждение удаления занятия
func BuildDeleteConfirmScreen(lesson model.Lesson) (string, *models.InlineKeyboardMarkup) {
	day := calendar.StartOfDay(lesson.Start)
	kb := keyboard.NewBuilder().
		AddRows(keyboard.YesNoButtons(
			LessonData(PrefixLessonDeleteOK, lesson.ID, day),
			LessonData(PrefixLesson, lesson.ID, day),
		)).
		Build()

	return fmt.Sprintf("🗑 Удалить занятие %s, %s?",
		formatting.FormatDateWithWeekday(lesson.Start), formatting.FormatTimeRange(lesson.Start, lesson.End)), kb
}

// BuildLessonFormScreen форма нового занятия
func BuildLessonFormScreen(form *state.LessonForm, students []model.Student) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("➕ <b>Новое занятие</b>\n\n")
	fmt.Fprintf(&sb, "📅 %s, %s\n", formatting.FormatDateWithWeekday(form.Start), formatting.FormatTime(form.Start))
	fmt.Fprintf(&sb, "⏱ %s\n", formatting.FormatDuration(form.Duration))

	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.ID] = s.Name
	}
	switch len(form.StudentIDs) {
	case 0:
		sb.WriteString("👤 Ученик не выбран\n")
	case 1:
		fmt.Fprintf(&sb, "👤 %s\n", html.EscapeString(studentName(form.StudentIDs[0], names)))
	default:
		selected := make([]string, 0, len(form.StudentIDs))
		for _, id := range form.StudentIDs {
			selected = append(selected, html.EscapeString(studentName(id, names)))
		}
		fmt.Fprintf(&sb, "👥 Группа: %s\n", strings.Join(selected, ", "))
	}
	if form.Price > 0 {
		fmt.Fprintf(&sb, "💰 %s\n", formatting.FormatMoney(form.Price, form.Currency))
	}
	if form.RepeatWeeks > 0 {
		fmt.Fprintf(&sb, "🔁 Ещё %d %s\n", form.RepeatWeeks, formatting.PluralizeWeeks(form.RepeatWeeks))
	}

	b := keyboard.NewBuilder()

	durations := make([]models.InlineKeyboardButton, 0, len(service.DurationOptions))
	for _, d := range service.DurationOptions {
		text := formatting.FormatDuration(d)
		if d == form.Duration {
			text = "✓ " + text
		}
		durations = append(durations, keyboard.Button(text, PrefixFormDur+strconv.Itoa(d)))
	}
	b.Row(durations...)

	repeats := make([]models.InlineKeyboardButton, 0, calendar.MaxRepeatWeeks+1)
	for w := 0; w <= calendar.MaxRepeatWeeks; w++ {
		text := fmt.Sprintf("🔁%d", w)
		if w == form.RepeatWeeks {
			text = "✓" + text
		}
		repeats = append(repeats, keyboard.Button(text, PrefixFormRepeat+strconv.Itoa(w)))
	}
	b.Row(repeats...)

	studentButtons := make([]models.InlineKeyboardButton, 0, len(students))
	for _, s := range students {
		text := truncate(s.Name, 20)
		if form.HasStudent(s.ID) {
			text = "✓ " + text
		}
		studentButtons = append(studentButtons, keyboard.Button(text, PrefixFormStud+s.ID))
	}
	b.Grid(2, studentButtons...)

	b.Row(
		keyboard.Button("🕒 Другое время", NewLessonTyped),
		keyboard.Button("💰 Цена", FormPrice),
	)
	b.AddRows(keyboard.ConfirmCancelButtons(FormConfirm, FormCancel))

	if len(students) == 0 {
		sb.WriteString("\nСначала добавьте учеников: /addstudent")
	} else {
		sb.WriteString("\nВыберите одного ученика или нескольких для группы.")
	}

	return sb.String(), b.Build()
}

// BuildCreateResultText итог создания занятия с повторами
func BuildCreateResultText(start time.Time, result *service.CreateResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Занятие создано: %s, %s\n",
		formatting.FormatDateWithWeekday(start), formatting.FormatTime(start))
	sb.WriteString(BuildRepeatOutcomesText(result.Repeats))
	return sb.String()
}

// BuildRepeatOutcomesText результат по каждой недельной копии
func BuildRepeatOutcomesText(outcomes []service.RepeatOutcome) string {
	if len(outcomes) == 0 {
		return ""
	}

	var sb strings.Builder
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(&sb, "❌ %s: %s\n", formatting.FormatDate(o.Start), strings.TrimPrefix(ErrorMessage(o.Err), "❌ "))
		} else {
			fmt.Fprintf(&sb, "✅ %s\n", formatting.FormatDate(o.Start))
		}
	}

	header := fmt.Sprintf("\n🔁 Повторы: %d из %d\n", len(outcomes)-failed, len(outcomes))
	return header + sb.String()
}

// BuildLessonsListText список занятий с короткой сводкой
func BuildLessonsListText(lessons []model.Lesson, stats service.LessonStats, names map[string]string) string {
	var sb strings.Builder
	sb.WriteString("🎾 <b>Занятия на неделю</b>\n\n")
	fmt.Fprintf(&sb, "Всего: %d • Ближайшие 24 ч: %d • Проведено: %d\n", stats.Total, stats.Next24h, stats.Completed)
	if stats.Conflicts > 0 {
		fmt.Fprintf(&sb, "⚠️ Пересечений: %d\n", stats.Conflicts)
	}

	if len(lessons) == 0 {
		sb.WriteString("\nЗанятий нет. Добавить: /newlesson")
		return sb.String()
	}

	var current time.Time
	for _, l := range lessons {
		if current.IsZero() || !calendar.SameDay(current, l.Start) {
			current = l.Start
			fmt.Fprintf(&sb, "\n<b>%s</b>\n", formatting.FormatDateWithWeekday(l.Start))
		}
		status := formatting.GetLessonStatusDisplay(l.Status)
		fmt.Fprintf(&sb, "%s %s %s\n", status.Emoji, formatting.FormatTimeRange(l.Start, l.End),
			strings.TrimPrefix(strings.TrimPrefix(LessonAttendeesText(l, names), "👤 "), "👥 "))
	}
	return sb.String()
}

// BuildDigestText утренняя сводка на день
func BuildDigestText(coachName string, day time.Time, lessons []model.Lesson) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "☀️ Доброе утро, %s!\n\n", html.EscapeString(coachName))
	fmt.Fprintf(&sb, "📅 <b>%s, %s</b>\n", formatting.GetWeekdayName(int(day.Weekday())), formatting.FormatDayMonth(day))

	if len(lessons) == 0 {
		sb.WriteString("\nСегодня занятий нет.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "🎾 %d %s\n\n", len(lessons), formatting.PluralizeLessons(len(lessons)))
	for _, l := range lessons {
		fmt.Fprintf(&sb, "• %s %s\n", formatting.FormatTimeRange(l.Start, l.End),
			strings.TrimPrefix(strings.TrimPrefix(LessonAttendeesText(l, nil), "👤 "), "👥 "))
	}
	return sb.String()
}

// BuildStudentsScreen страница списка учеников
func BuildStudentsScreen(students []model.Student, page int) (string, *models.InlineKeyboardMarkup) {
	totalPages := keyboard.TotalPages(len(students), StudentsPerPage)
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	b := keyboard.NewBuilder()
	start := page * StudentsPerPage
	end := start + StudentsPerPage
	if end > len(students) {
		end = len(students)
	}
	for _, s := range students[start:end] {
		text := s.Name
		switch {
		case s.HasDebt():
			text = "🔴 " + text
		case s.HasCredit():
			text = "🟢 " + text
		}
		b.Row(keyboard.Button(truncate(text, 40), PrefixStudent+s.ID))
	}
	b.AddPagination(PrefixStudents, page, totalPages)
	b.Row(keyboard.Button("➕ Добавить ученика", StudentAdd))

	text := fmt.Sprintf("👥 <b>Ученики</b>: %d\n\n🔴 долг • 🟢 предоплата", len(students))
	if len(students) == 0 {
		text = "👥 <b>Ученики</b>\n\nСписок пуст."
	}
	return text, b.Build()
}

// BuildStudentScreen карточка ученика
func BuildStudentScreen(s model.Student) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>%s</b>\n\n", html.EscapeString(s.Name))
	if s.Phone != "" {
		fmt.Fprintf(&sb, "📞 %s\n", html.EscapeString(s.Phone))
	}
	if s.Email != "" {
		fmt.Fprintf(&sb, "✉️ %s\n", html.EscapeString(s.Email))
	}
	fmt.Fprintf(&sb, "💼 Баланс: %s\n", formatting.FormatBalance(s.Balance, service.DefaultCurrency))

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("💳 Платежи", PrefixStudentPayments+s.ID),
			keyboard.Button("💰 Принять оплату", PrefixStudentPay+s.ID),
		).
		Row(
			keyboard.Button("📄 Выписка PDF", PrefixStatement+s.ID+":"+string(service.StatementPDF)),
			keyboard.Button("📊 CSV", PrefixStatement+s.ID+":"+string(service.StatementCSV)),
		).
		Row(
			keyboard.Button("✏️ Имя", PrefixStudentRename+s.ID),
			keyboard.DeleteButton(PrefixStudentDelete+s.ID),
		).
		AddBackButton(PrefixStudents+"0").
		Build()

	return sb.String(), kb
}

// BuildStudentDeleteScreen подтверждение удаления ученика
func BuildStudentDeleteScreen(s model.Student) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder().
		AddRows(keyboard.YesNoButtons(PrefixStudentDeleteOK+s.ID, PrefixStudent+s.ID)).
		Build()
	return fmt.Sprintf("🗑 Удалить ученика %s?", html.EscapeString(s.Name)), kb
}

// BuildPaymentsText список платежей ученика
func BuildPaymentsText(s model.Student, payments []model.Payment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💳 <b>Платежи: %s</b>\n\n", html.EscapeString(s.Name))
	if len(payments) == 0 {
		sb.WriteString("Платежей нет.")
		return sb.String()
	}

	for _, p := range payments {
		fmt.Fprintf(&sb, "• %s %s, %s",
			formatting.FormatDate(p.Date),
			formatting.FormatMoney(p.Amount, p.Currency),
			formatting.GetPaymentMethodName(p.Method))
		if p.Status != model.PaymentRecordCompleted {
			fmt.Fprintf(&sb, " (%s)", p.Status)
		}
		sb.WriteString("\n")
	}

	totals := service.Total(payments)
	currencies := make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		fmt.Fprintf(&sb, "\nИтого: %s", formatting.FormatMoney(totals[c], c))
	}
	return sb.String()
}

// BuildPaymentFormScreen форма платежа; для группового занятия можно выбрать участника
func BuildPaymentFormScreen(in model.PaymentInput, lesson *model.Lesson, students []model.Student) (string, *models.InlineKeyboardMarkup) {
	names := make(map[string]string, len(students))
	var payer *model.Student
	for i := range students {
		names[students[i].ID] = students[i].Name
		if students[i].ID == in.StudentID {
			payer = &students[i]
		}
	}

	var sb strings.Builder
	sb.WriteString("💰 <b>Оплата</b>\n\n")
	if lesson != nil {
		fmt.Fprintf(&sb, "🎾 Занятие %s, %s\n",
			formatting.FormatDateWithWeekday(lesson.Start), formatting.FormatTimeRange(lesson.Start, lesson.End))
	}
	fmt.Fprintf(&sb, "👤 %s\n", html.EscapeString(studentName(in.StudentID, names)))
	if payer != nil && payer.Balance != 0 {
		fmt.Fprintf(&sb, "💼 Баланс: %s\n", formatting.FormatBalance(payer.Balance, in.Currency))
	}
	fmt.Fprintf(&sb, "💵 Сумма: %s\n", formatting.FormatMoney(in.Amount, in.Currency))
	fmt.Fprintf(&sb, "💳 Способ: %s\n", formatting.GetPaymentMethodName(in.Method))

	b := keyboard.NewBuilder()

	if lesson != nil {
		if g, ok := lesson.Attendees.(model.GroupAttendees); ok && len(g.Participants) > 1 {
			participants := make([]models.InlineKeyboardButton, 0, len(g.Participants))
			for _, p := range g.Participants {
				text := truncate(studentName(p.StudentID, names), 20)
				if p.StudentID == in.StudentID {
					text = "✓ " + text
				}
				participants = append(participants, keyboard.Button(text, PrefixPayStudent+p.StudentID))
			}
			b.Grid(2, participants...)
		}
	}

	methods := make([]models.InlineKeyboardButton, 0, len(model.PaymentMethods))
	for _, m := range model.PaymentMethods {
		text := formatting.GetPaymentMethodName(m)
		if m == in.Method {
			text = "✓ " + text
		}
		methods = append(methods, keyboard.Button(text, PrefixPayMethod+string(m)))
	}
	b.Grid(3, methods...)

	b.Row(keyboard.Button("✏️ Сумма", PayAmount))
	b.AddRows(keyboard.ConfirmCancelButtons(PayConfirm, PayCancel))

	return sb.String(), b.Build()
}

// BuildMainMenu главное меню тренера
func BuildMainMenu(session *model.CoachSession, today time.Time) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("📅 Сегодня", DayData(today)),
			keyboard.Button("🗓 Неделя", WeekData(today)),
			keyboard.Button("📆 Месяц", MonthData(today)),
		).
		Row(
			keyboard.Button("➕ Занятие", CallbackNewLesson),
			keyboard.Button("👥 Ученики", PrefixStudents+"0"),
		).
		Row(keyboard.Button("👤 Профиль", CallbackProfile)).
		Build()

	name := "тренер"
	if session != nil && session.CoachName != "" {
		name = session.CoachName
	}
	return fmt.Sprintf("🎾 Привет, %s!\n\nЧто открыть?", html.EscapeString(name)), kb
}

// BuildLogoutScreen подтверждение выхода
func BuildLogoutScreen() (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder().
		AddRows(keyboard.YesNoButtons(LogoutYes, CallbackMainMenu)).
		Build()
	return "🚪 Выйти из аккаунта? Незавершённые диалоги будут сброшены.", kb
}

// BuildProfileScreen профиль тренера и настройки бота
func BuildProfileScreen(coach *model.Coach, session *model.CoachSession) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>%s</b>\n", html.EscapeString(coach.Name))
	fmt.Fprintf(&sb, "✉️ %s\n", html.EscapeString(coach.Email))
	if coach.Phone != "" {
		fmt.Fprintf(&sb, "📞 %s\n", html.EscapeString(coach.Phone))
	}

	if len(coach.WorkHours) > 0 {
		sb.WriteString("\n🕒 <b>Рабочие часы</b>\n")
		hours := append([]model.WorkHours(nil), coach.WorkHours...)
		sort.SliceStable(hours, func(i, j int) bool {
			return (hours[i].Day+6)%7 < (hours[j].Day+6)%7
		})
		for _, h := range hours {
			fmt.Fprintf(&sb, "%s: %s–%s\n", formatting.GetWeekdayShort(h.Day), h.Start, h.End)
		}
	}

	if len(coach.AcceptedPayments) > 0 {
		methods := make([]string, 0, len(coach.AcceptedPayments))
		for _, m := range coach.AcceptedPayments {
			methods = append(methods, formatting.GetPaymentMethodName(m))
		}
		fmt.Fprintf(&sb, "\n💳 Оплата: %s\n", strings.Join(methods, ", "))
	}

	if len(coach.Holidays) > 0 {
		fmt.Fprintf(&sb, "\n🏖 Выходные: %s\n", strings.Join(coach.Holidays, ", "))
	}

	digestButton := keyboard.Button("☀️ Утренняя сводка: выкл", PrefixDigest+"on")
	if session.DigestEnabled {
		sb.WriteString("\n☀️ Утренняя сводка включена")
		digestButton = keyboard.Button("☀️ Утренняя сводка: вкл", PrefixDigest+"off")
	} else {
		sb.WriteString("\n☀️ Утренняя сводка выключена")
	}

	kb := keyboard.NewBuilder().
		Row(digestButton).
		Row(keyboard.Button("✏️ Изменить имя", ProfileName)).
		AddBackButton(CallbackMainMenu).
		Build()

	return sb.String(), kb
}
