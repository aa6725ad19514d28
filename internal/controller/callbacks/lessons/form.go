package lessons

import (
	"context"
	"strconv"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// StartForm открывает форму нового занятия с началом start
func StartForm(hc *common.HandlerContext, start time.Time) error {
	students, err := hc.Handler.StudentService.List(hc.Ctx, hc.Token())
	if err != nil {
		return err
	}

	form := state.NewLessonForm(start)
	if err := hc.SaveDialog(&state.Session{State: state.StateLessonForm, Lesson: form}); err != nil {
		return err
	}

	text, kb := common.BuildLessonFormScreen(form, students)
	return hc.Show(text, kb)
}

// withForm загружает черновик занятия, применяет change и перерисовывает форму
func withForm(hc *common.HandlerContext, operation string, change func(form *state.LessonForm) error) {
	dialog, err := hc.Dialog()
	if err != nil {
		common.HandleError(hc, err, "load dialog")
		return
	}
	if dialog.State == state.StateLessonSaving {
		hc.Answer("⏳ Занятие уже создаётся")
		return
	}
	if dialog.Lesson == nil {
		common.HandleError(hc, common.ErrFormExpired, operation)
		return
	}

	if err := change(dialog.Lesson); err != nil {
		common.HandleError(hc, err, operation)
		return
	}

	dialog.State = state.StateLessonForm
	if err := hc.SaveDialog(dialog); err != nil {
		common.HandleError(hc, err, "save dialog")
		return
	}

	students, err := hc.Handler.StudentService.List(hc.Ctx, hc.Token())
	if err != nil {
		common.HandleError(hc, err, "list students")
		return
	}

	text, kb := common.BuildLessonFormScreen(dialog.Lesson, students)
	if err := hc.Show(text, kb); err != nil {
		common.HandleError(hc, err, "show lesson form")
		return
	}
	hc.Answer("")
}

// HandleFormStudent выбирает или снимает ученика
func HandleFormStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixFormStud, 1)
		if err != nil {
			common.HandleError(hc, err, "parse form student")
			return
		}
		withForm(hc, "toggle form student", func(form *state.LessonForm) error {
			form.ToggleStudent(parts[0])
			return nil
		})
	})
}

// HandleFormDuration выбирает длительность
func HandleFormDuration(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixFormDur, 1)
		if err != nil {
			common.HandleError(hc, err, "parse form duration")
			return
		}
		withForm(hc, "set form duration", func(form *state.LessonForm) error {
			minutes, err := strconv.Atoi(parts[0])
			if err != nil {
				return common.ErrInvalidFormat
			}
			if err := service.ValidateDuration(minutes); err != nil {
				return err
			}
			form.Duration = minutes
			return nil
		})
	})
}

// HandleFormRepeat выбирает количество недельных повторов (0–4)
func HandleFormRepeat(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixFormRepeat, 1)
		if err != nil {
			common.HandleError(hc, err, "parse form repeat")
			return
		}
		withForm(hc, "set form repeat", func(form *state.LessonForm) error {
			weeks, err := strconv.Atoi(parts[0])
			if err != nil {
				return common.ErrInvalidFormat
			}
			if weeks < 0 || weeks > calendar.MaxRepeatWeeks {
				return calendar.ErrInvalidRepeatWeeks
			}
			form.RepeatWeeks = weeks
			return nil
		})
	})
}

// HandleFormPrice просит ввести цену занятия
func HandleFormPrice(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	promptForm(ctx, b, callback, h, state.StateLessonPrice,
		"💰 Введите цену занятия, например <code>5000</code> или <code>20 USD</code>.\n"+
			"Для группы цена указывается за одного участника.")
}

// HandleFormTime просит ввести дату и время начала текстом
func HandleFormTime(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	promptForm(ctx, b, callback, h, state.StateLessonStart,
		"🕒 Введите дату и время начала, например <code>03.06 18:30</code> или <code>03.06.2024 18:30</code>.")
}

// promptForm переводит диалог в шаг текстового ввода, не теряя черновик
func promptForm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler, step state.UserState, prompt string) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		dialog, err := hc.Dialog()
		if err != nil {
			common.HandleError(hc, err, "load dialog")
			return
		}
		if dialog.State == state.StateLessonSaving {
			hc.Answer("⏳ Занятие уже создаётся")
			return
		}
		if dialog.Lesson == nil {
			dialog.Lesson = state.NewLessonForm(h.LessonService.DefaultStart())
		}
		dialog.State = step
		if err := hc.SaveDialog(dialog); err != nil {
			common.HandleError(hc, err, "save dialog")
			return
		}

		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(common.FormCancel)).Build()
		if err := hc.Show(prompt, kb); err != nil {
			common.HandleError(hc, err, "show form prompt")
			return
		}
		hc.Answer("")
	})
}

// HandleFormConfirm создаёт занятие и его повторы.
// Форма переводится в шаг сохранения до обращения к API, поэтому повторное нажатие ничего не создаёт.
func HandleFormConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		dialog, claimed, err := h.StateStore.Transition(hc.Ctx, hc.TelegramID, state.StateLessonForm, state.StateLessonSaving)
		if err != nil {
			common.HandleError(hc, err, "claim lesson form")
			return
		}
		if !claimed {
			hc.Answer("⏳ Занятие уже создаётся")
			return
		}
		if dialog.Lesson == nil {
			hc.ClearDialog()
			common.HandleError(hc, common.ErrFormExpired, "create lesson")
			return
		}
		form := dialog.Lesson

		result, err := h.LessonService.Create(hc.Ctx, hc.Token(), form.ServiceForm())
		if err != nil {
			// Черновик возвращается в форму, можно исправить и подтвердить снова
			dialog.State = state.StateLessonForm
			if saveErr := hc.SaveDialog(dialog); saveErr != nil {
				h.Logger.Warn("Failed to restore lesson form", zap.Error(saveErr))
			}
			common.HandleError(hc, err, "create lesson")
			return
		}

		hc.ClearDialog()

		h.Logger.Info("Lesson created from form",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.String("lesson_id", result.LessonID),
			zap.Int("repeats", len(result.Repeats)),
			zap.Int("repeats_failed", result.Failed()))

		day := calendar.StartOfDay(form.Start)
		kb := keyboard.NewBuilder().
			Row(keyboard.Button("🎾 Открыть занятие", common.LessonData(common.PrefixLesson, result.LessonID, day))).
			Row(
				keyboard.Button("📅 День", common.DayData(day)),
				keyboard.Button("🗓 Неделя", common.WeekData(day)),
			).
			Build()

		if err := hc.Show(common.BuildCreateResultText(form.Start, result), kb); err != nil {
			common.HandleError(hc, err, "show create result")
			return
		}
		hc.Answer("✅ Занятие создано")
	})
}

// HandleFormCancel отменяет создание занятия
func HandleFormCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		day := calendar.StartOfDay(h.LessonService.Now())
		if dialog, err := hc.Dialog(); err == nil && dialog.Lesson != nil {
			day = calendar.StartOfDay(dialog.Lesson.Start)
		}
		hc.ClearDialog()

		kb := keyboard.NewBuilder().Row(keyboard.Button("📅 К расписанию дня", common.DayData(day))).Build()
		if err := hc.Show("❌ Создание занятия отменено", kb); err != nil {
			common.HandleError(hc, err, "show cancel")
			return
		}
		hc.Answer("Отменено")
	})
}

// HandleNewLesson открывает форму с ближайшим свободным временем
func HandleNewLesson(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := StartForm(hc, h.LessonService.DefaultStart()); err != nil {
			common.HandleError(hc, err, "start lesson form")
			return
		}
		hc.Answer("")
	})
}
