package lessons

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/payments"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ShowLesson показывает карточку занятия
func ShowLesson(hc *common.HandlerContext, lessonID string, day time.Time) error {
	lesson, err := hc.Handler.LessonService.Find(hc.Ctx, hc.Token(), lessonID, day)
	if err != nil {
		return err
	}

	names, err := hc.Handler.StudentService.Names(hc.Ctx, hc.Token())
	if err != nil {
		hc.Handler.Logger.Warn("Failed to load student names",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
	}

	text, kb := common.BuildLessonScreen(*lesson, names)
	return hc.Show(text, kb)
}

// loadLesson разбирает callback занятия и загружает само занятие
func loadLesson(hc *common.HandlerContext, prefix string, withArg bool) (*model.Lesson, common.LessonRef, error) {
	ref, err := common.ParseLessonData(hc.Callback.Data, prefix, hc.Handler.LessonService.Location(), withArg)
	if err != nil {
		return nil, ref, err
	}
	lesson, err := hc.Handler.LessonService.Find(hc.Ctx, hc.Token(), ref.ID, ref.Day)
	if err != nil {
		return nil, ref, err
	}
	return lesson, ref, nil
}

// HandleLesson открывает карточку занятия
func HandleLesson(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		ref, err := common.ParseLessonData(callback.Data, common.PrefixLesson, h.LessonService.Location(), false)
		if err != nil {
			common.HandleError(hc, err, "parse lesson")
			return
		}

		// Возврат к карточке отменяет начатый ввод времени или заметки
		hc.ClearDialog()

		if err := ShowLesson(hc, ref.ID, ref.Day); err != nil {
			common.HandleError(hc, err, "show lesson")
			return
		}
		hc.Answer("")
	})
}

// HandleStatus меняет статус занятия
func HandleStatus(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		// Формат: lst:id:20240603:completed
		ref, err := common.ParseLessonData(callback.Data, common.PrefixLessonStatus, h.LessonService.Location(), true)
		if err != nil {
			common.HandleError(hc, err, "parse lesson status")
			return
		}

		status := model.LessonStatus(ref.Arg)
		if err := h.LessonService.SetStatus(hc.Ctx, hc.Token(), ref.ID, status); err != nil {
			common.HandleError(hc, err, "set lesson status")
			return
		}

		if err := ShowLesson(hc, ref.ID, ref.Day); err != nil {
			common.HandleError(hc, err, "show lesson")
			return
		}

		display := formatting.GetLessonStatusDisplay(status)
		common.LogAndAnswer(hc, "Lesson status changed", fmt.Sprintf("%s %s", display.Emoji, display.Text))
	})
}

// HandleDelete спрашивает подтверждение удаления
func HandleDelete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		lesson, _, err := loadLesson(hc, common.PrefixLessonDelete, false)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}

		text, kb := common.BuildDeleteConfirmScreen(*lesson)
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show delete confirm")
			return
		}
		hc.Answer("")
	})
}

// HandleDeleteConfirm удаляет занятие и возвращает к дню
func HandleDeleteConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		ref, err := common.ParseLessonData(callback.Data, common.PrefixLessonDeleteOK, h.LessonService.Location(), false)
		if err != nil {
			common.HandleError(hc, err, "parse lesson delete")
			return
		}

		if err := h.LessonService.Delete(hc.Ctx, hc.Token(), ref.ID); err != nil {
			common.HandleError(hc, err, "delete lesson")
			return
		}

		if err := ShowDay(hc, ref.Day); err != nil {
			common.HandleError(hc, err, "show day")
			return
		}
		common.LogAndAnswer(hc, "Lesson deleted", "🗑 Занятие удалено")
	})
}

// HandleDuration показывает выбор длительности
func HandleDuration(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		lesson, _, err := loadLesson(hc, common.PrefixLessonDuration, false)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}

		text, kb := common.BuildDurationScreen(*lesson)
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show duration")
			return
		}
		hc.Answer("")
	})
}

// HandleSetDuration меняет длительность, начало не меняется
func HandleSetDuration(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		// Формат: lds:id:20240603:60
		lesson, ref, err := loadLesson(hc, common.PrefixLessonSetDur, true)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}
		minutes, err := strconv.Atoi(ref.Arg)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse duration")
			return
		}

		if err := h.LessonService.SetDuration(hc.Ctx, hc.Token(), *lesson, minutes); err != nil {
			common.HandleError(hc, err, "set lesson duration")
			return
		}

		if err := ShowLesson(hc, ref.ID, ref.Day); err != nil {
			common.HandleError(hc, err, "show lesson")
			return
		}
		common.LogAndAnswer(hc, "Lesson duration changed", "⏱ "+formatting.FormatDuration(minutes))
	})
}

// HandleShift сдвигает занятие на ±30 минут
func HandleShift(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		// Формат: lsh:id:20240603:-30
		lesson, ref, err := loadLesson(hc, common.PrefixLessonShift, true)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}
		shift, err := strconv.Atoi(ref.Arg)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse shift")
			return
		}

		start := lesson.Start.Add(time.Duration(shift) * time.Minute)
		if err := h.LessonService.Reschedule(hc.Ctx, hc.Token(), *lesson, start); err != nil {
			common.HandleError(hc, err, "shift lesson")
			return
		}

		if err := ShowLesson(hc, lesson.ID, start); err != nil {
			common.HandleError(hc, err, "show lesson")
			return
		}
		common.LogAndAnswer(hc, "Lesson shifted", "🕒 "+formatting.FormatTime(start))
	})
}

// HandleTime просит ввести новое время начала
func HandleTime(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		lesson, ref, err := loadLesson(hc, common.PrefixLessonTime, false)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}

		if err := hc.SaveDialog(&state.Session{
			State:  state.StateLessonReschedule,
			Target: state.Target{LessonID: lesson.ID, Day: ref.Day},
		}); err != nil {
			common.HandleError(hc, err, "save dialog")
			return
		}

		kb := keyboard.NewBuilder().
			Row(keyboard.CancelButton(common.LessonData(common.PrefixLesson, lesson.ID, ref.Day))).
			Build()
		text := fmt.Sprintf("🕒 <b>Перенос занятия</b>\n\nСейчас: %s, %s\n\n"+
			"Введите новое время начала, например <code>%s</code>",
			formatting.FormatDateWithWeekday(lesson.Start),
			formatting.FormatTime(lesson.Start),
			lesson.Start.Format("02.01.2006 15:04"))

		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show reschedule prompt")
			return
		}
		hc.Answer("")
	})
}

// HandleRepeat показывает выбор количества повторов
func HandleRepeat(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		lesson, _, err := loadLesson(hc, common.PrefixLessonRepeat, false)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}

		text, kb := common.BuildRepeatScreen(*lesson)
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show repeat")
			return
		}
		hc.Answer("")
	})
}

// HandleRepeatSet создаёт недельные копии занятия и показывает результат по каждой
func HandleRepeatSet(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		// Формат: lrn:id:20240603:2
		lesson, ref, err := loadLesson(hc, common.PrefixLessonRepeatSet, true)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}
		weeks, err := strconv.Atoi(ref.Arg)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse repeat")
			return
		}

		outcomes, err := h.LessonService.Repeat(hc.Ctx, hc.Token(), *lesson, weeks, h.StudentService)
		if err != nil {
			common.HandleError(hc, err, "repeat lesson")
			return
		}

		kb := keyboard.NewBuilder().
			Row(keyboard.Button("🗓 Неделя", common.WeekData(ref.Day))).
			AddBackButton(common.LessonData(common.PrefixLesson, lesson.ID, ref.Day)).
			Build()
		text := fmt.Sprintf("🔁 <b>Повтор занятия</b> %s, %s\n%s",
			formatting.FormatDateWithWeekday(lesson.Start),
			formatting.FormatTime(lesson.Start),
			common.BuildRepeatOutcomesText(outcomes))

		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show repeat outcomes")
			return
		}
		common.LogAndAnswer(hc, "Lesson repeated", "🔁 Готово")
	})
}

// HandleNotes просит ввести заметку к занятию
func HandleNotes(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		lesson, ref, err := loadLesson(hc, common.PrefixLessonNotes, false)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}

		if err := hc.SaveDialog(&state.Session{
			State:  state.StateLessonNotes,
			Target: state.Target{LessonID: lesson.ID, Day: ref.Day},
		}); err != nil {
			common.HandleError(hc, err, "save dialog")
			return
		}

		kb := keyboard.NewBuilder().
			Row(keyboard.CancelButton(common.LessonData(common.PrefixLesson, lesson.ID, ref.Day))).
			Build()
		text := "📝 Введите заметку к занятию.\nОтправьте <code>-</code>, чтобы удалить заметку."

		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show notes prompt")
			return
		}
		hc.Answer("")
	})
}

// HandlePay открывает форму оплаты занятия
func HandlePay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		lesson, _, err := loadLesson(hc, common.PrefixLessonPay, false)
		if err != nil {
			common.HandleError(hc, err, "load lesson")
			return
		}

		if err := payments.StartForLesson(hc, *lesson); err != nil {
			common.HandleError(hc, err, "start lesson payment")
			return
		}
		hc.Answer("")
	})
}
