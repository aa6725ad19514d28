package lessons

import (
	"context"
	"strconv"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleDay показывает сетку дня
func HandleDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixDay, 1)
		if err != nil {
			common.HandleError(hc, err, "parse day")
			return
		}
		day, err := common.ParseDayKey(parts[0], h.LessonService.Location())
		if err != nil {
			common.HandleError(hc, err, "parse day")
			return
		}

		if err := ShowDay(hc, day); err != nil {
			common.HandleError(hc, err, "show day")
			return
		}
		hc.Answer("")
	})
}

// HandleWeek показывает неделю картинкой с кнопками дней
func HandleWeek(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixWeek, 1)
		if err != nil {
			common.HandleError(hc, err, "parse week")
			return
		}
		day, err := common.ParseDayKey(parts[0], h.LessonService.Location())
		if err != nil {
			common.HandleError(hc, err, "parse week")
			return
		}

		if err := ShowWeek(hc, day); err != nil {
			common.HandleError(hc, err, "show week")
			return
		}
		hc.Answer("")
	})
}

// HandleMonth показывает месячную сетку
func HandleMonth(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixMonth, 1)
		if err != nil {
			common.HandleError(hc, err, "parse month")
			return
		}
		month, err := common.ParseMonthKey(parts[0], h.LessonService.Location())
		if err != nil {
			common.HandleError(hc, err, "parse month")
			return
		}

		view, err := h.LessonService.Month(hc.Ctx, hc.Token(), month)
		if err != nil {
			common.HandleError(hc, err, "load month")
			return
		}

		text, kb := common.BuildMonthScreen(view)
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show month")
			return
		}
		hc.Answer("")
	})
}

// HandleSlot обрабатывает нажатие на слот дня: открыть занятие, создать новое или ничего
func HandleSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		// Формат: sl:20240603:570
		parts, err := common.ParseArgs(callback.Data, common.PrefixSlot, 2)
		if err != nil {
			common.HandleError(hc, err, "parse slot")
			return
		}
		day, err := common.ParseDayKey(parts[0], h.LessonService.Location())
		if err != nil {
			common.HandleError(hc, err, "parse slot")
			return
		}
		minute, err := strconv.Atoi(parts[1])
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse slot")
			return
		}

		view, _, err := h.LessonService.Day(hc.Ctx, hc.Token(), day)
		if err != nil {
			common.HandleError(hc, err, "load day")
			return
		}
		slot, ok := view.FindSlot(minute)
		if !ok {
			common.HandleError(hc, common.ErrInvalidFormat, "find slot")
			return
		}

		click := slot.Resolve()
		switch click.Action {
		case calendar.ClickEdit:
			if err := ShowLesson(hc, click.Entry.ID, day); err != nil {
				common.HandleError(hc, err, "show lesson")
				return
			}
			hc.Answer("")
		case calendar.ClickCreate:
			if err := StartForm(hc, h.LessonService.CreateStartForSlot(click.Start)); err != nil {
				common.HandleError(hc, err, "start lesson form")
				return
			}
			hc.Answer("")
		default:
			hc.Answer("⏳ Это время уже прошло")
		}
	})
}

// ShowDay перерисовывает текущее сообщение сеткой дня
func ShowDay(hc *common.HandlerContext, day time.Time) error {
	view, _, err := hc.Handler.LessonService.Day(hc.Ctx, hc.Token(), day)
	if err != nil {
		return err
	}
	text, kb := common.BuildDayScreen(view)
	return hc.Show(text, kb)
}

// ShowWeek заменяет текущее сообщение картинкой недели.
// Если картинку нарисовать не удалось, неделя показывается текстом.
func ShowWeek(hc *common.HandlerContext, anyDay time.Time) error {
	ls := hc.Handler.LessonService

	week, lessons, err := ls.Week(hc.Ctx, hc.Token(), anyDay)
	if err != nil {
		return err
	}

	now := ls.Now()
	caption, kb := common.BuildWeekScreen(week, now)

	img, err := common.GenerateWeekImage(week, lessons, ls.Window(), now)
	if err != nil {
		hc.Handler.Logger.Warn("Failed to render week image",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
		return hc.Show(caption, kb)
	}

	if hc.Message != nil {
		_ = hc.DeleteMessage()
	}
	return hc.SendPhoto("week_"+common.DayKey(week.Start)+".png", img, caption, kb)
}
