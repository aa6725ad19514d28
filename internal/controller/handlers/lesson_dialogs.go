package handlers

import (
	"context"
	"errors"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// retryOnInvalid сообщает об ошибке ввода и оставляет шаг диалога.
// Возвращает false, если ошибка не относится к вводу.
func (h *Handlers) retryOnInvalid(ctx context.Context, b *bot.Bot, update *models.Update, err error) bool {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	h.sendError(ctx, b, update.Message.Chat.ID, "❌ "+verr.Message+"\n\nПопробуйте ещё раз или /cancel")
	return true
}

func (h *Handlers) handleLessonStartStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	start, err := h.lessonService.ParseStart(text)
	if err == nil {
		err = h.lessonService.ValidateStart(start)
	}
	if err != nil {
		if !h.retryOnInvalid(ctx, b, update, err) {
			h.reportError(ctx, b, update, err, "parse lesson start")
		}
		return
	}

	if dialog.Lesson == nil {
		dialog.Lesson = state.NewLessonForm(start)
	}
	dialog.Lesson.Start = start
	dialog.State = state.StateLessonForm
	if !h.saveDialog(ctx, b, update, dialog) {
		return
	}

	h.sendLessonForm(ctx, b, update, session, dialog.Lesson)
}

func (h *Handlers) handleLessonPriceStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	amount, currency, err := parseMoney(text)
	if err != nil {
		h.retryOnInvalid(ctx, b, update, err)
		return
	}

	if dialog.Lesson == nil {
		dialog.Lesson = state.NewLessonForm(h.lessonService.DefaultStart())
	}
	dialog.Lesson.Price = amount
	dialog.Lesson.Currency = currency
	dialog.State = state.StateLessonForm
	if !h.saveDialog(ctx, b, update, dialog) {
		return
	}

	h.sendLessonForm(ctx, b, update, session, dialog.Lesson)
}

func (h *Handlers) handleLessonRescheduleStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	start, err := h.lessonService.ParseStart(text)
	if err != nil {
		h.retryOnInvalid(ctx, b, update, err)
		return
	}

	target := dialog.Target
	lesson, err := h.lessonService.Find(ctx, session.Token, target.LessonID, target.Day)
	if err != nil {
		h.clearDialog(ctx, session.TelegramID)
		h.reportError(ctx, b, update, err, "find lesson")
		return
	}

	if err := h.lessonService.Reschedule(ctx, session.Token, *lesson, start); err != nil {
		if !h.retryOnInvalid(ctx, b, update, err) {
			h.reportError(ctx, b, update, err, "reschedule lesson")
		}
		return
	}

	h.clearDialog(ctx, session.TelegramID)
	h.logger.Info("Lesson rescheduled",
		zap.Int64("telegram_id", session.TelegramID),
		zap.String("lesson_id", lesson.ID),
		zap.Time("start", start))

	h.sendLesson(ctx, b, update, session, lesson.ID, start)
}

func (h *Handlers) handleLessonNotesStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	notes := text
	if notes == skipInput {
		notes = ""
	}

	target := dialog.Target
	if err := h.lessonService.SetNotes(ctx, session.Token, target.LessonID, notes); err != nil {
		if !h.retryOnInvalid(ctx, b, update, err) {
			h.reportError(ctx, b, update, err, "set lesson notes")
		}
		return
	}

	h.clearDialog(ctx, session.TelegramID)
	h.sendLesson(ctx, b, update, session, target.LessonID, target.Day)
}

func (h *Handlers) handlePaymentAmountStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}
	if dialog.Payment == nil {
		h.clearDialog(ctx, session.TelegramID)
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(common.ErrFormExpired))
		return
	}

	amount, currency, err := parseMoney(text)
	if err == nil && amount == 0 {
		err = &service.ValidationError{Field: "amount", Message: "сумма должна быть больше нуля"}
	}
	if err != nil {
		h.retryOnInvalid(ctx, b, update, err)
		return
	}

	dialog.Payment.Amount = amount
	dialog.Payment.Currency = currency
	dialog.State = state.StatePaymentForm
	if !h.saveDialog(ctx, b, update, dialog) {
		return
	}

	h.sendPaymentForm(ctx, b, update, session, dialog)
}

// sendPaymentForm отправляет форму платежа вместе с занятием, если оплата начата с него
func (h *Handlers) sendPaymentForm(ctx context.Context, b *bot.Bot, update *models.Update, session *model.CoachSession, dialog *state.Session) {
	list, err := h.studentService.List(ctx, session.Token)
	if err != nil {
		h.reportError(ctx, b, update, err, "list students")
		return
	}

	var lesson *model.Lesson
	if dialog.Target.LessonID != "" {
		lesson, err = h.lessonService.Find(ctx, session.Token, dialog.Target.LessonID, dialog.Target.Day)
		if err != nil {
			h.reportError(ctx, b, update, err, "find lesson")
			return
		}
	}

	text, kb := common.BuildPaymentFormScreen(*dialog.Payment, lesson, list)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

func (h *Handlers) handleProfileNameStep(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	if err := h.authService.UpdateName(ctx, session, text); err != nil {
		if !h.retryOnInvalid(ctx, b, update, err) {
			h.reportError(ctx, b, update, err, "update profile name")
		}
		return
	}

	h.clearDialog(ctx, session.TelegramID)
	h.sendProfile(ctx, b, update, session)
}
