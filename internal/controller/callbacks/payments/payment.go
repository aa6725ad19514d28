package payments

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// StartForLesson открывает форму оплаты занятия
func StartForLesson(hc *common.HandlerContext, lesson model.Lesson) error {
	students, err := hc.Handler.StudentService.List(hc.Ctx, hc.Token())
	if err != nil {
		return err
	}

	in := hc.Handler.PaymentService.DefaultsForLesson(lesson, students)
	dialog := &state.Session{
		State:   state.StatePaymentForm,
		Payment: &in,
		Target:  state.Target{LessonID: lesson.ID, Day: lesson.Start},
	}
	if err := hc.SaveDialog(dialog); err != nil {
		return err
	}

	text, kb := common.BuildPaymentFormScreen(in, &lesson, students)
	return hc.Show(text, kb)
}

// StartForStudent открывает форму оплаты без привязки к занятию; сумма по умолчанию равна долгу
func StartForStudent(hc *common.HandlerContext, student model.Student) error {
	students, err := hc.Handler.StudentService.List(hc.Ctx, hc.Token())
	if err != nil {
		return err
	}

	in := model.PaymentInput{
		Currency: service.DefaultCurrency,
		Status:   model.PaymentRecordCompleted,
	}
	if student.HasDebt() {
		in.Amount = student.Balance
	}
	in = hc.Handler.PaymentService.SelectStudent(in, model.Lesson{}, student.ID, students)

	dialog := &state.Session{
		State:   state.StatePaymentForm,
		Payment: &in,
		Target:  state.Target{StudentID: student.ID},
	}
	if err := hc.SaveDialog(dialog); err != nil {
		return err
	}

	text, kb := common.BuildPaymentFormScreen(in, nil, students)
	return hc.Show(text, kb)
}

// paymentForm загруженная форма платежа вместе с занятием и учениками
type paymentForm struct {
	dialog   *state.Session
	lesson   *model.Lesson
	students []model.Student
}

func loadForm(hc *common.HandlerContext) (*paymentForm, error) {
	dialog, err := hc.Dialog()
	if err != nil {
		return nil, err
	}
	if dialog.Payment == nil {
		return nil, common.ErrFormExpired
	}

	students, err := hc.Handler.StudentService.List(hc.Ctx, hc.Token())
	if err != nil {
		return nil, err
	}

	f := &paymentForm{dialog: dialog, students: students}
	if dialog.Target.LessonID != "" {
		lesson, err := hc.Handler.LessonService.Find(hc.Ctx, hc.Token(), dialog.Target.LessonID, dialog.Target.Day)
		if err != nil {
			return nil, err
		}
		f.lesson = lesson
	}
	return f, nil
}

func (f *paymentForm) student() *model.Student {
	for i := range f.students {
		if f.students[i].ID == f.dialog.Payment.StudentID {
			return &f.students[i]
		}
	}
	return nil
}

// update применяет change к форме, сохраняет и перерисовывает её
func update(hc *common.HandlerContext, operation string, change func(f *paymentForm) error) {
	f, err := loadForm(hc)
	if err != nil {
		common.HandleError(hc, err, operation)
		return
	}
	if err := change(f); err != nil {
		common.HandleError(hc, err, operation)
		return
	}

	f.dialog.State = state.StatePaymentForm
	if err := hc.SaveDialog(f.dialog); err != nil {
		common.HandleError(hc, err, "save dialog")
		return
	}

	text, kb := common.BuildPaymentFormScreen(*f.dialog.Payment, f.lesson, f.students)
	if err := hc.Show(text, kb); err != nil {
		common.HandleError(hc, err, "show payment form")
		return
	}
	hc.Answer("")
}

// HandlePayStudent выбирает плательщика среди участников группы
func HandlePayStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixPayStudent, 1)
		if err != nil {
			common.HandleError(hc, err, "parse payment student")
			return
		}
		update(hc, "select payment student", func(f *paymentForm) error {
			if f.lesson == nil || !f.lesson.HasStudent(parts[0]) {
				return service.ErrStudentNotFound
			}
			in := h.PaymentService.SelectStudent(*f.dialog.Payment, *f.lesson, parts[0], f.students)
			f.dialog.Payment = &in
			return nil
		})
	})
}

// HandlePayMethod выбирает способ оплаты
func HandlePayMethod(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixPayMethod, 1)
		if err != nil {
			common.HandleError(hc, err, "parse payment method")
			return
		}
		update(hc, "select payment method", func(f *paymentForm) error {
			method := model.PaymentMethod(parts[0])
			for _, m := range model.PaymentMethods {
				if m == method {
					f.dialog.Payment.Method = method
					return nil
				}
			}
			return common.ErrInvalidFormat
		})
	})
}

// HandlePayAmount просит ввести сумму
func HandlePayAmount(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		dialog, err := hc.Dialog()
		if err != nil {
			common.HandleError(hc, err, "load dialog")
			return
		}
		if dialog.Payment == nil {
			common.HandleError(hc, common.ErrFormExpired, "payment amount")
			return
		}

		dialog.State = state.StatePaymentAmount
		if err := hc.SaveDialog(dialog); err != nil {
			common.HandleError(hc, err, "save dialog")
			return
		}

		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(common.PayCancel)).Build()
		text := fmt.Sprintf("💵 Введите сумму, например <code>5000</code> или <code>20 USD</code>.\nСейчас: %s",
			formatting.FormatMoney(dialog.Payment.Amount, dialog.Payment.Currency))
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show amount prompt")
			return
		}
		hc.Answer("")
	})
}

// HandlePayConfirm регистрирует платёж
func HandlePayConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		f, err := loadForm(hc)
		if err != nil {
			common.HandleError(hc, err, "load payment form")
			return
		}

		in := *f.dialog.Payment
		payer := f.student()
		if _, err := h.PaymentService.Record(hc.Ctx, hc.Token(), in, payer); err != nil {
			common.HandleError(hc, err, "record payment")
			return
		}

		hc.ClearDialog()

		name := in.StudentID
		if payer != nil {
			name = payer.Name
		}
		text := fmt.Sprintf("✅ Платёж записан\n\n👤 %s\n💵 %s, %s",
			html.EscapeString(name),
			formatting.FormatMoney(in.Amount, in.Currency),
			formatting.GetPaymentMethodName(in.Method))

		if err := hc.Show(text, doneKeyboard(f.dialog.Target)); err != nil {
			common.HandleError(hc, err, "show payment result")
			return
		}
		common.LogAndAnswer(hc, "Payment recorded from bot", "✅ Оплата принята")
	})
}

// HandlePayCancel отменяет форму платежа
func HandlePayCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		var target state.Target
		if dialog, err := hc.Dialog(); err == nil {
			target = dialog.Target
		} else {
			h.Logger.Warn("Failed to load dialog on payment cancel", zap.Error(err))
		}
		hc.ClearDialog()

		if err := hc.Show("❌ Оплата отменена", doneKeyboard(target)); err != nil {
			common.HandleError(hc, err, "show payment cancel")
			return
		}
		hc.Answer("Отменено")
	})
}

// doneKeyboard ведёт обратно к занятию или ученику, с которого начали оплату
func doneKeyboard(target state.Target) *models.InlineKeyboardMarkup {
	b := keyboard.NewBuilder()
	switch {
	case target.LessonID != "":
		b.AddBackButton(common.LessonData(common.PrefixLesson, target.LessonID, target.Day))
	case target.StudentID != "":
		b.AddBackButton(common.PrefixStudent + target.StudentID)
	}
	return b.Build()
}
