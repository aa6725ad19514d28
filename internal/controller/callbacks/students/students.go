package students

import (
	"context"
	"fmt"
	"html"
	"strconv"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/payments"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AddStudentPrompt первый шаг добавления ученика
const AddStudentPrompt = "👤 <b>Новый ученик</b>\n\nШаг 1 из 3: введите имя ученика."

// HandleList показывает страницу списка учеников
func HandleList(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixStudents, 1)
		if err != nil {
			common.HandleError(hc, err, "parse students page")
			return
		}
		page, err := strconv.Atoi(parts[0])
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse students page")
			return
		}

		hc.ClearDialog()

		list, err := h.StudentService.List(hc.Ctx, hc.Token())
		if err != nil {
			common.HandleError(hc, err, "list students")
			return
		}

		text, kb := common.BuildStudentsScreen(list, page)
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show students")
			return
		}
		hc.Answer("")
	})
}

// loadStudent разбирает ID ученика из callback и загружает его
func loadStudent(hc *common.HandlerContext, prefix string) (*model.Student, error) {
	parts, err := common.ParseArgs(hc.Callback.Data, prefix, 1)
	if err != nil {
		return nil, err
	}
	return hc.Handler.StudentService.Get(hc.Ctx, hc.Token(), parts[0])
}

// HandleStudent показывает карточку ученика
func HandleStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		student, err := loadStudent(hc, common.PrefixStudent)
		if err != nil {
			common.HandleError(hc, err, "load student")
			return
		}

		hc.ClearDialog()

		text, kb := common.BuildStudentScreen(*student)
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show student")
			return
		}
		hc.Answer("")
	})
}

// HandleDelete спрашивает подтверждение удаления ученика
func HandleDelete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		student, err := loadStudent(hc, common.PrefixStudentDelete)
		if err != nil {
			common.HandleError(hc, err, "load student")
			return
		}

		text, kb := common.BuildStudentDeleteScreen(*student)
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show student delete")
			return
		}
		hc.Answer("")
	})
}

// HandleDeleteConfirm удаляет ученика и возвращает к списку
func HandleDeleteConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		parts, err := common.ParseArgs(callback.Data, common.PrefixStudentDeleteOK, 1)
		if err != nil {
			common.HandleError(hc, err, "parse student delete")
			return
		}

		if err := h.StudentService.Delete(hc.Ctx, hc.Token(), parts[0]); err != nil {
			common.HandleError(hc, err, "delete student")
			return
		}

		list, err := h.StudentService.List(hc.Ctx, hc.Token())
		if err != nil {
			common.HandleError(hc, err, "list students")
			return
		}
		text, kb := common.BuildStudentsScreen(list, 0)
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show students")
			return
		}
		common.LogAndAnswer(hc, "Student deleted from bot", "🗑 Ученик удалён")
	})
}

// HandleRename просит ввести новое имя ученика
func HandleRename(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		student, err := loadStudent(hc, common.PrefixStudentRename)
		if err != nil {
			common.HandleError(hc, err, "load student")
			return
		}

		if err := hc.SaveDialog(&state.Session{
			State:  state.StateStudentRename,
			Target: state.Target{StudentID: student.ID},
		}); err != nil {
			common.HandleError(hc, err, "save dialog")
			return
		}

		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(common.PrefixStudent + student.ID)).Build()
		text := fmt.Sprintf("✏️ Текущее имя: <b>%s</b>\n\nВведите новое имя ученика.", html.EscapeString(student.Name))
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show rename prompt")
			return
		}
		hc.Answer("")
	})
}

// HandlePayments показывает платежи ученика
func HandlePayments(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		student, err := loadStudent(hc, common.PrefixStudentPayments)
		if err != nil {
			common.HandleError(hc, err, "load student")
			return
		}

		list, err := h.PaymentService.List(hc.Ctx, hc.Token(), student.ID)
		if err != nil {
			common.HandleError(hc, err, "list payments")
			return
		}

		kb := keyboard.NewBuilder().
			Row(keyboard.Button("💰 Принять оплату", common.PrefixStudentPay+student.ID)).
			AddBackButton(common.PrefixStudent + student.ID).
			Build()
		if err := hc.Show(common.BuildPaymentsText(*student, list), kb); err != nil {
			common.HandleError(hc, err, "show payments")
			return
		}
		hc.Answer("")
	})
}

// HandlePay открывает форму оплаты для ученика
func HandlePay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		student, err := loadStudent(hc, common.PrefixStudentPay)
		if err != nil {
			common.HandleError(hc, err, "load student")
			return
		}

		if err := payments.StartForStudent(hc, *student); err != nil {
			common.HandleError(hc, err, "start student payment")
			return
		}
		hc.Answer("")
	})
}

// HandleStatement отправляет выписку ученика файлом PDF или CSV
func HandleStatement(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		// Формат: sst:studentID:pdf
		parts, err := common.ParseArgs(callback.Data, common.PrefixStatement, 2)
		if err != nil {
			common.HandleError(hc, err, "parse statement")
			return
		}

		format := service.StatementFormat(parts[1])
		if format != service.StatementPDF && format != service.StatementCSV {
			common.HandleError(hc, common.ErrInvalidFormat, "parse statement")
			return
		}

		file, err := h.StatementService.Render(hc.Ctx, hc.Session, parts[0], service.DefaultStatementDays, format)
		if err != nil {
			common.HandleError(hc, err, "render statement")
			return
		}

		caption := fmt.Sprintf("📄 Выписка за последние %d дней", service.DefaultStatementDays)
		if err := hc.SendDocument(file.Name, file.Data, caption); err != nil {
			common.HandleError(hc, err, "send statement")
			return
		}
		common.LogAndAnswer(hc, "Statement sent", "📄 Выписка отправлена")
	})
}

// HandleAdd начинает добавление ученика
func HandleAdd(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := hc.SaveDialog(&state.Session{State: state.StateStudentName}); err != nil {
			common.HandleError(hc, err, "save dialog")
			return
		}

		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(common.PrefixStudents + "0")).Build()
		if err := hc.Show(AddStudentPrompt, kb); err != nil {
			common.HandleError(hc, err, "show add student prompt")
			return
		}
		hc.Answer("")
	})
}
