package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/lessons"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/payments"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/profile"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/students"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Main Callback Router
// ========================

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	switch {
	// ===== Common Navigation =====
	case data == common.CallbackNoop:
		common.AnswerCallback(ctx, b, callback.ID, "")
	case data == common.CallbackMainMenu:
		profile.HandleMainMenu(ctx, b, callback, h)

	// ===== Calendar =====
	case strings.HasPrefix(data, common.PrefixDay):
		lessons.HandleDay(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixWeek):
		lessons.HandleWeek(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixMonth):
		lessons.HandleMonth(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixSlot):
		lessons.HandleSlot(ctx, b, callback, h)

	// ===== Lesson Card =====
	case strings.HasPrefix(data, common.PrefixLessonStatus):
		lessons.HandleStatus(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonDelete):
		lessons.HandleDelete(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonDeleteOK):
		lessons.HandleDeleteConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonDuration):
		lessons.HandleDuration(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonSetDur):
		lessons.HandleSetDuration(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonShift):
		lessons.HandleShift(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonTime):
		lessons.HandleTime(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonRepeatSet):
		lessons.HandleRepeatSet(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonRepeat):
		lessons.HandleRepeat(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonNotes):
		lessons.HandleNotes(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLessonPay):
		lessons.HandlePay(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixLesson):
		lessons.HandleLesson(ctx, b, callback, h)

	// ===== New Lesson Form =====
	case data == common.CallbackNewLesson:
		lessons.HandleNewLesson(ctx, b, callback, h)
	case data == common.NewLessonTyped:
		lessons.HandleFormTime(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixFormStud):
		lessons.HandleFormStudent(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixFormDur):
		lessons.HandleFormDuration(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixFormRepeat):
		lessons.HandleFormRepeat(ctx, b, callback, h)
	case data == common.FormPrice:
		lessons.HandleFormPrice(ctx, b, callback, h)
	case data == common.FormConfirm:
		lessons.HandleFormConfirm(ctx, b, callback, h)
	case data == common.FormCancel:
		lessons.HandleFormCancel(ctx, b, callback, h)

	// ===== Payments =====
	case strings.HasPrefix(data, common.PrefixPayStudent):
		payments.HandlePayStudent(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixPayMethod):
		payments.HandlePayMethod(ctx, b, callback, h)
	case data == common.PayAmount:
		payments.HandlePayAmount(ctx, b, callback, h)
	case data == common.PayConfirm:
		payments.HandlePayConfirm(ctx, b, callback, h)
	case data == common.PayCancel:
		payments.HandlePayCancel(ctx, b, callback, h)

	// ===== Students =====
	case strings.HasPrefix(data, common.PrefixStudents):
		students.HandleList(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixStudentDeleteOK):
		students.HandleDeleteConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixStudentDelete):
		students.HandleDelete(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixStudentRename):
		students.HandleRename(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixStudentPayments):
		students.HandlePayments(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixStudentPay):
		students.HandlePay(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixStatement):
		students.HandleStatement(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixStudent):
		students.HandleStudent(ctx, b, callback, h)
	case data == common.StudentAdd:
		students.HandleAdd(ctx, b, callback, h)

	// ===== Profile =====
	case data == common.CallbackProfile:
		profile.HandleProfile(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixDigest):
		profile.HandleDigest(ctx, b, callback, h)
	case data == common.ProfileName:
		profile.HandleName(ctx, b, callback, h)
	case data == common.LogoutYes:
		profile.HandleLogout(ctx, b, callback, h)

	default:
		h.Logger.Warn("Unknown callback data",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallback(ctx, b, callback.ID, "⚠️ Кнопка устарела")
	}
}
