package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/coach_bot/internal/apiclient"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// skipInput пропускает необязательный шаг
const skipInput = "-"

// HandleTextMessage обрабатывает текст, введённый на шаге диалога
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Неизвестные команды сюда не попадают как ввод
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	dialog := h.dialog(ctx, telegramID)

	// Текст не логируется: на некоторых шагах это пароль
	h.logger.Debug("HandleTextMessage called",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(dialog.State)))

	if dialog.State.IsSecret() {
		h.deleteInput(ctx, b, update)
	}

	text := strings.TrimSpace(update.Message.Text)

	switch dialog.State {
	case state.StateLoginEmail:
		h.handleLoginEmailStep(ctx, b, update, dialog, text)
	case state.StateLoginPassword:
		h.handleLoginPasswordStep(ctx, b, update, dialog, text)
	case state.StateRegisterEmail:
		h.handleRegisterEmailStep(ctx, b, update, dialog, text)
	case state.StateRegisterName:
		h.handleRegisterNameStep(ctx, b, update, dialog, text)
	case state.StateRegisterPhone:
		h.handleRegisterPhoneStep(ctx, b, update, dialog, text)
	case state.StateRegisterPassword:
		h.handleRegisterPasswordStep(ctx, b, update, dialog, text)
	case state.StateStudentName:
		h.handleStudentNameStep(ctx, b, update, dialog, text)
	case state.StateStudentPhone:
		h.handleStudentPhoneStep(ctx, b, update, dialog, text)
	case state.StateStudentEmail:
		h.handleStudentEmailStep(ctx, b, update, dialog, text)
	case state.StateStudentRename:
		h.handleStudentRenameStep(ctx, b, update, dialog, text)
	case state.StateLessonStart:
		h.handleLessonStartStep(ctx, b, update, dialog, text)
	case state.StateLessonPrice:
		h.handleLessonPriceStep(ctx, b, update, dialog, text)
	case state.StateLessonReschedule:
		h.handleLessonRescheduleStep(ctx, b, update, dialog, text)
	case state.StateLessonNotes:
		h.handleLessonNotesStep(ctx, b, update, dialog, text)
	case state.StatePaymentAmount:
		h.handlePaymentAmountStep(ctx, b, update, dialog, text)
	case state.StateProfileName:
		h.handleProfileNameStep(ctx, b, update, text)
	case state.StateLessonForm, state.StatePaymentForm:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "👆 Заполните форму кнопками выше или /cancel")
	case state.StateLessonSaving:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "⏳ Занятие создаётся, подождите")
	default:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🤔 Не понял. Список команд: /help")
	}
}

// deleteInput удаляет сообщение пользователя с паролем из чата
func (h *Handlers) deleteInput(ctx context.Context, b *bot.Bot, update *models.Update) {
	_, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    update.Message.Chat.ID,
		MessageID: update.Message.ID,
	})
	if err != nil {
		h.logger.Warn("Failed to delete password message",
			zap.Int64("telegram_id", update.Message.From.ID),
			zap.Error(err))
	}
}

// advance переводит диалог на следующий шаг и отправляет подсказку
func (h *Handlers) advance(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, next state.UserState, prompt string) {
	dialog.State = next
	if !h.saveDialog(ctx, b, update, dialog) {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, prompt)
}

func (h *Handlers) handleLoginEmailStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	if !strings.Contains(text, "@") {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Это не похоже на email. Попробуйте ещё раз:")
		return
	}

	dialog.Auth.Email = text
	h.advance(ctx, b, update, dialog, state.StateLoginPassword,
		"🔒 Введите пароль. Сообщение с паролем будет удалено из чата.")
}

func (h *Handlers) handleLoginPasswordStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, password string) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	session, err := h.authService.Login(ctx, telegramID, chatID, service.Credentials{
		Email:    dialog.Auth.Email,
		Password: password,
	})
	if err != nil {
		h.handleAuthError(ctx, b, update, dialog, err, "login")
		return
	}

	h.clearDialog(ctx, telegramID)
	h.logger.Info("Coach logged in", zap.Int64("telegram_id", telegramID), zap.String("coach_id", session.CoachID))

	text, kb := common.BuildMainMenu(session, h.lessonService.Now())
	h.sendScreen(ctx, b, chatID, "✅ Вход выполнен\n\n"+text, kb)
}

func (h *Handlers) handleRegisterEmailStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	if !strings.Contains(text, "@") {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Это не похоже на email. Попробуйте ещё раз:")
		return
	}

	dialog.Auth.Email = text
	h.advance(ctx, b, update, dialog, state.StateRegisterName, "Шаг 2 из 4: как вас зовут?")
}

func (h *Handlers) handleRegisterNameStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	if len([]rune(text)) < 2 {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Имя слишком короткое. Попробуйте ещё раз:")
		return
	}

	dialog.Auth.Name = text
	h.advance(ctx, b, update, dialog, state.StateRegisterPhone,
		"Шаг 3 из 4: телефон. Отправьте «-», чтобы пропустить.")
}

func (h *Handlers) handleRegisterPhoneStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	if text != skipInput {
		dialog.Auth.Phone = text
	}
	h.advance(ctx, b, update, dialog, state.StateRegisterPassword,
		"Шаг 4 из 4: придумайте пароль (минимум 6 символов). Сообщение с паролем будет удалено из чата.")
}

func (h *Handlers) handleRegisterPasswordStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, password string) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	session, err := h.authService.Register(ctx, telegramID, chatID, service.Registration{
		Email:    dialog.Auth.Email,
		Password: password,
		Name:     dialog.Auth.Name,
		Phone:    dialog.Auth.Phone,
	})
	if err != nil {
		h.handleAuthError(ctx, b, update, dialog, err, "register")
		return
	}

	h.clearDialog(ctx, telegramID)
	h.logger.Info("Coach registered", zap.Int64("telegram_id", telegramID), zap.String("coach_id", session.CoachID))

	text, kb := common.BuildMainMenu(session, h.lessonService.Now())
	h.sendScreen(ctx, b, chatID, "🎉 Аккаунт создан\n\n"+text, kb)
}

// handleAuthError сообщает об ошибке входа или регистрации.
// Ошибка ввода оставляет шаг пароля, отказ API начинает ввод заново.
func (h *Handlers) handleAuthError(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, err error, operation string) {
	chatID := update.Message.Chat.ID

	var verr *service.ValidationError
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &verr) && verr.Field == "password":
		h.sendError(ctx, b, chatID, "❌ "+verr.Message+"\n\nПопробуйте ещё раз или /cancel")
		return
	case errors.As(err, &verr):
		h.sendError(ctx, b, chatID, "❌ "+verr.Message)
	case apiclient.IsUnauthorized(err):
		h.sendError(ctx, b, chatID, "❌ Неверный email или пароль")
	case errors.As(err, &apiErr) && apiErr.Status < 500:
		h.sendError(ctx, b, chatID, "❌ "+apiErr.Message)
	default:
		h.logger.Error("Auth request failed",
			zap.String("operation", operation),
			zap.Int64("telegram_id", update.Message.From.ID),
			zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	// Начинаем сначала, сохранив введённые данные кроме пароля
	first := state.StateLoginEmail
	prompt := "🔑 Введите email ещё раз или /cancel"
	if dialog.State == state.StateRegisterPassword {
		first = state.StateRegisterEmail
		prompt = "📝 Шаг 1 из 4: введите email ещё раз или /cancel"
	}
	dialog.Auth = state.AuthForm{}
	h.advance(ctx, b, update, dialog, first, prompt)
}

func (h *Handlers) handleStudentNameStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	if len([]rune(text)) < 2 {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Имя слишком короткое. Попробуйте ещё раз:")
		return
	}

	dialog.Student.Name = text
	h.advance(ctx, b, update, dialog, state.StateStudentPhone,
		"Шаг 2 из 3: телефон ученика. Отправьте «-», чтобы пропустить.")
}

func (h *Handlers) handleStudentPhoneStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	if text != skipInput {
		dialog.Student.Phone = text
	}
	h.advance(ctx, b, update, dialog, state.StateStudentEmail,
		"Шаг 3 из 3: email ученика. Отправьте «-», чтобы пропустить.")
}

func (h *Handlers) handleStudentEmailStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	if text != skipInput {
		dialog.Student.Email = text
	}

	id, err := h.studentService.Create(ctx, session.Token, dialog.Student)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) && verr.Field == "email" {
			// Остаёмся на шаге email
			h.sendError(ctx, b, update.Message.Chat.ID, "❌ "+verr.Message+"\n\nВведите email ещё раз или «-»:")
			return
		}
		h.reportError(ctx, b, update, err, "create student")
		return
	}

	h.clearDialog(ctx, session.TelegramID)
	h.logger.Info("Student created", zap.Int64("telegram_id", session.TelegramID), zap.String("student_id", id))

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Ученик добавлен")
	h.sendStudent(ctx, b, update, session, id)
}

func (h *Handlers) handleStudentRenameStep(ctx context.Context, b *bot.Bot, update *models.Update, dialog *state.Session, text string) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	studentID := dialog.Target.StudentID
	if err := h.studentService.Rename(ctx, session.Token, studentID, text); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.sendError(ctx, b, update.Message.Chat.ID, "❌ "+verr.Message+"\n\nПопробуйте ещё раз:")
			return
		}
		h.reportError(ctx, b, update, err, "rename student")
		return
	}

	h.clearDialog(ctx, session.TelegramID)
	h.sendStudent(ctx, b, update, session, studentID)
}
