package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 <b>Справка по командам</b>\n\n" +
	"<b>Аккаунт</b>\n" +
	"/login - Войти в аккаунт тренера\n" +
	"/register - Создать аккаунт\n" +
	"/logout - Выйти\n" +
	"/profile - Профиль и настройки\n" +
	"/digest - Утренняя сводка вкл/выкл\n\n" +
	"<b>Расписание</b>\n" +
	"/day - Сетка дня\n" +
	"/week - Неделя картинкой\n" +
	"/month - Календарь на месяц\n" +
	"/lessons - Занятия на 7 дней\n" +
	"/newlesson - Новое занятие, можно сразу с временем: <code>/newlesson 03.06 18:30</code>\n\n" +
	"<b>Ученики</b>\n" +
	"/students - Список учеников\n" +
	"/addstudent - Добавить ученика\n" +
	"/payments - Долги и оплаты\n\n" +
	"/cancel - Отменить текущее действие"

// commandArgs возвращает текст после команды
func commandArgs(text string) string {
	_, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(args)
}

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	session, err := h.authService.Session(ctx, update.Message.From.ID)
	if err != nil {
		if !service.IsAuthError(err) {
			h.logger.Error("Failed to get session", zap.Int64("telegram_id", update.Message.From.ID), zap.Error(err))
		}
		h.sendMessage(ctx, b, chatID,
			"🎾 Привет! Это бот для расписания тренера.\n\n"+
				"Войдите в аккаунт: /login\n"+
				"Или создайте новый: /register\n\n"+
				"Справка: /help")
		return
	}

	text, kb := common.BuildMainMenu(session, h.lessonService.Now())
	h.sendScreen(ctx, b, chatID, text, kb)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel отменяет текущий диалог
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.dialog(ctx, telegramID).State == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "ℹ️ Нет активных операций для отмены")
		return
	}

	h.clearDialog(ctx, telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Действие отменено")
}

// HandleLogin начинает вход: сначала email, затем пароль
func (h *Handlers) HandleLogin(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if session, err := h.authService.Session(ctx, update.Message.From.ID); err == nil {
		h.sendMessage(ctx, b, chatID, "✅ Вы уже вошли как "+session.Email+". Выйти: /logout")
		return
	}

	if !h.saveDialog(ctx, b, update, &state.Session{State: state.StateLoginEmail}) {
		return
	}
	h.sendMessage(ctx, b, chatID, "🔑 <b>Вход</b>\n\nВведите email аккаунта.\nОтмена: /cancel")
}

// HandleRegister начинает регистрацию: email, имя, телефон, пароль
func (h *Handlers) HandleRegister(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if _, err := h.authService.Session(ctx, update.Message.From.ID); err == nil {
		h.sendMessage(ctx, b, chatID, "✅ Вы уже вошли. Чтобы создать другой аккаунт, сначала /logout")
		return
	}

	if !h.saveDialog(ctx, b, update, &state.Session{State: state.StateRegisterEmail}) {
		return
	}
	h.sendMessage(ctx, b, chatID, "📝 <b>Регистрация</b>\n\nШаг 1 из 4: введите email.\nОтмена: /cancel")
}

// HandleLogout спрашивает подтверждение выхода
func (h *Handlers) HandleLogout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	if _, err := h.authService.Session(ctx, update.Message.From.ID); err != nil {
		if errors.Is(err, service.ErrNoSession) {
			h.sendMessage(ctx, b, update.Message.Chat.ID, "ℹ️ Вы и так не вошли")
			return
		}
		if !service.IsAuthError(err) {
			h.reportError(ctx, b, update, err, "logout")
			return
		}
	}

	text, kb := common.BuildLogoutScreen()
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleProfile показывает профиль тренера
func (h *Handlers) HandleProfile(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	h.sendProfile(ctx, b, update, session)
}

// HandleDigest переключает утреннюю сводку. Принимает on/off или меняет на противоположное.
func (h *Handlers) HandleDigest(ctx context.Context, b *bot.Bot, update *models.Update) {
	session, ok := h.requireSession(ctx, b, update)
	if !ok {
		return
	}

	enabled := !session.DigestEnabled
	switch strings.ToLower(commandArgs(update.Message.Text)) {
	case "on", "вкл":
		enabled = true
	case "off", "выкл":
		enabled = false
	}

	if err := h.authService.SetDigest(ctx, session.TelegramID, enabled); err != nil {
		h.reportError(ctx, b, update, err, "set digest")
		return
	}

	h.logger.Info("Digest toggled",
		zap.Int64("telegram_id", session.TelegramID),
		zap.Bool("enabled", enabled))

	if enabled {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🔔 Утренняя сводка включена")
	} else {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🔕 Утренняя сводка выключена")
	}
}
