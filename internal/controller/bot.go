package controller

import (
	"context"
	"strings"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/coach_bot/internal/controller/handlers"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Services сервисы, которыми пользуются обработчики бота
type Services struct {
	Auth      *service.AuthService
	Lessons   *service.LessonService
	Students  *service.StudentService
	Payments  *service.PaymentService
	Statement *service.StatementService
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	services Services,
	stateStore state.Store,
	logger *zap.Logger,
) *BotController {
	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		services.Auth,
		services.Lessons,
		services.Students,
		services.Payments,
		stateStore,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		services.Auth,
		services.Lessons,
		services.Students,
		services.Payments,
		services.Statement,
		stateStore,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// matchCommand совпадает с "/name", "/name аргументы" и "/name@bot"
func matchCommand(name string) bot.MatchFunc {
	command := "/" + name
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		text := strings.TrimSpace(update.Message.Text)
		head, _, _ := strings.Cut(text, " ")
		head, _, _ = strings.Cut(head, "@")
		return head == command
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := []struct {
		name    string
		handler bot.HandlerFunc
	}{
		// Аккаунт
		{"start", c.handlers.HandleStart},
		{"help", c.handlers.HandleHelp},
		{"cancel", c.handlers.HandleCancel},
		{"login", c.handlers.HandleLogin},
		{"register", c.handlers.HandleRegister},
		{"logout", c.handlers.HandleLogout},
		{"profile", c.handlers.HandleProfile},
		{"digest", c.handlers.HandleDigest},

		// Расписание
		{"day", c.handlers.HandleDay},
		{"week", c.handlers.HandleWeek},
		{"month", c.handlers.HandleMonth},
		{"lessons", c.handlers.HandleLessons},
		{"newlesson", c.handlers.HandleNewLesson},

		// Ученики
		{"students", c.handlers.HandleStudents},
		{"addstudent", c.handlers.HandleAddStudent},
		{"payments", c.handlers.HandlePayments},
	}
	for _, cmd := range commands {
		c.bot.RegisterHandlerMatchFunc(matchCommand(cmd.name), cmd.handler)
	}

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Главное меню"},
		{Command: "day", Description: "📅 Расписание на день"},
		{Command: "week", Description: "🗓 Неделя картинкой"},
		{Command: "month", Description: "📆 Календарь на месяц"},
		{Command: "lessons", Description: "🎾 Занятия на 7 дней"},
		{Command: "newlesson", Description: "➕ Новое занятие"},
		{Command: "students", Description: "👥 Ученики"},
		{Command: "addstudent", Description: "👤 Добавить ученика"},
		{Command: "payments", Description: "💳 Долги и оплаты"},
		{Command: "profile", Description: "⚙️ Профиль"},
		{Command: "digest", Description: "🔔 Утренняя сводка вкл/выкл"},
		{Command: "login", Description: "🔑 Войти"},
		{Command: "register", Description: "📝 Регистрация"},
		{Command: "logout", Description: "🚪 Выйти"},
		{Command: "cancel", Description: "❌ Отменить действие"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
