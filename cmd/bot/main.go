package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/apiclient"
	"github.com/Freeeeeet/coach_bot/internal/app"
	"github.com/Freeeeeet/coach_bot/internal/config"
	"github.com/Freeeeeet/coach_bot/internal/controller"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/Freeeeeet/coach_bot/internal/repository"
	"github.com/Freeeeeet/coach_bot/internal/service"
)

// digestInterval как часто планировщик проверяет, кому пора отправить сводку
const digestInterval = 10 * time.Minute

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)

	defer logger.Sync()

	logger.Sugar().Infow("Starting coach bot",
		"environment", cfg.Environment,
		"api", cfg.APIBaseURL,
		"timezone", cfg.Location.String(),
		"token_length", len(cfg.TelegramToken))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// База данных: только сессии тренеров и отметки о сводках
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	sessions := repository.NewSessionRepository(pool)

	// API тренера
	metrics := app.NewMetrics()
	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, logger,
		apiclient.WithLocation(cfg.Location),
		apiclient.WithObserver(metrics),
	)

	if ok, err := api.Health(ctx); err != nil || !ok {
		logger.Warn("Coach API health check failed", zap.Bool("ok", ok), zap.Error(err))
	}

	// Сервисы
	validate := validator.New(validator.WithRequiredStructEnabled())
	authService := service.NewAuthService(api, sessions, validate, logger)
	lessonService := service.NewLessonService(api, validate, metrics, cfg.Location, logger)
	studentService := service.NewStudentService(api, validate, logger)
	paymentService := service.NewPaymentService(api, validate, logger)
	statementService := service.NewStatementService(lessonService, studentService, paymentService, logger)
	digestService := service.NewDigestService(sessions, lessonService, nil, metrics, cfg.DigestHour, logger)

	// Состояние диалогов: Redis, если настроен, иначе память процесса
	var stateStore state.Store
	if cfg.RedisAddr != "" {
		client, err := state.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		stateStore = state.NewRedisStore(client, state.DefaultSessionTTL)
		logger.Info("Dialog state stored in redis", zap.String("addr", cfg.RedisAddr))
	} else {
		stateStore = state.NewManager()
		logger.Info("Dialog state stored in memory")
	}

	// Бот
	b, err := bot.New(cfg.TelegramToken,
		bot.WithMiddlewares(controller.ObserveMiddleware(metrics, logger)),
	)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(b, controller.Services{
		Auth:      authService,
		Lessons:   lessonService,
		Students:  studentService,
		Payments:  paymentService,
		Statement: statementService,
	}, stateStore, logger)

	if err := botController.RegisterHandlers(ctx); err != nil {
		// Меню команд не критично для работы
		logger.Warn("Failed to register bot commands menu", zap.Error(err))
	}

	digestService.SetNotifier(controller.NewDigestNotifier(b))

	scheduler := app.NewScheduler(digestService, digestInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.MetricsAddr != "" {
		go app.ServeMetrics(ctx, cfg.MetricsAddr, metrics, logger)
	}

	logger.Info("✅ Bot is running")
	if err := botController.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}
