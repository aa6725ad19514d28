package profile

import (
	"context"
	"html"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coach_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ShowProfile показывает профиль тренера с настройками
func ShowProfile(hc *common.HandlerContext) error {
	coach, err := hc.Handler.AuthService.Profile(hc.Ctx, hc.Session)
	if err != nil {
		return err
	}
	text, kb := common.BuildProfileScreen(coach, hc.Session)
	return hc.Show(text, kb)
}

// HandleProfile открывает профиль
func HandleProfile(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearDialog()
		if err := ShowProfile(hc); err != nil {
			common.HandleError(hc, err, "show profile")
			return
		}
		hc.Answer("")
	})
}

// HandleMainMenu показывает главное меню
func HandleMainMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearDialog()
		text, kb := common.BuildMainMenu(hc.Session, h.LessonService.Now())
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show main menu")
			return
		}
		hc.Answer("")
	})
}

// HandleDigest включает или выключает утреннюю сводку
func HandleDigest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		// Формат: dg:on / dg:off
		parts, err := common.ParseArgs(callback.Data, common.PrefixDigest, 1)
		if err != nil {
			common.HandleError(hc, err, "parse digest")
			return
		}

		var enabled bool
		switch parts[0] {
		case "on":
			enabled = true
		case "off":
		default:
			common.HandleError(hc, common.ErrInvalidFormat, "parse digest")
			return
		}

		if err := h.AuthService.SetDigest(hc.Ctx, hc.TelegramID, enabled); err != nil {
			common.HandleError(hc, err, "set digest")
			return
		}
		hc.Session.DigestEnabled = enabled

		h.Logger.Info("Digest toggled",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Bool("enabled", enabled))

		if err := ShowProfile(hc); err != nil {
			common.HandleError(hc, err, "show profile")
			return
		}
		if enabled {
			hc.Answer("☀️ Сводка включена")
		} else {
			hc.Answer("Сводка выключена")
		}
	})
}

// HandleName просит ввести новое имя тренера
func HandleName(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := hc.SaveDialog(&state.Session{State: state.StateProfileName}); err != nil {
			common.HandleError(hc, err, "save dialog")
			return
		}

		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(common.CallbackProfile)).Build()
		text := "✏️ Текущее имя: <b>" + html.EscapeString(hc.Session.CoachName) + "</b>\n\nВведите новое имя."
		if err := hc.Show(text, kb); err != nil {
			common.HandleError(hc, err, "show name prompt")
			return
		}
		hc.Answer("")
	})
}

// HandleLogout выходит из аккаунта после подтверждения
func HandleLogout(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	hc.ClearDialog()
	deleted, err := h.AuthService.Logout(hc.Ctx, hc.TelegramID)
	if err != nil {
		common.HandleError(hc, err, "logout")
		return
	}

	text := "👋 Вы вышли из аккаунта. Войти снова: /login"
	if !deleted {
		text = "Вы и так не были авторизованы. Войти: /login"
	}
	if err := hc.Show(text, nil); err != nil {
		h.Logger.Warn("Failed to show logout result", zap.Error(err))
	}
	common.LogAndAnswer(hc, "Coach logged out from bot", "👋")
}
