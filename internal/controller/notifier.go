package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/coach_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// DigestNotifier отправляет утреннюю сводку в чат тренера
type DigestNotifier struct {
	bot *bot.Bot
}

func NewDigestNotifier(b *bot.Bot) *DigestNotifier {
	return &DigestNotifier{bot: b}
}

// SendDigest отправляет список занятий на день с кнопками дня и недели
func (n *DigestNotifier) SendDigest(ctx context.Context, session *model.CoachSession, day time.Time, lessons []model.Lesson) error {
	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("📅 День", common.DayData(day)),
			keyboard.Button("🗓 Неделя", common.WeekData(day)),
		).
		Build()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      session.ChatID,
		Text:        common.BuildDigestText(session.CoachName, day, lessons),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb,
	})
	if err != nil {
		return fmt.Errorf("send digest to chat %d: %w", session.ChatID, err)
	}
	return nil
}
