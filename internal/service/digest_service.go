package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/apiclient"
	"github.com/Freeeeeet/coach_bot/internal/calendar"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

// DigestNotifier доставляет сводку тренеру
type DigestNotifier interface {
	SendDigest(ctx context.Context, session *model.CoachSession, day time.Time, lessons []model.Lesson) error
}

// DigestMetrics счётчик отправленных сводок
type DigestMetrics interface {
	ObserveDigestSent()
}

// DigestService рассылает утренние сводки занятий на день
type DigestService struct {
	store    DigestStore
	lessons  *LessonService
	notifier DigestNotifier
	metrics  DigestMetrics
	hour     int
	logger   *zap.Logger
}

func NewDigestService(store DigestStore, lessons *LessonService, notifier DigestNotifier, metrics DigestMetrics, hour int, logger *zap.Logger) *DigestService {
	return &DigestService{
		store:    store,
		lessons:  lessons,
		notifier: notifier,
		metrics:  metrics,
		hour:     hour,
		logger:   logger,
	}
}

// SetNotifier подключает доставку после создания бота
func (s *DigestService) SetNotifier(n DigestNotifier) {
	s.notifier = n
}

// RunDue отправляет сводку всем, кому она ещё не ушла сегодня. До часа рассылки ничего не делает.
// Ошибка по одному тренеру не останавливает рассылку остальным.
func (s *DigestService) RunDue(ctx context.Context) (int, error) {
	now := s.lessons.Now()
	if now.Hour() < s.hour || s.notifier == nil {
		return 0, nil
	}

	today := calendar.StartOfDay(now)
	recipients, err := s.store.ListDigestRecipients(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list digest recipients: %w", err)
	}

	sent := 0
	for _, session := range recipients {
		lessons, err := s.Today(ctx, session)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				s.logger.Info("Skipping digest, token rejected", zap.Int64("telegram_id", session.TelegramID))
				continue
			}
			s.logger.Warn("Failed to load digest lessons", zap.Int64("telegram_id", session.TelegramID), zap.Error(err))
			continue
		}

		if err := s.notifier.SendDigest(ctx, session, today, lessons); err != nil {
			s.logger.Warn("Failed to send digest", zap.Int64("telegram_id", session.TelegramID), zap.Error(err))
			continue
		}

		if err := s.store.MarkDigestDelivered(ctx, session.TelegramID, today, len(lessons)); err != nil {
			s.logger.Error("Failed to mark digest delivered", zap.Int64("telegram_id", session.TelegramID), zap.Error(err))
		}

		if s.metrics != nil {
			s.metrics.ObserveDigestSent()
		}
		sent++
	}

	if sent > 0 {
		s.logger.Info("Digests sent", zap.Int("count", sent))
	}
	return sent, nil
}

// Today возвращает неотменённые занятия тренера на сегодня
func (s *DigestService) Today(ctx context.Context, session *model.CoachSession) ([]model.Lesson, error) {
	from := calendar.StartOfDay(s.lessons.Now())
	lessons, err := s.lessons.List(ctx, session.Token, from, calendar.AddDays(from, 1))
	if err != nil {
		return nil, err
	}

	active := lessons[:0]
	for _, l := range lessons {
		if l.Status != model.LessonStatusCancelled {
			active = append(active, l)
		}
	}
	return active, nil
}
