package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultDigestInterval = 10 * time.Minute

// DigestRunner рассылка, которую планировщик запускает по таймеру
type DigestRunner interface {
	RunDue(ctx context.Context) (int, error)
}

// Scheduler раз в interval проверяет, кому пора отправить утреннюю сводку.
// Первая проверка выполняется сразу после Start.
type Scheduler struct {
	digest   DigestRunner
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(digest DigestRunner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultDigestInterval
	}
	return &Scheduler{digest: digest, interval: interval, logger: logger}
}

// Start запускает цикл в отдельной горутине; он живёт до Stop или отмены ctx
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.logger.Info("Digest scheduler started", zap.Duration("interval", s.interval))
	go s.loop(ctx, s.done)
}

// Stop останавливает цикл и ждёт завершения текущей рассылки. Повторный вызов ничего не делает.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
	s.logger.Info("Digest scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	sent, err := s.digest.RunDue(ctx)
	if err != nil {
		s.logger.Error("Digest run failed", zap.Error(err))
		return
	}
	if sent > 0 {
		s.logger.Info("Digests sent", zap.Int("count", sent))
	}
}
