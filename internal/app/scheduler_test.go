package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) RunDue(context.Context) (int, error) {
	r.calls.Add(1)
	return 0, r.err
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestSchedulerSurvivesErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("db down")}
	s := NewScheduler(runner, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
}

func TestNewSchedulerDefaultInterval(t *testing.T) {
	s := NewScheduler(&countingRunner{}, 0, zap.NewNop())
	assert.Equal(t, 10*time.Minute, s.interval)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, zap.NewNop())

	s.Stop() // не запущен
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()
	assert.Equal(t, int32(1), runner.calls.Load())
}
