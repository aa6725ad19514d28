package state

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "coach_bot:dialog:12345", sessionKey(12345))
}

func TestNewRedisStore_DefaultTTL(t *testing.T) {
	s := NewRedisStore(nil, 0)
	assert.Equal(t, DefaultSessionTTL, s.ttl)

	s = NewRedisStore(nil, time.Minute)
	assert.Equal(t, time.Minute, s.ttl)
}

// Нужен запущенный Redis: REDIS_TEST_ADDR=localhost:6379
func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	const id = int64(-987654321)
	t.Cleanup(func() { _ = store.Clear(ctx, id) })

	empty, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateNone, empty.State)

	require.NoError(t, store.Save(ctx, id, &Session{
		State:  StateLessonForm,
		Lesson: &LessonForm{Duration: 60, StudentIDs: []string{"s1"}},
	}))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateLessonForm, got.State)
	assert.Equal(t, 60, got.Lesson.Duration)

	ttl, err := client.TTL(ctx, sessionKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	moved, ok, err := store.Transition(ctx, id, StateLessonForm, StateLessonSaving)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateLessonSaving, moved.State)

	_, ok, err = store.Transition(ctx, id, StateLessonForm, StateLessonSaving)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, id, &Session{}))
	cleared, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateNone, cleared.State)
}
