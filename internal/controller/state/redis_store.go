package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL время жизни незавершённого диалога в Redis
const DefaultSessionTTL = 24 * time.Hour

const keyPrefix = "coach_bot:dialog:"

// RedisStore хранит сессии в Redis, чтобы диалоги переживали перезапуск бота
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище поверх готового клиента
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func sessionKey(telegramID int64) string {
	return keyPrefix + strconv.FormatInt(telegramID, 10)
}

// Get читает сессию; отсутствие ключа - пустая сессия
func (r *RedisStore) Get(ctx context.Context, telegramID int64) (*Session, error) {
	key := sessionKey(telegramID)

	return decodeSession(key, r.client.Get(ctx, key))
}

func decodeSession(key string, cmd *redis.StringCmd) (*Session, error) {
	raw, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return &s, nil
}

// Save записывает сессию с TTL. Сессия без шага удаляется.
func (r *RedisStore) Save(ctx context.Context, telegramID int64, s *Session) error {
	if s == nil || s.State == StateNone {
		return r.Clear(ctx, telegramID)
	}

	key := sessionKey(telegramID)
	s.UpdatedAt = time.Now()

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Transition меняет шаг под WATCH: из двух одновременных вызовов проходит один
func (r *RedisStore) Transition(ctx context.Context, telegramID int64, from, to UserState) (*Session, bool, error) {
	key := sessionKey(telegramID)

	var moved *Session
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		s, err := decodeSession(key, tx.Get(ctx, key))
		if err != nil {
			return err
		}
		if s.State != from {
			return nil
		}

		s.State = to
		s.UpdatedAt = time.Now()
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal session %s: %w", key, err)
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		}); err != nil {
			return err
		}
		moved = s
		return nil
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("redis transition %s: %w", key, err)
	}
	return moved, moved != nil, nil
}

// Clear удаляет сессию пользователя
func (r *RedisStore) Clear(ctx context.Context, telegramID int64) error {
	key := sessionKey(telegramID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
