package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/coach_bot/internal/model"
	"github.com/Freeeeeet/coach_bot/internal/repository/base"
)

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

const sessionColumns = `telegram_id, chat_id, coach_id, coach_name, email, token, token_expires_at, digest_enabled, created_at, updated_at`

// Upsert сохраняет сессию тренера; повторный вход перезаписывает токен, но не настройку сводки
func (r *SessionRepository) Upsert(ctx context.Context, s *model.CoachSession) error {
	query := `
		INSERT INTO coach_sessions (telegram_id, chat_id, coach_id, coach_name, email, token, token_expires_at, digest_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (telegram_id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			coach_id = EXCLUDED.coach_id,
			coach_name = EXCLUDED.coach_name,
			email = EXCLUDED.email,
			token = EXCLUDED.token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = NOW()
		RETURNING digest_enabled, created_at, updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		s.TelegramID,
		s.ChatID,
		s.CoachID,
		s.CoachName,
		s.Email,
		s.Token,
		s.TokenExpiresAt,
		s.DigestEnabled,
	).Scan(&s.DigestEnabled, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

// GetByTelegramID получает сессию по Telegram ID
func (r *SessionRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.CoachSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM coach_sessions WHERE telegram_id = $1`

	s, err := scanSession(r.DB().QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Сессии нет
		}
		return nil, fmt.Errorf("get session by telegram id: %w", err)
	}

	return s, nil
}

// Delete удаляет сессию (выход из аккаунта)
func (r *SessionRepository) Delete(ctx context.Context, telegramID int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM coach_sessions WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return affected > 0, nil
}

// SetDigest включает или выключает утреннюю сводку
func (r *SessionRepository) SetDigest(ctx context.Context, telegramID int64, enabled bool) error {
	query := `UPDATE coach_sessions SET digest_enabled = $2, updated_at = NOW() WHERE telegram_id = $1`

	affected, err := r.ExecAffected(ctx, query, telegramID, enabled)
	if err != nil {
		return fmt.Errorf("set digest: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set digest: session %d: %w", telegramID, pgx.ErrNoRows)
	}
	return nil
}

// ListDigestRecipients возвращает сессии с включённой сводкой, которым она ещё не отправлена за день
func (r *SessionRepository) ListDigestRecipients(ctx context.Context, day time.Time) ([]*model.CoachSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM coach_sessions s
		WHERE s.digest_enabled
		  AND (s.token_expires_at IS NULL OR s.token_expires_at > NOW())
		  AND NOT EXISTS (
			SELECT 1 FROM digest_deliveries d
			WHERE d.telegram_id = s.telegram_id AND d.digest_date = $1
		  )
		ORDER BY s.telegram_id
	`

	rows, err := r.DB().Query(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list digest recipients: %w", err)
	}
	defer rows.Close()

	var sessions []*model.CoachSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// MarkDigestDelivered отмечает отправку сводки за день
func (r *SessionRepository) MarkDigestDelivered(ctx context.Context, telegramID int64, day time.Time, lessons int) error {
	query := `
		INSERT INTO digest_deliveries (telegram_id, digest_date, lessons)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id, digest_date) DO NOTHING
	`

	if _, err := r.DB().Exec(ctx, query, telegramID, day.Format("2006-01-02"), lessons); err != nil {
		return fmt.Errorf("mark digest delivered: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*model.CoachSession, error) {
	var s model.CoachSession
	err := row.Scan(
		&s.TelegramID,
		&s.ChatID,
		&s.CoachID,
		&s.CoachName,
		&s.Email,
		&s.Token,
		&s.TokenExpiresAt,
		&s.DigestEnabled,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
