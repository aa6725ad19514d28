package model

import "time"

// CoachSession связывает пользователя Telegram с аккаунтом тренера в API
type CoachSession struct {
	TelegramID     int64      `json:"telegram_id"`
	ChatID         int64      `json:"chat_id"`
	CoachID        string     `json:"coach_id"`
	CoachName      string     `json:"coach_name"`
	Email          string     `json:"email"`
	Token          string     `json:"-"`
	TokenExpiresAt *time.Time `json:"token_expires_at"` // nil = без срока
	DigestEnabled  bool       `json:"digest_enabled"`   // утренняя сводка
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsExpired проверяет, истёк ли токен
func (s *CoachSession) IsExpired(now time.Time) bool {
	return s.TokenExpiresAt != nil && !now.Before(*s.TokenExpiresAt)
}
