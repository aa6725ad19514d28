package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/internal/apiclient"
	"github.com/Freeeeeet/coach_bot/internal/model"
)

// Credentials данные для входа
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Registration данные для регистрации
type Registration struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Name     string `validate:"required,min=2,max=100"`
	Phone    string `validate:"omitempty,max=30"`
}

// AuthService связывает пользователя Telegram с аккаунтом тренера
type AuthService struct {
	api      CoachAPI
	sessions SessionStore
	validate *validator.Validate
	now      Clock
	logger   *zap.Logger
}

func NewAuthService(api CoachAPI, sessions SessionStore, validate *validator.Validate, logger *zap.Logger) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		validate: newValidator(validate),
		now:      time.Now,
		logger:   logger,
	}
}

// Login выполняет вход и сохраняет сессию
func (s *AuthService) Login(ctx context.Context, telegramID, chatID int64, creds Credentials) (*model.CoachSession, error) {
	creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))
	if err := s.validate.Struct(creds); err != nil {
		return nil, fromValidator(err)
	}

	res, err := s.api.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	session, err := s.storeSession(ctx, telegramID, chatID, res)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Coach logged in",
		zap.Int64("telegram_id", telegramID),
		zap.String("coach_id", session.CoachID))

	return session, nil
}

// Register регистрирует тренера и сразу сохраняет сессию
func (s *AuthService) Register(ctx context.Context, telegramID, chatID int64, reg Registration) (*model.CoachSession, error) {
	reg.Email = strings.TrimSpace(strings.ToLower(reg.Email))
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Phone = strings.TrimSpace(reg.Phone)
	if err := s.validate.Struct(reg); err != nil {
		return nil, fromValidator(err)
	}

	res, err := s.api.Register(ctx, reg.Email, reg.Password, reg.Name, reg.Phone)
	if err != nil {
		return nil, err
	}

	session, err := s.storeSession(ctx, telegramID, chatID, res)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Coach registered",
		zap.Int64("telegram_id", telegramID),
		zap.String("coach_id", session.CoachID))

	return session, nil
}

func (s *AuthService) storeSession(ctx context.Context, telegramID, chatID int64, res *apiclient.AuthResult) (*model.CoachSession, error) {
	session := &model.CoachSession{
		TelegramID:     telegramID,
		ChatID:         chatID,
		CoachID:        res.Coach.ID,
		CoachName:      res.Coach.Name,
		Email:          res.Coach.Email,
		Token:          res.Token,
		TokenExpiresAt: TokenExpiry(res.Token),
		DigestEnabled:  true,
	}

	if err := s.sessions.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// Session возвращает действующую сессию пользователя.
// Истёкшая сессия удаляется, и возвращается ErrSessionExpired.
func (s *AuthService) Session(ctx context.Context, telegramID int64) (*model.CoachSession, error) {
	session, err := s.sessions.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrNoSession
	}

	if session.IsExpired(s.now()) {
		if _, err := s.sessions.Delete(ctx, telegramID); err != nil {
			s.logger.Warn("Failed to delete expired session", zap.Int64("telegram_id", telegramID), zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Logout удаляет сессию; false если пользователь и так не был авторизован
func (s *AuthService) Logout(ctx context.Context, telegramID int64) (bool, error) {
	deleted, err := s.sessions.Delete(ctx, telegramID)
	if err != nil {
		return false, fmt.Errorf("logout: %w", err)
	}
	if deleted {
		s.logger.Info("Coach logged out", zap.Int64("telegram_id", telegramID))
	}
	return deleted, nil
}

// Invalidate удаляет сессию, если API перестал принимать токен.
// Возвращает ErrSessionExpired для 401, иначе исходную ошибку.
func (s *AuthService) Invalidate(ctx context.Context, telegramID int64, err error) error {
	if !apiclient.IsUnauthorized(err) {
		return err
	}
	if _, delErr := s.sessions.Delete(ctx, telegramID); delErr != nil {
		s.logger.Warn("Failed to delete rejected session", zap.Int64("telegram_id", telegramID), zap.Error(delErr))
	}
	return ErrSessionExpired
}

// SetDigest включает или выключает утреннюю сводку
func (s *AuthService) SetDigest(ctx context.Context, telegramID int64, enabled bool) error {
	if err := s.sessions.SetDigest(ctx, telegramID, enabled); err != nil {
		return fmt.Errorf("set digest: %w", err)
	}
	return nil
}

// Profile возвращает профиль тренера
func (s *AuthService) Profile(ctx context.Context, session *model.CoachSession) (*model.Coach, error) {
	coach, err := s.api.GetProfile(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	return coach, nil
}

// UpdateName меняет имя тренера в профиле
func (s *AuthService) UpdateName(ctx context.Context, session *model.CoachSession, name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return invalid("name", "слишком короткое значение")
	}

	coach, err := s.api.GetProfile(ctx, session.Token)
	if err != nil {
		return err
	}
	coach.Name = name

	if err := s.api.UpdateProfile(ctx, session.Token, *coach); err != nil {
		return err
	}

	session.CoachName = name
	if err := s.sessions.Upsert(ctx, session); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// TokenExpiry читает exp из JWT без проверки подписи: подпись проверяет бэкенд.
// Для непрозрачных токенов и токенов без exp возвращает nil.
func TokenExpiry(token string) *time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	return &exp
}

// IsAuthError проверяет, что ошибка требует повторного входа
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrSessionExpired)
}
