package state

import (
	"context"
	"sync"
	"time"
)

// Store хранилище диалоговых сессий, ключ - telegram ID
type Store interface {
	// Get никогда не возвращает nil сессию: для нового пользователя - пустая
	Get(ctx context.Context, telegramID int64) (*Session, error)
	Save(ctx context.Context, telegramID int64, s *Session) error
	Clear(ctx context.Context, telegramID int64) error
	// Transition атомарно переводит сессию из шага from в шаг to.
	// false означает, что сессия уже не на шаге from и ничего не изменено.
	Transition(ctx context.Context, telegramID int64, from, to UserState) (*Session, bool, error)
}

// Manager хранит сессии в памяти процесса. Сессия, не сохранявшаяся дольше ttl, считается брошенной.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session // telegramID -> Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager создаёт менеджер с тем же сроком жизни диалога, что и в Redis
func NewManager() *Manager {
	return NewManagerWithTTL(DefaultSessionTTL)
}

func NewManagerWithTTL(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *Manager) expired(s *Session) bool {
	return m.now().Sub(s.UpdatedAt) > m.ttl
}

// lookup возвращает живую сессию, просроченную удаляет. Вызывать под m.mu.Lock.
func (m *Manager) lookup(telegramID int64) (*Session, bool) {
	s, ok := m.sessions[telegramID]
	if !ok {
		return nil, false
	}
	if m.expired(s) {
		delete(m.sessions, telegramID)
		return nil, false
	}
	return s, true
}

// Get возвращает копию сессии пользователя
func (m *Manager) Get(_ context.Context, telegramID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.lookup(telegramID); ok {
		return s.Clone(), nil
	}
	return &Session{}, nil
}

// Save сохраняет копию сессии и выбрасывает просроченные. Сессия без шага удаляется.
func (m *Manager) Save(_ context.Context, telegramID int64, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.sessions {
		if m.expired(existing) {
			delete(m.sessions, id)
		}
	}

	if s == nil || s.State == StateNone {
		delete(m.sessions, telegramID)
		return nil
	}

	c := s.Clone()
	c.UpdatedAt = m.now()
	m.sessions[telegramID] = c
	return nil
}

func (m *Manager) Transition(_ context.Context, telegramID int64, from, to UserState) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookup(telegramID)
	if !ok || s.State != from {
		return nil, false, nil
	}
	s.State = to
	s.UpdatedAt = m.now()
	return s.Clone(), true, nil
}

// Clear очищает состояние и данные пользователя
func (m *Manager) Clear(_ context.Context, telegramID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, telegramID)
	return nil
}

// Len возвращает количество сохранённых диалогов, включая ещё не выброшенные просроченные
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
