package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

// AuthResult ответ на вход или регистрацию
type AuthResult struct {
	Token string
	Coach model.Coach
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

// Login выполняет вход тренера
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Email: email, Password: password},
		out:    &resp,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &AuthResult{Token: resp.Token, Coach: resp.Coach.toModel()}, nil
}

// Register регистрирует нового тренера
func (c *Client) Register(ctx context.Context, email, password, name, phone string) (*AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   registerRequest{Email: email, Password: password, Name: name, Phone: phone},
		out:    &resp,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &AuthResult{Token: resp.Token, Coach: resp.Coach.toModel()}, nil
}

// GetProfile возвращает профиль тренера
func (c *Client) GetProfile(ctx context.Context, token string) (*model.Coach, error) {
	var resp coachDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/profile", token: token, out: &resp}); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	coach := resp.toModel()
	return &coach, nil
}

// UpdateProfile сохраняет профиль тренера
func (c *Client) UpdateProfile(ctx context.Context, token string, coach model.Coach) error {
	if err := c.do(ctx, call{method: http.MethodPut, path: "/profile", token: token, body: coachToDTO(coach)}); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
