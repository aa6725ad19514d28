package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

const studentEndpoint = "/students/:id"

// ListStudents возвращает учеников тренера
func (c *Client) ListStudents(ctx context.Context, token string) ([]model.Student, error) {
	var resp []studentDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/students", token: token, out: &resp}); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	students := make([]model.Student, 0, len(resp))
	for _, s := range resp {
		students = append(students, s.toModel())
	}
	return students, nil
}

// CreateStudent создает ученика и возвращает его ID
func (c *Client) CreateStudent(ctx context.Context, token string, in model.StudentInput) (string, error) {
	var resp idResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/students", token: token, body: in, out: &resp}); err != nil {
		return "", fmt.Errorf("create student: %w", err)
	}
	return resp.ID, nil
}

// UpdateStudent частично обновляет ученика
func (c *Client) UpdateStudent(ctx context.Context, token, id string, in model.StudentInput) error {
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		path:     "/students/" + url.PathEscape(id),
		endpoint: studentEndpoint,
		token:    token,
		body:     in,
	})
	if err != nil {
		return fmt.Errorf("update student %s: %w", id, err)
	}
	return nil
}

// DeleteStudent удаляет ученика
func (c *Client) DeleteStudent(ctx context.Context, token, id string) error {
	err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/students/" + url.PathEscape(id),
		endpoint: studentEndpoint,
		token:    token,
	})
	if err != nil {
		return fmt.Errorf("delete student %s: %w", id, err)
	}
	return nil
}
