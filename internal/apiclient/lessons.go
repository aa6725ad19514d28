package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

const lessonEndpoint = "/lessons/:id"

// ListLessons возвращает занятия в интервале [from, to). Нулевые границы не передаются.
func (c *Client) ListLessons(ctx context.Context, token string, from, to time.Time) ([]model.Lesson, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", formatTime(from))
	}
	if !to.IsZero() {
		query.Set("to", formatTime(to))
	}

	var resp []lessonDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/lessons", token: token, query: query, out: &resp}); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	lessons := make([]model.Lesson, 0, len(resp))
	for _, d := range resp {
		lesson, err := d.toModel(c.location)
		if err != nil {
			return nil, fmt.Errorf("list lessons: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// CreateLesson создает занятие и возвращает его ID
func (c *Client) CreateLesson(ctx context.Context, token string, draft model.LessonDraft) (string, error) {
	var resp idResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/lessons",
		token:  token,
		body:   draftToDTO(draft),
		out:    &resp,
	})
	if err != nil {
		return "", fmt.Errorf("create lesson: %w", err)
	}
	return resp.ID, nil
}

// UpdateLesson частично обновляет занятие
func (c *Client) UpdateLesson(ctx context.Context, token, id string, update model.LessonUpdate) error {
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		path:     "/lessons/" + url.PathEscape(id),
		endpoint: lessonEndpoint,
		token:    token,
		body:     updateToDTO(update),
	})
	if err != nil {
		return fmt.Errorf("update lesson %s: %w", id, err)
	}
	return nil
}

// DeleteLesson удаляет занятие
func (c *Client) DeleteLesson(ctx context.Context, token, id string) error {
	err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/lessons/" + url.PathEscape(id),
		endpoint: lessonEndpoint,
		token:    token,
	})
	if err != nil {
		return fmt.Errorf("delete lesson %s: %w", id, err)
	}
	return nil
}
