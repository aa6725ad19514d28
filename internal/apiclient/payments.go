package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

// ListPayments возвращает платежи ученика; пустой studentID означает все платежи
func (c *Client) ListPayments(ctx context.Context, token, studentID string) ([]model.Payment, error) {
	query := url.Values{}
	if studentID != "" {
		query.Set("studentId", studentID)
	}

	var resp []paymentDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/payments", token: token, query: query, out: &resp}); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	payments := make([]model.Payment, 0, len(resp))
	for _, d := range resp {
		payments = append(payments, d.toModel(c.location))
	}
	return payments, nil
}

// CreatePayment регистрирует платеж и возвращает его ID
func (c *Client) CreatePayment(ctx context.Context, token string, in model.PaymentInput) (string, error) {
	var resp idResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/payments",
		token:  token,
		body:   paymentInputToDTO(in),
		out:    &resp,
	})
	if err != nil {
		return "", fmt.Errorf("create payment: %w", err)
	}
	return resp.ID, nil
}
