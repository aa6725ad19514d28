package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader заголовок с идентификатором запроса для логов бэкенда
const RequestIDHeader = "X-Request-ID"

// APIError ошибка, которую вернул бэкенд (любой ответ кроме 2xx)
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized проверяет, что токен не принят бэкендом
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound проверяет, что ресурс не найден
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Observer принимает метрики запросов к API
type Observer interface {
	ObserveAPIRequest(method, endpoint string, status int, duration time.Duration)
}

// Client клиент REST API тренера
type Client struct {
	baseURL    string
	httpClient *http.Client
	location   *time.Location
	observer   Observer
	logger     *zap.Logger
}

// Option настройка клиента
type Option func(*Client)

// WithHTTPClient подменяет http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLocation задаёт зону, в которой интерпретируются даты из API
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithObserver подключает сбор метрик
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New создает клиент API
func New(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		location:   time.Local,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location возвращает зону, в которой клиент отдает даты
func (c *Client) Location() *time.Location {
	return c.location
}

// Health проверяет доступность бэкенда
func (c *Client) Health(ctx context.Context) (bool, error) {
	var resp struct {
		OK bool `json:"ok"`
	}
	if err := c.do(ctx, call{method: http.MethodGet, path: "/health", out: &resp}); err != nil {
		return false, fmt.Errorf("check health: %w", err)
	}
	return resp.OK, nil
}

// call описание одного запроса к API
type call struct {
	method   string
	path     string
	endpoint string // метка для метрик и логов, без идентификаторов
	token    string
	query    url.Values
	body     any
	out      any
}

// do выполняет запрос и декодирует ответ в call.out
func (c *Client) do(ctx context.Context, rc call) error {
	method, token := rc.method, rc.token
	endpoint := rc.endpoint
	if endpoint == "" {
		endpoint = rc.path
	}

	var reader io.Reader
	if rc.body != nil {
		data, err := json.Marshal(rc.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + rc.path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, endpoint, 0, time.Since(started))
		c.logger.Warn("API request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	c.observe(method, endpoint, resp.StatusCode, time.Since(started))
	c.logger.Debug("API request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || rc.out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(rc.out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError читает поле error из тела; при его отсутствии сообщение "HTTP <код>"
func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &body)

	message := body.Error
	if message == "" {
		message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}

func (c *Client) observe(method, endpoint string, status int, d time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveAPIRequest(method, endpoint, status, d)
}
