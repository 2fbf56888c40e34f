package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"furnitrack/internal/app/client/config"
	"furnitrack/internal/domain/order"

	"golang.org/x/exp/slog"
)

const (
	// Фиксированный таймаут на один запрос: по его истечении попытка
	// считается транзиентным сбоем, не терминальным.
	requestTimeout = 5 * time.Second

	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// APIError — ошибка уровня HTTP от сервера. 4xx терминальны и
// отдаются вызывающему как есть; 5xx транзиентны.
type APIError struct {
	Status  int
	Err     string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("сервер вернул %d: %s: %s", e.Status, e.Err, e.Message)
	}
	return fmt.Sprintf("сервер вернул %d: %s", e.Status, e.Err)
}

// Transient сообщает, имеет ли смысл повторять запрос.
func (e *APIError) Transient() bool {
	return e.Status >= 500
}

// IsTransient классифицирует ошибку вызова: таймауты и сетевые сбои —
// транзиентные, ответы 4xx — нет.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	// Все, что не дошло до HTTP-статуса (timeout, connection refused,
	// обрыв), считаем транзиентным.
	return true
}

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// HTTPClient выполняет вызовы REST API сервера заказов. Каждый вызов
// ограничен таймаутом и обернут в ограниченный повтор транзиентных
// сбоев.
type HTTPClient struct {
	client  *http.Client
	clock   Clock
	log     *slog.Logger
	baseURL string
	retry   RetryConfig
}

func NewHTTPClient(cfg *config.Config, clock Clock, log *slog.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &HTTPClient{
		client:  client,
		clock:   clock,
		log:     log.With("component", "api_client"),
		baseURL: scheme + cfg.ServerAddress + "/api",
		retry: RetryConfig{
			MaxAttempts: defaultMaxAttempts,
			Delay:       defaultRetryDelay,
		},
	}
}

// HealthCheck проверяет доступность сервера. Без повторов: результат
// сам по себе сигнал состояния сети.
func (h *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер вернул статус: %d", resp.StatusCode)
	}
	return nil
}

// GetOrders получает все заказы с сервера.
func (h *HTTPClient) GetOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	err := h.withRetry(ctx, func() error {
		resp, err := h.doRequest(ctx, http.MethodGet, "/orders", nil)
		if err != nil {
			return err
		}
		return h.parseResponse(resp, &orders)
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder получает заказ по серверному id.
func (h *HTTPClient) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := h.withRetry(ctx, func() error {
		resp, err := h.doRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
		if err != nil {
			return err
		}
		return h.parseResponse(resp, &o)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder создает заказ, возвращает каноническую копию с
// серверным id.
func (h *HTTPClient) CreateOrder(ctx context.Context, o order.Order) (*order.Order, error) {
	var created order.Order
	err := h.withRetry(ctx, func() error {
		resp, err := h.doRequest(ctx, http.MethodPost, "/orders", o)
		if err != nil {
			return err
		}
		return h.parseResponse(resp, &created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateOrder перезаписывает заказ целиком.
func (h *HTTPClient) UpdateOrder(ctx context.Context, id int64, o order.Order) (*order.Order, error) {
	var updated order.Order
	err := h.withRetry(ctx, func() error {
		resp, err := h.doRequest(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), o)
		if err != nil {
			return err
		}
		return h.parseResponse(resp, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOrder удаляет заказ на сервере. 404 означает, что заказа там
// уже нет — для идемпотентного удаления это успех, а не ошибка.
func (h *HTTPClient) DeleteOrder(ctx context.Context, id int64) error {
	return h.withRetry(ctx, func() error {
		resp, err := h.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusNotFound {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil
		}
		return h.parseResponse(resp, nil)
	})
}

// SyncBatch отправляет пакет заказов на сверку и возвращает полный
// сверенный список с сервера.
func (h *HTTPClient) SyncBatch(ctx context.Context, orders []order.Order) ([]order.Order, error) {
	req := order.SyncRequest{Orders: orders}

	var merged []order.Order
	err := h.withRetry(ctx, func() error {
		resp, err := h.doRequest(ctx, http.MethodPost, "/orders/sync", req)
		if err != nil {
			return err
		}
		return h.parseResponse(resp, &merged)
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// withRetry повторяет транзиентно сбойный вызов с задержкой,
// растущей с номером попытки, чтобы не добивать восстанавливающийся
// сервер. Терминальные ошибки (4xx) возвращаются сразу без повторов.
func (h *HTTPClient) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= h.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			h.log.Debug("повторная попытка запроса", "attempt", attempt)
			h.clock.Sleep(ctx, h.retry.Delay*time.Duration(attempt-1))
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (h *HTTPClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	h.log.Debug("отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	return resp, nil
}

func (h *HTTPClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message,omitempty"`
			Detail  string `json:"detail,omitempty"`
			Title   string `json:"title,omitempty"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil {
			apiErr.Err = envelope.Error
			apiErr.Message = envelope.Message
			if apiErr.Err == "" {
				apiErr.Err = envelope.Title
				apiErr.Message = envelope.Detail
			}
		}
		if apiErr.Err == "" {
			apiErr.Err = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}
	return nil
}
