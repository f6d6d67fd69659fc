package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient создает новый API клиент
func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// AccessToken возвращает токен, которым клиент подписывает запросы.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// BaseURL возвращает адрес сервера.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchEntities получает серверный снимок одного вида данных household
func (c *Client) FetchEntities(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
	var resp api.EntitiesResponse
	path := fmt.Sprintf("/api/v1/households/%s/entities?kind=%s", url.PathEscape(householdID), url.QueryEscape(string(kind)))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch entities request failed: %w", err)
	}

	records := make([]models.Record, 0, len(resp.Entities))
	for i := range resp.Entities {
		records = append(records, resp.Entities[i].Record())
	}
	return records, nil
}

// ApplyOperation воспроизводит pending операцию на сервере и возвращает сохраненную запись
func (c *Client) ApplyOperation(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
	req := api.OperationRequest{
		OperationID: op.ID,
		Kind:        string(op.Kind),
		EntityKind:  string(op.Target.Kind),
		EntityID:    op.Target.EntityID,
		Payload:     op.Payload,
		CreatedAt:   op.CreatedAt,
	}

	var resp api.OperationResponse
	path := fmt.Sprintf("/api/v1/households/%s/operations", url.PathEscape(op.HouseholdID))
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("apply operation request failed: %w", err)
	}

	record := resp.Entity.Record()
	return &record, nil
}

// BulkShopping выполняет групповую операцию над списком покупок
func (c *Client) BulkShopping(ctx context.Context, householdID string, req api.BulkShoppingRequest) (*api.BulkShoppingResponse, error) {
	var resp api.BulkShoppingResponse
	path := fmt.Sprintf("/api/v1/households/%s/shopping-list/bulk", url.PathEscape(householdID))
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("bulk shopping request failed: %w", err)
	}
	return &resp, nil
}

// Households возвращает household текущего пользователя
func (c *Client) Households(ctx context.Context) ([]api.Household, error) {
	var resp api.HouseholdsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/households", nil, &resp); err != nil {
		return nil, fmt.Errorf("households request failed: %w", err)
	}
	return resp.Households, nil
}

// Stats получает статистику realtime hub
func (c *Client) Stats(ctx context.Context) (*api.StatsResponse, error) {
	var resp api.StatsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/realtime/stats", nil, &resp); err != nil {
		return nil, fmt.Errorf("stats request failed: %w", err)
	}
	return &resp, nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, nil); err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос.
// Ошибки классифицируются через apperr: сеть и 5xx - transient,
// 401 - authentication, 403 - authorization, прочие 4xx - rejected.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Transient(err, "request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Transient(err, "failed to read response body")
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, respBody)
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return apperr.Malformed(err, "failed to decode response")
		}
	}

	return nil
}

func classifyStatus(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
		if errResp.Message != "" {
			msg += ": " + errResp.Message
		}
	}
	err := fmt.Errorf("server error (%d): %s", status, msg)

	switch {
	case status == http.StatusUnauthorized:
		return apperr.Authentication(err, "session rejected")
	case status == http.StatusForbidden:
		return apperr.Authorization(err, "household access denied")
	case status == http.StatusTooManyRequests, status >= 500:
		return apperr.Transient(err, "server unavailable")
	default:
		return apperr.Rejected(err, "request rejected")
	}
}
